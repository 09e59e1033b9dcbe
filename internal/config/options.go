package config

import "gopkg.in/yaml.v3"

// Opt is a tri-state patch field: left alone (zero value), explicitly
// cleared back to the default, or set to a new value. In yaml, an absent
// key leaves the field untouched and an explicit null clears it.
type Opt[T any] struct {
	set   bool
	clear bool
	value T
}

func Set[T any](v T) Opt[T] { return Opt[T]{set: true, value: v} }

func Clear[T any]() Opt[T] { return Opt[T]{clear: true} }

// Get returns the patch value and whether one was set.
func (o Opt[T]) Get() (T, bool) { return o.value, o.set }

// Cleared reports an explicit reset-to-default.
func (o Opt[T]) Cleared() bool { return o.clear }

func (o *Opt[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" {
		*o = Opt[T]{clear: true}
		return nil
	}
	var v T
	if err := node.Decode(&v); err != nil {
		return err
	}
	*o = Opt[T]{set: true, value: v}
	return nil
}

// Patch is a partially-populated configuration diff with per-field
// set / clear / leave-unchanged semantics.
type Patch struct {
	Enabled            Opt[bool]    `yaml:"enabled"`
	Seed               Opt[int64]   `yaml:"seed"`
	BaseIntervalMs     Opt[float64] `yaml:"base_interval_ms"`
	CallbackOverheadMs Opt[float64] `yaml:"callback_overhead_ms"`

	Physics   PhysicsPatch  `yaml:"physics"`
	Planner   PlannerPatch  `yaml:"planner"`
	Particles ParticlePatch `yaml:"particles"`
	Pool      PoolPatch     `yaml:"pool"`
	Color     ColorPatch    `yaml:"color"`
	Modes     ModePatch     `yaml:"modes"`
}

type PhysicsPatch struct {
	Stiffness         Opt[float64] `yaml:"stiffness"`
	TrailingStiffness Opt[float64] `yaml:"trailing_stiffness"`
	TrailingExponent  Opt[float64] `yaml:"trailing_exponent"`
	Damping           Opt[float64] `yaml:"damping"`
	MaxLength         Opt[float64] `yaml:"max_length"`
	Anticipation      Opt[float64] `yaml:"anticipation"`

	StiffnessInsert         Opt[float64] `yaml:"stiffness_insert"`
	TrailingStiffnessInsert Opt[float64] `yaml:"trailing_stiffness_insert"`
	DampingInsert           Opt[float64] `yaml:"damping_insert"`
	MaxLengthInsert         Opt[float64] `yaml:"max_length_insert"`

	CellAspect Opt[float64] `yaml:"cell_aspect"`

	DistanceStop    Opt[float64] `yaml:"distance_stop"`
	VelocityStop    Opt[float64] `yaml:"velocity_stop"`
	DistanceStopBar Opt[float64] `yaml:"distance_stop_bar"`
	VelocityStopBar Opt[float64] `yaml:"velocity_stop_bar"`

	MaxTickIntervalMs Opt[float64] `yaml:"max_tick_interval_ms"`
	StallDistance     Opt[float64] `yaml:"stall_distance"`
}

type PlannerPatch struct {
	SlopeMaxHorizontal  Opt[float64] `yaml:"slope_max_horizontal"`
	SlopeMinVertical    Opt[float64] `yaml:"slope_min_vertical"`
	DiagonalTolerance   Opt[float64] `yaml:"diagonal_tolerance"`
	MatrixShadeCutoff   Opt[float64] `yaml:"matrix_shade_cutoff"`
	Gradient            Opt[float64] `yaml:"gradient"`
	NeverDrawOverTarget Opt[bool]    `yaml:"never_draw_over_target"`
	LegacyBlocks        Opt[bool]    `yaml:"legacy_blocks"`
}

type ParticlePatch struct {
	Enabled         Opt[bool]    `yaml:"enabled"`
	Max             Opt[int]     `yaml:"max"`
	SpawnPerCell    Opt[float64] `yaml:"spawn_per_cell"`
	SpawnPerSecond  Opt[float64] `yaml:"spawn_per_second"`
	MinLife         Opt[float64] `yaml:"min_life"`
	MaxLife         Opt[float64] `yaml:"max_life"`
	LifePower       Opt[float64] `yaml:"life_power"`
	BaseSpeed       Opt[float64] `yaml:"base_speed"`
	VelocityBias    Opt[float64] `yaml:"velocity_bias"`
	Gravity         Opt[float64] `yaml:"gravity"`
	Jitter          Opt[float64] `yaml:"jitter"`
	Spread          Opt[float64] `yaml:"spread"`
	Octants         Opt[bool]    `yaml:"octants"`
	OctantThreshold Opt[float64] `yaml:"octant_threshold"`
}

type PoolPatch struct {
	MaxKeptOverlays Opt[int] `yaml:"max_kept_overlays"`
	ZIndex          Opt[int] `yaml:"z_index"`
	MinBudget       Opt[int] `yaml:"min_budget"`
	HardMaxBudget   Opt[int] `yaml:"hard_max_budget"`
	BudgetMargin    Opt[int] `yaml:"budget_margin"`
}

type ColorPatch struct {
	CursorColor   Opt[string]  `yaml:"cursor_color"`
	BackgroundHex Opt[string]  `yaml:"background"`
	Levels        Opt[int]     `yaml:"levels"`
	Gamma         Opt[float64] `yaml:"gamma"`
	TransparentBg Opt[string]  `yaml:"transparent_bg_fallback"`
}

type ModePatch struct {
	SmearInsert        Opt[bool] `yaml:"smear_insert"`
	SmearReplace       Opt[bool] `yaml:"smear_replace"`
	SmearCmdline       Opt[bool] `yaml:"smear_cmdline"`
	SmearTerminal      Opt[bool] `yaml:"smear_terminal"`
	SmearBetweenBuffer Opt[bool] `yaml:"smear_between_buffers"`
	SmearNeighborLines Opt[bool] `yaml:"smear_neighbor_lines"`

	SmearHorizontal Opt[bool]    `yaml:"smear_horizontal"`
	SmearVertical   Opt[bool]    `yaml:"smear_vertical"`
	SmearDiagonal   Opt[bool]    `yaml:"smear_diagonal"`
	MinHorizontal   Opt[float64] `yaml:"min_horizontal_distance"`
	MinVertical     Opt[float64] `yaml:"min_vertical_distance"`
	MinDistance     Opt[float64] `yaml:"min_distance"`

	BarInsert  Opt[bool] `yaml:"bar_insert"`
	BarCmdline Opt[bool] `yaml:"bar_cmdline"`
	BarReplace Opt[bool] `yaml:"bar_replace"`
}

// ParsePatch decodes a yaml patch document.
func ParsePatch(data []byte) (*Patch, error) {
	p := &Patch{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, err
	}
	return p, nil
}

func field[T any](dst *T, def T, o Opt[T]) {
	switch {
	case o.clear:
		*dst = def
	case o.set:
		*dst = o.value
	}
}

// Apply returns a copy of cfg with the patch applied and validated. On
// error the original config is returned untouched; a patch never applies
// partially.
func Apply(cfg *Config, p *Patch) (*Config, error) {
	next := *cfg
	def := Default()

	field(&next.Enabled, def.Enabled, p.Enabled)
	field(&next.Seed, def.Seed, p.Seed)
	field(&next.BaseIntervalMs, def.BaseIntervalMs, p.BaseIntervalMs)
	field(&next.CallbackOverheadMs, def.CallbackOverheadMs, p.CallbackOverheadMs)

	ph, dph := &next.Physics, def.Physics
	field(&ph.Stiffness, dph.Stiffness, p.Physics.Stiffness)
	field(&ph.TrailingStiffness, dph.TrailingStiffness, p.Physics.TrailingStiffness)
	field(&ph.TrailingExponent, dph.TrailingExponent, p.Physics.TrailingExponent)
	field(&ph.Damping, dph.Damping, p.Physics.Damping)
	field(&ph.MaxLength, dph.MaxLength, p.Physics.MaxLength)
	field(&ph.Anticipation, dph.Anticipation, p.Physics.Anticipation)
	field(&ph.StiffnessInsert, dph.StiffnessInsert, p.Physics.StiffnessInsert)
	field(&ph.TrailingStiffnessInsert, dph.TrailingStiffnessInsert, p.Physics.TrailingStiffnessInsert)
	field(&ph.DampingInsert, dph.DampingInsert, p.Physics.DampingInsert)
	field(&ph.MaxLengthInsert, dph.MaxLengthInsert, p.Physics.MaxLengthInsert)
	field(&ph.CellAspect, dph.CellAspect, p.Physics.CellAspect)
	field(&ph.DistanceStop, dph.DistanceStop, p.Physics.DistanceStop)
	field(&ph.VelocityStop, dph.VelocityStop, p.Physics.VelocityStop)
	field(&ph.DistanceStopBar, dph.DistanceStopBar, p.Physics.DistanceStopBar)
	field(&ph.VelocityStopBar, dph.VelocityStopBar, p.Physics.VelocityStopBar)
	field(&ph.MaxTickIntervalMs, dph.MaxTickIntervalMs, p.Physics.MaxTickIntervalMs)
	field(&ph.StallDistance, dph.StallDistance, p.Physics.StallDistance)

	pl, dpl := &next.Planner, def.Planner
	field(&pl.SlopeMaxHorizontal, dpl.SlopeMaxHorizontal, p.Planner.SlopeMaxHorizontal)
	field(&pl.SlopeMinVertical, dpl.SlopeMinVertical, p.Planner.SlopeMinVertical)
	field(&pl.DiagonalTolerance, dpl.DiagonalTolerance, p.Planner.DiagonalTolerance)
	field(&pl.MatrixShadeCutoff, dpl.MatrixShadeCutoff, p.Planner.MatrixShadeCutoff)
	field(&pl.Gradient, dpl.Gradient, p.Planner.Gradient)
	field(&pl.NeverDrawOverTarget, dpl.NeverDrawOverTarget, p.Planner.NeverDrawOverTarget)
	field(&pl.LegacyBlocks, dpl.LegacyBlocks, p.Planner.LegacyBlocks)

	pa, dpa := &next.Particles, def.Particles
	field(&pa.Enabled, dpa.Enabled, p.Particles.Enabled)
	field(&pa.Max, dpa.Max, p.Particles.Max)
	field(&pa.SpawnPerCell, dpa.SpawnPerCell, p.Particles.SpawnPerCell)
	field(&pa.SpawnPerSecond, dpa.SpawnPerSecond, p.Particles.SpawnPerSecond)
	field(&pa.MinLife, dpa.MinLife, p.Particles.MinLife)
	field(&pa.MaxLife, dpa.MaxLife, p.Particles.MaxLife)
	field(&pa.LifePower, dpa.LifePower, p.Particles.LifePower)
	field(&pa.BaseSpeed, dpa.BaseSpeed, p.Particles.BaseSpeed)
	field(&pa.VelocityBias, dpa.VelocityBias, p.Particles.VelocityBias)
	field(&pa.Gravity, dpa.Gravity, p.Particles.Gravity)
	field(&pa.Jitter, dpa.Jitter, p.Particles.Jitter)
	field(&pa.Spread, dpa.Spread, p.Particles.Spread)
	field(&pa.Octants, dpa.Octants, p.Particles.Octants)
	field(&pa.OctantThreshold, dpa.OctantThreshold, p.Particles.OctantThreshold)

	po, dpo := &next.Pool, def.Pool
	field(&po.MaxKeptOverlays, dpo.MaxKeptOverlays, p.Pool.MaxKeptOverlays)
	field(&po.ZIndex, dpo.ZIndex, p.Pool.ZIndex)
	field(&po.MinBudget, dpo.MinBudget, p.Pool.MinBudget)
	field(&po.HardMaxBudget, dpo.HardMaxBudget, p.Pool.HardMaxBudget)
	field(&po.BudgetMargin, dpo.BudgetMargin, p.Pool.BudgetMargin)

	co, dco := &next.Color, def.Color
	field(&co.CursorColor, dco.CursorColor, p.Color.CursorColor)
	field(&co.BackgroundHex, dco.BackgroundHex, p.Color.BackgroundHex)
	field(&co.Levels, dco.Levels, p.Color.Levels)
	field(&co.Gamma, dco.Gamma, p.Color.Gamma)
	field(&co.TransparentBg, dco.TransparentBg, p.Color.TransparentBg)

	mo, dmo := &next.Modes, def.Modes
	field(&mo.SmearInsert, dmo.SmearInsert, p.Modes.SmearInsert)
	field(&mo.SmearReplace, dmo.SmearReplace, p.Modes.SmearReplace)
	field(&mo.SmearCmdline, dmo.SmearCmdline, p.Modes.SmearCmdline)
	field(&mo.SmearTerminal, dmo.SmearTerminal, p.Modes.SmearTerminal)
	field(&mo.SmearBetweenBuffer, dmo.SmearBetweenBuffer, p.Modes.SmearBetweenBuffer)
	field(&mo.SmearNeighborLines, dmo.SmearNeighborLines, p.Modes.SmearNeighborLines)
	field(&mo.SmearHorizontal, dmo.SmearHorizontal, p.Modes.SmearHorizontal)
	field(&mo.SmearVertical, dmo.SmearVertical, p.Modes.SmearVertical)
	field(&mo.SmearDiagonal, dmo.SmearDiagonal, p.Modes.SmearDiagonal)
	field(&mo.MinHorizontal, dmo.MinHorizontal, p.Modes.MinHorizontal)
	field(&mo.MinVertical, dmo.MinVertical, p.Modes.MinVertical)
	field(&mo.MinDistance, dmo.MinDistance, p.Modes.MinDistance)
	field(&mo.BarInsert, dmo.BarInsert, p.Modes.BarInsert)
	field(&mo.BarCmdline, dmo.BarCmdline, p.Modes.BarCmdline)
	field(&mo.BarReplace, dmo.BarReplace, p.Modes.BarReplace)

	if err := next.Validate(); err != nil {
		return cfg, err
	}
	return &next, nil
}
