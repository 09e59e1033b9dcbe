package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseIntervalMs     = 17.0
	DefaultCallbackOverheadMs = 2.0
	DefaultMaxTickIntervalMs  = 85.0

	DefaultStiffness         = 0.6
	DefaultTrailingStiffness = 0.3
	DefaultTrailingExponent  = 0.1
	DefaultDamping           = 0.65
	DefaultMaxLength         = 25.0
	DefaultCellAspect        = 2.0

	DefaultColorLevels = 16
	DefaultGamma       = 2.2

	DefaultMinBudget    = 16
	DefaultHardMax      = 256
	DefaultBudgetMargin = 8
)

// Config is the runtime configuration snapshot. It is immutable for the
// duration of a frame; changes arrive only through [Apply].
type Config struct {
	Enabled            bool    `yaml:"enabled"`
	Seed               int64   `yaml:"seed"`
	BaseIntervalMs     float64 `yaml:"base_interval_ms"`
	CallbackOverheadMs float64 `yaml:"callback_overhead_ms"`

	Physics   PhysicsConfig  `yaml:"physics"`
	Planner   PlannerConfig  `yaml:"planner"`
	Particles ParticleConfig `yaml:"particles"`
	Pool      PoolConfig     `yaml:"pool"`
	Color     ColorConfig    `yaml:"color"`
	Modes     ModeConfig     `yaml:"modes"`
}

type PhysicsConfig struct {
	Stiffness         float64 `yaml:"stiffness"`
	TrailingStiffness float64 `yaml:"trailing_stiffness"`
	TrailingExponent  float64 `yaml:"trailing_exponent"`
	Damping           float64 `yaml:"damping"`
	MaxLength         float64 `yaml:"max_length"`
	Anticipation      float64 `yaml:"anticipation"`

	// Insert-like modes get their own spring feel.
	StiffnessInsert         float64 `yaml:"stiffness_insert"`
	TrailingStiffnessInsert float64 `yaml:"trailing_stiffness_insert"`
	DampingInsert           float64 `yaml:"damping_insert"`
	MaxLengthInsert         float64 `yaml:"max_length_insert"`

	CellAspect float64 `yaml:"cell_aspect"`

	DistanceStop    float64 `yaml:"distance_stop"`
	VelocityStop    float64 `yaml:"velocity_stop"`
	DistanceStopBar float64 `yaml:"distance_stop_bar"`
	VelocityStopBar float64 `yaml:"velocity_stop_bar"`

	// Thresholds past which animating is pointless and the cursor jumps.
	MaxTickIntervalMs float64 `yaml:"max_tick_interval_ms"`
	StallDistance     float64 `yaml:"stall_distance"`
}

type PlannerConfig struct {
	SlopeMaxHorizontal  float64 `yaml:"slope_max_horizontal"`
	SlopeMinVertical    float64 `yaml:"slope_min_vertical"`
	DiagonalTolerance   float64 `yaml:"diagonal_tolerance"`
	MatrixShadeCutoff   float64 `yaml:"matrix_shade_cutoff"`
	Gradient            float64 `yaml:"gradient"`
	NeverDrawOverTarget bool    `yaml:"never_draw_over_target"`

	// LegacyBlocks draws top and right anchored partials with the
	// legacy-computing eighth blocks instead of inverting the base
	// strips. Needs font coverage for U+1FB82..U+1FB8B.
	LegacyBlocks bool `yaml:"legacy_blocks"`
}

type ParticleConfig struct {
	Enabled         bool    `yaml:"enabled"`
	Max             int     `yaml:"max"`
	SpawnPerCell    float64 `yaml:"spawn_per_cell"`
	SpawnPerSecond  float64 `yaml:"spawn_per_second"`
	MinLife         float64 `yaml:"min_life"`
	MaxLife         float64 `yaml:"max_life"`
	LifePower       float64 `yaml:"life_power"`
	BaseSpeed       float64 `yaml:"base_speed"`
	VelocityBias    float64 `yaml:"velocity_bias"`
	Gravity         float64 `yaml:"gravity"`
	Jitter          float64 `yaml:"jitter"`
	Spread          float64 `yaml:"spread"`
	Octants         bool    `yaml:"octants"`
	OctantThreshold float64 `yaml:"octant_threshold"`
}

type PoolConfig struct {
	MaxKeptOverlays int `yaml:"max_kept_overlays"`
	ZIndex          int `yaml:"z_index"`
	MinBudget       int `yaml:"min_budget"`
	HardMaxBudget   int `yaml:"hard_max_budget"`
	BudgetMargin    int `yaml:"budget_margin"`
}

type ColorConfig struct {
	CursorColor   string  `yaml:"cursor_color"`
	BackgroundHex string  `yaml:"background"`
	Levels        int     `yaml:"levels"`
	Gamma         float64 `yaml:"gamma"`
	TransparentBg string  `yaml:"transparent_bg_fallback"`
}

type ModeConfig struct {
	SmearInsert        bool `yaml:"smear_insert"`
	SmearReplace       bool `yaml:"smear_replace"`
	SmearCmdline       bool `yaml:"smear_cmdline"`
	SmearTerminal      bool `yaml:"smear_terminal"`
	SmearBetweenBuffer bool `yaml:"smear_between_buffers"`
	SmearNeighborLines bool `yaml:"smear_neighbor_lines"`

	SmearHorizontal bool    `yaml:"smear_horizontal"`
	SmearVertical   bool    `yaml:"smear_vertical"`
	SmearDiagonal   bool    `yaml:"smear_diagonal"`
	MinHorizontal   float64 `yaml:"min_horizontal_distance"`
	MinVertical     float64 `yaml:"min_vertical_distance"`
	MinDistance     float64 `yaml:"min_distance"`

	BarInsert  bool `yaml:"bar_insert"`
	BarCmdline bool `yaml:"bar_cmdline"`
	BarReplace bool `yaml:"bar_replace"`
}

func Default() *Config {
	return &Config{
		Enabled:            true,
		BaseIntervalMs:     DefaultBaseIntervalMs,
		CallbackOverheadMs: DefaultCallbackOverheadMs,
		Physics: PhysicsConfig{
			Stiffness:         DefaultStiffness,
			TrailingStiffness: DefaultTrailingStiffness,
			TrailingExponent:  DefaultTrailingExponent,
			Damping:           DefaultDamping,
			MaxLength:         DefaultMaxLength,

			StiffnessInsert:         0.5,
			TrailingStiffnessInsert: 0.5,
			DampingInsert:           0.8,
			MaxLengthInsert:         1.0,

			CellAspect: DefaultCellAspect,

			DistanceStop:    0.1,
			VelocityStop:    0.05,
			DistanceStopBar: 0.05,
			VelocityStopBar: 0.02,

			MaxTickIntervalMs: DefaultMaxTickIntervalMs,
			StallDistance:     10.0,
		},
		Planner: PlannerConfig{
			SlopeMaxHorizontal:  0.25,
			SlopeMinVertical:    2.5,
			DiagonalTolerance:   0.09,
			MatrixShadeCutoff:   0.7,
			Gradient:            0,
			NeverDrawOverTarget: true,
		},
		Particles: ParticleConfig{
			Enabled:         true,
			Max:             64,
			SpawnPerCell:    0.35,
			SpawnPerSecond:  0,
			MinLife:         0.3,
			MaxLife:         1.2,
			LifePower:       2.0,
			BaseSpeed:       6.0,
			VelocityBias:    0.4,
			Gravity:         8.0,
			Jitter:          4.0,
			Spread:          0.4,
			Octants:         false,
			OctantThreshold: 0.6,
		},
		Pool: PoolConfig{
			MaxKeptOverlays: 50,
			ZIndex:          300,
			MinBudget:       DefaultMinBudget,
			HardMaxBudget:   DefaultHardMax,
			BudgetMargin:    DefaultBudgetMargin,
		},
		Color: ColorConfig{
			CursorColor:   "",
			BackgroundHex: "",
			Levels:        DefaultColorLevels,
			Gamma:         DefaultGamma,
			TransparentBg: "#303030",
		},
		Modes: ModeConfig{
			SmearInsert:        true,
			SmearReplace:       true,
			SmearCmdline:       true,
			SmearTerminal:      false,
			SmearBetweenBuffer: true,
			SmearNeighborLines: true,

			SmearHorizontal: true,
			SmearVertical:   true,
			SmearDiagonal:   true,

			BarInsert:  true,
			BarCmdline: true,
			BarReplace: false,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// BaseInterval returns the configured animation interval in seconds.
func (c *Config) BaseInterval() float64 {
	return c.BaseIntervalMs / 1000
}

// CallbackOverhead returns the assumed per-tick scheduling cost in
// seconds. The pacing logic subtracts it from every delay it hands out.
func (c *Config) CallbackOverhead() float64 {
	return c.CallbackOverheadMs / 1000
}
