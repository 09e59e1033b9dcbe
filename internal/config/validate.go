package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is the sentinel wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid value")

// FieldError reports a single rejected configuration field. The whole
// patch or file is rejected; nothing is applied partially.
type FieldError struct {
	Field  string
	Value  any
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("config: field %s = %v: %s", e.Field, e.Value, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrInvalid }

func fieldErr(field string, value any, reason string) error {
	return &FieldError{Field: field, Value: value, Reason: reason}
}

type rule struct {
	field string
	value any
	ok    bool
	want  string
}

func (c *Config) Validate() error {
	p := &c.Physics
	pl := &c.Planner
	pa := &c.Particles
	po := &c.Pool
	co := &c.Color

	rules := []rule{
		{"base_interval_ms", c.BaseIntervalMs, c.BaseIntervalMs > 0, "must be > 0"},
		{"callback_overhead_ms", c.CallbackOverheadMs, c.CallbackOverheadMs >= 0, "must be >= 0"},

		{"physics.stiffness", p.Stiffness, p.Stiffness > 0 && p.Stiffness <= 1, "must be in (0, 1]"},
		{"physics.trailing_stiffness", p.TrailingStiffness, p.TrailingStiffness > 0 && p.TrailingStiffness <= 1, "must be in (0, 1]"},
		{"physics.trailing_exponent", p.TrailingExponent, p.TrailingExponent > 0, "must be > 0"},
		{"physics.damping", p.Damping, p.Damping > 0 && p.Damping < 1, "must be in (0, 1)"},
		{"physics.max_length", p.MaxLength, p.MaxLength > 0, "must be > 0"},
		{"physics.anticipation", p.Anticipation, p.Anticipation >= 0 && p.Anticipation < 1, "must be in [0, 1)"},
		{"physics.stiffness_insert", p.StiffnessInsert, p.StiffnessInsert > 0 && p.StiffnessInsert <= 1, "must be in (0, 1]"},
		{"physics.trailing_stiffness_insert", p.TrailingStiffnessInsert, p.TrailingStiffnessInsert > 0 && p.TrailingStiffnessInsert <= 1, "must be in (0, 1]"},
		{"physics.damping_insert", p.DampingInsert, p.DampingInsert > 0 && p.DampingInsert < 1, "must be in (0, 1)"},
		{"physics.max_length_insert", p.MaxLengthInsert, p.MaxLengthInsert > 0, "must be > 0"},
		{"physics.cell_aspect", p.CellAspect, p.CellAspect > 0, "must be > 0"},
		{"physics.distance_stop", p.DistanceStop, p.DistanceStop > 0, "must be > 0"},
		{"physics.velocity_stop", p.VelocityStop, p.VelocityStop > 0, "must be > 0"},
		{"physics.distance_stop_bar", p.DistanceStopBar, p.DistanceStopBar > 0, "must be > 0"},
		{"physics.velocity_stop_bar", p.VelocityStopBar, p.VelocityStopBar > 0, "must be > 0"},
		{"physics.max_tick_interval_ms", p.MaxTickIntervalMs, p.MaxTickIntervalMs > 0, "must be > 0"},
		{"physics.stall_distance", p.StallDistance, p.StallDistance > 0, "must be > 0"},

		{"planner.slope_max_horizontal", pl.SlopeMaxHorizontal, pl.SlopeMaxHorizontal > 0, "must be > 0"},
		{"planner.slope_min_vertical", pl.SlopeMinVertical, pl.SlopeMinVertical > pl.SlopeMaxHorizontal, "must exceed slope_max_horizontal"},
		{"planner.diagonal_tolerance", pl.DiagonalTolerance, pl.DiagonalTolerance >= 0, "must be >= 0"},
		{"planner.matrix_shade_cutoff", pl.MatrixShadeCutoff, pl.MatrixShadeCutoff >= 0 && pl.MatrixShadeCutoff <= 1, "must be in [0, 1]"},
		{"planner.gradient", pl.Gradient, pl.Gradient >= 0, "must be >= 0"},

		{"particles.max", pa.Max, pa.Max >= 0, "must be >= 0"},
		{"particles.spawn_per_cell", pa.SpawnPerCell, pa.SpawnPerCell >= 0, "must be >= 0"},
		{"particles.spawn_per_second", pa.SpawnPerSecond, pa.SpawnPerSecond >= 0, "must be >= 0"},
		{"particles.min_life", pa.MinLife, pa.MinLife > 0, "must be > 0"},
		{"particles.max_life", pa.MaxLife, pa.MaxLife >= pa.MinLife, "must be >= min_life"},
		{"particles.life_power", pa.LifePower, pa.LifePower > 0, "must be > 0"},
		{"particles.base_speed", pa.BaseSpeed, pa.BaseSpeed >= 0, "must be >= 0"},
		{"particles.velocity_bias", pa.VelocityBias, pa.VelocityBias >= 0, "must be >= 0"},
		{"particles.jitter", pa.Jitter, pa.Jitter >= 0, "must be >= 0"},
		{"particles.spread", pa.Spread, pa.Spread >= 0, "must be >= 0"},
		{"particles.octant_threshold", pa.OctantThreshold, pa.OctantThreshold >= 0 && pa.OctantThreshold <= 1, "must be in [0, 1]"},

		{"pool.max_kept_overlays", po.MaxKeptOverlays, po.MaxKeptOverlays >= 1, "must be >= 1"},
		{"pool.z_index", po.ZIndex, po.ZIndex >= 1, "must be >= 1"},
		{"pool.min_budget", po.MinBudget, po.MinBudget >= 1, "must be >= 1"},
		{"pool.hard_max_budget", po.HardMaxBudget, po.HardMaxBudget >= po.MinBudget, "must be >= min_budget"},
		{"pool.budget_margin", po.BudgetMargin, po.BudgetMargin >= 0, "must be >= 0"},

		{"color.levels", co.Levels, co.Levels >= 1 && co.Levels <= 64, "must be in [1, 64]"},
		{"color.gamma", co.Gamma, co.Gamma > 0, "must be > 0"},

		{"modes.min_horizontal_distance", c.Modes.MinHorizontal, c.Modes.MinHorizontal >= 0, "must be >= 0"},
		{"modes.min_vertical_distance", c.Modes.MinVertical, c.Modes.MinVertical >= 0, "must be >= 0"},
		{"modes.min_distance", c.Modes.MinDistance, c.Modes.MinDistance >= 0, "must be >= 0"},
	}

	for _, r := range rules {
		if !r.ok {
			return fieldErr(r.field, r.value, r.want)
		}
	}
	return nil
}
