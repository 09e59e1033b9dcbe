// Package tune searches spring parameter grids by replaying scenarios
// and scoring each combination on its run metrics.
package tune

import (
	"context"
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"github.com/san-kum/smear/internal/config"
	"github.com/san-kum/smear/internal/scenario"
)

// GridSearch walks the cross product of parameter ranges and keeps the
// combination minimizing one metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search evaluates every grid point with the score callback and returns
// the parameters with the smallest value of the named metric. Points
// whose score call fails, or whose metrics lack the name, are skipped.
func (g *GridSearch) Search(
	ctx context.Context,
	score func(params map[string]float64) (map[string]float64, error),
	metricName string,
) (map[string]float64, float64, error) {

	best := math.Inf(1)
	var bestParams map[string]float64

	g.searchRecursive(ctx, 0, make(map[string]float64), score, metricName, &best, &bestParams)

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	score func(map[string]float64) (map[string]float64, error),
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) {
	if ctx.Err() != nil {
		return
	}
	if depth == len(g.paramNames) {
		metrics, err := score(current)
		if err != nil {
			return
		}

		val, ok := metrics[metricName]
		if !ok {
			return
		}
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.searchRecursive(ctx, depth+1, newParams, score, metricName, best, bestParams)
	}
}

// Apply sets the named parameters on a copy of base; a nil base starts
// from an empty patch. Names follow the option file keys.
func Apply(base *config.Patch, params map[string]float64) (*config.Patch, error) {
	p := config.Patch{}
	if base != nil {
		p = *base
	}
	for name, v := range params {
		switch name {
		case "stiffness":
			p.Physics.Stiffness = config.Set(v)
		case "trailing_stiffness":
			p.Physics.TrailingStiffness = config.Set(v)
		case "trailing_exponent":
			p.Physics.TrailingExponent = config.Set(v)
		case "damping":
			p.Physics.Damping = config.Set(v)
		case "anticipation":
			p.Physics.Anticipation = config.Set(v)
		case "max_length":
			p.Physics.MaxLength = config.Set(v)
		case "distance_stop":
			p.Physics.DistanceStop = config.Set(v)
		case "velocity_stop":
			p.Physics.VelocityStop = config.Set(v)
		case "gradient":
			p.Planner.Gradient = config.Set(v)
		case "min_distance":
			p.Modes.MinDistance = config.Set(v)
		case "particles":
			p.Particles.Enabled = config.Set(v != 0)
		case "max_particles":
			p.Particles.Max = config.Set(int(v))
		default:
			return nil, fmt.Errorf("unknown parameter: %s", name)
		}
	}
	return &p, nil
}

// Score replays the scenario once with the parameters applied on top of
// its own options and returns the run metrics.
func Score(scn *scenario.Scenario, params map[string]float64, logger *log.Logger) (map[string]float64, error) {
	opts, err := Apply(scn.Options, params)
	if err != nil {
		return nil, err
	}
	patched := *scn
	patched.Options = opts

	res, err := scenario.Run(&patched, logger)
	if err != nil {
		return nil, err
	}
	return res.Metrics, nil
}
