// Package layout places sized rooms on a canvas with a force-directed
// simulation, separates overlapping footprints and inserts airlocks where
// cleanroom grades change sharply.
package layout

import (
	"fmt"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/cleanroom"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/facility"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/spec"
)

// Config holds the simulation constants. Distances are metres.
type Config struct {
	Iterations           int     `mapstructure:"iterations"`
	Damping              float64 `mapstructure:"damping"`
	Repulsion            float64 `mapstructure:"repulsion"`
	Attraction           float64 `mapstructure:"attraction"`
	Clustering           float64 `mapstructure:"clustering"`
	RepulsionRadius      float64 `mapstructure:"repulsion_radius"`
	ProhibitedMultiplier float64 `mapstructure:"prohibited_multiplier"`
	MaxSpeed             float64 `mapstructure:"max_speed"`
	MinDistance          float64 `mapstructure:"min_distance"`
	OverlapRounds        int     `mapstructure:"overlap_rounds"`

	// SettleRounds is the overlap budget after airlock insertion. An
	// airlock dropped between two rooms at minimum clearance needs more
	// rounds than a fresh placement.
	SettleRounds int     `mapstructure:"settle_rounds"`
	CanvasMin    float64 `mapstructure:"canvas_min"`
	CanvasFactor float64 `mapstructure:"canvas_factor"`
	FlowBoost    float64 `mapstructure:"flow_boost"`
	LinearPull   float64 `mapstructure:"linear_pull"`
	AirlockGap   int     `mapstructure:"airlock_gap"`

	// Seed fixes the initial positions. Zero seeds from the clock.
	Seed uint64 `mapstructure:"seed"`

	// Set by ForConstraints.
	Linear     bool              `mapstructure:"-"`
	PreferFlow facility.FlowType `mapstructure:"-"`
}

// DefaultConfig returns the default simulation constants.
func DefaultConfig() Config {
	return Config{
		Iterations:           150,
		Damping:              0.85,
		Repulsion:            1000,
		Attraction:           0.02,
		Clustering:           0.002,
		RepulsionRadius:      150,
		ProhibitedMultiplier: 3,
		MaxSpeed:             10,
		MinDistance:          2,
		OverlapRounds:        10,
		SettleRounds:         50,
		CanvasMin:            50,
		CanvasFactor:         3,
		FlowBoost:            1.5,
		LinearPull:           0.5,
		AirlockGap:           cleanroom.AirlockGap,
	}
}

// Validate rejects constants the simulation cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Iterations < 0:
		return fmt.Errorf("iterations must be >= 0, got %d", c.Iterations)
	case c.Damping <= 0 || c.Damping >= 1:
		return fmt.Errorf("damping must be in (0, 1), got %v", c.Damping)
	case c.MaxSpeed <= 0:
		return fmt.Errorf("max_speed must be > 0, got %v", c.MaxSpeed)
	case c.MinDistance < 0:
		return fmt.Errorf("min_distance must be >= 0, got %v", c.MinDistance)
	case c.OverlapRounds < 1:
		return fmt.Errorf("overlap_rounds must be >= 1, got %d", c.OverlapRounds)
	case c.SettleRounds < c.OverlapRounds:
		return fmt.Errorf("settle_rounds must be >= overlap_rounds, got %d", c.SettleRounds)
	case c.CanvasMin <= 0:
		return fmt.Errorf("canvas_min must be > 0, got %v", c.CanvasMin)
	case c.AirlockGap < 1:
		return fmt.Errorf("airlock_gap must be >= 1, got %d", c.AirlockGap)
	}
	return nil
}

// ForConstraints tunes the constants for a request's layout style and flow
// priority.
func (c Config) ForConstraints(cons spec.Constraints) Config {
	switch cons.LayoutStyle {
	case spec.StyleCompact:
		c.CanvasMin *= 0.75
		c.CanvasFactor *= 0.75
		c.Clustering *= 2
	case spec.StyleSpacious:
		c.MinDistance *= 2
	case spec.StyleLinear:
		c.Linear = true
	}
	switch cons.PrioritizeFlow {
	case spec.FlowMaterial:
		c.PreferFlow = facility.FlowMaterial
	case spec.FlowPersonnel:
		c.PreferFlow = facility.FlowPersonnel
	default:
		c.PreferFlow = ""
	}
	return c
}
