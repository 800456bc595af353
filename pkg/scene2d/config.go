// Package scene2d projects placed rooms into output coordinates, derives
// doors between them and checks the finished layout.
package scene2d

import "github.com/Afinucci/Design-Copilot-sub000/pkg/cleanroom"

// Config holds projection and door constants.
type Config struct {
	// Scale is output units per metre.
	Scale float64 `mapstructure:"scale"`
	// Margin is where the bounding box starts on both axes.
	Margin float64 `mapstructure:"margin"`
	// DoorProximity multiplies the combined width of two shapes to give the
	// farthest center distance that still gets a door.
	DoorProximity float64 `mapstructure:"door_proximity"`
	// AirlockGap is the classification gap that types a door as an
	// airlock. It follows layout.airlock_gap.
	AirlockGap int `mapstructure:"-"`
	// MinDistance is the placement clearance in metres, used by validation.
	MinDistance float64 `mapstructure:"-"`
}

// DefaultConfig returns the default projection constants.
func DefaultConfig() Config {
	return Config{
		Scale:         10,
		Margin:        50,
		DoorProximity: 1.5,
		AirlockGap:    cleanroom.AirlockGap,
		MinDistance:   2,
	}
}
