// Package textgen is the narrow text-generation capability the engine
// consumes: pulling a room list out of a free-text brief and writing a short
// rationale for a finished layout.
package textgen

import (
	"context"
	"errors"
)

// ErrMalformed is returned when a generator answers with something that
// cannot be read as the expected structure.
var ErrMalformed = errors.New("malformed text-generation response")

// Extraction is the structured reading of a facility description.
type Extraction struct {
	Rooms          []string `json:"rooms"`
	BatchSize      *float64 `json:"batchSize,omitempty"`
	Throughput     *float64 `json:"throughput,omitempty"`
	LayoutStyle    string   `json:"layoutStyle,omitempty"`
	PrioritizeFlow string   `json:"prioritizeFlow,omitempty"`
}

// RoomSummary is the per-room input to a rationale.
type RoomSummary struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Class    string  `json:"cleanroomClass,omitempty"`
	Area     float64 `json:"area"`
}

// Generator extracts rooms and writes rationales.
type Generator interface {
	ExtractRooms(ctx context.Context, description string) (*Extraction, error)
	Rationale(ctx context.Context, rooms []RoomSummary, description string) (string, error)
}
