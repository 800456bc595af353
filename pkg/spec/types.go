// Package spec defines the generation request: what the caller asks the
// engine to lay out.
package spec

// Request is a layout generation request. ExplicitRooms takes precedence
// over Description.
type Request struct {
	Description   string      `yaml:"description,omitempty" json:"description,omitempty"`
	ExplicitRooms []string    `yaml:"explicitRooms,omitempty" json:"explicitRooms,omitempty"`
	Capacity      *Capacity   `yaml:"capacity,omitempty" json:"capacity,omitempty"`
	Constraints   Constraints `yaml:"constraints,omitempty" json:"constraints,omitempty"`
}

// Capacity holds optional production hints. Nil fields were not given.
type Capacity struct {
	BatchSize  *float64 `yaml:"batchSize,omitempty" json:"batchSize,omitempty"`
	Throughput *float64 `yaml:"throughput,omitempty" json:"throughput,omitempty"`
}

// Constraints shape the placement.
type Constraints struct {
	LayoutStyle    LayoutStyle  `yaml:"layoutStyle,omitempty" json:"layoutStyle,omitempty"`
	PrioritizeFlow FlowPriority `yaml:"prioritizeFlow,omitempty" json:"prioritizeFlow,omitempty"`
}

// LayoutStyle selects placement tuning.
type LayoutStyle string

const (
	StyleBalanced LayoutStyle = "balanced"
	StyleCompact  LayoutStyle = "compact"
	StyleSpacious LayoutStyle = "spacious"
	StyleLinear   LayoutStyle = "linear"
)

// FlowPriority selects which flow relationships get extra attraction.
type FlowPriority string

const (
	FlowBalanced  FlowPriority = "balanced"
	FlowMaterial  FlowPriority = "material"
	FlowPersonnel FlowPriority = "personnel"
)
