// Package facility holds the data model shared by every stage of layout
// synthesis.
package facility

import (
	"time"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/cleanroom"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/geo"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/validation"
)

// Capacity carries optional production hints used to scale room sizes.
type Capacity struct {
	BatchSize  float64 `json:"batchSize,omitempty" yaml:"batchSize,omitempty"`
	Throughput float64 `json:"throughput,omitempty" yaml:"throughput,omitempty"`
}

// Requirement is one room the layout must contain.
type Requirement struct {
	Name     string   `json:"name"`
	Capacity Capacity `json:"capacity"`
}

// Room is a sized room. Type is the reference room type the name resolved
// to. Position is the footprint center in simulation units (metres). Width,
// Height and Area are fixed once resolved.
type Room struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Type      string           `json:"type"`
	Category  string           `json:"category"`
	Class     *cleanroom.Class `json:"cleanroomClass,omitempty"`
	Width     float64          `json:"width"`
	Height    float64          `json:"height"`
	Area      float64          `json:"area"`
	ShapeKind string           `json:"shapeKind"`
	Position  geo.Point        `json:"position"`
	Airlock   bool             `json:"airlock,omitempty"`
}

// HalfExtent is the radius used for separation checks.
func (r Room) HalfExtent() float64 {
	if r.Height > r.Width {
		return r.Height / 2
	}
	return r.Width / 2
}

// RelationshipType is the kind of constraint between two rooms.
type RelationshipType string

const (
	MaterialFlow   RelationshipType = "MATERIAL_FLOW"
	PersonnelFlow  RelationshipType = "PERSONNEL_FLOW"
	RequiresAccess RelationshipType = "REQUIRES_ACCESS"
	ProhibitedNear RelationshipType = "PROHIBITED_NEAR"
)

// AllowedRelationshipTypes lists the types the engine consumes; anything
// else a store returns is ignored.
var AllowedRelationshipTypes = []RelationshipType{
	MaterialFlow,
	PersonnelFlow,
	RequiresAccess,
	ProhibitedNear,
}

// IsAllowed reports whether t is one of AllowedRelationshipTypes.
func (t RelationshipType) IsAllowed() bool {
	for _, a := range AllowedRelationshipTypes {
		if t == a {
			return true
		}
	}
	return false
}

// FlowType is the kind of traffic a door carries.
type FlowType string

const (
	FlowMaterial  FlowType = "material"
	FlowPersonnel FlowType = "personnel"
)

// FlowDirection says whether traffic through a door is one-way.
type FlowDirection string

const (
	Unidirectional FlowDirection = "unidirectional"
	Bidirectional  FlowDirection = "bidirectional"
)

// Relationship is a typed, prioritized constraint between two rooms.
type Relationship struct {
	ID            string           `json:"id"`
	FromRoomID    string           `json:"fromRoomId"`
	ToRoomID      string           `json:"toRoomId"`
	Type          RelationshipType `json:"type"`
	Priority      int              `json:"priority"`
	FlowType      FlowType         `json:"flowType,omitempty"`
	FlowDirection FlowDirection    `json:"flowDirection,omitempty"`
	Reason        string           `json:"reason,omitempty"`
	Via           string           `json:"via,omitempty"`
}

// Prohibited reports whether the relationship forbids proximity.
func (r Relationship) Prohibited() bool {
	return r.Type == ProhibitedNear
}

// Flow returns the flow type carried by the relationship. Material flow
// relationships always carry material; access relationships fall back to
// personnel when the store gave no flow type.
func (r Relationship) Flow() FlowType {
	switch r.Type {
	case MaterialFlow:
		return FlowMaterial
	case PersonnelFlow:
		return FlowPersonnel
	}
	if r.FlowType != "" {
		return r.FlowType
	}
	return FlowPersonnel
}

// Direction returns the flow direction, bidirectional when unset.
func (r Relationship) Direction() FlowDirection {
	if r.FlowDirection == "" {
		return Bidirectional
	}
	return r.FlowDirection
}

// ClampPriority limits p to the 1–10 range.
func ClampPriority(p int) int {
	if p < 1 {
		return 1
	}
	if p > 10 {
		return 10
	}
	return p
}

// Compliance flags attached to a shape.
type Compliance struct {
	Compliant bool     `json:"compliant"`
	Issues    []string `json:"issues"`
}

// Shape is a finalized room projected into output coordinates. X and Y are
// the top-left corner.
type Shape struct {
	ID          string                `json:"id"`
	RoomID      string                `json:"roomId"`
	Name        string                `json:"name"`
	Category    string                `json:"category"`
	Class       *cleanroom.Class      `json:"cleanroomClass,omitempty"`
	ShapeKind   string                `json:"shapeKind"`
	X           float64               `json:"x"`
	Y           float64               `json:"y"`
	Width       float64               `json:"width"`
	Height      float64               `json:"height"`
	Area        float64               `json:"area"`
	Rotation    float64               `json:"rotation"`
	Environment cleanroom.Environment `json:"environment"`
	Compliance  Compliance            `json:"compliance"`
	Airlock     bool                  `json:"airlock,omitempty"`
}

// Center returns the shape center in output coordinates.
func (s Shape) Center() geo.Point {
	return geo.Pt(s.X+s.Width/2, s.Y+s.Height/2)
}

// DoorType distinguishes plain doors from airlock doors.
type DoorType string

const (
	DoorStandard DoorType = "standard"
	DoorAirlock  DoorType = "airlock"
)

// Endpoint is one side of a door.
type Endpoint struct {
	ShapeID  string    `json:"shapeId"`
	Anchor   geo.Point `json:"anchor"`
	Edge     int       `json:"edge"`
	Position float64   `json:"position"`
}

// DoorConnection is a door derived from a relationship between two shapes.
type DoorConnection struct {
	ID               string           `json:"id"`
	From             Endpoint         `json:"from"`
	To               Endpoint         `json:"to"`
	FlowType         FlowType         `json:"flowType"`
	FlowDirection    FlowDirection    `json:"flowDirection"`
	DoorType         DoorType         `json:"doorType"`
	RelationshipID   string           `json:"relationshipId"`
	RelationshipType RelationshipType `json:"relationshipType"`
}

// Metadata summarizes a generated layout.
type Metadata struct {
	TotalArea       float64   `json:"totalArea"`
	ComplianceScore int       `json:"complianceScore"`
	Warnings        []string  `json:"warnings"`
	Suggestions     []string  `json:"suggestions"`
	Rationale       string    `json:"rationale"`
	GeneratedAt     time.Time `json:"generatedAt"`
}

// Layout is the complete result of a generation request.
type Layout struct {
	Shapes          []Shape            `json:"shapes"`
	DoorConnections []DoorConnection   `json:"doorConnections"`
	Metadata        Metadata           `json:"metadata"`
	Relationships   []Relationship     `json:"relationships,omitempty"`
	Report          *validation.Report `json:"report,omitempty"`
}
