// Package compliance scores a generated layout against the GMP spatial
// rules it was built from and writes the layout's metadata.
package compliance

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/cleanroom"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/facility"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/textgen"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/validation"
)

// Room types and categories the suggestions look for.
const (
	CategoryProduction = "Production"
	CategoryStorage    = "Storage"
	TypeQCLaboratory   = "QC Laboratory"
	TypeGowningRoom    = "Gowning Room"
)

// Config holds the scoring penalties.
type Config struct {
	ProhibitedPenalty     int `mapstructure:"prohibited_penalty"`
	NoRelationshipPenalty int `mapstructure:"no_relationship_penalty"`
	// DoorProximity mirrors the door rule so prohibited pairs that ended up
	// within door range can be flagged.
	DoorProximity float64 `mapstructure:"-"`
}

// DefaultConfig returns the default penalties.
func DefaultConfig() Config {
	return Config{
		ProhibitedPenalty:     5,
		NoRelationshipPenalty: 20,
		DoorProximity:         1.5,
	}
}

// Input is everything the scorer reads. Rooms include inserted airlocks.
type Input struct {
	Rooms         []facility.Room
	Shapes        []facility.Shape
	Relationships []facility.Relationship
	Description   string
}

// Scorer computes layout metadata.
type Scorer struct {
	cfg    Config
	gen    textgen.Generator
	logger *zap.Logger
}

// NewScorer creates a scorer. gen may be nil, in which case the fallback
// rationale is always used.
func NewScorer(cfg Config, gen textgen.Generator, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{cfg: cfg, gen: gen, logger: logger}
}

// Evaluate scores the layout and fills every metadata field except
// GeneratedAt. A failing rationale generator never fails the call.
func (s *Scorer) Evaluate(ctx context.Context, in Input) (facility.Metadata, *validation.Report) {
	report := validation.NewReport()

	md := facility.Metadata{
		TotalArea:       TotalArea(in.Rooms),
		ComplianceScore: Score(in.Relationships, s.cfg),
		Warnings:        Warnings(in.Rooms, in.Relationships),
		Suggestions:     Suggestions(in.Rooms),
	}
	md.Warnings = append(md.Warnings, ProximityWarnings(in.Shapes, in.Relationships, s.cfg.DoorProximity)...)

	for _, w := range md.Warnings {
		report.Warnf(validation.LevelCompliance, "%s", w)
	}
	if len(in.Relationships) == 0 {
		report.Warnf(validation.LevelCompliance, "no relationships found, layout is under-specified")
	}

	md.Rationale = s.rationale(ctx, in)
	report.Infof(validation.LevelCompliance, "compliance score %d", md.ComplianceScore)
	return md, report
}

func (s *Scorer) rationale(ctx context.Context, in Input) string {
	if s.gen == nil {
		return FallbackRationale(in.Rooms)
	}
	summaries := make([]textgen.RoomSummary, len(in.Rooms))
	for i, r := range in.Rooms {
		summaries[i] = textgen.RoomSummary{Name: r.Name, Category: r.Category, Area: r.Area}
		if r.Class != nil {
			summaries[i].Class = string(*r.Class)
		}
	}
	text, err := s.gen.Rationale(ctx, summaries, in.Description)
	if err != nil || text == "" {
		s.logger.Warn("rationale generation failed, using fallback", zap.Error(err))
		return FallbackRationale(in.Rooms)
	}
	return text
}

// Score returns 100 minus the prohibited-relationship penalties, minus the
// no-relationship penalty for an empty set, clamped to 0..100.
func Score(rels []facility.Relationship, cfg Config) int {
	score := 100
	if len(rels) == 0 {
		score -= cfg.NoRelationshipPenalty
	}
	for _, r := range rels {
		if r.Prohibited() {
			score -= cfg.ProhibitedPenalty
		}
	}
	return max(0, min(100, score))
}

// Warnings returns one message per prohibited relationship. Rooms are named
// when found, otherwise the relationship's room ids are used.
func Warnings(rooms []facility.Room, rels []facility.Relationship) []string {
	names := make(map[string]string, len(rooms))
	for _, r := range rooms {
		names[r.ID] = r.Name
	}
	name := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return id
	}
	out := []string{}
	for _, r := range rels {
		if !r.Prohibited() {
			continue
		}
		msg := fmt.Sprintf("%s must not be near %s", name(r.FromRoomID), name(r.ToRoomID))
		if r.Reason != "" {
			msg += ": " + r.Reason
		}
		out = append(out, msg)
	}
	return out
}

// ProximityWarnings flags prohibited pairs whose shapes ended up within
// door range of each other. Shapes are matched by room id; messages use
// shape names.
func ProximityWarnings(shapes []facility.Shape, rels []facility.Relationship, proximity float64) []string {
	if proximity <= 0 {
		return nil
	}
	byRoom := make(map[string]facility.Shape, len(shapes))
	for _, s := range shapes {
		byRoom[s.RoomID] = s
	}
	var out []string
	for _, r := range rels {
		if !r.Prohibited() {
			continue
		}
		a, okA := byRoom[r.FromRoomID]
		b, okB := byRoom[r.ToRoomID]
		if !okA || !okB {
			continue
		}
		if a.Center().Distance(b.Center()) <= proximity*(a.Width+b.Width) {
			out = append(out, fmt.Sprintf("%s and %s are prohibited neighbours but ended up within door range", a.Name, b.Name))
		}
	}
	return out
}

// Suggestions lists supporting rooms the layout commonly needs but lacks.
func Suggestions(rooms []facility.Room) []string {
	var production, storage, qc, gowning, highGrade bool
	for _, r := range rooms {
		switch r.Category {
		case CategoryProduction:
			production = true
		case CategoryStorage:
			storage = true
		}
		switch r.Type {
		case TypeQCLaboratory:
			qc = true
		case TypeGowningRoom:
			gowning = true
		}
		if r.Class != nil && r.Class.Level() >= cleanroom.ClassB.Level() {
			highGrade = true
		}
	}

	out := []string{}
	if production && !qc {
		out = append(out, "Add a QC Laboratory for in-process and release testing of production batches.")
	}
	if highGrade && !gowning {
		out = append(out, "Add a Gowning Room so personnel can change before entering grade A/B areas.")
	}
	if production && !storage {
		out = append(out, "Add a storage area for raw materials and finished goods.")
	}
	return out
}

// TotalArea sums room areas in m².
func TotalArea(rooms []facility.Room) float64 {
	var total float64
	for _, r := range rooms {
		total += r.Area
	}
	return total
}

// FallbackRationale is the fixed sentence used when no generator answers.
func FallbackRationale(rooms []facility.Room) string {
	return fmt.Sprintf("Layout of %d rooms (%.0f m²) arranged to keep related rooms close and incompatible rooms apart, with airlocks between sharply different cleanroom grades.",
		len(rooms), TotalArea(rooms))
}
