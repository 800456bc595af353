package compliance

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/cleanroom"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/facility"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/reference"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/textgen"
)

func TestScore(t *testing.T) {
	cfg := DefaultConfig()
	flow := facility.Relationship{Type: facility.MaterialFlow}
	ban := facility.Relationship{Type: facility.ProhibitedNear}

	cases := []struct {
		name string
		rels []facility.Relationship
		want int
	}{
		{"none", nil, 80},
		{"clean", []facility.Relationship{flow, flow}, 100},
		{"two prohibited", []facility.Relationship{flow, ban, ban}, 90},
		{"floor", repeat(ban, 30), 0},
	}

	for _, tc := range cases {
		if got := Score(tc.rels, cfg); got != tc.want {
			t.Errorf("%s: Score = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func repeat(r facility.Relationship, n int) []facility.Relationship {
	out := make([]facility.Relationship, n)
	for i := range out {
		out[i] = r
	}
	return out
}

func TestWarnings(t *testing.T) {
	rooms := []facility.Room{{ID: "1", Name: "Waste Disposal"}, {ID: "2", Name: "Aseptic Filling"}}
	rels := []facility.Relationship{
		{FromRoomID: "1", ToRoomID: "2", Type: facility.ProhibitedNear, Reason: "contamination risk"},
		{FromRoomID: "1", ToRoomID: "3", Type: facility.ProhibitedNear},
		{FromRoomID: "1", ToRoomID: "2", Type: facility.MaterialFlow},
	}
	got := Warnings(rooms, rels)
	if len(got) != 2 {
		t.Fatalf("warnings = %v, want 2", got)
	}
	if got[0] != "Waste Disposal must not be near Aseptic Filling: contamination risk" {
		t.Errorf("unexpected warning %q", got[0])
	}
	if got[1] != "Waste Disposal must not be near 3" {
		t.Errorf("unknown rooms should fall back to ids, got %q", got[1])
	}
}

func TestProximityWarnings(t *testing.T) {
	shapes := []facility.Shape{
		{RoomID: "a", Name: "A", X: 0, Y: 0, Width: 50, Height: 50},
		{RoomID: "b", Name: "B", X: 80, Y: 0, Width: 50, Height: 50},
		{RoomID: "c", Name: "C", X: 1000, Y: 0, Width: 50, Height: 50},
	}
	rels := []facility.Relationship{
		{FromRoomID: "a", ToRoomID: "b", Type: facility.ProhibitedNear},
		{FromRoomID: "a", ToRoomID: "c", Type: facility.ProhibitedNear},
	}
	got := ProximityWarnings(shapes, rels, 1.5)
	if len(got) != 1 || !strings.HasPrefix(got[0], "A and B") {
		t.Errorf("expected one warning for A/B, got %v", got)
	}
	if ProximityWarnings(shapes, rels, 0) != nil {
		t.Error("zero proximity should disable the check")
	}
}

func TestSuggestions(t *testing.T) {
	prod := facility.Room{Type: "Granulation", Category: CategoryProduction, Class: cleanroom.Ptr(cleanroom.ClassD)}
	filling := facility.Room{Type: "Aseptic Filling", Category: CategoryProduction, Class: cleanroom.Ptr(cleanroom.ClassA)}
	qc := facility.Room{Type: TypeQCLaboratory, Category: "Quality Control"}
	store := facility.Room{Type: "Raw Material Storage", Category: CategoryStorage}
	gown := facility.Room{Type: TypeGowningRoom, Category: "Support"}

	if got := Suggestions([]facility.Room{prod}); len(got) != 2 {
		t.Errorf("production alone: %v, want QC and storage", got)
	}
	if got := Suggestions([]facility.Room{prod, qc, store}); len(got) != 0 {
		t.Errorf("complete set should have no suggestions, got %v", got)
	}
	got := Suggestions([]facility.Room{filling, qc, store})
	if len(got) != 1 || !strings.Contains(got[0], "Gowning Room") {
		t.Errorf("grade A without gowning: %v", got)
	}
	if got := Suggestions([]facility.Room{filling, qc, store, gown}); len(got) != 0 {
		t.Errorf("unexpected suggestions %v", got)
	}
	if got := Suggestions(nil); got == nil || len(got) != 0 {
		t.Errorf("empty input should give an empty list, got %#v", got)
	}
}

type failingGenerator struct{}

func (failingGenerator) ExtractRooms(context.Context, string) (*textgen.Extraction, error) {
	return nil, errors.New("offline")
}

func (failingGenerator) Rationale(context.Context, []textgen.RoomSummary, string) (string, error) {
	return "", errors.New("offline")
}

func TestEvaluateFallbackRationale(t *testing.T) {
	rooms := []facility.Room{{ID: "1", Name: "Office", Area: 20}, {ID: "2", Name: "Corridor", Area: 30}}
	s := NewScorer(DefaultConfig(), failingGenerator{}, nil)
	md, report := s.Evaluate(context.Background(), Input{Rooms: rooms})

	if md.Rationale != FallbackRationale(rooms) {
		t.Errorf("rationale = %q, want fallback", md.Rationale)
	}
	if md.TotalArea != 50 {
		t.Errorf("total area = %v, want 50", md.TotalArea)
	}
	if md.ComplianceScore != 80 {
		t.Errorf("score = %d, want 80 with no relationships", md.ComplianceScore)
	}
	if !report.Valid || len(report.Warnings) != 1 {
		t.Errorf("expected one under-specified warning, got %v", report.Warnings)
	}
}

func TestEvaluateUsesGenerator(t *testing.T) {
	table := []facility.Room{{ID: "1", Name: "QC Laboratory", Category: "Quality Control", Area: 40, Class: cleanroom.Ptr(cleanroom.ClassD)}}
	gen := textgen.NewRuleBased(reference.Default())
	md, _ := NewScorer(DefaultConfig(), gen, nil).Evaluate(context.Background(), Input{
		Rooms:         table,
		Relationships: []facility.Relationship{{Type: facility.RequiresAccess}},
	})
	if !strings.HasPrefix(md.Rationale, "The layout arranges 1 rooms over 40 m².") {
		t.Errorf("rationale = %q", md.Rationale)
	}
	if md.ComplianceScore != 100 {
		t.Errorf("score = %d, want 100", md.ComplianceScore)
	}
}
