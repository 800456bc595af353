package scene2d

import (
	"fmt"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/cleanroom"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/facility"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/validation"
)

// ValidateLayout checks a finished layout against its own relationships:
// shape integrity, footprint separation, door references, airlock coverage
// and flow continuity through the doors.
func ValidateLayout(l *facility.Layout, cfg Config) *validation.Report {
	r := validation.NewReport()

	if l == nil {
		r.AddError(validation.Result{
			Level:   validation.LevelLayout,
			Message: "layout is nil",
		})
		return r
	}

	validateShapes(l, r)
	validateSeparation(l, cfg, r)
	validateDoors(l, r)
	validateAirlocks(l, cfg, r)
	validateFlowContinuity(l, r)

	return r
}

func validateShapes(l *facility.Layout, r *validation.Report) {
	seen := make(map[string]int, len(l.Shapes))
	for i, s := range l.Shapes {
		if s.ID == "" {
			r.AddError(validation.Result{
				Level:       validation.LevelLayout,
				Message:     fmt.Sprintf("shape at index %d has empty ID", i),
				ActualValue: "",
				Expected:    "non-empty string",
			})
			continue
		}
		if prev, exists := seen[s.ID]; exists {
			r.AddError(validation.Result{
				Level:       validation.LevelLayout,
				Message:     fmt.Sprintf("duplicate shape ID %q at indices %d and %d", s.ID, prev, i),
				Subject:     s.ID,
				ActualValue: s.ID,
			})
		}
		seen[s.ID] = i

		if s.Area <= 0 || s.Width <= 0 || s.Height <= 0 {
			r.AddError(validation.Result{
				Level:       validation.LevelLayout,
				Message:     fmt.Sprintf("shape %s has non-positive size %.1f x %.1f (%.1f m²)", s.Name, s.Width, s.Height, s.Area),
				Subject:     s.ID,
				ActualValue: s.Area,
				Expected:    "> 0",
			})
		}
	}
}

func validateSeparation(l *facility.Layout, cfg Config, r *validation.Report) {
	half := func(s facility.Shape) float64 {
		return max(s.Width, s.Height) / 2
	}
	clearance := cfg.MinDistance * cfg.Scale
	for i := 0; i < len(l.Shapes); i++ {
		for j := i + 1; j < len(l.Shapes); j++ {
			a, b := l.Shapes[i], l.Shapes[j]
			dist := a.Center().Distance(b.Center())
			want := half(a) + half(b) + clearance
			if dist < want-1e-6 {
				r.AddError(validation.Result{
					Level:        validation.LevelLayout,
					Message:      fmt.Sprintf("%s and %s are %.1f apart, need %.1f", a.Name, b.Name, dist, want),
					Subject:      a.ID,
					ConflictWith: b.ID,
					ActualValue:  dist,
					Expected:     fmt.Sprintf(">= %.1f", want),
				})
			}
		}
	}
}

func validateDoors(l *facility.Layout, r *validation.Report) {
	shapeIDs := make(map[string]bool, len(l.Shapes))
	for _, s := range l.Shapes {
		shapeIDs[s.ID] = true
	}
	rels := make(map[string]facility.Relationship, len(l.Relationships))
	for _, rel := range l.Relationships {
		rels[rel.ID] = rel
	}

	for i, d := range l.DoorConnections {
		for _, ep := range []facility.Endpoint{d.From, d.To} {
			if !shapeIDs[ep.ShapeID] {
				r.AddError(validation.Result{
					Level:       validation.LevelLayout,
					Message:     fmt.Sprintf("door %d references non-existent shape %q", i, ep.ShapeID),
					Subject:     d.ID,
					ActualValue: ep.ShapeID,
					Expected:    "existing shape ID",
				})
			}
		}
		if d.RelationshipType == facility.ProhibitedNear {
			r.AddError(validation.Result{
				Level:   validation.LevelLayout,
				Message: fmt.Sprintf("door %s is licensed by a PROHIBITED_NEAR relationship", d.ID),
				Subject: d.ID,
			})
		}
		if rel, ok := rels[d.RelationshipID]; ok && rel.Prohibited() {
			r.AddError(validation.Result{
				Level:   validation.LevelLayout,
				Message: fmt.Sprintf("door %s references prohibited relationship %s", d.ID, rel.ID),
				Subject: d.ID,
			})
		}
	}
}

func validateAirlocks(l *facility.Layout, cfg Config, r *validation.Report) {
	byRoom := make(map[string]facility.Shape, len(l.Shapes))
	for _, s := range l.Shapes {
		byRoom[s.RoomID] = s
	}
	for _, rel := range l.Relationships {
		if rel.Prohibited() || rel.Via != "" {
			continue
		}
		a, okA := byRoom[rel.FromRoomID]
		b, okB := byRoom[rel.ToRoomID]
		if !okA || !okB || a.Airlock || b.Airlock {
			continue
		}
		if cleanroom.NeedsAirlock(a.Class, b.Class, cfg.AirlockGap) {
			r.AddError(validation.Result{
				Level:        validation.LevelLayout,
				Message:      fmt.Sprintf("%s (%s) and %s (%s) are linked without an airlock", a.Name, *a.Class, b.Name, *b.Class),
				Subject:      a.ID,
				ConflictWith: b.ID,
			})
		}
	}
}

// MarkNonCompliant copies findings about individual shapes onto the shapes'
// compliance flags.
func MarkNonCompliant(shapes []facility.Shape, report *validation.Report) {
	issues := report.ErrorsBySubject()
	for i := range shapes {
		if msgs, ok := issues[shapes[i].ID]; ok {
			shapes[i].Compliance.Compliant = false
			shapes[i].Compliance.Issues = append(shapes[i].Compliance.Issues, msgs...)
		}
	}
}
