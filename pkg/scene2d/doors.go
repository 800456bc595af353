package scene2d

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/cleanroom"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/facility"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/geo"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/validation"
)

// SynthesizeDoors creates a door for every non-prohibited relationship
// whose shapes are close enough: center distance at most
// cfg.DoorProximity times their combined width. Doors for the same shape
// pair and flow type are merged; a merge of opposing one-way doors becomes
// bidirectional.
func SynthesizeDoors(shapes []facility.Shape, rels []facility.Relationship, cfg Config) ([]facility.DoorConnection, *validation.Report) {
	report := validation.NewReport()

	byRoom := make(map[string]int, len(shapes))
	for i, s := range shapes {
		byRoom[s.RoomID] = i
	}

	type doorKey struct {
		a, b string
		flow facility.FlowType
	}
	merged := make(map[doorKey]int)
	doors := []facility.DoorConnection{}

	for _, rel := range rels {
		if rel.Prohibited() {
			continue
		}
		fi, okF := byRoom[rel.FromRoomID]
		ti, okT := byRoom[rel.ToRoomID]
		if !okF || !okT {
			continue
		}
		from, to := shapes[fi], shapes[ti]
		fc, tc := from.Center(), to.Center()

		dist := fc.Distance(tc)
		limit := cfg.DoorProximity * (from.Width + to.Width)
		if dist > limit {
			report.AddInfo(validation.Result{
				Level:       validation.LevelLayout,
				Message:     fmt.Sprintf("no door between %s and %s: %.0f apart, limit %.0f", from.Name, to.Name, dist, limit),
				Subject:     rel.ID,
				ActualValue: dist,
			})
			continue
		}

		flow := rel.Flow()
		key := doorKey{a: from.ID, b: to.ID, flow: flow}
		if key.b < key.a {
			key.a, key.b = key.b, key.a
		}
		if i, dup := merged[key]; dup {
			d := &doors[i]
			if d.FlowDirection != rel.Direction() || d.From.ShapeID != from.ID {
				d.FlowDirection = facility.Bidirectional
			}
			continue
		}

		merged[key] = len(doors)
		doors = append(doors, facility.DoorConnection{
			ID:               uuid.New().String(),
			From:             endpoint(from, tc),
			To:               endpoint(to, fc),
			FlowType:         flow,
			FlowDirection:    rel.Direction(),
			DoorType:         doorType(from, to, cfg.AirlockGap),
			RelationshipID:   rel.ID,
			RelationshipType: rel.Type,
		})
	}
	return doors, report
}

func endpoint(s facility.Shape, toward geo.Point) facility.Endpoint {
	c := s.Center()
	return facility.Endpoint{
		ShapeID:  s.ID,
		Anchor:   c,
		Edge:     geo.FacingEdge(c, toward, s.Width, s.Height),
		Position: 0.5,
	}
}

func doorType(a, b facility.Shape, gap int) facility.DoorType {
	if a.Airlock || b.Airlock || cleanroom.NeedsAirlock(a.Class, b.Class, gap) {
		return facility.DoorAirlock
	}
	return facility.DoorStandard
}
