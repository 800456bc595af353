package layout

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/cleanroom"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/facility"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/geo"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/validation"
)

// Airlock kinds.
const (
	MaterialAirlock  = "Material Airlock"
	PersonnelAirlock = "Personnel Airlock"
)

// AirlockSource sizes airlock rooms. reference.Resolver implements it.
type AirlockSource interface {
	Airlock(kind string) facility.Room
}

// AirlockKind names the airlock a relationship needs.
func AirlockKind(rel facility.Relationship) string {
	if rel.Type == facility.MaterialFlow || rel.FlowType == facility.FlowMaterial {
		return MaterialAirlock
	}
	return PersonnelAirlock
}

// InsertAirlocks adds a buffer room on every non-prohibited relationship
// whose endpoints' grades meet the airlock rule, and reroutes that
// relationship through it. Pairs share one airlock per kind. Airlocks are
// placed at the midpoint of their endpoints and take the cleaner grade;
// positions of existing rooms are not changed.
func InsertAirlocks(rooms []facility.Room, rels []facility.Relationship, src AirlockSource, gap int) ([]facility.Room, []facility.Relationship, *validation.Report) {
	report := validation.NewReport()

	outRooms := make([]facility.Room, len(rooms), len(rooms)+len(rels))
	copy(outRooms, rooms)
	index := make(map[string]int, len(rooms))
	for i, r := range rooms {
		index[r.ID] = i
	}

	type airlockKey struct {
		a, b string
		kind string
	}
	inserted := make(map[airlockKey]string)
	outRels := make([]facility.Relationship, 0, len(rels))

	for _, rel := range rels {
		if rel.Prohibited() {
			outRels = append(outRels, rel)
			continue
		}
		fi, okF := index[rel.FromRoomID]
		ti, okT := index[rel.ToRoomID]
		if !okF || !okT {
			outRels = append(outRels, rel)
			continue
		}
		from, to := rooms[fi], rooms[ti]
		if from.Airlock || to.Airlock || !cleanroom.NeedsAirlock(from.Class, to.Class, gap) {
			outRels = append(outRels, rel)
			continue
		}

		kind := AirlockKind(rel)
		key := airlockKey{a: from.ID, b: to.ID, kind: kind}
		if key.b < key.a {
			key.a, key.b = key.b, key.a
		}
		airlockID, ok := inserted[key]
		if !ok {
			al := src.Airlock(kind)
			al.Name = kind
			al.Type = kind
			al.Category = "Support"
			al.Airlock = true
			al.Class = cleanroom.Cleaner(from.Class, to.Class)
			al.Position = geo.MidPoint(from.Position, to.Position)
			outRooms = append(outRooms, al)
			airlockID = al.ID
			inserted[key] = airlockID

			g, _ := cleanroom.Gap(from.Class, to.Class)
			report.AddInfo(validation.Result{
				Level:   validation.LevelPlacement,
				Message: fmt.Sprintf("inserted %s between %s (%s) and %s (%s), grade gap %d", kind, from.Name, *from.Class, to.Name, *to.Class, g),
				Subject: airlockID,
			})
		}

		in, out := rel, rel
		in.ID, out.ID = uuid.New().String(), uuid.New().String()
		in.ToRoomID = airlockID
		out.FromRoomID = airlockID
		in.Via, out.Via = airlockID, airlockID
		outRels = append(outRels, in, out)
	}

	return outRooms, outRels, report
}
