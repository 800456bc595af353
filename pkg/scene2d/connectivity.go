package scene2d

import (
	"fmt"
	"sort"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/facility"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/validation"
)

// BuildDoorGraph returns, for every shape with a door, the shapes it opens
// onto. Doors are walked both ways regardless of flow direction. Neighbor
// lists are sorted for deterministic output.
func BuildDoorGraph(doors []facility.DoorConnection) map[string][]string {
	conn := make(map[string]map[string]bool)
	link := func(a, b string) {
		if conn[a] == nil {
			conn[a] = make(map[string]bool)
		}
		conn[a][b] = true
	}
	for _, d := range doors {
		link(d.From.ShapeID, d.To.ShapeID)
		link(d.To.ShapeID, d.From.ShapeID)
	}

	result := make(map[string][]string, len(conn))
	for id, neighbors := range conn {
		ids := make([]string, 0, len(neighbors))
		for nid := range neighbors {
			ids = append(ids, nid)
		}
		sort.Strings(ids)
		result[id] = ids
	}
	return result
}

// Reachable reports whether to can be reached from from through the door
// graph.
func Reachable(graph map[string][]string, from, to string) bool {
	if from == to {
		return true
	}
	seen := map[string]bool{from: true}
	queue := []string{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range graph[cur] {
			if n == to {
				return true
			}
			if !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	return false
}

func validateFlowContinuity(l *facility.Layout, r *validation.Report) {
	graph := BuildDoorGraph(l.DoorConnections)
	byRoom := make(map[string]facility.Shape, len(l.Shapes))
	for _, s := range l.Shapes {
		byRoom[s.RoomID] = s
	}
	for _, rel := range l.Relationships {
		if rel.Prohibited() {
			continue
		}
		a, okA := byRoom[rel.FromRoomID]
		b, okB := byRoom[rel.ToRoomID]
		if !okA || !okB {
			continue
		}
		if !Reachable(graph, a.ID, b.ID) {
			r.AddWarning(validation.Result{
				Level:        validation.LevelLayout,
				Message:      fmt.Sprintf("%s flow from %s to %s has no door route", rel.Flow(), a.Name, b.Name),
				Subject:      a.ID,
				ConflictWith: b.ID,
			})
		}
	}
}
