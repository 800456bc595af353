package layout

import (
	"github.com/Afinucci/Design-Copilot-sub000/pkg/facility"
)

// separationTolerance absorbs float error left by the half-deficit pushes.
const separationTolerance = 1e-9

// OverlapResult reports how an overlap pass ended.
type OverlapResult struct {
	Rounds    int
	Converged bool
}

// ResolveOverlaps pushes apart every pair of rooms closer than the sum of
// their half extents plus minDistance, each by half the deficit, for at most
// maxRounds rounds. Positions are updated in place. It stops after the first
// round that moves nothing.
func ResolveOverlaps(rooms []facility.Room, minDistance float64, maxRounds int) OverlapResult {
	for round := 1; round <= maxRounds; round++ {
		moved := false
		for i := 0; i < len(rooms); i++ {
			for j := i + 1; j < len(rooms); j++ {
				delta := rooms[i].Position.Sub(rooms[j].Position)
				dist := delta.Length()
				want := rooms[i].HalfExtent() + rooms[j].HalfExtent() + minDistance
				if dist >= want-separationTolerance {
					continue
				}
				push := separation(delta, dist, i, j).Scale((want - dist) / 2)
				rooms[i].Position = rooms[i].Position.Add(push)
				rooms[j].Position = rooms[j].Position.Sub(push)
				moved = true
			}
		}
		if !moved {
			return OverlapResult{Rounds: round, Converged: true}
		}
	}
	return OverlapResult{Rounds: maxRounds, Converged: len(Violations(rooms, minDistance)) == 0}
}

// Violation is a pair of rooms closer than the separation rule allows.
type Violation struct {
	A, B     int
	Distance float64
	Required float64
}

// Violations lists the pairs that break the separation rule.
func Violations(rooms []facility.Room, minDistance float64) []Violation {
	var out []Violation
	for i := 0; i < len(rooms); i++ {
		for j := i + 1; j < len(rooms); j++ {
			dist := rooms[i].Position.Distance(rooms[j].Position)
			want := rooms[i].HalfExtent() + rooms[j].HalfExtent() + minDistance
			if dist < want-separationTolerance {
				out = append(out, Violation{A: i, B: j, Distance: dist, Required: want})
			}
		}
	}
	return out
}
