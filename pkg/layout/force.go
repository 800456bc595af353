package layout

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/facility"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/geo"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/validation"
)

// body is the simulation state of one room. Bodies live in a flat slice
// parallel to the rooms being placed.
type body struct {
	room  int
	pos   geo.Point
	vel   geo.Point
	half  float64
	level int
	class bool
}

// spring is a resolved non-prohibited relationship.
type spring struct {
	a, b int
	k    float64
}

// Placement is the outcome of Place.
type Placement struct {
	Rooms     []facility.Room
	Canvas    float64
	Rounds    int
	Converged bool
}

// Place runs the force simulation and the overlap pass. The input rooms are
// not modified; the returned rooms carry the settled positions (footprint
// centers, metres, canvas origin at 0,0).
//
// Every iteration touches every pair, so cost grows with the square of the
// room count. That is fine for a facility of tens of rooms.
func Place(rooms []facility.Room, rels []facility.Relationship, cfg Config) (*Placement, *validation.Report) {
	report := validation.NewReport()
	out := make([]facility.Room, len(rooms))
	copy(out, rooms)
	if len(out) == 0 {
		return &Placement{Rooms: out, Converged: true}, report
	}

	// 1. Canvas and initial positions.
	var totalArea float64
	for _, r := range out {
		totalArea += r.Area
	}
	side := math.Max(cfg.CanvasMin, cfg.CanvasFactor*math.Sqrt(totalArea))

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	bodies := make([]body, len(out))
	for i, r := range out {
		b := body{room: i, half: r.HalfExtent()}
		if r.Class != nil {
			b.level, b.class = r.Class.Level(), true
		}
		b.pos = geo.Pt(side/4+rng.Float64()*side/2, side/4+rng.Float64()*side/2)
		bodies[i] = b
	}

	// 2. Resolve relationships to index pairs.
	index := make(map[string]int, len(out))
	for i, r := range out {
		index[r.ID] = i
	}
	var springs []spring
	prohibited := make(map[[2]int]bool)
	for _, rel := range rels {
		a, okA := index[rel.FromRoomID]
		b, okB := index[rel.ToRoomID]
		if !okA || !okB || a == b {
			report.AddWarning(validation.Result{
				Level:   validation.LevelPlacement,
				Message: fmt.Sprintf("relationship %s references unknown rooms, ignored", rel.ID),
				Subject: rel.ID,
			})
			continue
		}
		if rel.Prohibited() {
			prohibited[pairKey(a, b)] = true
			continue
		}
		k := cfg.Attraction * float64(facility.ClampPriority(rel.Priority))
		if cfg.PreferFlow != "" && rel.Flow() == cfg.PreferFlow {
			k *= cfg.FlowBoost
		}
		springs = append(springs, spring{a: a, b: b, k: k})
	}

	// 3. Iterate.
	forces := make([]geo.Point, len(bodies))
	for iter := 0; iter < cfg.Iterations; iter++ {
		for i := range forces {
			forces[i] = geo.Origin
		}

		for _, s := range springs {
			d := bodies[s.b].pos.Sub(bodies[s.a].pos)
			// Spring: magnitude k*d along the unit vector is k times the
			// separation vector itself.
			forces[s.a] = forces[s.a].Add(d.Scale(s.k))
			forces[s.b] = forces[s.b].Sub(d.Scale(s.k))
		}

		for i := 0; i < len(bodies); i++ {
			for j := i + 1; j < len(bodies); j++ {
				delta := bodies[i].pos.Sub(bodies[j].pos)
				dist := delta.Length()
				dir := separation(delta, dist, i, j)

				isProhibited := prohibited[pairKey(i, j)]
				if isProhibited || dist < cfg.RepulsionRadius {
					strength := cfg.Repulsion
					if isProhibited {
						strength *= cfg.ProhibitedMultiplier
					}
					d := math.Max(dist, 1)
					f := dir.Scale(strength / (d * d))
					forces[i] = forces[i].Add(f)
					forces[j] = forces[j].Sub(f)
				}

				if bodies[i].class && bodies[j].class && bodies[i].level == bodies[j].level {
					f := delta.Scale(cfg.Clustering)
					forces[i] = forces[i].Sub(f)
					forces[j] = forces[j].Add(f)
				}
			}
		}

		if cfg.Linear {
			mid := side / 2
			for i := range bodies {
				forces[i].Y += (mid - bodies[i].pos.Y) * cfg.LinearPull
			}
		}

		for i := range bodies {
			b := &bodies[i]
			b.vel = b.vel.Add(forces[i]).Scale(cfg.Damping)
			if speed := b.vel.Length(); speed > cfg.MaxSpeed {
				b.vel = b.vel.Scale(cfg.MaxSpeed / speed)
			}
			b.pos = b.pos.Add(b.vel)
			b.pos.X = geo.Clamp(b.pos.X, b.half, side-b.half)
			b.pos.Y = geo.Clamp(b.pos.Y, b.half, side-b.half)
		}
	}

	// 4. Write back and separate.
	for _, b := range bodies {
		out[b.room].Position = b.pos
	}
	ov := ResolveOverlaps(out, cfg.MinDistance, cfg.OverlapRounds)
	if !ov.Converged {
		report.AddWarning(validation.Result{
			Level:   validation.LevelPlacement,
			Message: fmt.Sprintf("overlap resolution did not converge within %d rounds", ov.Rounds),
		})
	}
	report.Infof(validation.LevelPlacement, "placed %d rooms on a %.1f m canvas in %d iterations", len(out), side, cfg.Iterations)

	return &Placement{Rooms: out, Canvas: side, Rounds: ov.Rounds, Converged: ov.Converged}, report
}

// separation returns the unit vector pointing from j to i. Coincident
// bodies get a fixed direction derived from their indices.
func separation(delta geo.Point, dist float64, i, j int) geo.Point {
	if dist > 1e-9 {
		return delta.Normalize()
	}
	angle := float64(i*31+j*17) * 2.399963229728653
	return geo.Pt(math.Cos(angle), math.Sin(angle))
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}
