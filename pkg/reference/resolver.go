package reference

import (
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/facility"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/geo"
)

// Generic size used for room types the table does not know.
const (
	DefaultWidth    = 10.0
	DefaultHeight   = 10.0
	DefaultCategory = "General"
	DefaultShape    = "rectangle"
)

// Resolver turns requirements into sized rooms.
type Resolver struct {
	table  *Table
	logger *zap.Logger
}

// NewResolver creates a resolver over table. A nil logger is replaced by a
// no-op logger.
func NewResolver(table *Table, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{table: table, logger: logger}
}

// Table returns the underlying reference table.
func (r *Resolver) Table() *Table {
	return r.table
}

// Resolve sizes one requirement. Unknown names get the generic default size
// and a logged warning; the second result reports whether the table matched.
func (r *Resolver) Resolve(req facility.Requirement) (facility.Room, bool) {
	rec, ok := r.table.Lookup(req.Name)
	if !ok {
		r.logger.Warn("room type not in reference table, using default size",
			zap.String("room", req.Name),
			zap.Float64("width", DefaultWidth),
			zap.Float64("height", DefaultHeight),
		)
		return facility.Room{
			ID:        uuid.New().String(),
			Name:      req.Name,
			Type:      req.Name,
			Category:  DefaultCategory,
			Width:     DefaultWidth,
			Height:    DefaultHeight,
			Area:      DefaultWidth * DefaultHeight,
			ShapeKind: DefaultShape,
			Position:  geo.Origin,
		}, false
	}

	factor := ScaleFactor(rec.Scaling, req.Capacity)
	side := math.Sqrt(factor)
	w, h := rec.Width*side, rec.Height*side

	r.logger.Debug("resolved room size",
		zap.String("room", req.Name),
		zap.String("record", rec.Name),
		zap.Float64("scale", factor),
	)

	return facility.Room{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Type:      rec.Name,
		Category:  rec.Category,
		Class:     rec.Class,
		Width:     w,
		Height:    h,
		Area:      w * h,
		ShapeKind: shapeOrDefault(rec.Shape),
		Position:  geo.Origin,
	}, true
}

// ResolveAll sizes every requirement in order and returns the names that
// fell back to the default size.
func (r *Resolver) ResolveAll(reqs []facility.Requirement) ([]facility.Room, []string) {
	rooms := make([]facility.Room, 0, len(reqs))
	var unmatched []string
	for _, req := range reqs {
		room, ok := r.Resolve(req)
		if !ok {
			unmatched = append(unmatched, req.Name)
		}
		rooms = append(rooms, room)
	}
	return rooms, unmatched
}

// Airlock returns a sized, unpositioned buffer room of the given kind
// ("Material Airlock" or "Personnel Airlock").
func (r *Resolver) Airlock(kind string) facility.Room {
	room, ok := r.Resolve(facility.Requirement{Name: kind})
	if !ok {
		// Airlocks are small; the generic default would dwarf the rooms
		// they sit between.
		room.Width, room.Height, room.Area = 3, 3, 9
	}
	room.Category = "Support"
	room.Airlock = true
	return room
}

// ScaleFactor returns the area multiplier for a capacity under rule:
// clamp(value/reference, min, max). Rules without a basis, a reference or a
// matching hint return 1.
func ScaleFactor(rule ScalingRule, c facility.Capacity) float64 {
	var value float64
	switch rule.Basis {
	case BasisBatchSize:
		value = c.BatchSize
	case BasisThroughput:
		value = c.Throughput
	default:
		return 1
	}
	if value <= 0 || rule.Reference <= 0 {
		return 1
	}
	lo, hi := rule.MinRatio, rule.MaxRatio
	if lo <= 0 {
		lo = 0.5
	}
	if hi <= 0 {
		hi = 2
	}
	return geo.Clamp(value/rule.Reference, lo, hi)
}

func shapeOrDefault(s string) string {
	if s == "" {
		return DefaultShape
	}
	return s
}
