package scene2d

import (
	"github.com/google/uuid"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/cleanroom"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/facility"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/geo"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/validation"
)

// Project maps rooms (centers in metres) to shapes in output units. The
// projected set's smallest x and y both equal cfg.Margin.
func Project(rooms []facility.Room, cfg Config) ([]facility.Shape, *validation.Report) {
	report := validation.NewReport()
	if len(rooms) == 0 {
		return []facility.Shape{}, report
	}

	rects := make([]geo.Rect, len(rooms))
	for i, r := range rooms {
		rects[i] = geo.RectAround(r.Position, r.Width, r.Height)
	}
	box, _ := geo.BoundingBox(rects)

	shapes := make([]facility.Shape, len(rooms))
	for i, r := range rooms {
		shapes[i] = facility.Shape{
			ID:          uuid.New().String(),
			RoomID:      r.ID,
			Name:        r.Name,
			Category:    r.Category,
			Class:       r.Class,
			ShapeKind:   r.ShapeKind,
			X:           (rects[i].Min.X-box.Min.X)*cfg.Scale + cfg.Margin,
			Y:           (rects[i].Min.Y-box.Min.Y)*cfg.Scale + cfg.Margin,
			Width:       r.Width * cfg.Scale,
			Height:      r.Height * cfg.Scale,
			Area:        r.Area,
			Environment: cleanroom.DefaultEnvironment(r.Class),
			Compliance:  facility.Compliance{Compliant: true, Issues: []string{}},
			Airlock:     r.Airlock,
		}
	}

	report.Infof(validation.LevelLayout, "projected %d rooms into a %.0f x %.0f extent",
		len(shapes), box.Width()*cfg.Scale, box.Height()*cfg.Scale)
	return shapes, report
}
