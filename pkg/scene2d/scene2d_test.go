package scene2d

import (
	"math"
	"testing"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/cleanroom"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/facility"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/geo"
)

func room(id string, at geo.Point, w, h float64, class *cleanroom.Class) facility.Room {
	return facility.Room{ID: id, Name: id, Type: id, Width: w, Height: h, Area: w * h, Position: at, Class: class}
}

func TestProjectNormalizesBoundingBox(t *testing.T) {
	cfg := DefaultConfig()
	rooms := []facility.Room{
		room("a", geo.Pt(-20, 7), 6, 4, nil),
		room("b", geo.Pt(5, -3), 10, 8, cleanroom.Ptr(cleanroom.ClassB)),
		room("c", geo.Pt(30, 30), 4, 4, nil),
	}
	shapes, _ := Project(rooms, cfg)
	if len(shapes) != 3 {
		t.Fatalf("shapes = %d, want 3", len(shapes))
	}

	minX, minY := math.Inf(1), math.Inf(1)
	for _, s := range shapes {
		minX, minY = math.Min(minX, s.X), math.Min(minY, s.Y)
	}
	if math.Abs(minX-cfg.Margin) > 1e-9 || math.Abs(minY-cfg.Margin) > 1e-9 {
		t.Errorf("min x/y = %v/%v, want %v", minX, minY, cfg.Margin)
	}

	b := shapes[1]
	if b.Width != 100 || b.Height != 80 {
		t.Errorf("scaled size = %vx%v, want 100x80", b.Width, b.Height)
	}
	if b.Area != 80 {
		t.Errorf("area = %v, want 80 m²", b.Area)
	}
	if b.RoomID != "b" || !b.Compliance.Compliant {
		t.Errorf("unexpected shape %+v", b)
	}
	if b.Environment.PressurePa != 30 {
		t.Errorf("grade B pressure = %v, want 30", b.Environment.PressurePa)
	}

	// Relative geometry is preserved: a->c center offset scales by 10.
	d := shapes[2].Center().Sub(shapes[0].Center())
	if math.Abs(d.X-500) > 1e-9 || math.Abs(d.Y-230) > 1e-9 {
		t.Errorf("center offset = %v, want (500,230)", d)
	}
}

func TestProjectEmpty(t *testing.T) {
	shapes, report := Project(nil, DefaultConfig())
	if len(shapes) != 0 || !report.Valid {
		t.Error("empty projection should be empty and valid")
	}
}

func project(t *testing.T, rooms ...facility.Room) []facility.Shape {
	t.Helper()
	shapes, _ := Project(rooms, DefaultConfig())
	return shapes
}

func TestSynthesizeDoors(t *testing.T) {
	shapes := project(t,
		room("store", geo.Pt(0, 0), 15, 10, cleanroom.Ptr(cleanroom.ClassCNC)),
		room("weigh", geo.Pt(18, 0), 6, 5, cleanroom.Ptr(cleanroom.ClassD)),
		room("far", geo.Pt(200, 0), 6, 5, nil),
	)
	rels := []facility.Relationship{
		{ID: "1", FromRoomID: "store", ToRoomID: "weigh", Type: facility.MaterialFlow, Priority: 9, FlowDirection: facility.Unidirectional},
		{ID: "2", FromRoomID: "store", ToRoomID: "weigh", Type: facility.ProhibitedNear, Priority: 9},
		{ID: "3", FromRoomID: "weigh", ToRoomID: "far", Type: facility.PersonnelFlow, Priority: 9},
		{ID: "4", FromRoomID: "weigh", ToRoomID: "ghost", Type: facility.PersonnelFlow, Priority: 9},
	}
	doors, report := SynthesizeDoors(shapes, rels, DefaultConfig())
	if len(doors) != 1 {
		t.Fatalf("doors = %d, want 1", len(doors))
	}
	d := doors[0]
	if d.FlowType != facility.FlowMaterial || d.FlowDirection != facility.Unidirectional {
		t.Errorf("flow = %s/%s", d.FlowType, d.FlowDirection)
	}
	if d.DoorType != facility.DoorStandard {
		t.Errorf("CNC/D door should be standard, got %s", d.DoorType)
	}
	if d.From.ShapeID != shapes[0].ID || d.To.ShapeID != shapes[1].ID {
		t.Error("door endpoints should follow the relationship direction")
	}
	if d.From.Edge != 1 || d.To.Edge != 3 {
		t.Errorf("edges = %d/%d, want right/left", d.From.Edge, d.To.Edge)
	}
	if d.From.Position != 0.5 || d.From.Anchor != shapes[0].Center() {
		t.Errorf("unexpected endpoint %+v", d.From)
	}
	if d.RelationshipID != "1" {
		t.Errorf("relationship id = %q", d.RelationshipID)
	}
	if len(report.Info) != 1 {
		t.Errorf("expected one too-far note, got %d", len(report.Info))
	}
}

func TestSynthesizeDoorsNeverProhibited(t *testing.T) {
	shapes := project(t, room("a", geo.Pt(0, 0), 5, 5, nil), room("b", geo.Pt(8, 0), 5, 5, nil))
	rels := []facility.Relationship{{ID: "p", FromRoomID: "a", ToRoomID: "b", Type: facility.ProhibitedNear, Priority: 10}}
	doors, _ := SynthesizeDoors(shapes, rels, DefaultConfig())
	if len(doors) != 0 {
		t.Errorf("prohibited relationship produced %d doors", len(doors))
	}
}

func TestSynthesizeDoorsAirlockType(t *testing.T) {
	shapes := project(t,
		room("a", geo.Pt(0, 0), 8, 6, cleanroom.Ptr(cleanroom.ClassA)),
		room("c", geo.Pt(12, 0), 6, 6, cleanroom.Ptr(cleanroom.ClassC)),
		room("al", geo.Pt(0, 10), 3, 3, cleanroom.Ptr(cleanroom.ClassA)),
		room("a2", geo.Pt(0, 20), 8, 6, cleanroom.Ptr(cleanroom.ClassA)),
	)
	shapes[2].Airlock = true
	rels := []facility.Relationship{
		{ID: "1", FromRoomID: "c", ToRoomID: "a", Type: facility.PersonnelFlow, Priority: 5},
		{ID: "2", FromRoomID: "al", ToRoomID: "a2", Type: facility.PersonnelFlow, Priority: 5},
	}
	doors, _ := SynthesizeDoors(shapes, rels, DefaultConfig())
	if len(doors) != 2 {
		t.Fatalf("doors = %d, want 2", len(doors))
	}
	for _, d := range doors {
		if d.DoorType != facility.DoorAirlock {
			t.Errorf("door %s type = %s, want airlock", d.RelationshipID, d.DoorType)
		}
	}
}

func TestSynthesizeDoorsMerge(t *testing.T) {
	shapes := project(t, room("a", geo.Pt(0, 0), 5, 5, nil), room("b", geo.Pt(8, 0), 5, 5, nil))
	rels := []facility.Relationship{
		{ID: "1", FromRoomID: "a", ToRoomID: "b", Type: facility.MaterialFlow, Priority: 5, FlowDirection: facility.Unidirectional},
		{ID: "2", FromRoomID: "b", ToRoomID: "a", Type: facility.MaterialFlow, Priority: 5, FlowDirection: facility.Unidirectional},
		{ID: "3", FromRoomID: "a", ToRoomID: "b", Type: facility.PersonnelFlow, Priority: 5},
		{ID: "4", FromRoomID: "b", ToRoomID: "a", Type: facility.RequiresAccess, Priority: 5},
	}
	doors, _ := SynthesizeDoors(shapes, rels, DefaultConfig())
	if len(doors) != 2 {
		t.Fatalf("doors = %d, want one material and one personnel", len(doors))
	}
	if doors[0].FlowType != facility.FlowMaterial || doors[0].FlowDirection != facility.Bidirectional {
		t.Errorf("opposing one-way doors should merge to bidirectional, got %+v", doors[0])
	}
	if doors[1].FlowType != facility.FlowPersonnel {
		t.Errorf("second door flow = %s", doors[1].FlowType)
	}
}
