// Package export writes room and door schedules of a generated layout as
// an Excel workbook.
package export

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/facility"
)

// Sheet names.
const (
	SheetRooms   = "Rooms"
	SheetDoors   = "Doors"
	SheetSummary = "Summary"
)

// RoomHeader is the Rooms sheet header.
var RoomHeader = []string{
	"Room",
	"Category",
	"Grade",
	"Area (m²)",
	"X",
	"Y",
	"Width",
	"Height",
	"Pressure (Pa)",
	"Temperature (°C)",
	"Humidity (%RH)",
	"Airlock",
	"Compliant",
	"Issues",
}

// DoorHeader is the Doors sheet header.
var DoorHeader = []string{
	"From",
	"To",
	"Flow",
	"Direction",
	"Door Type",
	"Relationship",
}

var roomWidths = []float64{28, 16, 8, 12, 10, 10, 10, 10, 14, 18, 16, 10, 12, 50}
var doorWidths = []float64{28, 28, 12, 16, 12, 20}

// Schedule renders the layout as an xlsx workbook with Rooms, Doors and
// Summary sheets.
func Schedule(l *facility.Layout) ([]byte, error) {
	if l == nil {
		return nil, fmt.Errorf("layout is nil")
	}
	f := excelize.NewFile()

	for _, name := range []string{SheetRooms, SheetDoors, SheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet: %w", err)
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	index, err := f.GetSheetIndex(SheetRooms)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to find sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	steps := []func() error{
		func() error {
			return writeTable(f, SheetRooms, RoomHeader, roomWidths, headerStyle, roomRows(l.Shapes))
		},
		func() error { return writeTable(f, SheetDoors, DoorHeader, doorWidths, headerStyle, doorRows(l)) },
		func() error { return writeSummary(f, l, headerStyle) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			f.Close()
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes the schedule workbook to path.
func WriteFile(l *facility.Layout, path string) error {
	data, err := Schedule(l)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing schedule: %w", err)
	}
	return nil
}

func roomRows(shapes []facility.Shape) [][]any {
	rows := make([][]any, 0, len(shapes))
	for _, s := range shapes {
		grade := ""
		if s.Class != nil {
			grade = string(*s.Class)
		}
		env := s.Environment
		rows = append(rows, []any{
			s.Name,
			s.Category,
			grade,
			round(s.Area),
			round(s.X),
			round(s.Y),
			round(s.Width),
			round(s.Height),
			env.PressurePa,
			fmt.Sprintf("%g-%g", env.TemperatureC[0], env.TemperatureC[1]),
			fmt.Sprintf("%g-%g", env.HumidityPct[0], env.HumidityPct[1]),
			yesNo(s.Airlock),
			yesNo(s.Compliance.Compliant),
			strings.Join(s.Compliance.Issues, "; "),
		})
	}
	return rows
}

func doorRows(l *facility.Layout) [][]any {
	names := make(map[string]string, len(l.Shapes))
	for _, s := range l.Shapes {
		names[s.ID] = s.Name
	}
	rows := make([][]any, 0, len(l.DoorConnections))
	for _, d := range l.DoorConnections {
		rows = append(rows, []any{
			names[d.From.ShapeID],
			names[d.To.ShapeID],
			string(d.FlowType),
			string(d.FlowDirection),
			string(d.DoorType),
			string(d.RelationshipType),
		})
	}
	return rows
}

func writeTable(f *excelize.File, sheet string, header []string, widths []float64, headerStyle int, rows [][]any) error {
	for col, h := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
		if col < len(widths) {
			name, err := excelize.ColumnNumberToName(col + 1)
			if err != nil {
				return fmt.Errorf("failed to convert column number: %w", err)
			}
			if err := f.SetColWidth(sheet, name, name, widths[col]); err != nil {
				return fmt.Errorf("failed to set column width: %w", err)
			}
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze panes: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, l *facility.Layout, headerStyle int) error {
	md := l.Metadata
	generated := ""
	if !md.GeneratedAt.IsZero() {
		generated = md.GeneratedAt.Format(time.RFC3339)
	}
	rows := [][]any{
		{"Total area (m²)", round(md.TotalArea)},
		{"Compliance score", md.ComplianceScore},
		{"Rooms", len(l.Shapes)},
		{"Doors", len(l.DoorConnections)},
		{"Generated at", generated},
		{"Rationale", md.Rationale},
	}
	for _, w := range md.Warnings {
		rows = append(rows, []any{"Warning", w})
	}
	for _, s := range md.Suggestions {
		rows = append(rows, []any{"Suggestion", s})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(SheetSummary, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+1, err)
		}
		if err := f.SetCellStyle(SheetSummary, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set summary style: %w", err)
		}
	}
	if err := f.SetColWidth(SheetSummary, "A", "A", 20); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	return f.SetColWidth(SheetSummary, "B", "B", 90)
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
