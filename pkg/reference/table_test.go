package reference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/cleanroom"
)

func TestDefaultTableLoads(t *testing.T) {
	tbl := Default()
	if tbl.Len() < 20 {
		t.Fatalf("expected at least 20 records, got %d", tbl.Len())
	}
	for _, name := range []string{"Material Airlock", "Personnel Airlock", "QC Laboratory"} {
		if _, ok := tbl.Lookup(name); !ok {
			t.Errorf("default table missing %q", name)
		}
	}
}

func TestLookupExactCaseInsensitive(t *testing.T) {
	tbl := Default()
	rec, ok := tbl.Lookup("  granulation ")
	if !ok {
		t.Fatal("expected match")
	}
	if rec.Name != "Granulation" {
		t.Errorf("got %q, want Granulation", rec.Name)
	}
}

func TestLookupAlias(t *testing.T) {
	rec, ok := Default().Lookup("Tablet Press")
	if !ok || rec.Name != "Compression" {
		t.Errorf("alias lookup = %q, %v; want Compression", rec.Name, ok)
	}
}

func TestLookupFuzzy(t *testing.T) {
	tbl := Default()
	cases := map[string]string{
		"Weighing":                  "Weighing Room",
		"Main Granulation Suite B":  "Granulation",
		"raw material storage area": "Raw Material Storage",
		"Aseptic Filling Line 2":    "Aseptic Filling",
	}
	for q, want := range cases {
		rec, ok := tbl.Lookup(q)
		if !ok {
			t.Errorf("Lookup(%q): no match", q)
			continue
		}
		if rec.Name != want {
			t.Errorf("Lookup(%q) = %q, want %q", q, rec.Name, want)
		}
	}
}

func TestLookupRequiresWholeWords(t *testing.T) {
	// "mal" is a Material Airlock alias; it must not match inside "formal".
	if rec, ok := Default().Lookup("Formal Meeting Room"); ok {
		t.Errorf("unexpected match %q", rec.Name)
	}
}

func TestLookupMiss(t *testing.T) {
	if _, ok := Default().Lookup("Helipad"); ok {
		t.Error("expected no match")
	}
	if _, ok := Default().Lookup(""); ok {
		t.Error("empty name should not match")
	}
}

func TestNewRejectsBadRecords(t *testing.T) {
	bad := cleanroom.Class("E")
	cases := map[string][]Record{
		"empty name":  {{Name: " ", Width: 1, Height: 1}},
		"zero width":  {{Name: "X", Width: 0, Height: 1}},
		"bad class":   {{Name: "X", Width: 1, Height: 1, Class: &bad}},
		"bad basis":   {{Name: "X", Width: 1, Height: 1, Scaling: ScalingRule{Basis: "volume"}}},
		"duplicate":   {{Name: "X", Width: 1, Height: 1}, {Name: "x", Width: 1, Height: 1}},
		"alias clash": {{Name: "X", Width: 1, Height: 1}, {Name: "Y", Aliases: []string{"X"}, Width: 1, Height: 1}},
	}
	for name, recs := range cases {
		if _, err := New(recs); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rooms.yaml")
	data := []byte("rooms:\n  - name: Vault\n    category: Storage\n    class: CNC\n    width: 4\n    height: 3\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rec, ok := tbl.Lookup("vault")
	if !ok {
		t.Fatal("expected Vault record")
	}
	if rec.Area() != 12 {
		t.Errorf("area = %v, want 12", rec.Area())
	}
	if rec.Class == nil || *rec.Class != cleanroom.ClassCNC {
		t.Errorf("class = %v, want CNC", rec.Class)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load("/nonexistent/rooms.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
