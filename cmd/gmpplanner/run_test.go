package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/reference"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/spec"
)

func TestRequestFromFlags(t *testing.T) {
	opts := generateOptions{
		rooms:     []string{"Weighing Room", "Granulation"},
		batchSize: 250,
		style:     "Linear",
		flow:      "material",
	}
	req, err := opts.request()
	if err != nil {
		t.Fatal(err)
	}
	if len(req.ExplicitRooms) != 2 {
		t.Errorf("rooms = %v", req.ExplicitRooms)
	}
	if req.Capacity == nil || req.Capacity.BatchSize == nil || *req.Capacity.BatchSize != 250 {
		t.Errorf("capacity = %+v", req.Capacity)
	}
	if req.Capacity.Throughput != nil {
		t.Errorf("throughput should be unset, got %v", *req.Capacity.Throughput)
	}
	if req.Constraints.LayoutStyle != spec.StyleLinear {
		t.Errorf("style = %q", req.Constraints.LayoutStyle)
	}
	if req.Constraints.PrioritizeFlow != spec.FlowMaterial {
		t.Errorf("flow = %q", req.Constraints.PrioritizeFlow)
	}
}

func TestRequestFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "request.yaml")
	data := "description: tablet plant\nexplicitRooms: [Coating]\nconstraints:\n  layoutStyle: compact\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	req, err := generateOptions{requestFile: path, rooms: []string{"Blending"}}.request()
	if err != nil {
		t.Fatal(err)
	}
	if len(req.ExplicitRooms) != 1 || req.ExplicitRooms[0] != "Blending" {
		t.Errorf("rooms = %v, want [Blending]", req.ExplicitRooms)
	}
	if req.Description != "tablet plant" {
		t.Errorf("description = %q", req.Description)
	}
	if req.Constraints.LayoutStyle != spec.StyleCompact {
		t.Errorf("style = %q, want compact from file", req.Constraints.LayoutStyle)
	}
}

func TestRequestFromProjectDir(t *testing.T) {
	dir := t.TempDir()
	data := "explicitRooms: [Weighing Room, Granulation]\n"
	if err := os.WriteFile(filepath.Join(dir, "request.yaml"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	req, err := generateOptions{requestFile: dir}.request()
	if err != nil {
		t.Fatal(err)
	}
	if len(req.ExplicitRooms) != 2 || req.ExplicitRooms[1] != "Granulation" {
		t.Errorf("rooms = %v", req.ExplicitRooms)
	}

	if _, err := (generateOptions{requestFile: t.TempDir()}).request(); err == nil {
		t.Error("expected error for a directory without request.yaml")
	}
}

func TestRequestRejectsUnknownStyle(t *testing.T) {
	if _, err := (generateOptions{style: "zigzag"}).request(); err == nil {
		t.Error("expected error for unknown style")
	}
	if _, err := (generateOptions{flow: "water"}).request(); err == nil {
		t.Error("expected error for unknown flow")
	}
	if _, err := (generateOptions{requestFile: "/nonexistent/request.yaml"}).request(); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestPrintReferenceTable(t *testing.T) {
	var buf bytes.Buffer
	records := reference.Default().Records()
	printReferenceTable(&buf, records)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(records)+1 {
		t.Fatalf("got %d lines, want %d", len(lines), len(records)+1)
	}
	if !strings.HasPrefix(lines[0], "NAME") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(buf.String(), "Weighing Room") {
		t.Error("table should list Weighing Room")
	}
}

type recordingCloser struct {
	name   string
	closed *[]string
	err    error
}

func (c recordingCloser) Close() error {
	*c.closed = append(*c.closed, c.name)
	return c.err
}

func TestExecuteClosesAfterFailure(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("GMPPLANNER_LOG_LEVEL", "error")

	var closed []string
	a := &app{closers: []io.Closer{
		recordingCloser{name: "store", closed: &closed},
		recordingCloser{name: "mqtt", closed: &closed, err: errors.New("already gone")},
	}}

	missing := filepath.Join(t.TempDir(), "missing.json")
	if err := execute(a, []string{"validate", missing}); err == nil {
		t.Fatal("validating a missing file should fail")
	}
	if strings.Join(closed, ",") != "mqtt,store" {
		t.Errorf("closed = %v, want newest first", closed)
	}
	if len(a.closers) != 0 {
		t.Errorf("closers left after close: %d", len(a.closers))
	}

	a.close()
	if len(closed) != 2 {
		t.Errorf("second close reopened closers: %v", closed)
	}
}

func TestCloseWithoutLogger(t *testing.T) {
	var closed []string
	a := &app{closers: []io.Closer{recordingCloser{name: "store", closed: &closed, err: errors.New("boom")}}}
	a.close()
	if len(closed) != 1 {
		t.Errorf("closed = %v", closed)
	}
}
