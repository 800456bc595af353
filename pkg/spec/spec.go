package spec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a generation request from a YAML or JSON file.
func Load(path string) (*Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading request file: %w", err)
	}
	return Parse(data)
}

// LoadProject loads a generation request from a project directory.
// It looks for request.yaml in the given directory.
func LoadProject(projectDir string) (*Request, error) {
	return Load(filepath.Join(projectDir, "request.yaml"))
}

// Parse decodes a request. JSON is accepted as a YAML subset.
func Parse(data []byte) (*Request, error) {
	var req Request
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parsing request YAML: %w", err)
	}
	if err := req.Constraints.Check(); err != nil {
		return nil, err
	}
	return &req, nil
}

// Check rejects unknown enum values. Empty values are allowed and mean
// "balanced".
func (c Constraints) Check() error {
	switch c.LayoutStyle {
	case "", StyleBalanced, StyleCompact, StyleSpacious, StyleLinear:
	default:
		return fmt.Errorf("unknown layoutStyle %q", c.LayoutStyle)
	}
	switch c.PrioritizeFlow {
	case "", FlowBalanced, FlowMaterial, FlowPersonnel:
	default:
		return fmt.Errorf("unknown prioritizeFlow %q", c.PrioritizeFlow)
	}
	return nil
}

// ParseLayoutStyle normalizes a user-supplied style name.
func ParseLayoutStyle(s string) (LayoutStyle, error) {
	st := LayoutStyle(strings.ToLower(strings.TrimSpace(s)))
	if st == "" {
		return StyleBalanced, nil
	}
	c := Constraints{LayoutStyle: st}
	if err := c.Check(); err != nil {
		return "", err
	}
	return st, nil
}

// ParseFlowPriority normalizes a user-supplied flow priority.
func ParseFlowPriority(s string) (FlowPriority, error) {
	fp := FlowPriority(strings.ToLower(strings.TrimSpace(s)))
	if fp == "" {
		return FlowBalanced, nil
	}
	c := Constraints{PrioritizeFlow: fp}
	if err := c.Check(); err != nil {
		return "", err
	}
	return fp, nil
}
