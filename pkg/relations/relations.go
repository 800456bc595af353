// Package relations retrieves typed relationships between resolved rooms
// from a relationship store.
package relations

import (
	"context"
	"errors"
	"strings"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/facility"
)

// ErrLookup wraps a store failure for a room pair.
var ErrLookup = errors.New("relationship lookup failed")

// Rule is one stored relationship between two room types, directed from
// FromType to ToType.
type Rule struct {
	FromType      string                    `yaml:"from" json:"from"`
	ToType        string                    `yaml:"to" json:"to"`
	Type          facility.RelationshipType `yaml:"type" json:"type"`
	Priority      int                       `yaml:"priority" json:"priority"`
	FlowType      facility.FlowType         `yaml:"flowType,omitempty" json:"flowType,omitempty"`
	FlowDirection facility.FlowDirection    `yaml:"flowDirection,omitempty" json:"flowDirection,omitempty"`
	Reason        string                    `yaml:"reason,omitempty" json:"reason,omitempty"`
}

// Store answers relationship queries for a directed pair of room types.
// Implementations match type names case-insensitively.
type Store interface {
	Query(ctx context.Context, fromType, toType string) ([]Rule, error)
}

// Status is the outcome of looking up one room pair.
type Status string

const (
	StatusOK    Status = "ok"
	StatusEmpty Status = "empty"
	StatusError Status = "error"

	// StatusSkipped marks pairs abandoned after another pair failed in
	// strict mode.
	StatusSkipped Status = "skipped"
)

// PairResult is the outcome for one unordered room pair, both directions.
type PairResult struct {
	FromID        string                  `json:"fromId"`
	ToID          string                  `json:"toId"`
	FromType      string                  `json:"fromType"`
	ToType        string                  `json:"toType"`
	Status        Status                  `json:"status"`
	Relationships []facility.Relationship `json:"relationships,omitempty"`
	Err           error                   `json:"-"`

	index int
}

// BatchReport aggregates the pair results of one retrieval.
type BatchReport struct {
	Pairs   int          `json:"pairs"`
	OK      int          `json:"ok"`
	Empty   int          `json:"empty"`
	Failed  int          `json:"failed"`
	Skipped int          `json:"skipped,omitempty"`
	Results []PairResult `json:"results"`
}

// Failures returns the pairs whose lookup errored.
func (b *BatchReport) Failures() []PairResult {
	var out []PairResult
	for _, r := range b.Results {
		if r.Status == StatusError {
			out = append(out, r)
		}
	}
	return out
}

// NormalizeType is the case- and space-insensitive key stores match on.
func NormalizeType(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
