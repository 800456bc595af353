// Package requirements turns a generation request into the flat list of
// room requirements the engine sizes and places.
package requirements

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/facility"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/spec"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/textgen"
)

var (
	// ErrNoInput means the request had neither explicit rooms nor a
	// description.
	ErrNoInput = errors.New("request needs explicitRooms or a description")
	// ErrNoRooms means resolution produced an empty room list.
	ErrNoRooms = errors.New("no rooms could be determined from the request")
)

// Resolved is a request after room extraction.
type Resolved struct {
	Requirements []facility.Requirement
	Constraints  spec.Constraints
	// Extracted is true when the room list came from the description.
	Extracted bool
}

// Resolver resolves requests, calling the extractor only when needed.
type Resolver struct {
	extractor textgen.Generator
	logger    *zap.Logger
}

// NewResolver creates a resolver. extractor may be nil when every request
// carries explicit rooms.
func NewResolver(extractor textgen.Generator, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{extractor: extractor, logger: logger}
}

// Resolve produces the room requirements for req. Capacity and constraints
// given on the request override anything extracted from the description.
func (r *Resolver) Resolve(ctx context.Context, req *spec.Request) (*Resolved, error) {
	if req == nil {
		return nil, ErrNoInput
	}

	names := clean(req.ExplicitRooms)
	out := &Resolved{Constraints: req.Constraints}
	var capacity facility.Capacity

	switch {
	case len(req.ExplicitRooms) > 0:
		// Explicit rooms win even when a description is present.
	case strings.TrimSpace(req.Description) != "":
		if r.extractor == nil {
			return nil, fmt.Errorf("extracting rooms: no text generator configured")
		}
		ex, err := r.extractor.ExtractRooms(ctx, req.Description)
		if err != nil {
			return nil, fmt.Errorf("extracting rooms: %w", err)
		}
		names = clean(ex.Rooms)
		out.Extracted = true
		if ex.BatchSize != nil {
			capacity.BatchSize = *ex.BatchSize
		}
		if ex.Throughput != nil {
			capacity.Throughput = *ex.Throughput
		}
		if out.Constraints.LayoutStyle == "" {
			if st, err := spec.ParseLayoutStyle(ex.LayoutStyle); err == nil {
				out.Constraints.LayoutStyle = st
			} else {
				r.logger.Warn("ignoring extracted layout style", zap.String("style", ex.LayoutStyle))
			}
		}
		if out.Constraints.PrioritizeFlow == "" {
			if fp, err := spec.ParseFlowPriority(ex.PrioritizeFlow); err == nil {
				out.Constraints.PrioritizeFlow = fp
			} else {
				r.logger.Warn("ignoring extracted flow priority", zap.String("flow", ex.PrioritizeFlow))
			}
		}
	default:
		return nil, ErrNoInput
	}

	if req.Capacity != nil {
		if req.Capacity.BatchSize != nil {
			capacity.BatchSize = *req.Capacity.BatchSize
		}
		if req.Capacity.Throughput != nil {
			capacity.Throughput = *req.Capacity.Throughput
		}
	}
	if out.Constraints.LayoutStyle == "" {
		out.Constraints.LayoutStyle = spec.StyleBalanced
	}
	if out.Constraints.PrioritizeFlow == "" {
		out.Constraints.PrioritizeFlow = spec.FlowBalanced
	}

	if len(names) == 0 {
		return nil, ErrNoRooms
	}
	out.Requirements = make([]facility.Requirement, len(names))
	for i, n := range names {
		out.Requirements[i] = facility.Requirement{Name: n, Capacity: capacity}
	}

	r.logger.Debug("resolved room requirements",
		zap.Int("rooms", len(names)),
		zap.Bool("extracted", out.Extracted),
	)
	return out, nil
}

// clean trims names and drops blanks.
func clean(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
