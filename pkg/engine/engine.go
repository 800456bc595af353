// Package engine runs the layout synthesis pipeline: requirements, sizing,
// relationship retrieval, placement, airlocks, projection, doors and
// compliance scoring.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/compliance"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/facility"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/layout"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/reference"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/relations"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/requirements"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/scene2d"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/spec"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/textgen"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/validation"
)

// Notifier is told about every generated layout. Failures are logged and
// never fail the request.
type Notifier interface {
	LayoutGenerated(ctx context.Context, l *facility.Layout) error
}

// Config groups the tunables of every stage.
type Config struct {
	Layout     layout.Config
	Scene      scene2d.Config
	Compliance compliance.Config
	Relations  relations.Config
}

// DefaultConfig returns the default tunables.
func DefaultConfig() Config {
	return Config{
		Layout:     layout.DefaultConfig(),
		Scene:      scene2d.DefaultConfig(),
		Compliance: compliance.DefaultConfig(),
		Relations:  relations.DefaultConfig(),
	}
}

// Deps are the collaborators a Service is built from. Table and Store are
// required; Generator may be nil when every request lists its rooms.
type Deps struct {
	Table     *reference.Table
	Store     relations.Store
	Generator textgen.Generator
	Notifier  Notifier
	Logger    *zap.Logger
}

// Service generates layouts. It holds no per-request state and is safe for
// concurrent use.
type Service struct {
	cfg       Config
	sizes     *reference.Resolver
	reqs      *requirements.Resolver
	retriever *relations.Retriever
	scorer    *compliance.Scorer
	notifier  Notifier
	logger    *zap.Logger
	now       func() time.Time
}

// New wires a Service.
func New(cfg Config, deps Deps) (*Service, error) {
	if deps.Table == nil {
		return nil, errors.New("engine: reference table is required")
	}
	if deps.Store == nil {
		return nil, errors.New("engine: relationship store is required")
	}
	if err := cfg.Layout.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Projection, placement and scoring must agree on clearance and door
	// range.
	cfg.Scene.MinDistance = cfg.Layout.MinDistance
	cfg.Scene.AirlockGap = cfg.Layout.AirlockGap
	cfg.Compliance.DoorProximity = cfg.Scene.DoorProximity

	return &Service{
		cfg:       cfg,
		sizes:     reference.NewResolver(deps.Table, logger.Named("reference")),
		reqs:      requirements.NewResolver(deps.Generator, logger.Named("requirements")),
		retriever: relations.NewRetriever(deps.Store, cfg.Relations, logger.Named("relations")),
		scorer:    compliance.NewScorer(cfg.Compliance, deps.Generator, logger.Named("compliance")),
		notifier:  deps.Notifier,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// Table returns the reference table rooms are sized from.
func (s *Service) Table() *reference.Table {
	return s.sizes.Table()
}

// Generate runs the whole pipeline for one request. Errors come only from
// requirement resolution and, in strict mode, relationship retrieval; every
// later problem is recorded in the layout's report.
func (s *Service) Generate(ctx context.Context, req *spec.Request) (*facility.Layout, error) {
	start := s.now()
	report := validation.NewReport()

	resolved, err := s.reqs.Resolve(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("resolving requirements: %w", err)
	}

	rooms, unmatched := s.sizes.ResolveAll(resolved.Requirements)
	for _, name := range unmatched {
		report.AddWarning(validation.Result{
			Level:   validation.LevelRequest,
			Message: fmt.Sprintf("room %q is not in the reference table; using the default %gx%g m size", name, reference.DefaultWidth, reference.DefaultHeight),
			Subject: name,
		})
	}

	rels, batch, err := s.retriever.Retrieve(ctx, rooms)
	if err != nil {
		return nil, fmt.Errorf("retrieving relationships: %w", err)
	}
	report.Merge(batch.Validation())

	lcfg := s.cfg.Layout.ForConstraints(resolved.Constraints)
	placed, placeReport := layout.Place(rooms, rels, lcfg)
	report.Merge(placeReport)

	rooms, rels, airlockReport := layout.InsertAirlocks(placed.Rooms, rels, s.sizes, lcfg.AirlockGap)
	report.Merge(airlockReport)
	if len(rooms) > len(placed.Rooms) {
		res := layout.ResolveOverlaps(rooms, lcfg.MinDistance, lcfg.SettleRounds)
		if !res.Converged {
			report.Warnf(validation.LevelPlacement, "overlaps remain after airlock insertion (%d rounds)", res.Rounds)
		}
	}

	scfg := s.cfg.Scene
	scfg.MinDistance = lcfg.MinDistance
	shapes, projReport := scene2d.Project(rooms, scfg)
	report.Merge(projReport)

	doors, doorReport := scene2d.SynthesizeDoors(shapes, rels, scfg)
	report.Merge(doorReport)

	md, compReport := s.scorer.Evaluate(ctx, compliance.Input{
		Rooms:         rooms,
		Shapes:        shapes,
		Relationships: rels,
		Description:   req.Description,
	})
	report.Merge(compReport)

	l := &facility.Layout{
		Shapes:          shapes,
		DoorConnections: doors,
		Metadata:        md,
		Relationships:   rels,
	}
	report.Merge(scene2d.ValidateLayout(l, scfg))
	scene2d.MarkNonCompliant(l.Shapes, report)

	l.Metadata.Warnings = mergeWarnings(md.Warnings, report)
	l.Metadata.GeneratedAt = s.now().UTC()
	l.Report = report

	s.logger.Info("layout generated",
		zap.Int("rooms", len(shapes)),
		zap.Int("doors", len(doors)),
		zap.Int("relationships", len(rels)),
		zap.Int("score", md.ComplianceScore),
		zap.Bool("valid", report.Valid),
		zap.Duration("elapsed", s.now().Sub(start)),
	)

	if s.notifier != nil {
		if err := s.notifier.LayoutGenerated(ctx, l); err != nil {
			s.logger.Warn("layout notification failed", zap.Error(err))
		}
	}
	return l, nil
}

// Validate re-checks a layout produced earlier, for example one edited by
// hand.
func (s *Service) Validate(l *facility.Layout) *validation.Report {
	return scene2d.ValidateLayout(l, s.cfg.Scene)
}

// mergeWarnings appends pipeline warnings that are not already among the
// compliance warnings.
func mergeWarnings(compliance []string, report *validation.Report) []string {
	out := append([]string{}, compliance...)
	seen := make(map[string]bool, len(out))
	for _, w := range out {
		seen[w] = true
	}
	for _, w := range report.WarningMessages() {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}
