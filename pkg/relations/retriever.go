package relations

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/facility"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/validation"
)

// Config controls retrieval.
type Config struct {
	// Concurrency bounds the number of pairs looked up at once.
	Concurrency int `mapstructure:"concurrency"`
	// DegradeOnError turns a failed pair into "no relationship" plus a
	// warning. When false the first failure fails the whole retrieval.
	DegradeOnError bool `mapstructure:"degrade_on_error"`
}

// DefaultConfig returns the default retrieval settings.
func DefaultConfig() Config {
	return Config{Concurrency: 4, DegradeOnError: true}
}

// Retriever looks up relationships for every room pair.
type Retriever struct {
	store  Store
	cfg    Config
	logger *zap.Logger
}

// NewRetriever creates a retriever over store.
func NewRetriever(store Store, cfg Config, logger *zap.Logger) *Retriever {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{store: store, cfg: cfg, logger: logger}
}

// Retrieve queries both directions of every unordered room pair and returns
// the merged, deduplicated relationships sorted by pair then type. Types
// outside facility.AllowedRelationshipTypes are dropped.
func (r *Retriever) Retrieve(ctx context.Context, rooms []facility.Room) ([]facility.Relationship, *BatchReport, error) {
	// In strict mode the first failing pair cancels the rest with its own
	// error as the cause.
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	var once sync.Once
	aborted := func() bool {
		return ctx.Err() != nil && errors.Is(context.Cause(ctx), ErrLookup)
	}

	p := pool.NewWithResults[PairResult]().WithMaxGoroutines(r.cfg.Concurrency)
	idx := 0
	for i := 0; i < len(rooms); i++ {
		for j := i + 1; j < len(rooms); j++ {
			a, b, n := rooms[i], rooms[j], idx
			idx++
			p.Go(func() PairResult {
				if aborted() {
					return PairResult{FromID: a.ID, ToID: b.ID, FromType: a.Type, ToType: b.Type, Status: StatusSkipped, index: n}
				}
				res := r.lookupPair(ctx, a, b)
				res.index = n
				if res.Status != StatusError || r.cfg.DegradeOnError {
					return res
				}
				if aborted() && errors.Is(res.Err, context.Canceled) {
					res.Status, res.Err = StatusSkipped, nil
					return res
				}
				once.Do(func() { cancel(res.Err) })
				return res
			})
		}
	}
	results := p.Wait()
	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })

	report := &BatchReport{Pairs: len(results), Results: results}
	var rels []facility.Relationship
	var firstErr error
	for _, res := range results {
		switch res.Status {
		case StatusOK:
			report.OK++
			rels = append(rels, res.Relationships...)
		case StatusEmpty:
			report.Empty++
		case StatusSkipped:
			report.Skipped++
		case StatusError:
			report.Failed++
			if firstErr == nil {
				firstErr = res.Err
			}
			r.logger.Warn("relationship lookup failed",
				zap.String("from", res.FromType),
				zap.String("to", res.ToType),
				zap.Error(res.Err),
			)
		}
	}

	if firstErr != nil && !r.cfg.DegradeOnError {
		if aborted() {
			firstErr = context.Cause(ctx)
		}
		return nil, report, firstErr
	}
	r.logger.Debug("relationships retrieved",
		zap.Int("pairs", report.Pairs),
		zap.Int("relationships", len(rels)),
		zap.Int("failed", report.Failed),
	)
	return dedupe(rels), report, nil
}

func (r *Retriever) lookupPair(ctx context.Context, a, b facility.Room) PairResult {
	res := PairResult{FromID: a.ID, ToID: b.ID, FromType: a.Type, ToType: b.Type}
	for _, dir := range [2][2]facility.Room{{a, b}, {b, a}} {
		from, to := dir[0], dir[1]
		rules, err := r.store.Query(ctx, from.Type, to.Type)
		if err != nil {
			res.Status = StatusError
			res.Err = fmt.Errorf("%w: %s -> %s: %w", ErrLookup, from.Type, to.Type, err)
			res.Relationships = nil
			return res
		}
		for _, rule := range rules {
			if !rule.Type.IsAllowed() {
				r.logger.Debug("ignoring relationship type", zap.String("type", string(rule.Type)))
				continue
			}
			res.Relationships = append(res.Relationships, facility.Relationship{
				ID:            uuid.New().String(),
				FromRoomID:    from.ID,
				ToRoomID:      to.ID,
				Type:          rule.Type,
				Priority:      facility.ClampPriority(rule.Priority),
				FlowType:      rule.FlowType,
				FlowDirection: rule.FlowDirection,
				Reason:        rule.Reason,
			})
		}
	}
	if len(res.Relationships) == 0 {
		res.Status = StatusEmpty
	} else {
		res.Status = StatusOK
	}
	return res
}

// dedupe drops repeated (from, to, type) relationships, keeping the highest
// priority. PROHIBITED_NEAR is symmetric, so its key ignores direction.
// Input order is preserved otherwise.
func dedupe(rels []facility.Relationship) []facility.Relationship {
	type key struct {
		from, to string
		typ      facility.RelationshipType
	}
	seen := make(map[key]int, len(rels))
	out := make([]facility.Relationship, 0, len(rels))
	for _, rel := range rels {
		k := key{rel.FromRoomID, rel.ToRoomID, rel.Type}
		if rel.Prohibited() && k.to < k.from {
			k.from, k.to = k.to, k.from
		}
		if i, dup := seen[k]; dup {
			if rel.Priority > out[i].Priority {
				out[i] = rel
			}
			continue
		}
		seen[k] = len(out)
		out = append(out, rel)
	}
	// Input arrives grouped by pair; order each group by type.
	for start := 0; start < len(out); {
		end := start + 1
		for end < len(out) && samePair(out[start], out[end]) {
			end++
		}
		group := out[start:end]
		sort.SliceStable(group, func(i, j int) bool { return group[i].Type < group[j].Type })
		start = end
	}
	return out
}

func samePair(a, b facility.Relationship) bool {
	return (a.FromRoomID == b.FromRoomID && a.ToRoomID == b.ToRoomID) ||
		(a.FromRoomID == b.ToRoomID && a.ToRoomID == b.FromRoomID)
}

// Validation converts the batch report into report findings: a warning per
// failed pair and a summary line.
func (b *BatchReport) Validation() *validation.Report {
	rep := validation.NewReport()
	for _, f := range b.Failures() {
		rep.AddWarning(validation.Result{
			Level:   validation.LevelRelations,
			Message: fmt.Sprintf("relationships for %s and %s unavailable, treated as none: %v", f.FromType, f.ToType, f.Err),
			Subject: f.FromType + " / " + f.ToType,
		})
	}
	rep.Infof(validation.LevelRelations, "%d room pairs queried: %d with relationships, %d empty, %d failed, %d skipped",
		b.Pairs, b.OK, b.Empty, b.Failed, b.Skipped)
	return rep
}
