package ranking

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/jusmatch/matchengine/internal/cache"
	"github.com/jusmatch/matchengine/internal/domain"
	"github.com/jusmatch/matchengine/internal/features"
	"github.com/jusmatch/matchengine/internal/ports"
	"github.com/jusmatch/matchengine/internal/safety"
	"github.com/jusmatch/matchengine/internal/weights"
)

// Package-level validator instance for configuration validation.
var validate = validator.New()

// Config tunes a Ranker. Zero values are replaced by DefaultConfig
// through NewRanker's validation.
type Config struct {
	// DefaultTopN bounds the result set when the caller passes topN <= 0.
	DefaultTopN int `koanf:"default_top_n" validate:"min=1,max=100"`

	// MaxConcurrency limits the per-candidate worker pool so the cache
	// store and collaborators are not overwhelmed.
	MaxConcurrency int `koanf:"max_concurrency" validate:"min=1,max=64"`

	// AvailabilityTimeout bounds the availability collaborator call; on
	// expiry the pass proceeds in degraded mode.
	AvailabilityTimeout time.Duration `koanf:"availability_timeout" validate:"min=1ms"`

	// ScorerTimeout bounds each learned-ranking call; on expiry the
	// affected candidate falls back to the blended fair score.
	ScorerTimeout time.Duration `koanf:"scorer_timeout" validate:"min=1ms"`

	// PriorityBonus is added to fairBase for priority-tier lawyers on
	// premium cases.
	PriorityBonus float64 `koanf:"priority_bonus" validate:"min=0,max=1"`

	// TieEpsilon is the primary-key difference below which two
	// candidates count as tied and rotate by LastOfferedAt.
	TieEpsilon float64 `koanf:"tie_epsilon" validate:"gt=0"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		DefaultTopN:         10,
		MaxConcurrency:      8,
		AvailabilityTimeout: 800 * time.Millisecond,
		ScorerTimeout:       500 * time.Millisecond,
		PriorityBonus:       0.08,
		TieEpsilon:          1e-6,
	}
}

// Deps are the collaborators a Ranker composes. Calculator and Resolver
// are required; everything else degrades gracefully when absent.
type Deps struct {
	Calculator   *features.Calculator
	Resolver     *weights.Resolver
	Cache        *cache.FeatureCache
	Availability ports.AvailabilityService
	Conflicts    ports.ConflictService
	Scorer       ports.RankScorer
	Metrics      ports.MetricsCollector
	Logger       *slog.Logger
}

// Ranker is the sole public entry point of the matching engine. It is
// stateless across passes and safe for concurrent use.
type Ranker struct {
	calc     *features.Calculator
	resolver *weights.Resolver
	cache    *cache.FeatureCache

	availability ports.AvailabilityService
	conflicts    ports.ConflictService
	scorer       ports.RankScorer

	metrics ports.MetricsCollector
	logger  *slog.Logger
	tracer  trace.Tracer
	cfg     Config

	// now is injectable for exclusive-window tests.
	now func() time.Time
}

// NewRanker creates a Ranker, validating its configuration and filling
// in no-op defaults for absent observability dependencies.
func NewRanker(deps Deps, cfg Config) (*Ranker, error) {
	if deps.Calculator == nil {
		return nil, fmt.Errorf("feature calculator cannot be nil")
	}
	if deps.Resolver == nil {
		return nil, fmt.Errorf("weight resolver cannot be nil")
	}

	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	metrics := deps.Metrics
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Ranker{
		calc:         deps.Calculator,
		resolver:     deps.Resolver,
		cache:        deps.Cache,
		availability: deps.Availability,
		conflicts:    deps.Conflicts,
		scorer:       deps.Scorer,
		metrics:      metrics,
		logger:       logger,
		tracer:       otel.Tracer("match-ranker"),
		cfg:          cfg,
		now:          time.Now,
	}, nil
}

// Invalidate drops a lawyer's cached static features. It is the hook
// called by profile-update workflows.
func (r *Ranker) Invalidate(ctx context.Context, lawyerID string) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Invalidate(ctx, lawyerID)
}

// scored pairs a candidate copy with its primary sort key.
type scored struct {
	lawyer domain.Lawyer
	key    float64
}

// Rank orders candidates for a case and returns the top N with populated
// score breakdowns. It is deterministic given fixed inputs and never
// fails on partial data: collaborator errors degrade the pass instead.
// The only returned error is a context already canceled.
func (r *Ranker) Rank(ctx context.Context, c domain.Case, candidates []domain.Lawyer, topN int, preset string) ([]domain.Lawyer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = r.cfg.DefaultTopN
	}

	start := r.now()
	passID := uuid.NewString()

	ctx, span := r.tracer.Start(ctx, "rank",
		trace.WithAttributes(
			attribute.String("pass.id", passID),
			attribute.String("case.id", c.ID),
			attribute.Int("candidates.total", len(candidates)),
		))
	defer span.End()

	w, resolvedPreset := r.resolver.Resolve(preset, c)
	complexity := c.EffectiveComplexity()

	r.logger.Debug("ranking pass started",
		"pass_id", passID,
		"case_id", c.ID,
		"preset", resolvedPreset,
		"candidates", len(candidates),
		"embedding", safety.TruncateVector(c.Embedding),
	)

	available, degraded := r.checkAvailability(ctx, candidates)
	windowActive := c.InExclusiveWindow(start)

	eligible := make([]domain.Lawyer, 0, len(candidates))
	for _, l := range candidates {
		if !degraded && r.availability != nil && !available[l.ID] {
			continue
		}
		if windowActive && l.Tier != domain.TierPriority {
			continue
		}
		eligible = append(eligible, l)
	}

	results := make([]*scored, len(eligible))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.MaxConcurrency)

	for i, l := range eligible {
		i, l := i, l
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.scoreCandidate(gctx, c, l, w, resolvedPreset, complexity, degraded, windowActive)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ranked := make([]*scored, 0, len(results))
	for _, res := range results {
		if res != nil {
			ranked = append(ranked, res)
		}
	}
	r.sortRanked(ranked)

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	out := make([]domain.Lawyer, len(ranked))
	for i, res := range ranked {
		out[i] = res.lawyer
	}

	r.metrics.RecordLatency("rank", r.now().Sub(start), map[string]string{"preset": resolvedPreset})
	r.metrics.RecordGauge("rank_candidates", float64(len(candidates)), nil)
	for _, res := range ranked {
		r.metrics.RecordHistogram("rank_fair_score", res.lawyer.Scores.Fair, nil)
	}

	span.SetAttributes(
		attribute.String("preset", resolvedPreset),
		attribute.Bool("degraded", degraded),
		attribute.Bool("exclusive_window", windowActive),
		attribute.Int("candidates.returned", len(out)),
	)
	r.logger.Info("ranking pass finished",
		"pass_id", passID,
		"case_id", c.ID,
		"preset", resolvedPreset,
		"degraded", degraded,
		"exclusive_window", windowActive,
		"eligible", len(eligible),
		"returned", len(out),
	)
	return out, nil
}

// checkAvailability queries the availability collaborator under its
// timeout. A failure or timeout returns degraded=true and the pass
// conservatively proceeds with all candidates.
func (r *Ranker) checkAvailability(ctx context.Context, candidates []domain.Lawyer) (map[string]bool, bool) {
	if r.availability == nil {
		return nil, false
	}

	ids := make([]string, len(candidates))
	for i, l := range candidates {
		ids[i] = l.ID
	}

	availCtx, cancel := context.WithTimeout(ctx, r.cfg.AvailabilityTimeout)
	defer cancel()

	available, err := r.availability.CheckAvailable(availCtx, ids)
	if err != nil {
		r.logger.Warn("availability check failed, entering degraded mode", "error", err)
		r.metrics.RecordCounter("match_degraded_total", 1, nil)
		return nil, true
	}
	return available, false
}

// scoreCandidate computes the full breakdown for one candidate. It
// returns nil when a confirmed conflict excludes the candidate.
func (r *Ranker) scoreCandidate(
	ctx context.Context,
	c domain.Case,
	l domain.Lawyer,
	w weights.Weights,
	preset string,
	complexity domain.Complexity,
	degraded bool,
	windowActive bool,
) *scored {
	conflictUnknown := false
	if r.conflicts != nil {
		has, err := r.conflicts.HasConflict(ctx, c, l)
		switch {
		case err != nil:
			// Unknown conflict status keeps the candidate; excluding on a
			// collaborator hiccup would silently shrink the market side.
			conflictUnknown = true
			r.metrics.RecordCounter("match_conflict_check_failed_total", 1, nil)
		case has:
			return nil
		}
	}

	feats := r.staticFeatures(ctx, c, l)
	for code, v := range r.calc.ComputeDynamic(ctx, c, l) {
		feats[code] = v
	}

	var raw float64
	deltas := make(map[domain.FeatureCode]float64, len(w))
	for code, weight := range w {
		delta := weight * feats[code]
		deltas[code] = delta
		raw += delta
	}

	fairBase := raw
	if c.Premium && l.Tier == domain.TierPriority {
		fairBase += r.cfg.PriorityBonus
	}

	equity := EquityWeightKPI(l.KPI)
	fair := Blend(fairBase, equity)

	var ltr *float64
	if r.scorer != nil {
		scoreCtx, cancel := context.WithTimeout(ctx, r.cfg.ScorerTimeout)
		v, err := r.scorer.Score(scoreCtx, feats)
		cancel()
		if err != nil {
			r.logger.Debug("learned-ranking scorer failed, using fair score", "lawyer_id", l.ID, "error", err)
			r.metrics.RecordCounter("match_ltr_failed_total", 1, nil)
		} else {
			ltr = &v
		}
	}

	key := fair
	if ltr != nil {
		key = *ltr
	}

	l.Scores = &domain.RankBreakdown{
		Features:              feats,
		Deltas:                deltas,
		Raw:                   raw,
		FairBase:              fairBase,
		Fair:                  fair,
		Equity:                equity,
		EquityRaw:             equity,
		LTR:                   ltr,
		Preset:                preset,
		Complexity:            complexity,
		DegradedMode:          degraded,
		ConflictUnknown:       conflictUnknown,
		Premium:               c.Premium,
		Tier:                  l.Tier,
		ExclusiveWindowActive: windowActive,
	}
	return &scored{lawyer: l, key: key}
}

// staticFeatures serves Q,T,G,R,E from the cache when fresh, computing
// and storing them otherwise. Without a cache it always computes.
func (r *Ranker) staticFeatures(ctx context.Context, c domain.Case, l domain.Lawyer) map[domain.FeatureCode]float64 {
	if r.cache != nil {
		if cached, ok := r.cache.GetStatic(ctx, l.ID); ok {
			return cached
		}
	}
	static := r.calc.ComputeStatic(c, l)
	if r.cache != nil {
		r.cache.SetStatic(ctx, l.ID, static)
	}
	return static
}

// sortRanked orders by descending primary key, rotating effectively tied
// candidates by ascending LastOfferedAt so the least-recently-offered
// lawyer surfaces first.
func (r *Ranker) sortRanked(ranked []*scored) {
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if math.Abs(a.key-b.key) < r.cfg.TieEpsilon {
			return a.lawyer.LastOfferedAt.Before(b.lawyer.LastOfferedAt)
		}
		return a.key > b.key
	})
}
