package softskill

import (
	"context"
	"log/slog"

	"github.com/jusmatch/matchengine/internal/domain"
	"github.com/jusmatch/matchengine/internal/ports"
)

var _ ports.SoftSkillAnalyzer = (*FallbackAnalyzer)(nil)

// Strategy selects the analyzer implementation.
type Strategy string

// Supported analyzer strategies.
const (
	// StrategyLexicon is the default regex/lexicon analyzer.
	StrategyLexicon Strategy = "lexicon"

	// StrategyModel uses a chat model, falling back to the lexicon when
	// the backend is unavailable.
	StrategyModel Strategy = "model"
)

// FallbackAnalyzer runs a primary analyzer and substitutes the fallback's
// score whenever the primary fails. The failure is logged and counted,
// never propagated.
type FallbackAnalyzer struct {
	primary  ports.SoftSkillAnalyzer
	fallback ports.SoftSkillAnalyzer
	metrics  ports.MetricsCollector
	logger   *slog.Logger
}

// NewFallbackAnalyzer wires a primary analyzer with a fallback. Nil
// metrics and logger default to no-op and slog.Default respectively.
func NewFallbackAnalyzer(primary, fallback ports.SoftSkillAnalyzer, metrics ports.MetricsCollector, logger *slog.Logger) *FallbackAnalyzer {
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackAnalyzer{
		primary:  primary,
		fallback: fallback,
		metrics:  metrics,
		logger:   logger,
	}
}

// Score implements ports.SoftSkillAnalyzer.
func (f *FallbackAnalyzer) Score(ctx context.Context, reviews []domain.Review) (float64, error) {
	score, err := f.primary.Score(ctx, reviews)
	if err == nil {
		return score, nil
	}

	f.logger.Warn("soft-skill primary analyzer failed, using fallback", "error", err)
	f.metrics.RecordCounter("softskill_fallback_total", 1, nil)
	return f.fallback.Score(ctx, reviews)
}

// Select builds the analyzer for the configured strategy. The model
// strategy requires a chat client; without one it silently degrades to
// the lexicon, matching the availability-over-precision posture of the
// rest of the engine.
func Select(strategy Strategy, client ChatCompleter, model string, metrics ports.MetricsCollector, logger *slog.Logger) ports.SoftSkillAnalyzer {
	lexicon := NewLexiconAnalyzer()

	if strategy != StrategyModel || client == nil {
		return lexicon
	}

	primary, err := NewModelAnalyzer(client, model)
	if err != nil {
		return lexicon
	}
	return NewFallbackAnalyzer(primary, lexicon, metrics, logger)
}
