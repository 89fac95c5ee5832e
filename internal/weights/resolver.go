package weights

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jusmatch/matchengine/internal/domain"
	"github.com/jusmatch/matchengine/internal/ports"
)

// complexityNudge is added to the targeted weights before normalization
// when the case complexity calls for it.
const complexityNudge = 0.05

// Resolver turns a requested preset name and a case into a normalized
// weight mapping. It holds the preset catalog (built-ins plus whatever a
// Source last loaded) and is safe for concurrent use.
type Resolver struct {
	mu      sync.RWMutex
	presets map[string]Weights
	version string

	source  Source
	metrics ports.MetricsCollector
	logger  *slog.Logger
}

// NewResolver creates a resolver seeded with the built-in presets. When a
// source is given it is loaded immediately; a load failure keeps the
// built-ins and is reported through the returned resolver's logger rather
// than failing construction, since the engine must rank with canonical
// defaults even when configuration is broken.
func NewResolver(source Source, metrics ports.MetricsCollector, logger *slog.Logger) *Resolver {
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Resolver{
		presets: BuiltinPresets(),
		source:  source,
		metrics: metrics,
		logger:  logger,
	}
	if source != nil {
		if err := r.Reload(context.Background()); err != nil {
			logger.Warn("weight source load failed, using built-in presets", "error", err)
			metrics.RecordCounter("weights_load_failed_total", 1, nil)
		}
	}
	return r
}

// Reload re-reads the weight source and swaps in its presets on top of
// the built-ins. Phantom feature keys in the document are dropped here,
// at load time, so a malformed or malicious document can never inject
// weight onto an unknown dimension.
func (r *Resolver) Reload(ctx context.Context) error {
	if r.source == nil {
		return nil
	}

	doc, err := r.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading weight document: %w", err)
	}

	merged := BuiltinPresets()
	for name, raw := range doc.Presets {
		w := make(Weights, len(raw))
		for key, val := range raw {
			code := domain.FeatureCode(key)
			if !code.IsCanonical() {
				r.logger.Debug("dropping unrecognized weight key", "preset", name, "key", key)
				continue
			}
			w[code] = val
		}
		if len(w) == 0 {
			r.logger.Warn("preset has no canonical features, ignoring", "preset", name)
			continue
		}
		merged[name] = w
	}

	r.mu.Lock()
	r.presets = merged
	r.version = doc.Version
	r.mu.Unlock()

	r.logger.Info("weight presets reloaded", "version", doc.Version, "presets", len(merged))
	return nil
}

// Version returns the version string of the last loaded document, empty
// when only built-ins are active.
func (r *Resolver) Version() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// Resolve returns the normalized weight mapping for the preset and case,
// along with the name of the preset actually used. Unknown names fall
// back to the default preset; a low-budget case overrides the requested
// preset with the economic one regardless of what was asked for.
func (r *Resolver) Resolve(presetName string, c domain.Case) (Weights, string) {
	name := presetName
	if name == "" {
		name = DefaultPreset
	}

	// Automatic economic detection is a business rule, not a fallback:
	// it applies even when the caller explicitly requested another preset.
	if c.ExpectedFeeMax > 0 && c.ExpectedFeeMax < LowBudgetThreshold {
		if name != PresetEconomic {
			r.logger.Debug("low-budget case, overriding preset",
				"requested", name, "fee_max", c.ExpectedFeeMax)
			r.metrics.RecordCounter("weights_economic_override_total", 1, nil)
		}
		name = PresetEconomic
	}

	r.mu.RLock()
	w, ok := r.presets[name]
	if !ok {
		r.logger.Warn("unknown preset, using default", "preset", name)
		r.metrics.RecordCounter("weights_unknown_preset_total", 1, map[string]string{"preset": name})
		name = DefaultPreset
		w = r.presets[DefaultPreset]
	}
	w = w.Clone()
	r.mu.RUnlock()

	w = FilterCanonical(w)
	if len(w) == 0 {
		w = builtinPresets[DefaultPreset].Clone()
	}

	w = AdjustForComplexity(w, c.EffectiveComplexity())
	return Normalize(w), name
}

// FilterCanonical drops every key outside the closed feature-code set.
func FilterCanonical(w Weights) Weights {
	out := make(Weights, len(w))
	for code, val := range w {
		if code.IsCanonical() && val >= 0 {
			out[code] = val
		}
	}
	return out
}

// AdjustForComplexity nudges weights before normalization: high
// complexity favors qualification and success rate, low complexity
// favors responsiveness and proximity. Medium is untouched.
func AdjustForComplexity(w Weights, complexity domain.Complexity) Weights {
	out := w.Clone()
	switch complexity {
	case domain.ComplexityHigh:
		out[domain.FeatureQualification] += complexityNudge
		out[domain.FeatureSuccessRate] += complexityNudge
	case domain.ComplexityLow:
		out[domain.FeatureUrgency] += complexityNudge
		out[domain.FeatureGeo] += complexityNudge
	}
	return out
}

// Normalize scales the mapping so its values sum to 1.0. An all-zero
// mapping falls back to the default preset's weights, since a ranking
// pass always needs a usable mapping.
func Normalize(w Weights) Weights {
	var sum float64
	for _, v := range w {
		sum += v
	}
	if sum <= 0 {
		return builtinPresets[DefaultPreset].Clone()
	}

	out := make(Weights, len(w))
	for code, v := range w {
		out[code] = v / sum
	}
	return out
}
