// Package weights resolves named weight presets into normalized feature
// weight mappings, applying case-driven dynamic adjustment and the
// automatic economic override.
package weights

import "github.com/jusmatch/matchengine/internal/domain"

// Weights maps feature codes to their relative importance. A resolved
// mapping always sums to 1.0 within floating tolerance.
type Weights map[domain.FeatureCode]float64

// Preset names shipped with the engine.
const (
	PresetFast     = "fast"
	PresetBalanced = "balanced"
	PresetExpert   = "expert"
	PresetEconomic = "economic"
	PresetB2B      = "b2b"

	// DefaultPreset is used for unknown preset names and malformed
	// weight documents.
	DefaultPreset = PresetBalanced
)

// LowBudgetThreshold is the expected-fee ceiling below which the resolver
// overrides any requested preset with the economic preset. Cases this
// small are won on proximity, speed, and price, not on firm pedigree.
const LowBudgetThreshold = 1000.0

// builtinPresets are the tuned weight profiles compiled into the engine.
// A weight source may override or extend them at runtime.
var builtinPresets = map[string]Weights{
	PresetBalanced: {
		domain.FeatureArea:          0.18,
		domain.FeatureSimilarity:    0.14,
		domain.FeatureSuccessRate:   0.16,
		domain.FeatureGeo:           0.10,
		domain.FeatureQualification: 0.10,
		domain.FeatureUrgency:       0.12,
		domain.FeatureReviews:       0.08,
		domain.FeatureSoftSkill:     0.06,
		domain.FeatureFirm:          0.02,
		domain.FeaturePrice:         0.02,
		domain.FeatureMaturity:      0.02,
	},
	PresetFast: {
		domain.FeatureArea:          0.15,
		domain.FeatureSimilarity:    0.08,
		domain.FeatureSuccessRate:   0.10,
		domain.FeatureGeo:           0.17,
		domain.FeatureQualification: 0.05,
		domain.FeatureUrgency:       0.25,
		domain.FeatureReviews:       0.08,
		domain.FeatureSoftSkill:     0.05,
		domain.FeatureFirm:          0.02,
		domain.FeaturePrice:         0.03,
		domain.FeatureMaturity:      0.02,
	},
	PresetExpert: {
		domain.FeatureArea:          0.15,
		domain.FeatureSimilarity:    0.16,
		domain.FeatureSuccessRate:   0.22,
		domain.FeatureGeo:           0.04,
		domain.FeatureQualification: 0.20,
		domain.FeatureUrgency:       0.05,
		domain.FeatureReviews:       0.06,
		domain.FeatureSoftSkill:     0.05,
		domain.FeatureFirm:          0.04,
		domain.FeaturePrice:         0.01,
		domain.FeatureMaturity:      0.02,
	},
	// The economic preset zeroes firm reputation and leans on proximity,
	// responsiveness, and price fit.
	PresetEconomic: {
		domain.FeatureArea:          0.14,
		domain.FeatureSimilarity:    0.06,
		domain.FeatureSuccessRate:   0.08,
		domain.FeatureGeo:           0.20,
		domain.FeatureQualification: 0.04,
		domain.FeatureUrgency:       0.20,
		domain.FeatureReviews:       0.06,
		domain.FeatureSoftSkill:     0.04,
		domain.FeatureFirm:          0.00,
		domain.FeaturePrice:         0.16,
		domain.FeatureMaturity:      0.02,
	},
	PresetB2B: {
		domain.FeatureArea:          0.14,
		domain.FeatureSimilarity:    0.10,
		domain.FeatureSuccessRate:   0.16,
		domain.FeatureGeo:           0.04,
		domain.FeatureQualification: 0.14,
		domain.FeatureUrgency:       0.06,
		domain.FeatureReviews:       0.06,
		domain.FeatureSoftSkill:     0.04,
		domain.FeatureFirm:          0.16,
		domain.FeaturePrice:         0.04,
		domain.FeatureMaturity:      0.06,
	},
}

// BuiltinPresets returns a deep copy of the compiled-in presets.
func BuiltinPresets() map[string]Weights {
	out := make(map[string]Weights, len(builtinPresets))
	for name, w := range builtinPresets {
		out[name] = w.Clone()
	}
	return out
}

// Clone returns an independent copy of the weight mapping.
func (w Weights) Clone() Weights {
	out := make(Weights, len(w))
	for code, v := range w {
		out[code] = v
	}
	return out
}
