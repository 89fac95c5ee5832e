// Package domain contains pure, dependency-free domain models and types
// for the matching engine.
package domain

// FeatureCode is the single-letter identifier of one scoring dimension.
// The set of valid codes is closed; weight documents referencing any other
// key are filtered at load time.
type FeatureCode string

// Canonical feature codes produced by the feature calculator.
const (
	// FeatureArea scores expertise-tag coverage of the case area.
	FeatureArea FeatureCode = "A"

	// FeatureSimilarity scores embedding similarity against the lawyer's
	// case history, weighted toward won cases.
	FeatureSimilarity FeatureCode = "S"

	// FeatureSuccessRate scores historical success, preferring a
	// subarea-specific override over the smoothed overall rate.
	FeatureSuccessRate FeatureCode = "T"

	// FeatureGeo scores geographic proximity with exponential decay.
	FeatureGeo FeatureCode = "G"

	// FeatureQualification scores experience, degree level, and publications.
	FeatureQualification FeatureCode = "Q"

	// FeatureUrgency scores the lawyer's ability to respond within the
	// case's required window given current load.
	FeatureUrgency FeatureCode = "U"

	// FeatureReviews scores the normalized average client rating.
	FeatureReviews FeatureCode = "R"

	// FeatureSoftSkill scores communication quality, either externally
	// supplied or derived from review text.
	FeatureSoftSkill FeatureCode = "C"

	// FeatureFirm scores firm-level reputation. Zero when the lawyer has
	// no firm affiliation.
	FeatureFirm FeatureCode = "E"

	// FeaturePrice scores overlap between the case's expected fee range
	// and the lawyer's average rate. Zero when either side is unknown.
	FeaturePrice FeatureCode = "P"

	// FeatureMaturity scores professional maturity from an adapter-provided
	// record. Zero when no record is available.
	FeatureMaturity FeatureCode = "M"
)

// canonicalOrder fixes the iteration order used by CanonicalFeatures.
var canonicalOrder = []FeatureCode{
	FeatureArea,
	FeatureSimilarity,
	FeatureSuccessRate,
	FeatureGeo,
	FeatureQualification,
	FeatureUrgency,
	FeatureReviews,
	FeatureSoftSkill,
	FeatureFirm,
	FeaturePrice,
	FeatureMaturity,
}

// staticFeatures change slowly per lawyer and are cacheable between passes.
var staticFeatures = []FeatureCode{
	FeatureQualification,
	FeatureSuccessRate,
	FeatureGeo,
	FeatureReviews,
	FeatureFirm,
}

// dynamicFeatures depend on the specific case and are recomputed every pass.
var dynamicFeatures = []FeatureCode{
	FeatureArea,
	FeatureSimilarity,
	FeatureUrgency,
	FeatureSoftSkill,
	FeaturePrice,
	FeatureMaturity,
}

// CanonicalFeatures returns all valid feature codes in stable order.
// The returned slice is a copy and safe to modify.
func CanonicalFeatures() []FeatureCode {
	out := make([]FeatureCode, len(canonicalOrder))
	copy(out, canonicalOrder)
	return out
}

// StaticFeatures returns the codes whose values are cacheable per lawyer.
func StaticFeatures() []FeatureCode {
	out := make([]FeatureCode, len(staticFeatures))
	copy(out, staticFeatures)
	return out
}

// DynamicFeatures returns the codes recomputed on every ranking pass.
func DynamicFeatures() []FeatureCode {
	out := make([]FeatureCode, len(dynamicFeatures))
	copy(out, dynamicFeatures)
	return out
}

// IsCanonical reports whether code belongs to the closed feature-code set.
func (c FeatureCode) IsCanonical() bool {
	for _, fc := range canonicalOrder {
		if c == fc {
			return true
		}
	}
	return false
}
