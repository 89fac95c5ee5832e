package domain

import "time"

// Complexity is the tier classifying how demanding a case is.
// It drives dynamic weight adjustment in the resolver.
type Complexity string

// Supported complexity tiers.
const (
	ComplexityLow    Complexity = "LOW"
	ComplexityMedium Complexity = "MEDIUM"
	ComplexityHigh   Complexity = "HIGH"
)

// GeoPoint is a WGS84 coordinate pair. Locations are carried as
// *GeoPoint so "unknown" is nil rather than a sentinel value; (0,0) is
// a real point in the Gulf of Guinea, not missing data.
type GeoPoint struct {
	Lat float64
	Lon float64
}

// Case is an incoming legal request to be matched against candidate
// lawyers. A Case is immutable once constructed for a ranking pass.
type Case struct {
	// ID identifies the case across the platform.
	ID string

	// Area and Subarea classify the legal domain, e.g. "trabalhista" /
	// "rescisao". Subarea may be empty.
	Area    string
	Subarea string

	// UrgencyHours is the window within which the client expects a first
	// response.
	UrgencyHours float64

	// Location is the client's position. Nil when unknown.
	Location *GeoPoint

	// Complexity is the assessed tier. Empty is treated as MEDIUM.
	Complexity Complexity

	// Embedding is the fixed-dimension semantic vector of the case
	// narrative, used for similarity scoring against lawyer history.
	Embedding []float64

	// ExpectedFeeMin and ExpectedFeeMax bound the client's fee
	// expectation. Both zero means no expectation was given.
	ExpectedFeeMin float64
	ExpectedFeeMax float64

	// Premium marks cases sold under the premium product. Premium cases
	// are restricted to priority-tier lawyers while the exclusive window
	// is open.
	Premium bool

	// ExclusiveWindowMinutes is the duration of the premium exclusive
	// window, measured from CreatedAt. Ignored unless Premium is set.
	ExclusiveWindowMinutes int

	// CreatedAt anchors the exclusive window.
	CreatedAt time.Time
}

// EffectiveComplexity returns the case complexity, defaulting to MEDIUM
// when unset or unrecognized.
func (c Case) EffectiveComplexity() Complexity {
	switch c.Complexity {
	case ComplexityLow, ComplexityMedium, ComplexityHigh:
		return c.Complexity
	default:
		return ComplexityMedium
	}
}

// InExclusiveWindow reports whether the premium exclusive window is still
// open at the given instant. Always false for non-premium cases and for
// cases without a positive window.
func (c Case) InExclusiveWindow(now time.Time) bool {
	if !c.Premium || c.ExclusiveWindowMinutes <= 0 || c.CreatedAt.IsZero() {
		return false
	}
	deadline := c.CreatedAt.Add(time.Duration(c.ExclusiveWindowMinutes) * time.Minute)
	return now.Before(deadline)
}
