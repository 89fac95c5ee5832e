// Package ports defines the interfaces through which the matching engine
// consumes external collaborators. Implementations live in infrastructure
// or in the calling platform; the engine depends only on these contracts.
package ports

import (
	"context"

	"github.com/jusmatch/matchengine/internal/domain"
)

// AvailabilityService answers whether candidates can take new work right
// now. A failure or timeout of this collaborator puts the ranking pass
// into degraded mode: all candidates are treated as available and the
// degradation is counted, never surfaced as an error.
type AvailabilityService interface {
	// CheckAvailable returns availability per lawyer ID. IDs absent from
	// the result are treated as unavailable.
	CheckAvailable(ctx context.Context, lawyerIDs []string) (map[string]bool, error)
}

// ConflictService checks a single lawyer for a conflict of interest with
// a case. The check is synchronous and per-candidate; an error keeps the
// candidate in the pass with the ConflictUnknown flag set.
type ConflictService interface {
	HasConflict(ctx context.Context, c domain.Case, l domain.Lawyer) (bool, error)
}

// RankScorer is the optional learned-ranking model, consumed as an opaque
// scoring function over the computed feature vector. When configured, its
// score becomes the primary sort key; failures fall back to the blended
// fair score for the affected pass.
type RankScorer interface {
	Score(ctx context.Context, features map[domain.FeatureCode]float64) (float64, error)
}

// MaturityProvider adapts an external registry (bar association data,
// internal compliance) into maturity records. Absence of a record is not
// an error; the maturity feature degrades to zero.
type MaturityProvider interface {
	Maturity(ctx context.Context, lawyerID string) (domain.MaturityRecord, bool)
}

// SoftSkillAnalyzer derives a soft-skill score in [0,1] from free-text
// reviews. Implementations may fail (e.g. a model backend is down); the
// feature calculator substitutes the neutral 0.5 on error.
type SoftSkillAnalyzer interface {
	Score(ctx context.Context, reviews []domain.Review) (float64, error)
}
