package domain

import "errors"

// Common domain errors surfaced by engine components. Under normal
// operation none of these escape a ranking pass; they exist so degraded
// paths can be logged and counted with a stable cause.
var (
	// ErrUnknownPreset indicates a requested weight preset does not
	// exist. The resolver falls back to the default preset.
	ErrUnknownPreset = errors.New("unknown weight preset")

	// ErrEmptyWeights indicates a weight mapping contained no canonical
	// feature codes after filtering.
	ErrEmptyWeights = errors.New("weight mapping has no canonical features")

	// ErrCacheMiss indicates a static-feature cache lookup found no
	// fresh entry.
	ErrCacheMiss = errors.New("cache miss")

	// ErrNoUsableReviews indicates the soft-skill analyzer discarded all
	// review snippets and returned the neutral score.
	ErrNoUsableReviews = errors.New("no usable reviews")
)
