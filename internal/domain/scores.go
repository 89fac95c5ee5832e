package domain

// RankBreakdown is the fully explainable score decomposition attached to
// each ranked lawyer. Downstream consumers (API layer, audit trail,
// client-facing "why this match" views) read it verbatim; nothing in the
// engine reads it back.
type RankBreakdown struct {
	// Features holds the computed value of every canonical feature code.
	Features map[FeatureCode]float64 `json:"features"`

	// Deltas holds the weighted contribution of each feature to Raw,
	// i.e. weight[f] * feature[f].
	Deltas map[FeatureCode]float64 `json:"deltas"`

	// Raw is the weighted feature sum before any fairness treatment.
	Raw float64 `json:"raw"`

	// FairBase is Raw plus the priority-tier bonus, when applicable.
	FairBase float64 `json:"fair_base"`

	// Fair is FairBase blended with the equity weight.
	Fair float64 `json:"fair"`

	// Equity is the fairness multiplier applied to this lawyer, also
	// exposed as EquityRaw for consumers that predate the rename.
	Equity    float64 `json:"equity"`
	EquityRaw float64 `json:"equity_raw"`

	// LTR is the learned-ranking score when a scorer is configured; nil
	// otherwise. When present it is the primary sort key and Fair/Raw
	// are retained purely for explainability.
	LTR *float64 `json:"ltr,omitempty"`

	// Preset is the name of the weight preset actually used, after the
	// automatic economic override.
	Preset string `json:"preset"`

	// Complexity is the effective case complexity the resolver adjusted
	// for.
	Complexity Complexity `json:"complexity"`

	// DegradedMode is set when the availability collaborator failed and
	// the pass proceeded with all candidates.
	DegradedMode bool `json:"degraded_mode"`

	// ConflictUnknown is set when the conflict check errored for this
	// lawyer and the pass conservatively kept them.
	ConflictUnknown bool `json:"conflict"`

	// Premium/Tier/ExclusiveWindowActive describe the gating context the
	// pass ran under.
	Premium               bool `json:"premium"`
	Tier                  Tier `json:"tier"`
	ExclusiveWindowActive bool `json:"exclusive_window_active"`
}
