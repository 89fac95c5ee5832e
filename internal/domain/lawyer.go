package domain

import "time"

// Tier is the subscription level of a lawyer on the platform.
type Tier string

// Supported subscription tiers.
const (
	TierStandard Tier = "standard"
	TierPriority Tier = "priority"
)

// Degree is the highest academic degree held by a lawyer.
type Degree string

// Supported degree levels, in ascending order of contribution to the
// qualification feature.
const (
	DegreeNone       Degree = ""
	DegreeBachelor   Degree = "bachelor"
	DegreeSpecialist Degree = "specialist"
	DegreeMaster     Degree = "master"
	DegreeDoctorate  Degree = "doctorate"
)

// KPI aggregates the operational indicators of a lawyer over recent
// activity. All values are maintained by upstream pipelines; the engine
// only reads them.
type KPI struct {
	// SuccessRate is the overall fraction of won cases in [0,1].
	SuccessRate float64

	// Cases30d counts cases taken in the trailing 30 days. Never negative.
	Cases30d int

	// MonthlyCapacity is the self-declared monthly case budget. Never
	// negative; zero means the lawyer accepts no load.
	MonthlyCapacity int

	// AvgRating is the mean client rating on a 0-5 scale.
	AvgRating float64

	// ResponseTimeHours is the typical time to first response.
	ResponseTimeHours float64

	// ActiveCases counts currently open engagements.
	ActiveCases int

	// CVScore, when non-nil, is an externally computed qualification
	// score in [0,1] that supersedes the composite calculation.
	CVScore *float64
}

// Firm carries firm-level indicators used by the firm-reputation feature.
type Firm struct {
	// Rating is the firm's mean client rating on a 0-5 scale.
	Rating float64

	// TeamSize is the number of lawyers at the firm.
	TeamSize int

	// YearsActive is the firm's age in years.
	YearsActive int
}

// MaturityRecord is an adapter-provided view of a lawyer's professional
// standing, consumed by the maturity feature.
type MaturityRecord struct {
	// YearsLicensed counts years since bar admission.
	YearsLicensed int

	// Sanctions counts disciplinary sanctions on record.
	Sanctions int
}

// Review is a free-text client review snippet. A zero CreatedAt is
// treated as current when applying recency decay.
type Review struct {
	Text      string
	CreatedAt time.Time
}

// Qualification is the free-form academic and professional profile of a
// lawyer.
type Qualification struct {
	YearsExperience int
	Degree          Degree
	Publications    int
}

// Lawyer is a candidate service provider. Lawyers are read-only during a
// ranking pass; Scores is the single output field, written once per pass
// on the returned copies and never read as input.
type Lawyer struct {
	// ID identifies the lawyer across the platform.
	ID string

	// Name is the display name.
	Name string

	// ExpertiseAreas is the set of legal-area tags the lawyer practices.
	ExpertiseAreas []string

	// Location is the position of the lawyer's practice. Nil when
	// unknown.
	Location *GeoPoint

	// Qualification is the academic/professional profile.
	Qualification Qualification

	// KPI is the operational indicator block.
	KPI KPI

	// SuccessByArea optionally overrides the overall success rate for
	// specific "area/subarea" keys.
	SuccessByArea map[string]float64

	// SoftSkillScore, when non-nil, is the externally supplied soft-skill
	// score in [0,1]. When nil the analyzer derives one from Reviews.
	SoftSkillScore *float64

	// CaseOutcomes records historical case results, true for won.
	// Parallel to CaseEmbeddings and always the same length.
	CaseOutcomes []bool

	// CaseEmbeddings holds the embedding of each historical case,
	// parallel to CaseOutcomes.
	CaseEmbeddings [][]float64

	// Reviews are free-text client review snippets.
	Reviews []Review

	// Tier is the subscription level.
	Tier Tier

	// AvgFeeRate is the typical fee charged, in the platform currency.
	AvgFeeRate float64

	// Firm is the optional firm affiliation.
	Firm *Firm

	// LastOfferedAt is when this lawyer last received a case offer. It
	// drives the round-robin tie-break; the zero value sorts first.
	LastOfferedAt time.Time

	// Scores is populated by the ranking orchestrator on returned
	// candidates. It is never read as input.
	Scores *RankBreakdown
}
