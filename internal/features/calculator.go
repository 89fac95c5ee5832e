// Package features computes the normalized scoring dimensions for one
// case/lawyer pair. Every value it produces lies in [0,1]; missing or
// malformed inputs degrade to a neutral or zero default, never an error.
package features

import (
	"context"
	"math"
	"strings"

	"github.com/jusmatch/matchengine/internal/domain"
	"github.com/jusmatch/matchengine/internal/numeric"
	"github.com/jusmatch/matchengine/internal/ports"
	"github.com/jusmatch/matchengine/internal/softskill"
)

const (
	// geoDecayKm is the distance at which geographic fit decays to 1/e.
	geoDecayKm = 50.0

	// Similarity weights favor historical wins over losses.
	wonCaseWeight  = 1.0
	lostCaseWeight = 0.8

	// Bayesian smoothing blends the raw success rate with this prior,
	// using pseudoCount as its confidence.
	successPrior     = 0.5
	successPseudoCnt = 10.0

	// Qualification composite caps.
	maxExperienceYears = 20.0
	maxPublications    = 15.0
	experienceShare    = 0.4
	degreeShare        = 0.3
	publicationShare   = 0.3

	// Urgency composite shares.
	speedShare    = 0.7
	headroomShare = 0.3

	// Maturity caps and penalty.
	maxLicensedYears = 25.0
	sanctionPenalty  = 0.85

	// maxRating is the upper bound of the platform's rating scale.
	maxRating = 5.0

	neutral = 0.5
)

// degreeScores maps degree levels to their qualification contribution,
// already scaled to degreeShare.
var degreeScores = map[domain.Degree]float64{
	domain.DegreeNone:       0,
	domain.DegreeBachelor:   0.10,
	domain.DegreeSpecialist: 0.15,
	domain.DegreeMaster:     0.22,
	domain.DegreeDoctorate:  0.30,
}

// Calculator computes feature scores for case/lawyer pairs. It is
// stateless apart from its collaborators and safe for concurrent use.
type Calculator struct {
	analyzer ports.SoftSkillAnalyzer
	maturity ports.MaturityProvider
}

// NewCalculator creates a Calculator. A nil analyzer defaults to the
// lexicon soft-skill analyzer; a nil maturity provider degrades the
// maturity feature to zero.
func NewCalculator(analyzer ports.SoftSkillAnalyzer, maturity ports.MaturityProvider) *Calculator {
	if analyzer == nil {
		analyzer = softskill.NewLexiconAnalyzer()
	}
	return &Calculator{analyzer: analyzer, maturity: maturity}
}

// Compute returns all canonical feature values for the pair. It always
// returns every feature code and never fails.
func (calc *Calculator) Compute(ctx context.Context, c domain.Case, l domain.Lawyer) map[domain.FeatureCode]float64 {
	out := calc.ComputeStatic(c, l)
	for code, v := range calc.ComputeDynamic(ctx, c, l) {
		out[code] = v
	}
	return out
}

// ComputeStatic returns the slow-changing features (Q,T,G,R,E) that the
// cache layer persists per lawyer.
func (calc *Calculator) ComputeStatic(c domain.Case, l domain.Lawyer) map[domain.FeatureCode]float64 {
	return map[domain.FeatureCode]float64{
		domain.FeatureQualification: qualification(l),
		domain.FeatureSuccessRate:   successRate(c, l),
		domain.FeatureGeo:           geoFit(c, l),
		domain.FeatureReviews:       reviewScore(l.KPI),
		domain.FeatureFirm:          firmReputation(l.Firm),
	}
}

// ComputeDynamic returns the case-dependent features (A,S,U,C,P,M),
// recomputed fresh on every pass.
func (calc *Calculator) ComputeDynamic(ctx context.Context, c domain.Case, l domain.Lawyer) map[domain.FeatureCode]float64 {
	return map[domain.FeatureCode]float64{
		domain.FeatureArea:       areaMatch(c, l),
		domain.FeatureSimilarity: caseSimilarity(c, l),
		domain.FeatureUrgency:    urgencyFit(c, l.KPI),
		domain.FeatureSoftSkill:  calc.softSkills(ctx, l),
		domain.FeaturePrice:      priceFit(c, l),
		domain.FeatureMaturity:   calc.maturityScore(ctx, l),
	}
}

// areaMatch is 1 when the lawyer's expertise tags contain the case area.
func areaMatch(c domain.Case, l domain.Lawyer) float64 {
	area := strings.TrimSpace(strings.ToLower(c.Area))
	if area == "" {
		return 0
	}
	for _, tag := range l.ExpertiseAreas {
		if strings.TrimSpace(strings.ToLower(tag)) == area {
			return 1
		}
	}
	return 0
}

// caseSimilarity averages cosine similarity between the case embedding
// and each historical embedding, weighting wins above losses. Negative
// similarities are floored at zero so the feature stays in [0,1].
func caseSimilarity(c domain.Case, l domain.Lawyer) float64 {
	if len(c.Embedding) == 0 || len(l.CaseEmbeddings) == 0 {
		return 0
	}

	// Outcomes and embeddings are maintained as parallel sequences;
	// guard against a mismatch anyway.
	n := len(l.CaseEmbeddings)
	if len(l.CaseOutcomes) < n {
		n = len(l.CaseOutcomes)
	}
	if n == 0 {
		return 0
	}

	var acc, total float64
	for i := 0; i < n; i++ {
		w := lostCaseWeight
		if l.CaseOutcomes[i] {
			w = wonCaseWeight
		}
		sim := numeric.CosineSimilarity(c.Embedding, l.CaseEmbeddings[i])
		acc += w * math.Max(0, sim)
		total += w
	}
	return numeric.Clamp01(acc / total)
}

// successRate prefers a subarea-specific override, falling back to the
// Bayesian-smoothed overall rate. The confidence count is the total
// case history; it must not track recent workload, or the score would
// offset the equity penalty.
func successRate(c domain.Case, l domain.Lawyer) float64 {
	if c.Area != "" && c.Subarea != "" {
		key := c.Area + "/" + c.Subarea
		if rate, ok := l.SuccessByArea[key]; ok {
			return numeric.Clamp01(rate)
		}
	}

	n := float64(len(l.CaseOutcomes))
	rate := numeric.Clamp01(l.KPI.SuccessRate)
	return numeric.Clamp01((rate*n + successPrior*successPseudoCnt) / (n + successPseudoCnt))
}

// geoFit decays exponentially with great-circle distance: 1 at zero
// distance, 1/e at geoDecayKm. An unknown location on either side
// scores the neutral default.
func geoFit(c domain.Case, l domain.Lawyer) float64 {
	if c.Location == nil || l.Location == nil {
		return neutral
	}
	d := numeric.HaversineKm(c.Location.Lat, c.Location.Lon, l.Location.Lat, l.Location.Lon)
	return numeric.Clamp01(math.Exp(-d / geoDecayKm))
}

// qualification composes experience, degree level, and publications, each
// capped so the sum stays in [0,1]. An externally computed CV score
// supersedes the composite.
func qualification(l domain.Lawyer) float64 {
	if l.KPI.CVScore != nil {
		return numeric.Clamp01(*l.KPI.CVScore)
	}

	q := l.Qualification
	years := math.Min(math.Max(0, float64(q.YearsExperience)), maxExperienceYears)
	pubs := math.Min(math.Max(0, float64(q.Publications)), maxPublications)

	score := experienceShare*(years/maxExperienceYears) +
		degreeScores[q.Degree] +
		publicationShare*(pubs/maxPublications)
	return numeric.Clamp01(score)
}

// urgencyFit compares the case's response window with the lawyer's
// typical response time and current headroom.
func urgencyFit(c domain.Case, kpi domain.KPI) float64 {
	if c.UrgencyHours <= 0 {
		return neutral
	}

	speed := neutral
	if kpi.ResponseTimeHours > 0 {
		speed = math.Min(1, c.UrgencyHours/kpi.ResponseTimeHours)
	}

	headroom := neutral
	if kpi.MonthlyCapacity > 0 {
		headroom = numeric.Clamp01(1 - float64(kpi.ActiveCases)/float64(kpi.MonthlyCapacity))
	}

	return numeric.Clamp01(speedShare*speed + headroomShare*headroom)
}

// reviewScore normalizes the average rating to [0,1].
func reviewScore(kpi domain.KPI) float64 {
	return numeric.Clamp01(kpi.AvgRating / maxRating)
}

// softSkills returns the externally supplied score when present and
// otherwise delegates to the analyzer, substituting neutral on failure.
func (calc *Calculator) softSkills(ctx context.Context, l domain.Lawyer) float64 {
	if l.SoftSkillScore != nil {
		return numeric.Clamp01(*l.SoftSkillScore)
	}
	score, err := calc.analyzer.Score(ctx, l.Reviews)
	if err != nil {
		return neutral
	}
	return numeric.Clamp01(score)
}

// firmReputation composes firm-level indicators; lawyers without a firm
// score zero so weighting degrades gracefully.
func firmReputation(f *domain.Firm) float64 {
	if f == nil {
		return 0
	}
	return numeric.Clamp01(
		0.6*numeric.Clamp01(f.Rating/maxRating) +
			0.2*math.Min(1, float64(f.TeamSize)/50.0) +
			0.2*math.Min(1, float64(f.YearsActive)/30.0),
	)
}

// priceFit scores overlap between the case's expected fee range and the
// lawyer's average rate: 1 inside the range, decaying with relative
// distance outside it, 0 when either side is unknown.
func priceFit(c domain.Case, l domain.Lawyer) float64 {
	if l.AvgFeeRate <= 0 || (c.ExpectedFeeMin <= 0 && c.ExpectedFeeMax <= 0) {
		return 0
	}

	fee := l.AvgFeeRate
	low, high := c.ExpectedFeeMin, c.ExpectedFeeMax
	if high <= 0 {
		high = math.Inf(1)
	}

	switch {
	case fee >= low && fee <= high:
		return 1
	case fee > high:
		return numeric.Clamp01(1 - (fee-high)/high)
	default:
		// Cheaper than expected: a mild mismatch signal, not a hard zero.
		return numeric.Clamp01(1 - (low-fee)/low)
	}
}

// maturityScore converts an adapter-provided maturity record into [0,1],
// zero when no record is available.
func (calc *Calculator) maturityScore(ctx context.Context, l domain.Lawyer) float64 {
	if calc.maturity == nil {
		return 0
	}
	rec, ok := calc.maturity.Maturity(ctx, l.ID)
	if !ok {
		return 0
	}

	base := math.Min(math.Max(0, float64(rec.YearsLicensed)), maxLicensedYears) / maxLicensedYears
	penalty := math.Pow(sanctionPenalty, math.Max(0, float64(rec.Sanctions)))
	return numeric.Clamp01(base * penalty)
}
