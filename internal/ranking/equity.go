// Package ranking composes the matching engine: it filters ineligible
// candidates, scores the rest, applies the fairness treatment and premium
// gating, breaks ties, and returns the top N with a fully explainable
// breakdown.
package ranking

import "github.com/jusmatch/matchengine/internal/domain"

// OverloadFloor is the minimum equity weight. Candidates at or beyond
// capacity are de-prioritized, never fully zeroed, so busy-but-available
// lawyers are not starved entirely.
const OverloadFloor = 0.05

// equityBlendFloor bounds how much the equity weight can dampen a score:
// even at the overload floor a candidate keeps half of its fair base.
const equityBlendFloor = 0.5

// EquityWeight converts recent workload into a de-prioritization
// multiplier in [OverloadFloor, 1]. It is 1 − cases30d/capacity, floored
// at OverloadFloor, and monotonically non-increasing in cases30d. A
// non-positive capacity counts as fully overloaded.
func EquityWeight(cases30d, capacity int) float64 {
	if capacity <= 0 {
		return OverloadFloor
	}
	e := 1 - float64(cases30d)/float64(capacity)
	if e < OverloadFloor {
		return OverloadFloor
	}
	if e > 1 {
		return 1
	}
	return e
}

// EquityWeightKPI is the KPI-block convenience form of EquityWeight.
func EquityWeightKPI(kpi domain.KPI) float64 {
	return EquityWeight(kpi.Cases30d, kpi.MonthlyCapacity)
}

// Blend combines the fair base score with the equity weight into the
// final fair score. The blend is multiplicative but damped: equity
// strictly modulates ordering without discarding high-quality candidates
// outright. It is monotonically non-decreasing in both arguments.
func Blend(fairBase, equity float64) float64 {
	return fairBase * (equityBlendFloor + (1-equityBlendFloor)*equity)
}
