package ranking

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jusmatch/matchengine/internal/domain"
)

func TestEquityWeight(t *testing.T) {
	tests := []struct {
		name     string
		cases30d int
		capacity int
		want     float64
	}{
		{"light load", 2, 10, 0.8},
		{"at capacity floors", 10, 10, OverloadFloor},
		{"beyond capacity floors", 15, 10, OverloadFloor},
		{"idle lawyer", 0, 10, 1.0},
		{"zero capacity counts as overloaded", 3, 0, OverloadFloor},
		{"negative capacity counts as overloaded", 3, -1, OverloadFloor},
		{"near capacity floors", 19, 20, OverloadFloor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, EquityWeight(tt.cases30d, tt.capacity), 1e-9)
		})
	}
}

func TestEquityWeight_MonotoneAndBounded(t *testing.T) {
	err := quick.Check(func(cases30d uint8, capacity uint8) bool {
		e := EquityWeight(int(cases30d), int(capacity))
		if e < OverloadFloor || e > 1 {
			return false
		}
		// Non-increasing in cases30d.
		return EquityWeight(int(cases30d)+1, int(capacity)) <= e
	}, nil)
	require.NoError(t, err)
}

func TestEquityWeightKPI(t *testing.T) {
	kpi := domain.KPI{Cases30d: 2, MonthlyCapacity: 10}
	assert.InDelta(t, 0.8, EquityWeightKPI(kpi), 1e-9)
}

func TestBlend(t *testing.T) {
	t.Run("full equity keeps the base untouched", func(t *testing.T) {
		assert.InDelta(t, 0.7, Blend(0.7, 1.0), 1e-9)
	})

	t.Run("floored equity keeps at least half the base", func(t *testing.T) {
		got := Blend(0.8, OverloadFloor)
		assert.Greater(t, got, 0.4)
		assert.Less(t, got, 0.8)
	})

	t.Run("monotone in both arguments", func(t *testing.T) {
		err := quick.Check(func(base, eq1, eq2 uint8) bool {
			b := float64(base) / 255
			e1 := OverloadFloor + (1-OverloadFloor)*float64(eq1)/255
			e2 := OverloadFloor + (1-OverloadFloor)*float64(eq2)/255
			if e1 > e2 {
				e1, e2 = e2, e1
			}
			return Blend(b, e1) <= Blend(b, e2)+1e-12
		}, nil)
		require.NoError(t, err)
	})
}
