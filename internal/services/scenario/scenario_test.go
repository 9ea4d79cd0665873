package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RateSim/internal/domain/models"
	"RateSim/internal/services/curve"
)

func baseCurve(t *testing.T) curve.Curve {
	t.Helper()
	c, err := curve.Build([]models.Observation{
		{Tenor: 1, Rate: 4.50},
		{Tenor: 5, Rate: 4.10},
		{Tenor: 10, Rate: 4.30},
	}, curve.InterpLinear)
	require.NoError(t, err)
	return c
}

func rates(c curve.Curve) []float64 {
	obs := c.Observations()
	out := make([]float64, len(obs))
	for i, o := range obs {
		out[i] = o.Rate
	}
	return out
}

func TestParallelShift(t *testing.T) {
	base := baseCurve(t)
	shifted, err := Apply(base, ParallelShift{BP: 100})
	require.NoError(t, err)
	assert.Equal(t, []float64{5.50, 5.10, 5.30}, rates(shifted))
	// Input curve untouched.
	assert.Equal(t, []float64{4.50, 4.10, 4.30}, rates(base))
}

func TestParallelShiftRoundTrip(t *testing.T) {
	base := baseCurve(t)
	up, err := Apply(base, ParallelShift{BP: 37.5})
	require.NoError(t, err)
	down, err := Apply(up, ParallelShift{BP: -37.5})
	require.NoError(t, err)
	for i, r := range rates(down) {
		assert.InDelta(t, rates(base)[i], r, 1e-12)
	}
}

func TestParallelShiftZeroIsIdentity(t *testing.T) {
	base := baseCurve(t)
	same, err := Apply(base, ParallelShift{BP: 0})
	require.NoError(t, err)
	assert.Equal(t, rates(base), rates(same))
}

func TestSteepener(t *testing.T) {
	base := baseCurve(t)
	stressed, err := Apply(base, Steepener{ShortBP: -25, LongBP: 15, PivotTenor: 5})
	require.NoError(t, err)
	// Pivot itself takes the short shift; the kink is preserved.
	assert.InDelta(t, 4.25, stressed.RateAt(1), 1e-12)
	assert.InDelta(t, 3.85, stressed.RateAt(5), 1e-12)
	assert.InDelta(t, 4.45, stressed.RateAt(10), 1e-12)
}

func TestFlattenerIsJustReversedSigns(t *testing.T) {
	base := baseCurve(t)
	stressed, err := Apply(base, Steepener{ShortBP: 25, LongBP: -15, PivotTenor: 5})
	require.NoError(t, err)
	assert.InDelta(t, 4.75, stressed.RateAt(1), 1e-12)
	assert.InDelta(t, 4.15, stressed.RateAt(10), 1e-12)
}

func TestCustomShocksExistingTenor(t *testing.T) {
	base := baseCurve(t)
	stressed, err := Apply(base, CustomShocks{Shocks: map[float64]float64{5: 50}})
	require.NoError(t, err)
	assert.InDelta(t, 4.60, stressed.RateAt(5), 1e-12)
	assert.Equal(t, 3, stressed.Len())
}

func TestCustomShocksInsertsNewNode(t *testing.T) {
	base := baseCurve(t)
	// 3y is not an observed node; base linear rate there is 4.30.
	stressed, err := Apply(base, CustomShocks{Shocks: map[float64]float64{3: 20}})
	require.NoError(t, err)
	assert.Equal(t, 4, stressed.Len())
	assert.InDelta(t, 4.50, stressed.RateAt(3), 1e-12)

	obs := stressed.Observations()
	assert.Equal(t, []float64{1, 3, 5, 10}, []float64{obs[0].Tenor, obs[1].Tenor, obs[2].Tenor, obs[3].Tenor})
}

func TestCustomShocksEmptySet(t *testing.T) {
	_, err := Apply(baseCurve(t), CustomShocks{})
	assert.ErrorIs(t, err, ErrEmptyShockSet)
}

func TestStressedCurveCarriesScenarioID(t *testing.T) {
	base := baseCurve(t)
	stressed, err := Apply(base, ParallelShift{BP: 100})
	require.NoError(t, err)
	assert.Equal(t, "parallel:+100bp", stressed.ID())

	stressed, err = Apply(base, Steepener{ShortBP: -25, LongBP: 15, PivotTenor: 5})
	require.NoError(t, err)
	assert.Equal(t, "steepener:-25/+15bp@5", stressed.ID())
}
