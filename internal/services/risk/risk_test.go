package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RateSim/internal/domain/models"
	"RateSim/internal/services/curve"
	"RateSim/internal/services/scenario"
)

func flatCurve(t *testing.T, rate float64) curve.Curve {
	t.Helper()
	c, err := curve.Build([]models.Observation{
		{Tenor: 1, Rate: rate},
		{Tenor: 30, Rate: rate},
	}, curve.InterpLinear)
	require.NoError(t, err)
	return c
}

func TestComputeZeroCouponAgainstFlatCurve(t *testing.T) {
	c := flatCurve(t, 5.0)
	inst := models.Instrument{Maturity: 10, Coupon: 0, Notional: 100}

	res, err := Compute(inst, c)
	require.NoError(t, err)

	wantPrice := 100 / math.Pow(1.05, 10)
	assert.InDelta(t, wantPrice, res.Price, 1e-9)
	assert.Greater(t, res.DV01, 0.0)
	// Modified duration of a 10y zero at 5% is close to 10/1.05.
	assert.InDelta(t, 10/1.05, res.ModDuration, 0.05)
	assert.Equal(t, "base", res.CurveID)
}

func TestComputeCouponBond(t *testing.T) {
	c := flatCurve(t, 4.0)
	inst := models.Instrument{Maturity: 5, Coupon: 4, Notional: 100}

	res, err := Compute(inst, c)
	require.NoError(t, err)
	// Coupon equals the flat yield, so the bond prices at par.
	assert.InDelta(t, 100, res.Price, 1e-9)
	// Coupons pull duration below maturity.
	assert.Less(t, res.ModDuration, 5.0)
	assert.Greater(t, res.ModDuration, 3.0)
}

func TestComputeZeroNotional(t *testing.T) {
	res, err := Compute(models.Instrument{Maturity: 5, Coupon: 4, Notional: 0}, flatCurve(t, 4))
	require.NoError(t, err)
	assert.Zero(t, res.Price)
	assert.Zero(t, res.DV01)
	assert.Zero(t, res.ModDuration)
}

func TestComputeInvalidMaturity(t *testing.T) {
	_, err := Compute(models.Instrument{Maturity: 0, Notional: 100}, flatCurve(t, 4))
	assert.ErrorIs(t, err, ErrInvalidInstrument)

	_, err = Compute(models.Instrument{Maturity: -1, Notional: 100}, flatCurve(t, 4))
	assert.ErrorIs(t, err, ErrInvalidInstrument)
}

func TestComputeRejectsExcessiveMaturity(t *testing.T) {
	// Cash-flow generation walks one coupon per year, so the cap is what
	// keeps a request-supplied maturity from turning into unbounded work.
	_, err := Compute(models.Instrument{Maturity: 2e7, Coupon: 4, Notional: 100}, flatCurve(t, 4))
	assert.ErrorIs(t, err, ErrInvalidInstrument)

	_, err = Compute(models.Instrument{Maturity: MaxMaturity + 1, Notional: 100}, flatCurve(t, 4))
	assert.ErrorIs(t, err, ErrInvalidInstrument)

	res, err := Compute(models.Instrument{Maturity: MaxMaturity, Notional: 100}, flatCurve(t, 4))
	require.NoError(t, err)
	assert.Positive(t, res.Price)
}

func TestComputeNegativeRates(t *testing.T) {
	c := flatCurve(t, -0.5)
	res, err := Compute(models.Instrument{Maturity: 5, Coupon: 0, Notional: 100}, c)
	require.NoError(t, err)
	// Discounting at negative rates prices above par.
	assert.Greater(t, res.Price, 100.0)
	assert.Greater(t, res.DV01, 0.0)
}

func TestDV01ScalesWithShiftMagnitude(t *testing.T) {
	base := flatCurve(t, 4.0)
	inst := models.Instrument{Maturity: 10, Coupon: 3, Notional: 100}

	basePrice := Price(inst, base)
	prev := 0.0
	for _, bp := range []float64{25, 50, 100, 200} {
		shifted, err := scenario.Apply(base, scenario.ParallelShift{BP: bp})
		require.NoError(t, err)
		drop := basePrice - Price(inst, shifted)
		assert.Greater(t, drop, prev, "price impact must grow with shift size")
		prev = drop
	}
}

func TestSensitivityAgainstStressedCurveCarriesScenarioID(t *testing.T) {
	stressed, err := scenario.Apply(flatCurve(t, 4), scenario.ParallelShift{BP: 100})
	require.NoError(t, err)
	res, err := Compute(models.Instrument{Maturity: 5, Coupon: 4, Notional: 100}, stressed)
	require.NoError(t, err)
	assert.Equal(t, "parallel:+100bp", res.CurveID)
}

func TestZeroCouponMetrics(t *testing.T) {
	md, dv01 := ZeroCouponMetrics(5.0, 10)
	assert.InDelta(t, 10/1.05, md, 1e-12)
	wantDV01 := 100 / math.Pow(1.05, 10) * (10 / 1.05) * 0.0001
	assert.InDelta(t, wantDV01, dv01, 1e-12)

	md, dv01 = ZeroCouponMetrics(5.0, 0)
	assert.Zero(t, md)
	assert.Zero(t, dv01)
}
