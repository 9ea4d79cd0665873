package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RateSim/internal/domain/models"
	drepo "RateSim/internal/domain/repository"
	"RateSim/internal/service/curvecache"
	"RateSim/internal/services/scenario"
	xlogger "RateSim/pkg/logger"
)

const csvDoc = "Date,\"1 Yr\",\"5 Yr\",\"10 Yr\"\n01/15/2025,4.50,4.10,4.30\n"

type staticSource struct {
	id      string
	payload []byte
}

func (s *staticSource) ID() string                            { return s.id }
func (s *staticSource) Fetch(context.Context) ([]byte, error) { return s.payload, nil }

func testAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	log, err := xlogger.New(&xlogger.Config{Level: "error", Format: "console", Output: "stderr"})
	require.NoError(t, err)
	cache := curvecache.New([]drepo.FeedSource{&staticSource{id: "ust", payload: []byte(csvDoc)}})
	return NewAnalyzer(cache, log)
}

func TestAnalyzerCurve(t *testing.T) {
	an := testAnalyzer(t)

	res, err := an.Curve(context.Background(), &models.CurveRequest{Source: "ust"})
	require.NoError(t, err)
	assert.Equal(t, "01/15/2025", res.AsOf)
	require.Len(t, res.Curve, 3)
	assert.Equal(t, models.Observation{Tenor: 1, Rate: 4.50}, res.Curve[0])
}

func TestAnalyzerAnalyzeParallel(t *testing.T) {
	an := testAnalyzer(t)

	res, err := an.Analyze(context.Background(), &models.AnalyzeRequest{
		Source:   "ust",
		Scenario: models.ScenarioRequest{Type: "parallel", Magnitude: 50},
	})
	require.NoError(t, err)
	assert.Equal(t, "01/15/2025", res.AsOf)
	require.Len(t, res.ShockedCurve, 3)
	for i, o := range res.ShockedCurve {
		assert.InDelta(t, res.OriginalCurve[i].Rate+0.5, o.Rate, 1e-12)
	}
	require.Len(t, res.Metrics, 3)
	for _, m := range res.Metrics {
		assert.InDelta(t, 50, m.DeltaBPS, 1e-9)
		assert.Positive(t, m.Duration)
		assert.Positive(t, m.DV01)
	}
}

func TestAnalyzerAnalyzeCustomInsertsTenor(t *testing.T) {
	an := testAnalyzer(t)

	res, err := an.Analyze(context.Background(), &models.AnalyzeRequest{
		Source: "ust",
		Scenario: models.ScenarioRequest{
			Type:   "custom",
			Shocks: map[string]float64{"3Y": 25},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.ShockedCurve, 4)
	assert.Equal(t, 3.0, res.ShockedCurve[1].Tenor)
	// Interpolated 3y rate is 4.30; +25bp lands at 4.55.
	assert.InDelta(t, 4.55, res.ShockedCurve[1].Rate, 1e-12)
}

func TestAnalyzerRiskStressed(t *testing.T) {
	an := testAnalyzer(t)

	res, err := an.Risk(context.Background(), &models.RiskRequest{
		Source:     "ust",
		Instrument: models.Instrument{Maturity: 10, Coupon: 4.30, Notional: 100},
		Scenario:   &models.ScenarioRequest{Type: "parallel", Magnitude: 100},
	})
	require.NoError(t, err)
	assert.Equal(t, "base", res.Base.CurveID)
	require.NotNil(t, res.Stressed)
	assert.Less(t, res.Stressed.Price, res.Base.Price)
	assert.Positive(t, res.Base.DV01)
}

func TestAnalyzerRiskInvalidInstrument(t *testing.T) {
	an := testAnalyzer(t)

	_, err := an.Risk(context.Background(), &models.RiskRequest{
		Source:     "ust",
		Instrument: models.Instrument{Maturity: 0, Notional: 100},
	})
	assert.Error(t, err)
}

func TestBuildScenario(t *testing.T) {
	s, err := BuildScenario(&models.ScenarioRequest{Type: "parallel", Magnitude: -25})
	require.NoError(t, err)
	assert.IsType(t, scenario.ParallelShift{}, s)

	s, err = BuildScenario(&models.ScenarioRequest{Type: "steepener", ShortBP: -10, LongBP: 20, Pivot: 2})
	require.NoError(t, err)
	assert.IsType(t, scenario.Steepener{}, s)

	s, err = BuildScenario(&models.ScenarioRequest{Type: "custom", Shocks: map[string]float64{"3 Mo": 10, "10Y": -5}})
	require.NoError(t, err)
	cs, ok := s.(scenario.CustomShocks)
	require.True(t, ok)
	assert.InDelta(t, 10, cs.Shocks[0.25], 1e-12)
	assert.InDelta(t, -5, cs.Shocks[10], 1e-12)
}

func TestBuildScenarioRejectsBadInput(t *testing.T) {
	_, err := BuildScenario(&models.ScenarioRequest{Type: "custom", Shocks: map[string]float64{}})
	assert.Error(t, err)

	_, err = BuildScenario(&models.ScenarioRequest{Type: "custom", Shocks: map[string]float64{"soon": 10}})
	assert.Error(t, err)

	_, err = BuildScenario(&models.ScenarioRequest{Type: "inversion"})
	assert.Error(t, err)
}
