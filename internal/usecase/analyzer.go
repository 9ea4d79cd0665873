package usecase

import (
	"context"
	"fmt"
	"time"

	"RateSim/internal/domain/models"
	"RateSim/internal/service/curvecache"
	"RateSim/internal/services/risk"
	"RateSim/internal/services/scenario"
	xhttp "RateSim/pkg/http"
	"RateSim/pkg/logger"
	"RateSim/pkg/util"
)

// Analyzer answers curve, scenario and risk queries against the cached feeds.
type Analyzer struct {
	cache *curvecache.Cache
	log   *logger.Logger
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer(cache *curvecache.Cache, log *logger.Logger) *Analyzer {
	return &Analyzer{cache: cache, log: log}
}

// Curve returns the latest base curve for a source.
func (a *Analyzer) Curve(ctx context.Context, req *models.CurveRequest) (*models.CurveResponse, error) {
	snap, err := a.cache.GetOrFetch(ctx, req.Source)
	if err != nil {
		return nil, err
	}
	return &models.CurveResponse{
		AsOf:  snap.AsOf,
		Curve: snap.Curve.Observations(),
	}, nil
}

// Analyze applies a stress scenario to the latest curve and reports the
// shocked curve alongside per-tenor sensitivities.
func (a *Analyzer) Analyze(ctx context.Context, req *models.AnalyzeRequest) (*models.AnalyzeResponse, error) {
	snap, err := a.cache.GetOrFetch(ctx, req.Source)
	if err != nil {
		return nil, err
	}

	scen, err := BuildScenario(&req.Scenario)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	base := snap.Curve
	shocked, err := scenario.Apply(base, scen)
	if err != nil {
		return nil, xhttp.BadRequestError(err.Error()).WithError(err)
	}

	obs := shocked.Observations()
	metrics := make([]models.TenorMetrics, 0, len(obs))
	for _, o := range obs {
		dur, dv01 := risk.ZeroCouponMetrics(o.Rate, o.Tenor)
		metrics = append(metrics, models.TenorMetrics{
			Tenor:    o.Tenor,
			Yield:    o.Rate,
			DeltaBPS: (o.Rate - base.RateAt(o.Tenor)) * 100,
			Duration: dur,
			DV01:     dv01,
		})
	}

	a.log.Debug("scenario applied",
		logger.String("source", req.Source),
		logger.String("scenario", shocked.ID()),
		logger.Duration("took", time.Since(start)),
	)

	return &models.AnalyzeResponse{
		AsOf:          snap.AsOf,
		ScenarioID:    shocked.ID(),
		OriginalCurve: base.Observations(),
		ShockedCurve:  obs,
		Metrics:       metrics,
	}, nil
}

// Risk prices an instrument off the latest curve and, when a scenario is
// given, off the shocked curve as well.
func (a *Analyzer) Risk(ctx context.Context, req *models.RiskRequest) (*models.RiskResponse, error) {
	snap, err := a.cache.GetOrFetch(ctx, req.Source)
	if err != nil {
		return nil, err
	}

	base, err := risk.Compute(req.Instrument, snap.Curve)
	if err != nil {
		return nil, xhttp.BadRequestError(err.Error()).WithError(err)
	}

	resp := &models.RiskResponse{
		AsOf: snap.AsOf,
		Base: base,
	}

	if req.Scenario != nil {
		scen, err := BuildScenario(req.Scenario)
		if err != nil {
			return nil, err
		}
		shocked, err := scenario.Apply(snap.Curve, scen)
		if err != nil {
			return nil, xhttp.BadRequestError(err.Error()).WithError(err)
		}
		stressed, err := risk.Compute(req.Instrument, shocked)
		if err != nil {
			return nil, xhttp.BadRequestError(err.Error()).WithError(err)
		}
		resp.Stressed = &stressed
	}

	return resp, nil
}

// BuildScenario converts a request payload into a concrete scenario.
func BuildScenario(req *models.ScenarioRequest) (scenario.Scenario, error) {
	switch req.Type {
	case "parallel":
		return scenario.ParallelShift{BP: req.Magnitude}, nil
	case "steepener":
		return scenario.Steepener{
			ShortBP:    req.ShortBP,
			LongBP:     req.LongBP,
			PivotTenor: req.Pivot,
		}, nil
	case "custom":
		if len(req.Shocks) == 0 {
			return nil, xhttp.BadRequestError("custom scenario needs at least one shock")
		}
		shocks := make(map[float64]float64, len(req.Shocks))
		for key, bp := range req.Shocks {
			tenor, ok := util.ParseTenor(key)
			if !ok || tenor <= 0 {
				return nil, xhttp.BadRequestErrorf("invalid shock tenor '%s'", key)
			}
			shocks[tenor] = bp
		}
		return scenario.CustomShocks{Shocks: shocks}, nil
	default:
		return nil, xhttp.BadRequestError(fmt.Sprintf("unknown scenario type '%s'", req.Type))
	}
}
