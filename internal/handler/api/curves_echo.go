package api

import (
	"errors"
	"net/http"
	"time"

	models "RateSim/internal/domain/models"
	"RateSim/internal/service/curvecache"
	"RateSim/internal/service/metrics"
	"RateSim/internal/service/ratelimit"
	"RateSim/internal/usecase"
	xhttp "RateSim/pkg/http"
	xlogger "RateSim/pkg/logger"

	"github.com/labstack/echo/v4"
)

// CurvesEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
type CurvesEchoHandler struct {
	logger *xlogger.Logger
	an     *usecase.Analyzer
	cache  *curvecache.Cache
	rl     *ratelimit.Limiter
}

func NewCurvesEchoHandler(logger *xlogger.Logger, an *usecase.Analyzer, cache *curvecache.Cache) *CurvesEchoHandler {
	metrics.Register()
	return &CurvesEchoHandler{logger: logger, an: an, cache: cache, rl: ratelimit.New()}
}

func (h *CurvesEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Index)
	g := e.Group("/api")
	g.GET("/curve", h.Curve)
	g.POST("/analyze", h.Analyze)
	g.POST("/risk", h.Risk)
}

// Index reports service identity and per-source cache state.
func (h *CurvesEchoHandler) Index(c echo.Context) error {
	sources := make(map[string]string)
	for _, id := range h.cache.SourceIDs() {
		sources[id] = h.cache.State(id).String()
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"service": "ratesim",
		"sources": sources,
	})
}

func (h *CurvesEchoHandler) Curve(c echo.Context) error {
	start := time.Now()
	endpoint := "curve"
	defer func() { metrics.CurveLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if !h.rl.Allow(c.RealIP()+":curve", 10, 5) {
		return h.rateLimited(c, endpoint)
	}

	req := &models.CurveRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.an.Curve(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("curve usecase error", xlogger.Error(err))
		return h.feedError(c, endpoint, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, res)
}

func (h *CurvesEchoHandler) Analyze(c echo.Context) error {
	start := time.Now()
	endpoint := "analyze"
	defer func() { metrics.CurveLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if !h.rl.Allow(c.RealIP()+":analyze", 5, 2) {
		return h.rateLimited(c, endpoint)
	}

	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.an.Analyze(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("analyze usecase error", xlogger.Error(err))
		return h.feedError(c, endpoint, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *CurvesEchoHandler) Risk(c echo.Context) error {
	start := time.Now()
	endpoint := "risk"
	defer func() { metrics.CurveLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if !h.rl.Allow(c.RealIP()+":risk", 5, 2) {
		return h.rateLimited(c, endpoint)
	}

	req := &models.RiskRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.an.Risk(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("risk usecase error", xlogger.Error(err))
		return h.feedError(c, endpoint, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *CurvesEchoHandler) rateLimited(c echo.Context, endpoint string) error {
	h.logger.Warn("rate limited",
		xlogger.String("endpoint", endpoint),
		xlogger.String("remote", c.RealIP()),
	)
	return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limited")
}

// feedError maps cache failures onto HTTP statuses: unknown sources are 404,
// an unreachable feed with nothing cached is 503.
func (h *CurvesEchoHandler) feedError(c echo.Context, endpoint string, err error) error {
	metrics.CurveErrors.WithLabelValues(endpoint).Inc()
	switch {
	case errors.Is(err, curvecache.ErrUnknownSource):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError(err.Error()).WithError(err))
	case errors.Is(err, curvecache.ErrNoFallback):
		appErr := xhttp.NewAppError("ERR_FEED_UNAVAILABLE",
			"feed unavailable and no cached curve", http.StatusServiceUnavailable).WithError(err)
		return xhttp.AppErrorResponse(c, appErr)
	default:
		return xhttp.AppErrorResponse(c, err)
	}
}
