package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"FinLevels/internal/domain/models"
	domrepo "FinLevels/internal/domain/repository"
	"FinLevels/internal/service/metrics"
	"FinLevels/internal/service/ratelimit"
	"FinLevels/internal/services/benchmark"
	"FinLevels/internal/services/consensus"
	"FinLevels/internal/services/dividends"
	"FinLevels/pkg/cache"
	xhttp "FinLevels/pkg/http"
	xlogger "FinLevels/pkg/logger"
	"FinLevels/pkg/util"

	"github.com/labstack/echo/v4"
)

type LevelsService interface {
	Levels(ctx context.Context, symbol string, window models.WindowSize) (*models.LevelsResult, error)
	Signal(ctx context.Context, symbol string, window models.WindowSize) (*models.SignalResult, error)
}

type WatchlistService interface {
	Scan(ctx context.Context, symbols []string, window models.WindowSize) (*models.WatchlistReport, error)
}

type PortfolioService interface {
	Dividends(ctx context.Context, assets []models.Asset) (*models.DividendReport, error)
	Benchmark(ctx context.Context, assets []models.Asset, benchmarkSymbol string, interval domrepo.Interval, rangeSpec, granularity string) (*models.BenchmarkReport, error)
	Performance(ctx context.Context, assets []models.Asset) (*models.PerformanceReport, error)
}

// LevelsEchoHandler serves the levels, signal and portfolio endpoints under /api.
type LevelsEchoHandler struct {
	logger    *xlogger.Logger
	levels    LevelsService
	watchlist WatchlistService
	portfolio PortfolioService
	guard     *guard
}

// NewLevelsEchoHandler wires the endpoints. rl and c may be nil to disable rate limiting and response caching.
func NewLevelsEchoHandler(logger *xlogger.Logger, lv LevelsService, wl WatchlistService, pf PortfolioService, rl *ratelimit.Limiter, c cache.Service, ttl time.Duration) *LevelsEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	metrics.Register()
	return &LevelsEchoHandler{
		logger:    logger,
		levels:    lv,
		watchlist: wl,
		portfolio: pf,
		guard:     &guard{rl: rl, cache: c, ttl: ttl, l: logger},
	}
}

func (h *LevelsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/levels", h.Levels)
	g.GET("/signal", h.Signal)
	g.GET("/watchlist", h.Watchlist)
	g.POST("/consensus", h.Consensus)
	g.POST("/dividends/rank", h.RankDividends)
	g.POST("/benchmark/compare", h.CompareBenchmark)
	g.POST("/portfolio/dividends", h.PortfolioDividends)
	g.POST("/portfolio/benchmark", h.PortfolioBenchmark)
	g.POST("/portfolio/performance", h.PortfolioPerformance)
}

func (h *LevelsEchoHandler) Levels(c echo.Context) error {
	req := &models.LevelsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return h.guard.serve(c, "levels", func() (interface{}, error) {
		return h.levels.Levels(c.Request().Context(), req.Symbol, models.WindowSize(req.Window))
	})
}

func (h *LevelsEchoHandler) Signal(c echo.Context) error {
	req := &models.LevelsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return h.guard.serve(c, "signal", func() (interface{}, error) {
		return h.levels.Signal(c.Request().Context(), req.Symbol, models.WindowSize(req.Window))
	})
}

func (h *LevelsEchoHandler) Watchlist(c echo.Context) error {
	req := &models.WatchlistRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbols := util.SplitSymbols(req.Symbols)
	if len(symbols) == 0 {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("symbols must name at least one symbol"))
	}
	return h.guard.serve(c, "watchlist", func() (interface{}, error) {
		return h.watchlist.Scan(c.Request().Context(), symbols, models.WindowSize(req.Window))
	})
}

// Consensus accepts recommendation counts or a null body, which resolves to NEUTRAL.
func (h *LevelsEchoHandler) Consensus(c echo.Context) error {
	var counts *models.RecommendationCounts
	if err := json.NewDecoder(c.Request().Body).Decode(&counts); err != nil && !errors.Is(err, io.EOF) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("invalid body: %v", err))
	}
	if counts != nil {
		if verr := xhttp.ValidateStruct(c.Request().Context(), counts); verr != nil {
			return xhttp.BadRequestResponse(c, verr)
		}
	}
	return xhttp.SuccessResponse(c, map[string]models.AnalystView{"view": consensus.Resolve(counts)})
}

func (h *LevelsEchoHandler) RankDividends(c echo.Context) error {
	req := &models.DividendRankRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, dividends.Aggregate(req.Records))
}

func (h *LevelsEchoHandler) CompareBenchmark(c echo.Context) error {
	req := &models.BenchmarkCompareRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, benchmark.Compare(req.Assets, req.AssetSeries, req.BenchmarkSeries, req.Granularity))
}

func (h *LevelsEchoHandler) PortfolioDividends(c echo.Context) error {
	req := &models.PortfolioRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	start := time.Now()
	res, err := h.portfolio.Dividends(c.Request().Context(), req.Assets)
	metrics.Observe("portfolio_dividends", start, err)
	if err != nil {
		return fail(c, h.logger, "portfolio_dividends", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *LevelsEchoHandler) PortfolioBenchmark(c echo.Context) error {
	req := &models.PortfolioBenchmarkRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	start := time.Now()
	res, err := h.portfolio.Benchmark(c.Request().Context(), req.Assets, req.Benchmark,
		domrepo.NormalizeInterval(req.Interval), req.Range, req.Granularity)
	metrics.Observe("portfolio_benchmark", start, err)
	if err != nil {
		return fail(c, h.logger, "portfolio_benchmark", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *LevelsEchoHandler) PortfolioPerformance(c echo.Context) error {
	req := &models.PortfolioRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	start := time.Now()
	res, err := h.portfolio.Performance(c.Request().Context(), req.Assets)
	metrics.Observe("portfolio_performance", start, err)
	if err != nil {
		return fail(c, h.logger, "portfolio_performance", err)
	}
	return xhttp.SuccessResponse(c, res)
}
