package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FinLevels/internal/domain/models"
	domrepo "FinLevels/internal/domain/repository"
	domsvc "FinLevels/internal/domain/service"
	"FinLevels/internal/services/benchmark"
	"FinLevels/internal/services/dividends"
	applogger "FinLevels/pkg/logger"
	"FinLevels/pkg/util"
)

// PortfolioUseCase fetches holdings data from the quote provider and feeds the portfolio engines.
type PortfolioUseCase struct {
	quotes      domsvc.QuoteProvider
	concurrency int
	timeout     time.Duration
	log         *applogger.Logger
}

func NewPortfolioUseCase(quotes domsvc.QuoteProvider, concurrency int, l *applogger.Logger) *PortfolioUseCase {
	if l == nil {
		l = applogger.Nop()
	}
	return &PortfolioUseCase{quotes: quotes, concurrency: concurrency, timeout: 30 * time.Second, log: l}
}

// Dividends ranks the dividend figures of the held symbols.
func (uc *PortfolioUseCase) Dividends(ctx context.Context, assets []models.Asset) (*models.DividendReport, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	recs, errs := fetchEach(ctx, symbolsOf(assets), uc.concurrency, uc.quotes.Dividend)
	summary := dividends.AggregateMap(recs)

	display := make(map[string]string, len(recs))
	for _, r := range summary.RankedByAnnual {
		if r.AnnualDividendBase != nil {
			display[r.Symbol] = util.FormatMoney(*r.AnnualDividendBase, r.OriginalCurrency)
		}
	}
	uc.logPartial("portfolio.dividends", len(recs), errs)
	return &models.DividendReport{DividendSummary: summary, Display: display, Errors: errs}, nil
}

// Benchmark compares the holdings against benchmarkSymbol over the requested history.
// A held symbol whose history fails contributes nothing; a failed benchmark fails the call.
func (uc *PortfolioUseCase) Benchmark(ctx context.Context, assets []models.Asset, benchmarkSymbol string, interval domrepo.Interval, rangeSpec, granularity string) (*models.BenchmarkReport, error) {
	if benchmarkSymbol == "" {
		return nil, errors.New("benchmark symbol required")
	}
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	bench, err := uc.quotes.History(ctx, benchmarkSymbol, interval, rangeSpec)
	if err != nil {
		return nil, fmt.Errorf("benchmark history %s: %w", benchmarkSymbol, err)
	}
	series, errs := fetchEach(ctx, symbolsOf(assets), uc.concurrency, func(ctx context.Context, s string) ([]models.TimeSeriesPoint, error) {
		return uc.quotes.History(ctx, s, interval, rangeSpec)
	})
	uc.logPartial("portfolio.benchmark", len(series), errs)

	return &models.BenchmarkReport{
		BenchmarkComparison: benchmark.Compare(assets, series, bench, granularity),
		BenchmarkSymbol:     benchmarkSymbol,
		Errors:              errs,
	}, nil
}

// Performance marks every holding to its live price. Holdings without a quote are left out.
func (uc *PortfolioUseCase) Performance(ctx context.Context, assets []models.Asset) (*models.PerformanceReport, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	quotes, errs := fetchEach(ctx, symbolsOf(assets), uc.concurrency, uc.quotes.Quote)
	prices := make(map[string]float64, len(quotes))
	for s, q := range quotes {
		prices[s] = q.Price
	}
	uc.logPartial("portfolio.performance", len(quotes), errs)
	return &models.PerformanceReport{Holdings: benchmark.HoldingPerformance(assets, prices), Errors: errs}, nil
}

func (uc *PortfolioUseCase) logPartial(op string, ok int, errs map[string]string) {
	if len(errs) == 0 {
		return
	}
	uc.log.Warn(op+" partial", applogger.Int("ok", ok), applogger.Int("failed", len(errs)))
}
