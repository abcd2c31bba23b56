package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"FinLevels/internal/domain/models"
	domrepo "FinLevels/internal/domain/repository"
	domsvc "FinLevels/internal/domain/service"
	"FinLevels/internal/services/consensus"
	"FinLevels/internal/services/levels"
	"FinLevels/pkg/cache"
	applogger "FinLevels/pkg/logger"
)

// LevelsUseCase computes pivot levels from stored daily bars and classifies live quotes against them.
type LevelsUseCase struct {
	bars     domrepo.BarSource
	quotes   domsvc.QuoteProvider
	cache    cache.Service // optional
	ttl      time.Duration
	lookback int
	log      *applogger.Logger
	now      func() time.Time
}

func NewLevelsUseCase(bars domrepo.BarSource, quotes domsvc.QuoteProvider, c cache.Service, ttl time.Duration, lookback int, l *applogger.Logger) *LevelsUseCase {
	if l == nil {
		l = applogger.Nop()
	}
	if lookback < 8 {
		lookback = 62
	}
	return &LevelsUseCase{bars: bars, quotes: quotes, cache: c, ttl: ttl, lookback: lookback, log: l, now: time.Now}
}

// LevelsKey is the cache key holding the levels result of symbol over window.
func LevelsKey(symbol string, window models.WindowSize) string {
	return cache.GenerateKeyWithParams("levels", strings.ToUpper(symbol), string(window))
}

// Levels returns the pivot levels for symbol, from cache when fresh.
func (uc *LevelsUseCase) Levels(ctx context.Context, symbol string, window models.WindowSize) (*models.LevelsResult, error) {
	if symbol == "" {
		return nil, errors.New("symbol required")
	}
	if uc.cache != nil {
		if r, err := cache.GetTyped[models.LevelsResult](ctx, uc.cache, LevelsKey(symbol, window)); err == nil {
			return &r, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			uc.log.Warn("levels.cache read_failed", applogger.String("symbol", symbol), applogger.Error(err))
		}
	}
	return uc.Refresh(ctx, symbol, window)
}

// Refresh recomputes the levels for symbol and overwrites the cached entry.
func (uc *LevelsUseCase) Refresh(ctx context.Context, symbol string, window models.WindowSize) (*models.LevelsResult, error) {
	symbol = strings.ToUpper(symbol)
	daily, err := uc.bars.DailyBars(ctx, symbol, uc.barsNeeded(window))
	if err != nil {
		return nil, fmt.Errorf("daily bars %s: %w", symbol, err)
	}

	bars := daily
	if p := window.Period(); p != models.PeriodDay {
		bars = levels.AggregateBars(daily, p)
	}
	lv, ok := levels.ComputeLevels(bars, window)
	res := &models.LevelsResult{
		Symbol:  symbol,
		Window:  window,
		Present: ok,
		Levels:  lv,
		Bars:    len(bars),
		AsOf:    uc.now().UTC(),
	}
	if !ok {
		uc.log.Debug("levels.compute no_data",
			applogger.String("symbol", symbol),
			applogger.String("window", string(window)),
			applogger.Int("bars", len(bars)))
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, LevelsKey(symbol, window), res, uc.ttl); err != nil {
			uc.log.Warn("levels.cache write_failed", applogger.String("symbol", symbol), applogger.Error(err))
		}
	}
	return res, nil
}

// barsNeeded is how many daily bars feed window. Weekly and monthly windows take the whole lookback.
func (uc *LevelsUseCase) barsNeeded(window models.WindowSize) int {
	if window.Period() == models.PeriodDay {
		return window.Days()
	}
	return uc.lookback
}

// Signal classifies the live quote of symbol against the levels of window.
// Missing analyst coverage or a failed recommendations call resolves to NEUTRAL.
func (uc *LevelsUseCase) Signal(ctx context.Context, symbol string, window models.WindowSize) (*models.SignalResult, error) {
	lr, err := uc.Levels(ctx, symbol, window)
	if err != nil {
		return nil, err
	}
	q, err := uc.quotes.Quote(ctx, lr.Symbol)
	if err != nil {
		return nil, fmt.Errorf("quote %s: %w", lr.Symbol, err)
	}
	rec, err := uc.quotes.Recommendations(ctx, lr.Symbol)
	if err != nil {
		uc.log.Warn("levels.signal recommendations_failed", applogger.String("symbol", lr.Symbol), applogger.Error(err))
		rec = nil
	}
	return classify(lr, q, rec, uc.now()), nil
}

func classify(lr *models.LevelsResult, q models.Quote, rec *models.RecommendationCounts, now time.Time) *models.SignalResult {
	res := &models.SignalResult{
		Symbol:      lr.Symbol,
		Window:      lr.Window,
		Present:     lr.Present,
		Pivots:      lr.Levels,
		AnalystView: consensus.Resolve(rec),
		AsOf:        now.UTC(),
	}
	if lr.Present {
		tl := levels.DeriveTradingLevels(lr.Levels, q, rec)
		res.Levels = &tl
	}
	var price *float64
	if q.Price > 0 {
		price = &q.Price
	}
	res.Signal = levels.Classify(price, res.Levels)
	res.Rank = res.Signal.Rank()
	return res
}
