package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"FinLevels/internal/domain/models"
	"FinLevels/internal/services/levels"
	applogger "FinLevels/pkg/logger"
)

// WatchlistUseCase classifies many symbols at once.
type WatchlistUseCase struct {
	levels      *LevelsUseCase
	concurrency int
	timeout     time.Duration
	log         *applogger.Logger
}

func NewWatchlistUseCase(lv *LevelsUseCase, concurrency int, l *applogger.Logger) *WatchlistUseCase {
	if l == nil {
		l = applogger.Nop()
	}
	return &WatchlistUseCase{levels: lv, concurrency: concurrency, timeout: 20 * time.Second, log: l}
}

// Scan returns the signal of every symbol, most actionable first and by symbol within a signal.
// A symbol that fails is reported in Errors and left out of Entries.
func (uc *WatchlistUseCase) Scan(ctx context.Context, symbols []string, window models.WindowSize) (*models.WatchlistReport, error) {
	if len(symbols) == 0 {
		return nil, errors.New("symbols required")
	}
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	results, errs := fetchEach(ctx, symbols, uc.concurrency, func(ctx context.Context, s string) (*models.SignalResult, error) {
		return uc.levels.Signal(ctx, s, window)
	})

	entries := make([]models.SignalResult, 0, len(results))
	for _, r := range results {
		entries = append(entries, *r)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Symbol < entries[j].Symbol })
	levels.SortBySignal(entries, func(r models.SignalResult) models.Signal { return r.Signal })

	if len(errs) > 0 {
		uc.log.Warn("watchlist.scan partial",
			applogger.Int("ok", len(entries)),
			applogger.Int("failed", len(errs)))
	}
	return &models.WatchlistReport{
		Window:    window,
		Timestamp: time.Now().UTC(),
		Entries:   entries,
		Errors:    errs,
	}, nil
}
