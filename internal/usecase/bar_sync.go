package usecase

import (
	"context"
	"strings"
	"time"

	"FinLevels/internal/domain/models"
	domrepo "FinLevels/internal/domain/repository"
	applogger "FinLevels/pkg/logger"
)

// BarSync copies recent daily bars from an upstream source into the bar store.
type BarSync struct {
	src      domrepo.BarSource
	dst      domrepo.BarStore
	symbols  []string
	lookback int
	log      *applogger.Logger
}

func NewBarSync(src domrepo.BarSource, dst domrepo.BarStore, symbols []string, lookback int, l *applogger.Logger) *BarSync {
	if l == nil {
		l = applogger.Nop()
	}
	return &BarSync{src: src, dst: dst, symbols: symbols, lookback: lookback, log: l}
}

// SyncAll syncs every configured symbol and returns how many failed.
func (s *BarSync) SyncAll(ctx context.Context) int {
	failed := 0
	for _, sym := range s.symbols {
		if ctx.Err() != nil {
			return failed + 1
		}
		n, err := s.Sync(ctx, sym)
		if err != nil {
			failed++
			s.log.Warn("bars.sync symbol_failed", applogger.String("symbol", sym), applogger.Error(err))
			continue
		}
		s.log.Debug("bars.sync symbol", applogger.String("symbol", sym), applogger.Int("rows", n))
	}
	return failed
}

// Sync writes the last lookback complete bars of symbol and returns the row count.
func (s *BarSync) Sync(ctx context.Context, symbol string) (int, error) {
	symbol = strings.ToUpper(symbol)
	bars, err := s.src.DailyBars(ctx, symbol, s.lookback)
	if err != nil {
		return 0, err
	}
	candles := make([]models.Candle, 0, len(bars))
	for _, b := range bars {
		if !b.Complete() {
			continue
		}
		c := models.Candle{Day: b.Time.UTC().Truncate(24 * time.Hour), Symbol: symbol, High: *b.High, Low: *b.Low, Close: *b.Close}
		if b.Open != nil {
			c.Open = *b.Open
		}
		candles = append(candles, c)
	}
	if len(candles) == 0 {
		return 0, nil
	}
	if err := s.dst.UpsertCandles(ctx, candles); err != nil {
		return 0, err
	}
	return len(candles), nil
}
