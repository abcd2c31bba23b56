package repository

import (
	"context"

	"FinLevels/internal/domain/models"
)

// BarSource provides daily OHLC bars for pivot computation, oldest first.
type BarSource interface {
	DailyBars(ctx context.Context, symbol string, n int) ([]models.OhlcBar, error)
}

// BarStore is a BarSource that can also be written to.
type BarStore interface {
	BarSource
	UpsertCandles(ctx context.Context, candles []models.Candle) error
}
