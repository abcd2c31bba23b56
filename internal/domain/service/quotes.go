package service

import (
	"context"

	"FinLevels/internal/domain/models"
	"FinLevels/internal/domain/repository"
)

// QuoteProvider fetches market data for a single symbol from an upstream provider.
// Implementations issue one request per call; batching and failure isolation belong to callers.
type QuoteProvider interface {
	Quote(ctx context.Context, symbol string) (models.Quote, error)
	History(ctx context.Context, symbol string, interval repository.Interval, rangeSpec string) ([]models.TimeSeriesPoint, error)
	// Recommendations returns nil counts when the provider has no coverage for symbol.
	Recommendations(ctx context.Context, symbol string) (*models.RecommendationCounts, error)
	Dividend(ctx context.Context, symbol string) (models.DividendRecord, error)
}
