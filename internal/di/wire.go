//go:build wireinject
// +build wireinject

package di

import (
	"FinLevels/pkg/config"
	"FinLevels/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideWatchlistWindow,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideRedisCache,
		ProvideCache,
		ProvideQuoteProvider,

		// Repositories
		ProvideBarSource,
		ProvideSignalStorage,
		ProvideSignalPublisher,

		// Use cases
		ProvideLevelsUseCase,
		ProvideWatchlistUseCase,
		ProvidePortfolioUseCase,
		ProvidePriceProcessor,
		ProvidePriceCollector,
		ProvideKafkaConsumer,
		ProvideKafkaSignalsHandler,
		ProvideRefreshJob,
		ProvideRefreshQueue,
		ProvideWatchlistRefresher,
		ProvideBarSync,
		ProvideScheduler,

		// HTTP
		ProvideRateLimiter,
		ProvideLevelsHandler,
		ProvideHealthHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
