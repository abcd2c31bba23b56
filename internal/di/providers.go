package di

import (
	"context"
	"fmt"
	"time"

	"FinLevels/internal/domain/models"
	"FinLevels/internal/domain/repository"
	"FinLevels/internal/handler/api"
	mid "FinLevels/internal/middleware"
	internalrepo "FinLevels/internal/repository"
	"FinLevels/internal/scheduler"
	"FinLevels/internal/service/finnhub"
	"FinLevels/internal/service/ratelimit"
	"FinLevels/internal/services/quotes"
	"FinLevels/internal/usecase"
	"FinLevels/pkg/cache"
	pkgch "FinLevels/pkg/clickhouse"
	"FinLevels/pkg/config"
	xhttp "FinLevels/pkg/http"
	pkgkafka "FinLevels/pkg/kafka"
	applogger "FinLevels/pkg/logger"
	"FinLevels/pkg/metrics"
	"FinLevels/pkg/queue"
	"FinLevels/pkg/server"
)

// ProvideLogger builds the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: cfg.Log.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideWatchlistWindow parses the default window used by the live path and the scheduler.
func ProvideWatchlistWindow(cfg *config.Config) (models.WindowSize, error) {
	w, err := models.ParseWindowSize(cfg.Watchlist.Window)
	if err != nil {
		return "", fmt.Errorf("watchlist.window: %w", err)
	}
	return w, nil
}

func needsClickHouse(cfg *config.Config) bool {
	return cfg.Bars.Source == "clickhouse" || cfg.Backend.Type == "clickhouse" || consumerEnabled(cfg)
}

func consumerEnabled(cfg *config.Config) bool {
	return cfg.Backend.Type == "kafka" && cfg.Kafka.Consumer.GroupID != ""
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when nothing reads or writes ClickHouse.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !needsClickHouse(cfg) {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, pkgch.Schema(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer for the kafka backend, nil otherwise.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if cfg.Backend.Type != "kafka" {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideRedisCache connects to redis when enabled.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideCache layers a memory cache over redis, or uses memory alone without redis.
func ProvideCache(cfg *config.Config, rc *cache.RedisCache) cache.Service {
	if rc == nil {
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cfg.Cache.MemorySize),
			cache.WithMemoryDefaultTTL(cfg.Cache.LevelsTTL),
		)
	}
	return cache.NewLayeredCache(rc,
		cache.WithLayeredMemorySize(cfg.Cache.MemorySize),
		cache.WithLayeredMemoryTTL(cfg.Cache.ResponseTTL),
	)
}

// ProvideQuoteProvider creates the upstream quote client.
func ProvideQuoteProvider(cfg *config.Config) *quotes.Provider {
	return quotes.NewProvider(cfg)
}

// ProvideBarSource picks the daily bar source named by bars.source.
func ProvideBarSource(cfg *config.Config, ch *pkgch.Client, p *quotes.Provider, l *applogger.Logger) repository.BarSource {
	if cfg.Bars.Source == "clickhouse" && ch != nil {
		return internalrepo.NewCHBarStore(ch, ch.Table("daily_bars"), l)
	}
	return p
}

// ProvideSignalStorage creates ClickHouse signal history storage, nil without ClickHouse.
func ProvideSignalStorage(ch *pkgch.Client) repository.SignalStorage {
	if ch == nil {
		return nil
	}
	return internalrepo.NewClickHouseSignalStorage(ch.DB(), ch.Table("signal_events"))
}

// ProvideSignalPublisher creates Kafka publisher repository, nil without a producer.
func ProvideSignalPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.SignalPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.SignalsTopic)
}

func ProvideLevelsUseCase(bars repository.BarSource, p *quotes.Provider, c cache.Service, cfg *config.Config, l *applogger.Logger) *usecase.LevelsUseCase {
	return usecase.NewLevelsUseCase(bars, p, c, cfg.Cache.LevelsTTL, cfg.Bars.Lookback, l)
}

func ProvideWatchlistUseCase(lv *usecase.LevelsUseCase, cfg *config.Config, l *applogger.Logger) *usecase.WatchlistUseCase {
	return usecase.NewWatchlistUseCase(lv, cfg.Watchlist.Concurrency, l)
}

func ProvidePortfolioUseCase(p *quotes.Provider, cfg *config.Config, l *applogger.Logger) *usecase.PortfolioUseCase {
	return usecase.NewPortfolioUseCase(p, cfg.Watchlist.Concurrency, l)
}

// ProvidePriceProcessor creates the live signal processor.
func ProvidePriceProcessor(
	lv *usecase.LevelsUseCase,
	c cache.Service,
	pub repository.SignalPublisher,
	store repository.SignalStorage,
	m repository.Metrics,
	window models.WindowSize,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.PriceProcessor {
	return usecase.NewPriceProcessor(lv, c, pub, store, m, cfg.Backend.Type, window, l)
}

// ProvidePriceCollector creates the Finnhub collector, nil when the live feed is disabled.
func ProvidePriceCollector(
	cfg *config.Config,
	processor *usecase.PriceProcessor,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.PriceCollector {
	if !cfg.Finnhub.Enabled {
		return nil
	}
	stream := finnhub.New(
		cfg.Finnhub.APIKey,
		cfg.Finnhub.WebSocketURL,
		cfg.Watchlist.Symbols,
		cfg.Finnhub.ReconnectDelay,
		cfg.Finnhub.PingInterval,
		l,
	)
	// Build middleware pipeline between WebSocket and the processor
	pipe := mid.NewRealtimePipeline(processor, m,
		mid.WithMaxRPS(cfg.Finnhub.MaxRPS),
		mid.WithBufferSize(cfg.Finnhub.BufferSize),
	)
	return usecase.NewPriceCollector(stream, processor, m, pipe, l)
}

// ProvideKafkaConsumer creates the signal sink consumer for the kafka backend, nil otherwise.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !consumerEnabled(cfg) {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NewHookChain(pkgkafka.TraceHook(), pkgkafka.LogHook(l)))
	return consumer, nil
}

// ProvideKafkaSignalsHandler stores consumed signal events.
func ProvideKafkaSignalsHandler(store repository.SignalStorage, m repository.Metrics, cfg *config.Config) *usecase.KafkaSignalsHandler {
	if store == nil || !consumerEnabled(cfg) {
		return nil
	}
	return usecase.NewKafkaSignalsHandler(cfg.Kafka.SignalsTopic, store, m)
}

func ProvideRefreshJob(lv *usecase.LevelsUseCase, c cache.Service, l *applogger.Logger) *usecase.RefreshLevelsJob {
	return usecase.NewRefreshLevelsJob(lv, c, l)
}

// ProvideRefreshQueue creates the redis job queue with the refresh job registered, nil when disabled.
func ProvideRefreshQueue(cfg *config.Config, rc *cache.RedisCache, job *usecase.RefreshLevelsJob, l *applogger.Logger) *queue.RedisQueue {
	if !cfg.Queue.Enabled || rc == nil {
		return nil
	}
	q := queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		RetryLimit: cfg.Queue.MaxRetries,
		RetryDelay: cfg.Queue.RetryDelay,
		JobTimeout: cfg.Queue.JobTimeout,
	}, rc.Client(), queue.ModeProducerConsumer)
	q.RegisterJob(job)
	return q
}

// ProvideWatchlistRefresher fans refreshes out through the queue, or inline without one.
func ProvideWatchlistRefresher(
	cfg *config.Config,
	job *usecase.RefreshLevelsJob,
	q *queue.RedisQueue,
	window models.WindowSize,
	l *applogger.Logger,
) *usecase.WatchlistRefresher {
	var qs queue.QueueService
	if q != nil {
		qs = q
	}
	return usecase.NewWatchlistRefresher(job, qs, cfg.Watchlist.Symbols, window, l)
}

// ProvideBarSync backfills ClickHouse daily bars from the quote provider, nil unless bars come from ClickHouse.
func ProvideBarSync(cfg *config.Config, bars repository.BarSource, p *quotes.Provider, l *applogger.Logger) *usecase.BarSync {
	store, ok := bars.(repository.BarStore)
	if !ok || cfg.Bars.Source != "clickhouse" {
		return nil
	}
	return usecase.NewBarSync(p, store, cfg.Watchlist.Symbols, cfg.Bars.Lookback, l)
}

// ProvideScheduler registers the bar sync and levels refresh tasks, nil when disabled or the watchlist is empty.
func ProvideScheduler(cfg *config.Config, r *usecase.WatchlistRefresher, bs *usecase.BarSync, l *applogger.Logger) (*scheduler.Scheduler, error) {
	if !cfg.Scheduler.Enabled || len(cfg.Watchlist.Symbols) == 0 {
		return nil, nil
	}
	s := scheduler.New(l)
	if bs != nil {
		if err := s.Add("bars_sync", cfg.Scheduler.BarsCron, bs.SyncAll); err != nil {
			return nil, err
		}
	}
	if err := s.Add("levels_refresh", cfg.Scheduler.RefreshCron, r.RefreshAll); err != nil {
		return nil, err
	}
	return s, nil
}

// ProvideRateLimiter creates the per-address limiter for GET endpoints, nil when disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(float64(cfg.RateLimit.Capacity), cfg.RateLimit.RefillRPS)
}

func ProvideLevelsHandler(
	l *applogger.Logger,
	lv *usecase.LevelsUseCase,
	wl *usecase.WatchlistUseCase,
	pf *usecase.PortfolioUseCase,
	rl *ratelimit.Limiter,
	c cache.Service,
	cfg *config.Config,
) *api.LevelsEchoHandler {
	return api.NewLevelsEchoHandler(l, lv, wl, pf, rl, c, cfg.Cache.ResponseTTL)
}

// ProvideHealthHandler checks every configured infrastructure dependency.
func ProvideHealthHandler(ch *pkgch.Client, rc *cache.RedisCache, q *queue.RedisQueue, collector *usecase.PriceCollector) *api.HealthHandler {
	checks := map[string]api.HealthCheck{}
	if ch != nil {
		checks["clickhouse"] = ch.Health
	}
	if rc != nil {
		checks["redis"] = func(ctx context.Context) error { return rc.Client().Ping(ctx).Err() }
	}
	if q != nil {
		checks["queue"] = func(ctx context.Context) error {
			_, _, _, err := q.Depth(ctx)
			return err
		}
	}
	if collector != nil {
		checks["finnhub"] = func(context.Context) error {
			if !collector.IsConnected() {
				return fmt.Errorf("stream disconnected")
			}
			return nil
		}
	}
	return api.NewHealthHandler(checks)
}

// ProvideHTTPServer registers the API and health routes on the echo server.
func ProvideHTTPServer(cfg *config.Config, lh *api.LevelsEchoHandler, hh *api.HealthHandler, l *applogger.Logger) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
	}
	return xhttp.NewServer([]xhttp.Handler{lh, hh},
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(l),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	collector *usecase.PriceCollector,
	processor *usecase.PriceProcessor,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaSignalsHandler,
	q *queue.RedisQueue,
	sched *scheduler.Scheduler,
	c cache.Service,
	ch *pkgch.Client,
) *server.App {
	opts := []server.Option{
		// closers run in reverse: cache (and redis) go last
		server.WithCloser("cache", c),
	}
	if ch != nil {
		opts = append(opts, server.WithCloser("clickhouse", ch))
	}
	if collector != nil {
		opts = append(opts, server.WithCollector(collector))
	} else {
		opts = append(opts, server.WithCloser("signal sinks", closerFunc(func() error { processor.Close(); return nil })))
	}
	if consumer != nil && kh != nil {
		opts = append(opts, server.WithConsumer(consumer, kh))
	}
	if q != nil {
		opts = append(opts, server.WithQueue(q))
	}
	if sched != nil {
		opts = append(opts, server.WithScheduler(sched))
	}
	return server.New(cfg, l, srv, opts...)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
