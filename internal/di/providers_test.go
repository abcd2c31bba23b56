package di

import (
	"testing"

	"FinLevels/internal/services/quotes"
	"FinLevels/pkg/cache"
	"FinLevels/pkg/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{Environment: "test"}
	cfg.Backend.Type = "kafka"
	cfg.Bars.Source = "http"
	cfg.Cache.MemorySize = 16
	return cfg
}

func TestNeedsClickHouse(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		bars    string
		group   string
		want    bool
	}{
		{"http bars kafka without sink", "kafka", "http", "", false},
		{"kafka with sink group", "kafka", "http", "finlevels-sink", true},
		{"clickhouse backend", "clickhouse", "http", "", true},
		{"clickhouse bars", "kafka", "clickhouse", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Backend.Type = tt.backend
			cfg.Bars.Source = tt.bars
			cfg.Kafka.Consumer.GroupID = tt.group
			if got := needsClickHouse(cfg); got != tt.want {
				t.Errorf("needsClickHouse = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProvideCacheWithoutRedisIsMemory(t *testing.T) {
	c := ProvideCache(testConfig(), nil)
	defer c.Close()
	if _, ok := c.(*cache.MemoryCache); !ok {
		t.Fatalf("cache = %T, want *cache.MemoryCache", c)
	}
}

func TestProvideBarSourceFallsBackToProvider(t *testing.T) {
	cfg := testConfig()
	p := quotes.NewProvider(cfg)
	if got := ProvideBarSource(cfg, nil, p, nil); got != p {
		t.Fatalf("bar source = %T, want quote provider", got)
	}
	cfg.Bars.Source = "clickhouse"
	if got := ProvideBarSource(cfg, nil, p, nil); got != p {
		t.Fatalf("bar source without client = %T, want quote provider", got)
	}
}

func TestOptionalComponentsAreNil(t *testing.T) {
	cfg := testConfig()
	if ProvideSignalStorage(nil) != nil {
		t.Errorf("storage without clickhouse should be nil")
	}
	if ProvideSignalPublisher(nil, cfg) != nil {
		t.Errorf("publisher without producer should be nil")
	}
	if ProvideRateLimiter(cfg) != nil {
		t.Errorf("limiter should be nil when disabled")
	}
	if ProvideBarSync(cfg, quotes.NewProvider(cfg), quotes.NewProvider(cfg), nil) != nil {
		t.Errorf("bar sync needs a writable bar store")
	}
	if ProvideRefreshQueue(cfg, nil, nil, nil) != nil {
		t.Errorf("queue should be nil when disabled")
	}
	if ProvidePriceCollector(cfg, nil, nil, nil) != nil {
		t.Errorf("collector should be nil when finnhub disabled")
	}
	if sch, err := ProvideScheduler(cfg, nil, nil, nil); err != nil || sch != nil {
		t.Errorf("scheduler should be nil when disabled")
	}
	if _, err := ProvideKafkaProducer(&config.Config{}); err != nil {
		t.Errorf("producer for non-kafka backend: %v", err)
	}
}

func TestProvideWatchlistWindow(t *testing.T) {
	cfg := testConfig()
	cfg.Watchlist.Window = "week"
	if w, err := ProvideWatchlistWindow(cfg); err != nil || w != "week" {
		t.Fatalf("window = %q, %v", w, err)
	}
	cfg.Watchlist.Window = "9"
	if _, err := ProvideWatchlistWindow(cfg); err == nil {
		t.Fatalf("expected error for window 9")
	}
}
