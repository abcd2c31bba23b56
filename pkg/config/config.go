package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level      string `yaml:"level"`
		Format     string `yaml:"format"`
		Output     string `yaml:"output"`
		TimeFormat string `yaml:"time_format"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	// Backend selects where live signal changes go: kafka or clickhouse.
	Backend struct {
		Type         string        `yaml:"type"`
		BatchSize    int           `yaml:"batch_size"`
		BatchTimeout time.Duration `yaml:"batch_timeout"`
	} `yaml:"backend"`
	Bars struct {
		Source   string `yaml:"source"` // clickhouse | http
		Lookback int    `yaml:"lookback"`
	} `yaml:"bars"`
	Quotes struct {
		BaseURL  string        `yaml:"base_url"`
		APIKey   string        `yaml:"api_key"`
		Timeout  time.Duration `yaml:"timeout"`
		Attempts int           `yaml:"attempts"`
	} `yaml:"quotes"`
	Watchlist struct {
		Symbols     []string `yaml:"symbols"`
		Window      string   `yaml:"window"`
		Concurrency int      `yaml:"concurrency"`
	} `yaml:"watchlist"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		SignalsTopic string   `yaml:"signals_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Cache struct {
		LevelsTTL   time.Duration `yaml:"levels_ttl"`
		ResponseTTL time.Duration `yaml:"response_ttl"`
		MemorySize  int           `yaml:"memory_size"`
	} `yaml:"cache"`
	Queue struct {
		Enabled    bool          `yaml:"enabled"`
		Workers    int           `yaml:"workers"`
		MaxRetries int           `yaml:"max_retries"`
		RetryDelay time.Duration `yaml:"retry_delay"`
		JobTimeout time.Duration `yaml:"job_timeout"`
	} `yaml:"queue"`
	Scheduler struct {
		Enabled     bool   `yaml:"enabled"`
		RefreshCron string `yaml:"refresh_cron"`
		BarsCron    string `yaml:"bars_cron"` // clickhouse bar backfill from the quote provider
		RunOnStart  bool   `yaml:"run_on_start"`
	} `yaml:"scheduler"`
	Finnhub struct {
		Enabled        bool          `yaml:"enabled"`
		APIKey         string        `yaml:"api_key"`
		WebSocketURL   string        `yaml:"websocket_url"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
		MaxRPS         int           `yaml:"max_rps"`
		BufferSize     int           `yaml:"buffer_size"`
	} `yaml:"finnhub"`
	RateLimit struct {
		Enabled   bool    `yaml:"enabled"`
		Capacity  int     `yaml:"capacity"`
		RefillRPS float64 `yaml:"refill_rps"`
	} `yaml:"ratelimit"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes, fills defaults and validates.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.ApplyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides fields from the environment looked up through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("QUOTES_API_KEY"); v != "" {
		c.Quotes.APIKey = v
	}
	if v := getenv("FINNHUB_API_KEY"); v != "" {
		c.Finnhub.APIKey = v
	}
	if v := getenv("WATCHLIST"); v != "" {
		c.Watchlist.Symbols = splitList(v)
	}
	if v := getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v := getenv("KAFKA_SIGNALS_TOPIC"); v != "" {
		c.Kafka.SignalsTopic = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Bars.Source == "" {
		c.Bars.Source = "clickhouse"
	}
	if c.Bars.Lookback <= 0 {
		c.Bars.Lookback = 62
	}
	if c.Quotes.Timeout <= 0 {
		c.Quotes.Timeout = 5 * time.Second
	}
	if c.Quotes.Attempts <= 0 {
		c.Quotes.Attempts = 2
	}
	if c.Watchlist.Window == "" {
		c.Watchlist.Window = "1"
	}
	if c.Watchlist.Concurrency <= 0 {
		c.Watchlist.Concurrency = 8
	}
	if c.Kafka.SignalsTopic == "" {
		c.Kafka.SignalsTopic = "finlevels.signals"
	}
	if c.ClickHouse.Database == "" {
		c.ClickHouse.Database = "finlevels"
	}
	if c.Cache.LevelsTTL <= 0 {
		c.Cache.LevelsTTL = 15 * time.Minute
	}
	if c.Cache.ResponseTTL <= 0 {
		c.Cache.ResponseTTL = 30 * time.Second
	}
	if c.Cache.MemorySize <= 0 {
		c.Cache.MemorySize = 1024
	}
	if c.Scheduler.RefreshCron == "" {
		c.Scheduler.RefreshCron = "0 */15 * * * *"
	}
	if c.Scheduler.BarsCron == "" {
		c.Scheduler.BarsCron = "0 30 21 * * 1-5"
	}
	if c.Finnhub.MaxRPS <= 0 {
		c.Finnhub.MaxRPS = 50
	}
	if c.Finnhub.BufferSize <= 0 {
		c.Finnhub.BufferSize = 2000
	}
	if c.RateLimit.Capacity <= 0 {
		c.RateLimit.Capacity = 20
	}
	if c.RateLimit.RefillRPS <= 0 {
		c.RateLimit.RefillRPS = 5
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Backend.Type == "" {
		return fmt.Errorf("backend.type is required")
	}
	if c.Backend.Type != "kafka" && c.Backend.Type != "clickhouse" {
		return fmt.Errorf("backend.type must be 'kafka' or 'clickhouse', got '%s'", c.Backend.Type)
	}
	if c.Bars.Source != "clickhouse" && c.Bars.Source != "http" {
		return fmt.Errorf("bars.source must be 'clickhouse' or 'http', got '%s'", c.Bars.Source)
	}
	if c.Quotes.BaseURL == "" {
		return fmt.Errorf("quotes.base_url is required")
	}
	if c.Backend.Type == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty with kafka backend")
	}
	if c.Finnhub.Enabled && c.Finnhub.APIKey == "" {
		return fmt.Errorf("finnhub.api_key is required when finnhub is enabled")
	}
	if c.Finnhub.Enabled && len(c.Watchlist.Symbols) == 0 {
		return fmt.Errorf("watchlist.symbols cannot be empty when finnhub is enabled")
	}
	if (c.Queue.Enabled || c.Redis.Enabled) && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}
	if c.Queue.Enabled && !c.Redis.Enabled {
		return fmt.Errorf("queue requires redis.enabled")
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
