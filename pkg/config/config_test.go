package config

import (
	"strings"
	"testing"
	"time"
)

const sample = `
environment: test
backend:
  type: clickhouse
quotes:
  base_url: http://quotes.local
watchlist:
  symbols: [AAPL, MSFT]
`

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Server.Port != 8080 {
		t.Errorf("port = %d", c.Server.Port)
	}
	if c.Bars.Source != "clickhouse" {
		t.Errorf("bars.source = %q", c.Bars.Source)
	}
	if c.Cache.LevelsTTL != 15*time.Minute {
		t.Errorf("levels_ttl = %v", c.Cache.LevelsTTL)
	}
	if c.Watchlist.Window != "1" || c.Watchlist.Concurrency != 8 {
		t.Errorf("watchlist = %+v", c.Watchlist)
	}
	if c.Kafka.SignalsTopic != "finlevels.signals" {
		t.Errorf("signals_topic = %q", c.Kafka.SignalsTopic)
	}
}

func TestParseRejects(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"missing environment", "backend: {type: kafka}", "environment"},
		{"bad backend", "environment: x\nbackend: {type: s3}", "backend.type"},
		{"bad bars source", "environment: x\nbackend: {type: clickhouse}\nbars: {source: csv}", "bars.source"},
		{"missing quotes url", "environment: x\nbackend: {type: clickhouse}", "quotes.base_url"},
		{"kafka without brokers", "environment: x\nbackend: {type: kafka}\nquotes: {base_url: http://q}", "kafka.brokers"},
		{"finnhub without key", "environment: x\nbackend: {type: clickhouse}\nquotes: {base_url: http://q}\nfinnhub: {enabled: true}", "finnhub.api_key"},
		{"queue without redis", "environment: x\nbackend: {type: clickhouse}\nquotes: {base_url: http://q}\nqueue: {enabled: true}\nredis: {addr: localhost:6379}", "queue requires"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	c, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	env := map[string]string{
		"WATCHLIST":           " nvda, amd ,,",
		"KAFKA_BROKERS":       "k1:9092,k2:9092",
		"KAFKA_SIGNALS_TOPIC": "sig",
		"QUOTES_API_KEY":      "secret",
		"REDIS_ADDR":          "redis:6379",
	}
	c.ApplyEnv(func(k string) string { return env[k] })

	if len(c.Watchlist.Symbols) != 2 || c.Watchlist.Symbols[0] != "nvda" || c.Watchlist.Symbols[1] != "amd" {
		t.Errorf("watchlist = %v", c.Watchlist.Symbols)
	}
	if len(c.Kafka.Brokers) != 2 || c.Kafka.SignalsTopic != "sig" {
		t.Errorf("kafka = %v %s", c.Kafka.Brokers, c.Kafka.SignalsTopic)
	}
	if c.Quotes.APIKey != "secret" || c.Redis.Addr != "redis:6379" {
		t.Errorf("quotes key %q redis %q", c.Quotes.APIKey, c.Redis.Addr)
	}
}
