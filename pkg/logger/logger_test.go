package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestFieldsAreWritten(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf).With(String("component", "levels"))
	l.Warn("levels.compute no_data",
		String("symbol", "AAPL"),
		Int("bars", 0),
		Float("price", 101.5),
		Duration("took", 1500*time.Millisecond),
		Error(errors.New("boom")),
	)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	checks := map[string]interface{}{
		"level":     "warn",
		"message":   "levels.compute no_data",
		"component": "levels",
		"symbol":    "AAPL",
		"bars":      float64(0),
		"price":     101.5,
		"took":      float64(1500),
		"error":     "boom",
	}
	for k, want := range checks {
		if entry[k] != want {
			t.Errorf("%s = %v, want %v", k, entry[k], want)
		}
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNopDiscards(t *testing.T) {
	Nop().Error("ignored", String("k", "v"))
}
