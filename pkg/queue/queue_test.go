package queue

import (
	"encoding/json"
	"testing"
	"time"
)

type refreshPayload struct {
	Symbol string `json:"symbol"`
	Window string `json:"window"`
}

func TestNewMessageEncodesPayload(t *testing.T) {
	a, err := NewMessage("refresh_levels", refreshPayload{Symbol: "AAPL", Window: "1"})
	if err != nil {
		t.Fatalf("new message: %v", err)
	}
	b, _ := NewMessage("refresh_levels", refreshPayload{Symbol: "MSFT"})
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("ids not unique: %q %q", a.ID, b.ID)
	}
	if string(a.Payload) != `{"symbol":"AAPL","window":"1"}` {
		t.Fatalf("payload = %s", a.Payload)
	}
}

func TestMessageSurvivesWireRoundTrip(t *testing.T) {
	msg, _ := NewMessage("refresh_levels", refreshPayload{Symbol: "AAPL", Window: "week"})
	data, _ := json.Marshal(msg)

	var back Message
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	p, err := ParsePayload[refreshPayload](back.Payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Symbol != "AAPL" || p.Window != "week" {
		t.Fatalf("payload = %+v", p)
	}
}

func TestParsePayloadShapes(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		ok   bool
	}{
		{"struct", refreshPayload{Symbol: "A"}, true},
		{"pointer", &refreshPayload{Symbol: "A"}, true},
		{"raw", json.RawMessage(`{"symbol":"A"}`), true},
		{"bytes", []byte(`{"symbol":"A"}`), true},
		{"map", map[string]interface{}{"symbol": "A"}, true},
		{"bad json", json.RawMessage(`{`), false},
		{"int", 42, false},
	}
	for _, c := range cases {
		p, err := ParsePayload[refreshPayload](c.in)
		if c.ok {
			if err != nil || p.Symbol != "A" {
				t.Errorf("%s: got %+v, %v", c.name, p, err)
			}
		} else if err == nil {
			t.Errorf("%s: expected error", c.name)
		}
	}
}

func TestRetryBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 10 * time.Second},
		{2, 20 * time.Second},
		{4, 80 * time.Second},
		{30, maxRetryDelay},
	}
	for _, tt := range tests {
		if got := retryBackoff(10*time.Second, tt.attempt); got != tt.want {
			t.Errorf("attempt %d: got %v, want %v", tt.attempt, got, tt.want)
		}
	}
}
