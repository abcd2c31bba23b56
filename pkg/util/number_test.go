package util

import (
	"math"
	"testing"
)

func TestRound2HalfAwayFromZero(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{1.005, 1.01},
		{-1.005, -1.01},
		{2.675, 2.68},
		{1.004, 1},
		{-1.004, -1},
		{0.125, 0.13},
		{-0.125, -0.13},
		{105, 105},
		{0, 0},
	}
	for _, c := range cases {
		if got := Round2(c.in); got != c.want {
			t.Errorf("Round2(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestRound2Idempotent(t *testing.T) {
	for _, x := range []float64{0.1 + 0.2, 33.333333, -7.455, 123456.785, 1e-9, 99.995} {
		once := Round2(x)
		if twice := Round2(once); twice != once {
			t.Fatalf("Round2 not idempotent for %v: %v then %v", x, once, twice)
		}
	}
}

func TestRound2NonFinite(t *testing.T) {
	if !math.IsNaN(Round2(math.NaN())) {
		t.Fatalf("expected NaN passthrough")
	}
	if !math.IsInf(Round2(math.Inf(1)), 1) {
		t.Fatalf("expected +Inf passthrough")
	}
}

func TestFormatMoney(t *testing.T) {
	if got := FormatMoney(1.25, "usd"); got != "$1.25" {
		t.Fatalf("usd: got %q", got)
	}
	if got := FormatMoney(3.5, "XYZ"); got != "3.50 XYZ" {
		t.Fatalf("unknown currency: got %q", got)
	}
}

func TestSplitSymbols(t *testing.T) {
	got := SplitSymbols(" aapl,MSFT,,aapl , nvda")
	want := []string{"AAPL", "MSFT", "NVDA"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}
