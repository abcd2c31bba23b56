package models

import (
	"fmt"
	"strconv"
)

// WindowSize selects the lookback for pivot computation: "1", "3".."8", "week" or "month".
type WindowSize string

const (
	WindowDay   WindowSize = "1"
	WindowWeek  WindowSize = "week"
	WindowMonth WindowSize = "month"
)

// ParseWindowSize validates a raw window value.
func ParseWindowSize(s string) (WindowSize, error) {
	switch s {
	case "", "1":
		return WindowDay, nil
	case "week", "month":
		return WindowSize(s), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 3 || n > 8 {
		return "", fmt.Errorf("invalid window %q: want 1, 3..8, week or month", s)
	}
	return WindowSize(s), nil
}

// Days returns how many trailing bars feed the window. Single-period windows return 1.
func (w WindowSize) Days() int {
	n, err := strconv.Atoi(string(w))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Period returns the bar period the window is computed over.
func (w WindowSize) Period() Period {
	switch w {
	case WindowWeek:
		return PeriodWeek
	case WindowMonth:
		return PeriodMonth
	default:
		return PeriodDay
	}
}

// Period is the span of one bar.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// PivotLevels are the classic floor-trader levels, each rounded to 2 decimals.
type PivotLevels struct {
	Pivot       float64 `json:"pivot"`
	Support1    float64 `json:"support1"`
	Support2    float64 `json:"support2"`
	Resistance1 float64 `json:"resistance1"`
	Resistance2 float64 `json:"resistance2"`
}

// IsZero reports whether l is the all-zero sentinel.
func (l PivotLevels) IsZero() bool { return l == PivotLevels{} }

// TradingLevels are the entry, stop and take-profit levels a signal is classified against.
// Entry2 <= Entry1 always; Entry2 is the cheaper entry.
type TradingLevels struct {
	Entry1         float64               `json:"entry1"`
	Entry2         float64               `json:"entry2"`
	StopLoss       float64               `json:"stop_loss"`
	Resistance     float64               `json:"resistance"`
	CurrentPrice   float64               `json:"current_price"`
	PreviousClose  float64               `json:"previous_close"`
	Recommendation *RecommendationCounts `json:"recommendation,omitempty"`
}

// Signal is a classification of price against trading levels, not a command.
type Signal string

const (
	SignalStrongBuy Signal = "STRONG_BUY"
	SignalBuy       Signal = "BUY"
	SignalSell      Signal = "SELL"
	SignalNormal    Signal = "NORMAL"
)

// Rank orders signals so the most actionable sorts first.
func (s Signal) Rank() int {
	switch s {
	case SignalStrongBuy:
		return 0
	case SignalBuy:
		return 1
	case SignalSell:
		return 2
	default:
		return 3
	}
}
