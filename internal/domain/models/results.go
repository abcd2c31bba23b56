package models

import "time"

// LevelsResult is the pivot computation for one symbol and window.
// Present is false when the window had no usable data; Levels is then all zero.
type LevelsResult struct {
	Symbol  string      `json:"symbol"`
	Window  WindowSize  `json:"window"`
	Present bool        `json:"present"`
	Levels  PivotLevels `json:"levels"`
	Bars    int         `json:"bars"`
	AsOf    time.Time   `json:"as_of"`
}

// SignalResult is the classified view of one symbol.
type SignalResult struct {
	Symbol      string         `json:"symbol"`
	Window      WindowSize     `json:"window"`
	Present     bool           `json:"present"`
	Pivots      PivotLevels    `json:"pivots"`
	Levels      *TradingLevels `json:"levels,omitempty"`
	Signal      Signal         `json:"signal"`
	Rank        int            `json:"rank"`
	AnalystView AnalystView    `json:"analyst_view"`
	AsOf        time.Time      `json:"as_of"`
}

// WatchlistReport collects signals across symbols, most actionable first.
// Errors maps symbols that could not be classified to the failure text.
type WatchlistReport struct {
	Window    WindowSize        `json:"window"`
	Timestamp time.Time         `json:"timestamp"`
	Entries   []SignalResult    `json:"entries"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// DividendReport is a dividend summary over fetched holdings.
type DividendReport struct {
	DividendSummary
	Display map[string]string `json:"display,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// BenchmarkReport is a comparison over fetched holdings.
type BenchmarkReport struct {
	BenchmarkComparison
	BenchmarkSymbol string            `json:"benchmark_symbol"`
	Errors          map[string]string `json:"errors,omitempty"`
}

// PerformanceReport is a mark-to-market view over fetched holdings.
type PerformanceReport struct {
	Holdings []HoldingPerformance `json:"holdings"`
	Errors   map[string]string    `json:"errors,omitempty"`
}

// SignalEvent is emitted when a live tick moves a symbol into a different signal.
type SignalEvent struct {
	Symbol     string    `json:"symbol"`
	Price      float64   `json:"price"`
	Signal     Signal    `json:"signal"`
	Previous   Signal    `json:"previous"`
	Entry1     float64   `json:"entry1"`
	Entry2     float64   `json:"entry2"`
	Resistance float64   `json:"resistance"`
	Timestamp  time.Time `json:"timestamp"`
}
