package models

// Asset is a holding. Symbol is the lookup key into quote and level maps.
type Asset struct {
	Symbol       string  `json:"symbol" validate:"required"`
	Quantity     float64 `json:"quantity" validate:"gte=0"`
	CostPerShare float64 `json:"cost_per_share" validate:"gte=0"`
}

// TimeSeriesPoint is one tick of a price series. A nil value is a provider gap.
type TimeSeriesPoint struct {
	Timestamp int64    `json:"timestamp"`
	Value     *float64 `json:"value"`
}

// BenchmarkComparison holds both curves rebased to 100 on a shared timeline.
type BenchmarkComparison struct {
	Dates     []string  `json:"dates"`
	Portfolio []float64 `json:"portfolio"`
	Benchmark []float64 `json:"benchmark"`
}

// HoldingPerformance is the mark-to-market view of one holding.
type HoldingPerformance struct {
	Symbol      string  `json:"symbol"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
	MarketValue float64 `json:"market_value"`
	CostBasis   float64 `json:"cost_basis"`
	Gain        float64 `json:"gain"`
	GainPercent float64 `json:"gain_percent"`
}
