package models

// Requests for levels HTTP endpoints. Defined in domain for consistency and reuse.

type LevelsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,max=16"`
	Window string `query:"window" json:"window" default:"1" validate:"oneof=1 3 4 5 6 7 8 week month"`
}

type WatchlistRequest struct {
	Symbols string `query:"symbols" json:"symbols" validate:"required"`
	Window  string `query:"window" json:"window" default:"1" validate:"oneof=1 3 4 5 6 7 8 week month"`
}

type DividendRankRequest struct {
	Records []DividendRecord `json:"records" validate:"dive"`
}

type BenchmarkCompareRequest struct {
	Assets          []Asset                      `json:"assets" validate:"required,dive"`
	AssetSeries     map[string][]TimeSeriesPoint `json:"asset_series"`
	BenchmarkSeries []TimeSeriesPoint            `json:"benchmark_series" validate:"required"`
	Granularity     string                       `json:"granularity" default:"day" validate:"oneof=intraday day week month year"`
}

type PortfolioRequest struct {
	Assets []Asset `json:"assets" validate:"required,min=1,dive"`
}

type PortfolioBenchmarkRequest struct {
	Assets      []Asset `json:"assets" validate:"required,min=1,dive"`
	Benchmark   string  `json:"benchmark" default:"SPY" validate:"required"`
	Interval    string  `json:"interval" default:"1d" validate:"oneof=1h 1d 1wk 1mo"`
	Range       string  `json:"range" default:"1y" validate:"oneof=1mo 3mo 6mo 1y 2y 5y ytd"`
	Granularity string  `json:"granularity" default:"day" validate:"oneof=intraday day week month year"`
}
