package models

// DividendRecord holds per-asset dividend figures. Nil annual base or yield means unknown.
type DividendRecord struct {
	Symbol               string   `json:"symbol" validate:"required"`
	OriginalCurrency     string   `json:"original_currency"`
	DividendPerShare     float64  `json:"dividend_per_share"`
	AnnualDividendBase   *float64 `json:"annual_dividend_base"`
	DividendYieldPercent *float64 `json:"dividend_yield_percent"`
}

// DividendSummary is the aggregate over a set of dividend records.
type DividendSummary struct {
	TotalAnnualDividend float64          `json:"total_annual_dividend"`
	RankedByAnnual      []DividendRecord `json:"ranked_by_annual"`
	RankedByYield       []DividendRecord `json:"ranked_by_yield"`
}
