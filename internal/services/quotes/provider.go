// Package quotes fetches quotes, price history, analyst counts and dividend figures from the upstream
// market-data API. Each method issues one request for one symbol.
package quotes

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"FinLevels/internal/domain/models"
	"FinLevels/internal/domain/repository"
	"FinLevels/internal/domain/service"
	"FinLevels/pkg/config"
	xhttp "FinLevels/pkg/http"
	"FinLevels/pkg/util"
)

// Provider implements service.QuoteProvider and repository.BarSource over HTTP.
type Provider struct {
	base *httpBase
}

var (
	_ service.QuoteProvider = (*Provider)(nil)
	_ repository.BarSource  = (*Provider)(nil)
)

// NewProvider builds a provider from the quotes config section.
func NewProvider(cfg *config.Config, opts ...xhttp.ClientOption) *Provider {
	return &Provider{base: newHTTPBase(cfg, opts...)}
}

type quoteDTO struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	PreviousClose float64 `json:"previous_close"`
	Timestamp     int64   `json:"timestamp"`
}

type historyDTO struct {
	Points []struct {
		T int64    `json:"t"`
		O *float64 `json:"o"`
		H *float64 `json:"h"`
		L *float64 `json:"l"`
		C *float64 `json:"c"`
	} `json:"points"`
}

type dividendDTO struct {
	Currency           string   `json:"currency"`
	DividendPerShare   float64  `json:"dividend_per_share"`
	AnnualDividendBase *float64 `json:"annual_dividend_base"`
	YieldPercent       *float64 `json:"yield_percent"`
}

func symbolQuery(symbol string) url.Values {
	return url.Values{"symbol": {strings.ToUpper(symbol)}}
}

// Quote returns the latest price and previous close.
func (p *Provider) Quote(ctx context.Context, symbol string) (models.Quote, error) {
	var dto quoteDTO
	if err := p.base.getJSONWithRetry(ctx, "/v1/quote", symbolQuery(symbol), &dto); err != nil {
		return models.Quote{}, fmt.Errorf("quote %s: %w", symbol, err)
	}
	if dto.Symbol == "" {
		dto.Symbol = strings.ToUpper(symbol)
	}
	return models.Quote{
		Symbol:        dto.Symbol,
		Price:         dto.Price,
		PreviousClose: dto.PreviousClose,
		Timestamp:     util.UnixAuto(dto.Timestamp),
	}, nil
}

// History returns closing prices at interval over rangeSpec (e.g. "1y"). Gaps stay nil.
func (p *Provider) History(ctx context.Context, symbol string, interval repository.Interval, rangeSpec string) ([]models.TimeSeriesPoint, error) {
	dto, err := p.history(ctx, symbol, interval, rangeSpec)
	if err != nil {
		return nil, err
	}
	out := make([]models.TimeSeriesPoint, len(dto.Points))
	for i, pt := range dto.Points {
		out[i] = models.TimeSeriesPoint{Timestamp: pt.T, Value: pt.C}
	}
	return out, nil
}

// DailyBars returns the last n daily bars, oldest first.
func (p *Provider) DailyBars(ctx context.Context, symbol string, n int) ([]models.OhlcBar, error) {
	dto, err := p.history(ctx, symbol, repository.Interval1d, rangeForDays(n))
	if err != nil {
		return nil, err
	}
	bars := make([]models.OhlcBar, len(dto.Points))
	for i, pt := range dto.Points {
		bars[i] = models.OhlcBar{Time: util.UnixAuto(pt.T), Open: pt.O, High: pt.H, Low: pt.L, Close: pt.C}
	}
	if n > 0 && len(bars) > n {
		bars = bars[len(bars)-n:]
	}
	return bars, nil
}

func (p *Provider) history(ctx context.Context, symbol string, interval repository.Interval, rangeSpec string) (historyDTO, error) {
	q := symbolQuery(symbol)
	q.Set("interval", string(repository.NormalizeInterval(string(interval))))
	q.Set("range", rangeSpec)
	var dto historyDTO
	if err := p.base.getJSONWithRetry(ctx, "/v1/history", q, &dto); err != nil {
		return historyDTO{}, fmt.Errorf("history %s: %w", symbol, err)
	}
	return dto, nil
}

// Recommendations returns analyst counts, or nil when the symbol has no coverage.
func (p *Provider) Recommendations(ctx context.Context, symbol string) (*models.RecommendationCounts, error) {
	var dto models.RecommendationCounts
	err := p.base.getJSONWithRetry(ctx, "/v1/recommendations", symbolQuery(symbol), &dto)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("recommendations %s: %w", symbol, err)
	}
	return &dto, nil
}

// Dividend returns per-share and annualized dividend figures. Unknown figures stay nil.
func (p *Provider) Dividend(ctx context.Context, symbol string) (models.DividendRecord, error) {
	var dto dividendDTO
	if err := p.base.getJSONWithRetry(ctx, "/v1/dividends", symbolQuery(symbol), &dto); err != nil {
		return models.DividendRecord{}, fmt.Errorf("dividends %s: %w", symbol, err)
	}
	return models.DividendRecord{
		Symbol:               strings.ToUpper(symbol),
		OriginalCurrency:     dto.Currency,
		DividendPerShare:     dto.DividendPerShare,
		AnnualDividendBase:   dto.AnnualDividendBase,
		DividendYieldPercent: dto.YieldPercent,
	}, nil
}

// rangeForDays picks the smallest provider range covering n trading days.
func rangeForDays(n int) string {
	switch {
	case n <= 20:
		return "1mo"
	case n <= 62:
		return "3mo"
	case n <= 125:
		return "6mo"
	case n <= 250:
		return "1y"
	}
	return strconv.Itoa((n+249)/250) + "y"
}
