package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"FinLevels/internal/domain/models"
	domrepo "FinLevels/internal/domain/repository"
	"FinLevels/internal/service/ratelimit"
	"FinLevels/pkg/cache"
	xhttp "FinLevels/pkg/http"

	"github.com/labstack/echo/v4"
)

type fakeLevels struct {
	calls int
	err   error
}

func (f *fakeLevels) Levels(_ context.Context, symbol string, w models.WindowSize) (*models.LevelsResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &models.LevelsResult{Symbol: symbol, Window: w, Present: true, Levels: models.PivotLevels{Pivot: 105, Support1: 100}}, nil
}

func (f *fakeLevels) Signal(_ context.Context, symbol string, w models.WindowSize) (*models.SignalResult, error) {
	f.calls++
	return &models.SignalResult{Symbol: symbol, Window: w, Signal: models.SignalBuy, Rank: 1}, f.err
}

type fakeWatchlist struct{ got []string }

func (f *fakeWatchlist) Scan(_ context.Context, symbols []string, w models.WindowSize) (*models.WatchlistReport, error) {
	f.got = symbols
	return &models.WatchlistReport{Window: w}, nil
}

type fakePortfolio struct{ err error }

func (f *fakePortfolio) Dividends(context.Context, []models.Asset) (*models.DividendReport, error) {
	return &models.DividendReport{}, f.err
}

func (f *fakePortfolio) Benchmark(_ context.Context, _ []models.Asset, b string, _ domrepo.Interval, _, _ string) (*models.BenchmarkReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.BenchmarkReport{BenchmarkSymbol: b}, nil
}

func (f *fakePortfolio) Performance(context.Context, []models.Asset) (*models.PerformanceReport, error) {
	return &models.PerformanceReport{}, f.err
}

func newTestServer(lv *fakeLevels, wl *fakeWatchlist, pf *fakePortfolio, rl *ratelimit.Limiter, c cache.Service) *echo.Echo {
	e := echo.New()
	NewLevelsEchoHandler(nil, lv, wl, pf, rl, c, time.Minute).RegisterRoutes(e)
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) xhttp.RawAPIResponse {
	t.Helper()
	var env xhttp.RawAPIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	if data != nil {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data: %v (%s)", err, env.Data)
		}
	}
	return env
}

func TestLevelsEndpoint(t *testing.T) {
	lv := &fakeLevels{}
	e := newTestServer(lv, &fakeWatchlist{}, &fakePortfolio{}, nil, nil)

	rec := do(e, http.MethodGet, "/api/levels?symbol=AAPL", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	var res models.LevelsResult
	env := decode(t, rec, &res)
	if env.Status != 200 || res.Symbol != "AAPL" || res.Window != models.WindowDay || res.Levels.Pivot != 105 {
		t.Fatalf("res = %+v", res)
	}
}

func TestLevelsValidation(t *testing.T) {
	e := newTestServer(&fakeLevels{}, &fakeWatchlist{}, &fakePortfolio{}, nil, nil)
	cases := []struct {
		target string
		code   string
	}{
		{"/api/levels", "ERR_REQUIRED"},
		{"/api/levels?symbol=AAPL&window=2", "ERR_ONEOF"},
		{"/api/signal?symbol=AAPL&window=day", "ERR_ONEOF"},
	}
	for _, c := range cases {
		rec := do(e, http.MethodGet, c.target, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", c.target, rec.Code)
			continue
		}
		var verrs []xhttp.ValidationError
		decode(t, rec, &verrs)
		if len(verrs) == 0 || verrs[0].Code != c.code {
			t.Errorf("%s: errors = %+v", c.target, verrs)
		}
	}
}

func TestResponseCacheAndRateLimit(t *testing.T) {
	lv := &fakeLevels{}
	mc := cache.NewMemoryCache()
	defer mc.Close()
	e := newTestServer(lv, &fakeWatchlist{}, &fakePortfolio{}, ratelimit.New(2, 0), mc)

	first := do(e, http.MethodGet, "/api/signal?symbol=AAPL&window=week", "")
	second := do(e, http.MethodGet, "/api/signal?symbol=AAPL&window=week", "")
	if first.Header().Get("X-Cache") != "MISS" || second.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("cache headers = %q, %q", first.Header().Get("X-Cache"), second.Header().Get("X-Cache"))
	}
	if first.Body.String() != second.Body.String() || lv.calls != 1 {
		t.Fatalf("cached body differs or usecase called %d times", lv.calls)
	}

	third := do(e, http.MethodGet, "/api/signal?symbol=AAPL&window=week", "")
	if third.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", third.Code)
	}
}

func TestUpstreamFailureMapsTo502(t *testing.T) {
	lv := &fakeLevels{err: errors.New("clickhouse down")}
	e := newTestServer(lv, &fakeWatchlist{}, &fakePortfolio{}, nil, nil)
	rec := do(e, http.MethodGet, "/api/levels?symbol=AAPL", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	var errs []xhttp.AppError
	decode(t, rec, &errs)
	if len(errs) != 1 || errs[0].Code != "ERR_UPSTREAM" {
		t.Fatalf("errors = %+v", errs)
	}

	lv.err = &xhttp.StatusError{Code: http.StatusNotFound}
	if rec := do(e, http.MethodGet, "/api/levels?symbol=ZZZZ", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestWatchlistSplitsSymbols(t *testing.T) {
	wl := &fakeWatchlist{}
	e := newTestServer(&fakeLevels{}, wl, &fakePortfolio{}, nil, nil)
	rec := do(e, http.MethodGet, "/api/watchlist?symbols=aapl,%20msft,,AAPL&window=month", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Join(wl.got, ",") != "AAPL,MSFT" {
		t.Fatalf("symbols = %v", wl.got)
	}
	if rec := do(e, http.MethodGet, "/api/watchlist?symbols=,,", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestConsensusEndpoint(t *testing.T) {
	e := newTestServer(&fakeLevels{}, &fakeWatchlist{}, &fakePortfolio{}, nil, nil)
	cases := []struct {
		body string
		want models.AnalystView
	}{
		{`{"strong_buy":1,"buy":6,"hold":4,"sell":0,"strong_sell":0}`, models.ViewBuyOrHold},
		{`{"hold":2,"sell":10}`, models.ViewSell},
		{`null`, models.ViewNeutral},
		{`{}`, models.ViewNeutral},
	}
	for _, c := range cases {
		rec := do(e, http.MethodPost, "/api/consensus", c.body)
		var out map[string]models.AnalystView
		decode(t, rec, &out)
		if out["view"] != c.want {
			t.Errorf("%s: view = %s, want %s", c.body, out["view"], c.want)
		}
	}
	if rec := do(e, http.MethodPost, "/api/consensus", `{"buy":-1}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("negative count status = %d", rec.Code)
	}
}

func TestRankDividendsEndpoint(t *testing.T) {
	e := newTestServer(&fakeLevels{}, &fakeWatchlist{}, &fakePortfolio{}, nil, nil)
	rec := do(e, http.MethodPost, "/api/dividends/rank",
		`{"records":[{"symbol":"A","annual_dividend_base":1,"dividend_yield_percent":2},{"symbol":"B","annual_dividend_base":3,"dividend_yield_percent":null}]}`)
	var sum models.DividendSummary
	decode(t, rec, &sum)
	if sum.TotalAnnualDividend != 4 || sum.RankedByAnnual[0].Symbol != "B" || len(sum.RankedByYield) != 1 {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestCompareBenchmarkEndpoint(t *testing.T) {
	e := newTestServer(&fakeLevels{}, &fakeWatchlist{}, &fakePortfolio{}, nil, nil)
	rec := do(e, http.MethodPost, "/api/benchmark/compare", `{
		"assets":[{"symbol":"A","quantity":2,"cost_per_share":1}],
		"asset_series":{"A":[{"timestamp":1704067200,"value":10},{"timestamp":1704153600,"value":15}]},
		"benchmark_series":[{"timestamp":1704067200,"value":50},{"timestamp":1704153600,"value":null}]
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	var cmp models.BenchmarkComparison
	decode(t, rec, &cmp)
	if len(cmp.Dates) != 2 || cmp.Dates[1] != "2024-01-02" {
		t.Fatalf("dates = %v", cmp.Dates)
	}
	if cmp.Portfolio[1] != 150 || cmp.Benchmark[1] != 0 {
		t.Fatalf("portfolio %v benchmark %v", cmp.Portfolio, cmp.Benchmark)
	}
}

func TestPortfolioBenchmarkDefaults(t *testing.T) {
	pf := &fakePortfolio{}
	e := newTestServer(&fakeLevels{}, &fakeWatchlist{}, pf, nil, nil)
	rec := do(e, http.MethodPost, "/api/portfolio/benchmark", `{"assets":[{"symbol":"A","quantity":1}]}`)
	var rep models.BenchmarkReport
	decode(t, rec, &rep)
	if rec.Code != http.StatusOK || rep.BenchmarkSymbol != "SPY" {
		t.Fatalf("status %d report %+v", rec.Code, rep)
	}

	if rec := do(e, http.MethodPost, "/api/portfolio/performance", `{"assets":[]}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty assets status = %d", rec.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	e := echo.New()
	NewHealthHandler(map[string]HealthCheck{
		"clickhouse": func(context.Context) error { return nil },
		"stream":     func(context.Context) error { return errors.New("disconnected") },
	}).RegisterRoutes(e)
	rec := do(e, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	var out map[string]string
	decode(t, rec, &out)
	if out["clickhouse"] != "ok" || out["stream"] != "disconnected" {
		t.Fatalf("checks = %v", out)
	}
}
