package usecase

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"FinLevels/internal/domain/models"
	domrepo "FinLevels/internal/domain/repository"
	"FinLevels/pkg/cache"
)

type fakeBars struct {
	mu    sync.Mutex
	bars  map[string][]models.OhlcBar
	calls int
}

func (f *fakeBars) DailyBars(_ context.Context, symbol string, n int) ([]models.OhlcBar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	b, ok := f.bars[symbol]
	if !ok {
		return nil, errors.New("unknown symbol")
	}
	if n > 0 && len(b) > n {
		b = b[len(b)-n:]
	}
	return b, nil
}

type fakeQuotes struct {
	prices    map[string]float64
	recs      map[string]*models.RecommendationCounts
	dividends map[string]models.DividendRecord
	history   map[string][]models.TimeSeriesPoint
}

func (f *fakeQuotes) Quote(_ context.Context, s string) (models.Quote, error) {
	p, ok := f.prices[s]
	if !ok {
		return models.Quote{}, errors.New("no quote")
	}
	return models.Quote{Symbol: s, Price: p}, nil
}

func (f *fakeQuotes) History(_ context.Context, s string, _ domrepo.Interval, _ string) ([]models.TimeSeriesPoint, error) {
	h, ok := f.history[s]
	if !ok {
		return nil, errors.New("no history")
	}
	return h, nil
}

func (f *fakeQuotes) Recommendations(_ context.Context, s string) (*models.RecommendationCounts, error) {
	return f.recs[s], nil
}

func (f *fakeQuotes) Dividend(_ context.Context, s string) (models.DividendRecord, error) {
	d, ok := f.dividends[s]
	if !ok {
		return models.DividendRecord{}, errors.New("no dividend")
	}
	return d, nil
}

type fakeMetrics struct {
	mu      sync.Mutex
	signals []models.Signal
}

func (m *fakeMetrics) RecordMessageSent(string, string) {}
func (m *fakeMetrics) RecordError(string)               {}
func (m *fakeMetrics) RecordLastPrice(string, float64)  {}
func (m *fakeMetrics) RecordLatency(string, float64)    {}

func (m *fakeMetrics) RecordSignal(_ string, s models.Signal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signals = append(m.signals, s)
}

type fakeStorage struct {
	mu  sync.Mutex
	evs []*models.SignalEvent
}

func (s *fakeStorage) Store(_ context.Context, ev *models.SignalEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evs = append(s.evs, ev)
	return nil
}

func (s *fakeStorage) StoreBatch(ctx context.Context, evs []*models.SignalEvent) error {
	for _, ev := range evs {
		_ = s.Store(ctx, ev)
	}
	return nil
}

func (s *fakeStorage) Query(context.Context, string, time.Time, time.Time, int) ([]*models.SignalEvent, error) {
	return s.evs, nil
}

func (s *fakeStorage) Health(context.Context) error { return nil }
func (s *fakeStorage) Close() error                 { return nil }

// bar builds a complete daily bar.
func bar(day int, h, l, c float64) models.OhlcBar {
	return models.OhlcBar{
		Time:  time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
		High:  models.Float(h),
		Low:   models.Float(l),
		Close: models.Float(c),
	}
}

// Pivot 105 / S1 100 / S2 95 / R1 110 for the last bar.
func newFixture() (*fakeBars, *fakeQuotes) {
	bars := &fakeBars{bars: map[string][]models.OhlcBar{
		"AAPL": {bar(4, 120, 90, 95), bar(5, 110, 100, 105)},
		"MSFT": {bar(5, 110, 100, 105)},
		"GAPS": {{Time: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)}},
	}}
	quotes := &fakeQuotes{
		prices: map[string]float64{"AAPL": 100.5, "MSFT": 90, "GAPS": 10},
		recs:   map[string]*models.RecommendationCounts{"AAPL": {StrongBuy: 10, Buy: 8, Hold: 1}},
	}
	return bars, quotes
}

func TestLevelsUsesCache(t *testing.T) {
	bars, quotes := newFixture()
	mc := cache.NewMemoryCache()
	defer mc.Close()
	uc := NewLevelsUseCase(bars, quotes, mc, time.Minute, 62, nil)
	ctx := context.Background()

	first, err := uc.Levels(ctx, "aapl", models.WindowDay)
	if err != nil {
		t.Fatalf("levels: %v", err)
	}
	if !first.Present || first.Levels.Pivot != 105 || first.Levels.Support1 != 100 {
		t.Fatalf("levels = %+v", first)
	}
	if _, err := uc.Levels(ctx, "AAPL", models.WindowDay); err != nil {
		t.Fatalf("levels: %v", err)
	}
	if bars.calls != 1 {
		t.Fatalf("bar source called %d times, want 1", bars.calls)
	}
	if _, err := uc.Refresh(ctx, "AAPL", models.WindowDay); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if bars.calls != 2 {
		t.Fatalf("refresh did not bypass cache")
	}
}

func TestLevelsMultiDayWindow(t *testing.T) {
	bars, quotes := newFixture()
	uc := NewLevelsUseCase(bars, quotes, nil, 0, 62, nil)
	res, err := uc.Levels(context.Background(), "AAPL", models.WindowSize("3"))
	if err != nil {
		t.Fatalf("levels: %v", err)
	}
	// max high 120, min low 90, last close 105
	if res.Levels.Pivot != 105 || res.Levels.Resistance1 != 120 || res.Levels.Support1 != 90 {
		t.Fatalf("levels = %+v", res.Levels)
	}
}

func TestSignal(t *testing.T) {
	bars, quotes := newFixture()
	uc := NewLevelsUseCase(bars, quotes, nil, 0, 62, nil)
	ctx := context.Background()

	res, err := uc.Signal(ctx, "AAPL", models.WindowDay)
	if err != nil {
		t.Fatalf("signal: %v", err)
	}
	if res.Signal != models.SignalBuy || res.Rank != 1 {
		t.Fatalf("signal = %s rank %d", res.Signal, res.Rank)
	}
	if res.AnalystView != models.ViewStrongBuy {
		t.Fatalf("view = %s", res.AnalystView)
	}
	if res.Levels == nil || res.Levels.Entry1 != 100 || res.Levels.Entry2 != 95 || res.Levels.StopLoss != 90 {
		t.Fatalf("levels = %+v", res.Levels)
	}

	gaps, err := uc.Signal(ctx, "GAPS", models.WindowDay)
	if err != nil {
		t.Fatalf("signal: %v", err)
	}
	if gaps.Present || gaps.Levels != nil || gaps.Signal != models.SignalNormal || gaps.AnalystView != models.ViewNeutral {
		t.Fatalf("gaps = %+v", gaps)
	}
}

func TestWatchlistScanOrdersAndIsolates(t *testing.T) {
	bars, quotes := newFixture()
	uc := NewWatchlistUseCase(NewLevelsUseCase(bars, quotes, nil, 0, 62, nil), 2, nil)

	rep, err := uc.Scan(context.Background(), []string{"GAPS", "AAPL", "NOPE", "MSFT"}, models.WindowDay)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	want := []struct {
		sym string
		sig models.Signal
	}{
		{"MSFT", models.SignalStrongBuy},
		{"AAPL", models.SignalBuy},
		{"GAPS", models.SignalNormal},
	}
	if len(rep.Entries) != len(want) {
		t.Fatalf("entries = %+v", rep.Entries)
	}
	for i, w := range want {
		if rep.Entries[i].Symbol != w.sym || rep.Entries[i].Signal != w.sig {
			t.Errorf("entry %d = %s/%s, want %s/%s", i, rep.Entries[i].Symbol, rep.Entries[i].Signal, w.sym, w.sig)
		}
	}
	if _, ok := rep.Errors["NOPE"]; !ok || len(rep.Errors) != 1 {
		t.Fatalf("errors = %v", rep.Errors)
	}

	if _, err := uc.Scan(context.Background(), nil, models.WindowDay); err == nil {
		t.Fatalf("expected error for empty symbols")
	}
}

func TestPortfolioDividends(t *testing.T) {
	quotes := &fakeQuotes{dividends: map[string]models.DividendRecord{
		"KO": {OriginalCurrency: "USD", AnnualDividendBase: models.Float(1.94), DividendYieldPercent: models.Float(3.1)},
		"T":  {OriginalCurrency: "USD", AnnualDividendBase: models.Float(1.11), DividendYieldPercent: models.Float(6.2)},
	}}
	uc := NewPortfolioUseCase(quotes, 4, nil)
	rep, err := uc.Dividends(context.Background(), []models.Asset{{Symbol: "KO"}, {Symbol: "T"}, {Symbol: "NOPE"}, {Symbol: "KO"}})
	if err != nil {
		t.Fatalf("dividends: %v", err)
	}
	if math.Abs(rep.TotalAnnualDividend-3.05) > 1e-9 {
		t.Fatalf("total = %v", rep.TotalAnnualDividend)
	}
	if len(rep.RankedByYield) != 2 || rep.RankedByYield[0].Symbol != "T" {
		t.Fatalf("by yield = %+v", rep.RankedByYield)
	}
	if rep.Display["KO"] != "$1.94" {
		t.Fatalf("display = %v", rep.Display)
	}
	if len(rep.Errors) != 1 {
		t.Fatalf("errors = %v", rep.Errors)
	}
}

func TestPortfolioBenchmark(t *testing.T) {
	pts := func(vs ...float64) []models.TimeSeriesPoint {
		out := make([]models.TimeSeriesPoint, len(vs))
		for i, v := range vs {
			out[i] = models.TimeSeriesPoint{Timestamp: int64(1_704_067_200 + i*86400), Value: models.Float(v)}
		}
		return out
	}
	quotes := &fakeQuotes{history: map[string][]models.TimeSeriesPoint{
		"SPY":  pts(400, 440),
		"AAPL": pts(10, 12),
	}}
	uc := NewPortfolioUseCase(quotes, 4, nil)
	ctx := context.Background()
	assets := []models.Asset{{Symbol: "AAPL", Quantity: 10}, {Symbol: "NOPE", Quantity: 1}}

	rep, err := uc.Benchmark(ctx, assets, "SPY", domrepo.Interval1d, "1y", "day")
	if err != nil {
		t.Fatalf("benchmark: %v", err)
	}
	if len(rep.Portfolio) != 2 || rep.Portfolio[0] != 100 || rep.Portfolio[1] != 120 {
		t.Fatalf("portfolio = %v", rep.Portfolio)
	}
	if rep.Benchmark[1] != 110 || rep.Dates[0] != "2024-01-01" {
		t.Fatalf("benchmark = %v dates %v", rep.Benchmark, rep.Dates)
	}
	if rep.BenchmarkSymbol != "SPY" {
		t.Fatalf("benchmark symbol = %q", rep.BenchmarkSymbol)
	}
	if _, ok := rep.Errors["NOPE"]; !ok {
		t.Fatalf("errors = %v", rep.Errors)
	}

	if _, err := uc.Benchmark(ctx, assets, "QQQ", domrepo.Interval1d, "1y", "day"); err == nil {
		t.Fatalf("expected benchmark failure to fail the call")
	}
}

func TestPortfolioPerformance(t *testing.T) {
	quotes := &fakeQuotes{prices: map[string]float64{"AAPL": 150}}
	uc := NewPortfolioUseCase(quotes, 4, nil)
	rep, err := uc.Performance(context.Background(), []models.Asset{
		{Symbol: "AAPL", Quantity: 2, CostPerShare: 100},
		{Symbol: "NOPE", Quantity: 1, CostPerShare: 1},
	})
	if err != nil {
		t.Fatalf("performance: %v", err)
	}
	if len(rep.Holdings) != 1 || rep.Holdings[0].GainPercent != 50 || rep.Holdings[0].MarketValue != 300 {
		t.Fatalf("holdings = %+v", rep.Holdings)
	}
}

func TestPriceProcessorEmitsOnChange(t *testing.T) {
	bars, quotes := newFixture()
	mc := cache.NewMemoryCache()
	defer mc.Close()
	lv := NewLevelsUseCase(bars, quotes, mc, time.Minute, 62, nil)
	store := &fakeStorage{}
	m := &fakeMetrics{}
	p := NewPriceProcessor(lv, mc, nil, store, m, "clickhouse", models.WindowDay, nil)
	ctx := context.Background()

	for _, price := range []float64{100.2, 100.4, 94, 111} {
		if err := p.Process(ctx, &models.PriceTick{Symbol: "AAPL", Price: price, Timestamp: 1_709_600_000}); err != nil {
			t.Fatalf("process %v: %v", price, err)
		}
	}
	want := []models.Signal{models.SignalBuy, models.SignalStrongBuy, models.SignalSell}
	if len(store.evs) != len(want) {
		t.Fatalf("events = %d, want %d", len(store.evs), len(want))
	}
	for i, w := range want {
		if store.evs[i].Signal != w {
			t.Errorf("event %d = %s, want %s", i, store.evs[i].Signal, w)
		}
	}
	if store.evs[1].Previous != models.SignalBuy || store.evs[0].Previous != "" {
		t.Fatalf("previous = %q, %q", store.evs[0].Previous, store.evs[1].Previous)
	}
	if len(m.signals) != 3 {
		t.Fatalf("recorded %d signals", len(m.signals))
	}

	// no levels: ignored
	if err := p.Process(ctx, &models.PriceTick{Symbol: "GAPS", Price: 1, Timestamp: 1}); err != nil || len(store.evs) != 3 {
		t.Fatalf("gaps emitted: %v", err)
	}
}

func TestPriceProcessorUnknownBackend(t *testing.T) {
	bars, quotes := newFixture()
	mc := cache.NewMemoryCache()
	defer mc.Close()
	p := NewPriceProcessor(NewLevelsUseCase(bars, quotes, nil, 0, 62, nil), mc, nil, nil, &fakeMetrics{}, "nats", models.WindowDay, nil)
	if err := p.Process(context.Background(), &models.PriceTick{Symbol: "AAPL", Price: 100, Timestamp: 1}); err == nil {
		t.Fatalf("expected error")
	}
	var s string
	if err := mc.Get(context.Background(), lastSignalKey("AAPL"), &s); !errors.Is(err, cache.ErrCacheMiss) {
		t.Fatalf("last signal stored despite failed emit: %q", s)
	}
}

func TestKafkaSignalsHandler(t *testing.T) {
	store := &fakeStorage{}
	h := NewKafkaSignalsHandler("finlevels.signals", store, &fakeMetrics{})
	if err := h.Handle(context.Background(), []byte(`{"symbol":"AAPL","price":94,"signal":"STRONG_BUY","previous":"BUY","timestamp":"2024-03-05T14:30:00Z"}`)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(store.evs) != 1 || store.evs[0].Signal != models.SignalStrongBuy {
		t.Fatalf("stored = %+v", store.evs)
	}
	if err := h.Handle(context.Background(), []byte(`{"price":1}`)); err == nil {
		t.Fatalf("expected invalid event error")
	}
	if err := h.Handle(context.Background(), []byte(`{`)); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}

type countingRefresher struct {
	mu sync.Mutex
	n  map[string]int
}

func (r *countingRefresher) Refresh(_ context.Context, symbol string, w models.WindowSize) (*models.LevelsResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.n == nil {
		r.n = map[string]int{}
	}
	r.n[symbol]++
	return &models.LevelsResult{Symbol: symbol, Window: w}, nil
}

func TestRefreshJobRespectsLock(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	ref := &countingRefresher{}
	job := NewRefreshLevelsJob(ref, mc, nil)
	ctx := context.Background()

	if err := job.Handle(ctx, []byte(`{"symbol":"AAPL","window":"week"}`)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	_, _ = mc.TryLock(ctx, "lock:refresh:AAPL", time.Minute)
	if err := job.Run(ctx, RefreshPayload{Symbol: "AAPL"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if ref.n["AAPL"] != 1 {
		t.Fatalf("refreshes = %d, want 1", ref.n["AAPL"])
	}
	if err := job.Run(ctx, RefreshPayload{}); err == nil {
		t.Fatalf("expected error for empty symbol")
	}
}

type fakeQueue struct{ msgs []RefreshPayload }

func (q *fakeQueue) PublishMessage(_ context.Context, msgType string, payload interface{}) error {
	if msgType != RefreshLevelsType {
		return errors.New("unexpected type")
	}
	q.msgs = append(q.msgs, payload.(RefreshPayload))
	return nil
}

func TestWatchlistRefresher(t *testing.T) {
	ref := &countingRefresher{}
	job := NewRefreshLevelsJob(ref, nil, nil)

	inline := NewWatchlistRefresher(job, nil, []string{"AAPL", "MSFT"}, models.WindowDay, nil)
	if failed := inline.RefreshAll(context.Background()); failed != 0 || ref.n["MSFT"] != 1 {
		t.Fatalf("inline failed=%d refreshes=%v", failed, ref.n)
	}

	q := &fakeQueue{}
	queued := NewWatchlistRefresher(job, q, []string{"AAPL"}, models.WindowWeek, nil)
	queued.RefreshAll(context.Background())
	if len(q.msgs) != 1 || q.msgs[0].Window != models.WindowWeek {
		t.Fatalf("queued = %+v", q.msgs)
	}
}
