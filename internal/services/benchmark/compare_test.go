package benchmark

import (
	"testing"
	"time"

	"FinLevels/internal/domain/models"
)

func pts(ts []int64, vals ...*float64) []models.TimeSeriesPoint {
	out := make([]models.TimeSeriesPoint, len(vals))
	for i, v := range vals {
		out[i] = models.TimeSeriesPoint{Timestamp: ts[i], Value: v}
	}
	return out
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		raw  []float64
		want []float64
	}{
		{"leading zero", []float64{0, 50, 100, 150}, []float64{0, 100, 200, 300}},
		{"first positive is base", []float64{80, 40, 120}, []float64{100, 50, 150}},
		{"no positive value", []float64{0, 0, -2}, []float64{0, 0, -200}},
		{"rounded", []float64{3, 1, 2}, []float64{100, 33.33, 66.67}},
		{"empty", []float64{}, []float64{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.raw); !floatsEqual(got, tc.want) {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	f := models.Float
	day := func(d int) int64 { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC).Unix() }
	ts := []int64{day(1), day(2), day(3)}
	assets := []models.Asset{
		{Symbol: "AAA", Quantity: 2},
		{Symbol: "BBB", Quantity: 1},
		{Symbol: "NONE", Quantity: 5},
	}
	series := map[string][]models.TimeSeriesPoint{
		"AAA": pts(ts, f(10), nil, f(15)),
		"BBB": pts(ts, f(30), f(40), f(50)),
	}
	bench := pts(ts, f(200), f(220), nil)

	got := Compare(assets, series, bench, "day")

	// raw portfolio: 50, 40, 80
	if want := []float64{100, 80, 160}; !floatsEqual(got.Portfolio, want) {
		t.Fatalf("portfolio = %v, want %v", got.Portfolio, want)
	}
	if want := []float64{100, 110, 0}; !floatsEqual(got.Benchmark, want) {
		t.Fatalf("benchmark = %v, want %v", got.Benchmark, want)
	}
	if want := []string{"2024-03-01", "2024-03-02", "2024-03-03"}; len(got.Dates) != 3 || got.Dates[0] != want[0] || got.Dates[2] != want[2] {
		t.Fatalf("dates = %v", got.Dates)
	}
}

func TestCompareShortSeries(t *testing.T) {
	f := models.Float
	ts := []int64{1, 2, 3}
	got := Compare(
		[]models.Asset{{Symbol: "A", Quantity: 1}, {Symbol: "B", Quantity: 1}},
		map[string][]models.TimeSeriesPoint{
			"A": pts(ts[:1], f(10)),
			"B": pts(ts, f(10), f(10), f(10)),
		},
		pts(ts, f(1), f(1), f(1)),
		"day",
	)
	if want := []float64{100, 50, 50}; !floatsEqual(got.Portfolio, want) {
		t.Fatalf("portfolio = %v", got.Portfolio)
	}
}

func TestCompareEmptyBenchmark(t *testing.T) {
	got := Compare([]models.Asset{{Symbol: "A", Quantity: 1}}, nil, nil, "day")
	if len(got.Dates) != 0 || len(got.Portfolio) != 0 || len(got.Benchmark) != 0 {
		t.Fatalf("got %+v", got)
	}
}

func TestPerformance(t *testing.T) {
	p := Performance(models.Asset{Symbol: "AAA", Quantity: 3, CostPerShare: 10}, 12.5)
	if p.MarketValue != 37.5 || p.CostBasis != 30 || p.Gain != 7.5 || p.GainPercent != 25 {
		t.Fatalf("got %+v", p)
	}
	free := Performance(models.Asset{Symbol: "GIFT", Quantity: 1}, 5)
	if free.GainPercent != 0 || free.Gain != 5 {
		t.Fatalf("got %+v", free)
	}
}

func TestHoldingPerformanceSkipsUnpriced(t *testing.T) {
	got := HoldingPerformance(
		[]models.Asset{{Symbol: "A", Quantity: 1, CostPerShare: 1}, {Symbol: "B", Quantity: 1}},
		map[string]float64{"A": 2},
	)
	if len(got) != 1 || got[0].Symbol != "A" || got[0].GainPercent != 100 {
		t.Fatalf("got %+v", got)
	}
}
