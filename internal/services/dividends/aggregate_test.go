package dividends

import (
	"testing"

	"FinLevels/internal/domain/models"
)

func rec(sym string, annual, yield *float64) models.DividendRecord {
	return models.DividendRecord{Symbol: sym, OriginalCurrency: "USD", AnnualDividendBase: annual, DividendYieldPercent: yield}
}

func symbols(rs []models.DividendRecord) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Symbol
	}
	return out
}

func equal(a, b []string) bool {
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

func TestAggregate(t *testing.T) {
	f := models.Float
	records := []models.DividendRecord{
		rec("AAA", f(10), f(2.5)),
		rec("BBB", nil, f(4)),
		rec("CCC", f(30), nil),
		rec("DDD", f(10), f(1)),
		rec("EEE", f(5), f(6)),
	}
	got := Aggregate(records)

	if got.TotalAnnualDividend != 55 {
		t.Fatalf("total = %v, want 55", got.TotalAnnualDividend)
	}
	if want := []string{"CCC", "AAA", "DDD", "EEE", "BBB"}; !equal(symbols(got.RankedByAnnual), want) {
		t.Fatalf("annual = %v, want %v", symbols(got.RankedByAnnual), want)
	}
	if want := []string{"EEE", "BBB", "AAA"}; !equal(symbols(got.RankedByYield), want) {
		t.Fatalf("yield = %v, want %v", symbols(got.RankedByYield), want)
	}
	if records[0].Symbol != "AAA" || records[2].Symbol != "CCC" {
		t.Fatalf("input reordered")
	}
}

func TestAggregateStableOnTies(t *testing.T) {
	f := models.Float
	got := Aggregate([]models.DividendRecord{
		rec("Z", f(5), f(3)),
		rec("A", f(5), f(3)),
		rec("M", nil, nil),
		rec("B", nil, nil),
	})
	if want := []string{"Z", "A", "M", "B"}; !equal(symbols(got.RankedByAnnual), want) {
		t.Fatalf("annual = %v", symbols(got.RankedByAnnual))
	}
	if want := []string{"Z", "A"}; !equal(symbols(got.RankedByYield), want) {
		t.Fatalf("yield = %v", symbols(got.RankedByYield))
	}
}

func TestAggregateEmpty(t *testing.T) {
	got := Aggregate(nil)
	if got.TotalAnnualDividend != 0 || len(got.RankedByAnnual) != 0 || len(got.RankedByYield) != 0 {
		t.Fatalf("got %+v", got)
	}
	if got.RankedByAnnual == nil || got.RankedByYield == nil {
		t.Fatalf("expected empty, non-nil rankings")
	}
}

func TestAggregateMapOrdersBySymbol(t *testing.T) {
	f := models.Float
	got := AggregateMap(map[string]models.DividendRecord{
		"MSFT": {AnnualDividendBase: f(3)},
		"AAPL": {AnnualDividendBase: f(3)},
		"KO":   {AnnualDividendBase: f(7), DividendYieldPercent: f(3.1)},
	})
	if want := []string{"KO", "AAPL", "MSFT"}; !equal(symbols(got.RankedByAnnual), want) {
		t.Fatalf("annual = %v", symbols(got.RankedByAnnual))
	}
	if got.TotalAnnualDividend != 13 {
		t.Fatalf("total = %v", got.TotalAnnualDividend)
	}
}
