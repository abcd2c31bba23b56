// Package dividends totals and ranks dividend figures across holdings.
package dividends

import (
	"cmp"
	"slices"

	"FinLevels/internal/domain/models"
)

// MedalCount is how many yield leaders are kept.
const MedalCount = 3

// Aggregate sums the known annual dividends and ranks records by annual amount and by yield.
// Records with unknown annual amounts sort last in the annual ranking; records with unknown
// yield are left out of the yield ranking. Both sorts are stable. records is not modified.
func Aggregate(records []models.DividendRecord) models.DividendSummary {
	out := models.DividendSummary{
		RankedByAnnual: []models.DividendRecord{},
		RankedByYield:  []models.DividendRecord{},
	}
	for _, r := range records {
		if r.AnnualDividendBase != nil {
			out.TotalAnnualDividend += *r.AnnualDividendBase
		}
	}

	out.RankedByAnnual = append(out.RankedByAnnual, records...)
	slices.SortStableFunc(out.RankedByAnnual, func(a, b models.DividendRecord) int {
		return descNilLast(a.AnnualDividendBase, b.AnnualDividendBase)
	})

	for _, r := range records {
		if r.DividendYieldPercent != nil {
			out.RankedByYield = append(out.RankedByYield, r)
		}
	}
	slices.SortStableFunc(out.RankedByYield, func(a, b models.DividendRecord) int {
		return cmp.Compare(*b.DividendYieldPercent, *a.DividendYieldPercent)
	})
	if len(out.RankedByYield) > MedalCount {
		out.RankedByYield = out.RankedByYield[:MedalCount]
	}
	return out
}

// AggregateMap aggregates records keyed by symbol. Map iteration has no order, so records
// are visited by symbol and ties rank alphabetically. Records without a symbol take their key.
func AggregateMap(records map[string]models.DividendRecord) models.DividendSummary {
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	list := make([]models.DividendRecord, 0, len(keys))
	for _, k := range keys {
		r := records[k]
		if r.Symbol == "" {
			r.Symbol = k
		}
		list = append(list, r)
	}
	return Aggregate(list)
}

func descNilLast(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmp.Compare(*b, *a)
}
