package benchmark

import (
	"FinLevels/internal/domain/models"
	"FinLevels/pkg/util"
)

// Performance marks a holding to price. A zero cost basis reports 0% gain.
func Performance(a models.Asset, price float64) models.HoldingPerformance {
	value := price * a.Quantity
	cost := a.CostPerShare * a.Quantity
	gain := value - cost
	pct := 0.0
	if cost != 0 {
		pct = gain / cost * 100
	}
	return models.HoldingPerformance{
		Symbol:      a.Symbol,
		Quantity:    a.Quantity,
		Price:       price,
		MarketValue: util.Round2(value),
		CostBasis:   util.Round2(cost),
		Gain:        util.Round2(gain),
		GainPercent: util.Round2(pct),
	}
}

// HoldingPerformance marks every asset with a known price. Assets missing from prices are skipped.
func HoldingPerformance(assets []models.Asset, prices map[string]float64) []models.HoldingPerformance {
	out := make([]models.HoldingPerformance, 0, len(assets))
	for _, a := range assets {
		p, ok := prices[a.Symbol]
		if !ok {
			continue
		}
		out = append(out, Performance(a, p))
	}
	return out
}
