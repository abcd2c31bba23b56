package levels

import (
	"FinLevels/internal/domain/models"
	"FinLevels/pkg/util"
)

// DeriveTradingLevels turns pivots and a live quote into the levels a signal is classified against.
// The first support is the primary entry, the second support the deeper entry and the first
// resistance the take-profit; the stop sits one entry spread below the deeper entry.
func DeriveTradingLevels(p models.PivotLevels, q models.Quote, rec *models.RecommendationCounts) models.TradingLevels {
	e1, e2 := p.Support1, p.Support2
	if e2 > e1 {
		e1, e2 = e2, e1
	}
	return models.TradingLevels{
		Entry1:         e1,
		Entry2:         e2,
		StopLoss:       util.Round2(e2 - (e1 - e2)),
		Resistance:     p.Resistance1,
		CurrentPrice:   q.Price,
		PreviousClose:  q.PreviousClose,
		Recommendation: rec,
	}
}
