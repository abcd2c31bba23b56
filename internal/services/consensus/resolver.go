// Package consensus collapses analyst recommendation buckets into a single view.
package consensus

import "FinLevels/internal/domain/models"

// blendGap is the largest top-vs-second gap that still blends buy/hold or hold/sell.
const blendGap = 3

type bucket struct {
	view  models.AnalystView
	count int
}

// Resolve returns the consensus view for counts. nil and all-zero counts are NEUTRAL.
//
// Buckets are compared in the fixed order strong buy, buy, hold, sell, strong sell, so the
// earlier bucket wins a tie. Only the buy/hold and hold/sell pairs blend; strong buckets never do.
func Resolve(counts *models.RecommendationCounts) models.AnalystView {
	if counts == nil || counts.Total() == 0 {
		return models.ViewNeutral
	}
	buckets := [5]bucket{
		{models.ViewStrongBuy, counts.StrongBuy},
		{models.ViewBuy, counts.Buy},
		{models.ViewHold, counts.Hold},
		{models.ViewSell, counts.Sell},
		{models.ViewStrongSell, counts.StrongSell},
	}

	top := 0
	for i := 1; i < len(buckets); i++ {
		if buckets[i].count > buckets[top].count {
			top = i
		}
	}
	second := -1
	for i := range buckets {
		if i == top {
			continue
		}
		if second < 0 || buckets[i].count > buckets[second].count {
			second = i
		}
	}

	a, b := buckets[top], buckets[second]
	if a.count-b.count <= blendGap {
		switch {
		case pair(a.view, b.view, models.ViewBuy, models.ViewHold):
			return models.ViewBuyOrHold
		case pair(a.view, b.view, models.ViewHold, models.ViewSell):
			return models.ViewSellOrHold
		}
	}
	return a.view
}

func pair(a, b, x, y models.AnalystView) bool {
	return (a == x && b == y) || (a == y && b == x)
}
