package consensus

import (
	"testing"

	"FinLevels/internal/domain/models"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name   string
		counts *models.RecommendationCounts
		want   models.AnalystView
	}{
		{"nil", nil, models.ViewNeutral},
		{"all zero", &models.RecommendationCounts{}, models.ViewNeutral},
		{"buy over hold blends", &models.RecommendationCounts{StrongBuy: 2, Buy: 10, Hold: 9, Sell: 3, StrongSell: 1}, models.ViewBuyOrHold},
		{"hold over buy blends", &models.RecommendationCounts{Buy: 7, Hold: 10}, models.ViewBuyOrHold},
		{"strong buy and buy never blend", &models.RecommendationCounts{StrongBuy: 10, Buy: 12, Hold: 1}, models.ViewBuy},
		{"hold over sell blends", &models.RecommendationCounts{Hold: 8, Sell: 6}, models.ViewSellOrHold},
		{"sell over hold blends", &models.RecommendationCounts{Hold: 5, Sell: 8}, models.ViewSellOrHold},
		{"gap too wide", &models.RecommendationCounts{Buy: 14, Hold: 10}, models.ViewBuy},
		{"gap exactly three", &models.RecommendationCounts{Buy: 13, Hold: 10}, models.ViewBuyOrHold},
		{"strong sell wins", &models.RecommendationCounts{Sell: 4, StrongSell: 5}, models.ViewStrongSell},
		{"plain hold", &models.RecommendationCounts{StrongBuy: 1, Hold: 9, StrongSell: 1}, models.ViewHold},
		{"tie goes to earlier bucket", &models.RecommendationCounts{Buy: 5, Sell: 5}, models.ViewBuy},
		{"buy hold tie", &models.RecommendationCounts{Buy: 5, Hold: 5}, models.ViewBuyOrHold},
		{"second picks earliest on tie", &models.RecommendationCounts{StrongBuy: 4, Buy: 4, Hold: 6}, models.ViewHold},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Resolve(tc.counts); got != tc.want {
				t.Fatalf("got %s want %s", got, tc.want)
			}
		})
	}
}
