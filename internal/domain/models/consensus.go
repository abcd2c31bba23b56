package models

// RecommendationCounts are analyst rating buckets. All zero means no data.
type RecommendationCounts struct {
	StrongBuy  int `json:"strong_buy" validate:"gte=0"`
	Buy        int `json:"buy" validate:"gte=0"`
	Hold       int `json:"hold" validate:"gte=0"`
	Sell       int `json:"sell" validate:"gte=0"`
	StrongSell int `json:"strong_sell" validate:"gte=0"`
}

// Total returns the number of ratings across all buckets.
func (c RecommendationCounts) Total() int {
	return c.StrongBuy + c.Buy + c.Hold + c.Sell + c.StrongSell
}

// AnalystView is the collapsed consensus label.
type AnalystView string

const (
	ViewStrongBuy  AnalystView = "STRONG_BUY"
	ViewBuy        AnalystView = "BUY"
	ViewBuyOrHold  AnalystView = "BUY_OR_HOLD"
	ViewHold       AnalystView = "HOLD"
	ViewSellOrHold AnalystView = "SELL_OR_HOLD"
	ViewSell       AnalystView = "SELL"
	ViewStrongSell AnalystView = "STRONG_SELL"
	ViewNeutral    AnalystView = "NEUTRAL"
)
