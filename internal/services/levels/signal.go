package levels

import (
	"slices"

	"FinLevels/internal/domain/models"
)

const (
	// entryBand is the +/- tolerance around entry1 that still counts as a buy.
	entryBand = 0.01
	// sellProximity is how far below resistance a price may sit and still flag a sell.
	sellProximity = 0.015
)

// Classify maps a price against trading levels. Checks run in order STRONG_BUY, BUY, SELL;
// the first match wins. A nil price or nil levels is NORMAL.
func Classify(price *float64, lv *models.TradingLevels) models.Signal {
	if price == nil || lv == nil {
		return models.SignalNormal
	}
	p := *price
	switch {
	case p < lv.Entry2:
		return models.SignalStrongBuy
	case p >= lv.Entry1*(1-entryBand) && p <= lv.Entry1*(1+entryBand):
		return models.SignalBuy
	case p >= lv.Entry2 && p < lv.Entry1:
		return models.SignalBuy
	case lv.Resistance > 0 && (p-lv.Resistance)/lv.Resistance >= -sellProximity:
		return models.SignalSell
	}
	return models.SignalNormal
}

// SortBySignal orders xs by ascending signal rank in place. Items of equal rank keep their order.
func SortBySignal[T any](xs []T, signal func(T) models.Signal) {
	slices.SortStableFunc(xs, func(a, b T) int {
		return signal(a).Rank() - signal(b).Rank()
	})
}
