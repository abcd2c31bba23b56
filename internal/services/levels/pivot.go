package levels

import (
	"math"

	"FinLevels/internal/domain/models"
	"FinLevels/pkg/util"
)

// ComputeLevels derives pivot levels from the trailing window of bars (oldest first).
//
// Single-period windows (1, week, month) read the most recent bar; week and month expect
// bars already aggregated to that period (see AggregateBars). Windows of 3..8 take the
// highest high and lowest low over the last N bars with the close of the most recent one.
// A window longer than the series uses every bar.
//
// ok is false when bars is empty or any bar in the window lacks high, low or close. The
// levels returned alongside are then the all-zero sentinel and must not be displayed.
func ComputeLevels(bars []models.OhlcBar, size models.WindowSize) (models.PivotLevels, bool) {
	high, low, closePrice, ok := windowHLC(bars, size.Days())
	if !ok {
		return models.PivotLevels{}, false
	}
	return Pivots(high, low, closePrice), true
}

// Pivots applies the classic formulas. Each level is rounded on its own;
// the unrounded pivot feeds every formula.
func Pivots(high, low, closePrice float64) models.PivotLevels {
	p := (high + low + closePrice) / 3
	rng := high - low
	return models.PivotLevels{
		Pivot:       util.Round2(p),
		Resistance1: util.Round2(2*p - low),
		Support1:    util.Round2(2*p - high),
		Resistance2: util.Round2(p + rng),
		Support2:    util.Round2(p - rng),
	}
}

// Ordered reports whether support2 <= support1 <= pivot <= resistance1 <= resistance2.
// Malformed input (high < low) breaks the ordering, so callers can use it as a precondition check.
func Ordered(l models.PivotLevels) bool {
	return l.Support2 <= l.Support1 &&
		l.Support1 <= l.Pivot &&
		l.Pivot <= l.Resistance1 &&
		l.Resistance1 <= l.Resistance2
}

func windowHLC(bars []models.OhlcBar, n int) (high, low, closePrice float64, ok bool) {
	if len(bars) == 0 {
		return 0, 0, 0, false
	}
	if n < 1 {
		n = 1
	}
	start := len(bars) - n
	if start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range bars[start:] {
		if !b.Complete() {
			return 0, 0, 0, false
		}
		high = max(high, *b.High)
		low = min(low, *b.Low)
	}
	return high, low, *bars[len(bars)-1].Close, true
}
