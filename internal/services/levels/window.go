package levels

import (
	"time"

	"FinLevels/internal/domain/models"
)

// AggregateBars folds daily bars into weekly (ISO week) or monthly bars.
// A period inherits a gap from any of its days: if one day lacks a high, the period high is nil.
// PeriodDay returns the input unchanged.
func AggregateBars(daily []models.OhlcBar, period models.Period) []models.OhlcBar {
	if len(daily) == 0 {
		return nil
	}
	var key func(time.Time) int
	switch period {
	case models.PeriodWeek:
		key = func(t time.Time) int {
			y, w := t.ISOWeek()
			return y*100 + w
		}
	case models.PeriodMonth:
		key = func(t time.Time) int { return t.Year()*100 + int(t.Month()) }
	default:
		return daily
	}

	var out []models.OhlcBar
	cur := copyBar(daily[0])
	curKey := key(daily[0].Time)
	for _, d := range daily[1:] {
		if k := key(d.Time); k != curKey {
			out = append(out, cur)
			cur = copyBar(d)
			curKey = k
			continue
		}
		cur.High = fold(cur.High, d.High, true)
		cur.Low = fold(cur.Low, d.Low, false)
		cur.Close = copyFloat(d.Close)
	}
	return append(out, cur)
}

// fold keeps the larger value when upper is set, the smaller otherwise.
func fold(acc, v *float64, upper bool) *float64 {
	if acc == nil || v == nil {
		return nil
	}
	if upper {
		return models.Float(max(*acc, *v))
	}
	return models.Float(min(*acc, *v))
}

func copyBar(b models.OhlcBar) models.OhlcBar {
	return models.OhlcBar{
		Time:  b.Time,
		Open:  copyFloat(b.Open),
		High:  copyFloat(b.High),
		Low:   copyFloat(b.Low),
		Close: copyFloat(b.Close),
	}
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return models.Float(*v)
}
