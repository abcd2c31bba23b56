package util

import (
	"strconv"
	"time"
)

// Label granularities for chart date axes.
const (
	GranularityIntraday = "intraday"
	GranularityDay      = "day"
	GranularityWeek     = "week"
	GranularityMonth    = "month"
	GranularityYear     = "year"
)

// ParseTime tries RFC3339, RFC3339Nano, date-only and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return UnixAuto(ts), true
	}
	return time.Time{}, false
}

// UnixAuto converts a unix timestamp in seconds or milliseconds to UTC time.
func UnixAuto(ts int64) time.Time {
	if ts > 1e11 { // ms
		return time.UnixMilli(ts).UTC()
	}
	return time.Unix(ts, 0).UTC()
}

// FormatLabel renders a tick timestamp as a chart label for the granularity.
// Unknown granularities fall back to a plain date.
func FormatLabel(ts int64, granularity string) string {
	t := UnixAuto(ts)
	switch granularity {
	case GranularityIntraday:
		return t.Format("2006-01-02 15:04")
	case GranularityMonth:
		return t.Format("2006-01")
	case GranularityYear:
		return t.Format("2006")
	default:
		return t.Format(time.DateOnly)
	}
}
