package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeDateOnly(t *testing.T) {
	got, ok := ParseTime("2024-03-01")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Year() != 2024 || got.Month() != time.March || got.Day() != 1 {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestUnixAutoMillis(t *testing.T) {
	want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := UnixAuto(want.UnixMilli()); !got.Equal(want) {
		t.Fatalf("ms: got %v want %v", got, want)
	}
	if got := UnixAuto(want.Unix()); !got.Equal(want) {
		t.Fatalf("s: got %v want %v", got, want)
	}
}

func TestFormatLabel(t *testing.T) {
	ts := time.Date(2024, 7, 15, 14, 30, 0, 0, time.UTC).Unix()
	cases := []struct {
		gran string
		want string
	}{
		{GranularityIntraday, "2024-07-15 14:30"},
		{GranularityDay, "2024-07-15"},
		{GranularityWeek, "2024-07-15"},
		{GranularityMonth, "2024-07"},
		{GranularityYear, "2024"},
		{"", "2024-07-15"},
	}
	for _, c := range cases {
		if got := FormatLabel(ts, c.gran); got != c.want {
			t.Errorf("FormatLabel(%q) = %q, want %q", c.gran, got, c.want)
		}
	}
}
