package repository

import (
	"testing"
	"time"

	"FinLevels/internal/domain/models"
)

func TestInsertQuery(t *testing.T) {
	got := insertQuery("finlevels.daily_bars", "a, b", 2, 3)
	want := "INSERT INTO finlevels.daily_bars (a, b) VALUES (?, ?),(?, ?),(?, ?)"
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestBarsAscending(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC) }
	desc := []models.Candle{
		{Day: day(3), High: 3, Low: 1, Close: 2},
		{Day: day(2), High: 2, Low: 1, Close: 1.5},
		{Day: day(1), High: 1, Low: 0.5, Close: 0.7},
	}
	bars := barsAscending(desc)
	if len(bars) != 3 || !bars[0].Time.Equal(day(1)) || !bars[2].Time.Equal(day(3)) {
		t.Fatalf("bars not ascending: %+v", bars)
	}
	if *bars[2].High != 3 || !bars[1].Complete() {
		t.Fatalf("bar values lost: %+v", bars[2])
	}
}
