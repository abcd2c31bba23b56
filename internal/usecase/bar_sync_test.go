package usecase

import (
	"context"
	"testing"

	"FinLevels/internal/domain/models"
)

type fakeStore struct {
	fakeBars
	written []models.Candle
}

func (f *fakeStore) UpsertCandles(_ context.Context, candles []models.Candle) error {
	f.written = append(f.written, candles...)
	return nil
}

func TestBarSyncSkipsGapsAndFailures(t *testing.T) {
	gap := bar(3, 0, 0, 0)
	gap.Close = nil
	src := &fakeBars{bars: map[string][]models.OhlcBar{
		"AAPL": {bar(1, 11, 9, 10), bar(2, 12, 10, 11), gap},
	}}
	dst := &fakeStore{}
	s := NewBarSync(src, dst, []string{"aapl", "MISSING"}, 10, nil)

	if failed := s.SyncAll(context.Background()); failed != 1 {
		t.Fatalf("failed = %d, want 1", failed)
	}
	if len(dst.written) != 2 {
		t.Fatalf("written = %d rows, want 2", len(dst.written))
	}
	if c := dst.written[1]; c.Symbol != "AAPL" || c.High != 12 || c.Close != 11 {
		t.Fatalf("second candle = %+v", c)
	}
}
