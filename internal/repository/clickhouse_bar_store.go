package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"FinLevels/internal/domain/models"
	domrepo "FinLevels/internal/domain/repository"
	pkgch "FinLevels/pkg/clickhouse"
	applogger "FinLevels/pkg/logger"
)

const barColumns = "day, symbol, open, high, low, close, volume"

// CHBarStore implements BarStore backed by a ClickHouse daily_bars table.
type CHBarStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

var _ domrepo.BarStore = (*CHBarStore)(nil)

func NewCHBarStore(ch *pkgch.Client, table string, l *applogger.Logger) *CHBarStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHBarStore{db: ch.DB(), table: table, l: l}
}

// DailyBars returns the latest n bars for symbol, oldest first.
func (s *CHBarStore) DailyBars(ctx context.Context, symbol string, n int) ([]models.OhlcBar, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT %s
        FROM %s FINAL
        WHERE symbol = ?
        ORDER BY day DESC
        LIMIT ?
    `, barColumns, s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, n)
	if err != nil {
		s.l.Error("clickhouse.daily_bars query error",
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.Int("limit", n),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("daily bars: %w", err)
	}
	defer rows.Close()

	candles := make([]models.Candle, 0, n)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Day, &c.Symbol, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			s.l.Error("clickhouse.daily_bars scan error",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		candles = append(candles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	bars := barsAscending(candles)
	s.l.Debug("clickhouse.daily_bars ok",
		applogger.String("symbol", symbol),
		applogger.Int("limit", n),
		applogger.Int("rows", len(bars)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return bars, nil
}

// UpsertCandles writes candles; the ReplacingMergeTree keeps the latest row per (symbol, day).
func (s *CHBarStore) UpsertCandles(ctx context.Context, candles []models.Candle) error {
	return insertChunked(ctx, s.db, s.table, barColumns, 7, len(candles), func(i int) []interface{} {
		c := candles[i]
		return []interface{}{c.Day, c.Symbol, c.Open, c.High, c.Low, c.Close, c.Volume}
	})
}

// barsAscending converts DESC query rows into bars in chronological order.
func barsAscending(desc []models.Candle) []models.OhlcBar {
	out := make([]models.OhlcBar, len(desc))
	for i, c := range desc {
		out[len(desc)-1-i] = c.Bar()
	}
	return out
}

const insertChunkSize = 2000

// insertChunked issues multi-row VALUES inserts of up to insertChunkSize rows.
// row(i) returns the arguments of the i-th row or nil to skip it.
func insertChunked(ctx context.Context, db *sql.DB, table, columns string, width, n int, row func(int) []interface{}) error {
	for start := 0; start < n; start += insertChunkSize {
		end := min(start+insertChunkSize, n)
		args := make([]interface{}, 0, (end-start)*width)
		rows := 0
		for i := start; i < end; i++ {
			if r := row(i); r != nil {
				args = append(args, r...)
				rows++
			}
		}
		if rows == 0 {
			continue
		}
		if _, err := db.ExecContext(ctx, insertQuery(table, columns, width, rows), args...); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return nil
}

func insertQuery(table, columns string, width, rows int) string {
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", width), ", ") + ")"
	values := make([]string, rows)
	for i := range values {
		values[i] = tuple
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", table, columns, strings.Join(values, ","))
}
