package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"FinLevels/internal/domain/models"
	"FinLevels/internal/domain/repository"
	pkgkafka "FinLevels/pkg/kafka"
)

const signalColumns = "ts, symbol, price, signal, previous, entry1, entry2, resistance"

// ClickHouseSignalStorage implements SignalStorage for ClickHouse.
type ClickHouseSignalStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseSignalStorage creates ClickHouse signal storage.
func NewClickHouseSignalStorage(db *sql.DB, table string) repository.SignalStorage {
	return &ClickHouseSignalStorage{db: db, table: table}
}

func (s *ClickHouseSignalStorage) Store(ctx context.Context, ev *models.SignalEvent) error {
	return s.StoreBatch(ctx, []*models.SignalEvent{ev})
}

func (s *ClickHouseSignalStorage) StoreBatch(ctx context.Context, evs []*models.SignalEvent) error {
	return insertChunked(ctx, s.db, s.table, signalColumns, 8, len(evs), func(i int) []interface{} {
		ev := evs[i]
		if ev == nil || ev.Symbol == "" || ev.Timestamp.IsZero() {
			return nil
		}
		return []interface{}{
			ev.Timestamp.UTC(),
			ev.Symbol,
			ev.Price,
			string(ev.Signal),
			string(ev.Previous),
			ev.Entry1,
			ev.Entry2,
			ev.Resistance,
		}
	})
}

// Query returns events for symbol in [from, to], newest first.
func (s *ClickHouseSignalStorage) Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.SignalEvent, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE symbol = ? AND ts >= ? AND ts <= ? ORDER BY ts DESC LIMIT ?", signalColumns, s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	var out []*models.SignalEvent
	for rows.Next() {
		var ev models.SignalEvent
		var sig, prev string
		if err := rows.Scan(&ev.Timestamp, &ev.Symbol, &ev.Price, &sig, &prev, &ev.Entry1, &ev.Entry2, &ev.Resistance); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		ev.Signal = models.Signal(sig)
		ev.Previous = models.Signal(prev)
		out = append(out, &ev)
	}
	return out, rows.Err()
}

func (s *ClickHouseSignalStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseSignalStorage) Close() error {
	return nil // connection owned by pkg/clickhouse client
}

// KafkaSignalPublisher implements SignalPublisher for Kafka, keyed by symbol.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSignalPublisher creates Kafka publisher.
func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) repository.SignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

func (p *KafkaSignalPublisher) Publish(ctx context.Context, ev *models.SignalEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(ev.Symbol), ev)
}

func (p *KafkaSignalPublisher) PublishBatch(ctx context.Context, evs []*models.SignalEvent) error {
	if len(evs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(evs))
	for _, ev := range evs {
		if ev == nil {
			continue
		}
		msgs = append(msgs, pkgkafka.Message{Key: []byte(ev.Symbol), Value: ev})
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaSignalPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
