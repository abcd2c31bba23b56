package repository

import (
	"context"
	"time"

	"FinLevels/internal/domain/models"
)

// PriceStream delivers live trade prints.
type PriceStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.PriceTick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// SignalPublisher emits signal changes to the event stream.
type SignalPublisher interface {
	Publish(ctx context.Context, ev *models.SignalEvent) error
	PublishBatch(ctx context.Context, evs []*models.SignalEvent) error
	Close() error
}

// SignalStorage persists signal change history.
type SignalStorage interface {
	Store(ctx context.Context, ev *models.SignalEvent) error
	StoreBatch(ctx context.Context, evs []*models.SignalEvent) error
	Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.SignalEvent, error)
	Health(ctx context.Context) error // ping
	Close() error
}

type Metrics interface {
	RecordMessageSent(backend, symbol string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordSignal(symbol string, s models.Signal)
	RecordLatency(op string, seconds float64)
}
