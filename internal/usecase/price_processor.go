package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"FinLevels/internal/domain/models"
	drepo "FinLevels/internal/domain/repository"
	"FinLevels/internal/services/levels"
	"FinLevels/pkg/cache"
	applogger "FinLevels/pkg/logger"
)

// LevelsSource is what the live path needs from the levels usecase.
type LevelsSource interface {
	Levels(ctx context.Context, symbol string, window models.WindowSize) (*models.LevelsResult, error)
}

// PriceProcessor classifies live ticks and emits an event whenever a symbol changes signal.
type PriceProcessor struct {
	levels  LevelsSource
	last    cache.Service
	pub     drepo.SignalPublisher
	store   drepo.SignalStorage
	metrics drepo.Metrics
	backend string
	window  models.WindowSize
	lastTTL time.Duration
	log     *applogger.Logger
}

// NewPriceProcessor creates a new PriceProcessor. pub or store may be nil when the backend does not use it.
func NewPriceProcessor(
	lv LevelsSource,
	last cache.Service,
	pub drepo.SignalPublisher,
	store drepo.SignalStorage,
	metrics drepo.Metrics,
	backend string,
	window models.WindowSize,
	l *applogger.Logger,
) *PriceProcessor {
	if l == nil {
		l = applogger.Nop()
	}
	return &PriceProcessor{
		levels:  lv,
		last:    last,
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
		window:  window,
		lastTTL: 24 * time.Hour,
		log:     l,
	}
}

func lastSignalKey(symbol string) string {
	return cache.GenerateKey("signal:last", strings.ToUpper(symbol))
}

// Process classifies t. Symbols without usable levels are ignored.
func (p *PriceProcessor) Process(ctx context.Context, t *models.PriceTick) error {
	if t == nil {
		return errors.New("tick is nil")
	}
	start := time.Now()

	lr, err := p.levels.Levels(ctx, t.Symbol, p.window)
	if err != nil {
		p.metrics.RecordError("process_levels")
		return fmt.Errorf("levels %s: %w", t.Symbol, err)
	}
	if !lr.Present {
		return nil
	}

	tl := levels.DeriveTradingLevels(lr.Levels, models.Quote{Symbol: lr.Symbol, Price: t.Price}, nil)
	price := t.Price
	sig := levels.Classify(&price, &tl)

	var stored string
	if err := p.last.Get(ctx, lastSignalKey(lr.Symbol), &stored); err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		p.log.Warn("price.process last_signal_read", applogger.String("symbol", lr.Symbol), applogger.Error(err))
	}
	prev := models.Signal(stored)
	if prev == sig {
		return nil
	}

	ev := &models.SignalEvent{
		Symbol:     lr.Symbol,
		Price:      t.Price,
		Signal:     sig,
		Previous:   prev,
		Entry1:     tl.Entry1,
		Entry2:     tl.Entry2,
		Resistance: tl.Resistance,
		Timestamp:  time.Unix(t.Timestamp, 0).UTC(),
	}
	if err := p.emit(ctx, ev); err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("emit signal: %w", err)
	}
	// stored only after a successful emit so a failed emit is retried on the next tick
	if err := p.last.Set(ctx, lastSignalKey(lr.Symbol), string(sig), p.lastTTL); err != nil {
		p.log.Warn("price.process last_signal_write", applogger.String("symbol", lr.Symbol), applogger.Error(err))
	}

	p.metrics.RecordSignal(lr.Symbol, sig)
	p.metrics.RecordMessageSent(p.backend, lr.Symbol)
	p.metrics.RecordLatency("process", time.Since(start).Seconds())
	p.log.Info("price.process signal_changed",
		applogger.String("symbol", lr.Symbol),
		applogger.String("from", string(prev)),
		applogger.String("to", string(sig)),
		applogger.Float("price", t.Price))
	return nil
}

func (p *PriceProcessor) emit(ctx context.Context, ev *models.SignalEvent) error {
	switch p.backend {
	case "kafka":
		if p.pub == nil {
			return errors.New("kafka publisher not configured")
		}
		return p.pub.Publish(ctx, ev)
	case "clickhouse":
		if p.store == nil {
			return errors.New("clickhouse storage not configured")
		}
		return p.store.Store(ctx, ev)
	default:
		return fmt.Errorf("unknown backend: %s", p.backend)
	}
}

// Close closes underlying resources if available.
func (p *PriceProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
