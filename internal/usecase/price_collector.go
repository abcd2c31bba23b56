package usecase

import (
	"context"
	"errors"
	"time"

	"FinLevels/internal/domain/models"
	drepo "FinLevels/internal/domain/repository"
	mid "FinLevels/internal/middleware"
	applogger "FinLevels/pkg/logger"
)

var errStreamClosed = errors.New("stream closed")

// PriceCollector reads the live price stream and feeds ticks through the pipeline.
type PriceCollector struct {
	stream  drepo.PriceStream
	proc    *PriceProcessor
	metrics drepo.Metrics
	pipe    *mid.RealtimePipeline
	log     *applogger.Logger
}

// NewPriceCollector creates a new PriceCollector instance. pipe may be nil.
func NewPriceCollector(stream drepo.PriceStream, proc *PriceProcessor, metrics drepo.Metrics, pipe *mid.RealtimePipeline, l *applogger.Logger) *PriceCollector {
	if l == nil {
		l = applogger.Nop()
	}
	return &PriceCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe, log: l}
}

// IsConnected returns true if the price stream is connected.
func (c *PriceCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

// Start connects and subscribes, then consumes in the background until ctx ends.
func (c *PriceCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	go c.run(ctx)
	return nil
}

func (c *PriceCollector) run(ctx context.Context) {
	for {
		ticks, errs := c.stream.Read(ctx)
		err := c.consume(ctx, ticks, errs)
		if ctx.Err() != nil {
			return
		}
		c.metrics.RecordError("stream")
		c.log.Warn("collector.stream read_failed", applogger.Error(err))
		for ctx.Err() == nil {
			rerr := c.stream.Reconnect(ctx)
			if rerr == nil {
				break
			}
			c.log.Error("collector.stream reconnect_failed", applogger.Error(rerr))
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
		}
	}
}

// consume drains one Read session and returns the error that ended it.
func (c *PriceCollector) consume(ctx context.Context, ticks <-chan *models.PriceTick, errs <-chan error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-errs:
			if ok && err != nil {
				return err
			}
			if !ok {
				errs = nil
			}
		case t, ok := <-ticks:
			if !ok {
				return errStreamClosed
			}
			c.handle(ctx, t)
		}
	}
}

func (c *PriceCollector) handle(ctx context.Context, t *models.PriceTick) {
	if t == nil {
		return
	}
	var err error
	if c.pipe != nil {
		err = c.pipe.Process(ctx, t)
	} else {
		err = c.proc.Process(ctx, t)
	}
	if err != nil {
		c.log.Debug("collector.tick process_failed", applogger.String("symbol", t.Symbol), applogger.Error(err))
	}
	c.metrics.RecordLastPrice(t.Symbol, t.Price)
}

// Processor returns the underlying PriceProcessor for lifecycle management.
func (c *PriceCollector) Processor() *PriceProcessor { return c.proc }

// Shutdown stops pipeline and closes stream.
func (c *PriceCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
