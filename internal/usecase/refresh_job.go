package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"FinLevels/internal/domain/models"
	"FinLevels/pkg/cache"
	applogger "FinLevels/pkg/logger"
	"FinLevels/pkg/queue"
)

// RefreshLevelsType is the queue message type of a levels refresh.
const RefreshLevelsType = "refresh_levels"

// RefreshPayload asks for one symbol's levels to be recomputed.
type RefreshPayload struct {
	Symbol string            `json:"symbol"`
	Window models.WindowSize `json:"window"`
}

// Refresher recomputes levels and overwrites their cache entry.
type Refresher interface {
	Refresh(ctx context.Context, symbol string, window models.WindowSize) (*models.LevelsResult, error)
}

// RefreshLevelsJob is the queue job that recomputes one symbol's levels under a per-symbol lock.
type RefreshLevelsJob struct {
	levels  Refresher
	locks   cache.Service
	lockTTL time.Duration
	log     *applogger.Logger
}

var _ queue.Job = (*RefreshLevelsJob)(nil)

func NewRefreshLevelsJob(lv Refresher, locks cache.Service, l *applogger.Logger) *RefreshLevelsJob {
	if l == nil {
		l = applogger.Nop()
	}
	return &RefreshLevelsJob{levels: lv, locks: locks, lockTTL: 30 * time.Second, log: l}
}

func (j *RefreshLevelsJob) Name() string { return "refresh_levels_job" }

func (j *RefreshLevelsJob) Type() string { return RefreshLevelsType }

func (j *RefreshLevelsJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[RefreshPayload](payload)
	if err != nil {
		return err
	}
	return j.Run(ctx, *p)
}

// Run refreshes p.Symbol. It is a no-op when another worker holds the symbol's lock.
func (j *RefreshLevelsJob) Run(ctx context.Context, p RefreshPayload) error {
	if p.Symbol == "" {
		return errors.New("refresh: symbol required")
	}
	if p.Window == "" {
		p.Window = models.WindowDay
	}
	if j.locks != nil {
		key := cache.GenerateKey("lock:refresh", strings.ToUpper(p.Symbol))
		ok, err := j.locks.TryLock(ctx, key, j.lockTTL)
		if err != nil {
			return fmt.Errorf("refresh lock: %w", err)
		}
		if !ok {
			j.log.Debug("refresh.levels locked", applogger.String("symbol", p.Symbol))
			return nil
		}
		defer func() { _ = j.locks.Unlock(context.Background(), key) }()
	}

	res, err := j.levels.Refresh(ctx, p.Symbol, p.Window)
	if err != nil {
		return err
	}
	j.log.Debug("refresh.levels done",
		applogger.String("symbol", res.Symbol),
		applogger.String("window", string(res.Window)),
		applogger.Bool("present", res.Present))
	return nil
}

// WatchlistRefresher fans a refresh out over the watchlist, through the queue when one is configured.
type WatchlistRefresher struct {
	job     *RefreshLevelsJob
	queue   queue.QueueService // optional
	symbols []string
	window  models.WindowSize
	log     *applogger.Logger
}

func NewWatchlistRefresher(job *RefreshLevelsJob, q queue.QueueService, symbols []string, window models.WindowSize, l *applogger.Logger) *WatchlistRefresher {
	if l == nil {
		l = applogger.Nop()
	}
	return &WatchlistRefresher{job: job, queue: q, symbols: symbols, window: window, log: l}
}

// RefreshAll enqueues or runs one refresh per watchlist symbol and returns how many failed to start.
func (r *WatchlistRefresher) RefreshAll(ctx context.Context) int {
	failed := 0
	for _, s := range r.symbols {
		p := RefreshPayload{Symbol: s, Window: r.window}
		var err error
		if r.queue != nil {
			err = r.queue.PublishMessage(ctx, RefreshLevelsType, p)
		} else {
			err = r.job.Run(ctx, p)
		}
		if err != nil {
			failed++
			r.log.Warn("refresh.watchlist symbol_failed", applogger.String("symbol", s), applogger.Error(err))
		}
	}
	r.log.Info("refresh.watchlist pass",
		applogger.Int("symbols", len(r.symbols)),
		applogger.Int("failed", failed),
		applogger.Bool("queued", r.queue != nil))
	return failed
}
