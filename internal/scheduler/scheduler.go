package scheduler

import (
	"context"
	"fmt"

	applogger "FinLevels/pkg/logger"

	"github.com/robfig/cron/v3"
)

// TaskFunc runs one pass and returns how many items failed.
type TaskFunc func(ctx context.Context) int

type task struct {
	name string
	run  TaskFunc
}

// Scheduler runs the periodic bar sync and levels refresh tasks.
type Scheduler struct {
	cron   *cron.Cron
	tasks  []task
	log    *applogger.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Scheduler. Cron specs carry a leading seconds field.
func New(l *applogger.Logger) *Scheduler {
	if l == nil {
		l = applogger.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:    l,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers fn under name on spec.
func (s *Scheduler) Add(name, spec string, fn TaskFunc) error {
	t := task{name: name, run: fn}
	if _, err := s.cron.AddFunc(spec, func() { s.runTask(t) }); err != nil {
		return fmt.Errorf("register task %s: %w", name, err)
	}
	s.tasks = append(s.tasks, t)
	s.log.Info("scheduler registered", applogger.String("task", name), applogger.String("spec", spec))
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", applogger.Int("tasks", len(s.tasks)))
}

// Stop stops scheduling and waits for running tasks until ctx ends.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		s.log.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

// RunNow runs every task once, in registration order.
func (s *Scheduler) RunNow() {
	for _, t := range s.tasks {
		s.runTask(t)
	}
}

func (s *Scheduler) runTask(t task) {
	if s.ctx.Err() != nil {
		return
	}
	if failed := t.run(s.ctx); failed > 0 {
		s.log.Warn("scheduler task partial", applogger.String("task", t.name), applogger.Int("failed", failed))
	}
}
