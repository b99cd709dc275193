// Package scheduler drives periodic refresh cycles. A cron entry fires every
// refresh interval, an immediate run happens at startup, and manual refreshes
// arrive as queued tasks. A single-flight guard keeps overlapping triggers
// from running concurrent cycles.
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"jobradar/internal/cache"
	"jobradar/internal/logger"
	"jobradar/internal/model"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
)

// CycleRunner runs one scrape cycle. Satisfied by the aggregate service.
type CycleRunner interface {
	Run(ctx context.Context) (*model.ScrapeCycleResult, error)
}

type Scheduler struct {
	log      *logger.Logger
	agg      CycleRunner
	store    *cache.Store
	interval time.Duration
	cron     *cron.Cron
	running  atomic.Bool
	lastRun  atomic.Pointer[time.Time]
}

func New(agg CycleRunner, store *cache.Store, interval time.Duration) *Scheduler {
	return &Scheduler{
		log:      logger.New("Scheduler"),
		agg:      agg,
		store:    store,
		interval: interval,
		cron:     cron.New(),
	}
}

// Start registers the periodic entry and kicks off the startup cycle so the
// cache is warm before the first interval elapses.
func (s *Scheduler) Start(ctx context.Context) error {
	spec := fmt.Sprintf("@every %dm", int(s.interval.Minutes()))
	if _, err := s.cron.AddFunc(spec, func() { s.Trigger(ctx) }); err != nil {
		return fmt.Errorf("register cron entry: %w", err)
	}
	s.cron.Start()
	go s.Trigger(ctx)
	s.log.Info().Str("spec", spec).Msg("scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Trigger runs one cycle unless a cycle is already in flight, in which case
// the trigger is dropped. Returns whether a cycle actually ran.
func (s *Scheduler) Trigger(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Info().Msg("cycle already in flight, trigger dropped")
		return false
	}
	defer s.running.Store(false)

	res, err := s.agg.Run(ctx)
	if err != nil {
		s.log.LogErrorf("cycle aborted: %v", err)
		return false
	}
	s.store.Publish(ctx, res)
	now := time.Now()
	s.lastRun.Store(&now)
	return true
}

// Running reports whether a cycle is in flight.
func (s *Scheduler) Running() bool { return s.running.Load() }

// LastRun returns when the last completed cycle published, zero if none has.
func (s *Scheduler) LastRun() time.Time {
	if t := s.lastRun.Load(); t != nil {
		return *t
	}
	return time.Time{}
}

// HandleRefreshTask is the asynq handler for queued manual refreshes.
func (s *Scheduler) HandleRefreshTask(ctx context.Context, _ *asynq.Task) error {
	s.Trigger(ctx)
	return nil
}
