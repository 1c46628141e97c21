// Package scheduler runs periodic catalog maintenance on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/logger"
	"github.com/mrlokans/bookcatalog/internal/tasks"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule validates a five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// NextRunTime returns the next activation of schedule after now.
func NextRunTime(schedule string, now time.Time) (time.Time, error) {
	sched, err := parser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(now), nil
}

// Enqueuer adds a task to the background queue.
type Enqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

// MaintenanceScheduler periodically enqueues a dangling link sweep.
type MaintenanceScheduler struct {
	queue Enqueuer
	cfg   config.Maintenance
	log   *logger.Logger

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.Mutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewMaintenanceScheduler creates a new scheduler instance.
func NewMaintenanceScheduler(queue Enqueuer, cfg config.Maintenance, log *logger.Logger) *MaintenanceScheduler {
	if log == nil {
		log = logger.NewNop()
	}
	return &MaintenanceScheduler{
		queue: queue,
		cfg:   cfg,
		log:   log,
		cron:  cron.New(cron.WithParser(parser)),
	}
}

// Start begins the scheduler if maintenance is enabled. It stops on its own
// when ctx is cancelled.
func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if !s.cfg.Enabled {
		s.log.Info("maintenance scheduler disabled")
		return nil
	}
	if err := ValidateCronSchedule(s.cfg.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.cfg.Schedule, s.RunOnce)
	if err != nil {
		return fmt.Errorf("failed to schedule maintenance job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	next, _ := NextRunTime(s.cfg.Schedule, time.Now())
	s.log.Info("maintenance scheduler started", "schedule", s.cfg.Schedule, "next_run", next)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running job to finish and stops the scheduler.
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.cron.Remove(s.entryID)

	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.isRunning = false
	s.log.Info("maintenance scheduler stopped")
}

// IsRunning reports whether the cron loop is active.
func (s *MaintenanceScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// RunOnce enqueues a single sweep. Errors are logged, not returned, since
// it runs from the cron goroutine.
func (s *MaintenanceScheduler) RunOnce() {
	id, err := s.queue.Enqueue(tasks.PruneDanglingLinksTask{Trigger: "cron"})
	if err != nil {
		s.log.Error("failed to enqueue dangling link sweep", "error", err)
		return
	}
	s.log.Info("enqueued dangling link sweep", "task_id", id)
}
