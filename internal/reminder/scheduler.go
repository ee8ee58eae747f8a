package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const defaultTickInterval = 30 * time.Second

// ErrStarted is returned by Register once the scheduler is running
var ErrStarted = errors.New("scheduler already started")

// Scheduler fires registered jobs when their triggers match the wall clock.
//
// Each matching job runs in its own goroutine, so a slow job never delays
// the others. A job fires at most once per minute and never overlaps with
// itself: if the previous run is still in flight the tick is skipped.
// Missed minutes are not replayed.
type Scheduler struct {
	logger        *zap.Logger
	interval      time.Duration
	actionTimeout time.Duration
	now           func() time.Time

	mu      sync.Mutex
	jobs    []*jobState
	started bool
	wg      sync.WaitGroup
}

type jobState struct {
	job       Job
	running   atomic.Bool
	lastFired int64 // unix seconds of the last fired minute
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithTickInterval sets how often the wall clock is evaluated
func WithTickInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithActionTimeout bounds each action run; zero means no bound
func WithActionTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		s.actionTimeout = d
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// NewScheduler creates a new Scheduler
func NewScheduler(logger *zap.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		logger:   logger,
		interval: defaultTickInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a job. Jobs can only be added before Run.
func (s *Scheduler) Register(job Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("register %s: %w", job.Name, ErrStarted)
	}
	for _, js := range s.jobs {
		if js.job.Name == job.Name {
			return fmt.Errorf("job %s already registered", job.Name)
		}
	}

	s.jobs = append(s.jobs, &jobState{job: job})
	s.logger.Info("Job registered",
		zap.String("job", job.Name),
		zap.Stringer("kind", job.Kind),
		zap.Stringer("trigger", job.Trigger),
		zap.String("channel_id", job.ChannelID))
	return nil
}

// Jobs returns the registered jobs
func (s *Scheduler) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]Job, len(s.jobs))
	for i, js := range s.jobs {
		jobs[i] = js.job
	}
	return jobs
}

// Run evaluates triggers every tick until ctx is cancelled, then waits for
// in-flight actions.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrStarted
	}
	s.started = true
	jobCount := len(s.jobs)
	s.mu.Unlock()

	s.logger.Info("Scheduler started",
		zap.Int("jobs", jobCount),
		zap.Duration("tick_interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopping, waiting for running jobs")
			s.Wait()
			s.logger.Info("Scheduler stopped")
			return nil

		case <-ticker.C:
			s.Tick(ctx, s.now())
		}
	}
}

// Tick fires every job whose trigger matches now. It returns the names of
// the jobs dispatched; their actions may still be running.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) []string {
	minute := now.Truncate(time.Minute).Unix()

	s.mu.Lock()
	defer s.mu.Unlock()

	var fired []string
	for _, js := range s.jobs {
		if !js.job.Trigger.Matches(now) {
			continue
		}
		if js.lastFired == minute {
			continue
		}
		if !js.running.CompareAndSwap(false, true) {
			s.logger.Warn("Previous run still in progress, skipping tick",
				zap.String("job", js.job.Name),
				zap.Time("tick", now))
			continue
		}

		js.lastFired = minute
		fired = append(fired, js.job.Name)

		s.wg.Add(1)
		go s.fire(ctx, js, now)
	}
	return fired
}

// Wait blocks until every dispatched action has returned
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) fire(ctx context.Context, js *jobState, tick time.Time) {
	defer s.wg.Done()
	defer js.running.Store(false)

	logger := s.logger.With(
		zap.String("job", js.job.Name),
		zap.Stringer("kind", js.job.Kind),
		zap.Time("tick", tick))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", zap.Any("panic", r))
		}
	}()

	if s.actionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.actionTimeout)
		defer cancel()
	}

	start := time.Now()
	if err := js.job.Action(ctx); err != nil {
		logger.Error("Job failed",
			zap.Duration("took", time.Since(start)),
			zap.Error(err))
		return
	}

	logger.Info("Job completed", zap.Duration("took", time.Since(start)))
}
