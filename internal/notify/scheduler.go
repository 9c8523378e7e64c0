package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/rickgao/tickerwatch/internal/metrics"
)

// Config holds scheduler configuration.
type Config struct {
	Location        *time.Location // Timezone for cron schedules (default: UTC)
	PriceSchedules  []string       // Standard cron specs for the price job
	PriceInterval   time.Duration  // Extra fixed-interval price trigger (0 disables)
	NewsInterval    time.Duration  // News scan interval (default: 30m)
	CleanupInterval time.Duration  // Eviction sweep interval (default: 24h)
	RunOnStart      bool           // Fire price and news once on Start
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Location:        time.UTC,
		PriceSchedules:  []string{"0 8 * * *", "30 9 * * *", "0 0 * * *"},
		NewsInterval:    30 * time.Minute,
		CleanupInterval: 24 * time.Hour,
	}
}

// guardedJob makes a Job single-flight. Every trigger of the same job,
// including all price anchors, shares one guard.
type guardedJob struct {
	job     Job
	running atomic.Bool
}

// Scheduler triggers jobs on their schedules.
type Scheduler struct {
	cfg     Config
	cron    *cron.Cron
	jobs    map[string]*guardedJob
	entries map[cron.EntryID]string
	metrics *metrics.Metrics
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Scheduler for the price, news and cleanup jobs. Any job may be
// nil to leave it unscheduled.
func New(cfg Config, price, news, cleanup Job, m *metrics.Metrics, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	s := &Scheduler{
		cfg:     cfg,
		jobs:    make(map[string]*guardedJob),
		entries: make(map[cron.EntryID]string),
		metrics: m,
		logger:  logger,
		ctx:     context.Background(),
	}

	cl := cronLogger{logger}
	s.cron = cron.New(
		cron.WithLocation(cfg.Location),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl)),
	)

	if price != nil {
		g := s.register(price)
		for _, spec := range cfg.PriceSchedules {
			id, err := s.cron.AddFunc(spec, func() { s.fire(g) })
			if err != nil {
				return nil, fmt.Errorf("price schedule %q: %w", spec, err)
			}
			s.entries[id] = g.job.Name()
		}
		if cfg.PriceInterval > 0 {
			s.every(cfg.PriceInterval, g)
		}
	}
	if news != nil {
		if cfg.NewsInterval <= 0 {
			return nil, errors.New("news interval must be positive")
		}
		s.every(cfg.NewsInterval, s.register(news))
	}
	if cleanup != nil {
		if cfg.CleanupInterval <= 0 {
			return nil, errors.New("cleanup interval must be positive")
		}
		s.every(cfg.CleanupInterval, s.register(cleanup))
	}

	return s, nil
}

func (s *Scheduler) register(job Job) *guardedJob {
	g := &guardedJob{job: job}
	s.jobs[job.Name()] = g
	return g
}

func (s *Scheduler) every(d time.Duration, g *guardedJob) {
	id := s.cron.Schedule(cron.Every(d), cron.FuncJob(func() { s.fire(g) }))
	s.entries[id] = g.job.Name()
}

// Start begins firing jobs on schedule.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()

	if s.cfg.RunOnStart {
		for _, name := range []string{JobPrice, JobNews} {
			g, ok := s.jobs[name]
			if !ok {
				continue
			}
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.fire(g)
			}()
		}
	}

	s.logger.Info("scheduler started",
		"timezone", s.cfg.Location.String(),
		"price_schedules", s.cfg.PriceSchedules,
		"price_interval", s.cfg.PriceInterval,
		"news_interval", s.cfg.NewsInterval,
		"cleanup_interval", s.cfg.CleanupInterval,
		"run_on_start", s.cfg.RunOnStart,
	)
	return nil
}

// Stop cancels in-flight jobs and waits for them to return.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	cronDone := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunNow fires the named job synchronously. It returns false when the job is
// unknown or already running.
func (s *Scheduler) RunNow(name string) bool {
	g, ok := s.jobs[name]
	if !ok {
		return false
	}
	return s.fire(g)
}

// NextRuns reports the earliest upcoming trigger per job. It is empty until
// Start.
func (s *Scheduler) NextRuns() map[string]time.Time {
	next := make(map[string]time.Time)
	for _, e := range s.cron.Entries() {
		name, ok := s.entries[e.ID]
		if !ok || e.Next.IsZero() {
			continue
		}
		if cur, ok := next[name]; !ok || e.Next.Before(cur) {
			next[name] = e.Next
		}
	}
	return next
}

// fire runs g once unless it is already running. It reports whether the job
// ran.
func (s *Scheduler) fire(g *guardedJob) (ran bool) {
	name := g.job.Name()
	if !g.running.CompareAndSwap(false, true) {
		s.logger.Warn("job still running, dropping trigger", "job", name)
		s.metrics.JobRun(name, "dropped")
		return false
	}
	defer g.running.Store(false)

	ran = true
	runID := uuid.NewString()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("job panicked",
				"job", name,
				"run_id", runID,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			s.metrics.JobRun(name, "panicked")
		}
	}()

	if err := g.job.Run(s.ctx, runID); err != nil {
		s.logger.Warn("job failed", "job", name, "run_id", runID, "error", err)
		s.metrics.JobRun(name, "failed")
		return ran
	}

	s.metrics.JobRun(name, "completed")
	s.metrics.JobDuration(name, time.Since(start))
	return ran
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
