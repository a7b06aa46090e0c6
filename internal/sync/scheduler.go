package sync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"radsync/internal/domain"
)

// Schedules holds the cron specs for the three periodic jobs. An empty spec
// disables that job.
type Schedules struct {
	Vouchers    string // pull + project vouchers
	Activations string // activation scan
	Deletions   string // deletion reconciliation
}

// Scheduler runs the engine's periodic jobs via cron. A shared mutex
// serializes the jobs: concurrent engine invocations against the same store
// are not supported, so overlapping ticks wait for each other.
type Scheduler struct {
	cron      *cron.Cron
	projector *Projector
	detector  *Detector
	deleter   *Deleter
	source    domain.VoucherSource
	timeout   time.Duration
	logger    *slog.Logger
	mu        sync.Mutex
}

// NewScheduler creates a Scheduler over the engine components. timeout
// bounds each run (0 means 30s, matching the upstream client).
func NewScheduler(projector *Projector, detector *Detector, deleter *Deleter, source domain.VoucherSource, timeout time.Duration, logger *slog.Logger) *Scheduler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scheduler{
		cron:      cron.New(),
		projector: projector,
		detector:  detector,
		deleter:   deleter,
		source:    source,
		timeout:   timeout,
		logger:    logger,
	}
}

// Start registers the configured jobs and starts the cron scheduler.
func (s *Scheduler) Start(schedules Schedules) error {
	jobs := []struct {
		name string
		spec string
		run  func(ctx context.Context) error
	}{
		{"voucher-sync", schedules.Vouchers, func(ctx context.Context) error {
			_, err := s.projector.SyncFromUpstream(ctx, s.source)
			return err
		}},
		{"activation-scan", schedules.Activations, func(ctx context.Context) error {
			_, err := s.detector.Scan(ctx)
			return err
		}},
		{"deletion-sync", schedules.Deletions, func(ctx context.Context) error {
			_, err := s.deleter.Reconcile(ctx)
			return err
		}},
	}

	for _, job := range jobs {
		if job.spec == "" {
			continue
		}
		name, run := job.name, job.run
		if _, err := s.cron.AddFunc(job.spec, func() { s.runJob(name, run) }); err != nil {
			return err
		}
		s.logger.Info("scheduled job", "job", name, "spec", job.spec)
	}

	s.cron.Start()
	s.logger.Info("sync scheduler started")
	return nil
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("sync scheduler stopped")
}

func (s *Scheduler) runJob(name string, run func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := run(ctx); err != nil {
		s.logger.Warn("scheduled run failed", "job", name, "error", err,
			"duration", time.Since(start))
		return
	}
	s.logger.Debug("scheduled run finished", "job", name, "duration", time.Since(start))
}
