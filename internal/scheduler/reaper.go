package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/rosterd/rosterd/internal/metrics"
	"github.com/rosterd/rosterd/internal/repository"
)

const reapBatchSize = 100

// Reaper periodically fails PROCESSING jobs whose worker died before
// reaching a terminal status, so they do not look in-flight forever.
type Reaper struct {
	jobs     repository.JobRepository
	logger   *slog.Logger
	interval time.Duration
	cutoff   time.Duration
}

func NewReaper(jobs repository.JobRepository, interval, cutoff time.Duration, logger *slog.Logger) *Reaper {
	return &Reaper{
		jobs:     jobs,
		logger:   logger.With("component", "reaper"),
		interval: interval,
		cutoff:   cutoff,
	}
}

// Start runs the reap loop until ctx is cancelled.
func (r *Reaper) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reaper started", "interval", r.interval, "cutoff", r.cutoff)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reaper stopping")
			return
		case <-ticker.C:
			r.reap(ctx)
		}
	}
}

func (r *Reaper) reap(ctx context.Context) {
	reaped, err := r.jobs.FailStale(ctx, time.Now().Add(-r.cutoff), reapBatchSize)
	if err != nil {
		r.logger.Error("reap pass failed", "error", err)
		return
	}
	if reaped > 0 {
		r.logger.Warn("failed stale jobs", "count", reaped)
		metrics.ReapedJobsTotal.Add(float64(reaped))
	}
}
