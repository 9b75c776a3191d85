package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rosterd/rosterd/internal/domain"
	"github.com/rosterd/rosterd/internal/metrics"
	"github.com/rosterd/rosterd/internal/repository"
)

// ErrQueueClosed is returned by Submit once the dispatcher has shut down.
var ErrQueueClosed = errors.New("dispatch queue is closed")

// DispatchMessage is the unit of work handed from intake to the worker.
type DispatchMessage struct {
	JobID       uuid.UUID
	GroupID     uuid.UUID
	PeriodBegin time.Time
	CreatedAt   time.Time
}

// MemberSource resolves the active staff of a group, including staff of
// its descendant groups. Implemented by the data-service client, and by
// the group usecase when both services run in one process.
type MemberSource interface {
	ResolvedActiveStaff(ctx context.Context, groupID uuid.UUID) ([]domain.Staff, error)
}

// Dispatcher owns the bounded in-process job queue and the single worker
// that drains it. One worker means jobs run strictly in submission order
// and the generator never contends with itself.
type Dispatcher struct {
	queue       chan DispatchMessage
	jobs        repository.JobRepository
	assignments repository.AssignmentRepository
	members     MemberSource
	generator   *Generator
	logger      *slog.Logger

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(
	capacity int,
	jobs repository.JobRepository,
	assignments repository.AssignmentRepository,
	members MemberSource,
	generator *Generator,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		queue:       make(chan DispatchMessage, capacity),
		jobs:        jobs,
		assignments: assignments,
		members:     members,
		generator:   generator,
		logger:      logger.With("component", "dispatcher"),
	}
}

// Submit enqueues a job, blocking while the queue is full. It fails when
// ctx expires first or the dispatcher is closed.
func (d *Dispatcher) Submit(ctx context.Context, msg DispatchMessage) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}

	select {
	case d.queue <- msg:
		metrics.QueueDepth.Set(float64(len(d.queue)))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops intake. Safe to call more than once. Run drains whatever
// was already accepted before returning.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	close(d.queue)
}

// Run is the worker loop. It processes one job at a time until the queue
// is closed and drained, or ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info("worker started")
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("worker stopping", "reason", ctx.Err())
			return
		case msg, ok := <-d.queue:
			if !ok {
				d.logger.Info("worker stopping", "reason", "queue closed")
				return
			}
			metrics.QueueDepth.Set(float64(len(d.queue)))
			d.process(ctx, msg)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, msg DispatchMessage) {
	logger := d.logger.With("job_id", msg.JobID, "staff_group_id", msg.GroupID)

	if !msg.CreatedAt.IsZero() {
		metrics.JobPickupLatency.Observe(time.Since(msg.CreatedAt).Seconds())
	}

	if err := d.jobs.MarkProcessing(ctx, msg.JobID); err != nil {
		// Reaped, duplicated, or deleted out from under us. Skip rather
		// than run work nobody is waiting on.
		logger.Warn("cannot take job, skipping", "error", err)
		return
	}
	logger.Info("job started")

	if err := d.execute(ctx, msg); err != nil {
		logger.Error("job failed", "error", err)
		if markErr := d.jobs.MarkFailed(ctx, msg.JobID, err.Error()); markErr != nil {
			logger.Error("cannot mark job failed", "error", markErr)
		}
		metrics.JobsProcessedTotal.WithLabelValues("failed").Inc()
		return
	}

	if err := d.jobs.MarkCompleted(ctx, msg.JobID); err != nil {
		logger.Error("cannot mark job completed", "error", err)
		metrics.JobsProcessedTotal.WithLabelValues("failed").Inc()
		return
	}
	logger.Info("job completed")
	metrics.JobsProcessedTotal.WithLabelValues("completed").Inc()
}

func (d *Dispatcher) execute(ctx context.Context, msg DispatchMessage) error {
	staff, err := d.members.ResolvedActiveStaff(ctx, msg.GroupID)
	if err != nil {
		return fmt.Errorf("fetch group members: %w", err)
	}
	if len(staff) == 0 {
		return domain.ErrNoActiveStaff
	}

	staffIDs := make([]uuid.UUID, len(staff))
	for i, s := range staff {
		staffIDs[i] = s.ID
	}

	start := time.Now()
	assignments, err := d.generator.Generate(staffIDs, msg.PeriodBegin, msg.JobID)
	if err != nil {
		return fmt.Errorf("generate schedule: %w", err)
	}
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())

	if err := d.assignments.CreateBatch(ctx, assignments); err != nil {
		return fmt.Errorf("persist assignments: %w", err)
	}
	return nil
}
