package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rosterd/rosterd/internal/domain"
)

type JobRepository interface {
	Create(ctx context.Context, job *domain.ScheduleJob) (*domain.ScheduleJob, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ScheduleJob, error)

	// Status transitions are guarded in SQL: each update matches only the
	// legal predecessor status and reports ErrIllegalTransition otherwise.
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	MarkCompleted(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error

	// FailStale terminates PROCESSING jobs not touched since cutoff,
	// leftovers of a worker that died mid-job.
	FailStale(ctx context.Context, cutoff time.Time, limit int) (int, error)
}
