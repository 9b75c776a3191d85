package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rosterd/rosterd/internal/domain"
)

type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

const jobColumns = `id, staff_group_id, period_begin_date, status, error_message, created_at, updated_at, completed_at`

func (r *JobRepository) Create(ctx context.Context, job *domain.ScheduleJob) (*domain.ScheduleJob, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO schedule_jobs (id, staff_group_id, period_begin_date, status)
		VALUES ($1, $2, $3, $4)
		RETURNING `+jobColumns,
		job.ID, job.StaffGroupID, job.PeriodBegin, job.Status)
	return scanJob(row)
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ScheduleJob, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM schedule_jobs WHERE id = $1`, id)
	return scanJob(row)
}

func (r *JobRepository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	return r.transition(ctx, id, `
		UPDATE schedule_jobs
		SET status = 'PROCESSING', updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING'`)
}

func (r *JobRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	return r.transition(ctx, id, `
		UPDATE schedule_jobs
		SET status = 'COMPLETED', completed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'PROCESSING'`)
}

func (r *JobRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE schedule_jobs
		SET status = 'FAILED', error_message = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'PROCESSING'`,
		id, errorMessage)
	if err != nil {
		return fmt.Errorf("mark job failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.transitionError(ctx, id)
	}
	return nil
}

func (r *JobRepository) FailStale(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE schedule_jobs
		SET status     = 'FAILED',
		    error_message = 'worker lost',
		    updated_at = NOW()
		WHERE id IN (
			SELECT id FROM schedule_jobs
			WHERE  status     = 'PROCESSING'
			  AND  updated_at < $1
			ORDER BY updated_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)`, cutoff, limit)
	return int(tag.RowsAffected()), err
}

// transition runs a guarded status update. Zero rows affected means the row
// is either absent or in a status the guard refuses to move from.
func (r *JobRepository) transition(ctx context.Context, id uuid.UUID, query string) error {
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("job transition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.transitionError(ctx, id)
	}
	return nil
}

func (r *JobRepository) transitionError(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); errors.Is(err, domain.ErrJobNotFound) {
		return domain.ErrJobNotFound
	}
	return domain.ErrIllegalTransition
}

func scanJob(row rowScanner) (*domain.ScheduleJob, error) {
	var j domain.ScheduleJob
	err := row.Scan(
		&j.ID, &j.StaffGroupID, &j.PeriodBegin, &j.Status,
		&j.ErrorMessage, &j.CreatedAt, &j.UpdatedAt, &j.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("scan schedule job: %w", err)
	}
	return &j, nil
}
