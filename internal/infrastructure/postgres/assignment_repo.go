package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rosterd/rosterd/internal/domain"
)

type AssignmentRepository struct {
	pool *pgxpool.Pool
}

func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

func (r *AssignmentRepository) CreateBatch(ctx context.Context, assignments []domain.ShiftAssignment) error {
	if len(assignments) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin assignment batch: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, a := range assignments {
		batch.Queue(`
			INSERT INTO shift_assignments (id, schedule_job_id, staff_id, date, shift, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			a.ID, a.ScheduleJobID, a.StaffID, a.Date, a.Shift, a.CreatedAt)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert assignment batch: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *AssignmentRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.ShiftAssignment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, schedule_job_id, staff_id, date, shift, created_at
		FROM shift_assignments
		WHERE schedule_job_id = $1
		ORDER BY date, staff_id`,
		jobID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []domain.ShiftAssignment
	for rows.Next() {
		var a domain.ShiftAssignment
		if err := rows.Scan(&a.ID, &a.ScheduleJobID, &a.StaffID, &a.Date, &a.Shift, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}
