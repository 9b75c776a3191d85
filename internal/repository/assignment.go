package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/rosterd/rosterd/internal/domain"
)

type AssignmentRepository interface {
	// CreateBatch inserts all rows in a single transaction: either every
	// assignment lands or none do.
	CreateBatch(ctx context.Context, assignments []domain.ShiftAssignment) error

	// ListByJob returns a job's assignments ordered by (date, staff_id).
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.ShiftAssignment, error)
}
