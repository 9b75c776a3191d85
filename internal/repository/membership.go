package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/rosterd/rosterd/internal/domain"
)

type MembershipRepository interface {
	// Add inserts the (staff, group) edge. Re-adding an existing pair is
	// idempotent and returns the original row.
	Add(ctx context.Context, staffID, groupID uuid.UUID) (*domain.Membership, error)
	Remove(ctx context.Context, id uuid.UUID) error
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.Membership, error)
}
