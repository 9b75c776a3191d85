package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/rosterd/rosterd/internal/domain"
)

// UpdateGroupInput is a partial patch: nil fields leave the current value
// untouched. UnsetParent clears parent_id to NULL and is mutually exclusive
// with ParentID.
type UpdateGroupInput struct {
	Name        *string
	ParentID    *uuid.UUID
	UnsetParent bool
}

// Usecases depend on interfaces, not concrete implementations, so the SQL
// backend can be swapped and tests can pass fakes.
type GroupRepository interface {
	Create(ctx context.Context, g *domain.Group) (*domain.Group, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error)
	GetByName(ctx context.Context, name string) (*domain.Group, error)
	List(ctx context.Context, page, pageSize int) ([]*domain.Group, int64, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateGroupInput) (*domain.Group, error)
	// Delete removes the group and its memberships. Fails with
	// ErrGroupHasChildren while any group still points at it as parent.
	Delete(ctx context.Context, id uuid.UUID) error

	// DescendantIDs returns every group reachable from rootID via parent
	// edges, excluding rootID itself, sorted by id.
	DescendantIDs(ctx context.Context, rootID uuid.UUID) ([]uuid.UUID, error)

	// ResolvedMembers walks the subtree rooted at rootID and returns the
	// groups that have at least one ACTIVE direct member, sorted by group
	// name with members sorted by staff name, plus the count of unique
	// active staff across all of them.
	ResolvedMembers(ctx context.Context, rootID uuid.UUID) ([]domain.GroupWithMembers, int, error)
}
