package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/rosterd/rosterd/internal/domain"
)

// UpdateStaffInput is a partial patch: nil fields leave the current value
// untouched. Status transitions are unrestricted.
type UpdateStaffInput struct {
	Name     *string
	Email    *string
	Position *string
	Status   *domain.StaffStatus
}

type StaffRepository interface {
	Create(ctx context.Context, s *domain.Staff) (*domain.Staff, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Staff, error)
	GetByEmail(ctx context.Context, email string) (*domain.Staff, error)
	List(ctx context.Context, page, pageSize int) ([]*domain.Staff, int64, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateStaffInput) (*domain.Staff, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// ActiveByGroup lists ACTIVE staff with a direct membership edge to the
	// group, ordered by name.
	ActiveByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.Staff, error)
}
