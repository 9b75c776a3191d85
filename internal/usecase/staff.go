package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rosterd/rosterd/internal/cache"
	"github.com/rosterd/rosterd/internal/domain"
	"github.com/rosterd/rosterd/internal/repository"
)

type StaffUsecase struct {
	staff  repository.StaffRepository
	cache  MemberCache
	logger *slog.Logger
}

func NewStaffUsecase(staff repository.StaffRepository, memberCache MemberCache, logger *slog.Logger) *StaffUsecase {
	return &StaffUsecase{
		staff:  staff,
		cache:  memberCache,
		logger: logger.With("component", "staff_usecase"),
	}
}

func (u *StaffUsecase) Create(ctx context.Context, name, email, position string) (*domain.Staff, error) {
	return u.staff.Create(ctx, &domain.Staff{
		ID:       uuid.New(),
		Name:     name,
		Email:    email,
		Position: position,
		Status:   domain.StaffActive,
	})
}

func (u *StaffUsecase) Get(ctx context.Context, id uuid.UUID) (*domain.Staff, error) {
	return u.staff.GetByID(ctx, id)
}

func (u *StaffUsecase) List(ctx context.Context, page, pageSize int) ([]*domain.Staff, int64, error) {
	return u.staff.List(ctx, clampPage(page), clampPageSize(pageSize))
}

// Update patches the staff record. A status change flips who counts as an
// active member, so resolved-member caches are dropped wholesale.
func (u *StaffUsecase) Update(ctx context.Context, id uuid.UUID, input repository.UpdateStaffInput) (*domain.Staff, error) {
	staff, err := u.staff.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}
	u.cache.InvalidatePattern(ctx, cache.ResolvedMembersPattern)
	return staff, nil
}

func (u *StaffUsecase) Delete(ctx context.Context, id uuid.UUID) error {
	if err := u.staff.Delete(ctx, id); err != nil {
		return err
	}
	u.cache.InvalidatePattern(ctx, cache.ResolvedMembersPattern)
	return nil
}
