package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rosterd/rosterd/internal/cache"
	"github.com/rosterd/rosterd/internal/domain"
	"github.com/rosterd/rosterd/internal/repository"
)

type MembershipUsecase struct {
	memberships repository.MembershipRepository
	staff       repository.StaffRepository
	groups      repository.GroupRepository
	cache       MemberCache
	logger      *slog.Logger
}

func NewMembershipUsecase(
	memberships repository.MembershipRepository,
	staff repository.StaffRepository,
	groups repository.GroupRepository,
	memberCache MemberCache,
	logger *slog.Logger,
) *MembershipUsecase {
	return &MembershipUsecase{
		memberships: memberships,
		staff:       staff,
		groups:      groups,
		cache:       memberCache,
		logger:      logger.With("component", "membership_usecase"),
	}
}

// Add links staff to a group. Both sides must exist; re-adding an existing
// pair returns the original membership.
func (u *MembershipUsecase) Add(ctx context.Context, staffID, groupID uuid.UUID) (*domain.Membership, error) {
	if _, err := u.staff.GetByID(ctx, staffID); err != nil {
		return nil, fmt.Errorf("look up staff: %w", err)
	}
	if _, err := u.groups.GetByID(ctx, groupID); err != nil {
		return nil, fmt.Errorf("look up group: %w", err)
	}

	membership, err := u.memberships.Add(ctx, staffID, groupID)
	if err != nil {
		return nil, err
	}

	u.cache.InvalidatePattern(ctx, cache.ResolvedMembersPattern)
	return membership, nil
}

func (u *MembershipUsecase) Remove(ctx context.Context, id uuid.UUID) error {
	if err := u.memberships.Remove(ctx, id); err != nil {
		return err
	}
	u.cache.InvalidatePattern(ctx, cache.ResolvedMembersPattern)
	return nil
}

// GroupMembers lists the ACTIVE staff directly attached to a group,
// without descending into child groups.
func (u *MembershipUsecase) GroupMembers(ctx context.Context, groupID uuid.UUID) ([]*domain.Staff, error) {
	if _, err := u.groups.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return u.staff.ActiveByGroup(ctx, groupID)
}
