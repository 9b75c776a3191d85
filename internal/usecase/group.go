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

const (
	defaultPageSize = 20
	maxPageSize     = 500
)

// ResolvedMembersResult is the cached payload for a resolved-members lookup.
type ResolvedMembersResult struct {
	Groups      []domain.GroupWithMembers `json:"groups"`
	UniqueStaff int                       `json:"unique_staff"`
}

type GroupUsecase struct {
	groups repository.GroupRepository
	cache  MemberCache
	logger *slog.Logger
}

func NewGroupUsecase(groups repository.GroupRepository, memberCache MemberCache, logger *slog.Logger) *GroupUsecase {
	return &GroupUsecase{
		groups: groups,
		cache:  memberCache,
		logger: logger.With("component", "group_usecase"),
	}
}

func (u *GroupUsecase) Create(ctx context.Context, name string, parentID *uuid.UUID) (*domain.Group, error) {
	if parentID != nil {
		if _, err := u.groups.GetByID(ctx, *parentID); err != nil {
			return nil, fmt.Errorf("look up parent group: %w", err)
		}
	}

	group, err := u.groups.Create(ctx, &domain.Group{
		ID:       uuid.New(),
		Name:     name,
		ParentID: parentID,
	})
	if err != nil {
		return nil, err
	}

	u.cache.InvalidatePattern(ctx, cache.ResolvedMembersPattern)
	return group, nil
}

func (u *GroupUsecase) Get(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	return u.groups.GetByID(ctx, id)
}

func (u *GroupUsecase) List(ctx context.Context, page, pageSize int) ([]*domain.Group, int64, error) {
	return u.groups.List(ctx, clampPage(page), clampPageSize(pageSize))
}

func (u *GroupUsecase) Update(ctx context.Context, id uuid.UUID, input repository.UpdateGroupInput) (*domain.Group, error) {
	if input.ParentID != nil && input.UnsetParent {
		return nil, domain.ErrParentConflict
	}

	if input.ParentID != nil {
		if err := u.checkParent(ctx, id, *input.ParentID); err != nil {
			return nil, err
		}
	}

	group, err := u.groups.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}

	u.cache.InvalidatePattern(ctx, cache.ResolvedMembersPattern)
	return group, nil
}

// checkParent rejects re-parenting that would close a cycle: the new parent
// must exist and must not be the group itself or any of its descendants.
func (u *GroupUsecase) checkParent(ctx context.Context, id, newParent uuid.UUID) error {
	if newParent == id {
		return domain.ErrGroupCycle
	}
	if _, err := u.groups.GetByID(ctx, newParent); err != nil {
		return fmt.Errorf("look up parent group: %w", err)
	}
	descendants, err := u.groups.DescendantIDs(ctx, id)
	if err != nil {
		return fmt.Errorf("list descendants: %w", err)
	}
	for _, d := range descendants {
		if d == newParent {
			return domain.ErrGroupCycle
		}
	}
	return nil
}

func (u *GroupUsecase) Delete(ctx context.Context, id uuid.UUID) error {
	if err := u.groups.Delete(ctx, id); err != nil {
		return err
	}
	u.cache.InvalidatePattern(ctx, cache.ResolvedMembersPattern)
	return nil
}

// ResolvedMembers resolves the full subtree below the group into the
// groups that carry active members, read-through cached.
func (u *GroupUsecase) ResolvedMembers(ctx context.Context, id uuid.UUID) (*ResolvedMembersResult, error) {
	if _, err := u.groups.GetByID(ctx, id); err != nil {
		return nil, err
	}

	key := cache.ResolvedMembersKey(id)
	var cached ResolvedMembersResult
	if u.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	groups, unique, err := u.groups.ResolvedMembers(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &ResolvedMembersResult{Groups: groups, UniqueStaff: unique}
	u.cache.Set(ctx, key, result, cache.ResolvedMembersTTL)
	return result, nil
}

// ResolvedActiveStaff flattens the resolved subtree into a deduplicated
// staff list, preserving resolution order. This is what the scheduling
// side consumes.
func (u *GroupUsecase) ResolvedActiveStaff(ctx context.Context, id uuid.UUID) ([]domain.Staff, error) {
	result, err := u.ResolvedMembers(ctx, id)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{}, result.UniqueStaff)
	staff := make([]domain.Staff, 0, result.UniqueStaff)
	for _, g := range result.Groups {
		for _, s := range g.Members {
			if _, ok := seen[s.ID]; ok {
				continue
			}
			seen[s.ID] = struct{}{}
			staff = append(staff, s)
		}
	}
	return staff, nil
}

func clampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func clampPageSize(size int) int {
	switch {
	case size < 1:
		return defaultPageSize
	case size > maxPageSize:
		return maxPageSize
	default:
		return size
	}
}
