package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rosterd/rosterd/internal/cache"
	"github.com/rosterd/rosterd/internal/domain"
	"github.com/rosterd/rosterd/internal/repository"
)

// BatchStaffItem is one staff record in a bulk import, with the names of
// the groups it should be a member of.
type BatchStaffItem struct {
	Name     string
	Email    string
	Position string
	Groups   []string
}

type BatchItemOutcome string

const (
	BatchCreated  BatchItemOutcome = "created"
	BatchExisting BatchItemOutcome = "existing"
	BatchFailed   BatchItemOutcome = "failed"
)

// BatchItemResult reports what happened to a single import item.
type BatchItemResult struct {
	Email   string           `json:"email"`
	StaffID *uuid.UUID       `json:"staff_id,omitempty"`
	Outcome BatchItemOutcome `json:"outcome"`
	Error   string           `json:"error,omitempty"`
}

type BatchUsecase struct {
	staff       repository.StaffRepository
	groups      repository.GroupRepository
	memberships repository.MembershipRepository
	cache       MemberCache
	logger      *slog.Logger
}

func NewBatchUsecase(
	staff repository.StaffRepository,
	groups repository.GroupRepository,
	memberships repository.MembershipRepository,
	memberCache MemberCache,
	logger *slog.Logger,
) *BatchUsecase {
	return &BatchUsecase{
		staff:       staff,
		groups:      groups,
		memberships: memberships,
		cache:       memberCache,
		logger:      logger.With("component", "batch_usecase"),
	}
}

// ImportStaff processes items independently: a bad record fails on its own
// without rolling back the rest of the import. A duplicate email reuses the
// existing staff row and still applies the requested memberships.
func (u *BatchUsecase) ImportStaff(ctx context.Context, items []BatchStaffItem) []BatchItemResult {
	results := make([]BatchItemResult, 0, len(items))
	for _, item := range items {
		results = append(results, u.importOne(ctx, item))
	}
	u.cache.InvalidatePattern(ctx, cache.ResolvedMembersPattern)
	return results
}

func (u *BatchUsecase) importOne(ctx context.Context, item BatchStaffItem) BatchItemResult {
	result := BatchItemResult{Email: item.Email, Outcome: BatchCreated}

	staff, err := u.staff.Create(ctx, &domain.Staff{
		ID:       uuid.New(),
		Name:     item.Name,
		Email:    item.Email,
		Position: item.Position,
		Status:   domain.StaffActive,
	})
	if errors.Is(err, domain.ErrDuplicateEmail) {
		staff, err = u.staff.GetByEmail(ctx, item.Email)
		result.Outcome = BatchExisting
	}
	if err != nil {
		u.logger.Warn("batch import item failed", "email", item.Email, "error", err)
		return BatchItemResult{Email: item.Email, Outcome: BatchFailed, Error: err.Error()}
	}

	result.StaffID = &staff.ID
	for _, groupName := range item.Groups {
		if err := u.addToGroup(ctx, staff.ID, groupName); err != nil {
			u.logger.Warn("batch import item failed", "email", item.Email, "error", err)
			return BatchItemResult{
				Email:   item.Email,
				StaffID: &staff.ID,
				Outcome: BatchFailed,
				Error:   err.Error(),
			}
		}
	}
	return result
}

func (u *BatchUsecase) addToGroup(ctx context.Context, staffID uuid.UUID, groupName string) error {
	group, err := u.groups.GetByName(ctx, groupName)
	if err != nil {
		return fmt.Errorf("look up group %q: %w", groupName, err)
	}
	if _, err := u.memberships.Add(ctx, staffID, group.ID); err != nil {
		return fmt.Errorf("add to group %q: %w", groupName, err)
	}
	return nil
}
