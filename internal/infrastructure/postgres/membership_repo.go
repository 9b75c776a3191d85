package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rosterd/rosterd/internal/domain"
)

type MembershipRepository struct {
	pool *pgxpool.Pool
}

func NewMembershipRepository(pool *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{pool: pool}
}

func (r *MembershipRepository) Add(ctx context.Context, staffID, groupID uuid.UUID) (*domain.Membership, error) {
	// The no-op DO UPDATE makes RETURNING yield the existing row on a
	// duplicate (staff_id, group_id), so re-adds are idempotent.
	row := r.pool.QueryRow(ctx, `
		INSERT INTO group_memberships (id, staff_id, group_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (staff_id, group_id) DO UPDATE SET staff_id = EXCLUDED.staff_id
		RETURNING id, staff_id, group_id, created_at`,
		uuid.New(), staffID, groupID)

	var m domain.Membership
	if err := row.Scan(&m.ID, &m.StaffID, &m.GroupID, &m.CreatedAt); err != nil {
		return nil, fmt.Errorf("add membership: %w", err)
	}
	return &m, nil
}

func (r *MembershipRepository) Remove(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM group_memberships WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("remove membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMembershipNotFound
	}
	return nil
}

func (r *MembershipRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.Membership, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, staff_id, group_id, created_at
		FROM group_memberships
		WHERE group_id = $1
		ORDER BY created_at`,
		groupID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	var memberships []*domain.Membership
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(&m.ID, &m.StaffID, &m.GroupID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		memberships = append(memberships, &m)
	}
	return memberships, rows.Err()
}
