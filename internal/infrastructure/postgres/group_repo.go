package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rosterd/rosterd/internal/domain"
	"github.com/rosterd/rosterd/internal/repository"
)

type GroupRepository struct {
	pool *pgxpool.Pool
}

func NewGroupRepository(pool *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{pool: pool}
}

const groupColumns = `id, name, parent_id, created_at, updated_at`

func (r *GroupRepository) Create(ctx context.Context, g *domain.Group) (*domain.Group, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO staff_groups (id, name, parent_id)
		VALUES ($1, $2, $3)
		RETURNING `+groupColumns,
		g.ID, g.Name, g.ParentID)

	created, err := scanGroup(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrDuplicateGroupName
		}
		return nil, err
	}
	return created, nil
}

func (r *GroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+groupColumns+` FROM staff_groups WHERE id = $1`, id)
	return scanGroup(row)
}

func (r *GroupRepository) GetByName(ctx context.Context, name string) (*domain.Group, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+groupColumns+` FROM staff_groups WHERE name = $1`, name)
	return scanGroup(row)
}

func (r *GroupRepository) List(ctx context.Context, page, pageSize int) ([]*domain.Group, int64, error) {
	offset := (page - 1) * pageSize

	rows, err := r.pool.Query(ctx, `
		SELECT `+groupColumns+`
		FROM staff_groups
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var groups []*domain.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, 0, err
		}
		groups = append(groups, g)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM staff_groups`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count groups: %w", err)
	}
	return groups, total, nil
}

func (r *GroupRepository) Update(ctx context.Context, id uuid.UUID, input repository.UpdateGroupInput) (*domain.Group, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Absent patch fields keep the current value; there is no way to clear
	// the parent except the explicit UnsetParent flag.
	name := current.Name
	if input.Name != nil {
		name = *input.Name
	}
	parentID := current.ParentID
	if input.UnsetParent {
		parentID = nil
	} else if input.ParentID != nil {
		parentID = input.ParentID
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE staff_groups
		SET name = $1, parent_id = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING `+groupColumns,
		name, parentID, id)

	updated, err := scanGroup(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrDuplicateGroupName
		}
		return nil, err
	}
	return updated, nil
}

func (r *GroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete group: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var hasChildren bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM staff_groups WHERE parent_id = $1)`, id).Scan(&hasChildren)
	if err != nil {
		return fmt.Errorf("check group children: %w", err)
	}
	if hasChildren {
		return domain.ErrGroupHasChildren
	}

	if _, err := tx.Exec(ctx, `DELETE FROM group_memberships WHERE group_id = $1`, id); err != nil {
		return fmt.Errorf("delete group memberships: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM staff_groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGroupNotFound
	}

	return tx.Commit(ctx)
}

func (r *GroupRepository) DescendantIDs(ctx context.Context, rootID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		WITH RECURSIVE descendants AS (
			SELECT id FROM staff_groups WHERE id = $1
			UNION
			SELECT sg.id FROM staff_groups sg
			INNER JOIN descendants d ON sg.parent_id = d.id
		)
		SELECT id FROM descendants WHERE id <> $1 ORDER BY id`,
		rootID)
	if err != nil {
		return nil, fmt.Errorf("group descendants: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan descendant id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *GroupRepository) ResolvedMembers(ctx context.Context, rootID uuid.UUID) ([]domain.GroupWithMembers, int, error) {
	// The recursive closure joined with memberships and staff, ordered by
	// (group name, staff name), lets a single streaming pass group the rows.
	rows, err := r.pool.Query(ctx, `
		WITH RECURSIVE descendants AS (
			SELECT id FROM staff_groups WHERE id = $1
			UNION
			SELECT sg.id FROM staff_groups sg
			INNER JOIN descendants d ON sg.parent_id = d.id
		)
		SELECT
			sg.id, sg.name, sg.parent_id, sg.created_at, sg.updated_at,
			s.id, s.name, s.email, s.position, s.status, s.created_at, s.updated_at
		FROM descendants d
		JOIN staff_groups sg      ON sg.id = d.id
		JOIN group_memberships gm ON gm.group_id = sg.id
		JOIN staff s              ON s.id = gm.staff_id
		WHERE s.status = 'ACTIVE'
		ORDER BY sg.name, s.name`,
		rootID)
	if err != nil {
		return nil, 0, fmt.Errorf("resolved members: %w", err)
	}
	defer rows.Close()

	var result []domain.GroupWithMembers
	seen := make(map[uuid.UUID]struct{})

	for rows.Next() {
		var g domain.Group
		var s domain.Staff
		err := rows.Scan(
			&g.ID, &g.Name, &g.ParentID, &g.CreatedAt, &g.UpdatedAt,
			&s.ID, &s.Name, &s.Email, &s.Position, &s.Status, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan resolved member: %w", err)
		}

		seen[s.ID] = struct{}{}
		if n := len(result); n > 0 && result[n-1].Group.ID == g.ID {
			result[n-1].Members = append(result[n-1].Members, s)
		} else {
			result = append(result, domain.GroupWithMembers{Group: g, Members: []domain.Staff{s}})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("resolved members rows: %w", err)
	}

	return result, len(seen), nil
}

// pgx.Row and pgx.Rows both implement this.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanGroup(row rowScanner) (*domain.Group, error) {
	var g domain.Group
	err := row.Scan(&g.ID, &g.Name, &g.ParentID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, fmt.Errorf("scan group: %w", err)
	}
	return &g, nil
}
