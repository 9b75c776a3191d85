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

type StaffRepository struct {
	pool *pgxpool.Pool
}

func NewStaffRepository(pool *pgxpool.Pool) *StaffRepository {
	return &StaffRepository{pool: pool}
}

const staffColumns = `id, name, email, position, status, created_at, updated_at`

func (r *StaffRepository) Create(ctx context.Context, s *domain.Staff) (*domain.Staff, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO staff (id, name, email, position, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+staffColumns,
		s.ID, s.Name, s.Email, s.Position, s.Status)

	created, err := scanStaff(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, err
	}
	return created, nil
}

func (r *StaffRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Staff, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+staffColumns+` FROM staff WHERE id = $1`, id)
	return scanStaff(row)
}

func (r *StaffRepository) GetByEmail(ctx context.Context, email string) (*domain.Staff, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+staffColumns+` FROM staff WHERE email = $1`, email)
	return scanStaff(row)
}

func (r *StaffRepository) List(ctx context.Context, page, pageSize int) ([]*domain.Staff, int64, error) {
	offset := (page - 1) * pageSize

	rows, err := r.pool.Query(ctx, `
		SELECT `+staffColumns+`
		FROM staff
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list staff: %w", err)
	}
	defer rows.Close()

	var staff []*domain.Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, 0, err
		}
		staff = append(staff, s)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM staff`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count staff: %w", err)
	}
	return staff, total, nil
}

func (r *StaffRepository) Update(ctx context.Context, id uuid.UUID, input repository.UpdateStaffInput) (*domain.Staff, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := current.Name
	if input.Name != nil {
		name = *input.Name
	}
	email := current.Email
	if input.Email != nil {
		email = *input.Email
	}
	position := current.Position
	if input.Position != nil {
		position = *input.Position
	}
	status := current.Status
	if input.Status != nil {
		status = *input.Status
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE staff
		SET name = $1, email = $2, position = $3, status = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING `+staffColumns,
		name, email, position, status, id)

	updated, err := scanStaff(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, err
	}
	return updated, nil
}

func (r *StaffRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete staff: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM group_memberships WHERE staff_id = $1`, id); err != nil {
		return fmt.Errorf("delete staff memberships: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete staff: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStaffNotFound
	}

	return tx.Commit(ctx)
}

func (r *StaffRepository) ActiveByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.Staff, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.name, s.email, s.position, s.status, s.created_at, s.updated_at
		FROM staff s
		JOIN group_memberships gm ON gm.staff_id = s.id
		WHERE gm.group_id = $1 AND s.status = 'ACTIVE'
		ORDER BY s.name`,
		groupID)
	if err != nil {
		return nil, fmt.Errorf("active staff by group: %w", err)
	}
	defer rows.Close()

	var staff []*domain.Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		staff = append(staff, s)
	}
	return staff, rows.Err()
}

func scanStaff(row rowScanner) (*domain.Staff, error) {
	var s domain.Staff
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Position, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStaffNotFound
		}
		return nil, fmt.Errorf("scan staff: %w", err)
	}
	return &s, nil
}
