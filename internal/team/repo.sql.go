package team

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitrine-cms/vitrine/internal/shared"
)

// Repository provides PostgreSQL backed persistence for team members.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const memberColumns = `id, name, role, bio, photo_url, position, is_active, created_at, updated_at`

func scanMember(row pgx.Row) (Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.Name, &m.Role, &m.Bio, &m.PhotoURL, &m.Position, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Member{}, shared.ErrNotFound
		}
		return Member{}, err
	}
	return m, nil
}

// ListMembers returns all members ordered by display position.
func (r *Repository) ListMembers(ctx context.Context) ([]Member, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+memberColumns+` FROM team_members ORDER BY position, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListActiveMembers returns members shown on the public site.
func (r *Repository) ListActiveMembers(ctx context.Context) ([]Member, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+memberColumns+` FROM team_members WHERE is_active ORDER BY position, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetMember fetches one member.
func (r *Repository) GetMember(ctx context.Context, id string) (Member, error) {
	return scanMember(r.pool.QueryRow(ctx, `SELECT `+memberColumns+` FROM team_members WHERE id = $1`, id))
}

// CreateMember inserts a member.
func (r *Repository) CreateMember(ctx context.Context, m Member) (Member, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO team_members (id, name, role, bio, photo_url, position, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		 RETURNING `+memberColumns,
		uuid.NewString(), m.Name, m.Role, m.Bio, m.PhotoURL, m.Position, m.IsActive)
	return scanMember(row)
}

// UpdateMember updates mutable fields of a member.
func (r *Repository) UpdateMember(ctx context.Context, m Member) (Member, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE team_members SET name = $2, role = $3, bio = $4, photo_url = $5, position = $6, is_active = $7, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+memberColumns,
		m.ID, m.Name, m.Role, m.Bio, m.PhotoURL, m.Position, m.IsActive)
	return scanMember(row)
}

// DeleteMember removes a member.
func (r *Repository) DeleteMember(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM team_members WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
