package partners

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitrine-cms/vitrine/internal/shared"
)

// Repository provides PostgreSQL backed persistence for partners.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const partnerColumns = `id, name, logo_url, site_url, position, is_active, created_at, updated_at`

func scanPartner(row pgx.Row) (Partner, error) {
	var p Partner
	err := row.Scan(&p.ID, &p.Name, &p.LogoURL, &p.SiteURL, &p.Position, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Partner{}, shared.ErrNotFound
		}
		return Partner{}, err
	}
	return p, nil
}

func collect(rows pgx.Rows) ([]Partner, error) {
	defer rows.Close()
	var out []Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListPartners returns all partners ordered by display position.
func (r *Repository) ListPartners(ctx context.Context) ([]Partner, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+partnerColumns+` FROM partners ORDER BY position, created_at`)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// ListActivePartners returns partners shown on the public site.
func (r *Repository) ListActivePartners(ctx context.Context) ([]Partner, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+partnerColumns+` FROM partners WHERE is_active ORDER BY position, created_at`)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// GetPartner fetches one partner.
func (r *Repository) GetPartner(ctx context.Context, id string) (Partner, error) {
	return scanPartner(r.pool.QueryRow(ctx, `SELECT `+partnerColumns+` FROM partners WHERE id = $1`, id))
}

// CreatePartner inserts a partner.
func (r *Repository) CreatePartner(ctx context.Context, p Partner) (Partner, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO partners (id, name, logo_url, site_url, position, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		 RETURNING `+partnerColumns,
		uuid.NewString(), p.Name, p.LogoURL, p.SiteURL, p.Position, p.IsActive)
	return scanPartner(row)
}

// UpdatePartner updates mutable fields of a partner.
func (r *Repository) UpdatePartner(ctx context.Context, p Partner) (Partner, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE partners SET name = $2, logo_url = $3, site_url = $4, position = $5, is_active = $6, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+partnerColumns,
		p.ID, p.Name, p.LogoURL, p.SiteURL, p.Position, p.IsActive)
	return scanPartner(row)
}

// DeletePartner removes a partner.
func (r *Repository) DeletePartner(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM partners WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
