package contact

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitrine-cms/vitrine/internal/shared"
)

// Repository provides PostgreSQL backed persistence for the contact block.
// The table holds exactly one row keyed by a fixed id.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const infoRowID = "default"

// GetInfo fetches the contact block.
func (r *Repository) GetInfo(ctx context.Context) (Info, error) {
	var info Info
	err := r.pool.QueryRow(ctx,
		`SELECT email, phone, address, instagram, linkedin, updated_at FROM contact_info WHERE id = $1`,
		infoRowID).Scan(&info.Email, &info.Phone, &info.Address, &info.Instagram, &info.LinkedIn, &info.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Info{}, shared.ErrNotFound
		}
		return Info{}, err
	}
	return info, nil
}

// UpsertInfo replaces the contact block.
func (r *Repository) UpsertInfo(ctx context.Context, info Info) (Info, error) {
	var out Info
	err := r.pool.QueryRow(ctx,
		`INSERT INTO contact_info (id, email, phone, address, instagram, linkedin, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW())
		 ON CONFLICT (id) DO UPDATE SET
		   email = EXCLUDED.email, phone = EXCLUDED.phone, address = EXCLUDED.address,
		   instagram = EXCLUDED.instagram, linkedin = EXCLUDED.linkedin, updated_at = NOW()
		 RETURNING email, phone, address, instagram, linkedin, updated_at`,
		infoRowID, info.Email, info.Phone, info.Address, info.Instagram, info.LinkedIn).
		Scan(&out.Email, &out.Phone, &out.Address, &out.Instagram, &out.LinkedIn, &out.UpdatedAt)
	return out, err
}
