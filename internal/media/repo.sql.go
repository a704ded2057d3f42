package media

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitrine-cms/vitrine/internal/shared"
)

// Repository provides PostgreSQL backed persistence for media assets.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const assetColumns = `id, url, public_id, filename, mime_type, size_bytes, folder, created_at`

func scanAsset(row pgx.Row) (Asset, error) {
	var a Asset
	err := row.Scan(&a.ID, &a.URL, &a.PublicID, &a.Filename, &a.MimeType, &a.SizeBytes, &a.Folder, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Asset{}, shared.ErrNotFound
		}
		return Asset{}, err
	}
	return a, nil
}

// ListAssets returns assets newest first, optionally filtered by folder.
func (r *Repository) ListAssets(ctx context.Context, folder string) ([]Asset, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+assetColumns+` FROM media_assets WHERE ($1 = '' OR folder = $1) ORDER BY created_at DESC`,
		folder)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CreateAsset inserts an asset record.
func (r *Repository) CreateAsset(ctx context.Context, a Asset) (Asset, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO media_assets (id, url, public_id, filename, mime_type, size_bytes, folder, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		 RETURNING `+assetColumns,
		uuid.NewString(), a.URL, a.PublicID, a.Filename, a.MimeType, a.SizeBytes, a.Folder)
	return scanAsset(row)
}
