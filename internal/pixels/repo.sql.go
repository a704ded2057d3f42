package pixels

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitrine-cms/vitrine/internal/shared"
)

// Repository provides PostgreSQL backed persistence for tracking pixels.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const pixelColumns = `id, provider, label, snippet, is_enabled, created_at, updated_at`

func scanPixel(row pgx.Row) (Pixel, error) {
	var p Pixel
	err := row.Scan(&p.ID, &p.Provider, &p.Label, &p.Snippet, &p.IsEnabled, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Pixel{}, shared.ErrNotFound
		}
		return Pixel{}, err
	}
	return p, nil
}

func collect(rows pgx.Rows) ([]Pixel, error) {
	defer rows.Close()
	var out []Pixel
	for rows.Next() {
		p, err := scanPixel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListPixels returns all pixels.
func (r *Repository) ListPixels(ctx context.Context) ([]Pixel, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+pixelColumns+` FROM tracking_pixels ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// ListEnabledPixels returns the pixels injected on the public site.
func (r *Repository) ListEnabledPixels(ctx context.Context) ([]Pixel, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+pixelColumns+` FROM tracking_pixels WHERE is_enabled ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// GetPixel fetches one pixel.
func (r *Repository) GetPixel(ctx context.Context, id string) (Pixel, error) {
	return scanPixel(r.pool.QueryRow(ctx, `SELECT `+pixelColumns+` FROM tracking_pixels WHERE id = $1`, id))
}

// CreatePixel inserts a pixel.
func (r *Repository) CreatePixel(ctx context.Context, p Pixel) (Pixel, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO tracking_pixels (id, provider, label, snippet, is_enabled, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		 RETURNING `+pixelColumns,
		uuid.NewString(), p.Provider, p.Label, p.Snippet, p.IsEnabled)
	return scanPixel(row)
}

// UpdatePixel updates mutable fields of a pixel.
func (r *Repository) UpdatePixel(ctx context.Context, p Pixel) (Pixel, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE tracking_pixels SET provider = $2, label = $3, snippet = $4, is_enabled = $5, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+pixelColumns,
		p.ID, p.Provider, p.Label, p.Snippet, p.IsEnabled)
	return scanPixel(row)
}

// DeletePixel removes a pixel.
func (r *Repository) DeletePixel(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tracking_pixels WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
