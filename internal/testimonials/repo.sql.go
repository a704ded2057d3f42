package testimonials

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitrine-cms/vitrine/internal/shared"
)

// Repository provides PostgreSQL backed persistence for testimonials.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const testimonialColumns = `id, author, company, quote, rating, is_published, created_at, updated_at`

func scanTestimonial(row pgx.Row) (Testimonial, error) {
	var t Testimonial
	err := row.Scan(&t.ID, &t.Author, &t.Company, &t.Quote, &t.Rating, &t.IsPublished, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Testimonial{}, shared.ErrNotFound
		}
		return Testimonial{}, err
	}
	return t, nil
}

func (r *Repository) collect(rows pgx.Rows) ([]Testimonial, error) {
	defer rows.Close()
	var out []Testimonial
	for rows.Next() {
		t, err := scanTestimonial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListTestimonials returns every testimonial, newest first.
func (r *Repository) ListTestimonials(ctx context.Context) ([]Testimonial, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+testimonialColumns+` FROM testimonials ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

// ListPublishedTestimonials returns testimonials shown on the public site.
func (r *Repository) ListPublishedTestimonials(ctx context.Context) ([]Testimonial, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+testimonialColumns+` FROM testimonials WHERE is_published ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

// GetTestimonial fetches one testimonial.
func (r *Repository) GetTestimonial(ctx context.Context, id string) (Testimonial, error) {
	return scanTestimonial(r.pool.QueryRow(ctx, `SELECT `+testimonialColumns+` FROM testimonials WHERE id = $1`, id))
}

// CreateTestimonial inserts a testimonial.
func (r *Repository) CreateTestimonial(ctx context.Context, t Testimonial) (Testimonial, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO testimonials (id, author, company, quote, rating, is_published, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		 RETURNING `+testimonialColumns,
		uuid.NewString(), t.Author, t.Company, t.Quote, t.Rating, t.IsPublished)
	return scanTestimonial(row)
}

// UpdateTestimonial updates mutable fields of a testimonial.
func (r *Repository) UpdateTestimonial(ctx context.Context, t Testimonial) (Testimonial, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE testimonials SET author = $2, company = $3, quote = $4, rating = $5, is_published = $6, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+testimonialColumns,
		t.ID, t.Author, t.Company, t.Quote, t.Rating, t.IsPublished)
	return scanTestimonial(row)
}

// DeleteTestimonial removes a testimonial.
func (r *Repository) DeleteTestimonial(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM testimonials WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
