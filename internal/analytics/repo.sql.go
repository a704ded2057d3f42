package analytics

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository provides PostgreSQL backed persistence for page views.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// InsertVisit stores one page view.
func (r *PGRepository) InsertVisit(ctx context.Context, v Visit) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO page_views (id, path, referrer, user_agent, visitor_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())`,
		uuid.NewString(), v.Path, v.Referrer, v.UserAgent, v.VisitorID)
	return err
}

// CountVisits returns the total page views in range.
func (r *PGRepository) CountVisits(ctx context.Context, rng StatsRange) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM page_views WHERE created_at BETWEEN $1 AND $2`,
		rng.From, rng.To).Scan(&count)
	return count, err
}

// CountUniqueVisitors returns distinct visitor ids in range.
func (r *PGRepository) CountUniqueVisitors(ctx context.Context, rng StatsRange) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT visitor_id) FROM page_views WHERE visitor_id <> '' AND created_at BETWEEN $1 AND $2`,
		rng.From, rng.To).Scan(&count)
	return count, err
}

// VisitsPerDay returns the daily series in range.
func (r *PGRepository) VisitsPerDay(ctx context.Context, rng StatsRange) ([]DailyCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT TO_CHAR(created_at::date, 'YYYY-MM-DD') AS day, COUNT(*)
		 FROM page_views WHERE created_at BETWEEN $1 AND $2
		 GROUP BY created_at::date ORDER BY day`,
		rng.From, rng.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DailyCount
	for rows.Next() {
		var dc DailyCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, err
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

// TopPages returns the most visited paths in range.
func (r *PGRepository) TopPages(ctx context.Context, rng StatsRange, limit int) ([]PageCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT path, COUNT(*) FROM page_views WHERE created_at BETWEEN $1 AND $2
		 GROUP BY path ORDER BY COUNT(*) DESC LIMIT $3`,
		rng.From, rng.To, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PageCount
	for rows.Next() {
		var pc PageCount
		if err := rows.Scan(&pc.Path, &pc.Count); err != nil {
			return nil, err
		}
		out = append(out, pc)
	}
	return out, rows.Err()
}
