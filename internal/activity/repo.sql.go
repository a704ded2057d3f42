package activity

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository reads the audit_logs table written by the audit sink.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Window returns one page of timeline rows, newest first. limit is expected
// to be pageSize+1 so the caller can detect a next page.
func (r *PGRepository) Window(ctx context.Context, filters TimelineFilters, limit, offset int) ([]Entry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.created_at, a.actor_id, COALESCE(u.email, ''), a.action, a.entity, a.entity_id, a.meta
		 FROM audit_logs a
		 LEFT JOIN users u ON u.id = a.actor_id
		 WHERE ($1::timestamptz IS NULL OR a.created_at >= $1)
		   AND ($2::timestamptz IS NULL OR a.created_at <= $2)
		   AND ($3 = '' OR a.actor_id = $3)
		   AND ($4 = '' OR a.entity = $4)
		   AND ($5 = '' OR a.action = $5)
		 ORDER BY a.created_at DESC
		 LIMIT $6 OFFSET $7`,
		nullableTime(filters.From), nullableTime(filters.To),
		filters.Actor, filters.Entity, filters.Action, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.At, &e.ActorID, &e.ActorEmail, &e.Action, &e.Entity, &e.EntityID, &e.Meta); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
