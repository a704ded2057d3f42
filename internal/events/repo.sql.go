package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitrine-cms/vitrine/internal/platform/httpx"
	"github.com/vitrine-cms/vitrine/internal/shared"
)

// Repository provides PostgreSQL backed persistence for events and their
// registrations.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const eventColumns = `id, title, description, location, starts_at, capacity, is_published, created_at, updated_at`

func scanEvent(row pgx.Row) (Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.StartsAt, &e.Capacity, &e.IsPublished, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, shared.ErrNotFound
		}
		return Event{}, err
	}
	return e, nil
}

// ListEvents returns all events, soonest first.
func (r *Repository) ListEvents(ctx context.Context) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY starts_at`)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

// ListPublishedEvents returns upcoming published events for the public site.
func (r *Repository) ListPublishedEvents(ctx context.Context) ([]Event, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE is_published AND starts_at >= NOW() ORDER BY starts_at`)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func collectEvents(rows pgx.Rows) ([]Event, error) {
	defer rows.Close()
	var out []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetEvent fetches one event.
func (r *Repository) GetEvent(ctx context.Context, id string) (Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

const registrationColumns = `id, event_id, name, email, source, created_at`

func scanRegistration(row pgx.Row) (Registration, error) {
	var reg Registration
	err := row.Scan(&reg.ID, &reg.EventID, &reg.Name, &reg.Email, &reg.Source, &reg.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Registration{}, shared.ErrNotFound
		}
		return Registration{}, err
	}
	return reg, nil
}

// ListRegistrations returns an event's registrations, oldest first.
func (r *Repository) ListRegistrations(ctx context.Context, eventID string) ([]Registration, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+registrationColumns+` FROM event_registrations WHERE event_id = $1 ORDER BY created_at`,
		eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

// CountRegistrations returns how many attendees an event has.
func (r *Repository) CountRegistrations(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM event_registrations WHERE event_id = $1`, eventID).Scan(&count)
	return count, err
}

// CreateRegistration inserts a registration. The (event_id, email) unique
// constraint maps onto httpx.ErrDuplicate.
func (r *Repository) CreateRegistration(ctx context.Context, reg Registration) (Registration, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO event_registrations (id, event_id, name, email, source, created_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 RETURNING `+registrationColumns,
		uuid.NewString(), reg.EventID, reg.Name, reg.Email, reg.Source)
	created, err := scanRegistration(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Registration{}, httpx.ErrDuplicate
		}
		return Registration{}, err
	}
	return created, nil
}
