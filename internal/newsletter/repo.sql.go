package newsletter

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitrine-cms/vitrine/internal/shared"
)

// Repository provides PostgreSQL backed persistence for subscribers.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const subscriberColumns = `id, email, unsubscribe_token, subscribed_at, unsubscribed_at`

func scanSubscriber(row pgx.Row) (Subscriber, error) {
	var s Subscriber
	err := row.Scan(&s.ID, &s.Email, &s.UnsubscribeToken, &s.SubscribedAt, &s.UnsubscribedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Subscriber{}, shared.ErrNotFound
		}
		return Subscriber{}, err
	}
	return s, nil
}

// ListSubscribers returns all subscribers, newest first.
func (r *Repository) ListSubscribers(ctx context.Context) ([]Subscriber, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+subscriberColumns+` FROM newsletter_subscribers ORDER BY subscribed_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Subscriber
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// FindByEmail fetches a subscriber by address.
func (r *Repository) FindByEmail(ctx context.Context, email string) (Subscriber, error) {
	return scanSubscriber(r.pool.QueryRow(ctx,
		`SELECT `+subscriberColumns+` FROM newsletter_subscribers WHERE email = $1`, email))
}

// Upsert subscribes an address. Re-subscribing an existing address clears
// any previous unsubscription and keeps the original token.
func (r *Repository) Upsert(ctx context.Context, email, token string) (Subscriber, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO newsletter_subscribers (id, email, unsubscribe_token, subscribed_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (email) DO UPDATE SET unsubscribed_at = NULL
		 RETURNING `+subscriberColumns,
		uuid.NewString(), email, token)
	return scanSubscriber(row)
}

// Unsubscribe marks the subscriber matching the token as opted out.
func (r *Repository) Unsubscribe(ctx context.Context, token string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE newsletter_subscribers SET unsubscribed_at = NOW() WHERE unsubscribe_token = $1 AND unsubscribed_at IS NULL`,
		token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
