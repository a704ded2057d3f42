package messages

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitrine-cms/vitrine/internal/shared"
)

// Repository provides PostgreSQL backed persistence for inbox messages.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const messageColumns = `id, name, email, subject, body, status, created_at, updated_at`

func scanMessage(row pgx.Row) (Message, error) {
	var m Message
	var status string
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Body, &status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Message{}, shared.ErrNotFound
		}
		return Message{}, err
	}
	m.Status = Status(status)
	return m, nil
}

// ListMessages returns messages newest first, optionally filtered by status.
func (r *Repository) ListMessages(ctx context.Context, status Status) ([]Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE ($1 = '' OR status = $1) ORDER BY created_at DESC`,
		string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetMessage fetches one message.
func (r *Repository) GetMessage(ctx context.Context, id string) (Message, error) {
	return scanMessage(r.pool.QueryRow(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = $1`, id))
}

// CreateMessage inserts a submission from the public contact form.
func (r *Repository) CreateMessage(ctx context.Context, m Message) (Message, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO messages (id, name, email, subject, body, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		 RETURNING `+messageColumns,
		uuid.NewString(), m.Name, m.Email, m.Subject, m.Body, string(StatusUnread))
	return scanMessage(row)
}

// UpdateStatus moves a message between inbox states.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status Status) (Message, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE messages SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING `+messageColumns,
		id, string(status))
	return scanMessage(row)
}
