package newsletter

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"shuddhudara/internal/database"
)

var ErrAlreadySubscribed = errors.New("email already subscribed")

// Repository handles all database operations for newsletter subscribers.
type Repository struct {
	db database.Service
}

func NewRepository(db database.Service) *Repository {
	return &Repository{db: db}
}

// Create inserts a subscriber, returning ErrAlreadySubscribed on a duplicate
// email.
func (r *Repository) Create(ctx context.Context, name, email string) (*Subscriber, error) {
	sub := &Subscriber{}
	err := r.db.QueryRow(ctx, `
		INSERT INTO subscribers (name, email)
		VALUES (NULLIF($1, ''), $2)
		RETURNING id, COALESCE(name, ''), email, joined_at
	`, name, email).Scan(&sub.ID, &sub.Name, &sub.Email, &sub.JoinedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadySubscribed
		}
		return nil, fmt.Errorf("create subscriber: %w", err)
	}
	return sub, nil
}

// Count returns the number of subscribers.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM subscribers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count subscribers: %w", err)
	}
	return n, nil
}
