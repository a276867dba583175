package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"shuddhudara/internal/database"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameExists = errors.New("username already in use")
	ErrEmailExists    = errors.New("email already in use")
)

// Repository handles all database operations for accounts.
type Repository struct {
	db database.Service
}

// NewRepository creates a new accounts repository
func NewRepository(db database.Service) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, username, email, password_hash, points, last_login, created_at, updated_at`

// Create inserts a new account with an already-hashed password.
func (r *Repository) Create(ctx context.Context, username, email, passwordHash string) (*User, error) {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	u := &User{}
	err := r.scanUser(r.db.QueryRow(ctx, query, username, email, passwordHash), u)
	if err != nil {
		if isUniqueViolation(err, "users_username_key") {
			return nil, ErrUsernameExists
		}
		if isUniqueViolation(err, "users_email_key") {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// FindByID retrieves an account by identifier.
func (r *Repository) FindByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u := &User{}
	err := r.scanUser(r.db.QueryRow(ctx, query, id), u)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// FindByEmail retrieves an account by email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	u := &User{}
	err := r.scanUser(r.db.QueryRow(ctx, query, email), u)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// AdjustPoints applies a signed delta to an account's point total as a single
// atomic statement. Concurrent deltas from other requests are never lost.
func (r *Repository) AdjustPoints(ctx context.Context, userID int64, delta int64) (int64, error) {
	query := `UPDATE users SET points = points + $2, updated_at = NOW() WHERE id = $1 RETURNING points`

	var points int64
	err := r.db.QueryRow(ctx, query, userID, delta).Scan(&points)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("adjust points: %w", err)
	}
	return points, nil
}

// TouchLastLogin records a successful login.
func (r *Repository) TouchLastLogin(ctx context.Context, userID int64) error {
	query := `UPDATE users SET last_login = NOW() WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// TopGuardians returns the highest-point accounts, best first.
func (r *Repository) TopGuardians(ctx context.Context, limit int) ([]Guardian, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}

	query := `SELECT id, username, points FROM users ORDER BY points DESC, id ASC LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query guardians: %w", err)
	}
	defer rows.Close()

	guardians := []Guardian{}
	for rows.Next() {
		var g Guardian
		if err := rows.Scan(&g.ID, &g.Username, &g.Points); err != nil {
			return nil, fmt.Errorf("scan guardian: %w", err)
		}
		guardians = append(guardians, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate guardians: %w", err)
	}
	return guardians, nil
}

func (r *Repository) scanUser(row pgx.Row, u *User) error {
	return row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Points,
		&u.LastLogin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
}

// isUniqueViolation checks for a PostgreSQL unique constraint violation on
// the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}
