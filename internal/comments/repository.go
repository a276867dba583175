package comments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"shuddhudara/internal/database"
)

var ErrPostNotFound = errors.New("post not found")

// CommentReward is the impact-point award for leaving feedback.
const CommentReward = 10

// Repository handles all database operations for comments.
type Repository struct {
	db database.Service
}

func NewRepository(db database.Service) *Repository {
	return &Repository{db: db}
}

// Create inserts a comment and awards the feedback reward in the same
// transaction, returning the comment and the author's fresh point total.
func (r *Repository) Create(ctx context.Context, postID, userID int64, authorName, content string) (*Comment, int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback(ctx)

	comment := &Comment{}
	err = tx.QueryRow(ctx, `
		INSERT INTO comments (post_id, user_id, author_name, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, post_id, user_id, author_name, content, created_at
	`, postID, userID, authorName, content).Scan(
		&comment.ID, &comment.PostID, &comment.UserID,
		&comment.AuthorName, &comment.Content, &comment.CreatedAt,
	)
	if isForeignKeyViolation(err) {
		return nil, 0, ErrPostNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("create comment: %w", err)
	}

	var points int64
	err = tx.QueryRow(ctx,
		`UPDATE users SET points = points + $2, updated_at = NOW() WHERE id = $1 RETURNING points`,
		userID, int64(CommentReward),
	).Scan(&points)
	if err != nil {
		return nil, 0, fmt.Errorf("award feedback points: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("commit comment: %w", err)
	}
	return comment, points, nil
}

// ListByPost returns a post's comments oldest first.
func (r *Repository) ListByPost(ctx context.Context, postID int64) ([]Comment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, post_id, user_id, author_name, content, created_at
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	list := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.AuthorName, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return list, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
