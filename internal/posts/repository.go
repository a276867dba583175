package posts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"shuddhudara/internal/database"
)

var (
	ErrPostNotFound = errors.New("post not found or unauthorized")
)

// FeedLimit bounds the feed page size.
const FeedLimit = 50

// Repository handles all database operations for posts.
type Repository struct {
	db database.Service
}

// NewRepository creates a new posts repository
func NewRepository(db database.Service) *Repository {
	return &Repository{db: db}
}

const postColumns = `id, user_id, author_name, content, likes, tags, image_url, pinned, created_at`

// Create inserts a post. userID may be nil for anonymous authorship.
func (r *Repository) Create(ctx context.Context, userID *int64, authorName, content, tags, imageURL string) (*Post, error) {
	if tags == "" {
		tags = "General"
	}

	query := `
		INSERT INTO posts (user_id, author_name, content, tags, image_url)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		RETURNING ` + postColumns

	p := &Post{}
	err := scanPost(r.db.QueryRow(ctx, query, userID, authorName, content, tags, imageURL), p)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return p, nil
}

// CreateAuthored inserts an authenticated post and awards the posting reward
// in the same transaction, returning the fresh point total.
func (r *Repository) CreateAuthored(ctx context.Context, userID int64, authorName, content, tags, imageURL string, reward int64) (*Post, int64, error) {
	if tags == "" {
		tags = "General"
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO posts (user_id, author_name, content, tags, image_url)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		RETURNING ` + postColumns

	p := &Post{}
	if err := scanPost(tx.QueryRow(ctx, query, userID, authorName, content, tags, imageURL), p); err != nil {
		return nil, 0, fmt.Errorf("create post: %w", err)
	}

	var points int64
	err = tx.QueryRow(ctx,
		`UPDATE users SET points = points + $2, updated_at = NOW() WHERE id = $1 RETURNING points`,
		userID, reward,
	).Scan(&points)
	if err != nil {
		return nil, 0, fmt.Errorf("award posting points: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("commit post creation: %w", err)
	}
	return p, points, nil
}

// Feed returns the newest posts, pinned entries first.
func (r *Repository) Feed(ctx context.Context, limit int) ([]Post, error) {
	if limit < 1 || limit > FeedLimit {
		limit = FeedLimit
	}

	query := `
		SELECT ` + postColumns + `
		FROM posts
		ORDER BY pinned DESC, created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query feed: %w", err)
	}
	defer rows.Close()

	feed := []Post{}
	for rows.Next() {
		var p Post
		if err := scanPostRows(rows, &p); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		feed = append(feed, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feed: %w", err)
	}
	return feed, nil
}

// GetByID retrieves a single post.
func (r *Repository) GetByID(ctx context.Context, postID int64) (*Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	p := &Post{}
	err := scanPost(r.db.QueryRow(ctx, query, postID), p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// Update modifies a post's content and/or image, author-only. The id+owner
// match in the WHERE clause doubles as the authorization check.
func (r *Repository) Update(ctx context.Context, postID, userID int64, content, imageURL *string) (*Post, error) {
	query := `
		UPDATE posts
		SET content = COALESCE($3, content),
		    image_url = COALESCE($4, image_url)
		WHERE id = $1 AND user_id = $2
		RETURNING ` + postColumns

	p := &Post{}
	err := scanPost(r.db.QueryRow(ctx, query, postID, userID, content, imageURL), p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return p, nil
}

// Delete removes a post, author-only.
func (r *Repository) Delete(ctx context.Context, postID, userID int64) error {
	query := `DELETE FROM posts WHERE id = $1 AND user_id = $2`

	tag, err := r.db.Exec(ctx, query, postID, userID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

func scanPost(row pgx.Row, p *Post) error {
	return row.Scan(
		&p.ID, &p.UserID, &p.AuthorName, &p.Content,
		&p.Likes, &p.Tags, &p.ImageURL, &p.Pinned, &p.CreatedAt,
	)
}

func scanPostRows(rows pgx.Rows, p *Post) error {
	return rows.Scan(
		&p.ID, &p.UserID, &p.AuthorName, &p.Content,
		&p.Likes, &p.Tags, &p.ImageURL, &p.Pinned, &p.CreatedAt,
	)
}
