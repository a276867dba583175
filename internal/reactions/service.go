package reactions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"shuddhudara/internal/database"
)

var ErrPostNotFound = errors.New("post not found")

// BreatheReward is the impact-point delta applied on a breathe toggle,
// awarded on like and reversed on unlike.
const BreatheReward = 10

// phantomPrefix marks client-side prototype posts that have no database row.
// Breathing on them awards points without touching the posts tables.
const phantomPrefix = "m"

// PointsAdjuster applies a signed point delta atomically and returns the
// fresh total.
type PointsAdjuster interface {
	AdjustPoints(ctx context.Context, userID, delta int64) (int64, error)
}

// FeedInvalidator drops any cached feed after a like-count change.
type FeedInvalidator interface {
	InvalidateFeed(ctx context.Context)
}

// Service is the reaction ledger. Toggle flips an account's reaction on a
// post and keeps the denormalized like counter and the account's points in
// step with the ledger, all inside one transaction.
type Service interface {
	Toggle(ctx context.Context, postID string, userID int64) (*ToggleResult, error)
}

type service struct {
	db     database.Service
	points PointsAdjuster
	feed   FeedInvalidator
	logger *slog.Logger
}

func NewService(db database.Service, points PointsAdjuster, feed FeedInvalidator, logger *slog.Logger) Service {
	return &service{db: db, points: points, feed: feed, logger: logger}
}

func (s *service) Toggle(ctx context.Context, postID string, userID int64) (*ToggleResult, error) {
	if strings.HasPrefix(postID, phantomPrefix) {
		return s.togglePhantom(ctx, userID)
	}

	id, err := strconv.ParseInt(postID, 10, 64)
	if err != nil {
		return nil, ErrPostNotFound
	}

	result, err := s.toggle(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if s.feed != nil {
		s.feed.InvalidateFeed(ctx)
	}
	return result, nil
}

// togglePhantom awards the breathe reward for posts that only exist on the
// client. No ledger row, no counter, always reported as a fresh like.
func (s *service) togglePhantom(ctx context.Context, userID int64) (*ToggleResult, error) {
	points, err := s.points.AdjustPoints(ctx, userID, BreatheReward)
	if err != nil {
		return nil, fmt.Errorf("award phantom points: %w", err)
	}
	return &ToggleResult{Liked: true, Points: points, Phantom: true}, nil
}

func (s *service) toggle(ctx context.Context, postID, userID int64) (*ToggleResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin toggle: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists int
	err = tx.QueryRow(ctx, `SELECT 1 FROM posts WHERE id = $1`, postID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("check post: %w", err)
	}

	// The conflict target is the ledger's primary key, so exactly one of two
	// concurrent calls for the same (post, account) sees a row inserted.
	tag, err := tx.Exec(ctx, `
		INSERT INTO post_reactions (post_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (post_id, user_id) DO NOTHING
	`, postID, userID)
	if err != nil {
		return nil, fmt.Errorf("insert reaction: %w", err)
	}

	result := &ToggleResult{}
	if tag.RowsAffected() == 1 {
		result.Liked = true
		err = tx.QueryRow(ctx,
			`UPDATE posts SET likes = likes + 1 WHERE id = $1 RETURNING likes`,
			postID,
		).Scan(&result.Likes)
		if err != nil {
			return nil, fmt.Errorf("increment likes: %w", err)
		}

		err = tx.QueryRow(ctx,
			`UPDATE users SET points = points + $2, updated_at = NOW() WHERE id = $1 RETURNING points`,
			userID, int64(BreatheReward),
		).Scan(&result.Points)
		if err != nil {
			return nil, fmt.Errorf("award points: %w", err)
		}
	} else {
		deleted, err := tx.Exec(ctx,
			`DELETE FROM post_reactions WHERE post_id = $1 AND user_id = $2`,
			postID, userID,
		)
		if err != nil {
			return nil, fmt.Errorf("delete reaction: %w", err)
		}

		if deleted.RowsAffected() == 1 {
			err = tx.QueryRow(ctx,
				`UPDATE posts SET likes = GREATEST(likes - 1, 0) WHERE id = $1 RETURNING likes`,
				postID,
			).Scan(&result.Likes)
			if err != nil {
				return nil, fmt.Errorf("decrement likes: %w", err)
			}

			err = tx.QueryRow(ctx,
				`UPDATE users SET points = points - $2, updated_at = NOW() WHERE id = $1 RETURNING points`,
				userID, int64(BreatheReward),
			).Scan(&result.Points)
			if err != nil {
				return nil, fmt.Errorf("reverse points: %w", err)
			}
		} else {
			// The row vanished between the conflict and the delete. Report
			// current state without touching counter or points.
			err = tx.QueryRow(ctx, `SELECT likes FROM posts WHERE id = $1`, postID).Scan(&result.Likes)
			if err != nil {
				return nil, fmt.Errorf("read likes: %w", err)
			}
			err = tx.QueryRow(ctx, `SELECT points FROM users WHERE id = $1`, userID).Scan(&result.Points)
			if err != nil {
				return nil, fmt.Errorf("read points: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit toggle: %w", err)
	}

	s.logger.Debug("reaction toggled",
		"post_id", postID, "user_id", userID,
		"liked", result.Liked, "likes", result.Likes, "points", result.Points,
	)
	return result, nil
}
