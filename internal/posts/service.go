package posts

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	feedCacheKey = "feed:latest"
	feedCacheTTL = 30 * time.Second
)

// Service wraps the repository with a read-through feed cache. The cache
// client may be nil, in which case every read hits Postgres.
type Service struct {
	repo   *Repository
	cache  *redis.Client
	logger *slog.Logger
}

func NewService(repo *Repository, cache *redis.Client, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// Feed serves the cached feed when fresh, falling back to the database.
// Cache failures are logged and never surfaced to the caller.
func (s *Service) Feed(ctx context.Context) ([]Post, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, feedCacheKey).Bytes()
		if err == nil {
			var feed []Post
			if err := json.Unmarshal(cached, &feed); err == nil {
				return feed, nil
			}
			s.logger.Warn("corrupt feed cache entry, refetching", "error", err)
		} else if err != redis.Nil {
			s.logger.Warn("feed cache read failed", "error", err)
		}
	}

	feed, err := s.repo.Feed(ctx, FeedLimit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(feed); err == nil {
			if err := s.cache.Set(ctx, feedCacheKey, data, feedCacheTTL).Err(); err != nil {
				s.logger.Warn("feed cache write failed", "error", err)
			}
		}
	}
	return feed, nil
}

// Create stores an anonymous community post and invalidates the feed cache.
func (s *Service) Create(ctx context.Context, userID *int64, authorName, content, tags, imageURL string) (*Post, error) {
	p, err := s.repo.Create(ctx, userID, authorName, content, tags, imageURL)
	if err != nil {
		return nil, err
	}
	s.invalidateFeed(ctx)
	return p, nil
}

// CreateAuthored stores an authenticated post, awards the posting reward and
// returns the author's fresh point total.
func (s *Service) CreateAuthored(ctx context.Context, userID int64, authorName, content, tags, imageURL string, reward int64) (*Post, int64, error) {
	p, points, err := s.repo.CreateAuthored(ctx, userID, authorName, content, tags, imageURL, reward)
	if err != nil {
		return nil, 0, err
	}
	s.invalidateFeed(ctx)
	return p, points, nil
}

func (s *Service) GetByID(ctx context.Context, postID int64) (*Post, error) {
	return s.repo.GetByID(ctx, postID)
}

func (s *Service) Update(ctx context.Context, postID, userID int64, content, imageURL *string) (*Post, error) {
	p, err := s.repo.Update(ctx, postID, userID, content, imageURL)
	if err != nil {
		return nil, err
	}
	s.invalidateFeed(ctx)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, postID, userID int64) error {
	if err := s.repo.Delete(ctx, postID, userID); err != nil {
		return err
	}
	s.invalidateFeed(ctx)
	return nil
}

// InvalidateFeed drops the cached feed. Exported so the reaction ledger can
// invalidate after like-count changes.
func (s *Service) InvalidateFeed(ctx context.Context) {
	s.invalidateFeed(ctx)
}

func (s *Service) invalidateFeed(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, feedCacheKey).Err(); err != nil {
		s.logger.Warn("feed cache invalidation failed", "error", err)
	}
}
