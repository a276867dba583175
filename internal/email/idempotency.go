package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore deduplicates email events across worker restarts and
// consumer rebalances. Records expire after 24 hours.
type IdempotencyStore struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewIdempotencyStore creates a Redis-backed idempotency store.
func NewIdempotencyStore(redisClient *redis.Client, logger *slog.Logger) *IdempotencyStore {
	return &IdempotencyStore{
		redis:  redisClient,
		ttl:    24 * time.Hour,
		logger: logger,
	}
}

func (s *IdempotencyStore) key(messageID string) string {
	return fmt.Sprintf("email:sent:%s", messageID)
}

// IsProcessed reports whether an event has already been delivered.
func (s *IdempotencyStore) IsProcessed(ctx context.Context, messageID string) (bool, error) {
	exists, err := s.redis.Exists(ctx, s.key(messageID)).Result()
	if err != nil {
		return false, fmt.Errorf("check processed: %w", err)
	}
	return exists > 0, nil
}

// MarkAsProcessed records a delivered event. Returns true when this call won
// the SET NX race, false when another consumer already recorded it.
func (s *IdempotencyStore) MarkAsProcessed(ctx context.Context, event Event) (bool, error) {
	meta := Metadata{
		SentAt:    time.Now(),
		Recipient: event.Recipient,
		EventType: event.EventType,
	}

	payload, err := json.Marshal(meta)
	if err != nil {
		return false, fmt.Errorf("marshal metadata: %w", err)
	}

	ok, err := s.redis.SetNX(ctx, s.key(event.MessageID), payload, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark processed: %w", err)
	}

	if !ok {
		s.logger.Warn("duplicate email event",
			"message_id", event.MessageID,
			"recipient", event.Recipient,
			"type", event.EventType)
	}
	return ok, nil
}
