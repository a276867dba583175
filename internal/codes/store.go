// Package codes stores short-lived password-reset codes in Redis with
// TTL-based expiration.
package codes

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResetCodeTTL defines how long reset codes remain valid.
const ResetCodeTTL = 10 * time.Minute

// ErrUnavailable is returned when no code storage backend is configured.
var ErrUnavailable = errors.New("code store unavailable")

// Store defines the interface for code storage operations.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type redisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed code store. A nil client yields a
// store whose operations fail with ErrUnavailable, so callers degrade to an
// error instead of panicking when Redis is not configured.
func NewRedisStore(client *redis.Client) Store {
	if client == nil {
		return &unavailableStore{}
	}
	return &redisStore{client: client}
}

func (s *redisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *redisStore) Get(ctx context.Context, key string) (string, error) {
	return s.client.Get(ctx, key).Result()
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

type unavailableStore struct{}

func (s *unavailableStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return ErrUnavailable
}

func (s *unavailableStore) Get(ctx context.Context, key string) (string, error) {
	return "", ErrUnavailable
}

func (s *unavailableStore) Delete(ctx context.Context, key string) error {
	return ErrUnavailable
}

// ResetKey builds the storage key for a reset code.
func ResetKey(email string) string {
	return fmt.Sprintf("reset:%s", email)
}

// GenerateCode returns a cryptographically random 6-digit code.
func GenerateCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		panic(fmt.Sprintf("generate random code: %v", err))
	}
	return fmt.Sprintf("%06d", n.Int64()+100000)
}
