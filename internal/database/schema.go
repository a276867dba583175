package database

import (
	"context"
	"fmt"
)

// createStatements are idempotent and run on every startup.
var createStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username VARCHAR(30) UNIQUE NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		points INTEGER NOT NULL DEFAULT 0,
		last_login TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
		author_name VARCHAR(50) NOT NULL,
		content TEXT NOT NULL,
		likes INTEGER NOT NULL DEFAULT 0 CHECK (likes >= 0),
		tags VARCHAR(100) NOT NULL DEFAULT 'General',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS post_reactions (
		post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (post_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id BIGSERIAL PRIMARY KEY,
		post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		user_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
		author_name VARCHAR(50) NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS subscribers (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100),
		email VARCHAR(255) UNIQUE NOT NULL,
		joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// alterStatements add columns introduced after the first schema revision.
// ADD COLUMN IF NOT EXISTS keeps them safe to re-run.
var alterStatements = []string{
	`ALTER TABLE posts ADD COLUMN IF NOT EXISTS image_url TEXT`,
	`ALTER TABLE posts ADD COLUMN IF NOT EXISTS pinned BOOLEAN NOT NULL DEFAULT FALSE`,
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS points INTEGER NOT NULL DEFAULT 0`,
	`CREATE INDEX IF NOT EXISTS idx_posts_feed ON posts (pinned DESC, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_post ON comments (post_id, created_at)`,
}

// Migrate creates tables and applies incremental column additions.
func (s *service) Migrate(ctx context.Context) error {
	for _, stmt := range createStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	for _, stmt := range alterStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("alter schema: %w", err)
		}
	}
	return nil
}
