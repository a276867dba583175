package codes

import (
	"context"
	"errors"
	"testing"
)

func TestNilClientStoreReturnsUnavailable(t *testing.T) {
	// The server wires this store with whatever cache client it was given,
	// including nil when REDIS_ADDR is unset. Operations must fail cleanly.
	store := NewRedisStore(nil)
	ctx := context.Background()

	if err := store.Set(ctx, ResetKey("a@b.com"), "123456", ResetCodeTTL); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Set: expected ErrUnavailable, got %v", err)
	}
	if _, err := store.Get(ctx, ResetKey("a@b.com")); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Get: expected ErrUnavailable, got %v", err)
	}
	if err := store.Delete(ctx, ResetKey("a@b.com")); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Delete: expected ErrUnavailable, got %v", err)
	}
}

func TestGenerateCodeFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code := GenerateCode()
		if len(code) != 6 {
			t.Fatalf("expected 6-digit code, got %q", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("non-digit character in code %q", code)
			}
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Fatal("expected varying codes across generations")
	}
}
