package reactions

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"shuddhudara/internal/database"
	"shuddhudara/internal/users"
)

// setupLedger starts a throwaway Postgres, migrates the schema and returns a
// wired reaction service. Skipped when Docker is unavailable.
func setupLedger(t *testing.T) (database.Service, Service, *users.Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("shuddhudara_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("could not start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	db, err := database.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo := users.NewRepository(db)
	svc := NewService(db, repo, nil, slog.Default())
	return db, svc, repo
}

func seedUser(t *testing.T, db database.Service, username string) int64 {
	t.Helper()
	var id int64
	err := db.QueryRow(context.Background(), `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, 'x')
		RETURNING id
	`, username, username+"@example.com").Scan(&id)
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return id
}

func seedPost(t *testing.T, db database.Service, userID int64) int64 {
	t.Helper()
	var id int64
	err := db.QueryRow(context.Background(), `
		INSERT INTO posts (user_id, author_name, content)
		VALUES ($1, 'seed', 'seed content')
		RETURNING id
	`, userID).Scan(&id)
	if err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return id
}

func postLikes(t *testing.T, db database.Service, postID int64) int64 {
	t.Helper()
	var likes int64
	if err := db.QueryRow(context.Background(), `SELECT likes FROM posts WHERE id = $1`, postID).Scan(&likes); err != nil {
		t.Fatalf("read likes: %v", err)
	}
	return likes
}

func ledgerCount(t *testing.T, db database.Service, postID int64) int64 {
	t.Helper()
	var n int64
	if err := db.QueryRow(context.Background(), `SELECT COUNT(*) FROM post_reactions WHERE post_id = $1`, postID).Scan(&n); err != nil {
		t.Fatalf("count reactions: %v", err)
	}
	return n
}

func userPoints(t *testing.T, db database.Service, userID int64) int64 {
	t.Helper()
	var points int64
	if err := db.QueryRow(context.Background(), `SELECT points FROM users WHERE id = $1`, userID).Scan(&points); err != nil {
		t.Fatalf("read points: %v", err)
	}
	return points
}

func TestToggleRoundTrip(t *testing.T) {
	db, svc, _ := setupLedger(t)
	ctx := context.Background()

	author := seedUser(t, db, "author_rt")
	reader := seedUser(t, db, "reader_rt")
	postID := seedPost(t, db, author)
	key := strconv.FormatInt(postID, 10)

	first, err := svc.Toggle(ctx, key, reader)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !first.Liked || first.Likes != 1 || first.Points != 10 {
		t.Errorf("first toggle: got %+v, want liked=true likes=1 points=10", first)
	}

	second, err := svc.Toggle(ctx, key, reader)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if second.Liked || second.Likes != 0 || second.Points != 0 {
		t.Errorf("second toggle: got %+v, want liked=false likes=0 points=0", second)
	}

	if n := ledgerCount(t, db, postID); n != 0 {
		t.Errorf("ledger should be empty after round trip, has %d rows", n)
	}
	if likes := postLikes(t, db, postID); likes != 0 {
		t.Errorf("counter should be back to 0, got %d", likes)
	}
}

func TestCounterNeverNegative(t *testing.T) {
	db, svc, _ := setupLedger(t)
	ctx := context.Background()

	author := seedUser(t, db, "author_neg")
	reader := seedUser(t, db, "reader_neg")
	postID := seedPost(t, db, author)

	// Stray ledger row with the counter already at zero. The unlike path
	// must floor instead of going negative.
	if _, err := db.Exec(ctx, `INSERT INTO post_reactions (post_id, user_id) VALUES ($1, $2)`, postID, reader); err != nil {
		t.Fatalf("seed stray reaction: %v", err)
	}

	result, err := svc.Toggle(ctx, strconv.FormatInt(postID, 10), reader)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if result.Liked {
		t.Error("toggle on an existing reaction must unlike")
	}
	if result.Likes != 0 {
		t.Errorf("counter floored at 0, got %d", result.Likes)
	}
	if likes := postLikes(t, db, postID); likes != 0 {
		t.Errorf("stored counter is %d, want 0", likes)
	}
}

func TestLedgerCounterAgreement(t *testing.T) {
	db, svc, _ := setupLedger(t)
	ctx := context.Background()

	author := seedUser(t, db, "author_agree")
	postID := seedPost(t, db, author)
	key := strconv.FormatInt(postID, 10)

	readers := make([]int64, 5)
	for i := range readers {
		readers[i] = seedUser(t, db, fmt.Sprintf("reader_agree_%d", i))
	}

	// Everyone likes, then two of them unlike, then one re-likes.
	for _, id := range readers {
		if _, err := svc.Toggle(ctx, key, id); err != nil {
			t.Fatalf("like: %v", err)
		}
	}
	for _, id := range readers[:2] {
		if _, err := svc.Toggle(ctx, key, id); err != nil {
			t.Fatalf("unlike: %v", err)
		}
	}
	if _, err := svc.Toggle(ctx, key, readers[0]); err != nil {
		t.Fatalf("re-like: %v", err)
	}

	likes := postLikes(t, db, postID)
	rows := ledgerCount(t, db, postID)
	if likes != rows {
		t.Errorf("counter %d disagrees with ledger %d", likes, rows)
	}
	if likes != 4 {
		t.Errorf("expected 4 likes, got %d", likes)
	}
}

func TestConcurrentDistinctAccounts(t *testing.T) {
	db, svc, _ := setupLedger(t)
	ctx := context.Background()

	author := seedUser(t, db, "author_conc")
	postID := seedPost(t, db, author)
	key := strconv.FormatInt(postID, 10)

	const n = 10
	readers := make([]int64, n)
	for i := range readers {
		readers[i] = seedUser(t, db, fmt.Sprintf("reader_conc_%d", i))
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, id := range readers {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			if _, err := svc.Toggle(ctx, key, userID); err != nil {
				errs <- err
			}
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent toggle: %v", err)
	}

	if likes := postLikes(t, db, postID); likes != n {
		t.Errorf("expected %d likes, got %d", n, likes)
	}
	if rows := ledgerCount(t, db, postID); rows != n {
		t.Errorf("expected %d ledger rows, got %d", n, rows)
	}
	for _, id := range readers {
		if points := userPoints(t, db, id); points != 10 {
			t.Errorf("reader %d has %d points, want 10", id, points)
		}
	}
}

func TestConcurrentSameAccount(t *testing.T) {
	db, svc, _ := setupLedger(t)
	ctx := context.Background()

	author := seedUser(t, db, "author_race")
	reader := seedUser(t, db, "reader_race")
	postID := seedPost(t, db, author)
	key := strconv.FormatInt(postID, 10)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Toggle(ctx, key, reader); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("racing toggle: %v", err)
	}

	likes := postLikes(t, db, postID)
	rows := ledgerCount(t, db, postID)
	if likes != rows {
		t.Errorf("counter %d disagrees with ledger %d after race", likes, rows)
	}
	if rows != 0 && rows != 1 {
		t.Errorf("same account must hold at most one reaction, found %d", rows)
	}

	// Points mirror the ledger: +10 while the reaction stands, 0 otherwise.
	want := rows * 10
	if points := userPoints(t, db, reader); points != want {
		t.Errorf("reader has %d points, want %d", points, want)
	}
}

func TestToggleUnknownPost(t *testing.T) {
	db, svc, _ := setupLedger(t)
	ctx := context.Background()

	reader := seedUser(t, db, "reader_missing")

	if _, err := svc.Toggle(ctx, "999999", reader); err != ErrPostNotFound {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
	if _, err := svc.Toggle(ctx, "not-a-number", reader); err != ErrPostNotFound {
		t.Fatalf("expected ErrPostNotFound for malformed id, got %v", err)
	}

	if points := userPoints(t, db, reader); points != 0 {
		t.Errorf("missing post must not move points, reader has %d", points)
	}
	var rows int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM post_reactions`).Scan(&rows); err != nil {
		t.Fatalf("count reactions: %v", err)
	}
	if rows != 0 {
		t.Errorf("missing post must not create ledger rows, found %d", rows)
	}
}

func TestPointsFollowReactions(t *testing.T) {
	db, svc, _ := setupLedger(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice_pts")
	bob := seedUser(t, db, "bob_pts")
	postID := seedPost(t, db, bob)
	key := strconv.FormatInt(postID, 10)

	res, err := svc.Toggle(ctx, key, alice)
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if res.Points != 10 {
		t.Errorf("like awards 10 points, got %d", res.Points)
	}
	if points := userPoints(t, db, bob); points != 0 {
		t.Errorf("author's points must not move on someone else's like, got %d", points)
	}

	res, err = svc.Toggle(ctx, key, alice)
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if res.Points != 0 {
		t.Errorf("unlike reverses the award, got %d points", res.Points)
	}
}

func TestPhantomPostAwardsWithoutLedger(t *testing.T) {
	db, svc, _ := setupLedger(t)
	ctx := context.Background()

	reader := seedUser(t, db, "reader_phantom")

	res, err := svc.Toggle(ctx, "m17", reader)
	if err != nil {
		t.Fatalf("phantom toggle: %v", err)
	}
	if !res.Phantom || !res.Liked || res.Points != 10 {
		t.Errorf("unexpected phantom result: %+v", res)
	}

	var rows int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM post_reactions`).Scan(&rows); err != nil {
		t.Fatalf("count reactions: %v", err)
	}
	if rows != 0 {
		t.Errorf("phantom toggles must not write ledger rows, found %d", rows)
	}

	// Every phantom toggle awards again, there is nothing to toggle off.
	res, err = svc.Toggle(ctx, "m17", reader)
	if err != nil {
		t.Fatalf("second phantom toggle: %v", err)
	}
	if res.Points != 20 {
		t.Errorf("expected 20 points after two phantom toggles, got %d", res.Points)
	}
}
