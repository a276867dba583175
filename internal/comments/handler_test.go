package comments

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"shuddhudara/internal/users"
)

type mockStore struct {
	comment *Comment
	points  int64
	list    []Comment
	err     error

	gotPostID  int64
	gotContent string
}

func (m *mockStore) Create(_ context.Context, postID, _ int64, _, content string) (*Comment, int64, error) {
	m.gotPostID = postID
	m.gotContent = content
	if m.err != nil {
		return nil, 0, m.err
	}
	return m.comment, m.points, nil
}

func (m *mockStore) ListByPost(_ context.Context, postID int64) ([]Comment, error) {
	m.gotPostID = postID
	return m.list, m.err
}

func newCommentRouter(store Store, user *users.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(store, slog.Default())

	router := gin.New()
	router.GET("/api/purepulse/post/:id/comments", handler.List)
	router.POST("/api/purepulse/post/:id/comment", func(c *gin.Context) {
		if user != nil {
			c.Set("user", user)
		}
	}, handler.Create)
	return router
}

func TestCreateComment(t *testing.T) {
	store := &mockStore{
		comment: &Comment{ID: 1, PostID: 4, AuthorName: "asha", Content: "lovely", CreatedAt: time.Now()},
		points:  30,
	}
	router := newCommentRouter(store, &users.User{ID: 7, Username: "asha"})

	req := httptest.NewRequest(http.MethodPost, "/api/purepulse/post/4/comment",
		strings.NewReader(`{"content":"lovely"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if store.gotPostID != 4 || store.gotContent != "lovely" {
		t.Errorf("store called with (%d, %q)", store.gotPostID, store.gotContent)
	}

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		User    struct {
			Points int64 `json:"points"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !body.Success || body.User.Points != 30 {
		t.Errorf("unexpected body: %+v", body)
	}
	if body.Message != "Feedback logged in the Nexus! +10 Impact Points awarded." {
		t.Errorf("unexpected message: %q", body.Message)
	}
}

func TestCreateCommentRejectsEmptyContent(t *testing.T) {
	store := &mockStore{}
	router := newCommentRouter(store, &users.User{ID: 7, Username: "asha"})

	req := httptest.NewRequest(http.MethodPost, "/api/purepulse/post/4/comment",
		strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if store.gotContent != "" {
		t.Error("store must not be called on validation failure")
	}
}

func TestCreateCommentUnknownPost(t *testing.T) {
	store := &mockStore{err: ErrPostNotFound}
	router := newCommentRouter(store, &users.User{ID: 7, Username: "asha"})

	req := httptest.NewRequest(http.MethodPost, "/api/purepulse/post/999/comment",
		strings.NewReader(`{"content":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCreateCommentRequiresUser(t *testing.T) {
	store := &mockStore{}
	router := newCommentRouter(store, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/purepulse/post/4/comment",
		strings.NewReader(`{"content":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestListComments(t *testing.T) {
	store := &mockStore{list: []Comment{
		{ID: 1, PostID: 4, AuthorName: "asha", Content: "first"},
		{ID: 2, PostID: 4, AuthorName: "ravi", Content: "second"},
	}}
	router := newCommentRouter(store, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/purepulse/post/4/comments", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Success  bool      `json:"success"`
		Comments []Comment `json:"comments"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !body.Success || len(body.Comments) != 2 {
		t.Errorf("unexpected body: %+v", body)
	}
}
