package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"shuddhudara/internal/users"
)

type mockUserLoader struct {
	user *users.User
	err  error
}

func (m *mockUserLoader) FindByID(_ context.Context, _ int64) (*users.User, error) {
	return m.user, m.err
}

func newProtectedRouter(issuer *TokenIssuer, loader UserLoader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", Protect(issuer, loader), func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no user in context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"username": user.Username})
	})
	return r
}

func TestProtectValidToken(t *testing.T) {
	issuer := NewTokenIssuerWithSecret("test-secret", time.Hour)
	loader := &mockUserLoader{user: &users.User{ID: 7, Username: "asha"}}
	router := newProtectedRouter(issuer, loader)

	token, err := issuer.Issue(7)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProtectMissingHeader(t *testing.T) {
	issuer := NewTokenIssuerWithSecret("test-secret", time.Hour)
	router := newProtectedRouter(issuer, &mockUserLoader{})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestProtectMalformedHeader(t *testing.T) {
	issuer := NewTokenIssuerWithSecret("test-secret", time.Hour)
	router := newProtectedRouter(issuer, &mockUserLoader{})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abcdef")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestProtectInvalidToken(t *testing.T) {
	issuer := NewTokenIssuerWithSecret("test-secret", time.Hour)
	router := newProtectedRouter(issuer, &mockUserLoader{})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestProtectDeletedUser(t *testing.T) {
	issuer := NewTokenIssuerWithSecret("test-secret", time.Hour)
	loader := &mockUserLoader{err: users.ErrUserNotFound}
	router := newProtectedRouter(issuer, loader)

	token, err := issuer.Issue(7)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for deleted user, got %d", w.Code)
	}
}

func TestProtectLoaderFailure(t *testing.T) {
	issuer := NewTokenIssuerWithSecret("test-secret", time.Hour)
	loader := &mockUserLoader{err: errors.New("connection refused")}
	router := newProtectedRouter(issuer, loader)

	token, err := issuer.Issue(7)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for loader failure, got %d", w.Code)
	}
}
