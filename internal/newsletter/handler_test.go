package newsletter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"shuddhudara/internal/email"
)

type mockStore struct {
	createErr error
	count     int64
	countErr  error

	gotName  string
	gotEmail string
	created  int
}

func (m *mockStore) Create(_ context.Context, name, emailAddr string) (*Subscriber, error) {
	m.gotName = name
	m.gotEmail = emailAddr
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created++
	return &Subscriber{ID: 1, Name: name, Email: emailAddr}, nil
}

func (m *mockStore) Count(_ context.Context) (int64, error) {
	return m.count, m.countErr
}

type mockDispatcher struct {
	events []email.Event
	err    error
}

func (m *mockDispatcher) Dispatch(event email.Event) error {
	m.events = append(m.events, event)
	return m.err
}

func newNewsletterRouter(store Store, dispatcher email.Dispatcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(store, dispatcher, slog.Default())

	router := gin.New()
	router.POST("/api/newsletter/join", handler.Join)
	router.GET("/api/newsletter/count", handler.Count)
	return router
}

func TestJoinNewSubscriber(t *testing.T) {
	store := &mockStore{count: 3}
	dispatcher := &mockDispatcher{}
	router := newNewsletterRouter(store, dispatcher)

	req := httptest.NewRequest(http.MethodPost, "/api/newsletter/join",
		strings.NewReader(`{"name":"Asha","email":"asha@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if store.gotEmail != "asha@example.com" {
		t.Errorf("store called with email %q", store.gotEmail)
	}

	if len(dispatcher.events) != 1 {
		t.Fatalf("expected 1 welcome email event, got %d", len(dispatcher.events))
	}
	event := dispatcher.events[0]
	if event.EventType != email.TypeWelcome || event.Recipient != "asha@example.com" {
		t.Errorf("unexpected event: %+v", event)
	}

	var body struct {
		Success     bool   `json:"success"`
		Message     string `json:"message"`
		MemberCount int64  `json:"memberCount"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !body.Success || body.MemberCount != 3 {
		t.Errorf("unexpected body: %+v", body)
	}
	if body.Message != "Welcome to the community!" {
		t.Errorf("unexpected message: %q", body.Message)
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	store := &mockStore{createErr: ErrAlreadySubscribed, count: 9}
	dispatcher := &mockDispatcher{}
	router := newNewsletterRouter(store, dispatcher)

	req := httptest.NewRequest(http.MethodPost, "/api/newsletter/join",
		strings.NewReader(`{"email":"asha@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(dispatcher.events) != 0 {
		t.Error("no welcome email on repeat join")
	}

	var body struct {
		Success     bool   `json:"success"`
		Message     string `json:"message"`
		MemberCount int64  `json:"memberCount"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !body.Success || body.MemberCount != 9 {
		t.Errorf("unexpected body: %+v", body)
	}
	if body.Message != "You are already subscribed!" {
		t.Errorf("unexpected message: %q", body.Message)
	}
}

func TestJoinRequiresEmail(t *testing.T) {
	store := &mockStore{}
	router := newNewsletterRouter(store, &mockDispatcher{})

	req := httptest.NewRequest(http.MethodPost, "/api/newsletter/join",
		strings.NewReader(`{"name":"Asha"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if store.created != 0 {
		t.Error("store must not be called without an email")
	}
}

func TestJoinSucceedsWhenEmailDispatchFails(t *testing.T) {
	store := &mockStore{count: 1}
	dispatcher := &mockDispatcher{err: errors.New("broker unreachable")}
	router := newNewsletterRouter(store, dispatcher)

	req := httptest.NewRequest(http.MethodPost, "/api/newsletter/join",
		strings.NewReader(`{"email":"asha@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("join must succeed despite dispatch failure, got %d", w.Code)
	}
}

func TestCountIncludesBaseline(t *testing.T) {
	store := &mockStore{count: 12}
	router := newNewsletterRouter(store, &mockDispatcher{})

	req := httptest.NewRequest(http.MethodGet, "/api/newsletter/count", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Success bool  `json:"success"`
		Count   int64 `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body.Count != 12+countBaseline {
		t.Errorf("expected count %d, got %d", 12+countBaseline, body.Count)
	}
}
