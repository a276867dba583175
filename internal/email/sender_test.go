package email

import (
	"strings"
	"testing"
)

func TestRenderWelcome(t *testing.T) {
	event := NewEvent(TypeWelcome, "asha@example.com", map[string]interface{}{"name": "Asha"})

	subject, body, err := render(event)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if subject != "Welcome to the Movement!" {
		t.Errorf("unexpected subject %q", subject)
	}
	if !strings.Contains(body, "Welcome to Shuddhudara, Asha!") {
		t.Error("expected greeting with subscriber name")
	}
}

func TestRenderWelcomeEscapesName(t *testing.T) {
	event := NewEvent(TypeWelcome, "asha@example.com", map[string]interface{}{
		"name": `<script>alert("x")</script>`,
	})

	_, body, err := render(event)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(body, "<script>") {
		t.Error("subscriber name rendered without escaping")
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Error("expected escaped markup in body")
	}
}

func TestRenderWelcomeDefaultsName(t *testing.T) {
	event := NewEvent(TypeWelcome, "asha@example.com", nil)

	_, body, err := render(event)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(body, "Welcome to Shuddhudara, Friend!") {
		t.Error("expected fallback greeting for missing name")
	}
}

func TestRenderPasswordResetRequiresCode(t *testing.T) {
	event := NewEvent(TypePasswordReset, "asha@example.com", nil)
	if _, _, err := render(event); err == nil {
		t.Fatal("expected error for reset event without code")
	}

	event = NewEvent(TypePasswordReset, "asha@example.com", map[string]interface{}{"code": "123456"})
	_, body, err := render(event)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(body, "123456") {
		t.Error("expected reset code in body")
	}
}
