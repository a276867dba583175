package email

import "time"

// EventType identifies the kind of email to send.
type EventType string

const (
	// TypeWelcome greets a new newsletter subscriber
	TypeWelcome EventType = "welcome"
	// TypePasswordReset carries a short-lived reset code
	TypePasswordReset EventType = "password_reset"
)

// Event is an email event published to Kafka. MessageID deduplicates
// deliveries so retries never send the same email twice.
type Event struct {
	MessageID string    `json:"message_id"`
	EventType EventType `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	Recipient string    `json:"recipient"`

	// Data is type-specific:
	//   welcome:        {"name": "..."}
	//   password_reset: {"code": "123456", "expires_in": "10m"}
	Data map[string]interface{} `json:"data"`
}

// Metadata is stored in Redis per processed message for deduplication.
type Metadata struct {
	SentAt    time.Time `json:"sent_at"`
	Recipient string    `json:"recipient"`
	EventType EventType `json:"event_type"`
}
