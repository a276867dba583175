package email

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Dispatcher hands an email event off for delivery. The Kafka-backed
// implementation lives in cmd wiring via PublishFunc; the direct dispatcher
// sends synchronously when no broker is configured.
type Dispatcher interface {
	Dispatch(event Event) error
}

// NewEvent builds an event with a fresh MessageID.
func NewEvent(eventType EventType, recipient string, data map[string]interface{}) Event {
	return Event{
		MessageID: uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
		Recipient: recipient,
		Data:      data,
	}
}

// PublishFunc publishes a serializable event to a topic.
type PublishFunc func(topic string, event interface{}) error

// kafkaDispatcher publishes events to the email topic.
type kafkaDispatcher struct {
	publish PublishFunc
	topic   string
	logger  *slog.Logger
}

// NewKafkaDispatcher creates a dispatcher that publishes to Kafka.
func NewKafkaDispatcher(publish PublishFunc, topic string, logger *slog.Logger) Dispatcher {
	return &kafkaDispatcher{publish: publish, topic: topic, logger: logger}
}

func (d *kafkaDispatcher) Dispatch(event Event) error {
	if err := d.publish(d.topic, event); err != nil {
		return err
	}
	d.logger.Debug("email event queued",
		"message_id", event.MessageID,
		"type", event.EventType,
		"recipient", event.Recipient)
	return nil
}

// directDispatcher sends the email inline, used when Kafka is disabled.
type directDispatcher struct {
	sender Sender
	logger *slog.Logger
}

// NewDirectDispatcher creates a dispatcher that sends synchronously.
func NewDirectDispatcher(sender Sender, logger *slog.Logger) Dispatcher {
	return &directDispatcher{sender: sender, logger: logger}
}

func (d *directDispatcher) Dispatch(event Event) error {
	if err := d.sender.Send(event); err != nil {
		return err
	}
	d.logger.Debug("email sent directly",
		"message_id", event.MessageID,
		"type", event.EventType,
		"recipient", event.Recipient)
	return nil
}
