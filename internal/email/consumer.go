package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// Consumer reads email events from Kafka and delivers them with retry,
// idempotent delivery, and a dead-letter queue for poison messages.
type Consumer struct {
	consumer         *kafka.Consumer
	sender           Sender
	idempotencyStore *IdempotencyStore
	dlqProducer      *kafka.Producer
	config           *ConsumerConfig
	logger           *slog.Logger
}

// ConsumerConfig holds consumer configuration.
type ConsumerConfig struct {
	Brokers       string
	Topic         string
	DLQTopic      string
	ConsumerGroup string
	MaxRetries    int
}

// NewConsumer creates a Kafka consumer with manual offset commits.
func NewConsumer(
	config *ConsumerConfig,
	sender Sender,
	idempotencyStore *IdempotencyStore,
	logger *slog.Logger,
) (*Consumer, error) {
	consumerConfig := &kafka.ConfigMap{
		"bootstrap.servers":  config.Brokers,
		"group.id":           config.ConsumerGroup,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false,
	}

	c, err := kafka.NewConsumer(consumerConfig)
	if err != nil {
		return nil, fmt.Errorf("create consumer: %w", err)
	}

	dlqProducer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": config.Brokers,
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create DLQ producer: %w", err)
	}

	return &Consumer{
		consumer:         c,
		sender:           sender,
		idempotencyStore: idempotencyStore,
		dlqProducer:      dlqProducer,
		config:           config,
		logger:           logger,
	}, nil
}

// Start consumes messages until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.consumer.Subscribe(c.config.Topic, nil); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	c.logger.Info("consuming email events",
		"topic", c.config.Topic,
		"group", c.config.ConsumerGroup)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer shutting down")
			return nil

		default:
			msg, err := c.consumer.ReadMessage(1 * time.Second)
			if err != nil {
				if kerr, ok := err.(kafka.Error); ok && kerr.Code() == kafka.ErrTimedOut {
					continue
				}
				c.logger.Error("read message", "error", err)
				continue
			}
			c.processMessage(ctx, msg)
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg *kafka.Message) {
	var event Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error("unparseable email event", "error", err, "raw", string(msg.Value))
		c.commit(msg) // skip poison message
		return
	}

	if event.MessageID == "" {
		c.logger.Error("email event missing message_id",
			"recipient", event.Recipient,
			"type", event.EventType)
		c.commit(msg)
		return
	}

	processed, err := c.idempotencyStore.IsProcessed(ctx, event.MessageID)
	if err != nil {
		c.logger.Error("idempotency check failed", "message_id", event.MessageID, "error", err)
		return // no commit, message will be retried
	}
	if processed {
		c.commit(msg)
		return
	}

	if err := c.sendWithRetry(event); err != nil {
		c.logger.Error("email delivery failed", "message_id", event.MessageID, "error", err)
		c.sendToDLQ(event, err)
		c.commit(msg)
		return
	}

	if _, err := c.idempotencyStore.MarkAsProcessed(ctx, event); err != nil {
		c.logger.Error("mark processed failed", "message_id", event.MessageID, "error", err)
		return
	}

	c.commit(msg)

	c.logger.Info("email delivered",
		"message_id", event.MessageID,
		"recipient", event.Recipient,
		"type", event.EventType)
}

func (c *Consumer) sendWithRetry(event Event) error {
	maxRetries := c.config.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := c.sender.Send(event); err == nil {
			return nil
		} else {
			lastErr = err
			c.logger.Warn("send failed, retrying",
				"message_id", event.MessageID,
				"attempt", attempt,
				"error", err)
		}
		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt) * time.Second)
		}
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Consumer) sendToDLQ(event Event, processingError error) {
	dlqEvent := map[string]interface{}{
		"original_event": event,
		"error":          processingError.Error(),
		"failed_at":      time.Now(),
		"consumer_group": c.config.ConsumerGroup,
	}

	payload, err := json.Marshal(dlqEvent)
	if err != nil {
		c.logger.Error("marshal DLQ event", "message_id", event.MessageID, "error", err)
		return
	}

	topic := c.config.DLQTopic
	err = c.dlqProducer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          payload,
	}, nil)
	if err != nil {
		c.logger.Error("produce to DLQ", "message_id", event.MessageID, "error", err)
	}
}

func (c *Consumer) commit(msg *kafka.Message) {
	if _, err := c.consumer.CommitMessage(msg); err != nil {
		c.logger.Error("commit offset", "error", err)
	}
}

// Close shuts down the consumer and DLQ producer.
func (c *Consumer) Close() {
	c.dlqProducer.Flush(5000)
	c.dlqProducer.Close()
	if err := c.consumer.Close(); err != nil {
		c.logger.Error("close consumer", "error", err)
	}
}
