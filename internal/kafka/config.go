// Package kafka wraps the Confluent Kafka client for email event transport.
package kafka

import (
	"fmt"
	"os"

	"shuddhudara/internal/config"
)

// Config holds Kafka connection and topic configuration.
type Config struct {
	Brokers           string
	EmailEventsTopic  string
	EmailDLQTopic     string
	ConsumerGroup     string
	EnableIdempotence bool
	Acks              string
}

// LoadConfig reads Kafka configuration from environment variables.
func LoadConfig() (*Config, error) {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}

	return &Config{
		Brokers:           brokers,
		EmailEventsTopic:  config.GetEnvOrDefault("KAFKA_TOPIC_EMAIL_EVENTS", "email-events"),
		EmailDLQTopic:     config.GetEnvOrDefault("KAFKA_TOPIC_EMAIL_DLQ", "email-events-dlq"),
		ConsumerGroup:     config.GetEnvOrDefault("KAFKA_CONSUMER_GROUP", "email-worker-group"),
		EnableIdempotence: true,
		Acks:              "all",
	}, nil
}
