package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"

	"shuddhudara/internal/config"
	"shuddhudara/internal/consul"
	"shuddhudara/internal/email"
	"shuddhudara/internal/kafka"
	"shuddhudara/internal/logger"
)

func main() {
	lgr := logger.New()
	lgr.Info("starting email worker")

	kafkaCfg, err := kafka.LoadConfig()
	if err != nil {
		lgr.Error("invalid kafka configuration", "error", err)
		os.Exit(1)
	}

	redisAddr := config.GetEnvOrDefault("REDIS_ADDR", "localhost:6379")
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		lgr.Error("failed to connect to redis", "addr", redisAddr, "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	lgr.Info("connected to redis", "addr", redisAddr)

	idempotencyStore := email.NewIdempotencyStore(redisClient, lgr)
	sender := email.NewSender(email.NewConfig())

	consumer, err := email.NewConsumer(&email.ConsumerConfig{
		Brokers:       kafkaCfg.Brokers,
		Topic:         kafkaCfg.EmailEventsTopic,
		DLQTopic:      kafkaCfg.EmailDLQTopic,
		ConsumerGroup: kafkaCfg.ConsumerGroup,
		MaxRetries:    3,
	}, sender, idempotencyStore, lgr)
	if err != nil {
		lgr.Error("failed to create kafka consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	go func() {
		lgr.Info("consuming email events", "topic", kafkaCfg.EmailEventsTopic)
		if err := consumer.Start(ctx); err != nil {
			lgr.Error("consumer stopped", "error", err)
		}
	}()

	// Small HTTP surface for liveness probes.
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/health", func(c *gin.Context) {
		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	port := config.GetEnvOrDefault("EMAIL_WORKER_PORT", "8085")
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lgr.Error("health server error", "error", err)
			os.Exit(1)
		}
	}()

	portNum, _ := strconv.Atoi(port)
	registration, err := consul.RegisterService(
		"shuddhudara-email-worker",
		config.GetEnvOrDefault("SERVICE_HOST", "localhost"),
		portNum,
	)
	if err != nil {
		lgr.Warn("consul registration failed", "error", err)
	} else if registration != nil {
		lgr.Info("registered with consul")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lgr.Info("shutting down email worker")
	if err := registration.Deregister(); err != nil {
		lgr.Error("consul deregistration failed", "error", err)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lgr.Error("forced shutdown", "error", err)
	}
	lgr.Info("email worker stopped")
}
