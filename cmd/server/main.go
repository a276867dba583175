package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"

	"shuddhudara/internal/auth"
	"shuddhudara/internal/config"
	"shuddhudara/internal/consul"
	"shuddhudara/internal/database"
	"shuddhudara/internal/email"
	"shuddhudara/internal/kafka"
	"shuddhudara/internal/logger"
	"shuddhudara/internal/server"
	"shuddhudara/internal/storage"
)

func main() {
	lgr := logger.New()
	lgr.Info("starting shuddhudara API server")

	if err := config.ValidateEnv([]string{"DATABASE_URL", "JWT_SECRET"}); err != nil {
		lgr.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	db, err := database.New(ctx)
	if err != nil {
		lgr.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		lgr.Error("failed to migrate schema", "error", err)
		os.Exit(1)
	}
	lgr.Info("database ready")

	var cache *redis.Client
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		if err := cache.Ping(ctx).Err(); err != nil {
			lgr.Error("failed to connect to redis", "addr", redisAddr, "error", err)
			os.Exit(1)
		}
		defer cache.Close()
		lgr.Info("connected to redis", "addr", redisAddr)
	} else {
		lgr.Warn("REDIS_ADDR not set, feed cache and reset codes disabled")
	}

	store, err := storage.New(ctx, lgr)
	if err != nil {
		lgr.Warn("object storage unavailable, image upload routes disabled", "error", err)
		store = nil
	}

	tokens := auth.NewTokenIssuer()

	// Email events go through Kafka when a broker is configured, otherwise
	// they are sent inline.
	var dispatcher email.Dispatcher
	kafkaCfg, err := kafka.LoadConfig()
	if err == nil {
		producer, err := kafka.NewProducer(kafkaCfg, lgr)
		if err != nil {
			lgr.Error("failed to create kafka producer", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		dispatcher = email.NewKafkaDispatcher(producer.Publish, kafkaCfg.EmailEventsTopic, lgr)
		lgr.Info("email events routed through kafka", "topic", kafkaCfg.EmailEventsTopic)
	} else {
		sender := email.NewSender(email.NewConfig())
		dispatcher = email.NewDirectDispatcher(sender, lgr)
		lgr.Info("kafka not configured, sending email directly")
	}

	srv := server.New(server.Options{
		DB:         db,
		Cache:      cache,
		Storage:    store,
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Logger:     lgr,
	})

	registration, err := consul.RegisterService(
		"shuddhudara-api",
		config.GetEnvOrDefault("SERVICE_HOST", "localhost"),
		server.LoadConfigFromEnv().Port,
	)
	if err != nil {
		lgr.Warn("consul registration failed", "error", err)
	} else if registration != nil {
		lgr.Info("registered with consul")
	}

	go func() {
		lgr.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lgr.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lgr.Info("shutting down")
	if err := registration.Deregister(); err != nil {
		lgr.Error("consul deregistration failed", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lgr.Error("forced shutdown", "error", err)
	}
	lgr.Info("stopped")
}
