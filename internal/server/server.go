package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"shuddhudara/internal/auth"
	"shuddhudara/internal/codes"
	"shuddhudara/internal/comments"
	"shuddhudara/internal/config"
	"shuddhudara/internal/database"
	"shuddhudara/internal/email"
	"shuddhudara/internal/files"
	"shuddhudara/internal/newsletter"
	"shuddhudara/internal/posts"
	"shuddhudara/internal/reactions"
	"shuddhudara/internal/storage"
	"shuddhudara/internal/users"
)

// Config holds HTTP server configuration.
type Config struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// LoadConfigFromEnv reads server settings with production-safe defaults.
func LoadConfigFromEnv() *Config {
	port, err := strconv.Atoi(config.GetEnvOrDefault("PORT", "8080"))
	if err != nil {
		port = 8080
	}

	return &Config{
		Port:         port,
		ReadTimeout:  config.GetEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: config.GetEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:  config.GetEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
	}
}

// Options carries the wired dependencies from main.
type Options struct {
	DB         database.Service
	Cache      *redis.Client
	Storage    storage.Service
	Tokens     *auth.TokenIssuer
	Dispatcher email.Dispatcher
	Logger     *slog.Logger
}

// Server owns the HTTP surface: every handler group plus the shared health
// dependencies.
type Server struct {
	cfg    *Config
	db     database.Service
	cache  *redis.Client
	store  storage.Service
	tokens *auth.TokenIssuer
	logger *slog.Logger

	usersRepo *users.Repository

	usersHandler      *users.Handler
	postsHandler      *posts.Handler
	reactionsHandler  *reactions.Handler
	commentsHandler   *comments.Handler
	newsletterHandler *newsletter.Handler
	filesHandler      *files.Handler
}

// New wires repositories, services and handlers and returns a configured
// http.Server ready for ListenAndServe.
func New(opts Options) *http.Server {
	cfg := LoadConfigFromEnv()
	logger := opts.Logger

	usersRepo := users.NewRepository(opts.DB)
	usersService := users.NewService(usersRepo, codes.NewRedisStore(opts.Cache), opts.Dispatcher, logger)

	postsRepo := posts.NewRepository(opts.DB)
	postsService := posts.NewService(postsRepo, opts.Cache, logger)

	reactionService := reactions.NewService(opts.DB, usersRepo, postsService, logger)
	commentsRepo := comments.NewRepository(opts.DB)
	newsletterRepo := newsletter.NewRepository(opts.DB)

	s := &Server{
		cfg:    cfg,
		db:     opts.DB,
		cache:  opts.Cache,
		store:  opts.Storage,
		tokens: opts.Tokens,
		logger: logger,

		usersRepo: usersRepo,

		usersHandler:      users.NewHandler(usersService, usersRepo, opts.Tokens),
		postsHandler:      posts.NewHandler(postsService, logger),
		reactionsHandler:  reactions.NewHandler(reactionService, logger),
		commentsHandler:   comments.NewHandler(commentsRepo, logger),
		newsletterHandler: newsletter.NewHandler(newsletterRepo, opts.Dispatcher, logger),
	}
	if opts.Storage != nil {
		s.filesHandler = files.NewHandler(files.NewService(opts.Storage), logger)
	}

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.RegisterRoutes(),
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}
