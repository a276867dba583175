package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"shuddhudara/internal/codes"
	"shuddhudara/internal/email"
)

var (
	// ErrInvalidCredentials is returned when email or password do not match
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Service implements account registration, login, and password-reset flows.
type Service struct {
	repo       *Repository
	codeStore  codes.Store
	dispatcher email.Dispatcher
	logger     *slog.Logger
}

// NewService creates an account service.
func NewService(repo *Repository, codeStore codes.Store, dispatcher email.Dispatcher, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		codeStore:  codeStore,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, username, email, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, username, email, string(hash))
	if err != nil {
		return nil, err
	}

	s.logger.Info("account created", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login verifies credentials and records the login time.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID); err != nil {
		// Non-critical, the login itself succeeded
		s.logger.Warn("update last login failed", "user_id", user.ID, "error", err)
	}

	return user, nil
}

// RequestPasswordReset generates a short-lived reset code and dispatches it
// by email. Unknown addresses are ignored so the response never discloses
// whether an account exists.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	user, err := s.repo.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return err
	}

	code := codes.GenerateCode()
	if err := s.codeStore.Set(ctx, codes.ResetKey(user.Email), code, codes.ResetCodeTTL); err != nil {
		return fmt.Errorf("store reset code: %w", err)
	}

	event := email.NewEvent(email.TypePasswordReset, user.Email, map[string]interface{}{
		"code":       code,
		"expires_in": codes.ResetCodeTTL.String(),
	})
	if err := s.dispatcher.Dispatch(event); err != nil {
		return fmt.Errorf("dispatch reset email: %w", err)
	}

	s.logger.Info("password reset requested", "user_id", user.ID)
	return nil
}
