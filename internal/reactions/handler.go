package reactions

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"shuddhudara/internal/auth"
)

// Handler exposes the breathe toggle over HTTP.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Breathe handles POST /api/purepulse/breathe/:id
func (h *Handler) Breathe(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "Not authorized. Please login to access this resource.",
		})
		return
	}

	result, err := h.service.Toggle(c.Request.Context(), c.Param("id"), user.ID)
	if errors.Is(err, ErrPostNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Post not found",
		})
		return
	}
	if err != nil {
		h.logger.Error("breathe toggle failed", "post_id", c.Param("id"), "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error interacting with post",
		})
		return
	}

	if result.Phantom {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Impact established via phantom node! +10 Impact Points awarded.",
			"user":    gin.H{"points": result.Points},
		})
		return
	}

	message := "Connection withdrew. Impact neutralized."
	if result.Liked {
		message = "Breathed life into the pulse! +10 Impact Points awarded."
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"likes":   result.Likes,
		"liked":   result.Liked,
		"user":    gin.H{"points": result.Points},
		"message": message,
	})
}

// CommunityLike handles POST /api/community/posts/:id/like by delegating to
// the same ledger as the breathe route, so the counter never drifts from the
// per-account reaction rows.
func (h *Handler) CommunityLike(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized. Please login to access this resource."})
		return
	}

	result, err := h.service.Toggle(c.Request.Context(), c.Param("id"), user.ID)
	if errors.Is(err, ErrPostNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}
	if err != nil {
		h.logger.Error("community like failed", "post_id", c.Param("id"), "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error liking post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"likes": result.Likes, "liked": result.Liked})
}
