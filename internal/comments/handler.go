package comments

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shuddhudara/internal/auth"
)

// Store is the comment persistence surface the handler needs.
type Store interface {
	Create(ctx context.Context, postID, userID int64, authorName, content string) (*Comment, int64, error)
	ListByPost(ctx context.Context, postID int64) ([]Comment, error)
}

type Handler struct {
	store  Store
	logger *slog.Logger
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// List handles GET /api/purepulse/post/:id/comments
func (h *Handler) List(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid post id",
		})
		return
	}

	list, err := h.store.ListByPost(c.Request.Context(), postID)
	if err != nil {
		h.logger.Error("failed to fetch comments", "post_id", postID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error fetching comments",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"comments": list,
	})
}

// Create handles POST /api/purepulse/post/:id/comment
func (h *Handler) Create(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "Not authorized. Please login to access this resource.",
		})
		return
	}

	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid post id",
		})
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Comment content is required",
		})
		return
	}

	comment, points, err := h.store.Create(c.Request.Context(), postID, user.ID, user.Username, req.Content)
	if errors.Is(err, ErrPostNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Post not found",
		})
		return
	}
	if err != nil {
		h.logger.Error("failed to create comment", "post_id", postID, "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error posting comment",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"comment": comment,
		"user":    gin.H{"points": points},
		"message": "Feedback logged in the Nexus! +10 Impact Points awarded.",
	})
}
