package posts

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shuddhudara/internal/auth"
)

// PostReward is the impact-point award for sharing an authenticated pulse.
const PostReward = 50

// FeedService is the feed surface the handler needs, satisfied by *Service.
type FeedService interface {
	Feed(ctx context.Context) ([]Post, error)
	Create(ctx context.Context, userID *int64, authorName, content, tags, imageURL string) (*Post, error)
	CreateAuthored(ctx context.Context, userID int64, authorName, content, tags, imageURL string, reward int64) (*Post, int64, error)
	Update(ctx context.Context, postID, userID int64, content, imageURL *string) (*Post, error)
	Delete(ctx context.Context, postID, userID int64) error
}

// Handler exposes the feed endpoints over HTTP.
type Handler struct {
	service FeedService
	logger  *slog.Logger
}

func NewHandler(service FeedService, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Feed handles GET /api/purepulse/feed
func (h *Handler) Feed(c *gin.Context) {
	feed, err := h.service.Feed(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to fetch feed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error fetching feed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"posts":   feed,
	})
}

// Create handles POST /api/purepulse/post
func (h *Handler) Create(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "Not authorized. Please login to access this resource.",
		})
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Content is required",
		})
		return
	}

	post, points, err := h.service.CreateAuthored(
		c.Request.Context(), user.ID, user.Username, req.Content, req.Tags, req.ImageURL, PostReward,
	)
	if err != nil {
		h.logger.Error("failed to create post", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error creating post",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"post":    post,
		"user":    gin.H{"points": points},
		"message": "Pulse shared successfully! +50 Impact Points awarded.",
	})
}

// Update handles PUT /api/purepulse/post/:id
func (h *Handler) Update(c *gin.Context) {
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

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request body",
		})
		return
	}

	post, err := h.service.Update(c.Request.Context(), postID, user.ID, req.Content, req.ImageURL)
	if errors.Is(err, ErrPostNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Post not found or unauthorized",
		})
		return
	}
	if err != nil {
		h.logger.Error("failed to update post", "post_id", postID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error updating pulse",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"post":    post,
		"message": "Pulse updated successfully!",
	})
}

// Delete handles DELETE /api/purepulse/post/:id
func (h *Handler) Delete(c *gin.Context) {
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

	err = h.service.Delete(c.Request.Context(), postID, user.ID)
	if errors.Is(err, ErrPostNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Post not found or unauthorized",
		})
		return
	}
	if err != nil {
		h.logger.Error("failed to delete post", "post_id", postID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error deleting pulse",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Pulse deleted from Nexus",
	})
}

// CommunityList handles GET /api/community/posts
func (h *Handler) CommunityList(c *gin.Context) {
	feed, err := h.service.Feed(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to fetch community posts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error fetching posts"})
		return
	}
	c.JSON(http.StatusOK, feed)
}

// CommunityCreate handles POST /api/community/posts, anonymous authorship
// allowed.
func (h *Handler) CommunityCreate(c *gin.Context) {
	var req CreateCommunityPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Content and Author Name are required"})
		return
	}

	post, err := h.service.Create(c.Request.Context(), req.UserID, req.AuthorName, req.Content, req.Tags, "")
	if err != nil {
		h.logger.Error("failed to create community post", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error creating post"})
		return
	}

	c.JSON(http.StatusCreated, post)
}
