package users

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// TokenIssuer signs a bearer token for an account. Satisfied by
// *auth.TokenIssuer.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// Handler handles HTTP requests for accounts, auth flows, and points.
type Handler struct {
	service *Service
	repo    *Repository
	tokens  TokenIssuer
}

// NewHandler creates an accounts handler.
func NewHandler(service *Service, repo *Repository, tokens TokenIssuer) *Handler {
	return &Handler{service: service, repo: repo, tokens: tokens}
}

// currentUser reads the account stored in the gin context by the auth
// middleware.
func currentUser(c *gin.Context) (*User, bool) {
	value, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := value.(*User)
	return user, ok
}

// Register handles POST /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Please provide all required fields: username, email, and password",
		})
		return
	}

	user, err := h.service.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrUsernameExists) || errors.Is(err, ErrEmailExists) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Message: conflictMessage(err),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Server error during registration"})
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Server error during registration"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully",
		"token":   token,
		"user": gin.H{
			"id":         user.ID,
			"username":   user.Username,
			"email":      user.Email,
			"points":     user.Points,
			"created_at": user.CreatedAt,
		},
	})
}

// Login handles POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Please provide email and password"})
		return
	}

	user, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Server error during login"})
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Server error during login"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"token":   token,
		"user": gin.H{
			"id":         user.ID,
			"username":   user.Username,
			"email":      user.Email,
			"points":     user.Points,
			"last_login": time.Now(),
		},
	})
}

// Profile handles GET /api/auth/profile
func (h *Handler) Profile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Not authorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": gin.H{
			"id":         user.ID,
			"username":   user.Username,
			"email":      user.Email,
			"points":     user.Points,
			"created_at": user.CreatedAt,
			"last_login": user.LastLogin,
		},
	})
}

// Logout handles POST /api/auth/logout. Tokens are stateless; the client
// discards its copy.
func (h *Handler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out successfully. Please remove the token from client storage.",
	})
}

// ForgotPassword handles POST /api/auth/forgot-password
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Please provide your email address"})
		return
	}

	if err := h.service.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Server error during password reset request"})
		return
	}

	// Same response whether or not the account exists
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "If an account exists with this email, you will receive password reset instructions.",
	})
}

// UpdatePoints handles POST /api/points/update. Authenticated callers may
// only adjust their own total.
func (h *Handler) UpdatePoints(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Not authorized"})
		return
	}

	var req UpdatePointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Missing amount"})
		return
	}

	points, err := h.repo.AdjustPoints(c.Request.Context(), user.ID, *req.Amount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Server error updating points"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Points updated successfully",
		"points":  points,
	})
}

// Guardians handles GET /api/purepulse/guardians
func (h *Handler) Guardians(c *gin.Context) {
	guardians, err := h.repo.TopGuardians(c.Request.Context(), 10)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Error fetching guardians"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"guardians": guardians,
	})
}

func conflictMessage(err error) string {
	if errors.Is(err, ErrEmailExists) {
		return "Email already in use. Please choose a different one."
	}
	return "Username already in use. Please choose a different one."
}
