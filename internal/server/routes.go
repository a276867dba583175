package server

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"shuddhudara/internal/auth"
	"shuddhudara/internal/config"
)

// RegisterRoutes builds the gin engine with middleware and all route groups.
func (s *Server) RegisterRoutes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware(s.logger))

	origins := strings.Split(config.GetEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173"), ",")
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.GET("/", s.rootHandler)
	r.GET("/health", s.healthHandler)

	protect := auth.Protect(s.tokens, s.usersRepo)

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", s.usersHandler.Register)
		authGroup.POST("/login", s.usersHandler.Login)
		authGroup.POST("/forgot-password", s.usersHandler.ForgotPassword)
		authGroup.GET("/profile", protect, s.usersHandler.Profile)
		authGroup.POST("/logout", protect, s.usersHandler.Logout)
	}

	purepulse := r.Group("/api/purepulse")
	{
		purepulse.GET("/feed", s.postsHandler.Feed)
		purepulse.GET("/guardians", s.usersHandler.Guardians)
		purepulse.POST("/post", protect, s.postsHandler.Create)
		purepulse.PUT("/post/:id", protect, s.postsHandler.Update)
		purepulse.DELETE("/post/:id", protect, s.postsHandler.Delete)
		purepulse.POST("/breathe/:id", protect, s.reactionsHandler.Breathe)
		purepulse.GET("/post/:id/comments", s.commentsHandler.List)
		purepulse.POST("/post/:id/comment", protect, s.commentsHandler.Create)
	}

	community := r.Group("/api/community")
	{
		community.GET("/posts", s.postsHandler.CommunityList)
		community.POST("/posts", s.postsHandler.CommunityCreate)
		community.POST("/posts/:id/like", protect, s.reactionsHandler.CommunityLike)
	}

	newsletterGroup := r.Group("/api/newsletter")
	{
		newsletterGroup.POST("/join", s.newsletterHandler.Join)
		newsletterGroup.GET("/count", s.newsletterHandler.Count)
	}

	r.POST("/api/points/update", protect, s.usersHandler.UpdatePoints)

	if s.filesHandler != nil {
		fileGroup := r.Group("/api/files", protect)
		{
			fileGroup.POST("/upload-url", s.filesHandler.UploadURL)
			fileGroup.POST("/download-url", s.filesHandler.DownloadURL)
		}
	}

	return r
}

func (s *Server) rootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Welcome to SHUDDHUDARA API",
		"version": "1.0.0",
		"status":  "Server is running",
	})
}

func (s *Server) healthHandler(c *gin.Context) {
	ctx := c.Request.Context()
	response := gin.H{
		"database": s.db.Health(ctx),
	}

	if s.cache != nil {
		cacheHealth := map[string]string{"status": "up"}
		if err := s.cache.Ping(ctx).Err(); err != nil {
			cacheHealth["status"] = "down"
			cacheHealth["error"] = err.Error()
		}
		response["cache"] = cacheHealth
	}

	if s.store != nil {
		storageHealth := map[string]string{"status": "up"}
		if err := s.store.Health(ctx); err != nil {
			storageHealth["status"] = "down"
			storageHealth["error"] = err.Error()
		}
		response["storage"] = storageHealth
	}

	c.JSON(http.StatusOK, response)
}
