package files

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// UploadURL handles POST /api/files/upload-url
func (h *Handler) UploadURL(c *gin.Context) {
	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "filename and content_type are required",
		})
		return
	}

	response, err := h.service.UploadURL(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// DownloadURL handles POST /api/files/download-url
func (h *Handler) DownloadURL(c *gin.Context) {
	var req DownloadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "file_key is required",
		})
		return
	}

	response, err := h.service.DownloadURL(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("failed to presign download", "file_key", req.FileKey, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to generate download URL",
		})
		return
	}

	c.JSON(http.StatusOK, response)
}
