package files

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"shuddhudara/internal/storage"
)

// Service generates presigned URLs for post-image uploads and downloads.
type Service struct {
	storage storage.Service
}

func NewService(storage storage.Service) *Service {
	return &Service{storage: storage}
}

// ValidateFilename rejects empty, oversized and path-traversing names.
func ValidateFilename(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}
	if len(filename) > MaxFilenameLength {
		return fmt.Errorf("filename too long (max %d characters)", MaxFilenameLength)
	}
	if strings.Contains(filename, "..") || strings.Contains(filename, "/") || strings.Contains(filename, "\\") {
		return fmt.Errorf("filename contains invalid characters")
	}
	if filepath.Ext(filename) == "" {
		return fmt.Errorf("filename must have an extension")
	}
	return nil
}

// ValidateContentType enforces the image whitelist.
func ValidateContentType(contentType string) error {
	if contentType == "" {
		return fmt.Errorf("content type cannot be empty")
	}
	if !AllowedContentTypes[contentType] {
		return fmt.Errorf("content type %s is not allowed", contentType)
	}
	return nil
}

// UploadURL validates the request and returns a presigned PUT URL under a
// unique key.
func (s *Service) UploadURL(ctx context.Context, req *UploadURLRequest) (*UploadURLResponse, error) {
	if err := ValidateFilename(req.Filename); err != nil {
		return nil, fmt.Errorf("invalid filename: %w", err)
	}
	if err := ValidateContentType(req.ContentType); err != nil {
		return nil, fmt.Errorf("invalid content type: %w", err)
	}

	fileKey := fmt.Sprintf("posts/%s-%s", uuid.New().String(), req.Filename)

	uploadURL, err := s.storage.PresignUpload(ctx, fileKey, req.ContentType, UploadTTL)
	if err != nil {
		return nil, fmt.Errorf("generate upload URL: %w", err)
	}

	return &UploadURLResponse{
		UploadURL: uploadURL,
		FileKey:   fileKey,
		ExpiresAt: time.Now().Add(UploadTTL).Unix(),
	}, nil
}

// DownloadURL returns a presigned GET URL for an existing key.
func (s *Service) DownloadURL(ctx context.Context, req *DownloadURLRequest) (*DownloadURLResponse, error) {
	if req.FileKey == "" {
		return nil, fmt.Errorf("file key cannot be empty")
	}

	downloadURL, err := s.storage.PresignDownload(ctx, req.FileKey, DownloadTTL)
	if err != nil {
		return nil, fmt.Errorf("generate download URL: %w", err)
	}

	return &DownloadURLResponse{
		DownloadURL: downloadURL,
		ExpiresAt:   time.Now().Add(DownloadTTL).Unix(),
	}, nil
}
