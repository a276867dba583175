package files

import "time"

type UploadURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

type UploadURLResponse struct {
	UploadURL string `json:"upload_url"`
	FileKey   string `json:"file_key"`
	ExpiresAt int64  `json:"expires_at"`
}

type DownloadURLRequest struct {
	FileKey string `json:"file_key" binding:"required"`
}

type DownloadURLResponse struct {
	DownloadURL string `json:"download_url"`
	ExpiresAt   int64  `json:"expires_at"`
}

const (
	MaxFilenameLength = 255

	UploadTTL   = 15 * time.Minute
	DownloadTTL = time.Hour
)

// AllowedContentTypes restricts uploads to post images.
var AllowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}
