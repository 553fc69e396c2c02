package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CloudConfig holds the image API connection settings.
type CloudConfig struct {
	BaseURL string
	Key     string
	Secret  string
	Folder  string
	Timeout time.Duration
}

type cloudUploadResponse struct {
	URL       string `json:"url"`
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
}

type cloudErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CloudStore uploads images to a hosted image API over HTTP.
// Requests are never retried; a failed upload is reported to the caller as-is.
type CloudStore struct {
	httpClient *resty.Client
	folder     string
	logger     *zap.Logger
}

// NewCloudStore builds a client for the hosted image API.
func NewCloudStore(cfg CloudConfig, logger *zap.Logger) (*CloudStore, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("cloud storage url is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetBasicAuth(cfg.Key, cfg.Secret).
		SetHeader("Accept", "application/json")

	return &CloudStore{httpClient: client, folder: cfg.Folder, logger: logger}, nil
}

// Upload posts the image as multipart form data.
func (s *CloudStore) Upload(ctx context.Context, filename, contentType string, data []byte) (StoredImage, error) {
	if len(data) == 0 {
		return StoredImage{}, ErrEmptyImage
	}
	publicID := uuid.NewString()
	if s.folder != "" {
		publicID = s.folder + "/" + publicID
	}

	var result cloudUploadResponse
	var failure cloudErrorResponse
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetMultipartField("file", uploadName(filename, contentType), contentType, bytes.NewReader(data)).
		SetFormData(map[string]string{"public_id": publicID}).
		SetResult(&result).
		SetError(&failure).
		Post("/image/upload")
	if err != nil {
		s.logger.Warn("image upload request failed", zap.Error(err))
		return StoredImage{}, fmt.Errorf("upload image: %w", err)
	}
	if resp.IsError() {
		s.logger.Warn("image upload rejected",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("message", failure.Error.Message),
		)
		return StoredImage{}, fmt.Errorf("upload image: status %d: %s", resp.StatusCode(), failure.Error.Message)
	}

	url := result.SecureURL
	if url == "" {
		url = result.URL
	}
	if url == "" {
		return StoredImage{}, fmt.Errorf("upload image: response carried no url")
	}
	if result.PublicID != "" {
		publicID = result.PublicID
	}
	return StoredImage{URL: url, PublicID: publicID}, nil
}

// Delete removes the image identified by publicID.
func (s *CloudStore) Delete(ctx context.Context, publicID string) error {
	var failure cloudErrorResponse
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{"public_id": publicID}).
		SetError(&failure).
		Post("/image/destroy")
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("delete image: status %d: %s", resp.StatusCode(), failure.Error.Message)
	}
	return nil
}

func uploadName(filename, contentType string) string {
	if filename != "" {
		return filename
	}
	return "image" + extensionFor("", contentType)
}
