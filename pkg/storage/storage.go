package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"mime"
	"path/filepath"
	"strings"
)

// ErrEmptyImage is returned when an upload carries no bytes.
var ErrEmptyImage = errors.New("image payload is empty")

// StoredImage is the reference returned by a blob store after a successful upload.
type StoredImage struct {
	URL      string
	PublicID string
}

// BlobStore persists complaint photos and hands back a public URL.
type BlobStore interface {
	Upload(ctx context.Context, filename, contentType string, data []byte) (StoredImage, error)
	Delete(ctx context.Context, publicID string) error
}

// DataURI embeds the image inline. Used when no blob store is configured.
func DataURI(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// IsImage reports whether the content type describes an image.
func IsImage(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/")
}

func extensionFor(filename, contentType string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" && len(ext) <= 6 {
		return ext
	}
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
