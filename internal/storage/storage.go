package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/templui/plateshare/internal/config"
)

// ErrDisabled is returned by New when no uploader is configured. Food
// forms then accept an image URL only.
var ErrDisabled = errors.New("image upload disabled")

// Uploader hosts an image and returns the URL stored on the food listing.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// New picks the uploader named by IMAGE_UPLOADER.
func New(c *config.Config) (Uploader, error) {
	if !c.UploadEnabled() {
		return nil, ErrDisabled
	}

	switch c.ImageUploader {
	case config.UploaderImgBB:
		slog.Info("initializing ImgBB uploader", "endpoint", c.ImgBBEndpoint)
		return NewImgBB(c.ImgBBAPIKey, c.ImgBBEndpoint), nil
	case config.UploaderS3:
		slog.Info("initializing S3 storage",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Storage(context.Background(), S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
		})
	}
	return nil, fmt.Errorf("unknown image uploader %q", c.ImageUploader)
}

// objectName gives every upload a unique name that keeps the original extension.
func objectName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return uuid.NewString() + ext
}
