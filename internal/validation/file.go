package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

type FileConstraints struct {
	AllowedMimeTypes  map[string]bool
	AllowedExtensions map[string]bool
	MaxSize           int64
}

// ImageConstraints apply to food photos.
var ImageConstraints = FileConstraints{
	AllowedMimeTypes: map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/webp": true,
		"image/gif":  true,
	},
	AllowedExtensions: map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".webp": true,
		".gif":  true,
	},
	MaxSize: 5 << 20, // 5MB
}

// ValidateImage checks an uploaded food photo and returns its detected content type.
func ValidateImage(header *multipart.FileHeader) (string, error) {
	return ValidateFile(header, ImageConstraints)
}

// ValidateFile checks an upload against c and returns the content type
// detected from its first bytes.
func ValidateFile(header *multipart.FileHeader, c FileConstraints) (string, error) {
	if header.Size > c.MaxSize {
		return "", fmt.Errorf("file too large: maximum size is %d MB", c.MaxSize/(1<<20))
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !c.AllowedExtensions[ext] {
		return "", fmt.Errorf("invalid file extension: %s", ext)
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return sniff(file, c)
}

// sniff reads magic numbers, never trusting the client supplied Content-Type.
func sniff(r io.Reader, c FileConstraints) (string, error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	detected := http.DetectContentType(buf[:n])
	if !c.AllowedMimeTypes[detected] {
		return "", fmt.Errorf("invalid file type (detected: %s)", detected)
	}
	return detected, nil
}
