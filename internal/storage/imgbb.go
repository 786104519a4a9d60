package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// ImgBB uploads images to imgbb.com (or a compatible endpoint).
type ImgBB struct {
	apiKey   string
	endpoint string
	http     *http.Client
}

func NewImgBB(apiKey, endpoint string) *ImgBB {
	return &ImgBB{
		apiKey:   apiKey,
		endpoint: endpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

type imgbbResponse struct {
	Success bool `json:"success"`
	Status  int  `json:"status"`
	Data    struct {
		URL        string `json:"url"`
		DisplayURL string `json:"display_url"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload posts the image as multipart form data (key + image) and returns data.url.
func (u *ImgBB) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	err := w.WriteField("key", u.apiKey)
	if err != nil {
		return "", fmt.Errorf("failed to write key field: %w", err)
	}

	part, err := w.CreateFormFile("image", objectName(filename))
	if err != nil {
		return "", fmt.Errorf("failed to create image part: %w", err)
	}
	_, err = io.Copy(part, r)
	if err != nil {
		return "", fmt.Errorf("failed to copy image: %w", err)
	}

	err = w.Close()
	if err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := u.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var out imgbbResponse
	err = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out)
	if err != nil {
		return "", fmt.Errorf("failed to decode upload response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK || !out.Success || out.Data.URL == "" {
		msg := out.Error.Message
		if msg == "" {
			msg = resp.Status
		}
		return "", fmt.Errorf("image host rejected upload: %s", msg)
	}

	return out.Data.URL, nil
}
