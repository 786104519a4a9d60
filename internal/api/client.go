package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrUnavailable       = errors.New("backend unavailable")
	ErrMalformedResponse = errors.New("malformed backend response")
)

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "plateshare_backend_request_duration_seconds",
	Help:    "Duration of REST backend calls by operation and status code.",
	Buckets: prometheus.DefBuckets,
}, []string{"op", "code"})

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: backend returned %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client talks to the PlateShare REST backend. The backend stores foods and
// requests and does no filtering; all filtering happens in the caller.
type Client struct {
	baseURL  string
	http     *http.Client
	validate *validator.Validate
}

func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		http:     httpClient,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// do sends body as JSON (when non-nil) and decodes the response into out (when non-nil).
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode body: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		requestDuration.WithLabelValues(op, "error").Observe(time.Since(start).Seconds())
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}
	defer resp.Body.Close()
	requestDuration.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &StatusError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(msg)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrMalformedResponse, err)
	}
	return nil
}

// ack is the acknowledgement some backends return for writes instead of the document.
type ack struct {
	InsertedID    json.RawMessage `json:"insertedId"`
	ModifiedCount *int            `json:"modifiedCount"`
	DeletedCount  *int            `json:"deletedCount"`
}

// insertedID returns the inserted id of a write acknowledgement.
// Both plain strings and {"$oid": "..."} objects are accepted.
func (a *ack) insertedID() string {
	if len(a.InsertedID) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(a.InsertedID, &s) == nil {
		return s
	}
	var oid struct {
		OID string `json:"$oid"`
	}
	if json.Unmarshal(a.InsertedID, &oid) == nil {
		return oid.OID
	}
	return ""
}

// hasDocumentID reports whether raw is a JSON object carrying an "_id".
func hasDocumentID(raw json.RawMessage) bool {
	var doc struct {
		ID json.RawMessage `json:"_id"`
	}
	return json.Unmarshal(raw, &doc) == nil && len(doc.ID) > 0
}

func (c *Client) check(op string, v any) error {
	err := c.validate.Struct(v)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrMalformedResponse, err)
	}
	return nil
}
