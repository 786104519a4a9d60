package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	UploaderImgBB = "imgbb"
	UploaderS3    = "s3"
)

type Config struct {
	// Application
	AppName      string
	AppEnv       string
	AppURL       string
	Port         string
	AppTagline   string
	SupportEmail string
	ContentPath  string

	// Backend (foods and requests live here)
	APIBaseURL string
	APITimeout time.Duration

	// Query cache
	QueryStaleTime time.Duration
	QueryGCTime    time.Duration

	// Listing
	PageSize int

	// Security
	JWTSecret string
	JWTExpiry time.Duration

	// Identity provider
	FirebaseAPIKey string

	// OAuth
	GoogleClientID     string
	GoogleClientSecret string

	// Email
	EmailFrom    string
	ResendAPIKey string

	// Observability (optional)
	SentryDSN      string
	MetricsEnabled bool

	// Image upload ("imgbb", "s3" or empty for URL-only)
	ImageUploader string
	ImgBBAPIKey   string
	ImgBBEndpoint string

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, etc.)
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string // Optional: for S3-compatible services
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName:      envString("APP_NAME", "PlateShare"),
		AppEnv:       envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:       envRequired("APP_URL"), // Required: base URL for OAuth redirects
		Port:         envString("PORT", "8090"),
		AppTagline:   envString("APP_TAGLINE", "Share your surplus food and help the community"),
		SupportEmail: envString("SUPPORT_EMAIL", "hello@example.com"),
		ContentPath:  envString("CONTENT_PATH", "content"),

		// Backend
		APIBaseURL: envRequired("API_BASE_URL"),
		APITimeout: envDuration("API_TIMEOUT", 15*time.Second),

		// Query cache
		QueryStaleTime: envDuration("QUERY_STALE_TIME", 30*time.Second),
		QueryGCTime:    envDuration("QUERY_GC_TIME", 5*time.Minute),

		// Listing
		PageSize: envInt("PAGE_SIZE", 12),

		// Security
		JWTSecret: envRequired("JWT_SECRET"),
		JWTExpiry: envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days

		// Identity provider (empty in development = in-memory accounts)
		FirebaseAPIKey: envString("FIREBASE_API_KEY", ""),

		// OAuth
		GoogleClientID:     envString("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: envString("GOOGLE_CLIENT_SECRET", ""),

		// Email (RESEND_API_KEY optional in development, required in production)
		EmailFrom:    envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		// Observability
		SentryDSN:      envString("SENTRY_DSN", ""),
		MetricsEnabled: envBool("METRICS_ENABLED", true),

		// Image upload
		ImageUploader: envString("IMAGE_UPLOADER", ""),
		ImgBBAPIKey:   envString("IMGBB_API_KEY", ""),
		ImgBBEndpoint: envString("IMGBB_ENDPOINT", "https://api.imgbb.com/1/upload"),

		// Storage (only read when IMAGE_UPLOADER=s3)
		S3Region:    envString("S3_REGION", ""),
		S3Bucket:    envString("S3_BUCKET", ""),
		S3AccessKey: envString("S3_ACCESS_KEY", ""),
		S3SecretKey: envString("S3_SECRET_KEY", ""),
		S3Endpoint:  envString("S3_ENDPOINT", ""),
	}

	if cfg.PageSize < 1 {
		slog.Warn("config invalid page size, using default", "value", cfg.PageSize, "default", 12)
		cfg.PageSize = 12
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures all required services are configured for production deployments.
// Development falls back to in-memory accounts and logged emails.
func validateProduction(cfg *Config) {
	if cfg.FirebaseAPIKey == "" {
		slog.Error("production deployment requires FIREBASE_API_KEY",
			"hint", "set APP_ENV=development to use in-memory accounts")
		os.Exit(1)
	}
	if cfg.ResendAPIKey == "" {
		slog.Error("production deployment requires RESEND_API_KEY",
			"hint", "set APP_ENV=development for local testing with email log mode")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GoogleEnabled reports whether Google sign-in is configured.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// UploadEnabled reports whether image files can be uploaded (otherwise only image URLs are accepted).
func (c *Config) UploadEnabled() bool {
	switch c.ImageUploader {
	case UploaderImgBB:
		return c.ImgBBAPIKey != ""
	case UploaderS3:
		return c.S3Bucket != ""
	}
	return false
}

// Sanitized returns a copy of the config with only public/safe fields.
// All secrets, credentials, and sensitive data are excluded.
// Safe to expose in ctx, templates and client-facing contexts.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:      c.AppName,
		AppEnv:       c.AppEnv,
		AppURL:       c.AppURL,
		Port:         c.Port,
		AppTagline:   c.AppTagline,
		SupportEmail: c.SupportEmail,

		PageSize: c.PageSize,

		EmailFrom: c.EmailFrom,

		GoogleClientID: c.GoogleClientID,

		S3Endpoint: c.S3Endpoint, // Needed for CSP policies
	}
}
