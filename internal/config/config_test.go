package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setRequired(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("APP_URL", "http://localhost:8090")
	t.Setenv("API_BASE_URL", "http://localhost:5000")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg := Load()
	assert.Equal(t, "PlateShare", cfg.AppName)
	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, 15*time.Second, cfg.APITimeout)
	assert.Equal(t, 30*time.Second, cfg.QueryStaleTime)
	assert.Equal(t, 12, cfg.PageSize)
	assert.True(t, cfg.MetricsEnabled)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.UploadEnabled())
	assert.False(t, cfg.GoogleEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("QUERY_GC_TIME", "not-a-duration")
	t.Setenv("PAGE_SIZE", "0")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("IMAGE_UPLOADER", UploaderImgBB)
	t.Setenv("IMGBB_API_KEY", "key")

	cfg := Load()
	assert.Equal(t, 3*time.Second, cfg.APITimeout)
	assert.Equal(t, 5*time.Minute, cfg.QueryGCTime, "invalid values fall back")
	assert.Equal(t, 12, cfg.PageSize, "page size must be positive")
	assert.False(t, cfg.MetricsEnabled)
	assert.True(t, cfg.UploadEnabled())
}

func TestUploadEnabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"none", Config{}, false},
		{"imgbb without key", Config{ImageUploader: UploaderImgBB}, false},
		{"imgbb", Config{ImageUploader: UploaderImgBB, ImgBBAPIKey: "k"}, true},
		{"s3 without bucket", Config{ImageUploader: UploaderS3}, false},
		{"s3", Config{ImageUploader: UploaderS3, S3Bucket: "foods"}, true},
		{"unknown", Config{ImageUploader: "ftp", S3Bucket: "foods"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.UploadEnabled())
		})
	}
}

func TestSanitized(t *testing.T) {
	cfg := &Config{
		AppName:            "PlateShare",
		AppEnv:             "production",
		JWTSecret:          "secret",
		FirebaseAPIKey:     "firebase",
		GoogleClientID:     "client",
		GoogleClientSecret: "client-secret",
		ResendAPIKey:       "resend",
		ImgBBAPIKey:        "imgbb",
		S3SecretKey:        "s3",
		SentryDSN:          "https://sentry",
	}

	safe := cfg.Sanitized()
	assert.Equal(t, "PlateShare", safe.AppName)
	assert.True(t, safe.IsProduction())
	assert.Equal(t, "client", safe.GoogleClientID)
	assert.Empty(t, safe.JWTSecret)
	assert.Empty(t, safe.FirebaseAPIKey)
	assert.Empty(t, safe.GoogleClientSecret)
	assert.Empty(t, safe.ResendAPIKey)
	assert.Empty(t, safe.ImgBBAPIKey)
	assert.Empty(t, safe.S3SecretKey)
	assert.Empty(t, safe.SentryDSN)
}
