package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/templui/plateshare"
	"github.com/templui/plateshare/internal/api"
	"github.com/templui/plateshare/internal/config"
	"github.com/templui/plateshare/internal/identity"
	"github.com/templui/plateshare/internal/middleware"
	"github.com/templui/plateshare/internal/query"
	"github.com/templui/plateshare/internal/service"
	"github.com/templui/plateshare/internal/storage"
)

type App struct {
	Cfg            *config.Config
	API            *api.Client
	Cache          *query.Cache
	AuthService    *service.AuthService
	EmailService   *service.EmailService
	FoodService    *service.FoodService
	RequestService *service.RequestService
	PageService    *service.PageService
	ProfileService *service.ProfileService
	AuthLimiter    *middleware.RateLimiter
}

func New(cfg *config.Config) (*App, error) {
	// Backend and cache
	client := api.New(cfg.APIBaseURL, cfg.APITimeout)
	cache := query.New(
		query.WithStaleTime(cfg.QueryStaleTime),
		query.WithGCTime(cfg.QueryGCTime),
	)

	// Identity provider
	var provider identity.Provider
	if cfg.FirebaseAPIKey != "" {
		provider = identity.NewFirebase(cfg.FirebaseAPIKey)
	} else {
		slog.Warn("FIREBASE_API_KEY not set, using in-memory accounts")
		provider = identity.NewMemory()
	}

	// Image upload
	uploader, err := storage.New(cfg)
	if errors.Is(err, storage.ErrDisabled) {
		slog.Info("image upload disabled, only image URLs are accepted")
		uploader = nil
	} else if err != nil {
		cache.Close()
		return nil, fmt.Errorf("failed to initialize image upload: %w", err)
	}

	// Content
	content, err := contentFS(cfg.ContentPath)
	if err != nil {
		cache.Close()
		return nil, fmt.Errorf("failed to open content: %w", err)
	}

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.SupportEmail,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	authService := service.NewAuthService(provider, emailService, cfg)
	foodService := service.NewFoodService(client, cache, uploader, cfg.PageSize)
	requestService := service.NewRequestService(client, cache, foodService, emailService)
	pageService := service.NewPageService(content, cfg.IsDevelopment())
	profileService := service.NewProfileService(provider)

	return &App{
		Cfg:            cfg,
		API:            client,
		Cache:          cache,
		AuthService:    authService,
		EmailService:   emailService,
		FoodService:    foodService,
		RequestService: requestService,
		PageService:    pageService,
		ProfileService: profileService,
		AuthLimiter:    middleware.RateLimitAuth(),
	}, nil
}

// contentFS prefers the content directory on disk and falls back to the
// pages embedded in the binary.
func contentFS(dir string) (fs.FS, error) {
	if dir != "" {
		info, err := os.Stat(dir)
		if err == nil && info.IsDir() {
			return os.DirFS(dir), nil
		}
	}
	return fs.Sub(plateshare.ContentFS, "content")
}

func (a *App) Close() error {
	a.Cache.Close()
	a.AuthLimiter.Close()
	return nil
}
