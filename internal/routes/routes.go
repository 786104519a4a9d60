package routes

import (
	"io/fs"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/templui/plateshare/assets"
	"github.com/templui/plateshare/internal/app"
	"github.com/templui/plateshare/internal/handler"
	"github.com/templui/plateshare/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	home := handler.NewHomeHandler(app.FoodService)
	food := handler.NewFoodHandler(app.FoodService)
	request := handler.NewRequestHandler(app.RequestService)
	auth := handler.NewAuthHandler(app.AuthService)
	page := handler.NewPageHandler(app.PageService, app.EmailService)
	profile := handler.NewProfileHandler(app.ProfileService, app.AuthService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	// Static files
	sub, _ := fs.Sub(assets.AssetsFS, ".")
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServer(http.FS(sub))))

	// Operations
	mux.HandleFunc("GET /healthz", home.Healthz)
	if app.Cfg.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	// Home and browsing
	mux.HandleFunc("GET /{$}", home.HomePage)
	mux.HandleFunc("GET /foods", food.ListFoods)

	// Content
	mux.HandleFunc("GET /about", page.Static("about"))
	mux.HandleFunc("GET /contact", page.ContactPage)
	mux.HandleFunc("POST /contact", page.Contact)

	// Preferences
	mux.HandleFunc("POST /theme", handler.ToggleTheme)

	// Auth (rate limited)
	rateLimit := app.AuthLimiter.Middleware

	mux.HandleFunc("GET /login", middleware.RequireGuest(auth.LoginPage))
	mux.HandleFunc("POST /login", rateLimit(middleware.RequireGuest(auth.Login)))
	mux.HandleFunc("GET /register", middleware.RequireGuest(auth.RegisterPage))
	mux.HandleFunc("POST /register", rateLimit(middleware.RequireGuest(auth.Register)))
	mux.HandleFunc("GET /auth/google", rateLimit(middleware.RequireGuest(auth.GoogleAuth)))
	mux.HandleFunc("GET /auth/google/callback", rateLimit(auth.GoogleCallback))
	mux.HandleFunc("POST /logout", auth.Logout)

	// ============================================================================
	// PROTECTED ROUTES
	// ============================================================================

	// Donating
	mux.HandleFunc("GET /add-food", middleware.RequireAuth(food.AddFoodPage))
	mux.HandleFunc("POST /add-food", middleware.RequireAuth(food.CreateFood))
	mux.HandleFunc("GET /my-foods", middleware.RequireAuth(food.MyFoodsPage))
	mux.HandleFunc("GET /my-foods/{id}/edit", middleware.RequireAuth(food.EditFoodPage))
	mux.HandleFunc("POST /my-foods/{id}", middleware.RequireAuth(food.UpdateFood))
	mux.HandleFunc("POST /my-foods/{id}/delete", middleware.RequireAuth(food.DeleteFood))

	// Requesting
	mux.HandleFunc("GET /food/{id}", middleware.RequireAuth(request.FoodDetail))
	mux.HandleFunc("POST /food/{id}/requests", middleware.RequireAuth(request.CreateRequest))
	mux.HandleFunc("POST /food/{id}/requests/{requestID}/accept", middleware.RequireAuth(request.AcceptRequest))
	mux.HandleFunc("POST /food/{id}/requests/{requestID}/reject", middleware.RequireAuth(request.RejectRequest))
	mux.HandleFunc("GET /requests", middleware.RequireAuth(request.MyRequests))

	// Account
	mux.HandleFunc("GET /profile", middleware.RequireAuth(profile.ProfilePage))
	mux.HandleFunc("POST /profile", middleware.RequireAuth(profile.UpdateProfile))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	// 404
	mux.HandleFunc("/{path...}", home.NotFoundPage)

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.Config(app.Cfg), // Config must be first (needed by SecurityHeaders and cookies)
		middleware.NonceMiddleware, // Generate CSP nonce for each request (must be before SecurityHeaders)
		middleware.SecurityHeaders,
		middleware.RequestLogging,
		middleware.CSRFProtection, // CSRF protection for all state-changing requests
		middleware.AuthMiddleware(app.AuthService),
		middleware.Flash,
		middleware.Theme,
		middleware.WithURLPath,
	)

	return handler
}
