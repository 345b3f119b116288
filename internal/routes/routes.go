package routes

import (
	"net/http"

	"github.com/templui/folio/internal/app"
	"github.com/templui/folio/internal/handler"
	"github.com/templui/folio/internal/middleware"
	"github.com/templui/folio/internal/storage"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	portfolio := handler.NewPortfolioHandler(app.ViewService)
	auth := handler.NewAuthHandler(app.AuthService, app.Cfg)
	account := handler.NewAccountHandler(app.AuthService, app.UserService)
	content := handler.NewContentHandler(app.AboutService, app.ContactService, app.ViewService)
	project := handler.NewProjectHandler(app.ProjectService, app.ViewService)
	message := handler.NewMessageHandler(app.MessageService, app.ViewService)
	analytics := handler.NewAnalyticsHandler(app.AnalyticsService, app.ViewService)
	upload := handler.NewUploadHandler(app.AssetService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	// Uploaded files (memory storage only; S3 serves its own URLs)
	if mem, ok := app.Storage.(*storage.MemoryStorage); ok {
		mux.HandleFunc("GET /files/{key...}", handler.NewFileHandler(mem).Serve)
	}

	// Views
	mux.HandleFunc("GET /api/portfolio", portfolio.Portfolio)
	mux.HandleFunc("GET /api/about", portfolio.About)
	mux.HandleFunc("GET /api/contact", portfolio.Contact)
	mux.HandleFunc("GET /api/projects", portfolio.Projects)
	mux.HandleFunc("GET /api/resume", analytics.Resume)

	// Visitor input (rate limited)
	submitLimiter := middleware.RateLimitSubmit()
	mux.HandleFunc("POST /api/messages", submitLimiter(message.Send))
	mux.HandleFunc("POST /api/analytics/visit", analytics.Visit)
	mux.HandleFunc("POST /api/analytics/resume-download", analytics.ResumeDownload)

	// Auth (rate limited)
	authLimiter := middleware.RateLimitAuth()
	mux.HandleFunc("POST /api/auth/register", authLimiter(middleware.RequireGuest(auth.Register)))
	mux.HandleFunc("POST /api/auth/login", authLimiter(middleware.RequireGuest(auth.Login)))
	mux.HandleFunc("POST /api/auth/logout", auth.Logout)
	mux.HandleFunc("GET /api/auth/google", authLimiter(middleware.RequireGuest(auth.GoogleAuth)))
	mux.HandleFunc("GET /api/auth/google/callback", authLimiter(auth.GoogleCallback))
	mux.HandleFunc("GET /api/auth/github", authLimiter(middleware.RequireGuest(auth.GitHubAuth)))
	mux.HandleFunc("GET /api/auth/github/callback", authLimiter(auth.GitHubCallback))

	// ============================================================================
	// SIGNED-IN ROUTES (/api/me)
	// ============================================================================

	mux.HandleFunc("GET /api/me", middleware.RequireAuth(account.Me))
	mux.HandleFunc("PATCH /api/me", middleware.RequireAuth(account.UpdateProfile))
	mux.HandleFunc("DELETE /api/me", middleware.RequireAuth(account.DeleteAccount))
	mux.HandleFunc("POST /api/me/password", middleware.RequireAuth(account.ChangePassword))
	mux.HandleFunc("PUT /api/me/avatar", middleware.RequireAuth(account.AttachAvatar))
	mux.HandleFunc("DELETE /api/me/avatar", middleware.RequireAuth(account.DetachAvatar))

	// Phase one of every upload; kinds other than avatar are admin-only.
	mux.HandleFunc("POST /api/uploads/{kind}", middleware.RequireAuth(upload.Upload))

	// ============================================================================
	// ADMIN ROUTES (/api/dashboard/*)
	// ============================================================================
	// The services enforce the admin gate; RequireAuth only turns anonymous
	// callers away early.

	mux.HandleFunc("GET /api/dashboard/about", middleware.RequireAuth(content.GetAbout))
	mux.HandleFunc("PUT /api/dashboard/about", middleware.RequireAuth(content.SaveAbout))
	mux.HandleFunc("DELETE /api/dashboard/about", middleware.RequireAuth(content.DeleteAbout))
	mux.HandleFunc("PUT /api/dashboard/about/assets/{field}", middleware.RequireAuth(content.AttachAboutAsset))
	mux.HandleFunc("DELETE /api/dashboard/about/assets/{field}", middleware.RequireAuth(content.DetachAboutAsset))

	mux.HandleFunc("GET /api/dashboard/contact", middleware.RequireAuth(content.GetContact))
	mux.HandleFunc("PUT /api/dashboard/contact", middleware.RequireAuth(content.SaveContact))
	mux.HandleFunc("DELETE /api/dashboard/contact", middleware.RequireAuth(content.DeleteContact))

	mux.HandleFunc("GET /api/dashboard/projects", middleware.RequireAuth(project.List))
	mux.HandleFunc("POST /api/dashboard/projects", middleware.RequireAuth(project.Create))
	mux.HandleFunc("GET /api/dashboard/projects/{id}", middleware.RequireAuth(project.Get))
	mux.HandleFunc("PUT /api/dashboard/projects/{id}", middleware.RequireAuth(project.Update))
	mux.HandleFunc("DELETE /api/dashboard/projects/{id}", middleware.RequireAuth(project.Delete))
	mux.HandleFunc("DELETE /api/dashboard/projects/{id}/images/{imageID}", middleware.RequireAuth(project.DeleteImage))

	mux.HandleFunc("GET /api/dashboard/messages", middleware.RequireAuth(message.List))
	mux.HandleFunc("PATCH /api/dashboard/messages/{id}/read", middleware.RequireAuth(message.MarkRead))
	mux.HandleFunc("DELETE /api/dashboard/messages/{id}", middleware.RequireAuth(message.Delete))

	mux.HandleFunc("GET /api/dashboard/analytics", middleware.RequireAuth(analytics.Summary))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	mux.HandleFunc("/", handler.NotFound)

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.Config(app.Cfg), // Config must be first (needed by SecurityHeaders and CSRF)
		middleware.RequestLogging,
		middleware.CORS(app.Cfg.CORSAllowedOrigins, app.Cfg.IsDevelopment()),
		middleware.SecurityHeaders,
		middleware.WithURLPath,
		middleware.CSRFProtection,
		middleware.AuthMiddleware(app.IdentityResolver, app.AuthService),
	)
}
