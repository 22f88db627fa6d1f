package httpx

// Package httpx wires the JSON API: auth, the album catalog, directory
// administration, and dashboard reports.

import (
	"log/slog"
	"net/http"

	"github.com/cloudboard/cloudboard/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth         *service.AuthService
	Albums       *service.AlbumService
	Users        *service.UserService
	Costs        CostReporter
	Resources    ResourceReporter
	CookieDomain string
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	}
	albumHandlers := &AlbumHandlers{Svc: services.Albums}
	userHandlers := &UserHandlers{Svc: services.Users}

	requireAuth := RequireAuth(services.Auth)
	requireAdmin := RequireAdmin(services.Auth)

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	mux.Handle("POST /auth/login", http.HandlerFunc(authHandlers.Login))
	mux.Handle("POST /auth/challenge", http.HandlerFunc(authHandlers.CompleteChallenge))
	mux.Handle("POST /auth/logout", http.HandlerFunc(authHandlers.Logout))
	mux.Handle("POST /auth/reset", http.HandlerFunc(authHandlers.RequestReset))
	mux.Handle("POST /auth/reset/confirm", http.HandlerFunc(authHandlers.ConfirmReset))
	mux.Handle("POST /auth/password", http.HandlerFunc(authHandlers.ChangePassword))
	mux.Handle("GET /auth/me", http.HandlerFunc(authHandlers.Me))

	mux.Handle("GET /api/albums", requireAuth(http.HandlerFunc(albumHandlers.List)))
	mux.Handle("POST /api/albums", requireAuth(http.HandlerFunc(albumHandlers.Create)))

	mux.Handle("GET /api/users", requireAdmin(http.HandlerFunc(userHandlers.List)))
	mux.Handle("POST /api/users", requireAdmin(http.HandlerFunc(userHandlers.Create)))

	if services.Costs != nil && services.Resources != nil {
		reportHandlers := &ReportHandlers{Costs: services.Costs, Resources: services.Resources}
		mux.Handle("GET /api/reports/costs", requireAdmin(http.HandlerFunc(reportHandlers.MonthlyCosts)))
		mux.Handle("GET /api/reports/resources", requireAdmin(http.HandlerFunc(reportHandlers.ResourceCounts)))
	}

	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var handler http.Handler = mux
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}
