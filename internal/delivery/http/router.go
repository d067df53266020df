package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"campusevents/internal/delivery/http/controllers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
	"campusevents/internal/metrics"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Users         *controllers.UserController
	Events        *controllers.EventController
	Registrations *controllers.RegistrationController
	Admin         *controllers.AdminController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, m *metrics.Metrics, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(logger)
	admin := middleware.RequireAdmin(logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Users.SignUp)
	mux.HandleFunc("POST /auth/login", c.Users.Login)
	mux.HandleFunc("POST /auth/logout", c.Users.Logout)
	mux.HandleFunc("GET /users/me", auth(c.Users.GetMe))

	// Events
	mux.HandleFunc("GET /events", auth(c.Events.ListEvents))
	mux.HandleFunc("GET /events/upcoming", auth(c.Events.ListUpcomingEvents))
	mux.HandleFunc("POST /events", auth(c.Events.CreateEvent))
	mux.HandleFunc("GET /events/{eventID}", auth(c.Events.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", auth(c.Events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(c.Events.DeleteEvent))
	mux.HandleFunc("POST /events/{eventID}/registrations", auth(c.Events.RegisterForEvent))

	// Registrations
	mux.HandleFunc("GET /registrations/me", auth(c.Registrations.ListMine))
	mux.HandleFunc("DELETE /registrations/{registrationID}", auth(c.Registrations.Cancel))

	// Admin
	mux.HandleFunc("GET /admin/registrations", admin(c.Admin.ListRegistrations))
	mux.HandleFunc("GET /admin/registrations/stats", admin(c.Admin.RegistrationStats))
	mux.HandleFunc("PATCH /admin/registrations/{id}/status", admin(c.Admin.UpdateRegistrationStatus))
	mux.HandleFunc("POST /admin/events/{eventID}/approve", admin(c.Admin.ApproveEvent))
	mux.HandleFunc("POST /admin/events/{eventID}/reject", admin(c.Admin.RejectEvent))
	mux.HandleFunc("GET /admin/users", admin(c.Admin.ListUsers))
	mux.HandleFunc("PATCH /admin/users/{userID}/role", admin(c.Admin.UpdateUserRole))
	mux.HandleFunc("PATCH /admin/users/{userID}/status", admin(c.Admin.UpdateUserStatus))

	// Operations
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.Handle("GET /metrics", m.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// SessionDeps are the collaborators LoadSession needs to resolve the current user.
type SessionDeps struct {
	Store    domain.SessionStore
	Verifier domain.TokenVerifier
	Users    domain.UserService
}

// NewHandler wraps the router in the request middleware chain: access log, CORS, session loading
// and metrics, outermost first. Metrics must wrap the mux directly to see the matched pattern.
func NewHandler(mux *http.ServeMux, m *metrics.Metrics, logger *slog.Logger, allowedOrigins []string, sessions SessionDeps) http.Handler {
	h := m.Middleware(mux)
	h = middleware.LoadSession(sessions.Store, sessions.Verifier, sessions.Users, logger, h)
	h = middleware.CORS(allowedOrigins, h)
	return middleware.LoggingMiddleware(logger, h)
}
