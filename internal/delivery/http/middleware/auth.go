package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	h "campusevents/internal/delivery/http/helpers"
	"campusevents/internal/domain"
)

// SessionCookieName is the cookie that carries the session token for browser clients.
const SessionCookieName = "campus_session"

// LoadSession resolves the session token (Bearer header first, then the session cookie) into a
// session and its current user, and stores both in the request context. Requests without a usable
// token continue anonymously; RequireAuth and RequireAdmin decide whether that is acceptable.
func LoadSession(store domain.SessionStore, verifier domain.TokenVerifier, users domain.UserService, logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := requestToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		sessionID, err := verifier.Verify(token)
		if err != nil {
			logger.DebugContext(r.Context(), "rejected session token", "err", err)
			next.ServeHTTP(w, r)
			return
		}
		sess, err := store.Load(r.Context(), sessionID)
		if errors.Is(err, domain.ErrNotFound) {
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			logger.ErrorContext(r.Context(), "load session", "path", r.URL.Path, "method", r.Method, "err", err)
			h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "session store unavailable")
			return
		}
		ctx := SetSession(r.Context(), sess)
		if user, ok := users.CurrentUser(ctx, sess); ok {
			ctx = SetUser(ctx, user)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestToken returns the Bearer token from the Authorization header, or the session cookie value.
func requestToken(r *http.Request) string {
	const prefix = "Bearer "
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// RequireAuth returns a wrapper that responds with 401 unless LoadSession resolved a current user.
func RequireAuth(logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if _, ok := UserFromContext(r.Context()); !ok {
				logger.DebugContext(r.Context(), "unauthenticated request", "path", r.URL.Path)
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "authentication required")
				return
			}
			next(w, r)
		}
	}
}

// RequireAdmin is RequireAuth plus a 403 for users without the ADMIN role.
func RequireAdmin(logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "authentication required")
				return
			}
			if !user.IsAdmin() {
				logger.InfoContext(r.Context(), "admin route denied", "path", r.URL.Path, "user_id", user.ID)
				h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "admin role required")
				return
			}
			next(w, r)
		}
	}
}
