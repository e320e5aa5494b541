package middleware

import (
	"net/http"
	"strings"

	"github.com/HammerMeetNail/secretapp/internal/handlers"
	"github.com/HammerMeetNail/secretapp/internal/logging"
	"github.com/HammerMeetNail/secretapp/internal/services"
)

const sessionCookieName = "session_token"

type AuthMiddleware struct {
	authService services.AuthServiceInterface
}

func NewAuthMiddleware(authService services.AuthServiceInterface) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate validates the session and adds user to context if valid.
// Does not reject unauthenticated requests.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" || m.authService == nil {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.authService.ValidateSession(r.Context(), cookie.Value)
		if err != nil {
			// Invalid session, continue without user
			next.ServeHTTP(w, r)
			return
		}

		ctx := handlers.SetUserInContext(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects unauthenticated requests with 401.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handlers.GetUserFromContext(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePage redirects anonymous visitors of server-rendered pages to the
// sign-in page.
func (m *AuthMiddleware) RequirePage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handlers.GetUserFromContext(r.Context()) == nil {
			http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ServiceRoleMiddleware admits requests bearing a valid service-role token.
type ServiceRoleMiddleware struct {
	verifier services.ServiceRoleVerifierInterface
}

func NewServiceRoleMiddleware(verifier services.ServiceRoleVerifierInterface) *ServiceRoleMiddleware {
	return &ServiceRoleMiddleware{verifier: verifier}
}

func (m *ServiceRoleMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.verifier == nil || !m.verifier.Enabled() {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Service role token required")
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			logging.Warn("Rejected service role token", map[string]interface{}{
				"error": err.Error(),
				"path":  r.URL.Path,
				"ip":    GetClientIP(r),
			})
			writeError(w, http.StatusForbidden, "Invalid service role token")
			return
		}

		subject, _ := claims.GetSubject()
		ctx := handlers.SetServiceSubjectInContext(r.Context(), subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
