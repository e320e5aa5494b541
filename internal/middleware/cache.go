package middleware

import (
	"net/http"
	"strings"
)

// CacheControl adds cache headers to responses based on the request path.
type CacheControl struct{}

func NewCacheControl() *CacheControl {
	return &CacheControl{}
}

func (c *CacheControl) Apply(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", cacheControlFor(r.URL.Path))
		if isPrivatePath(r.URL.Path) {
			w.Header().Set("Pragma", "no-cache")
		}
		next.ServeHTTP(w, r)
	})
}

func cacheControlFor(path string) string {
	switch {
	case strings.HasPrefix(path, "/static/"):
		lower := strings.ToLower(path)
		if strings.HasSuffix(lower, ".css") || strings.HasSuffix(lower, ".js") {
			return "public, max-age=86400, must-revalidate"
		}
		return "public, max-age=3600"
	case isPrivatePath(path):
		// Secrets and session-bound pages must never be stored.
		return "no-store, no-cache, must-revalidate"
	case path == "/" || path == "/sign-in" || path == "/sign-up":
		return "no-cache, must-revalidate"
	default:
		return "no-store"
	}
}

func isPrivatePath(path string) bool {
	return strings.HasPrefix(path, "/api/") || path == "/protected" || strings.HasPrefix(path, "/protected/")
}
