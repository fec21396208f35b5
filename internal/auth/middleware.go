package auth

import (
	"net/http"

	authlib "github.com/VK-10/AI-fitness-App/internal/platform/auth"
)

var publicPaths = map[string]struct{}{
	"/healthz": {},
	"/metrics": {},
}

// Middleware enforces bearer-token authentication on incoming requests.
type Middleware struct {
	inner authlib.Middleware
}

// NewMiddleware constructs Middleware for API traffic (Authorization header only).
func NewMiddleware(cfg Config) Middleware {
	return Middleware{inner: authlib.NewMiddleware(cfg, skipPublic)}
}

// NewBrowserMiddleware also accepts the session cookie set for the web frontend.
func NewBrowserMiddleware(cfg Config) Middleware {
	inner := authlib.NewMiddleware(cfg, skipPublic)
	inner.AllowCookie = true
	return Middleware{inner: inner}
}

// Wrap attaches authentication handling to an http.Handler.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return m.inner.Wrap(next)
}

func skipPublic(r *http.Request) bool {
	_, ok := publicPaths[r.URL.Path]
	return ok
}
