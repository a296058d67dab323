// package server runs the short-lived local HTTP server that receives the
// OAuth authorization callback during login.
package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an HTTP handler that knows which paths it serves.
type Handler interface {
	http.Handler
	Routes() []string
}

// LoggingMiddleware logs each request with method, path, and duration.
func LoggingMiddleware(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request handled", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
		})
	}
}
