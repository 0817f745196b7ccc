package api

import (
	"net/http"
	"strings"
	"time"

	"tidyspot/internal/api/respond"
)

// authMiddleware enforces bearer tokens on /api routes. The health endpoint
// stays open, and until the first token is created the whole API is open so
// the setup wizard can bootstrap itself.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/health" {
			next.ServeHTTP(w, r)
			return
		}

		active, err := h.deps.Store.Tokens().CountActive(r.Context())
		if err != nil {
			respond.WriteInternalError(w, "token lookup failed")
			return
		}
		if active == 0 {
			next.ServeHTTP(w, r)
			return
		}

		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" || raw == r.Header.Get("Authorization") {
			respond.WriteUnauthorized(w, "missing bearer token")
			return
		}
		if _, err := h.deps.Store.Tokens().Verify(r.Context(), raw); err != nil {
			respond.WriteUnauthorized(w, "invalid or revoked token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware emits one structured line per request.
func (h *Handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		h.deps.Log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
