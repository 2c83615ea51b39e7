package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/swiftfind/swiftfind/internal/logging"
	"github.com/swiftfind/swiftfind/internal/service"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// configDir is used to resolve the logs directory.
func NewRouter(svc *service.Service, authEnabled bool, token string, sseHandler http.Handler, configDir string) chi.Router {
	h := NewHandler(svc)
	lh := NewLogsHandler(logging.Dir(configDir))

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// JSON command facade: the overlay and other native clients speak
	// this single endpoint.
	r.Post("/query", h.Query)

	// Convenience REST surface.
	r.Get("/search", h.Search)
	r.Post("/launch", h.Launch)
	r.Post("/rebuild", h.Rebuild)
	r.Get("/status", h.Status)

	// Raw log files for support tooling (auth-protected).
	r.Get("/logs/{filename}", lh.ServeFile)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
