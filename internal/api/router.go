package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/imgbackup/internal/catalog"
	"github.com/starford/imgbackup/internal/storage"
)

// NewRouter creates a chi router with all API routes mounted.
// files, if non-nil, is served through the /files endpoints.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(runner Runner, index catalog.Index, files *storage.FS, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(runner, index)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/characters", h.ListCharacters)
	r.Post("/sync", h.Sync)

	if files != nil {
		fh := NewFileHandler(files)
		r.Get("/files/list", fh.List)
		r.Post("/files/upload", fh.Upload)
	}

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
