package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/imgbackup/internal/apperr"
	"github.com/starford/imgbackup/internal/catalog"
	"github.com/starford/imgbackup/internal/models"
)

// Runner performs a sync run.
type Runner interface {
	Run(ctx context.Context, sel models.Selection) (*models.Report, error)
}

// Handler holds the character and sync route handlers.
type Handler struct {
	runner Runner
	index  catalog.Index
}

// NewHandler creates a new Handler.
func NewHandler(runner Runner, index catalog.Index) *Handler {
	return &Handler{runner: runner, index: index}
}

// ListCharacters handles GET /api/characters.
func (h *Handler) ListCharacters(w http.ResponseWriter, r *http.Request) {
	names, err := h.index.Names(r.Context())
	if err != nil {
		slog.Error("list characters failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, CharactersResponse{Characters: names})
}

// Sync handles POST /api/sync. The request blocks until the run is done and
// responds with its report.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	report, err := h.runner.Run(r.Context(), models.Selection{Names: req.Names, All: req.All})
	if err != nil {
		if errors.Is(err, apperr.ErrBusy) {
			writeJSON(w, http.StatusConflict, errorBody(err.Error()))
			return
		}
		slog.Error("sync failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, report)
}
