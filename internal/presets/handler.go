package presets

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tramita/tramita/internal/platform/httpx"
	"github.com/tramita/tramita/internal/table"
)

// Handler serves preset CRUD per table key.
type Handler struct {
	logger *slog.Logger
	store  *Store
}

func NewHandler(logger *slog.Logger, store *Store) *Handler {
	return &Handler{logger: logger, store: store}
}

// MountRoutes registers preset routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{table}", h.list)
	r.Post("/{table}", h.save)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tableKey := chi.URLParam(r, "table")
	list, err := h.store.List(r.Context(), tableKey)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"presets": list})
}

type saveRequest struct {
	Name    string            `json:"name"`
	Filters table.FilterValue `json:"filters"`
	Default bool              `json:"default"`
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	tableKey := chi.URLParam(r, "table")
	var req saveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid preset payload")
		return
	}
	p, err := h.store.Save(r.Context(), tableKey, req.Name, req.Filters, req.Default)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownTable):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrNameRequired):
		httpx.ValidationProblem(w, []string{"name is required"})
	default:
		h.logger.Error("presets request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
