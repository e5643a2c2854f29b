package acts

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"

	"github.com/tramita/tramita/internal/catalog"
	"github.com/tramita/tramita/internal/catalog/listing"
	"github.com/tramita/tramita/internal/platform/httpx"
	"github.com/tramita/tramita/internal/table"
)

// Entity identifies this module in background-job payloads.
const Entity = "acts"

type Handler struct {
	logger    *slog.Logger
	service   *Service
	lister    *listing.Lister
	queue     catalog.Enqueuer
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, queue catalog.Enqueuer, locale language.Tag, pageSize int) (*Handler, error) {
	h := &Handler{
		logger:    logger,
		service:   service,
		queue:     queue,
		validator: validator.New(),
	}

	cfg := TableConfig(locale, pageSize)
	cfg.BulkActions = []table.BulkAction{
		{
			Key:          "publish",
			Title:        "Publicar",
			MinSelection: 1,
			Confirm:      &table.ConfirmPrompt{Title: "Publicar actos", Message: "Los actos publicados quedan visibles en el boletín del portal."},
			// Publishing an already-archived act is not allowed.
			Disabled: func(selected []table.Record) bool {
				for _, rec := range selected {
					if status, _ := rec["status"].(string); status == StatusArchived {
						return true
					}
				}
				return false
			},
			Execute: func(ctx context.Context, selected []table.Record) error {
				return service.SetStatus(ctx, recordKeys(selected), StatusPublished)
			},
		},
		{
			Key:          "archive",
			Title:        "Archivar",
			MinSelection: 1,
			Confirm:      &table.ConfirmPrompt{Title: "Archivar actos", Message: "Los actos archivados se retiran del boletín."},
			Execute: func(ctx context.Context, selected []table.Record) error {
				return service.SetStatus(ctx, recordKeys(selected), StatusArchived)
			},
		},
	}

	cfg.RowActions = []table.RowAction{
		{
			Key:      "publish",
			Title:    "Publicar",
			Shortcut: "ctrl+p",
			Disabled: func(rec table.Record) bool {
				status, _ := rec["status"].(string)
				return status != StatusDraft
			},
			Confirm: &table.ConfirmPrompt{Title: "Publicar acto", Message: "El acto quedará visible en el boletín del portal."},
			Execute: func(ctx context.Context, rec table.Record) error {
				return service.SetStatus(ctx, recordKeys([]table.Record{rec}), StatusPublished)
			},
		},
		{
			Key:   "archive",
			Title: "Archivar",
			Disabled: func(rec table.Record) bool {
				status, _ := rec["status"].(string)
				return status == StatusArchived
			},
			Execute: func(ctx context.Context, rec table.Record) error {
				return service.SetStatus(ctx, recordKeys([]table.Record{rec}), StatusArchived)
			},
		},
	}

	lister, err := listing.New(logger, cfg, service.repo)
	if err != nil {
		return nil, err
	}
	h.lister = lister
	return h, nil
}

func recordKeys(records []table.Record) []string {
	keys := make([]string, 0, len(records))
	for _, rec := range records {
		if id, ok := rec["id"].(string); ok {
			keys = append(keys, id)
		}
	}
	return keys
}

// MountRoutes registers act routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/layout", h.lister.Layout)
	r.Post("/query", h.lister.Query)
	r.Post("/bulk", h.lister.Bulk)
	r.Post("/row", h.lister.Row)
	r.Post("/archive-all", h.archiveAll)
	r.Post("/export", h.export)
	r.Get("/{id}", h.show)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
}

type actRequest struct {
	Number       string `json:"number" validate:"required,max=32"`
	Title        string `json:"title" validate:"required,max=240"`
	Kind         string `json:"kind" validate:"required"`
	Status       string `json:"status"`
	IssuedAt     string `json:"issued_at" validate:"required"`
	DependencyID int64  `json:"dependency_id" validate:"required,gt=0"`
}

func (req actRequest) model() (Act, error) {
	issued, err := time.Parse("2006-01-02", req.IssuedAt)
	if err != nil {
		return Act{}, err
	}
	return Act{
		Number:       req.Number,
		Title:        req.Title,
		Kind:         req.Kind,
		Status:       req.Status,
		IssuedAt:     issued,
		DependencyID: req.DependencyID,
	}, nil
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (Act, bool) {
	var req actRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payload")
		return Act{}, false
	}
	if err := h.validator.Struct(req); err != nil {
		var messages []string
		for _, fieldErr := range err.(validator.ValidationErrors) {
			messages = append(messages, fieldErr.Field()+" failed "+fieldErr.Tag())
		}
		httpx.ValidationProblem(w, messages)
		return Act{}, false
	}
	act, err := req.model()
	if err != nil {
		httpx.ValidationProblem(w, []string{"issued_at must be a YYYY-MM-DD date"})
		return Act{}, false
	}
	return act, true
}

// archiveAll enqueues archiving of every act matching the submitted query,
// so large sweeps run off the request path.
func (h *Handler) archiveAll(w http.ResponseWriter, r *http.Request) {
	var q table.Query
	if err := httpx.DecodeJSON(r, &q); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid query payload")
		return
	}
	jobID, err := h.queue.EnqueueBulkArchive(r.Context(), Entity, q)
	if err != nil {
		h.logger.Error("enqueue bulk archive", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
}

// export enqueues a CSV export of the current filtered listing.
func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	var q table.Query
	if err := httpx.DecodeJSON(r, &q); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid query payload")
		return
	}
	exportID, err := h.queue.EnqueueExport(r.Context(), Entity, q)
	if err != nil {
		h.logger.Error("enqueue export", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"export_id": exportID})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid act id")
		return
	}
	act, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, act)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	act, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), act)
	if err != nil {
		h.logger.Error("create act", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid act id")
		return
	}
	act, ok := h.decode(w, r)
	if !ok {
		return
	}
	if err := h.service.Update(r.Context(), id, act); err != nil {
		h.logger.Error("update act", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": true})
}
