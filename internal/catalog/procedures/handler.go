package procedures

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"

	"github.com/tramita/tramita/internal/catalog"
	"github.com/tramita/tramita/internal/catalog/listing"
	"github.com/tramita/tramita/internal/platform/httpx"
	"github.com/tramita/tramita/internal/table"
)

// Entity identifies this module in background-job payloads.
const Entity = "procedures"

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
			Key:          "archive",
			Title:        "Archivar",
			MinSelection: 1,
			Confirm:      &table.ConfirmPrompt{Title: "Archivar trámites", Message: "Los trámites archivados dejan de ser visibles para la ciudadanía."},
			Execute: func(ctx context.Context, selected []table.Record) error {
				return service.SetActive(ctx, recordKeys(selected), false)
			},
		},
		{
			Key:          "restore",
			Title:        "Restaurar",
			MinSelection: 1,
			// Only archived procedures can be restored.
			Disabled: func(selected []table.Record) bool {
				for _, rec := range selected {
					if active, _ := rec["active"].(bool); active {
						return true
					}
				}
				return false
			},
			Execute: func(ctx context.Context, selected []table.Record) error {
				return service.SetActive(ctx, recordKeys(selected), true)
			},
		},
	}

	cfg.RowActions = []table.RowAction{
		{
			Key:   "archive",
			Title: "Archivar",
			Disabled: func(rec table.Record) bool {
				active, _ := rec["active"].(bool)
				return !active
			},
			Confirm: &table.ConfirmPrompt{Title: "Archivar trámite", Message: "El trámite dejará de ser visible para la ciudadanía."},
			Execute: func(ctx context.Context, rec table.Record) error {
				return service.SetActive(ctx, recordKeys([]table.Record{rec}), false)
			},
		},
		{
			Key:   "restore",
			Title: "Restaurar",
			Disabled: func(rec table.Record) bool {
				active, _ := rec["active"].(bool)
				return active
			},
			Execute: func(ctx context.Context, rec table.Record) error {
				return service.SetActive(ctx, recordKeys([]table.Record{rec}), true)
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

// MountRoutes registers procedure routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/layout", h.lister.Layout)
	r.Post("/query", h.lister.Query)
	r.Post("/bulk", h.lister.Bulk)
	r.Post("/row", h.lister.Row)
	r.Post("/export", h.export)
	r.Get("/{id}", h.show)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
}

type procedureRequest struct {
	Name         string   `json:"name" validate:"required,max=180"`
	Category     string   `json:"category" validate:"required"`
	DependencyID int64    `json:"dependency_id" validate:"required,gt=0"`
	Requirements []string `json:"requirements" validate:"max=20,dive,max=300"`
	Cost         float64  `json:"cost" validate:"gte=0"`
	DurationDays int      `json:"duration_days" validate:"gte=0,lte=365"`
	Active       *bool    `json:"active"`
}

func (req procedureRequest) model() Procedure {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return Procedure{
		Name:         req.Name,
		Category:     req.Category,
		DependencyID: req.DependencyID,
		Requirements: req.Requirements,
		Cost:         req.Cost,
		DurationDays: req.DurationDays,
		Active:       active,
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (procedureRequest, bool) {
	var req procedureRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payload")
		return req, false
	}
	if err := h.validator.Struct(req); err != nil {
		var messages []string
		for _, fieldErr := range err.(validator.ValidationErrors) {
			messages = append(messages, fieldErr.Field()+" failed "+fieldErr.Tag())
		}
		httpx.ValidationProblem(w, messages)
		return req, false
	}
	return req, true
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
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid procedure id")
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), req.model())
	if err != nil {
		h.logger.Error("create procedure", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid procedure id")
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	if err := h.service.Update(r.Context(), id, req.model()); err != nil {
		h.logger.Error("update procedure", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": true})
}
