package dependencies

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"

	"github.com/tramita/tramita/internal/catalog/listing"
	"github.com/tramita/tramita/internal/platform/httpx"
	"github.com/tramita/tramita/internal/table"
)

// Entity identifies this module's listing, e.g. in preset storage keys.
const Entity = "dependencies"

type Handler struct {
	logger    *slog.Logger
	service   *Service
	lister    *listing.Lister
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, locale language.Tag, pageSize int) (*Handler, error) {
	h := &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}

	cfg := TableConfig(locale, pageSize)
	cfg.BulkActions = []table.BulkAction{
		{
			Key:          "deactivate",
			Title:        "Desactivar",
			MinSelection: 1,
			Confirm:      &table.ConfirmPrompt{Title: "Desactivar dependencias", Message: "Las dependencias seleccionadas dejarán de aparecer en el portal."},
			Execute: func(ctx context.Context, selected []table.Record) error {
				return service.SetActive(ctx, recordKeys(selected), false)
			},
		},
		{
			Key:          "activate",
			Title:        "Activar",
			MinSelection: 1,
			Execute: func(ctx context.Context, selected []table.Record) error {
				return service.SetActive(ctx, recordKeys(selected), true)
			},
		},
		{
			Key:          "delete",
			Title:        "Eliminar",
			MinSelection: 1,
			MaxSelection: 10,
			Confirm:      &table.ConfirmPrompt{Title: "Eliminar dependencias", Message: "Esta acción no se puede deshacer."},
			Execute: func(ctx context.Context, selected []table.Record) error {
				return service.Delete(ctx, recordKeys(selected))
			},
		},
	}

	cfg.RowActions = []table.RowAction{
		{
			Key:      "deactivate",
			Title:    "Desactivar",
			Shortcut: "ctrl+d",
			Disabled: func(rec table.Record) bool {
				active, _ := rec["active"].(bool)
				return !active
			},
			Confirm:  &table.ConfirmPrompt{Title: "Desactivar dependencia", Message: "La dependencia dejará de aparecer en el portal."},
			Execute: func(ctx context.Context, rec table.Record) error {
				return service.SetActive(ctx, recordKeys([]table.Record{rec}), false)
			},
		},
		{
			Key:      "activate",
			Title:    "Activar",
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

// MountRoutes registers dependency routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/layout", h.lister.Layout)
	r.Post("/query", h.lister.Query)
	r.Post("/bulk", h.lister.Bulk)
	r.Post("/row", h.lister.Row)
	r.Get("/{id}", h.show)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
}

type dependencyRequest struct {
	Code   string `json:"code" validate:"required,max=16"`
	Name   string `json:"name" validate:"required,max=120"`
	Head   string `json:"head" validate:"max=120"`
	Phone  string `json:"phone" validate:"max=32"`
	Email  string `json:"email" validate:"omitempty,email"`
	Active *bool  `json:"active"`
}

func (req dependencyRequest) model() Dependency {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return Dependency{
		Code:   req.Code,
		Name:   req.Name,
		Head:   req.Head,
		Phone:  req.Phone,
		Email:  req.Email,
		Active: active,
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (dependencyRequest, bool) {
	var req dependencyRequest
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

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid dependency id")
		return
	}
	dep, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dep)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), req.model())
	if err != nil {
		h.logger.Error("create dependency", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid dependency id")
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	if err := h.service.Update(r.Context(), id, req.model()); err != nil {
		h.logger.Error("update dependency", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": true})
}
