package faqs

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
const Entity = "faqs"

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
			Key:          "publish",
			Title:        "Publicar",
			MinSelection: 1,
			Execute: func(ctx context.Context, selected []table.Record) error {
				return service.SetPublished(ctx, recordKeys(selected), true)
			},
		},
		{
			Key:          "unpublish",
			Title:        "Despublicar",
			MinSelection: 1,
			Execute: func(ctx context.Context, selected []table.Record) error {
				return service.SetPublished(ctx, recordKeys(selected), false)
			},
		},
		{
			Key:          "delete",
			Title:        "Eliminar",
			MinSelection: 1,
			Confirm:      &table.ConfirmPrompt{Title: "Eliminar preguntas", Message: "Esta acción no se puede deshacer."},
			Execute: func(ctx context.Context, selected []table.Record) error {
				return service.Delete(ctx, recordKeys(selected))
			},
		},
	}

	cfg.RowActions = []table.RowAction{
		{
			Key:   "publish",
			Title: "Publicar",
			Disabled: func(rec table.Record) bool {
				published, _ := rec["published"].(bool)
				return published
			},
			Execute: func(ctx context.Context, rec table.Record) error {
				return service.SetPublished(ctx, recordKeys([]table.Record{rec}), true)
			},
		},
		{
			Key:   "unpublish",
			Title: "Despublicar",
			Disabled: func(rec table.Record) bool {
				published, _ := rec["published"].(bool)
				return !published
			},
			Execute: func(ctx context.Context, rec table.Record) error {
				return service.SetPublished(ctx, recordKeys([]table.Record{rec}), false)
			},
		},
		{
			Key:     "delete",
			Title:   "Eliminar",
			Confirm: &table.ConfirmPrompt{Title: "Eliminar pregunta", Message: "Esta acción no se puede deshacer."},
			Execute: func(ctx context.Context, rec table.Record) error {
				return service.Delete(ctx, recordKeys([]table.Record{rec}))
			},
		},
	}

	lister, err := listing.New(logger, cfg, newSource(service.repo, cfg))
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

// MountRoutes registers FAQ routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/layout", h.lister.Layout)
	r.Post("/query", h.lister.Query)
	r.Post("/bulk", h.lister.Bulk)
	r.Post("/row", h.lister.Row)
	r.Get("/{id}", h.show)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
}

type faqRequest struct {
	Question  string `json:"question" validate:"required,max=300"`
	Answer    string `json:"answer" validate:"required"`
	Category  string `json:"category" validate:"required"`
	Position  int    `json:"position" validate:"gte=0"`
	Published *bool  `json:"published"`
}

func (req faqRequest) model() FAQ {
	published := false
	if req.Published != nil {
		published = *req.Published
	}
	return FAQ{
		Question:  req.Question,
		Answer:    req.Answer,
		Category:  req.Category,
		Position:  req.Position,
		Published: published,
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (faqRequest, bool) {
	var req faqRequest
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
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid faq id")
		return
	}
	f, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, f)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), req.model())
	if err != nil {
		h.logger.Error("create faq", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid faq id")
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	if err := h.service.Update(r.Context(), id, req.model()); err != nil {
		h.logger.Error("update faq", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": true})
}
