package faqs

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/tramita/tramita/internal/catalog/listing"
	"github.com/tramita/tramita/internal/table"
)

type stubRepo struct {
	faqs      []FAQ
	published []int64
	flag      bool
}

func (s *stubRepo) All(ctx context.Context) ([]FAQ, error) { return s.faqs, nil }

func (s *stubRepo) Get(ctx context.Context, id int64) (FAQ, error) {
	for _, f := range s.faqs {
		if f.ID == id {
			return f, nil
		}
	}
	return FAQ{}, ErrNotFound
}

func (s *stubRepo) Create(ctx context.Context, f FAQ) (FAQ, error) {
	f.ID = int64(len(s.faqs) + 1)
	s.faqs = append(s.faqs, f)
	return f, nil
}

func (s *stubRepo) Update(ctx context.Context, id int64, f FAQ) error { return nil }

func (s *stubRepo) Delete(ctx context.Context, ids []int64) error { return nil }

func (s *stubRepo) SetPublished(ctx context.Context, ids []int64, published bool) error {
	s.published = append(s.published, ids...)
	s.flag = published
	return nil
}

func seedRepo() *stubRepo {
	now := time.Now()
	return &stubRepo{faqs: []FAQ{
		{ID: 1, Question: "¿Cómo pago una tasa?", Answer: "Desde la sección de pagos en línea.", Category: "pagos", Position: 1, Published: true, UpdatedAt: now},
		{ID: 2, Question: "¿Dónde inicio un trámite?", Answer: "En el catálogo de trámites del portal.", Category: "tramites", Position: 2, Published: false, UpdatedAt: now},
		{ID: 3, Question: "¿Qué navegadores soporta el portal?", Answer: "Cualquier navegador moderno.", Category: "portal", Position: 3, Published: true, UpdatedAt: now},
	}}
}

func newTestRouter(t *testing.T, repo *stubRepo) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	handler, err := NewHandler(logger, NewService(repo), language.Spanish, 10)
	require.NoError(t, err)
	r := chi.NewRouter()
	r.Route("/", handler.MountRoutes)
	return r
}

func TestQuerySearchesAnswers(t *testing.T) {
	router := newTestRouter(t, seedRepo())

	body, _ := json.Marshal(table.Query{Search: "catalogo", Page: 1, PageSize: 10})
	req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var view table.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Equal(t, 1, view.Total)
	assert.Equal(t, "¿Dónde inicio un trámite?", view.Records[0]["question"])
}

func TestQueryFiltersUnpublished(t *testing.T) {
	router := newTestRouter(t, seedRepo())

	body, _ := json.Marshal(table.Query{
		Filters: table.FilterValue{"published": false},
		Page:    1, PageSize: 10,
	})
	req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var view table.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 1, view.Total)
}

func TestBulkPublish(t *testing.T) {
	repo := seedRepo()
	router := newTestRouter(t, repo)

	body, _ := json.Marshal(listing.BulkRequest{
		Action: "publish",
		Keys:   []string{"2"},
		Query:  table.Query{Page: 1, PageSize: 10},
	})
	req := httptest.NewRequest(http.MethodPost, "/bulk", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{2}, repo.published)
	assert.True(t, repo.flag)
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	router := newTestRouter(t, seedRepo())

	body, _ := json.Marshal(map[string]any{
		"question": "¿Pregunta nueva?",
		"answer":   "Respuesta.",
		"category": "otros",
	})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
