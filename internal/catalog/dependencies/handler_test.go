package dependencies

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
	deps       []Dependency
	deleted    []int64
	setActive  []int64
	activeFlag bool
}

func (s *stubRepo) source() *table.ClientSource {
	records := make([]table.Record, 0, len(s.deps))
	for _, d := range s.deps {
		records = append(records, d.record())
	}
	return table.NewClientSource(TableConfig(language.Spanish, 10), records)
}

func (s *stubRepo) Fetch(ctx context.Context, q table.Query) (table.Result, error) {
	return s.source().Fetch(ctx, q)
}

func (s *stubRepo) Keys(ctx context.Context, q table.Query) ([]string, error) {
	return s.source().Keys(ctx, q)
}

func (s *stubRepo) Resolve(ctx context.Context, q table.Query, keys []string) ([]table.Record, error) {
	return s.source().Resolve(ctx, q, keys)
}

func (s *stubRepo) Get(ctx context.Context, id int64) (Dependency, error) {
	for _, d := range s.deps {
		if d.ID == id {
			return d, nil
		}
	}
	return Dependency{}, ErrNotFound
}

func (s *stubRepo) Create(ctx context.Context, dep Dependency) (Dependency, error) {
	dep.ID = int64(len(s.deps) + 1)
	dep.UpdatedAt = time.Now()
	s.deps = append(s.deps, dep)
	return dep, nil
}

func (s *stubRepo) Update(ctx context.Context, id int64, dep Dependency) error { return nil }

func (s *stubRepo) Delete(ctx context.Context, ids []int64) error {
	s.deleted = append(s.deleted, ids...)
	return nil
}

func (s *stubRepo) SetActive(ctx context.Context, ids []int64, active bool) error {
	s.setActive = append(s.setActive, ids...)
	s.activeFlag = active
	return nil
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

func seedRepo() *stubRepo {
	now := time.Now()
	return &stubRepo{deps: []Dependency{
		{ID: 1, Code: "OBR", Name: "Obras Públicas", Head: "María Ibáñez", Active: true, UpdatedAt: now},
		{ID: 2, Code: "HAC", Name: "Hacienda", Head: "José Núñez", Active: true, UpdatedAt: now},
		{ID: 3, Code: "AMB", Name: "Ambiente", Head: "Lucía Pérez", Active: false, UpdatedAt: now},
	}}
}

func TestQueryFiltersAndSearches(t *testing.T) {
	router := newTestRouter(t, seedRepo())

	body, _ := json.Marshal(table.Query{Search: "ibanez", Page: 1, PageSize: 10})
	req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var view table.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Equal(t, 1, view.Total)
	assert.Equal(t, "Obras Públicas", view.Records[0]["name"])
}

func TestBulkDeactivateConfirmFlow(t *testing.T) {
	repo := seedRepo()
	router := newTestRouter(t, repo)

	payload := listing.BulkRequest{
		Action: "deactivate",
		Keys:   []string{"1", "2"},
		Query:  table.Query{Page: 1, PageSize: 10},
	}

	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/bulk", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, repo.setActive)

	payload.Confirmed = true
	body, _ = json.Marshal(payload)
	req = httptest.NewRequest(http.MethodPost, "/bulk", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.ElementsMatch(t, []int64{1, 2}, repo.setActive)
	assert.False(t, repo.activeFlag)
}

func TestRowDeactivateConfirmFlow(t *testing.T) {
	repo := seedRepo()
	router := newTestRouter(t, repo)

	payload := listing.RowRequest{
		Action: "deactivate",
		Key:    "1",
		Query:  table.Query{Page: 1, PageSize: 10},
	}

	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/row", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, repo.setActive)

	payload.Confirmed = true
	body, _ = json.Marshal(payload)
	req = httptest.NewRequest(http.MethodPost, "/row", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{1}, repo.setActive)
	assert.False(t, repo.activeFlag)
}

func TestRowDeactivateInactiveIsRejected(t *testing.T) {
	repo := seedRepo()
	router := newTestRouter(t, repo)

	body, _ := json.Marshal(listing.RowRequest{
		Action:    "deactivate",
		Key:       "3",
		Confirmed: true,
		Query:     table.Query{Page: 1, PageSize: 10},
	})
	req := httptest.NewRequest(http.MethodPost, "/row", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, repo.setActive)
}

func TestCreateValidatesPayload(t *testing.T) {
	router := newTestRouter(t, seedRepo())

	body, _ := json.Marshal(map[string]any{
		"code":  "CUL",
		"name":  "Cultura",
		"email": "not-an-email",
	})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var problem struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.NotEmpty(t, problem.Errors)
}

func TestCreateAndShow(t *testing.T) {
	router := newTestRouter(t, seedRepo())

	body, _ := json.Marshal(map[string]any{
		"code": "CUL", "name": "Cultura", "head": "Ana Gómez", "email": "cultura@municipio.gob",
	})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Dependency
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.Active)

	req = httptest.NewRequest(http.MethodGet, "/4", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLayoutRoute(t *testing.T) {
	router := newTestRouter(t, seedRepo())

	req := httptest.NewRequest(http.MethodGet, "/layout?width=500", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Mode    string `json:"mode"`
		Primary string `json:"primary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "card", resp.Mode)
	assert.Equal(t, "name", resp.Primary)
}
