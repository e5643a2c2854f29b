package listing

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/tramita/tramita/internal/table"
)

type executedKeys struct {
	mu   sync.Mutex
	keys []string
}

func (e *executedKeys) record(selected []table.Record) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, rec := range selected {
		if id, ok := rec["id"].(string); ok {
			e.keys = append(e.keys, id)
		}
	}
}

func newTestLister(t *testing.T, executed *executedKeys) *Lister {
	t.Helper()
	cfg := table.Config{
		Columns: []table.Column{
			{Key: "name", Title: "Nombre", Sortable: true, Filterable: true, FilterType: table.FilterText, DataType: table.DataString, CardRole: table.RolePrimary},
			{Key: "status", Title: "Estado", Filterable: true, FilterType: table.FilterSelect, DataType: table.DataString, Options: []string{"draft", "published"}, CardRole: table.RoleSecondary},
			{Key: "age", Title: "Antigüedad", Sortable: true, Filterable: true, FilterType: table.FilterRange, DataType: table.DataNumber, CardRole: table.RoleHidden},
		},
		KeyField:     "id",
		SearchFields: []string{"name"},
		MultiSort:    true,
		Locale:       language.Spanish,
		Mode:         table.FetchClient,
		PageSize:     2,
		BulkActions: []table.BulkAction{
			{
				Key:          "publish",
				Title:        "Publicar",
				MinSelection: 1,
				Confirm:      &table.ConfirmPrompt{Title: "Publicar", Message: "¿Publicar los registros seleccionados?"},
				Execute: func(ctx context.Context, selected []table.Record) error {
					executed.record(selected)
					return nil
				},
			},
		},
		RowActions: []table.RowAction{
			{
				Key:      "archive",
				Title:    "Archivar",
				Shortcut: "ctrl+e",
				Disabled: func(rec table.Record) bool {
					status, _ := rec["status"].(string)
					return status == "published"
				},
				Execute: func(ctx context.Context, rec table.Record) error {
					executed.record([]table.Record{rec})
					return nil
				},
			},
			{
				Key:     "delete",
				Title:   "Eliminar",
				Confirm: &table.ConfirmPrompt{Title: "Eliminar", Message: "¿Eliminar el registro?"},
				Execute: func(ctx context.Context, rec table.Record) error {
					executed.record([]table.Record{rec})
					return nil
				},
			},
		},
	}
	records := []table.Record{
		{"id": "1", "name": "Alta de comercio", "status": "draft", "age": 3},
		{"id": "2", "name": "Licencia de obra", "status": "published", "age": 5},
		{"id": "3", "name": "Certificado de residencia", "status": "draft", "age": 1},
	}
	source := table.NewClientSource(cfg, records)
	lister, err := New(slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil)), cfg, source)
	require.NoError(t, err)
	return lister
}

func postJSON(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestQueryReturnsPagedView(t *testing.T) {
	lister := newTestLister(t, &executedKeys{})

	rec := postJSON(t, lister.Query, table.Query{Page: 1, PageSize: 2})
	require.Equal(t, http.StatusOK, rec.Code)

	var view table.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 3, view.Total)
	assert.Len(t, view.Records, 2)
	assert.Equal(t, 1, view.Page)
}

func TestQueryRejectsUnknownSortKey(t *testing.T) {
	lister := newTestLister(t, &executedKeys{})

	rec := postJSON(t, lister.Query, table.Query{
		Sort: []table.SortEntry{{Key: "ghost", Direction: table.Asc, Priority: 0}},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var problem struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.NotEmpty(t, problem.Errors)
}

func TestBulkRequiresConfirmation(t *testing.T) {
	executed := &executedKeys{}
	lister := newTestLister(t, executed)

	rec := postJSON(t, lister.Bulk, BulkRequest{
		Action: "publish",
		Keys:   []string{"1"},
		Query:  table.Query{Page: 1, PageSize: 2},
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, executed.keys)

	var resp struct {
		Confirm table.ConfirmPrompt `json:"confirm"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Publicar", resp.Confirm.Title)
}

func TestBulkConfirmedExecutesAndClearsSelection(t *testing.T) {
	executed := &executedKeys{}
	lister := newTestLister(t, executed)

	rec := postJSON(t, lister.Bulk, BulkRequest{
		Action:    "publish",
		Keys:      []string{"1", "2"},
		Confirmed: true,
		Query:     table.Query{Page: 1, PageSize: 2},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.ElementsMatch(t, []string{"1", "2"}, executed.keys)

	var view table.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Empty(t, view.Selection)
}

func TestBulkExecutesOffPageKeys(t *testing.T) {
	executed := &executedKeys{}
	lister := newTestLister(t, executed)

	// Key "3" is on page 2 of a two-per-page listing.
	rec := postJSON(t, lister.Bulk, BulkRequest{
		Action:    "publish",
		Keys:      []string{"1", "3"},
		Confirmed: true,
		Query:     table.Query{Page: 1, PageSize: 2},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.ElementsMatch(t, []string{"1", "3"}, executed.keys)

	var view table.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Empty(t, view.Selection)
}

func TestBulkDuplicateKeysStaySelected(t *testing.T) {
	executed := &executedKeys{}
	lister := newTestLister(t, executed)

	rec := postJSON(t, lister.Bulk, BulkRequest{
		Action:    "publish",
		Keys:      []string{"1", "1"},
		Confirmed: true,
		Query:     table.Query{Page: 1, PageSize: 2},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"1"}, executed.keys)
}

func TestBulkUnknownAction(t *testing.T) {
	lister := newTestLister(t, &executedKeys{})

	rec := postJSON(t, lister.Bulk, BulkRequest{
		Action: "vanish",
		Keys:   []string{"1"},
		Query:  table.Query{Page: 1, PageSize: 2},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBulkBelowMinSelectionIsRejected(t *testing.T) {
	executed := &executedKeys{}
	lister := newTestLister(t, executed)

	rec := postJSON(t, lister.Bulk, BulkRequest{
		Action:    "publish",
		Confirmed: true,
		Query:     table.Query{Page: 1, PageSize: 2},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, executed.keys)
}

func TestRowExecutesAction(t *testing.T) {
	executed := &executedKeys{}
	lister := newTestLister(t, executed)

	rec := postJSON(t, lister.Row, RowRequest{
		Action: "archive",
		Key:    "1",
		Query:  table.Query{Page: 1, PageSize: 2},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"1"}, executed.keys)
}

func TestRowDisabledActionIsRejected(t *testing.T) {
	executed := &executedKeys{}
	lister := newTestLister(t, executed)

	rec := postJSON(t, lister.Row, RowRequest{
		Action: "archive",
		Key:    "2",
		Query:  table.Query{Page: 1, PageSize: 2},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, executed.keys)
}

func TestRowShortcutResolvesAction(t *testing.T) {
	executed := &executedKeys{}
	lister := newTestLister(t, executed)

	rec := postJSON(t, lister.Row, RowRequest{
		Shortcut: "ctrl+e",
		Key:      "1",
		Query:    table.Query{Page: 1, PageSize: 2},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"1"}, executed.keys)

	// The shortcut obeys the same enablement check as a pointer click.
	rec = postJSON(t, lister.Row, RowRequest{
		Shortcut: "ctrl+e",
		Key:      "2",
		Query:    table.Query{Page: 1, PageSize: 2},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRowConfirmFlow(t *testing.T) {
	executed := &executedKeys{}
	lister := newTestLister(t, executed)

	req := RowRequest{
		Action: "delete",
		Key:    "1",
		Query:  table.Query{Page: 1, PageSize: 2},
	}
	rec := postJSON(t, lister.Row, req)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, executed.keys)

	req.Confirmed = true
	rec = postJSON(t, lister.Row, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"1"}, executed.keys)
}

func TestRowOffPageRecordIsNotFound(t *testing.T) {
	lister := newTestLister(t, &executedKeys{})

	rec := postJSON(t, lister.Row, RowRequest{
		Action: "archive",
		Key:    "3",
		Query:  table.Query{Page: 1, PageSize: 2},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLayoutEndpoint(t *testing.T) {
	lister := newTestLister(t, &executedKeys{})

	req := httptest.NewRequest(http.MethodGet, "/?width=400", nil)
	rec := httptest.NewRecorder()
	lister.Layout(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Mode      string   `json:"mode"`
		Primary   string   `json:"primary"`
		Secondary string   `json:"secondary"`
		Hidden    []string `json:"hidden"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "card", resp.Mode)
	assert.Equal(t, "name", resp.Primary)
	assert.Equal(t, "status", resp.Secondary)
	assert.Equal(t, []string{"age"}, resp.Hidden)

	req = httptest.NewRequest(http.MethodGet, "/?width=1280", nil)
	rec = httptest.NewRecorder()
	lister.Layout(rec, req)
	var wide struct {
		Mode string `json:"mode"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wide))
	assert.Equal(t, "table", wide.Mode)
}
