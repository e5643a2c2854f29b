package faqs

import (
	"context"

	"golang.org/x/text/language"

	"github.com/tramita/tramita/internal/table"
)

func tableColumns() []table.Column {
	return []table.Column{
		{Key: "question", Title: "Pregunta", Sortable: true, Filterable: true, FilterType: table.FilterText, DataType: table.DataString, CardRole: table.RolePrimary},
		{Key: "answer", Title: "Respuesta", DataType: table.DataString, CardRole: table.RoleHidden},
		{Key: "category", Title: "Categoría", Sortable: true, Filterable: true, FilterType: table.FilterSelect, DataType: table.DataString, Options: Categories, CardRole: table.RoleSecondary},
		{Key: "position", Title: "Orden", Sortable: true, Filterable: true, FilterType: table.FilterRange, DataType: table.DataNumber, CardRole: table.RoleHidden},
		{Key: "published", Title: "Publicada", Filterable: true, FilterType: table.FilterBoolean, DataType: table.DataBool},
		{Key: "updated_at", Title: "Actualizada", Sortable: true, Filterable: true, FilterType: table.FilterDate, DataType: table.DataDate, CardRole: table.RoleHidden},
	}
}

// TableConfig declares the FAQ listing. Mode is client: the whole set is
// loaded and the engine evaluates the pipeline in memory.
func TableConfig(locale language.Tag, pageSize int) table.Config {
	return table.Config{
		Columns:      tableColumns(),
		KeyField:     "id",
		SearchFields: []string{"question", "answer", "category"},
		MultiSort:    true,
		Locale:       locale,
		Mode:         table.FetchClient,
		PageSize:     pageSize,
	}
}

// source loads the full FAQ set per fetch and evaluates the pipeline in
// memory, so edits are visible on the next query without cache plumbing.
type source struct {
	repo Repository
	cfg  table.Config
}

func newSource(repo Repository, cfg table.Config) *source {
	return &source{repo: repo, cfg: cfg}
}

func (s *source) load(ctx context.Context) (*table.ClientSource, error) {
	faqs, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]table.Record, 0, len(faqs))
	for _, f := range faqs {
		records = append(records, f.record())
	}
	return table.NewClientSource(s.cfg, records), nil
}

func (s *source) Fetch(ctx context.Context, q table.Query) (table.Result, error) {
	cs, err := s.load(ctx)
	if err != nil {
		return table.Result{}, err
	}
	return cs.Fetch(ctx, q)
}

func (s *source) Keys(ctx context.Context, q table.Query) ([]string, error) {
	cs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return cs.Keys(ctx, q)
}

func (s *source) Resolve(ctx context.Context, q table.Query, keys []string) ([]table.Record, error) {
	cs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return cs.Resolve(ctx, q, keys)
}
