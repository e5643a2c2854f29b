package table

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// FetchMode selects where the pipeline runs.
type FetchMode string

const (
	// FetchClient evaluates the whole pipeline in memory.
	FetchClient FetchMode = "client"
	// FetchServer delegates filtering/sorting/pagination to the source.
	FetchServer FetchMode = "server"
)

// Config declares a listing: its columns, key field, search surface and
// the actions layered on top. It is owned by the caller and treated as
// read-only once accepted by New.
type Config struct {
	Columns      []Column
	KeyField     string
	SearchFields []string
	MultiSort    bool
	Locale       language.Tag
	Mode         FetchMode
	PageSize     int
	// SearchDebounce is the quiet period applied by QueueSearch before a
	// search value participates in the pipeline.
	SearchDebounce time.Duration
	BulkActions    []BulkAction
	RowActions     []RowAction
}

func (c Config) collator() *collate.Collator {
	return collate.New(c.Locale)
}

// Validate enforces configuration invariants up front, so an invalid
// combination is rejected before it can corrupt derived state.
func (c Config) Validate() error {
	if len(c.Columns) == 0 {
		return errors.New("config: at least one column is required")
	}
	seen := make(map[string]struct{}, len(c.Columns))
	for _, col := range c.Columns {
		if err := col.validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if _, dup := seen[col.Key]; dup {
			return fmt.Errorf("config: duplicate column key %q", col.Key)
		}
		seen[col.Key] = struct{}{}
	}
	for _, f := range c.SearchFields {
		if _, ok := seen[f]; !ok {
			return fmt.Errorf("config: search field %q is not a declared column", f)
		}
	}
	if c.PageSize < 0 {
		return errors.New("config: page size must not be negative")
	}
	actionKeys := make(map[string]struct{}, len(c.BulkActions))
	for _, a := range c.BulkActions {
		if a.Key == "" {
			return errors.New("config: bulk action key is required")
		}
		if _, dup := actionKeys[a.Key]; dup {
			return fmt.Errorf("config: duplicate bulk action %q", a.Key)
		}
		actionKeys[a.Key] = struct{}{}
		if a.MinSelection < 0 {
			return fmt.Errorf("config: bulk action %q: negative min selection", a.Key)
		}
		if a.MaxSelection > 0 && a.MaxSelection < a.MinSelection {
			return fmt.Errorf("config: bulk action %q: max selection below min", a.Key)
		}
		if a.Execute == nil {
			return fmt.Errorf("config: bulk action %q: execute is required", a.Key)
		}
	}
	rowKeys := make(map[string]struct{}, len(c.RowActions))
	shortcuts := make(map[string]struct{})
	for _, a := range c.RowActions {
		if a.Key == "" {
			return errors.New("config: row action key is required")
		}
		if _, dup := rowKeys[a.Key]; dup {
			return fmt.Errorf("config: duplicate row action %q", a.Key)
		}
		rowKeys[a.Key] = struct{}{}
		if a.Shortcut != "" {
			if _, dup := shortcuts[a.Shortcut]; dup {
				return fmt.Errorf("config: duplicate row action shortcut %q", a.Shortcut)
			}
			shortcuts[a.Shortcut] = struct{}{}
		}
		if a.Execute == nil {
			return fmt.Errorf("config: row action %q: execute is required", a.Key)
		}
	}
	return nil
}

// Query is the per-request pipeline input. Inputs are read-only for the
// duration of a run.
type Query struct {
	Sort     []SortEntry  `json:"sort"`
	Filters  FilterValue  `json:"filters"`
	Group    *FilterGroup `json:"filterGroup,omitempty"`
	Search   string       `json:"search"`
	Page     int          `json:"page"`
	PageSize int          `json:"pageSize"`
}

// View is the engine's output for one accepted query.
type View struct {
	Records            []Record    `json:"records"`
	Total              int         `json:"total"`
	Page               int         `json:"page"`
	PageSize           int         `json:"pageSize"`
	Sort               []SortEntry `json:"sort"`
	Selection          []string    `json:"selection"`
	EnabledBulkActions []string    `json:"enabledBulkActions"`
	ValidationErrors   []string    `json:"validationErrors,omitempty"`
	Loading            bool        `json:"loading"`
}

// ValidationError carries the collected messages for a rejected query.
// The engine keeps its previous accepted state when returning one.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "invalid query: " + strings.Join(e.Messages, "; ")
}

// Errors surfaced by the engine.
var (
	// ErrSuperseded marks a fetch whose response arrived after a newer
	// configuration was applied; its result has been discarded.
	ErrSuperseded = errors.New("query superseded by a newer one")
	// ErrFullSelectionUnsupported means the source cannot enumerate the
	// filtered set's keys.
	ErrFullSelectionUnsupported = errors.New("source does not support full-set selection")
	// ErrSelectionUnresolvable means keys selected on other pages cannot
	// be resolved to records because the source is not a RecordResolver.
	ErrSelectionUnresolvable = errors.New("source cannot resolve off-page selected records")
)

// Engine owns the derived state of one listing: the last accepted query,
// the current view, and the selection. Configuration and records are
// caller-owned inputs.
type Engine struct {
	cfg    Config
	cols   map[string]Column
	coll   *collate.Collator
	source Source
	runner *ActionRunner
	rows   *RowDispatcher
	deb    *Debouncer

	mu        sync.Mutex
	applied   bool
	query     Query
	selection Selection
	view      View
	version   uint64
	loading   bool
	cancel    context.CancelFunc
}

// New validates the configuration and builds an engine over the source.
func New(cfg Config, source Source) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.KeyField == "" {
		cfg.KeyField = DefaultKeyField
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Mode == "" {
		cfg.Mode = FetchServer
	}
	if source == nil {
		return nil, errors.New("table: source is required")
	}
	runner := NewActionRunner()
	e := &Engine{
		cfg:       cfg,
		cols:      columnIndex(cfg.Columns),
		coll:      cfg.collator(),
		source:    source,
		runner:    runner,
		rows:      NewRowDispatcher(cfg.RowActions, cfg.KeyField, runner),
		selection: NewSelection(),
		view:      View{Page: 1, PageSize: cfg.PageSize},
	}
	if cfg.SearchDebounce > 0 {
		e.deb = NewDebouncer(cfg.SearchDebounce)
	}
	return e, nil
}

// Rows exposes the row-action dispatcher bound to this listing.
func (e *Engine) Rows() *RowDispatcher { return e.rows }

// View returns the current output snapshot.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Query returns the last accepted query, usable as the base for the next
// change.
func (e *Engine) Query() Query {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.query
}

// Apply validates and runs a query through the pipeline. Malformed input
// is rejected wholesale: the previous view is returned together with a
// *ValidationError listing every problem, and no partial state is kept.
// When a newer query supersedes this one mid-fetch the stale result is
// discarded and ErrSuperseded returned. A fetch failure keeps the
// last-known-good view.
func (e *Engine) Apply(ctx context.Context, q Query) (View, error) {
	e.mu.Lock()
	if errs := e.validateQueryLocked(q); len(errs) > 0 {
		view := e.snapshotLocked()
		view.ValidationErrors = errs
		e.mu.Unlock()
		return view, &ValidationError{Messages: errs}
	}
	q = e.adjustPageLocked(q)

	e.version++
	version := e.version
	if e.cancel != nil {
		// A newer query supersedes the in-flight fetch.
		e.cancel()
	}
	fctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.loading = true
	e.mu.Unlock()

	res, err := e.source.Fetch(fctx, q)
	if err == nil {
		// The reported total may have shrunk below the requested page;
		// clamp and refetch the last valid page instead of showing an
		// empty page while data exists.
		pg := NewPagination(q.Page, q.PageSize).WithTotal(res.Total)
		if pg.Page != q.Page {
			q.Page = pg.Page
			res, err = e.source.Fetch(fctx, q)
		}
	}
	cancel()

	e.mu.Lock()
	defer e.mu.Unlock()
	if version != e.version {
		return e.snapshotLocked(), ErrSuperseded
	}
	e.loading = false
	e.cancel = nil
	if err != nil {
		return e.snapshotLocked(), fmt.Errorf("table: fetch: %w", err)
	}

	e.applied = true
	e.query = q
	e.view = View{
		Records:  res.Records,
		Total:    res.Total,
		Page:     q.Page,
		PageSize: q.PageSize,
		Sort:     append([]SortEntry(nil), q.Sort...),
	}
	return e.snapshotLocked(), nil
}

// validateQueryLocked collects every problem with the query; any message
// rejects it as a whole.
func (e *Engine) validateQueryLocked(q Query) []string {
	var errs []string
	if q.Page < 0 {
		errs = append(errs, "page must be at least 1")
	}
	if q.PageSize < 0 {
		errs = append(errs, "page size must be at least 1")
	}
	prios := make(map[int]struct{}, len(q.Sort))
	for _, s := range q.Sort {
		col, ok := e.cols[s.Key]
		switch {
		case !ok:
			errs = append(errs, fmt.Sprintf("sort key %q is not a declared column", s.Key))
		case !col.Sortable:
			errs = append(errs, fmt.Sprintf("column %q is not sortable", s.Key))
		}
		if s.Direction != Asc && s.Direction != Desc {
			errs = append(errs, fmt.Sprintf("sort key %q: unknown direction %q", s.Key, string(s.Direction)))
		}
		if _, dup := prios[s.Priority]; dup {
			errs = append(errs, fmt.Sprintf("sort key %q: duplicate priority %d", s.Key, s.Priority))
		}
		prios[s.Priority] = struct{}{}
	}
	if q.Group != nil {
		errs = append(errs, q.Group.Validate()...)
	}
	return errs
}

// adjustPageLocked applies the pagination policy: any filter, search or
// sort change resets to page 1; a pure page-size change preserves the
// first visible item; otherwise defaults are filled in.
func (e *Engine) adjustPageLocked(q Query) Query {
	if q.PageSize == 0 {
		q.PageSize = e.cfg.PageSize
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if !e.applied {
		return q
	}
	prev := e.query
	if shapeChanged(prev, q) {
		q.Page = 1
		return q
	}
	if q.PageSize != prev.PageSize && q.Page == prev.Page {
		pg := Pagination{Page: prev.Page, PageSize: prev.PageSize, Total: e.view.Total}
		q.Page = pg.WithPageSize(q.PageSize).Page
	}
	return q
}

// shapeChanged reports whether the identity or count of matching records
// may differ between the two queries.
func shapeChanged(a, b Query) bool {
	return !reflect.DeepEqual(a.Filters, b.Filters) ||
		!reflect.DeepEqual(a.Group, b.Group) ||
		!reflect.DeepEqual(a.Sort, b.Sort) ||
		Normalize(a.Search) != Normalize(b.Search)
}

func (e *Engine) snapshotLocked() View {
	view := e.view
	view.Loading = e.loading
	view.Selection = e.selection.Keys()
	view.EnabledBulkActions = e.enabledBulkLocked()
	return view
}

func (e *Engine) enabledBulkLocked() []string {
	if len(e.cfg.BulkActions) == 0 {
		return nil
	}
	selected := e.selectedOnPageLocked()
	out := make([]string, 0, len(e.cfg.BulkActions))
	for _, a := range e.cfg.BulkActions {
		if a.Enabled(e.selection, selected) {
			out = append(out, a.Key)
		}
	}
	return out
}

// selectedOnPageLocked resolves the selected records present on the
// current page. Enablement predicates inspect these; execution resolves
// the off-page remainder through the source.
func (e *Engine) selectedOnPageLocked() []Record {
	var out []Record
	for _, rec := range e.view.Records {
		if e.selection.Has(recordKey(rec, e.cfg.KeyField)) {
			out = append(out, rec)
		}
	}
	return out
}

// offPageKeys returns the selected keys not covered by the on-page records.
func offPageKeys(selection Selection, onPage []Record, keyField string) []string {
	present := make(map[string]struct{}, len(onPage))
	for _, rec := range onPage {
		present[recordKey(rec, keyField)] = struct{}{}
	}
	var out []string
	for _, k := range selection.Keys() {
		if _, ok := present[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}

// Toggle flips one record key in the selection.
func (e *Engine) Toggle(key string) View {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selection = e.selection.Toggle(key)
	return e.snapshotLocked()
}

// Select adds keys to the selection. Unlike Toggle it has set semantics:
// a key listed twice stays selected.
func (e *Engine) Select(keys ...string) View {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selection = e.selection.With(keys...)
	return e.snapshotLocked()
}

// SelectPage selects the keys of the currently visible page, keeping any
// previously selected off-page keys.
func (e *Engine) SelectPage() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	keys := make([]string, 0, len(e.view.Records))
	for _, rec := range e.view.Records {
		keys = append(keys, recordKey(rec, e.cfg.KeyField))
	}
	e.selection = e.selection.With(keys...)
	return e.snapshotLocked()
}

// SelectAll explicitly selects the entire filtered set, not just the
// visible page. The source must implement KeyLister.
func (e *Engine) SelectAll(ctx context.Context) (View, error) {
	lister, ok := e.source.(KeyLister)
	if !ok {
		return e.View(), ErrFullSelectionUnsupported
	}
	e.mu.Lock()
	q := e.query
	e.mu.Unlock()

	keys, err := lister.Keys(ctx, q)
	if err != nil {
		return e.View(), fmt.Errorf("table: list keys: %w", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selection = e.selection.With(keys...)
	return e.snapshotLocked(), nil
}

// ClearSelection empties the selection.
func (e *Engine) ClearSelection() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selection = e.selection.Clear()
	return e.snapshotLocked()
}

// RunBulk executes a configured bulk action against the current
// selection. The selection is page-independent: keys selected on other
// pages are resolved to records through the source before Execute runs,
// so the action always sees the whole selection. Successful execution
// clears the executed keys; failure leaves the selection unchanged with
// the error recorded per action.
func (e *Engine) RunBulk(ctx context.Context, actionKey string, confirmed bool) (View, error) {
	var action BulkAction
	found := false
	for _, a := range e.cfg.BulkActions {
		if a.Key == actionKey {
			action, found = a, true
			break
		}
	}
	if !found {
		return e.View(), ErrUnknownAction
	}

	e.mu.Lock()
	selection := e.selection
	selected := e.selectedOnPageLocked()
	q := e.query
	e.mu.Unlock()

	if missing := offPageKeys(selection, selected, e.cfg.KeyField); len(missing) > 0 {
		resolver, ok := e.source.(RecordResolver)
		if !ok {
			return e.View(), ErrSelectionUnresolvable
		}
		resolved, err := resolver.Resolve(ctx, q, missing)
		if err != nil {
			return e.View(), fmt.Errorf("table: resolve selection: %w", err)
		}
		selected = append(selected, resolved...)
	}

	next, err := e.runner.RunBulk(ctx, action, selection, selected, e.cfg.KeyField, confirmed)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selection = next
	if err != nil {
		return e.snapshotLocked(), err
	}
	return e.snapshotLocked(), nil
}

// BulkErr exposes the recorded error for a bulk action key.
func (e *Engine) BulkErr(actionKey string) error { return e.runner.Err(actionKey) }

// ClearBulkErr dismisses a recorded bulk action error.
func (e *Engine) ClearBulkErr(actionKey string) { e.runner.ClearErr(actionKey) }

// ApplyPreset replaces the simple filters wholesale with the preset's
// snapshot and re-runs the pipeline from page 1.
func (e *Engine) ApplyPreset(ctx context.Context, p Preset) (View, error) {
	e.mu.Lock()
	q := e.query
	e.mu.Unlock()
	q.Filters = p.Filters.Clone()
	q.Page = 1
	return e.Apply(ctx, q)
}

// ClickSort applies a plain header click to the sort state and re-runs
// the pipeline.
func (e *Engine) ClickSort(ctx context.Context, key string) (View, error) {
	return e.applySort(ctx, func(s SortState) SortState { return s.Click(key) })
}

// AddClickSort applies a modified ("add to sort") header click.
func (e *Engine) AddClickSort(ctx context.Context, key string) (View, error) {
	return e.applySort(ctx, func(s SortState) SortState { return s.AddClick(key) })
}

func (e *Engine) applySort(ctx context.Context, transition func(SortState) SortState) (View, error) {
	e.mu.Lock()
	q := e.query
	state := NewSortState(e.cfg.MultiSort, q.Sort...)
	e.mu.Unlock()
	q.Sort = transition(state).Entries()
	return e.Apply(ctx, q)
}

// QueueSearch routes a raw keystroke value through the configured
// debounce: only the value still current after the quiet period reaches
// the pipeline, and a superseded completion never invokes notify.
func (e *Engine) QueueSearch(ctx context.Context, search string, notify func(View, error)) {
	run := func() {
		e.mu.Lock()
		q := e.query
		e.mu.Unlock()
		q.Search = search
		view, err := e.Apply(ctx, q)
		if errors.Is(err, ErrSuperseded) {
			return
		}
		if notify != nil {
			notify(view, err)
		}
	}
	if e.deb == nil {
		run()
		return
	}
	e.deb.Trigger(run)
}

// CancelSearch drops any pending debounced search.
func (e *Engine) CancelSearch() {
	if e.deb != nil {
		e.deb.Cancel()
	}
}
