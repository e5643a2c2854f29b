// Package listing adapts the table engine to JSON list endpoints shared by
// every catalog module. Each request builds a short-lived engine over the
// module's server-side source, applies the submitted query, and returns the
// resulting view.
package listing

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tramita/tramita/internal/platform/httpx"
	"github.com/tramita/tramita/internal/table"
)

// Lister serves the query and bulk endpoints for one catalog table.
type Lister struct {
	logger *slog.Logger
	cfg    table.Config
	source table.Source
}

// New builds a Lister. The config is validated once here so a misconfigured
// module fails at startup rather than on the first request.
func New(logger *slog.Logger, cfg table.Config, source table.Source) (*Lister, error) {
	cfg.SearchDebounce = 0 // debounce is a client concern, not a per-request one
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Lister{logger: logger, cfg: cfg, source: source}, nil
}

// Config exposes the table configuration, used by tests and by modules that
// derive bulk-action metadata from it.
func (l *Lister) Config() table.Config { return l.cfg }

// BulkRequest is the body of a bulk-action invocation. Keys are the
// selected row keys on the submitted page; whole-filtered-set operations
// go through the module's background-job endpoints instead.
type BulkRequest struct {
	Action    string      `json:"action"`
	Keys      []string    `json:"keys"`
	Confirmed bool        `json:"confirmed"`
	Query     table.Query `json:"query"`
}

// RowRequest is the body of a row-action invocation. The action is named
// either directly by key or by a keyboard shortcut combination.
type RowRequest struct {
	Action    string      `json:"action"`
	Shortcut  string      `json:"shortcut"`
	Key       string      `json:"key"`
	Confirmed bool        `json:"confirmed"`
	Query     table.Query `json:"query"`
}

// cardBreakpoint is the viewport width below which listings collapse
// into cards.
const cardBreakpoint = 768

// Layout handles GET /layout?width=N: report the display mode for the
// given viewport and the card column assignment used below the breakpoint.
func (l *Lister) Layout(w http.ResponseWriter, r *http.Request) {
	width, err := strconv.Atoi(r.URL.Query().Get("width"))
	if err != nil || width <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "width must be a positive integer")
		return
	}
	card := table.ResolveCardLayout(l.cfg.Columns)
	resp := map[string]any{
		"mode": table.SelectLayout(width, cardBreakpoint),
	}
	if card.Primary != nil {
		resp["primary"] = card.Primary.Key
	}
	if card.Secondary != nil {
		resp["secondary"] = card.Secondary.Key
	}
	hidden := make([]string, 0, len(card.Hidden))
	for _, c := range card.Hidden {
		hidden = append(hidden, c.Key)
	}
	resp["hidden"] = hidden
	httpx.JSON(w, http.StatusOK, resp)
}

// Query handles POST /query: decode a table.Query, run the pipeline, and
// respond with the view. Malformed queries come back as a 400 problem
// carrying every collected message.
func (l *Lister) Query(w http.ResponseWriter, r *http.Request) {
	var q table.Query
	if err := httpx.DecodeJSON(r, &q); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid query payload")
		return
	}

	eng, err := table.New(l.cfg, l.source)
	if err != nil {
		l.logger.Error("build table engine", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	view, err := eng.Apply(r.Context(), q)
	if err != nil {
		l.respondViewErr(w, view, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

// Bulk handles POST /bulk: re-apply the caller's query, seed the selection,
// and run the named action through the engine so enablement, confirmation,
// and double-submit rules all apply.
func (l *Lister) Bulk(w http.ResponseWriter, r *http.Request) {
	var req BulkRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid bulk payload")
		return
	}

	eng, err := table.New(l.cfg, l.source)
	if err != nil {
		l.logger.Error("build table engine", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	view, err := eng.Apply(r.Context(), req.Query)
	if err != nil {
		l.respondViewErr(w, view, err)
		return
	}

	view = eng.Select(req.Keys...)

	view, err = eng.RunBulk(r.Context(), req.Action, req.Confirmed)
	if err != nil {
		var confirm *table.ConfirmRequiredError
		switch {
		case errors.As(err, &confirm):
			httpx.JSON(w, http.StatusConflict, map[string]any{
				"confirm": confirm.Prompt,
				"view":    view,
			})
		case errors.Is(err, table.ErrUnknownAction):
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		case errors.Is(err, table.ErrActionDisabled), errors.Is(err, table.ErrActionInFlight),
			errors.Is(err, table.ErrSelectionUnresolvable):
			httpx.Problem(w, http.StatusUnprocessableEntity, "Action Unavailable", err.Error())
		default:
			l.logger.Error("bulk action failed",
				slog.String("action", req.Action), slog.Any("error", err))
			httpx.RespondError(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

// Row handles POST /row: run a single-record action against a row on the
// submitted page. Shortcut invocations honor the same enablement rules as
// pointer ones, so a disabled action's keystroke is a 422, not a bypass.
func (l *Lister) Row(w http.ResponseWriter, r *http.Request) {
	var req RowRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid row payload")
		return
	}

	eng, err := table.New(l.cfg, l.source)
	if err != nil {
		l.logger.Error("build table engine", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	view, err := eng.Apply(r.Context(), req.Query)
	if err != nil {
		l.respondViewErr(w, view, err)
		return
	}

	var rec table.Record
	for _, candidate := range view.Records {
		if key, ok := candidate[l.cfg.KeyField].(string); ok && key == req.Key {
			rec = candidate
			break
		}
	}
	if rec == nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "row is not on the requested page")
		return
	}

	action := req.Action
	if req.Shortcut != "" {
		resolved, ok := eng.Rows().ByShortcut(req.Shortcut, rec)
		if !ok {
			httpx.Problem(w, http.StatusUnprocessableEntity, "Action Unavailable", "no enabled action for shortcut")
			return
		}
		action = resolved.Key
	}

	if err := eng.Rows().Run(r.Context(), action, rec, req.Confirmed); err != nil {
		var confirm *table.ConfirmRequiredError
		switch {
		case errors.As(err, &confirm):
			httpx.JSON(w, http.StatusConflict, map[string]any{"confirm": confirm.Prompt})
		case errors.Is(err, table.ErrUnknownAction):
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		case errors.Is(err, table.ErrActionDisabled), errors.Is(err, table.ErrActionInFlight):
			httpx.Problem(w, http.StatusUnprocessableEntity, "Action Unavailable", err.Error())
		default:
			l.logger.Error("row action failed",
				slog.String("action", action), slog.Any("error", err))
			httpx.RespondError(w, err)
		}
		return
	}

	view, err = eng.Apply(r.Context(), req.Query)
	if err != nil {
		l.respondViewErr(w, view, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (l *Lister) respondViewErr(w http.ResponseWriter, view table.View, err error) {
	var verr *table.ValidationError
	if errors.As(err, &verr) {
		httpx.ValidationProblem(w, verr.Messages)
		return
	}
	l.logger.Error("list query failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}
