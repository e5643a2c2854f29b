package table

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Selection is the set of selected record keys. It is independent of the
// visible page: selecting on page 2 and navigating away must not lose the
// page-2 keys. Operations return a new Selection.
type Selection struct {
	keys map[string]struct{}
}

// NewSelection builds a selection from explicit keys.
func NewSelection(keys ...string) Selection {
	s := Selection{keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	return s
}

// Has reports whether a key is selected.
func (s Selection) Has(key string) bool {
	_, ok := s.keys[key]
	return ok
}

// Len is the number of selected keys.
func (s Selection) Len() int { return len(s.keys) }

// Keys returns the selected keys in deterministic order.
func (s Selection) Keys() []string {
	out := make([]string, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Toggle flips one key.
func (s Selection) Toggle(key string) Selection {
	if s.Has(key) {
		return s.Without(key)
	}
	return s.With(key)
}

// With adds keys to the selection.
func (s Selection) With(keys ...string) Selection {
	next := NewSelection(s.Keys()...)
	for _, k := range keys {
		next.keys[k] = struct{}{}
	}
	return next
}

// Without removes keys from the selection.
func (s Selection) Without(keys ...string) Selection {
	next := NewSelection(s.Keys()...)
	for _, k := range keys {
		delete(next.keys, k)
	}
	return next
}

// Clear empties the selection.
func (s Selection) Clear() Selection { return NewSelection() }

// ConfirmPrompt is the caller-supplied confirmation step shown before an
// action executes.
type ConfirmPrompt struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// BulkAction operates on the current multi-record selection, gated by
// selection-size constraints and an optional predicate over the selected
// records.
type BulkAction struct {
	Key          string
	Title        string
	MinSelection int
	// MaxSelection caps the selection size; 0 means unbounded.
	MaxSelection int
	Disabled     func(selected []Record) bool
	Confirm      *ConfirmPrompt
	Execute      func(ctx context.Context, selected []Record) error
}

// Enabled reports whether the action may run against the given selection.
func (a BulkAction) Enabled(selection Selection, selected []Record) bool {
	n := selection.Len()
	if n < a.MinSelection {
		return false
	}
	if a.MaxSelection > 0 && n > a.MaxSelection {
		return false
	}
	if a.Disabled != nil && a.Disabled(selected) {
		return false
	}
	return true
}

// Errors surfaced by the action runner.
var (
	ErrActionDisabled = errors.New("action is not enabled for the current selection")
	ErrActionInFlight = errors.New("action is already executing")
	ErrUnknownAction  = errors.New("unknown action")
)

// ConfirmRequiredError signals that the caller must surface the
// confirmation step and retry with confirmed=true.
type ConfirmRequiredError struct {
	Prompt ConfirmPrompt
}

func (e *ConfirmRequiredError) Error() string {
	return fmt.Sprintf("confirmation required: %s", e.Prompt.Title)
}

// ActionRunner serializes action invocations (no double submit while a
// confirm/execute cycle is in flight) and keeps the last error per
// invocation key so one failing action does not block others.
type ActionRunner struct {
	mu       sync.Mutex
	inflight map[string]struct{}
	failures map[string]error
}

// NewActionRunner builds an empty runner.
func NewActionRunner() *ActionRunner {
	return &ActionRunner{
		inflight: make(map[string]struct{}),
		failures: make(map[string]error),
	}
}

func (r *ActionRunner) begin(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.inflight[key]; busy {
		return ErrActionInFlight
	}
	r.inflight[key] = struct{}{}
	return nil
}

func (r *ActionRunner) finish(key string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inflight, key)
	if err != nil {
		r.failures[key] = err
	} else {
		delete(r.failures, key)
	}
}

// Err returns the last execution error recorded for an invocation key.
func (r *ActionRunner) Err(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failures[key]
}

// ClearErr drops a recorded error so it can be dismissed independently.
func (r *ActionRunner) ClearErr(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.failures, key)
}

// RunBulk executes a bulk action over the selected records. When the
// action declares a confirmation and confirmed is false, a
// *ConfirmRequiredError is returned and nothing executes. On success the
// executed keys are cleared from the selection; on failure the selection
// is returned unchanged and the error is recorded under the action key.
func (r *ActionRunner) RunBulk(ctx context.Context, a BulkAction, selection Selection, selected []Record, keyField string, confirmed bool) (Selection, error) {
	if !a.Enabled(selection, selected) {
		return selection, ErrActionDisabled
	}
	if a.Confirm != nil && !confirmed {
		return selection, &ConfirmRequiredError{Prompt: *a.Confirm}
	}
	if err := r.begin(a.Key); err != nil {
		return selection, err
	}
	err := a.Execute(ctx, selected)
	r.finish(a.Key, err)
	if err != nil {
		return selection, fmt.Errorf("bulk action %q: %w", a.Key, err)
	}
	executed := make([]string, 0, len(selected))
	for _, rec := range selected {
		executed = append(executed, recordKey(rec, keyField))
	}
	return selection.Without(executed...), nil
}
