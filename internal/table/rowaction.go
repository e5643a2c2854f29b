package table

import (
	"context"
	"fmt"
)

// RowAction is a single-record operation exposed per table row.
type RowAction struct {
	Key      string
	Title    string
	// Shortcut maps a key combination (e.g. "ctrl+d") to this action.
	Shortcut string
	Disabled func(rec Record) bool
	Confirm  *ConfirmPrompt
	Execute  func(ctx context.Context, rec Record) error
}

// enabled reports whether the action applies to the record.
func (a RowAction) enabled(rec Record) bool {
	return a.Disabled == nil || !a.Disabled(rec)
}

// RowDispatcher resolves which actions a record currently offers and
// routes pointer or keyboard activations to them.
type RowDispatcher struct {
	actions  []RowAction
	keyField string
	runner   *ActionRunner
}

// NewRowDispatcher wires the per-row actions over a shared runner so
// execution errors live alongside bulk-action errors.
func NewRowDispatcher(actions []RowAction, keyField string, runner *ActionRunner) *RowDispatcher {
	if runner == nil {
		runner = NewActionRunner()
	}
	return &RowDispatcher{actions: actions, keyField: keyField, runner: runner}
}

// For returns the actions enabled for a record, in declaration order.
func (d *RowDispatcher) For(rec Record) []RowAction {
	out := make([]RowAction, 0, len(d.actions))
	for _, a := range d.actions {
		if a.enabled(rec) {
			out = append(out, a)
		}
	}
	return out
}

// ByShortcut resolves a key combination against a record. A shortcut for
// a disabled action reports ok=false, so the keystroke is a no-op under
// the same enablement check as a pointer activation.
func (d *RowDispatcher) ByShortcut(combo string, rec Record) (RowAction, bool) {
	for _, a := range d.actions {
		if a.Shortcut == combo && a.Shortcut != "" {
			if !a.enabled(rec) {
				return RowAction{}, false
			}
			return a, true
		}
	}
	return RowAction{}, false
}

// invocationKey scopes in-flight tracking to one action on one record, so
// two rows can execute the same action concurrently while a double submit
// on the same row is refused.
func (d *RowDispatcher) invocationKey(a RowAction, rec Record) string {
	return fmt.Sprintf("%s/%s", a.Key, recordKey(rec, d.keyField))
}

// Run executes a row action against a record, honoring the enablement
// check, the confirmation step and per-invocation serialization. Errors
// are recorded per invocation so one failing row does not block others.
func (d *RowDispatcher) Run(ctx context.Context, actionKey string, rec Record, confirmed bool) error {
	var action RowAction
	found := false
	for _, a := range d.actions {
		if a.Key == actionKey {
			action, found = a, true
			break
		}
	}
	if !found {
		return ErrUnknownAction
	}
	if !action.enabled(rec) {
		return ErrActionDisabled
	}
	if action.Confirm != nil && !confirmed {
		return &ConfirmRequiredError{Prompt: *action.Confirm}
	}
	key := d.invocationKey(action, rec)
	if err := d.runner.begin(key); err != nil {
		return err
	}
	err := action.Execute(ctx, rec)
	d.runner.finish(key, err)
	if err != nil {
		return fmt.Errorf("row action %q: %w", actionKey, err)
	}
	return nil
}

// Err exposes the recorded error for one action/record pair.
func (d *RowDispatcher) Err(actionKey string, rec Record) error {
	return d.runner.Err(fmt.Sprintf("%s/%s", actionKey, recordKey(rec, d.keyField)))
}

// ClearErr dismisses the recorded error for one action/record pair.
func (d *RowDispatcher) ClearErr(actionKey string, rec Record) {
	d.runner.ClearErr(fmt.Sprintf("%s/%s", actionKey, recordKey(rec, d.keyField)))
}
