package table

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionSurvivesPageNavigation(t *testing.T) {
	// Select on "page 2", then add a "page 1" key: both remain.
	s := NewSelection().With("21", "22")
	s = s.With("3")
	assert.True(t, s.Has("21"))
	assert.True(t, s.Has("22"))
	assert.True(t, s.Has("3"))
	assert.Equal(t, 3, s.Len())
}

func TestSelectionToggleAndImmutability(t *testing.T) {
	base := NewSelection("a")
	toggled := base.Toggle("a")
	assert.True(t, base.Has("a"))
	assert.False(t, toggled.Has("a"))

	re := toggled.Toggle("a")
	assert.True(t, re.Has("a"))
}

func TestSelectionKeysSorted(t *testing.T) {
	s := NewSelection("c", "a", "b")
	assert.Equal(t, []string{"a", "b", "c"}, s.Keys())
}

func bulkRecords(n int) []Record {
	out := make([]Record, n)
	for i := range out {
		out[i] = Record{"id": i + 1}
	}
	return out
}

func TestBulkActionEnablementBounds(t *testing.T) {
	a := BulkAction{Key: "archive", MinSelection: 1, MaxSelection: 10}

	sel := NewSelection()
	assert.False(t, a.Enabled(sel, nil), "0 selected disables")

	keys := make([]string, 5)
	for i := range keys {
		keys[i] = stringify(i + 1)
	}
	sel = NewSelection(keys...)
	assert.True(t, a.Enabled(sel, bulkRecords(5)), "5 selected enables")

	keys = make([]string, 11)
	for i := range keys {
		keys[i] = stringify(i + 1)
	}
	sel = NewSelection(keys...)
	assert.False(t, a.Enabled(sel, bulkRecords(11)), "11 selected disables")
}

func TestBulkActionDisabledPredicate(t *testing.T) {
	a := BulkAction{
		Key:          "publish",
		MinSelection: 1,
		Disabled: func(selected []Record) bool {
			for _, r := range selected {
				if b, _ := toBool(r["published"]); b {
					return true
				}
			}
			return false
		},
	}
	sel := NewSelection("1")
	assert.True(t, a.Enabled(sel, []Record{{"id": 1, "published": false}}))
	assert.False(t, a.Enabled(sel, []Record{{"id": 1, "published": true}}))
}

func TestRunBulkSuccessClearsExecutedKeys(t *testing.T) {
	executed := 0
	a := BulkAction{
		Key:          "archive",
		MinSelection: 1,
		Execute: func(ctx context.Context, selected []Record) error {
			executed = len(selected)
			return nil
		},
	}
	sel := NewSelection("1", "2", "7")
	r := NewActionRunner()

	// Only records 1 and 2 are on the visible page; key 7 stays selected.
	next, err := r.RunBulk(context.Background(), a, sel, bulkRecords(2), "id", false)
	require.NoError(t, err)
	assert.Equal(t, 2, executed)
	assert.Equal(t, []string{"7"}, next.Keys())
}

func TestRunBulkFailureLeavesSelection(t *testing.T) {
	boom := errors.New("backend unavailable")
	a := BulkAction{
		Key:          "archive",
		MinSelection: 1,
		Execute:      func(ctx context.Context, selected []Record) error { return boom },
	}
	sel := NewSelection("1", "2")
	r := NewActionRunner()

	next, err := r.RunBulk(context.Background(), a, sel, bulkRecords(2), "id", false)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, sel.Keys(), next.Keys())
	require.ErrorIs(t, r.Err("archive"), boom)

	r.ClearErr("archive")
	assert.NoError(t, r.Err("archive"))
}

func TestRunBulkConfirmFlow(t *testing.T) {
	ran := false
	a := BulkAction{
		Key:          "delete",
		MinSelection: 1,
		Confirm:      &ConfirmPrompt{Title: "Delete records", Message: "This cannot be undone"},
		Execute:      func(ctx context.Context, selected []Record) error { ran = true; return nil },
	}
	sel := NewSelection("1")
	r := NewActionRunner()

	_, err := r.RunBulk(context.Background(), a, sel, bulkRecords(1), "id", false)
	var confirm *ConfirmRequiredError
	require.ErrorAs(t, err, &confirm)
	assert.Equal(t, "Delete records", confirm.Prompt.Title)
	assert.False(t, ran, "execute must not run before confirmation")

	next, err := r.RunBulk(context.Background(), a, sel, bulkRecords(1), "id", true)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 0, next.Len())
}

func TestRunBulkDisabledRefused(t *testing.T) {
	a := BulkAction{Key: "archive", MinSelection: 2, Execute: func(context.Context, []Record) error { return nil }}
	r := NewActionRunner()
	_, err := r.RunBulk(context.Background(), a, NewSelection("1"), bulkRecords(1), "id", false)
	assert.ErrorIs(t, err, ErrActionDisabled)
}

func TestRunBulkRefusesDoubleSubmit(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	a := BulkAction{
		Key:          "slow",
		MinSelection: 1,
		Execute: func(ctx context.Context, selected []Record) error {
			close(started)
			<-release
			return nil
		},
	}
	r := NewActionRunner()
	sel := NewSelection("1")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := r.RunBulk(context.Background(), a, sel, bulkRecords(1), "id", false)
		assert.NoError(t, err)
	}()

	<-started
	_, err := r.RunBulk(context.Background(), a, sel, bulkRecords(1), "id", false)
	assert.ErrorIs(t, err, ErrActionInFlight)

	close(release)
	wg.Wait()

	// After the in-flight cycle completes the action can run again.
	release = make(chan struct{})
	started = make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = r.RunBulk(context.Background(), a, sel, bulkRecords(1), "id", false)
	}()
	<-started
	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second invocation did not complete")
	}
}
