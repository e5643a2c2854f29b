// Package presets persists named filter snapshots per listing in Redis,
// so saved views survive restarts and are shared across instances.
package presets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/tramita/tramita/internal/table"
)

var (
	// ErrUnknownTable rejects preset operations against undeclared listings.
	ErrUnknownTable = errors.New("presets: unknown table")
	// ErrNameRequired rejects anonymous presets.
	ErrNameRequired = errors.New("presets: name is required")
)

// Store keeps one preset list per table key under a single Redis hash-like
// namespace. Saves are append-only, matching the engine's preset rules.
type Store struct {
	client *redis.Client
	tables map[string]struct{}
}

// NewStore builds a Store restricted to the given table keys.
func NewStore(client *redis.Client, tables ...string) *Store {
	allowed := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		allowed[t] = struct{}{}
	}
	return &Store{client: client, tables: allowed}
}

func (s *Store) key(tableKey string) string {
	return "tramita:presets:" + tableKey
}

// List returns the presets saved for a table, oldest first.
func (s *Store) List(ctx context.Context, tableKey string) ([]table.Preset, error) {
	if _, ok := s.tables[tableKey]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, tableKey)
	}
	raw, err := s.client.Get(ctx, s.key(tableKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("presets: load %q: %w", tableKey, err)
	}
	var list []table.Preset
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("presets: decode %q: %w", tableKey, err)
	}
	return list, nil
}

// Save snapshots the given filters under a name and appends the preset.
// Flagging the new preset default clears the flag on the stored ones.
func (s *Store) Save(ctx context.Context, tableKey, name string, filters table.FilterValue, isDefault bool) (table.Preset, error) {
	if name == "" {
		return table.Preset{}, ErrNameRequired
	}
	list, err := s.List(ctx, tableKey)
	if err != nil {
		return table.Preset{}, err
	}

	p := table.NewPreset(name, filters)
	p.Default = isDefault
	list = table.SavePreset(list, p)

	raw, err := json.Marshal(list)
	if err != nil {
		return table.Preset{}, fmt.Errorf("presets: encode %q: %w", tableKey, err)
	}
	if err := s.client.Set(ctx, s.key(tableKey), raw, 0).Err(); err != nil {
		return table.Preset{}, fmt.Errorf("presets: store %q: %w", tableKey, err)
	}
	return p, nil
}

// Default returns the table's default preset, if one is flagged.
func (s *Store) Default(ctx context.Context, tableKey string) (table.Preset, bool, error) {
	list, err := s.List(ctx, tableKey)
	if err != nil {
		return table.Preset{}, false, err
	}
	p, ok := table.DefaultPreset(list)
	return p, ok, nil
}
