package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPresetSnapshotsFilters(t *testing.T) {
	filters := FilterValue{"category": "obras"}
	p := NewPreset("Obras activas", filters)
	require.NotEmpty(t, p.ID)

	// Later panel changes never leak into the snapshot.
	filters["category"] = "padron"
	assert.Equal(t, "obras", p.Filters["category"])
}

func TestSavePresetAppendsWithoutMutating(t *testing.T) {
	list := []Preset{NewPreset("uno", FilterValue{"a": 1})}
	saved := SavePreset(list, NewPreset("dos", FilterValue{"b": 2}))

	require.Len(t, saved, 2)
	require.Len(t, list, 1, "original list untouched")
	assert.Equal(t, "uno", saved[0].Name)
	assert.Equal(t, "dos", saved[1].Name)
}

func TestSavePresetSingleDefault(t *testing.T) {
	first := NewPreset("uno", nil)
	first.Default = true
	list := SavePreset(nil, first)

	second := NewPreset("dos", nil)
	second.Default = true
	list = SavePreset(list, second)

	defaults := 0
	for _, p := range list {
		if p.Default {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)

	got, ok := DefaultPreset(list)
	require.True(t, ok)
	assert.Equal(t, "dos", got.Name)
}

func TestDefaultPresetAbsent(t *testing.T) {
	_, ok := DefaultPreset([]Preset{NewPreset("uno", nil)})
	assert.False(t, ok)
}
