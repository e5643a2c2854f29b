package table

import "github.com/google/uuid"

// Preset is a named, reusable snapshot of simple filter values. Applying
// one replaces the current FilterValue wholesale; it never merges.
type Preset struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Filters FilterValue `json:"filters"`
	Default bool        `json:"default"`
}

// NewPreset snapshots the given filters under a caller-supplied name. The
// snapshot is deep-copied so later panel changes cannot leak into it.
func NewPreset(name string, filters FilterValue) Preset {
	return Preset{
		ID:      uuid.NewString(),
		Name:    name,
		Filters: filters.Clone(),
	}
}

// SavePreset appends a preset to the list without mutating or removing
// existing entries. When the new preset is flagged default, the flag is
// cleared on the copies of the others so at most one default exists.
func SavePreset(list []Preset, p Preset) []Preset {
	out := make([]Preset, 0, len(list)+1)
	for _, existing := range list {
		if p.Default {
			existing.Default = false
		}
		out = append(out, existing)
	}
	return append(out, p)
}

// DefaultPreset returns the preset flagged default, if any.
func DefaultPreset(list []Preset) (Preset, bool) {
	for _, p := range list {
		if p.Default {
			return p, true
		}
	}
	return Preset{}, false
}
