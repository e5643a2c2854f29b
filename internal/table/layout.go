package table

// DisplayMode is the rendering shape chosen for a viewport.
type DisplayMode string

const (
	LayoutTable DisplayMode = "table"
	LayoutCard  DisplayMode = "card"
)

// SelectLayout maps a viewport width to a display mode: below the
// breakpoint the listing collapses into cards.
func SelectLayout(viewportWidth, breakpoint int) DisplayMode {
	if breakpoint > 0 && viewportWidth < breakpoint {
		return LayoutCard
	}
	return LayoutTable
}

// CardLayout resolves which columns a card view shows: the two most
// important fields plus the suppressed rest, derived once from the
// caller-declared hints instead of re-derived per render.
type CardLayout struct {
	Primary   *Column
	Secondary *Column
	Hidden    []Column
}

// ResolveCardLayout picks primary/secondary columns from CardRole hints,
// falling back to declaration order for unhinted columns. Columns hinted
// RoleHidden never surface even when slots are free.
func ResolveCardLayout(cols []Column) CardLayout {
	var primary, secondary *Column
	var rest []Column
	for _, c := range cols {
		c := c
		switch {
		case c.CardRole == RolePrimary && primary == nil:
			primary = &c
		case c.CardRole == RoleSecondary && secondary == nil:
			secondary = &c
		default:
			rest = append(rest, c)
		}
	}

	// Promote unhinted columns into free slots, declaration order.
	hidden := make([]Column, 0, len(rest))
	for _, c := range rest {
		c := c
		switch {
		case c.CardRole == RoleHidden:
			hidden = append(hidden, c)
		case primary == nil:
			primary = &c
		case secondary == nil:
			secondary = &c
		default:
			hidden = append(hidden, c)
		}
	}
	return CardLayout{Primary: primary, Secondary: secondary, Hidden: hidden}
}
