package combo

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Ensure that entry implements list.Item and delegate implements
// list.ItemDelegate.
var (
	_ list.Item         = entry[string]{}
	_ list.ItemDelegate = delegate{}
)

// entry is a dropdown row holding an item and its display value.
type entry[T any] struct {
	value T
	text  string
}

// FilterValue is the value used when filtering against this entry. The list's
// own filtering is disabled, the Combo filters instead.
func (e entry[T]) FilterValue() string {
	return e.text
}

// Title returns the title to display for this entry in a list.
func (e entry[T]) Title() string {
	return e.text
}

// Description returns the description to display for this entry in a list.
func (e entry[T]) Description() string {
	return ""
}

// delegate renders dropdown rows, one line each, with the part matching the
// search text highlighted.
type delegate struct {
	styles Styles
	query  func() string
}

// Height returns the number of lines of a row.
func (d delegate) Height() int {
	return 1
}

// Spacing returns the number of blank lines between rows.
func (d delegate) Spacing() int {
	return 0
}

// Update handles messages for the rows. Rows have no state of their own.
func (d delegate) Update(tea.Msg, *list.Model) tea.Cmd {
	return nil
}

// Render writes the row for the given item.
func (d delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	text := item.FilterValue()
	row, cursor := d.styles.Item, "  "
	if index == m.Index() {
		row, cursor = d.styles.Highlighted, "> "
	}
	matched := row.Inherit(d.styles.Match)
	rendered := lipgloss.StyleRunes(text, matchIndexes(text, d.query()), matched, row)
	fmt.Fprint(w, row.Render(cursor)+rendered)
}

// matchIndexes returns the rune indexes of the first case-insensitive
// occurrence of query in text, or nil. It agrees with the Combo's filter.
func matchIndexes(text, query string) []int {
	if query == "" {
		return nil
	}
	i := indexFold(text, query)
	if i < 0 {
		return nil
	}
	indexes := make([]int, utf8.RuneCountInString(query))
	for j := range indexes {
		indexes[j] = i + j
	}
	return indexes
}
