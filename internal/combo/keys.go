package combo

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keys a focused Model responds to. Keys that are not
// bound are passed to the text input.
type KeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Select key.Binding
	Leave  key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑", "previous"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Leave: key.NewBinding(
			key.WithKeys("tab", "shift+tab", "esc"),
			key.WithHelp("tab/esc", "leave"),
		),
	}
}

// ShortHelp returns the bindings shown in a one-line help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Select, k.Leave}
}

// FullHelp returns the bindings shown in the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
