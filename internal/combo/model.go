package combo

import (
	"context"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Ensure that Model implements tea.Model.
var _ tea.Model = (*Model[string])(nil)

var lastID int64

// nextID returns a unique Model id used to route load results.
func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// ItemSelectedMsg is a tea.Msg emitted once for every committed selection.
type ItemSelectedMsg[T any] struct {
	ID   int
	Item T
}

// LoadErrorMsg is a tea.Msg emitted when loading the items fails.
type LoadErrorMsg struct {
	ID  int
	Err error
}

// loadedMsg is a tea.Msg returned by the load command. It carries the result
// of a Fetch back to the event loop.
type loadedMsg[T any] struct {
	id  int
	res Result[T]
}

// Styles defines the look of a Model.
type Styles struct {
	Dropdown    lipgloss.Style
	Item        lipgloss.Style
	Highlighted lipgloss.Style
	Match       lipgloss.Style
	Muted       lipgloss.Style
	Error       lipgloss.Style
}

// DefaultStyles returns the default Styles.
func DefaultStyles() Styles {
	return Styles{
		Dropdown:    lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).BorderForeground(lipgloss.Color("#9ACD32")),
		Item:        lipgloss.NewStyle(),
		Highlighted: lipgloss.NewStyle().Foreground(lipgloss.Color("#9ACD32")).Bold(true),
		Match:       lipgloss.NewStyle().Underline(true),
		Muted:       lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("#50545c")),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")),
	}
}

// Model is a Bubble Tea component rendering a Combo as a text input and a
// dropdown list. Focus is focus-in and opens the dropdown, Blur is focus-out.
// Typing filters, enter commits the highlighted row.
type Model[T any] struct {
	KeyMap KeyMap
	Styles Styles

	id      int
	ctx     context.Context
	combo   *Combo[T]
	input   textinput.Model
	list    list.Model
	focused bool
	pending []tea.Cmd
}

// NewModel returns a Model over the given Options. The host's OnItemSelected
// runs on the event loop when an item is committed, before the returned
// command emits the ItemSelectedMsg. Hosts keeping state in their own model
// should react to ItemSelectedMsg instead.
func NewModel[T any](opts Options[T]) *Model[T] {
	m := &Model[T]{
		KeyMap: DefaultKeyMap(),
		Styles: DefaultStyles(),
		id:     nextID(),
		ctx:    context.Background(),
	}
	m.combo = New(m.wrap(opts))
	m.input = textinput.New()
	m.input.Prompt = "> "
	m.input.Placeholder = "type to search"
	m.input.Cursor.SetMode(cursor.CursorStatic)
	d := delegate{styles: m.Styles, query: m.combo.SearchText}
	m.list = list.New([]list.Item{}, d, 40, 8)
	m.list.SetShowHelp(false)
	m.list.SetShowTitle(false)
	m.list.SetShowStatusBar(false)
	m.list.SetFilteringEnabled(false)
	m.list.DisableQuitKeybindings()
	return m
}

// SetContext sets the context passed to the data source.
func (m *Model[T]) SetContext(ctx context.Context) {
	m.ctx = ctx
}

// ID returns the id carried by the messages this Model emits.
func (m *Model[T]) ID() int {
	return m.id
}

// Combo returns the underlying state for reading. Commits made on it directly
// bypass the input and the ItemSelectedMsg; use SelectItem and Blur instead.
func (m *Model[T]) Combo() *Combo[T] {
	return m.combo
}

// SelectItem commits item as if it was chosen in the dropdown and returns the
// command emitting its ItemSelectedMsg.
func (m *Model[T]) SelectItem(item T) tea.Cmd {
	m.combo.SelectItem(item)
	m.syncInput()
	return tea.Batch(m.syncList(), m.flush())
}

// Focused reports whether the input has focus.
func (m *Model[T]) Focused() bool {
	return m.focused
}

// SetSize sets the width of the input and the size of the dropdown.
func (m *Model[T]) SetSize(width, height int) {
	m.input.Width = width - len(m.input.Prompt) - 1
	m.list.SetSize(width-2, height)
}

// Init returns the command performing the first-mount load.
func (m *Model[T]) Init() tea.Cmd {
	return m.load(m.combo.Mount())
}

// SetInputs applies new Options and returns the command for any load they
// require.
func (m *Model[T]) SetInputs(next Options[T]) tea.Cmd {
	fetch := m.combo.SetInputs(m.wrap(next))
	return tea.Batch(m.load(fetch), m.syncList())
}

// Focus gives the input focus and opens the dropdown.
func (m *Model[T]) Focus() tea.Cmd {
	m.focused = true
	m.combo.OpenDropdown()
	return tea.Batch(m.input.Focus(), m.syncList())
}

// Blur removes focus from the input and resolves the selection. The returned
// command emits an ItemSelectedMsg if the focus loss committed an item. It
// does nothing when the input is not focused.
func (m *Model[T]) Blur() tea.Cmd {
	if !m.focused {
		return nil
	}
	m.focused = false
	m.input.Blur()
	m.combo.HandleFocusOut()
	m.syncInput()
	return tea.Batch(m.syncList(), m.flush())
}

// Update handles messages.
func (m *Model[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg[T]:
		if msg.id != m.id {
			return m, nil
		}
		return m.handleLoaded(msg)
	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		return m.handleKey(msg)
	}
	if !m.focused {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the input and, when open, the dropdown.
func (m *Model[T]) View() string {
	rows := []string{m.input.View()}
	switch {
	case m.combo.Loading():
		rows = append(rows, m.Styles.Muted.Render("loading..."))
	case m.combo.Err() != nil:
		rows = append(rows, m.Styles.Error.Render(m.combo.Err().Error()))
	case !m.combo.IsOpen():
	case len(m.list.Items()) == 0:
		rows = append(rows, m.Styles.Dropdown.Render(m.Styles.Muted.Render("no matches")))
	default:
		rows = append(rows, m.Styles.Dropdown.Render(m.list.View()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// handleLoaded completes a load. A failure is reported with a LoadErrorMsg.
func (m *Model[T]) handleLoaded(msg loadedMsg[T]) (tea.Model, tea.Cmd) {
	if err := m.combo.Loaded(msg.res); err != nil {
		id := m.id
		return m, func() tea.Msg {
			return LoadErrorMsg{ID: id, Err: err}
		}
	}
	if m.focused {
		m.combo.OpenDropdown()
	}
	return m, m.syncList()
}

// handleKey handles key presses while focused. Unbound keys go to the text
// input; a change of its value refilters and opens the dropdown.
func (m *Model[T]) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.KeyMap.Leave):
		return m, m.Blur()
	case key.Matches(msg, m.KeyMap.Select):
		if !m.combo.IsOpen() {
			m.combo.OpenDropdown()
			return m, m.syncList()
		}
		if e, ok := m.list.SelectedItem().(entry[T]); ok {
			m.combo.SelectItem(e.value)
			m.syncInput()
		}
		return m, tea.Batch(m.syncList(), m.flush())
	case key.Matches(msg, m.KeyMap.Next):
		if !m.combo.IsOpen() {
			m.combo.OpenDropdown()
			return m, m.syncList()
		}
		m.list.CursorDown()
		return m, nil
	case key.Matches(msg, m.KeyMap.Prev):
		m.list.CursorUp()
		return m, nil
	}
	var cmd tea.Cmd
	orig := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != orig {
		m.combo.FilterItems(value)
		m.combo.OpenDropdown()
		return m, tea.Batch(cmd, m.syncList())
	}
	return m, cmd
}

// load returns a command running fetch off the event loop, or nil.
func (m *Model[T]) load(fetch Fetch[T]) tea.Cmd {
	if fetch == nil {
		return nil
	}
	id, ctx := m.id, m.ctx
	return func() tea.Msg {
		return loadedMsg[T]{id: id, res: fetch(ctx)}
	}
}

// wrap returns opts with OnItemSelected replaced by a function calling the
// host's callback and queueing an ItemSelectedMsg command.
func (m *Model[T]) wrap(opts Options[T]) Options[T] {
	host := opts.OnItemSelected
	opts.OnItemSelected = func(item T) {
		if host != nil {
			host(item)
		}
		id := m.id
		m.pending = append(m.pending, func() tea.Msg {
			return ItemSelectedMsg[T]{ID: id, Item: item}
		})
	}
	return opts
}

// flush returns the queued selection commands.
func (m *Model[T]) flush() tea.Cmd {
	cmds := m.pending
	m.pending = nil
	return tea.Batch(cmds...)
}

// syncInput copies the search text into the input after a commit.
func (m *Model[T]) syncInput() {
	if m.input.Value() != m.combo.SearchText() {
		m.input.SetValue(m.combo.SearchText())
		m.input.CursorEnd()
	}
}

// syncList copies the filtered items into the dropdown and moves the
// highlight to the first row.
func (m *Model[T]) syncList() tea.Cmd {
	filtered := m.combo.FilteredItems()
	items := make([]list.Item, 0, len(filtered))
	for _, item := range filtered {
		items = append(items, entry[T]{value: item, text: m.combo.DisplayValue(item)})
	}
	cmd := m.list.SetItems(items)
	m.list.ResetSelected()
	return cmd
}
