package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/mrxk/combo/internal/combo"
	"github.com/mrxk/combo/internal/element"
	"github.com/mrxk/combo/internal/logging"
	"github.com/mrxk/combo/internal/processor"
)

// Ensure that Model implements tea.Model.
var _ tea.Model = (*Model)(nil)

// Model holds the state of the application: a combo box over the elements of
// a file and the element most recently selected with it.
type Model struct {
	picker   *combo.Model[element.Element]
	selected *element.Element
	status   string
	cmdChan  chan<- processor.Command
	help     help.Model
	quit     key.Binding
	focus    key.Binding
	log      *logrus.Entry
	path     string
	delay    time.Duration
	follow   bool
	stopping bool
	width    int
	height   int
}

// ModelOpts defines the options that can be set on a Model.
type ModelOpts struct {
	Path   string
	Delay  time.Duration
	Follow bool
}

// NewModel returns a new Model configured with the given ModelOpts.
func NewModel(opts ModelOpts) *Model {
	m := &Model{
		path:   opts.Path,
		delay:  opts.Delay,
		follow: opts.Follow,
		log:    logging.NewLogger("model"),
		help:   help.New(),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		focus: key.NewBinding(
			key.WithKeys("tab", "shift+tab", "enter", "/"),
			key.WithHelp("tab", "focus"),
		),
	}
	m.picker = combo.NewModel(m.options(nil))
	return m
}

// options returns the combo options for the given directly supplied items.
// The file is always the data source so that a failed first load is retried
// when the file changes.
func (m *Model) options(items []element.Element) combo.Options[element.Element] {
	return combo.Options[element.Element]{
		Items:      items,
		DataSource: loadElements(m.path, m.delay),
		Display:    element.Element.Name,
	}
}

// Selected returns the most recently selected element, if any.
func (m *Model) Selected() (element.Element, bool) {
	if m.selected == nil {
		return element.Element{}, false
	}
	return *m.selected, true
}

// Init initializes the application. It focuses the combo box and returns a
// command that loads the elements.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.picker.Init(), m.picker.Focus())
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)
	case tea.KeyMsg:
		if key.Matches(msg, m.quit) {
			return m.handleQuit()
		}
		if !m.picker.Focused() && key.Matches(msg, m.focus) {
			return m, m.picker.Focus()
		}
	case combo.ItemSelectedMsg[element.Element]:
		return m.handleItemSelected(msg)
	case combo.LoadErrorMsg:
		m.status = msg.Err.Error()
		return m, nil
	case processor.CommandChannel:
		return m.handleCommandChannel(msg)
	case processor.Watching:
		m.log.Infof("watching %s", msg.Path)
		return m, nil
	case processor.ItemsChanged:
		m.status = ""
		return m, m.picker.SetInputs(m.options(msg.Items))
	case processor.WatchError:
		m.status = fmt.Sprintf("%s %s: %v", msg.Message, msg.Path, msg.Err)
		return m, nil
	case processor.Stopped:
		return m, tea.Quit
	}
	_, cmd := m.picker.Update(msg)
	return m, cmd
}

// View returns the view for this model: the file path, the combo box, the
// selection and a footer. The selection panel is shown faint while the combo
// box has focus.
func (m *Model) View() string {
	border := lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).BorderForeground(lipgloss.Color("#9ACD32"))
	faint := border.Faint(true).BorderForeground(lipgloss.Color("#50545c"))
	pickerStyle, selectedStyle := border, faint
	if !m.picker.Focused() {
		pickerStyle, selectedStyle = faint, border
	}
	width := max(m.width-2, 20)
	return lipgloss.JoinVertical(lipgloss.Top,
		lipgloss.NewStyle().Width(m.width).Align(lipgloss.Center).Render(m.path),
		pickerStyle.Width(width).Render(m.picker.View()),
		selectedStyle.Width(width).Render(m.selectedView()),
		m.footerView(),
	)
}

// handleWindowSize resizes the combo box to the new size.
func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.picker.SetSize(m.width-2, max(m.height-12, 3))
	return m, nil
}

// handleQuit stops the processor, whose Stopped message quits the program. If
// no processor announced itself the program quits immediately.
func (m *Model) handleQuit() (tea.Model, tea.Cmd) {
	if m.cmdChan == nil || m.stopping {
		return m, tea.Quit
	}
	m.stopping = true
	return m, sendCommand(m.cmdChan, processor.Command{Operation: processor.StopOperation})
}

// handleItemSelected records the selected element.
func (m *Model) handleItemSelected(msg combo.ItemSelectedMsg[element.Element]) (tea.Model, tea.Cmd) {
	if msg.ID != m.picker.ID() {
		return m, nil
	}
	item := msg.Item
	m.selected = &item
	m.status = ""
	m.log.WithFields(logrus.Fields{"id": item.ID(), "name": item.Name()}).Info("element selected")
	return m, nil
}

// handleCommandChannel saves the processor's command channel and, when
// following, starts watching the element file.
func (m *Model) handleCommandChannel(msg processor.CommandChannel) (tea.Model, tea.Cmd) {
	m.cmdChan = msg.CmdChan
	if !m.follow {
		return m, nil
	}
	return m, sendCommand(m.cmdChan, processor.Command{Operation: processor.WatchOperation, Path: m.path})
}

// selectedView returns the view of the selection panel.
func (m *Model) selectedView() string {
	if m.selected == nil {
		return "nothing selected"
	}
	return fmt.Sprintf("selected #%d %s", m.selected.ID(), m.selected.Name())
}

// footerView returns the view of the footer. It contains the last error, if
// any, and the key help.
func (m *Model) footerView() string {
	bindings := []key.Binding{m.quit}
	if m.picker.Focused() {
		bindings = append(m.picker.KeyMap.ShortHelp(), bindings...)
	} else {
		bindings = append([]key.Binding{m.focus}, bindings...)
	}
	lines := []string{" " + m.help.ShortHelpView(bindings)}
	if m.status != "" {
		lines = append([]string{" " + m.status}, lines...)
	}
	return strings.Join(lines, "\n")
}
