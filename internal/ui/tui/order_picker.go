package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/klauern/amt/internal/conflict"
	"github.com/klauern/amt/internal/solver"
)

// maxPreviewLines bounds the lines shown for each side of the conflict.
const maxPreviewLines = 8

// OrderPickerAction represents the action to perform after order selection.
type OrderPickerAction int

const (
	// OrderPickerActionNone means the user quit: the conflict is left alone.
	OrderPickerActionNone OrderPickerAction = iota
	// OrderPickerActionSelect means the user picked an order.
	OrderPickerActionSelect
)

// OrderPickerResult contains the result of the order picker interaction.
type OrderPickerResult struct {
	Action OrderPickerAction
	Order  solver.Order
}

// orderPickerKeyMap defines the key bindings for the order picker.
type orderPickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Skip   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultOrderPickerKeyMap() orderPickerKeyMap {
	return orderPickerKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "select"),
		),
		Skip: key.NewBinding(
			key.WithKeys("s", "esc"),
			key.WithHelp("s", "skip"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// OrderPickerModel is the BubbleTea model picking how two additions are
// combined.
type OrderPickerModel struct {
	conflict *conflict.Conflict
	orders   []solver.Order
	cursor   int
	keys     orderPickerKeyMap
	result   OrderPickerResult
	showHelp bool
	width    int
	height   int
	quitting bool
}

// Styles for the order picker TUI.
var orderPickerStyles = struct {
	Title    lipgloss.Style
	Side     lipgloss.Style
	Content  lipgloss.Style
	Help     lipgloss.Style
	Item     lipgloss.Style
	Selected lipgloss.Style
	Status   lipgloss.Style
}{
	Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")).Padding(0, 1),
	Side:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")).Padding(0, 1),
	Content:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Padding(0, 3),
	Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	Item:     lipgloss.NewStyle().Padding(0, 2),
	Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 2),
	Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1),
}

// NewOrderPickerModel creates a picker for the additions of c.
func NewOrderPickerModel(c *conflict.Conflict) OrderPickerModel {
	return OrderPickerModel{
		conflict: c,
		orders: []solver.Order{
			solver.OrderRemoteFirst,
			solver.OrderLocalFirst,
			solver.OrderRemoteOnly,
			solver.OrderLocalOnly,
		},
		keys: defaultOrderPickerKeyMap(),
	}
}

// Init implements tea.Model.
func (m OrderPickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m OrderPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Skip):
			m.quitting = true
			m.result = OrderPickerResult{Action: OrderPickerActionNone, Order: solver.OrderNone}
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.orders)-1 {
				m.cursor++
			}
			return m, nil

		case key.Matches(msg, m.keys.Select):
			m.result = OrderPickerResult{
				Action: OrderPickerActionSelect,
				Order:  m.orders[m.cursor],
			}
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m OrderPickerModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	title := "Both sides added lines"
	if line := m.conflict.Line(); line > 0 {
		title = fmt.Sprintf("%s at line %d", title, line)
	}
	b.WriteString(orderPickerStyles.Title.Render(title))
	b.WriteString("\n\n")

	m.renderSide(&b, "local", markerLabel(m.conflict.MarkerLocal()), m.conflict.LocalLines())
	m.renderSide(&b, "remote", markerLabel(m.conflict.MarkerRemote()), m.conflict.RemoteLines())

	for i, o := range m.orders {
		if i == m.cursor {
			b.WriteString(orderPickerStyles.Selected.Render("> " + o.Description()))
		} else {
			b.WriteString(orderPickerStyles.Item.Render("  " + o.Description()))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(orderPickerStyles.Status.Render("Select how both additions are kept"))
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(m.renderFullHelp())
	} else {
		b.WriteString(m.renderShortHelp())
	}

	return b.String()
}

func (m OrderPickerModel) renderSide(b *strings.Builder, side, label string, lines []string) {
	heading := cases.Title(language.English).String(side)
	if label != "" {
		heading += " (" + label + ")"
	}
	b.WriteString(orderPickerStyles.Side.Render(heading))
	b.WriteString("\n")

	width := m.width - 6
	if width <= 0 {
		width = 80
	}
	for i, line := range lines {
		if i == maxPreviewLines {
			b.WriteString(orderPickerStyles.Content.Render(fmt.Sprintf("... (%d more lines)", len(lines)-maxPreviewLines)))
			b.WriteString("\n")
			break
		}
		b.WriteString(orderPickerStyles.Content.Render(truncateText(strings.TrimRight(line, "\n"), width)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (m OrderPickerModel) renderShortHelp() string {
	keys := []string{
		"↑/↓ navigate",
		"enter select",
		"s skip",
		"? help",
		"q quit",
	}
	return orderPickerStyles.Help.Render(strings.Join(keys, " • "))
}

func (m OrderPickerModel) renderFullHelp() string {
	help := `Navigation:
  ↑/k      Move up
  ↓/j      Move down

Actions:
  Enter    Use the highlighted order
  s/Esc    Leave this conflict unresolved

General:
  ?        Toggle full help
  q        Quit (leaves the conflict unresolved)`
	return orderPickerStyles.Help.Render(help)
}

// Result returns the result of the user interaction.
func (m OrderPickerModel) Result() OrderPickerResult {
	return m.result
}

// markerLabel returns the label following a conflict marker, such as the
// branch name in "<<<<<<< HEAD".
func markerLabel(marker string) string {
	fields := strings.Fields(marker)
	if len(fields) < 2 {
		return ""
	}
	return strings.Join(fields[1:], " ")
}

// PickOrder runs the order picker for c. It implements solver.OrderPrompt.
func PickOrder(c *conflict.Conflict) (solver.Order, error) {
	finalModel, err := Run(NewOrderPickerModel(c))
	if err != nil {
		return solver.OrderNone, err
	}
	if m, ok := finalModel.(OrderPickerModel); ok && m.Result().Action == OrderPickerActionSelect {
		return m.Result().Order, nil
	}
	return solver.OrderNone, nil
}
