package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/klauern/amt/internal/conflict"
	"github.com/klauern/amt/internal/solver"
)

func testConflict() *conflict.Conflict {
	return conflict.New("import a.B;\n", "", "import c.D;\n", "<<<<<<< HEAD\n", ">>>>>>> feature/x\n")
}

func update(t *testing.T, m OrderPickerModel, msg tea.Msg) (OrderPickerModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	picker, ok := next.(OrderPickerModel)
	if !ok {
		t.Fatalf("expected OrderPickerModel, got %T", next)
	}
	return picker, cmd
}

func TestNewOrderPickerModel(t *testing.T) {
	m := NewOrderPickerModel(testConflict())

	if len(m.orders) != 4 {
		t.Errorf("expected 4 orders, got %d", len(m.orders))
	}
	if m.cursor != 0 {
		t.Errorf("expected cursor to be 0, got %d", m.cursor)
	}
	if m.Init() != nil {
		t.Error("expected Init to return nil")
	}
}

func TestOrderPickerModel_Navigation(t *testing.T) {
	m := NewOrderPickerModel(testConflict())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != 0 {
		t.Errorf("expected cursor to stay at 0, got %d", m.cursor)
	}

	for range 10 {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	if m.cursor != len(m.orders)-1 {
		t.Errorf("expected cursor at the last order, got %d", m.cursor)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	if m.cursor != len(m.orders)-2 {
		t.Errorf("expected k to move up, got %d", m.cursor)
	}
}

func TestOrderPickerModel_Select(t *testing.T) {
	m := NewOrderPickerModel(testConflict())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if cmd == nil {
		t.Error("expected a quit command")
	}
	result := m.Result()
	if result.Action != OrderPickerActionSelect {
		t.Errorf("expected select action, got %d", result.Action)
	}
	if result.Order != solver.OrderLocalFirst {
		t.Errorf("expected %s, got %s", solver.OrderLocalFirst, result.Order)
	}
	if m.View() != "" {
		t.Error("expected empty view after quitting")
	}
}

func TestOrderPickerModel_Skip(t *testing.T) {
	for _, msg := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'s'}},
		{Type: tea.KeyEsc},
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyCtrlC},
	} {
		t.Run(msg.String(), func(t *testing.T) {
			m, cmd := update(t, NewOrderPickerModel(testConflict()), msg)

			if cmd == nil {
				t.Error("expected a quit command")
			}
			if m.Result().Action != OrderPickerActionNone || m.Result().Order != solver.OrderNone {
				t.Errorf("expected the conflict to be skipped, got %+v", m.Result())
			}
		})
	}
}

func TestOrderPickerModel_View(t *testing.T) {
	m := NewOrderPickerModel(testConflict())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	view := m.View()

	for _, want := range []string{
		"Both sides added lines",
		"Local (HEAD)",
		"Remote (feature/x)",
		"import a.B;",
		"import c.D;",
		"> Remote first",
		"Local only",
		"? help",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	if !strings.Contains(m.View(), "Leave this conflict unresolved") {
		t.Error("expected full help after ?")
	}
}

func TestOrderPickerModel_ViewTruncatesLongSides(t *testing.T) {
	var local strings.Builder
	for range maxPreviewLines + 3 {
		local.WriteString("import x.Y;\n")
	}
	c := conflict.New(local.String(), "", "import c.D;\n", "<<<<<<< HEAD\n", ">>>>>>> b\n")

	view := NewOrderPickerModel(c).View()

	if !strings.Contains(view, "(3 more lines)") {
		t.Error("expected the local side to be truncated")
	}
}

func TestMarkerLabel(t *testing.T) {
	tests := map[string]string{
		"<<<<<<< HEAD\n":         "HEAD",
		">>>>>>> feature/x\n":    "feature/x",
		">>>>>>> 1a2b3c (msg)\n": "1a2b3c (msg)",
		"<<<<<<<\n":              "",
	}
	for marker, want := range tests {
		if got := markerLabel(marker); got != want {
			t.Errorf("markerLabel(%q) = %q, expected %q", marker, got, want)
		}
	}
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"truncated text", 8, "trunc..."},
		{"abc", 2, "ab"},
		{"héllo wörld", 6, "hél..."},
		{"any", 0, ""},
	}
	for _, tt := range tests {
		if got := truncateText(tt.text, tt.width); got != tt.want {
			t.Errorf("truncateText(%q, %d) = %q, expected %q", tt.text, tt.width, got, tt.want)
		}
	}
}
