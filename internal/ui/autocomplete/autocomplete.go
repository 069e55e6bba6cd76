// Package autocomplete is the completion popup of the REPL.
package autocomplete

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/sqlhint/internal/completion"
	"github.com/sadopc/sqlhint/internal/namespace"
	"github.com/sadopc/sqlhint/internal/theme"
)

const maxVisible = 5

// SelectedMsg is sent when an item is accepted. Text replaces the input
// between the byte offsets From and To.
type SelectedMsg struct {
	From int
	To   int
	Text string
}

// DismissMsg is sent when autocomplete is dismissed.
type DismissMsg struct{}

// Model is the autocomplete dropdown overlay.
type Model struct {
	items    []namespace.Candidate
	selected int
	visible  bool
	from     int // start of the replaced range
	to       int // end of the replaced range
	engine   *completion.Engine
	width    int
}

// New creates a new autocomplete model.
func New(engine *completion.Engine) Model {
	return Model{
		engine: engine,
		width:  40,
	}
}

// Init returns no initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles autocomplete interactions.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "ctrl+p":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "down", "ctrl+n":
			if m.selected < len(m.items)-1 {
				m.selected++
			}
			return m, nil

		case "enter", "tab":
			if m.selected < len(m.items) {
				sel := SelectedMsg{From: m.from, To: m.to, Text: m.items[m.selected].Text()}
				m.visible = false
				return m, func() tea.Msg { return sel }
			}

		case "esc", "ctrl+c":
			m.visible = false
			return m, func() tea.Msg { return DismissMsg{} }
		}
	}

	return m, nil
}

// View renders the autocomplete dropdown.
func (m Model) View() string {
	if !m.visible || len(m.items) == 0 {
		return ""
	}

	th := theme.Current

	visible := m.items
	offset := 0
	if len(visible) > maxVisible {
		if m.selected >= maxVisible {
			offset = m.selected - maxVisible + 1
		}
		end := offset + maxVisible
		if end > len(visible) {
			end = len(visible)
		}
		visible = visible[offset:end]
	}

	inner := m.width - 2
	var lines []string
	for i, item := range visible {
		icon := kindIcon(item.Type, th)
		label := icon + " " + item.Label
		if item.Detail != "" {
			label += "  " + th.AutocompleteDetail.Render(item.Detail)
		}
		// Truncate to width, dropping the detail first
		if lipgloss.Width(label) > inner {
			label = icon + " " + truncate(item.Label, inner-2)
		}
		// Pad to width
		if pad := inner - lipgloss.Width(label); pad > 0 {
			label += strings.Repeat(" ", pad)
		}

		if offset+i == m.selected {
			lines = append(lines, th.AutocompleteSelected.Render(label))
		} else {
			lines = append(lines, th.AutocompleteItem.Render(label))
		}
	}

	return th.AutocompleteBorder.Render(strings.Join(lines, "\n"))
}

// Trigger computes completions for text with the cursor at byte offset
// cursorPos. explicit is set for Ctrl+Space.
func (m *Model) Trigger(text string, cursorPos int, explicit bool) {
	if m.engine == nil {
		return
	}

	res := m.engine.CompleteText(text, cursorPos, explicit)
	if res == nil || len(res.Options) == 0 {
		m.visible = false
		return
	}

	m.items = res.Options
	m.from = res.From
	m.to = res.End(cursorPos)
	m.selected = 0
	m.visible = true
}

// Dismiss hides the autocomplete.
func (m *Model) Dismiss() {
	m.visible = false
}

// Visible returns whether autocomplete is shown.
func (m Model) Visible() bool {
	return m.visible
}

// From returns the byte offset where the replaced range starts.
func (m Model) From() int {
	return m.from
}

// Items returns the candidates on display.
func (m Model) Items() []namespace.Candidate {
	return m.items
}

// SetWidth sets the popup width including its border.
func (m *Model) SetWidth(w int) {
	if w > 10 {
		m.width = w
	}
}

// SetEngine sets the completion engine.
func (m *Model) SetEngine(engine *completion.Engine) {
	m.engine = engine
}

func truncate(s string, n int) string {
	if n <= 3 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func kindIcon(typ string, th *theme.Theme) string {
	switch typ {
	case namespace.TypeTable:
		return th.KindTable.Render("T")
	case namespace.TypeColumn:
		return th.KindColumn.Render("C")
	case namespace.TypeKeyword:
		return th.KindKeyword.Render("K")
	case namespace.TypeSchema:
		return th.KindSchema.Render("S")
	case namespace.TypeType:
		return th.KindOther.Render("t")
	case namespace.TypeConstant, namespace.TypeVariable:
		return th.KindOther.Render("v")
	default:
		return " "
	}
}
