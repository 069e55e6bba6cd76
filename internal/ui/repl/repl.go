// Package repl is an interactive single-line SQL prompt that shows
// completions from a completion.Engine while typing.
package repl

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/sqlhint/internal/completion"
	"github.com/sadopc/sqlhint/internal/history"
	"github.com/sadopc/sqlhint/internal/namespace"
	"github.com/sadopc/sqlhint/internal/theme"
	"github.com/sadopc/sqlhint/internal/ui/autocomplete"
)

const (
	prompt       = "sql> "
	popupWidth   = 48
	historyLimit = 100
)

// SchemaMsg delivers a reloaded schema description. A non-nil Err keeps
// the current schema.
type SchemaMsg struct {
	Desc namespace.Description
	Err  error
}

// Store persists submitted statements. *history.History implements it.
type Store interface {
	Add(entry history.Entry) error
	Recent(limit int) ([]history.Entry, error)
}

// Options configure a Model.
type Options struct {
	Engine *completion.Engine
	// Source describes where the schema came from, for the status line.
	Source string
	// Store, when set, preloads the recall list and records submissions.
	Store  Store
	Keys   *KeyMap
}

// Model is the REPL Bubble Tea model.
type Model struct {
	input       textinput.Model
	popup       autocomplete.Model
	engine      *completion.Engine
	highlighter *Highlighter
	keys        KeyMap
	history     []string
	store       Store
	recall      []string // oldest first
	recallAt    int      // len(recall) while editing a new line
	draft       string
	source      string
	message     string
	isError     bool
	width       int
}

// New creates a REPL model. The input is focused.
func New(opts Options) Model {
	th := theme.Current
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Placeholder = "type SQL, tab to complete"
	ti.PromptStyle = th.Prompt
	ti.PlaceholderStyle = th.Placeholder
	ti.Cursor.Style = th.Cursor
	ti.Focus()

	keys := DefaultKeyMap()
	if opts.Keys != nil {
		keys = *opts.Keys
	}

	name := "standard"
	if opts.Engine != nil {
		name = opts.Engine.Dialect().Name()
	}

	popup := autocomplete.New(opts.Engine)
	popup.SetWidth(popupWidth)

	m := Model{
		input:       ti,
		popup:       popup,
		engine:      opts.Engine,
		highlighter: NewHighlighter(name),
		keys:        keys,
		store:       opts.Store,
		source:      opts.Source,
	}
	if m.store != nil {
		entries, err := m.store.Recent(historyLimit)
		if err != nil {
			m.message = fmt.Sprintf("history: %v", err)
			m.isError = true
		}
		for i := len(entries) - 1; i >= 0; i-- {
			m.recall = append(m.recall, entries[i].Text)
		}
	}
	m.recallAt = len(m.recall)
	return m
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input, completion and schema messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - lipgloss.Width(prompt) - 1
		return m, nil

	case autocomplete.SelectedMsg:
		m.apply(msg)
		return m, nil

	case autocomplete.DismissMsg:
		return m, nil

	case SchemaMsg:
		if msg.Err != nil {
			m.message = fmt.Sprintf("schema reload failed: %v", msg.Err)
			m.isError = true
			return m, nil
		}
		if m.engine != nil {
			m.engine.UpdateSchema(msg.Desc)
		}
		m.message = fmt.Sprintf("schema reloaded (%d entries)", len(msg.Desc))
		m.isError = false
		return m, nil

	case tea.KeyMsg:
		if m.popup.Visible() && popupKey(msg) {
			var cmd tea.Cmd
			m.popup, cmd = m.popup.Update(msg)
			return m, cmd
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Complete):
			m.trigger(true)
			return m, nil
		case key.Matches(msg, m.keys.Submit):
			m.submit()
			return m, nil
		case key.Matches(msg, m.keys.Clear):
			m.history = nil
			m.message = ""
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.recallStep(-1)
			return m, nil
		case key.Matches(msg, m.keys.Next):
			m.recallStep(1)
			return m, nil
		}
	}

	value, pos := m.input.Value(), m.input.Position()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != value || m.input.Position() != pos {
		m.trigger(false)
	}
	return m, cmd
}

// View renders the history, the prompt, the popup and the status line.
func (m Model) View() string {
	th := theme.Current
	var b strings.Builder

	for _, line := range m.history {
		b.WriteString(th.Prompt.Render(prompt))
		b.WriteString(m.highlighter.Highlight(line, th))
		b.WriteByte('\n')
	}

	b.WriteString(m.input.View())
	b.WriteByte('\n')

	if popup := m.popup.View(); popup != "" {
		b.WriteString(lipgloss.NewStyle().MarginLeft(m.popupColumn()).Render(popup))
		b.WriteByte('\n')
	}

	b.WriteString(m.statusLine(th))
	return b.String()
}

// Value returns the current input.
func (m Model) Value() string {
	return m.input.Value()
}

// History returns the submitted statements, oldest first.
func (m Model) History() []string {
	return m.history
}

// Popup returns the completion popup.
func (m Model) Popup() autocomplete.Model {
	return m.popup
}

func (m *Model) trigger(explicit bool) {
	value := m.input.Value()
	m.popup.Trigger(value, byteOffset(value, m.input.Position()), explicit)
}

func (m *Model) apply(sel autocomplete.SelectedMsg) {
	value := m.input.Value()
	from := clamp(sel.From, 0, len(value))
	to := clamp(sel.To, from, len(value))
	head := value[:from] + sel.Text
	m.input.SetValue(head + value[to:])
	m.input.SetCursor(utf8.RuneCountInString(head))
}

func (m *Model) submit() {
	value := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	m.popup.Dismiss()
	if value == "" {
		return
	}
	m.history = append(m.history, value)
	if len(m.history) > historyLimit {
		m.history = m.history[len(m.history)-historyLimit:]
	}
	if n := len(m.recall); n == 0 || m.recall[n-1] != value {
		m.recall = append(m.recall, value)
	}
	m.recallAt = len(m.recall)
	m.draft = ""

	if m.store != nil {
		entry := history.Entry{Text: value, Source: m.source}
		if m.engine != nil {
			entry.Dialect = m.engine.Dialect().Name()
		}
		if err := m.store.Add(entry); err != nil {
			m.message = fmt.Sprintf("history: %v", err)
			m.isError = true
		}
	}
}

// recallStep moves through earlier statements. Stepping past the newest one
// restores the line being edited.
func (m *Model) recallStep(delta int) {
	next := clamp(m.recallAt+delta, 0, len(m.recall))
	if next == m.recallAt {
		return
	}
	if m.recallAt == len(m.recall) {
		m.draft = m.input.Value()
	}
	m.recallAt = next
	if next == len(m.recall) {
		m.input.SetValue(m.draft)
	} else {
		m.input.SetValue(m.recall[next])
	}
	m.input.CursorEnd()
	m.popup.Dismiss()
}

// popupColumn places the popup under the start of the completed word.
func (m Model) popupColumn() int {
	value := m.input.Value()
	col := lipgloss.Width(prompt) + lipgloss.Width(value[:clamp(m.popup.From(), 0, len(value))])
	if m.width > 0 && col+popupWidth > m.width {
		col = m.width - popupWidth
	}
	if col < 0 {
		col = 0
	}
	return col
}

func (m Model) statusLine(th *theme.Theme) string {
	parts := []string{}
	if m.engine != nil {
		parts = append(parts, th.StatusKey.Render("dialect")+" "+th.StatusValue.Render(m.engine.Dialect().Name()))
	}
	if m.source != "" {
		parts = append(parts, th.StatusKey.Render("schema")+" "+th.StatusValue.Render(m.source))
	}
	if m.message != "" {
		if m.isError {
			parts = append(parts, th.ErrorText.Render(m.message))
		} else {
			parts = append(parts, th.SuccessText.Render(m.message))
		}
	}
	var help []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	parts = append(parts, th.MutedText.Render(strings.Join(help, " · ")))
	return th.StatusBar.Render(strings.Join(parts, "  "))
}

// popupKey reports whether msg is handled by a visible popup.
func popupKey(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "up", "down", "ctrl+p", "ctrl+n", "enter", "tab", "esc", "ctrl+c":
		return true
	}
	return false
}

// byteOffset converts a rune index into s to a byte offset.
func byteOffset(s string, runes int) int {
	n := 0
	for i := range s {
		if n == runes {
			return i
		}
		n++
	}
	return len(s)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
