package repl

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the REPL keybindings.
type KeyMap struct {
	Complete key.Binding
	Submit   key.Binding
	Clear    key.Binding
	Prev     key.Binding
	Next     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the standard REPL keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Ctrl+Space arrives as ctrl+@ on most terminals.
		Complete: key.NewBinding(
			key.WithKeys("tab", "ctrl+@", "ctrl+ "),
			key.WithHelp("tab", "complete"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear"),
		),
		Prev: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑", "previous"),
		),
		Next: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓", "next"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+d", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown on the status line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Complete, k.Submit, k.Clear, k.Quit}
}
