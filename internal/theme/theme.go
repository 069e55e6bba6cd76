// Package theme provides the styles of the sqlhint terminal REPL. Every
// visual element references a lipgloss.Style held in a Theme so that the
// look can be swapped at runtime.
package theme

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds lipgloss.Style values for every REPL element.
type Theme struct {
	Name string

	// Prompt line
	Prompt      lipgloss.Style
	Placeholder lipgloss.Style
	Cursor      lipgloss.Style

	// SQL Syntax highlighting
	SQLKeyword    lipgloss.Style
	SQLString     lipgloss.Style
	SQLNumber     lipgloss.Style
	SQLComment    lipgloss.Style
	SQLOperator   lipgloss.Style
	SQLFunction   lipgloss.Style
	SQLType       lipgloss.Style
	SQLIdentifier lipgloss.Style

	// Candidate kinds
	KindSchema  lipgloss.Style
	KindTable   lipgloss.Style
	KindColumn  lipgloss.Style
	KindKeyword lipgloss.Style
	KindOther   lipgloss.Style

	// Autocomplete
	AutocompleteItem     lipgloss.Style
	AutocompleteSelected lipgloss.Style
	AutocompleteDetail   lipgloss.Style
	AutocompleteBorder   lipgloss.Style

	// Status line
	StatusBar   lipgloss.Style
	StatusKey   lipgloss.Style
	StatusValue lipgloss.Style

	// General
	ErrorText   lipgloss.Style
	SuccessText lipgloss.Style
	MutedText   lipgloss.Style
}

// palette is the set of colours a theme is derived from.
type palette struct {
	text, muted, accent          string
	keyword, str, number         string
	comment, function, typ, name string
	popup, selected, selectedFg  string
	status, statusFg             string
	errorFg, successFg           string
}

func build(name string, p palette) *Theme {
	fg := func(c string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
	}
	return &Theme{
		Name: name,

		Prompt:      fg(p.accent).Bold(true),
		Placeholder: fg(p.muted).Italic(true),
		Cursor:      fg(p.text),

		SQLKeyword:    fg(p.keyword).Bold(true),
		SQLString:     fg(p.str),
		SQLNumber:     fg(p.number),
		SQLComment:    fg(p.comment).Italic(true),
		SQLOperator:   fg(p.text),
		SQLFunction:   fg(p.function),
		SQLType:       fg(p.typ),
		SQLIdentifier: fg(p.name),

		KindSchema:  fg(p.name).Bold(true),
		KindTable:   fg(p.typ).Bold(true),
		KindColumn:  fg(p.text),
		KindKeyword: fg(p.keyword),
		KindOther:   fg(p.muted),

		AutocompleteItem: fg(p.text).
			Background(lipgloss.Color(p.popup)).
			PaddingLeft(1).
			PaddingRight(1),
		AutocompleteSelected: fg(p.selectedFg).
			Background(lipgloss.Color(p.selected)).
			PaddingLeft(1).
			PaddingRight(1),
		AutocompleteDetail: fg(p.muted).Italic(true),
		AutocompleteBorder: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.accent)),

		StatusBar: fg(p.statusFg).
			Background(lipgloss.Color(p.status)),
		StatusKey: fg(p.statusFg).
			Bold(true).
			Background(lipgloss.Color(p.status)).
			PaddingLeft(1).
			PaddingRight(1),
		StatusValue: fg(p.text).
			PaddingLeft(1).
			PaddingRight(1),

		ErrorText:   fg(p.errorFg).Bold(true),
		SuccessText: fg(p.successFg),
		MutedText:   fg(p.muted),
	}
}

// ---------------------------------------------------------------------------
// Theme definitions
// ---------------------------------------------------------------------------

var darkPalette = palette{
	text: "#D4D4D4", muted: "#808080", accent: "#569CD6",
	keyword: "#569CD6", str: "#CE9178", number: "#B5CEA8",
	comment: "#6A9955", function: "#DCDCAA", typ: "#4EC9B0", name: "#9CDCFE",
	popup: "#252526", selected: "#264F78", selectedFg: "#FFFFFF",
	status: "#007ACC", statusFg: "#FFFFFF",
	errorFg: "#F44747", successFg: "#6A9955",
}

// lightPalette suits light terminal backgrounds.
var lightPalette = palette{
	text: "#1E1E1E", muted: "#A0A0A0", accent: "#0451A5",
	keyword: "#0000FF", str: "#A31515", number: "#098658",
	comment: "#008000", function: "#795E26", typ: "#267F99", name: "#001080",
	popup: "#F3F3F3", selected: "#0060C0", selectedFg: "#FFFFFF",
	status: "#0060C0", statusFg: "#FFFFFF",
	errorFg: "#E51400", successFg: "#16825D",
}

var monokaiPalette = palette{
	text: "#F8F8F2", muted: "#75715E", accent: "#F92672",
	keyword: "#F92672", str: "#E6DB74", number: "#AE81FF",
	comment: "#75715E", function: "#A6E22E", typ: "#66D9EF", name: "#F8F8F2",
	popup: "#3E3D32", selected: "#49483E", selectedFg: "#F8F8F2",
	status: "#A6E22E", statusFg: "#272822",
	errorFg: "#F92672", successFg: "#A6E22E",
}

// Themes maps theme names to their Theme definitions.
var Themes = map[string]*Theme{
	"default": build("default", darkPalette),
	"light":   build("light", lightPalette),
	"monokai": build("monokai", monokaiPalette),
}

// Current is the currently active theme. It is initialized to Default.
var Current = Themes["default"]

// Default returns the default dark theme.
func Default() *Theme {
	return Themes["default"]
}

// Get returns the theme identified by name. If no theme with that name exists
// it falls back to the default theme.
func Get(name string) *Theme {
	if t, ok := Themes[name]; ok {
		return t
	}
	return Default()
}

// Names returns the registered theme names, sorted.
func Names() []string {
	names := make([]string, 0, len(Themes))
	for name := range Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
