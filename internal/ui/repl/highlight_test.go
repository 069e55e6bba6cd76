package repl

import (
	"strings"
	"testing"

	"github.com/alecthomas/chroma/v2"

	"github.com/sadopc/sqlhint/internal/theme"
)

// lipgloss renders no escape codes without a TTY, so these tests check that
// content and line structure survive highlighting.

func TestNewHighlighter(t *testing.T) {
	for _, name := range []string{"postgresql", "mysql", "sqlite", "unknown", ""} {
		h := NewHighlighter(name)
		if h == nil || h.lexer == nil {
			t.Fatalf("NewHighlighter(%q) has no lexer", name)
		}
	}
}

func TestHighlight_NilTheme(t *testing.T) {
	h := NewHighlighter("standard")

	sql := "SELECT 1"
	if got := h.Highlight(sql, nil); got != sql {
		t.Errorf("Highlight(sql, nil) = %q, want %q", got, sql)
	}
}

func TestHighlight_EmptyString(t *testing.T) {
	h := NewHighlighter("standard")

	if got := h.Highlight("", theme.Default()); strings.TrimSpace(got) != "" {
		t.Errorf("Highlight(\"\") = %q, want empty", got)
	}
}

func TestHighlight_ContentPreservation(t *testing.T) {
	th := theme.Default()

	tests := []struct {
		name     string
		dialect  string
		sql      string
		contains []string
	}{
		{
			name:     "keywords",
			dialect:  "postgresql",
			sql:      "SELECT FROM WHERE INSERT UPDATE DELETE",
			contains: []string{"SELECT", "FROM", "WHERE", "INSERT", "UPDATE", "DELETE"},
		},
		{
			name:     "string literal",
			dialect:  "mysql",
			sql:      "SELECT * FROM users WHERE name = 'Alice'",
			contains: []string{"Alice", "users", "name"},
		},
		{
			name:     "number literal",
			dialect:  "sqlite",
			sql:      "SELECT * FROM users WHERE id = 42",
			contains: []string{"42", "users", "id"},
		},
		{
			name:     "operators",
			dialect:  "standard",
			sql:      "SELECT a + b, c - d FROM t WHERE x > 0 AND y < 10",
			contains: []string{"a", "b", "c", "d", "t", "x", "y", "0", "10"},
		},
		{
			name:     "comments",
			dialect:  "postgresql",
			sql:      "-- note\nSELECT /* inline */ 1",
			contains: []string{"note", "inline", "SELECT"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewHighlighter(tt.dialect).Highlight(tt.sql, th)
			for _, expected := range tt.contains {
				if !strings.Contains(result, expected) {
					t.Errorf("output missing %q", expected)
				}
			}
		})
	}
}

func TestHighlight_MultiLine(t *testing.T) {
	h := NewHighlighter("postgresql")

	sql := "/* multi\n   line */\nSELECT id,\n       name\nFROM users"
	result := h.Highlight(sql, theme.Default())

	if got, want := strings.Count(result, "\n"), strings.Count(sql, "\n"); got != want {
		t.Errorf("output has %d newlines, want %d", got, want)
	}
	if !strings.Contains(result, "multi") || !strings.Contains(result, "FROM") {
		t.Errorf("multi-line output lost content: %q", result)
	}
}

func TestStyleFor(t *testing.T) {
	th := theme.Default()

	tests := []struct {
		tt     chroma.TokenType
		styled bool
	}{
		{chroma.Keyword, true},
		{chroma.KeywordType, true},
		{chroma.LiteralStringSingle, true},
		{chroma.LiteralNumberInteger, true},
		{chroma.CommentSingle, true},
		{chroma.Operator, true},
		{chroma.Name, true},
		{chroma.Punctuation, false},
		{chroma.Text, false},
	}
	for _, tc := range tests {
		if _, ok := styleFor(tc.tt, th); ok != tc.styled {
			t.Errorf("styleFor(%v) styled = %v, want %v", tc.tt, ok, tc.styled)
		}
	}
}
