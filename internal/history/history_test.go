package history

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestHistory(t *testing.T) *History {
	t.Helper()
	h, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func texts(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Text
	}
	return out
}

func TestOpenDefault(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpHome, ".config"))

	h, err := OpenDefault()
	if err != nil {
		t.Fatalf("OpenDefault() error = %v", err)
	}
	defer h.Close()

	entries, err := h.Recent(10)
	if err != nil {
		t.Fatalf("Recent() on new DB error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Recent() on new DB = %d entries, want 0", len(entries))
	}
}

func TestOpen_PersistsAcrossSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	h, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := h.Add(Entry{Text: "select 1", Dialect: "sqlite", Source: "app.db"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	h.Close()

	h, err = Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer h.Close()

	entries, err := h.Recent(10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Recent() = %v, want one entry", texts(entries))
	}
	e := entries[0]
	if e.Text != "select 1" || e.Dialect != "sqlite" || e.Source != "app.db" {
		t.Errorf("entry = %+v", e)
	}
	if e.EnteredAt.IsZero() {
		t.Error("EnteredAt not set")
	}
}

func TestAddAndRecent(t *testing.T) {
	h := newTestHistory(t)

	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	for i := range 5 {
		err := h.Add(Entry{
			Text:      "SELECT " + string(rune('A'+i)),
			Dialect:   "postgresql",
			EnteredAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Add() entry %d error = %v", i, err)
		}
	}

	entries, err := h.Recent(3)
	if err != nil {
		t.Fatalf("Recent(3) error = %v", err)
	}
	got := texts(entries)
	want := []string{"SELECT E", "SELECT D", "SELECT C"}
	if len(got) != len(want) {
		t.Fatalf("Recent(3) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Recent(3)[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if !entries[0].EnteredAt.Equal(base.Add(4 * time.Minute)) {
		t.Errorf("EnteredAt = %v, want %v", entries[0].EnteredAt, base.Add(4*time.Minute))
	}
}

func TestAdd_SkipsBlankAndRepeats(t *testing.T) {
	h := newTestHistory(t)

	for _, text := range []string{"select 1", "  select 1  ", "", "   ", "select 2", "select 1"} {
		if err := h.Add(Entry{Text: text}); err != nil {
			t.Fatalf("Add(%q) error = %v", text, err)
		}
	}

	got := texts(mustRecent(t, h, 10))
	want := []string{"select 1", "select 2", "select 1"}
	if len(got) != len(want) {
		t.Fatalf("Recent() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Recent()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSearch(t *testing.T) {
	h := newTestHistory(t)

	for _, text := range []string{
		"SELECT * FROM users",
		"select name from users_archive",
		"SELECT 100%",
		"insert into orders values (1)",
	} {
		if err := h.Add(Entry{Text: text}); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	tests := []struct {
		substr string
		want   int
	}{
		{"users", 2},
		{"USERS", 2},
		{"users_", 1},
		{"%", 1},
		{"orders", 1},
		{"nothing", 0},
		{"", 4},
	}
	for _, tt := range tests {
		entries, err := h.Search(tt.substr, 10)
		if err != nil {
			t.Fatalf("Search(%q) error = %v", tt.substr, err)
		}
		if len(entries) != tt.want {
			t.Errorf("Search(%q) = %v, want %d entries", tt.substr, texts(entries), tt.want)
		}
	}
}

func TestClear(t *testing.T) {
	h := newTestHistory(t)

	if err := h.Add(Entry{Text: "select 1"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := h.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if entries := mustRecent(t, h, 10); len(entries) != 0 {
		t.Errorf("Recent() after Clear = %v", texts(entries))
	}
}

func TestClosed(t *testing.T) {
	h, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	h.Close()

	if err := h.Add(Entry{Text: "select 1"}); err == nil {
		t.Error("Add() on closed history returned nil")
	}
	if _, err := h.Recent(1); err == nil {
		t.Error("Recent() on closed history returned nil")
	}
}

func mustRecent(t *testing.T, h *History, limit int) []Entry {
	t.Helper()
	entries, err := h.Recent(limit)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	return entries
}
