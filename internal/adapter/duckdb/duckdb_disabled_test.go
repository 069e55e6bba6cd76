//go:build !duckdb

package duckdb

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sadopc/sqlhint/internal/adapter"
)

func TestDuckDBDisabled_Name(t *testing.T) {
	a := &disabledAdapter{}
	if got := a.Name(); got != "duckdb" {
		t.Errorf("Name() = %q, want %q", got, "duckdb")
	}
}

func TestDuckDBDisabled_Connect(t *testing.T) {
	a := &disabledAdapter{}
	conn, err := a.Connect(context.Background(), "test.db")

	if conn != nil {
		t.Error("Connect() should return nil connection when disabled")
	}
	if err == nil {
		t.Fatal("Connect() should return an error when disabled")
	}
	if !errors.Is(err, adapter.ErrDisabled) {
		t.Errorf("Connect() error should wrap adapter.ErrDisabled, got %v", err)
	}
}

func TestDuckDBDisabled_Registration(t *testing.T) {
	a, err := adapter.Get("duckdb")
	if err != nil {
		t.Fatalf("duckdb adapter not found in registry: %v", err)
	}
	if a.Name() != "duckdb" {
		t.Errorf("registered adapter Name() = %q, want %q", a.Name(), "duckdb")
	}
}

func TestDuckDBDisabled_ErrorMessage(t *testing.T) {
	// Verify the error message is descriptive and mentions the build tag.
	msg := errDisabled.Error()
	if !strings.Contains(msg, "DuckDB") {
		t.Errorf("errDisabled message = %q, expected to contain 'DuckDB'", msg)
	}
	if !strings.Contains(msg, "-tags duckdb") {
		t.Errorf("errDisabled message = %q, expected to mention the build tag", msg)
	}
}
