//go:build !duckdb

package duckdb

import (
	"context"
	"fmt"

	"github.com/sadopc/sqlhint/internal/adapter"
)

var errDisabled = fmt.Errorf("DuckDB support: %w. Rebuild with -tags duckdb", adapter.ErrDisabled)

func init() {
	adapter.Register(&disabledAdapter{})
}

type disabledAdapter struct{}

func (d *disabledAdapter) Name() string     { return "duckdb" }
func (d *disabledAdapter) DefaultPort() int { return 0 }
func (d *disabledAdapter) Dialect() string  { return "postgresql" }

func (d *disabledAdapter) Connect(_ context.Context, _ string) (adapter.Introspector, error) {
	return nil, errDisabled
}
