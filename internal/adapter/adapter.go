// Package adapter loads schema information from live databases so that
// completion can offer real table and column names.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sadopc/sqlhint/internal/schema"
)

var (
	ErrUnknownAdapter = errors.New("unknown adapter")
	ErrDisabled       = errors.New("adapter not compiled in")
	ErrNotConnected   = errors.New("not connected to database")
)

// ColumnConcurrency bounds the number of column queries in flight while
// loading a schema.
const ColumnConcurrency = 4

// Adapter creates introspection connections.
type Adapter interface {
	Connect(ctx context.Context, dsn string) (Introspector, error)
	Name() string
	DefaultPort() int
	// Dialect names the SQL dialect used to complete against this
	// database, as understood by dialect.Lookup.
	Dialect() string
}

// Introspector reads the structure of a connected database.
type Introspector interface {
	// Databases lists the visible databases. Only the connected database
	// has its schemas, tables and columns loaded.
	Databases(ctx context.Context) ([]schema.Database, error)
	Close() error
	DatabaseName() string
	AdapterName() string
}

var (
	mu       sync.RWMutex
	registry = map[string]Adapter{}
)

// Register adds an adapter to the global registry, replacing one with the
// same name.
func Register(a Adapter) {
	mu.Lock()
	defer mu.Unlock()
	registry[a.Name()] = a
}

// Get returns the adapter registered under name.
func Get(name string) (Adapter, error) {
	mu.RLock()
	defer mu.RUnlock()
	a, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownAdapter, name)
	}
	return a, nil
}

// Names returns the registered adapter names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ColumnFunc loads the columns of one table.
type ColumnFunc func(ctx context.Context, schemaName, table string) ([]schema.Column, error)

// LoadColumns fills in the columns of every table and view in schemas,
// running at most ColumnConcurrency queries at once. The first error
// cancels the remaining queries.
func LoadColumns(ctx context.Context, schemas []schema.Schema, fetch ColumnFunc) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ColumnConcurrency)
	for si := range schemas {
		s := &schemas[si]
		for ti := range s.Tables {
			t := &s.Tables[ti]
			g.Go(func() error {
				cols, err := fetch(ctx, s.Name, t.Name)
				if err != nil {
					return fmt.Errorf("columns of %s.%s: %w", s.Name, t.Name, err)
				}
				t.Columns = cols
				return nil
			})
		}
		for vi := range s.Views {
			v := &s.Views[vi]
			g.Go(func() error {
				cols, err := fetch(ctx, s.Name, v.Name)
				if err != nil {
					return fmt.Errorf("columns of %s.%s: %w", s.Name, v.Name, err)
				}
				v.Columns = cols
				return nil
			})
		}
	}
	return g.Wait()
}
