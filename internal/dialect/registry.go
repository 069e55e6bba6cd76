package dialect

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Dialect registry
var (
	dialectsMu sync.RWMutex
	dialects   = make(map[string]*Dialect)
	canonical  = make(map[string]bool)
)

// ErrUnknownDialect is returned by Lookup for names that are not registered.
var ErrUnknownDialect = errors.New("unknown dialect")

func init() {
	Register(StandardSQL, "sql")
	Register(PostgreSQL, "postgres", "pg")
	Register(MySQL)
	Register(MariaSQL, "mariasql")
	Register(MSSQL, "sqlserver", "tsql")
	Register(SQLite, "sqlite3")
	Register(Cassandra, "cql")
	Register(PLSQL, "oracle")
}

// Register adds a dialect under its own name and any aliases. Registering a
// name twice replaces the earlier dialect.
func Register(d *Dialect, aliases ...string) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	name := strings.ToLower(d.Name())
	dialects[name] = d
	canonical[name] = true
	for _, a := range aliases {
		dialects[strings.ToLower(a)] = d
	}
}

// Get returns a dialect by name or alias, ignoring case.
func Get(name string) (*Dialect, bool) {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	d, ok := dialects[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}

// Lookup is Get with an error for unknown names. An empty name selects
// StandardSQL.
func Lookup(name string) (*Dialect, error) {
	if strings.TrimSpace(name) == "" {
		return StandardSQL, nil
	}
	d, ok := Get(name)
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownDialect, name, strings.Join(List(), ", "))
	}
	return d, nil
}

// List returns the registered dialect names, without aliases, sorted.
func List() []string {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	names := make([]string, 0, len(canonical))
	for name := range canonical {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
