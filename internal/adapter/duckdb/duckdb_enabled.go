//go:build duckdb

package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/sadopc/sqlhint/internal/adapter"
	"github.com/sadopc/sqlhint/internal/schema"
)

func init() {
	adapter.Register(&duckdbAdapter{})
}

// ---------------------------------------------------------------------------
// Adapter
// ---------------------------------------------------------------------------

type duckdbAdapter struct{}

func (a *duckdbAdapter) Name() string     { return "duckdb" }
func (a *duckdbAdapter) DefaultPort() int { return 0 }
func (a *duckdbAdapter) Dialect() string  { return "postgresql" }

func (a *duckdbAdapter) Connect(ctx context.Context, dsn string) (adapter.Introspector, error) {
	// Strip the "duckdb://" prefix if present.
	dsn = strings.TrimPrefix(dsn, "duckdb://")
	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("duckdb: open: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("duckdb: ping: %w", err)
	}

	return &duckdbConn{db: db, dsn: dsn}, nil
}

// ---------------------------------------------------------------------------
// Connection
// ---------------------------------------------------------------------------

type duckdbConn struct {
	db  *sql.DB
	dsn string
}

func (c *duckdbConn) DatabaseName() string { return c.dsn }
func (c *duckdbConn) AdapterName() string  { return "duckdb" }

func (c *duckdbConn) Close() error {
	return c.db.Close()
}

// ---------------------------------------------------------------------------
// Introspection
// ---------------------------------------------------------------------------

// Databases lists the attached databases. DuckDB can query every attached
// catalog, so all of them are loaded.
func (c *duckdbConn) Databases(ctx context.Context) ([]schema.Database, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT database_name FROM duckdb_databases()
		 WHERE NOT internal
		 ORDER BY database_name`)
	if err != nil {
		return nil, fmt.Errorf("duckdb: databases: %w", err)
	}
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("duckdb: databases scan: %w", err)
		}
		names = append(names, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dbs := make([]schema.Database, 0, len(names))
	for _, name := range names {
		schemas, err := c.loadSchemas(ctx, name)
		if err != nil {
			return nil, err
		}
		dbs = append(dbs, schema.Database{Name: name, Schemas: schemas})
	}
	return dbs, nil
}

func (c *duckdbConn) loadSchemas(ctx context.Context, db string) ([]schema.Schema, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT table_schema, table_name, table_type
		 FROM information_schema.tables
		 WHERE table_catalog = ?
		 ORDER BY table_schema, table_name`, db)
	if err != nil {
		return nil, fmt.Errorf("duckdb: tables: %w", err)
	}
	defer rows.Close()

	var schemas []schema.Schema
	for rows.Next() {
		var schemaName, name, kind string
		if err := rows.Scan(&schemaName, &name, &kind); err != nil {
			return nil, fmt.Errorf("duckdb: tables scan: %w", err)
		}
		if len(schemas) == 0 || schemas[len(schemas)-1].Name != schemaName {
			schemas = append(schemas, schema.Schema{Name: schemaName})
		}
		s := &schemas[len(schemas)-1]
		if kind == "VIEW" {
			s.Views = append(s.Views, schema.View{Name: name})
		} else {
			s.Tables = append(s.Tables, schema.Table{Name: name})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = adapter.LoadColumns(ctx, schemas, func(ctx context.Context, schemaName, table string) ([]schema.Column, error) {
		return c.columns(ctx, db, schemaName, table)
	})
	if err != nil {
		return nil, err
	}
	return schemas, nil
}

func (c *duckdbConn) columns(ctx context.Context, db, schemaName, table string) ([]schema.Column, error) {
	query := `SELECT column_name,
			data_type,
			CASE WHEN is_nullable = 'YES' THEN true ELSE false END,
			COALESCE(column_default, ''),
			CASE WHEN column_name IN (
				SELECT kcu.column_name
				FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage kcu
				  ON tc.constraint_name = kcu.constraint_name
				  AND tc.table_catalog = kcu.table_catalog
				  AND tc.table_schema = kcu.table_schema
				WHERE tc.constraint_type = 'PRIMARY KEY'
				  AND tc.table_catalog = ?
				  AND tc.table_schema = ?
				  AND tc.table_name = ?
			) THEN true ELSE false END
		FROM information_schema.columns
		WHERE table_catalog = ? AND table_schema = ? AND table_name = ?
		ORDER BY ordinal_position`
	rows, err := c.db.QueryContext(ctx, query, db, schemaName, table, db, schemaName, table)
	if err != nil {
		return nil, fmt.Errorf("duckdb: columns: %w", err)
	}
	defer rows.Close()

	var cols []schema.Column
	for rows.Next() {
		var col schema.Column
		if err := rows.Scan(&col.Name, &col.Type, &col.Nullable, &col.Default, &col.IsPK); err != nil {
			return nil, fmt.Errorf("duckdb: columns scan: %w", err)
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}
