package postgres

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sadopc/sqlhint/internal/adapter"
	"github.com/sadopc/sqlhint/internal/schema"
)

func init() {
	adapter.Register(&postgresAdapter{})
}

// postgresAdapter implements adapter.Adapter for PostgreSQL.
type postgresAdapter struct{}

func (a *postgresAdapter) Name() string     { return "postgres" }
func (a *postgresAdapter) DefaultPort() int { return 5432 }
func (a *postgresAdapter) Dialect() string  { return "postgresql" }

func (a *postgresAdapter) Connect(ctx context.Context, dsn string) (adapter.Introspector, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	return &pgConn{
		pool:   pool,
		dbName: extractDBName(dsn),
	}, nil
}

// extractDBName parses the database name from the DSN.
func extractDBName(dsn string) string {
	if dsn == "" {
		return ""
	}
	// Try URL format first (postgres://... or postgresql://...)
	u, err := url.Parse(dsn)
	if err == nil && u.Scheme != "" {
		return strings.TrimPrefix(u.Path, "/")
	}
	// Fallback: keyword=value format (e.g. "host=localhost dbname=myapp")
	for _, part := range strings.Fields(dsn) {
		if strings.HasPrefix(part, "dbname=") {
			return strings.TrimPrefix(part, "dbname=")
		}
	}
	return ""
}

// pgConn implements adapter.Introspector for PostgreSQL.
type pgConn struct {
	pool   *pgxpool.Pool
	dbName string
}

func (c *pgConn) DatabaseName() string { return c.dbName }
func (c *pgConn) AdapterName() string  { return "postgres" }

func (c *pgConn) Close() error {
	c.pool.Close()
	return nil
}

// ---------------------------------------------------------------------------
// Introspection
// ---------------------------------------------------------------------------

func (c *pgConn) Databases(ctx context.Context) ([]schema.Database, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT datname FROM pg_database
		 WHERE datistemplate = false
		 ORDER BY datname`)
	if err != nil {
		return nil, fmt.Errorf("databases: %w", err)
	}
	dbNames, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("databases scan: %w", err)
	}

	// PostgreSQL only allows querying information_schema for the current
	// database, so only that one is loaded.
	current := c.dbName
	if current == "" {
		if err := c.pool.QueryRow(ctx, `SELECT current_database()`).Scan(&current); err != nil {
			return nil, fmt.Errorf("current database: %w", err)
		}
	}

	dbs := make([]schema.Database, 0, len(dbNames))
	for _, name := range dbNames {
		db := schema.Database{Name: name}
		if name == current {
			schemas, err := c.loadSchemas(ctx)
			if err != nil {
				return nil, err
			}
			db.Schemas = schemas
		}
		dbs = append(dbs, db)
	}
	return dbs, nil
}

// loadSchemas reads the user-visible tables and views of the connected
// database, grouped by schema, then their columns.
func (c *pgConn) loadSchemas(ctx context.Context) ([]schema.Schema, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT table_schema, table_name, table_type
		 FROM information_schema.tables
		 WHERE table_catalog = current_database()
		   AND table_schema NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
		 ORDER BY table_schema, table_name`)
	if err != nil {
		return nil, fmt.Errorf("tables: %w", err)
	}
	defer rows.Close()

	var schemas []schema.Schema
	for rows.Next() {
		var schemaName, name, kind string
		if err := rows.Scan(&schemaName, &name, &kind); err != nil {
			return nil, fmt.Errorf("tables scan: %w", err)
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

	if err := adapter.LoadColumns(ctx, schemas, c.columns); err != nil {
		return nil, err
	}
	return schemas, nil
}

func (c *pgConn) columns(ctx context.Context, schemaName, table string) ([]schema.Column, error) {
	pkSet, err := c.primaryKeyColumns(ctx, schemaName, table)
	if err != nil {
		return nil, err
	}

	rows, err := c.pool.Query(ctx,
		`SELECT column_name,
		        data_type,
		        is_nullable,
		        COALESCE(column_default, '')
		 FROM information_schema.columns
		 WHERE table_catalog = current_database()
		   AND table_schema  = $1
		   AND table_name    = $2
		 ORDER BY ordinal_position`, schemaName, table)
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	defer rows.Close()

	var cols []schema.Column
	for rows.Next() {
		var name, dtype, nullable, dflt string
		if err := rows.Scan(&name, &dtype, &nullable, &dflt); err != nil {
			return nil, fmt.Errorf("columns scan: %w", err)
		}
		cols = append(cols, schema.Column{
			Name:     name,
			Type:     dtype,
			Nullable: nullable == "YES",
			Default:  dflt,
			IsPK:     pkSet[name],
		})
	}
	return cols, rows.Err()
}

// primaryKeyColumns returns a set of column names that belong to the primary key.
func (c *pgConn) primaryKeyColumns(ctx context.Context, schemaName, table string) (map[string]bool, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT kcu.column_name
		 FROM information_schema.table_constraints tc
		 JOIN information_schema.key_column_usage kcu
		      ON kcu.constraint_name = tc.constraint_name
		     AND kcu.table_schema    = tc.table_schema
		 WHERE tc.constraint_type = 'PRIMARY KEY'
		   AND tc.table_schema    = $1
		   AND tc.table_name      = $2`, schemaName, table)
	if err != nil {
		return nil, fmt.Errorf("primary keys: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("primary keys scan: %w", err)
	}

	pk := make(map[string]bool, len(names))
	for _, name := range names {
		pk[name] = true
	}
	return pk, nil
}
