package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sadopc/sqlhint/internal/adapter"
	"github.com/sadopc/sqlhint/internal/schema"

	_ "modernc.org/sqlite"
)

func init() {
	adapter.Register(&sqliteAdapter{})
}

// sqliteAdapter implements adapter.Adapter for SQLite databases.
type sqliteAdapter struct{}

func (a *sqliteAdapter) Name() string     { return "sqlite" }
func (a *sqliteAdapter) DefaultPort() int { return 0 }
func (a *sqliteAdapter) Dialect() string  { return "sqlite" }

func (a *sqliteAdapter) Connect(ctx context.Context, dsn string) (adapter.Introspector, error) {
	dsn = normalizeDSN(dsn)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// Every connection to :memory: opens a fresh database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}

	dbName := dsn
	if dsn != ":memory:" {
		dbName = filepath.Base(dsn)
	}

	return &sqliteConn{db: db, dbName: dbName}, nil
}

// normalizeDSN strips common SQLite URI prefixes.
func normalizeDSN(dsn string) string {
	if strings.HasPrefix(dsn, "sqlite://") {
		return strings.TrimPrefix(dsn, "sqlite://")
	}
	if strings.HasPrefix(dsn, "file:") {
		return strings.TrimPrefix(dsn, "file:")
	}
	return dsn
}

// sqliteConn implements adapter.Introspector.
type sqliteConn struct {
	db     *sql.DB
	dbName string
}

func (c *sqliteConn) AdapterName() string  { return "sqlite" }
func (c *sqliteConn) DatabaseName() string { return c.dbName }

func (c *sqliteConn) Close() error {
	return c.db.Close()
}

// Databases returns a single database entry for the opened SQLite file,
// holding the main schema.
func (c *sqliteConn) Databases(ctx context.Context) ([]schema.Database, error) {
	main, err := c.mainSchema(ctx)
	if err != nil {
		return nil, err
	}
	schemas := []schema.Schema{main}
	if err := adapter.LoadColumns(ctx, schemas, c.columns); err != nil {
		return nil, err
	}
	return []schema.Database{{Name: c.dbName, Schemas: schemas}}, nil
}

// mainSchema lists the user tables and views.
func (c *sqliteConn) mainSchema(ctx context.Context) (schema.Schema, error) {
	s := schema.Schema{Name: "main"}
	rows, err := c.db.QueryContext(ctx,
		"SELECT name, type FROM sqlite_master WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return s, fmt.Errorf("sqlite tables: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, kind string
		if err := rows.Scan(&name, &kind); err != nil {
			return s, fmt.Errorf("sqlite tables scan: %w", err)
		}
		if kind == "view" {
			s.Views = append(s.Views, schema.View{Name: name})
		} else {
			s.Tables = append(s.Tables, schema.Table{Name: name})
		}
	}
	return s, rows.Err()
}

// columns returns column metadata for the given table using PRAGMA table_info.
func (c *sqliteConn) columns(ctx context.Context, _, table string) ([]schema.Column, error) {
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, fmt.Errorf("sqlite columns: %w", err)
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("sqlite columns scan: %w", err)
		}
		col := schema.Column{
			Name:     name,
			Type:     colType,
			Nullable: notNull == 0,
			IsPK:     pk > 0,
		}
		if dfltValue.Valid {
			col.Default = dfltValue.String
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}
