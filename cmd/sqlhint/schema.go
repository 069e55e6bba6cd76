package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/sqlhint/internal/adapter"
	"github.com/sadopc/sqlhint/internal/completion"
	"github.com/sadopc/sqlhint/internal/config"
	"github.com/sadopc/sqlhint/internal/dialect"
	"github.com/sadopc/sqlhint/internal/namespace"
	"github.com/sadopc/sqlhint/internal/schema"
)

const introspectTimeout = 30 * time.Second

// resolveSchema returns the description configured in cfg together with a
// short label of where it came from. A schema file wins over a connection.
// When the dialect was not set explicitly, an introspected connection
// selects its adapter's dialect.
func (f *rootFlags) resolveSchema(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) (namespace.Description, string, error) {
	if cfg.SchemaFile != "" {
		desc, err := schema.LoadFile(cfg.SchemaFile)
		if err != nil {
			return nil, "", err
		}
		logger.Debug("schema loaded", "file", cfg.SchemaFile, "entries", len(desc))
		return desc, cfg.SchemaFile, nil
	}
	if cfg.Connection == nil {
		return nil, "", nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), introspectTimeout)
	defer cancel()

	keepDialect := cmd.Flags().Changed("dialect") || cfg.Dialect != config.DefaultConfig().Dialect
	desc, label, err := introspect(ctx, cfg, keepDialect)
	if err != nil {
		return nil, "", err
	}
	logger.Debug("schema introspected", "source", label, "entries", len(desc))
	return desc, label, nil
}

// introspect connects to cfg.Connection and describes its databases.
func introspect(ctx context.Context, cfg *config.Config, keepDialect bool) (namespace.Description, string, error) {
	conn := cfg.Connection
	dsn := conn.BuildDSN()
	name := conn.Adapter

	a, err := adapter.Get(name)
	if err != nil {
		return nil, "", fmt.Errorf("%w (available: %s)", err, strings.Join(adapter.Names(), ", "))
	}
	if !keepDialect {
		cfg.Dialect = a.Dialect()
	}
	d, err := dialect.Lookup(cfg.Dialect)
	if err != nil {
		return nil, "", err
	}

	ic, err := a.Connect(ctx, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("connect %s: %w", name, err)
	}
	defer ic.Close()

	dbs, err := ic.Databases(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("introspect %s: %w", name, err)
	}
	desc := schema.Describe(dbs, schema.DescribeOptions{Quote: d.QuoteChar()})
	return desc, ic.AdapterName() + ":" + ic.DatabaseName(), nil
}

// detectAdapter guesses the adapter from the shape of a connection string.
func detectAdapter(dsn string) string {
	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(lower, "mysql://"):
		return "mysql"
	case strings.HasPrefix(lower, "sqlite://") || strings.HasPrefix(lower, "file:"):
		return "sqlite"
	case strings.HasPrefix(lower, "duckdb://"):
		return "duckdb"
	case strings.HasSuffix(lower, ".db") || strings.HasSuffix(lower, ".sqlite") || strings.HasSuffix(lower, ".sqlite3"):
		return "sqlite"
	case strings.HasSuffix(lower, ".duckdb"):
		return "duckdb"
	case strings.Contains(lower, "@tcp("):
		return "mysql"
	}
	// Default: try as PostgreSQL DSN
	if strings.Contains(dsn, "@") {
		return "postgres"
	}
	return ""
}

func newEngine(cfg *config.Config, desc namespace.Description, observe completion.Observer) *completion.Engine {
	return completion.NewEngine(completion.EngineConfig{
		Dialect:           cfg.SQLDialect(),
		Schema:            desc,
		Options:           cfg.CompletionOptions(),
		UpperCaseKeywords: cfg.UpperCaseKeywords,
		Observer:          observe,
	})
}
