package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/sqlhint/internal/adapter"
	"github.com/sadopc/sqlhint/internal/config"
	"github.com/sadopc/sqlhint/internal/dialect"

	// Register database adapters
	_ "github.com/sadopc/sqlhint/internal/adapter/duckdb"
	_ "github.com/sadopc/sqlhint/internal/adapter/mysql"
	_ "github.com/sadopc/sqlhint/internal/adapter/postgres"
	_ "github.com/sadopc/sqlhint/internal/adapter/sqlite"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootFlags are the settings shared by every command. Flags that are set
// override the config file.
type rootFlags struct {
	config        string
	dialect       string
	schema        string
	defaultSchema string
	defaultTable  string
	upper         bool
	adapter       string
	dsn           string
	verbose       bool
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "sqlhint",
		Short: "Schema-aware SQL autocompletion",
		Long: `sqlhint completes SQL keywords and schema, table and column names,
following the rules of the chosen SQL dialect.

Examples:
  sqlhint complete 'select u| from users' --schema schema.yaml
  sqlhint complete 'select * from pub' --adapter postgres --dsn postgres://localhost/app
  sqlhint tokens "select 'a' || b" --dialect postgres
  sqlhint lsp --schema schema.yaml
  sqlhint repl --dialect sqlite --adapter sqlite --dsn ./data.db`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&f.config, "config", "c", "", "Config file path")
	pf.StringVarP(&f.dialect, "dialect", "D", "", "SQL dialect ("+strings.Join(dialect.List(), ", ")+")")
	pf.StringVarP(&f.schema, "schema", "s", "", "Schema description file (.yaml, .yml or .json)")
	pf.StringVar(&f.defaultSchema, "default-schema", "", "Schema whose tables complete unqualified")
	pf.StringVar(&f.defaultTable, "default-table", "", "Table whose columns complete unqualified")
	pf.BoolVar(&f.upper, "upper", false, "Complete keywords in upper case")
	pf.StringVarP(&f.adapter, "adapter", "a", "", "Introspect a database ("+strings.Join(adapter.Names(), ", ")+")")
	pf.StringVar(&f.dsn, "dsn", "", "Connection string of the introspected database")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(
		newCompleteCmd(f),
		newTokensCmd(f),
		newKeywordsCmd(f),
		newDialectsCmd(),
		newLSPCmd(f),
		newReplCmd(f),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "sqlhint %s (commit: %s, built: %s)\n", version, commit, date)
			fmt.Fprintln(out, "\nSupported adapters:")
			for _, name := range adapter.Names() {
				fmt.Fprintf(out, "  - %s\n", name)
			}
		},
	}
}

// load reads the config file and applies the flags set on cmd.
func (f *rootFlags) load(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if f.config != "" {
		cfg, err = config.Load(f.config)
		if err != nil {
			return nil, err
		}
	} else {
		cfg, err = config.LoadDefault()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not load config: %v\n", err)
			cfg = config.DefaultConfig()
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dialect") {
		cfg.Dialect = f.dialect
	}
	if flags.Changed("schema") {
		cfg.SchemaFile = f.schema
	}
	if flags.Changed("default-schema") {
		cfg.DefaultSchema = f.defaultSchema
	}
	if flags.Changed("default-table") {
		cfg.DefaultTable = f.defaultTable
	}
	if flags.Changed("upper") {
		cfg.UpperCaseKeywords = f.upper
	}
	if flags.Changed("adapter") || flags.Changed("dsn") {
		conn := &config.Connection{Adapter: f.adapter, DSN: f.dsn}
		if cfg.Connection != nil && !flags.Changed("adapter") {
			conn.Adapter = cfg.Connection.Adapter
		}
		if conn.Adapter == "" {
			conn.Adapter = detectAdapter(conn.DSN)
		}
		cfg.Connection = conn
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (f *rootFlags) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
