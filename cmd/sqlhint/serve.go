package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/sqlhint/internal/history"
	"github.com/sadopc/sqlhint/internal/lsp"
	"github.com/sadopc/sqlhint/internal/metrics"
	"github.com/sadopc/sqlhint/internal/namespace"
	"github.com/sadopc/sqlhint/internal/schema"
	"github.com/sadopc/sqlhint/internal/theme"
	"github.com/sadopc/sqlhint/internal/ui/repl"
	"github.com/sadopc/sqlhint/internal/watch"
)

func newLSPCmd(f *rootFlags) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Run the language server on stdin and stdout",
		Long: `Run a Language Server Protocol server speaking JSON-RPC over stdin and
stdout. Editors may override the dialect and schema file through
initializationOptions. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.LSP.MetricsAddr = metricsAddr
			}
			logger := f.logger(cmd.ErrOrStderr())

			// The server loads schema files itself so it can watch them.
			var desc namespace.Description
			if cfg.SchemaFile == "" && cfg.Connection != nil {
				if desc, _, err = f.resolveSchema(cmd, cfg, logger); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.LSP.MetricsAddr != "" {
				logger.Info("serving metrics", "addr", cfg.LSP.MetricsAddr)
				go func() {
					if err := metrics.Serve(ctx, cfg.LSP.MetricsAddr); err != nil {
						logger.Error("metrics server failed", "error", err)
					}
				}()
			}

			srv := lsp.NewServer(cmd.InOrStdin(), cmd.OutOrStdout(), lsp.Options{
				Config:  cfg,
				Schema:  desc,
				Logger:  logger,
				Version: version,
			})
			defer srv.Close()
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address, e.g. :9090")
	return cmd
}

func newReplCmd(f *rootFlags) *cobra.Command {
	var (
		themeName string
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Type SQL with completions in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("theme") {
				cfg.Theme = themeName
			}
			theme.Current = theme.Get(cfg.Theme)

			logger := f.logger(cmd.ErrOrStderr())
			desc, source, err := f.resolveSchema(cmd, cfg, logger)
			if err != nil {
				return err
			}

			engine := newEngine(cfg, desc, nil)
			opts := repl.Options{Engine: engine, Source: source}
			if !noHistory {
				hist, err := history.OpenDefault()
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not open history: %v\n", err)
				} else {
					defer hist.Close()
					opts.Store = hist
				}
			}
			p := tea.NewProgram(repl.New(opts))

			if cfg.Watch && cfg.SchemaFile != "" {
				w, err := watchSchema(cmd.Context(), cfg.SchemaFile, p)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: not watching schema: %v\n", err)
				} else {
					defer w.Stop()
				}
			}

			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running repl: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not load or record statement history")
	cmd.Flags().StringVar(&themeName, "theme", "", "Color theme ("+strings.Join(theme.Names(), ", ")+")")
	return cmd
}

// watchSchema sends a repl.SchemaMsg to p whenever path changes.
func watchSchema(ctx context.Context, path string, p *tea.Program) (*watch.Watcher, error) {
	w, err := watch.New(path, func(path string) {
		desc, err := schema.LoadFile(path)
		p.Send(repl.SchemaMsg{Desc: desc, Err: err})
	}, nil)
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return nil, err
	}
	return w, nil
}
