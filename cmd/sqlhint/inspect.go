package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sadopc/sqlhint/internal/completion"
	"github.com/sadopc/sqlhint/internal/dialect"
	"github.com/sadopc/sqlhint/internal/syntax"
)

func newTokensCmd(f *rootFlags) *cobra.Command {
	var tree bool

	cmd := &cobra.Command{
		Use:   "tokens <text>",
		Short: "Print the tokens of a statement in a dialect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			d := cfg.SQLDialect()
			text := args[0]
			out := cmd.OutOrStdout()

			if tree {
				fmt.Fprintln(out, syntax.Parse(text, d).String())
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, tok := range syntax.Tokenize(text, d) {
				fmt.Fprintf(tw, "%d..%d\t%s\t%q\n", tok.From, tok.To, tok.Kind, tok.Text(text))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVarP(&tree, "tree", "t", false, "Print the syntax tree instead")
	return cmd
}

func newKeywordsCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "keywords",
		Short: "List the keyword completions of a dialect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			src := completion.NewKeywordSource(cfg.SQLDialect(), cfg.UpperCaseKeywords, nil)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, c := range src.Options() {
				fmt.Fprintf(tw, "%s\t%s\n", c.Label, c.Type)
			}
			return tw.Flush()
		},
	}
}

func newDialectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List the registered dialects",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range dialect.List() {
				d, _ := dialect.Get(name)
				fmt.Fprintf(tw, "%s\t%d words\tquote %c\n", name, len(d.Words()), d.QuoteChar())
			}
			tw.Flush()
		},
	}
}
