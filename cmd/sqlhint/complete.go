package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sadopc/sqlhint/internal/completion"
	"github.com/sadopc/sqlhint/internal/namespace"
)

// cursorMarker marks the completion position in the text argument.
const cursorMarker = "|"

func newCompleteCmd(f *rootFlags) *cobra.Command {
	var (
		explicit bool
		keywords bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "complete <text>",
		Short: "Print the completions for a statement",
		Long: `Print the completions at the cursor, marked with "|" in the text. Without a
marker the cursor is at the end. A text of "-" is read from standard input.

Without --keywords only the schema source is consulted and its result is
printed unfiltered. With --keywords, keyword completions are merged in and
the candidates are ranked against the typed word.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			logger := f.logger(cmd.ErrOrStderr())

			text := args[0]
			if text == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}
			text, pos := splitCursor(text)

			desc, _, err := f.resolveSchema(cmd, cfg, logger)
			if err != nil {
				return err
			}

			var res *completion.Result
			if keywords {
				res = newEngine(cfg, desc, nil).CompleteText(text, pos, explicit)
			} else {
				d := cfg.SQLDialect()
				src := completion.NewSource(d, desc, cfg.CompletionOptions())
				res, _ = src.Complete(completion.Request{
					Doc:      completion.NewSnapshot(text, d),
					Pos:      pos,
					Explicit: explicit,
				})
			}
			logger.Debug("completed", "pos", pos, "found", res != nil)

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res, pos)
			}
			return writeTable(cmd.OutOrStdout(), res, pos)
		},
	}

	cmd.Flags().BoolVarP(&explicit, "explicit", "e", false, "Complete as if requested explicitly")
	cmd.Flags().BoolVarP(&keywords, "keywords", "k", false, "Include keyword completions")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

// splitCursor removes the first cursor marker from text and returns its
// byte offset. A doubled marker stands for a literal bar. Without a marker
// the cursor is at the end.
func splitCursor(text string) (string, int) {
	var b strings.Builder
	pos := -1
	for i := 0; i < len(text); i++ {
		if !strings.HasPrefix(text[i:], cursorMarker) {
			b.WriteByte(text[i])
			continue
		}
		rest := text[i+len(cursorMarker):]
		switch {
		case strings.HasPrefix(rest, cursorMarker):
			b.WriteString(cursorMarker)
			i += 2*len(cursorMarker) - 1
		case pos < 0:
			pos = b.Len()
			i += len(cursorMarker) - 1
		default:
			b.WriteString(cursorMarker)
			i += len(cursorMarker) - 1
		}
	}
	if pos < 0 {
		pos = b.Len()
	}
	return b.String(), pos
}

type jsonResult struct {
	From    int                   `json:"from"`
	To      int                   `json:"to"`
	Options []namespace.Candidate `json:"options"`
}

// writeJSON prints res, or null when there is nothing to complete.
func writeJSON(w io.Writer, res *completion.Result, pos int) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if res == nil {
		return enc.Encode(nil)
	}
	out := jsonResult{From: res.From, To: res.End(pos), Options: res.Options}
	if out.Options == nil {
		out.Options = []namespace.Candidate{}
	}
	return enc.Encode(out)
}

func writeTable(w io.Writer, res *completion.Result, pos int) error {
	if res == nil {
		return nil
	}
	fmt.Fprintf(w, "# replace %d..%d\n", res.From, res.End(pos))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range res.Options {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Label, c.Type, c.Detail, c.Apply)
	}
	return tw.Flush()
}
