package completion

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/sadopc/sqlhint/internal/namespace"
)

// MaxFiltered caps the number of candidates Filter returns.
const MaxFiltered = 50

// Merge combines results for the same position. Results starting at a
// different offset than the first non-nil one are dropped; duplicate labels
// keep their first occurrence.
func Merge(results ...*Result) *Result {
	var out *Result
	seen := map[string]bool{}
	for _, r := range results {
		if r == nil {
			continue
		}
		if out == nil {
			out = &Result{From: r.From, To: r.To, ValidFor: r.ValidFor}
		} else if r.From != out.From {
			continue
		}
		if r.To > out.To {
			out.To = r.To
		}
		for _, c := range r.Options {
			if seen[c.Label] {
				continue
			}
			seen[c.Label] = true
			out.Options = append(out.Options, c)
		}
	}
	return out
}

// candidateLabels implements fuzzy.Source over lower-cased labels.
type candidateLabels []string

func (c candidateLabels) String(i int) string { return c[i] }
func (c candidateLabels) Len() int            { return len(c) }

// Filter ranks options against the typed text, case-insensitively. With no
// typed text the options are ordered by boost. At most MaxFiltered
// candidates are returned.
func Filter(typed string, options []namespace.Candidate) []namespace.Candidate {
	if len(options) == 0 {
		return nil
	}

	if typed == "" {
		result := make([]namespace.Candidate, len(options))
		copy(result, options)
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Boost > result[j].Boost
		})
		if len(result) > MaxFiltered {
			result = result[:MaxFiltered]
		}
		return result
	}

	lower := make(candidateLabels, len(options))
	for i, c := range options {
		lower[i] = strings.ToLower(trimQuotes(c.Label))
	}
	matches := fuzzy.FindFrom(strings.ToLower(typed), lower)

	// Sort by score descending, boost breaking ties.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return options[matches[i].Index].Boost > options[matches[j].Index].Boost
	})

	result := make([]namespace.Candidate, 0, len(matches))
	for _, m := range matches {
		result = append(result, options[m.Index])
	}
	if len(result) > MaxFiltered {
		result = result[:MaxFiltered]
	}
	return result
}

func trimQuotes(label string) string {
	if len(label) >= 2 && isQuote(label[0]) {
		return label[1 : len(label)-1]
	}
	return label
}
