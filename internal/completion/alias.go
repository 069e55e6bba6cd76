package completion

import (
	"strings"

	"github.com/sadopc/sqlhint/internal/syntax"
)

// Aliases maps an alias, as written and without quotes, to the path of the
// table it names.
type Aliases map[string][]string

// endFrom are the keywords that end a FROM clause.
var endFrom = map[string]bool{
	"where": true, "group": true, "having": true, "order": true,
	"union": true, "intersect": true, "except": true, "all": true,
	"distinct": true, "limit": true, "offset": true, "fetch": true, "for": true,
}

// aliasesAt collects the aliases of the statement around at. It returns nil
// when there are none.
func aliasesAt(doc Text, at syntax.Node) Aliases {
	var stmt syntax.Node
	for p := at; p != nil; p = p.Parent() {
		if p.Kind() == syntax.Statement {
			stmt = p
			break
		}
	}
	if stmt == nil {
		return nil
	}

	var aliases Aliases
	sawFrom := false
	var prevID syntax.Node
scan:
	for n := stmt.FirstChild(); n != nil; n = n.NextSibling() {
		if n.Kind().IsComment() {
			continue
		}
		kw := ""
		if n.Kind() == syntax.Keyword {
			kw = strings.ToLower(doc.Slice(n.From(), n.To()))
		}

		alias := ""
		switch {
		case !sawFrom:
			sawFrom = kw == "from"
		case kw == "as" && prevID != nil:
			if next := nextSignificant(n); plainID(next) {
				alias = idName(doc, next)
			}
		case endFrom[kw]:
			break scan
		case prevID != nil && plainID(n):
			alias = idName(doc, n)
		}
		if alias != "" {
			if aliases == nil {
				aliases = make(Aliases)
			}
			aliases[alias] = pathFor(doc, prevID)
		}

		switch n.Kind() {
		case syntax.Identifier, syntax.QuotedIdentifier, syntax.CompositeIdentifier:
			prevID = n
		default:
			prevID = nil
		}
	}
	return aliases
}

func nextSignificant(n syntax.Node) syntax.Node {
	next := n.NextSibling()
	for next != nil && next.Kind().IsComment() {
		next = next.NextSibling()
	}
	return next
}

// pathFor splits a possibly dotted name into its unquoted parts.
func pathFor(doc Text, id syntax.Node) []string {
	if id.Kind() != syntax.CompositeIdentifier {
		return []string{idName(doc, id)}
	}
	var path []string
	for ch := id.FirstChild(); ch != nil; ch = ch.NextSibling() {
		if plainID(ch) {
			path = append(path, idName(doc, ch))
		}
	}
	return path
}
