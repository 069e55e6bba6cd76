package completion

import (
	"strings"

	"github.com/sadopc/sqlhint/internal/syntax"
)

// Context describes what is being completed at a position.
type Context struct {
	// Anchor is where the replaced text starts.
	Anchor int
	// Quote is the opening quote of the identifier being typed, or 0.
	Quote rune
	// Path holds the unquoted names qualifying the position, outermost
	// first.
	Path []string
	// Empty is set when no identifier is being typed.
	Empty bool
	// Aliases maps the aliases declared in the statement's FROM clause to
	// the names they stand for.
	Aliases Aliases
}

// ResolveContext inspects the tree around pos.
func ResolveContext(root syntax.Node, doc Text, pos int) Context {
	node := syntax.ResolveInner(root, pos, -1)
	ctx := Context{Anchor: pos, Aliases: aliasesAt(doc, node)}
	if node == nil {
		ctx.Empty = true
		return ctx
	}

	switch node.Kind() {
	case syntax.Identifier, syntax.QuotedIdentifier, syntax.Keyword:
		ctx.Anchor = node.From()
		if node.Kind() == syntax.QuotedIdentifier {
			if q := doc.Slice(node.From(), node.From()+1); q != "" {
				ctx.Quote = rune(q[0])
			}
		}
		ctx.Path = parentsFor(root, doc, tokenBefore(root, node))
	case syntax.Dot:
		ctx.Path = parentsFor(root, doc, node)
	default:
		ctx.Empty = true
	}
	if ctx.Path == nil {
		ctx.Path = []string{}
	}
	return ctx
}

// tokenBefore returns the innermost node ending at n's start, skipping
// comments.
func tokenBefore(root, n syntax.Node) syntax.Node {
	t := syntax.ResolveInner(root, n.From(), -1)
	for t != nil && t.Kind().IsComment() {
		t = syntax.ResolveInner(root, t.From(), -1)
	}
	return t
}

// parentsFor walks back over name.name. chains ending at node.
func parentsFor(root syntax.Node, doc Text, node syntax.Node) []string {
	var path []string
	for node != nil && node.Kind() == syntax.Dot {
		name := tokenBefore(root, node)
		if !pathSegment(doc, name) {
			break
		}
		path = append([]string{idName(doc, name)}, path...)
		node = tokenBefore(root, name)
	}
	return path
}

// pathSegment reports whether n can qualify a name. The keyword public is
// accepted because it is the usual schema name.
func pathSegment(doc Text, n syntax.Node) bool {
	if plainID(n) {
		return true
	}
	return n != nil && n.Kind() == syntax.Keyword &&
		strings.EqualFold(doc.Slice(n.From(), n.To()), "public")
}

func plainID(n syntax.Node) bool {
	return n != nil && (n.Kind() == syntax.Identifier || n.Kind() == syntax.QuotedIdentifier)
}

// idName returns the text of n with one pair of surrounding quotes removed.
func idName(doc Text, n syntax.Node) string {
	return unquote(doc.Slice(n.From(), n.To()))
}

func unquote(s string) string {
	if len(s) >= 2 {
		switch q := s[0]; q {
		case '`', '\'', '"':
			if s[len(s)-1] == q {
				return s[1 : len(s)-1]
			}
		}
	}
	return s
}
