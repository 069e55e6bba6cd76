package completion

import (
	"reflect"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/sadopc/sqlhint/internal/dialect"
	"github.com/sadopc/sqlhint/internal/namespace"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var schema1 = namespace.Description{
	{Name: "users", Columns: []namespace.Option{namespace.Name("name"), namespace.Name("id"), namespace.Name("address")}},
	{Name: "products", Columns: []namespace.Option{namespace.Name("name"), namespace.Name("cost"), namespace.Name("description")}},
}

var schema2 = namespace.Description{
	{Name: "public.users", Columns: []namespace.Option{namespace.Name("email"), namespace.Name("id")}},
	{Name: "other.users", Columns: []namespace.Option{namespace.Name("name"), namespace.Name("id")}},
}

type testConfig struct {
	dialect  *dialect.Dialect
	schema   namespace.Description
	opts     Options
	explicit bool
}

// get completes doc at the position marked with "|".
func get(t *testing.T, doc string, conf testConfig) *Result {
	t.Helper()
	cur := strings.Index(doc, "|")
	if cur < 0 {
		t.Fatalf("no cursor marker in %q", doc)
	}
	doc = doc[:cur] + doc[cur+1:]
	d := conf.dialect
	if d == nil {
		d = dialect.PostgreSQL
	}
	src := NewSource(d, conf.schema, conf.opts)
	res, ok := src.Complete(Request{Doc: NewSnapshot(doc, d), Pos: cur, Explicit: conf.explicit})
	if !ok {
		return nil
	}
	return res
}

// str renders the labels of a result ordered by boost, then label.
func str(res *Result) string {
	if res == nil {
		return ""
	}
	opts := append([]namespace.Candidate(nil), res.Options...)
	sort.Slice(opts, func(i, j int) bool {
		if opts[i].Boost != opts[j].Boost {
			return opts[i].Boost > opts[j].Boost
		}
		return opts[i].Label < opts[j].Label
	})
	labels := make([]string, len(opts))
	for i, o := range opts {
		labels[i] = o.Label
	}
	return strings.Join(labels, ", ")
}

func expect(t *testing.T, doc string, conf testConfig, want string) {
	t.Helper()
	if got := str(get(t, doc, conf)); got != want {
		t.Errorf("complete %q = %q, want %q", doc, got, want)
	}
}

// ---------------------------------------------------------------------------
// Schema completion
// ---------------------------------------------------------------------------

func TestCompletesTableNames(t *testing.T) {
	expect(t, "select u|", testConfig{schema: schema1}, "products, users")
}

func TestCompletesQuotedTableNames(t *testing.T) {
	expect(t, `select "u|`, testConfig{schema: schema1}, `"products", "users"`)
}

func TestCompletesTableNamesUnderSchema(t *testing.T) {
	expect(t, "select public.u|", testConfig{schema: schema2}, "users")
}

func TestCompletesQuotedTableNamesUnderSchema(t *testing.T) {
	expect(t, `select public."u|`, testConfig{schema: schema2}, `"users"`)
}

func TestCompletesQuotedTableNamesUnderQuotedSchema(t *testing.T) {
	expect(t, `select "public"."u|`, testConfig{schema: schema2}, `"users"`)
}

func TestCompletesColumnNames(t *testing.T) {
	expect(t, "select users.|", testConfig{schema: schema1}, "address, id, name")
}

func TestCompletesQuotedColumnNames(t *testing.T) {
	expect(t, `select users."|`, testConfig{schema: schema1}, `"address", "id", "name"`)
}

func TestCompletesColumnNamesInQuotedTables(t *testing.T) {
	expect(t, `select "users".|`, testConfig{schema: schema1}, "address, id, name")
}

func TestCompletesColumnNamesForSchema(t *testing.T) {
	tests := []struct {
		doc  string
		want string
	}{
		{"select public.users.|", "email, id"},
		{"select other.users.|", "id, name"},
		{`select public.users."|`, `"email", "id"`},
		{`select other.users."|`, `"id", "name"`},
		{`select public."users".|`, "email, id"},
		{`select other."users".|`, "id, name"},
		{`select "public"."users".|`, "email, id"},
		{`select "other"."users".|`, "id, name"},
		{`select "public"."users"."|`, `"email", "id"`},
		{`select "other"."users"."|`, `"id", "name"`},
	}
	for _, tt := range tests {
		expect(t, tt.doc, testConfig{schema: schema2}, tt.want)
	}
}

func TestIncludesClosingQuote(t *testing.T) {
	res := get(t, `select "u|"`, testConfig{schema: schema1})
	if res == nil {
		t.Fatal("expected a result")
	}
	if res.To != 10 {
		t.Errorf("To = %d, want 10", res.To)
	}
	if res.From != 7 {
		t.Errorf("From = %d, want 7", res.From)
	}
}

func TestKeepsExtraTableProperties(t *testing.T) {
	res := get(t, "select u|", testConfig{
		schema: namespace.Description{{Name: "users", Columns: []namespace.Option{namespace.Name("id")}}},
		opts:   Options{Tables: []namespace.Candidate{{Label: "users", Type: namespace.TypeKeyword}}},
	})
	if res == nil || len(res.Options) == 0 {
		t.Fatal("expected options")
	}
	if res.Options[0].Type != namespace.TypeKeyword {
		t.Errorf("type = %q, want keyword", res.Options[0].Type)
	}
}

func TestKeepsExtraColumnProperties(t *testing.T) {
	res := get(t, "select users.|", testConfig{
		schema: namespace.Description{{Name: "users", Columns: []namespace.Option{
			namespace.Explicit(namespace.Candidate{Label: "id", Type: namespace.TypeKeyword}),
		}}},
	})
	if res == nil || len(res.Options) == 0 {
		t.Fatal("expected options")
	}
	if res.Options[0].Type != namespace.TypeKeyword {
		t.Errorf("type = %q, want keyword", res.Options[0].Type)
	}
}

func TestSupportsDefaultTable(t *testing.T) {
	expect(t, "select i|", testConfig{schema: schema1, opts: Options{DefaultTable: "users"}},
		"address, id, name, products, users")
}

func TestSupportsAlternateQuotingStyles(t *testing.T) {
	expect(t, "select `u|", testConfig{dialect: dialect.MySQL, schema: schema1}, "`products`, `users`")
}

func TestNoCompletionWithoutIdentifier(t *testing.T) {
	expect(t, "select |", testConfig{schema: schema1}, "")
}

func TestExplicitCompletionWithoutIdentifier(t *testing.T) {
	expect(t, "select |", testConfig{schema: schema1, explicit: true}, "products, users")
}

func TestUnknownPathGivesNoResult(t *testing.T) {
	if res := get(t, "select nope.|", testConfig{schema: schema1}); res != nil {
		t.Errorf("expected no result, got %q", str(res))
	}
}

func TestKeywordPrefixIsCompleted(t *testing.T) {
	// "from" is a keyword but may be the start of a name
	res := get(t, "select from|", testConfig{schema: namespace.Description{{Name: "fromage"}}})
	if res == nil {
		t.Fatal("expected a result")
	}
	if res.From != 7 {
		t.Errorf("From = %d, want 7", res.From)
	}
}

func TestPublicKeywordIsPathSegment(t *testing.T) {
	for text, want := range map[string]bool{"public": true, "PUBLIC": true, "select": false, "users": true} {
		snap := NewSnapshot(text, dialect.StandardSQL)
		n := snap.Tree().FirstChild().FirstChild()
		if got := pathSegment(snap, n); got != want {
			t.Errorf("pathSegment(%q) = %v, want %v", text, got, want)
		}
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	expect(t, "select users/* c */.|", testConfig{schema: schema1}, "address, id, name")
}

func TestValidFor(t *testing.T) {
	plain := get(t, "select u|", testConfig{schema: schema1})
	if !plain.ValidFor.MatchString("use") || plain.ValidFor.MatchString(`"u`) {
		t.Errorf("unexpected plain ValidFor %s", plain.ValidFor)
	}
	quoted := get(t, `select "u|`, testConfig{schema: schema1})
	if !quoted.ValidFor.MatchString(`"us"`) || quoted.ValidFor.MatchString("`us`") {
		t.Errorf("unexpected quoted ValidFor %s", quoted.ValidFor)
	}
}

func TestQuotingRoundTrip(t *testing.T) {
	plain := get(t, "select u|", testConfig{schema: schema1})
	quoted := get(t, `select "u|`, testConfig{schema: schema1})
	if len(plain.Options) != len(quoted.Options) {
		t.Fatalf("option counts differ: %d vs %d", len(plain.Options), len(quoted.Options))
	}
	for i, q := range quoted.Options {
		if q.Apply != "" {
			t.Errorf("quoted option %q kept Apply %q", q.Label, q.Apply)
		}
		if got := strings.TrimSuffix(strings.TrimPrefix(q.Label, `"`), `"`); got != plain.Options[i].Label {
			t.Errorf("unquoted %q = %q, want %q", q.Label, got, plain.Options[i].Label)
		}
	}
}

func TestNamesNeedingQuotesGetApply(t *testing.T) {
	res := get(t, "select o|", testConfig{schema: namespace.Description{{Name: "order items"}}})
	if res == nil || len(res.Options) != 1 {
		t.Fatalf("unexpected result %v", res)
	}
	if res.Options[0].Apply != `"order items"` {
		t.Errorf("Apply = %q", res.Options[0].Apply)
	}
}

// ---------------------------------------------------------------------------
// Aliases
// ---------------------------------------------------------------------------

func TestAliasResolvesToTable(t *testing.T) {
	conf := testConfig{schema: schema1}
	expect(t, "select u.| from users u", conf, "address, id, name")
	expect(t, "select p.| from users u, products as p", conf, "cost, description, name")
	expect(t, "select x.| from users u join products x on u.id = x.id", conf, "cost, description, name")
}

func TestAliasWithQualifiedTarget(t *testing.T) {
	expect(t, "select o.| from other.users o where o.id = 1", testConfig{schema: schema2}, "id, name")
}

func TestAliasesAreListedAtTopLevel(t *testing.T) {
	expect(t, "select | from users u, products p", testConfig{schema: schema1, explicit: true},
		"p, products, u, users")
}

func TestAliasScanStopsAtClauseKeyword(t *testing.T) {
	// "where" ends the FROM clause, so x is not an alias
	if res := get(t, "select x.| from users where x", testConfig{schema: schema1}); res != nil {
		t.Errorf("expected no result, got %q", str(res))
	}
}

func TestAliasesIgnoreOtherStatements(t *testing.T) {
	if res := get(t, "select * from users u; select u.|", testConfig{schema: schema1}); res != nil {
		t.Errorf("expected no result, got %q", str(res))
	}
}

func TestResolveContextAliases(t *testing.T) {
	text := "select * from public.users as u, `odd` o, products -- c\n p limit 1"
	snap := NewSnapshot(text, dialect.MySQL)
	ctx := ResolveContext(snap.Tree(), snap, 7)
	want := Aliases{
		"u": {"public", "users"},
		"o": {"odd"},
		"p": {"products"},
	}
	if !reflect.DeepEqual(ctx.Aliases, want) {
		t.Errorf("aliases = %v, want %v", ctx.Aliases, want)
	}
}

func TestResolveContextNoFrom(t *testing.T) {
	snap := NewSnapshot("select a b", dialect.StandardSQL)
	ctx := ResolveContext(snap.Tree(), snap, 10)
	if ctx.Aliases != nil {
		t.Errorf("aliases = %v, want nil", ctx.Aliases)
	}
	if ctx.Empty || ctx.Anchor != 9 {
		t.Errorf("ctx = %+v", ctx)
	}
}

func TestResolveContextPaths(t *testing.T) {
	tests := []struct {
		doc    string
		anchor int
		quote  rune
		path   []string
		empty  bool
	}{
		{"select a.b.c|", 11, 0, []string{"a", "b"}, false},
		{"select a.b.|", 11, 0, []string{"a", "b"}, false},
		{`select "a"."b|`, 11, '"', []string{"a"}, false},
		{"select |", 7, 0, []string{}, true},
		{"select 'str|", 11, 0, []string{}, true},
		{"select 1 + |", 11, 0, []string{}, true},
	}
	for _, tt := range tests {
		cur := strings.Index(tt.doc, "|")
		text := tt.doc[:cur] + tt.doc[cur+1:]
		snap := NewSnapshot(text, dialect.StandardSQL)
		ctx := ResolveContext(snap.Tree(), snap, cur)
		if ctx.Anchor != tt.anchor || ctx.Quote != tt.quote || ctx.Empty != tt.empty ||
			!reflect.DeepEqual(ctx.Path, tt.path) {
			t.Errorf("%q: ctx = %+v", tt.doc, ctx)
		}
	}
}

func TestResolveContextIsIdempotent(t *testing.T) {
	text := "select u.na from other.users u join products p on p.id = u.id"
	snap := NewSnapshot(text, dialect.PostgreSQL)
	pos := strings.Index(text, " from")

	first := ResolveContext(snap.Tree(), snap, pos)
	second := ResolveContext(snap.Tree(), snap, pos)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("contexts differ:\n%+v\n%+v", first, second)
	}
	if len(first.Aliases) != 2 || !reflect.DeepEqual(first.Path, []string{"u"}) {
		t.Fatalf("ctx = %+v", first)
	}

	src := NewSource(dialect.PostgreSQL, schema2, Options{})
	index := src.Index()
	req := Request{Doc: snap, Pos: pos}
	a, okA := src.Complete(req)
	b, okB := src.Complete(req)
	if src.Index() != index {
		t.Error("Complete replaced the index")
	}
	if okA != okB || str(a) != str(b) || a.From != b.From {
		t.Errorf("results differ: %q (%v) vs %q (%v)", str(a), okA, str(b), okB)
	}
	if str(a) != "id, name" {
		t.Errorf("got %q, want the columns of other.users", str(a))
	}
}

// ---------------------------------------------------------------------------
// Source
// ---------------------------------------------------------------------------

func TestConfigureSwapsIndex(t *testing.T) {
	src := NewSource(dialect.PostgreSQL, schema1, Options{})
	doc := NewSnapshot("select users.", dialect.PostgreSQL)

	res, ok := src.Complete(Request{Doc: doc, Pos: doc.Len()})
	if !ok || str(res) != "address, id, name" {
		t.Fatalf("before: %q", str(res))
	}

	src.Configure(namespace.FromMap(map[string][]string{"users": {"login"}}), Options{})
	res, ok = src.Complete(Request{Doc: doc, Pos: doc.Len()})
	if !ok || str(res) != "login" {
		t.Fatalf("after: %q", str(res))
	}
}

func TestConcurrentCompleteAndConfigure(t *testing.T) {
	src := NewSource(dialect.PostgreSQL, schema1, Options{})
	doc := NewSnapshot("select users.", dialect.PostgreSQL)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if i == 0 {
					src.Configure(schema1, Options{})
					continue
				}
				res, ok := src.Complete(Request{Doc: doc, Pos: doc.Len()})
				if !ok || len(res.Options) != 3 {
					t.Errorf("unexpected result %v", res)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestCompleteClampsPosition(t *testing.T) {
	src := NewSource(nil, schema1, Options{})
	doc := NewSnapshot("select u", nil)
	if _, ok := src.Complete(Request{Doc: doc, Pos: 100}); !ok {
		t.Error("expected a result at the clamped end")
	}
	if _, ok := src.Complete(Request{}); ok {
		t.Error("expected no result without a document")
	}
}

func TestResultTyped(t *testing.T) {
	doc := NewSnapshot(`select "us`, nil)
	res := &Result{From: 7}
	if got := res.Typed(doc, doc.Len()); got != "us" {
		t.Errorf("Typed = %q, want us", got)
	}
	if got := res.End(doc.Len()); got != doc.Len() {
		t.Errorf("End = %d", got)
	}
	res.To = 11
	if got := res.End(doc.Len()); got != 11 {
		t.Errorf("End = %d, want 11", got)
	}
}
