package completion

import (
	"sync"
	"testing"
	"time"

	"github.com/sadopc/sqlhint/internal/dialect"
	"github.com/sadopc/sqlhint/internal/namespace"
)

func labels(res *Result) []string {
	if res == nil {
		return nil
	}
	out := make([]string, len(res.Options))
	for i, c := range res.Options {
		out[i] = c.Label
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestEngineCombinesSources(t *testing.T) {
	e := NewEngine(EngineConfig{Dialect: dialect.PostgreSQL, Schema: schema1})

	res := e.CompleteText("select * from pro", 17, false)
	if res == nil {
		t.Fatal("no result")
	}
	if res.From != 14 {
		t.Errorf("From = %d, want 14", res.From)
	}
	got := labels(res)
	if !contains(got, "products") {
		t.Errorf("labels = %v, want the table products", got)
	}
	if !contains(got, "procedures") {
		t.Errorf("labels = %v, want the keyword procedures", got)
	}
	if contains(got, "users") {
		t.Errorf("labels = %v, users does not match pro", got)
	}
}

func TestEngineAfterDot(t *testing.T) {
	e := NewEngine(EngineConfig{Dialect: dialect.PostgreSQL, Schema: schema1})

	res := e.CompleteText("select users.", 13, false)
	if got := labels(res); len(got) != 3 || contains(got, "select") {
		t.Errorf("labels = %v, want only the columns of users", got)
	}
}

func TestEngineNothingToOffer(t *testing.T) {
	e := NewEngine(EngineConfig{Schema: schema1})

	if res := e.CompleteText("select 'x", 9, false); res != nil {
		t.Errorf("in a string: got %v, want nil", labels(res))
	}
	if res := e.CompleteText("select ", 7, false); res != nil {
		t.Errorf("implicit with no word: got %v, want nil", labels(res))
	}
	if res := e.Complete(nil, 0, true); res != nil {
		t.Error("nil document gave a result")
	}
}

func TestEngineUpdateSchema(t *testing.T) {
	e := NewEngine(EngineConfig{Schema: schema1, Options: Options{DefaultTable: "orders"}})
	if contains(labels(e.CompleteText("select ord", 10, false)), "orders") {
		t.Fatal("orders offered before the update")
	}

	e.UpdateSchema(namespace.FromMap(map[string][]string{"orders": {"total"}}))

	got := labels(e.CompleteText("select tot", 10, false))
	if !contains(got, "total") {
		t.Errorf("labels = %v, want the default table's column total", got)
	}
}

func TestEngineUpperCaseKeywords(t *testing.T) {
	e := NewEngine(EngineConfig{UpperCaseKeywords: true})
	got := labels(e.CompleteText("sel", 3, false))
	if !contains(got, "SELECT") {
		t.Errorf("labels = %v, want SELECT", got)
	}
	if e.Dialect() != dialect.StandardSQL {
		t.Errorf("Dialect() = %s, want standard", e.Dialect().Name())
	}
}

func TestEngineObserver(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}
	e := NewEngine(EngineConfig{
		Schema: schema1,
		Observer: func(source string, start time.Time, n int, ok bool) {
			mu.Lock()
			defer mu.Unlock()
			seen[source] = ok
			if start.IsZero() {
				t.Errorf("%s: zero start time", source)
			}
		},
	})

	e.CompleteText("select users.", 13, false)

	if ok, found := seen[SourceSchema]; !found || !ok {
		t.Errorf("schema source observed = %v, %v; want true, true", ok, found)
	}
	if ok, found := seen[SourceKeyword]; !found || ok {
		t.Errorf("keyword source observed = %v, %v; want false, true", ok, found)
	}
}
