package scan

import (
	"reflect"
	"sort"
	"testing"

	"github.com/kgoto/aliasearch/internal/engine/strcache"
)

func newEngine(docs map[string][]string) *Engine {
	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return &Engine{Docs: docs, Names: names, Cache: strcache.New()}
}

func TestUnifiedPriorityOrder(t *testing.T) {
	docs := map[string][]string{
		"kirin":         nil,                     // name exact
		"zz":            {"kirin"},               // alias exact
		"kirin brewery": nil,                     // name prefix
		"yy":            {"kirin lager"},         // alias prefix
		"the kirin co":  nil,                     // name partial
		"xx":            {"drink kirin tonight"}, // alias partial
	}
	e := newEngine(docs)
	got := e.Unified([]string{"kirin"}, 10)
	want := []string{"kirin", "zz", "kirin brewery", "yy", "the kirin co", "xx"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Unified = %v, want %v", got, want)
	}
}

func TestUnifiedCaseInsensitiveNames(t *testing.T) {
	docs := map[string][]string{"Kirin Brewery": nil}
	e := newEngine(docs)
	got := e.Unified([]string{"kirin"}, 10)
	if len(got) != 1 || got[0] != "Kirin Brewery" {
		t.Fatalf("Unified = %v, want [Kirin Brewery]", got)
	}
}

func TestUnifiedHiraganaQuery(t *testing.T) {
	hira := strcache.ToHiragana("sushi")
	docs := map[string][]string{
		hira:    nil, // native-script name, matched through transliteration
		"salad": nil,
	}
	e := newEngine(docs)
	got := e.Unified([]string{"sushi"}, 10)
	if len(got) != 1 || got[0] != hira {
		t.Fatalf("Unified = %v, want [%s]", got, hira)
	}
}

func TestUnifiedCandidateCap(t *testing.T) {
	docs := make(map[string][]string)
	for _, suffix := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		docs["match-"+suffix] = nil
	}
	e := newEngine(docs)

	// Collection stops at twice the limit; the first 2*limit documents in
	// store order are the candidate pool.
	got := e.Unified([]string{"match"}, 2)
	want := []string{"match-a", "match-b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Unified = %v, want %v", got, want)
	}
}

func TestUnifiedNoMatch(t *testing.T) {
	e := newEngine(map[string][]string{"kirin": nil})
	if got := e.Unified([]string{"zzz"}, 10); len(got) != 0 {
		t.Fatalf("Unified = %v, want empty", got)
	}
}

func TestAndNamePassBeforeAliasPass(t *testing.T) {
	docs := map[string][]string{
		"kirin lager": nil,                      // both keywords in the name
		"aaa":         {"kirin", "lager house"}, // keywords only via aliases
		"kirin only":  nil,                      // missing second keyword
	}
	e := newEngine(docs)
	got := e.And([]string{"kirin", "lager"}, 10)
	want := []string{"kirin lager", "aaa"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("And = %v, want %v", got, want)
	}
}

func TestAndSharedLimit(t *testing.T) {
	docs := map[string][]string{
		"ab one": nil,
		"ab two": nil,
		"zz":     {"ab three"},
	}
	e := newEngine(docs)
	got := e.And([]string{"ab"}, 2)
	want := []string{"ab one", "ab two"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("And = %v, want %v", got, want)
	}
}

func TestAndNoDuplicateEmission(t *testing.T) {
	// Matched by name in pass 1; the alias pass must not emit it again.
	docs := map[string][]string{
		"kirin": {"kirin beer"},
	}
	e := newEngine(docs)
	got := e.And([]string{"kirin"}, 10)
	if len(got) != 1 || got[0] != "kirin" {
		t.Fatalf("And = %v, want [kirin]", got)
	}
}

func TestAndHiraganaKeywords(t *testing.T) {
	hira := strcache.ToHiragana("sushi")
	docs := map[string][]string{hira + " bar": nil}
	e := newEngine(docs)
	got := e.And([]string{"sushi", "bar"}, 10)
	if len(got) != 1 {
		t.Fatalf("And = %v, want one hit through transliteration", got)
	}
}

func TestAndAllKeywordsRequired(t *testing.T) {
	docs := map[string][]string{"kirin lager": nil}
	e := newEngine(docs)
	if got := e.And([]string{"kirin", "stout"}, 10); len(got) != 0 {
		t.Fatalf("And = %v, want empty", got)
	}
}
