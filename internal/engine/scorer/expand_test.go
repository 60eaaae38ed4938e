package scorer

import (
	"testing"

	"github.com/kgoto/aliasearch/internal/engine/strcache"
)

func contains(tokens []string, want string) bool {
	for _, tok := range tokens {
		if tok == want {
			return true
		}
	}
	return false
}

func TestExpandIncludesTermAndBigrams(t *testing.T) {
	q := Expand([]string{"gopher"})
	for _, want := range []string{"gopher", "go", "op", "ph", "he", "er"} {
		if !contains(q.Tokens, want) {
			t.Errorf("expanded tokens missing %q: %v", want, q.Tokens)
		}
	}
	if !q.Verbatim("gopher") {
		t.Error("Verbatim(\"gopher\") = false, want true")
	}
	if q.Verbatim("go") {
		t.Error("Verbatim(\"go\") = true for a bigram, want false")
	}
}

func TestExpandTransliteratesAlphabeticTerms(t *testing.T) {
	q := Expand([]string{"sushi"})
	hira := strcache.ToHiragana("sushi")
	if hira == "sushi" {
		t.Fatal("transliteration did not change the term; test setup broken")
	}
	if !contains(q.Tokens, hira) {
		t.Errorf("expanded tokens missing transliteration %q: %v", hira, q.Tokens)
	}
}

func TestExpandSkipsTransliterationForNonAlphabetic(t *testing.T) {
	for _, term := range []string{"abc123", "すし", "a-b"} {
		q := Expand([]string{term})
		for _, tok := range q.Tokens {
			if tok != term && !isBigramOf(term, tok) {
				t.Errorf("Expand(%q) produced unexpected token %q", term, tok)
			}
		}
	}
}

func isBigramOf(term, token string) bool {
	runes := []rune(term)
	for i := 0; i < len(runes)-1; i++ {
		if string(runes[i:i+2]) == token {
			return true
		}
	}
	return false
}

func TestExpandDeduplicates(t *testing.T) {
	q := Expand([]string{"aa", "aa"})
	seen := make(map[string]int)
	for _, tok := range q.Tokens {
		seen[tok]++
	}
	for tok, n := range seen {
		if n > 1 {
			t.Errorf("token %q appears %d times", tok, n)
		}
	}
}

func TestExpandOrdersLongestFirst(t *testing.T) {
	q := Expand([]string{"abcdef"})
	for i := 1; i < len(q.Tokens); i++ {
		if len(q.Tokens[i]) > len(q.Tokens[i-1]) {
			t.Fatalf("tokens not longest-first at %d: %v", i, q.Tokens)
		}
	}
}

func TestFromTerm(t *testing.T) {
	q := Expand([]string{"gopher"})
	if !q.fromTerm("gopher") {
		t.Error("fromTerm(\"gopher\") = false for the term itself")
	}
	if !q.fromTerm("go") {
		t.Error("fromTerm(\"go\") = false for a prefix of the term")
	}
	if q.fromTerm("er") {
		t.Error("fromTerm(\"er\") = true for a non-prefix bigram")
	}
}
