package scorer

import (
	"sort"

	"github.com/kgoto/aliasearch/internal/engine/strcache"
	"github.com/kgoto/aliasearch/internal/engine/tokenizer"
)

const (
	// maxTranslitRunes bounds the terms we bother transliterating.
	maxTranslitRunes = 50
	// maxBigramRunes bounds bigram expansion of pathological terms.
	maxBigramRunes = 100
)

// Query is an expanded, deduplicated token set derived from the caller's raw
// terms: the terms themselves, their hiragana transliterations, and bigrams
// of both. Tokens are sorted longest-first so the most specific tokens are
// consulted before the work budget can trigger.
type Query struct {
	verbatim map[string]struct{}
	Tokens   []string
}

// Verbatim reports whether token was one of the caller's raw terms.
func (q *Query) Verbatim(token string) bool {
	_, ok := q.verbatim[token]
	return ok
}

// fromTerm reports whether token equals or prefixes one of the raw terms,
// i.e. it was not produced purely by bigram expansion.
func (q *Query) fromTerm(token string) bool {
	if _, ok := q.verbatim[token]; ok {
		return true
	}
	for term := range q.verbatim {
		if len(token) <= len(term) && term[:len(token)] == token {
			return true
		}
	}
	return false
}

// Expand builds the expanded token set for the given raw terms.
func Expand(terms []string) *Query {
	q := &Query{
		verbatim: make(map[string]struct{}, len(terms)),
	}
	seen := make(map[string]struct{})
	add := func(token string) {
		if _, dup := seen[token]; dup {
			return
		}
		seen[token] = struct{}{}
		q.Tokens = append(q.Tokens, token)
	}

	for _, term := range terms {
		q.verbatim[term] = struct{}{}
		add(term)

		if tokenizer.RuneLen(term) < maxTranslitRunes && isASCIIAlphabetic(term) {
			hira := strcache.ToHiragana(term)
			if hira != term {
				add(hira)
				for _, token := range tokenizer.Bigrams(hira) {
					add(token)
				}
			}
		}

		if tokenizer.RuneLen(term) < maxBigramRunes {
			for _, token := range tokenizer.Bigrams(term) {
				add(token)
			}
		}
	}

	// Longer tokens identify higher-confidence candidates; consult them
	// first so the work budget is spent on the most useful matches.
	sort.SliceStable(q.Tokens, func(i, j int) bool {
		return len(q.Tokens[i]) > len(q.Tokens[j])
	})
	return q
}

func isASCIIAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
