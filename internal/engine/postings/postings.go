// Package postings maintains the token-based inverted index used by the
// ranked search variant: for every token, the list of document names that
// produced it, plus per-document token counts for length normalisation.
package postings

import (
	"github.com/kgoto/aliasearch/internal/engine/tokenizer"
)

// maxDeriveRunes bounds bigram derivation when removing a document. Names
// longer than this fall through to the exhaustive scrub below.
const maxDeriveRunes = 50

// Index maps tokens to the documents containing them. A document appears in
// a token's list at most once. Not safe for concurrent use.
type Index struct {
	lists    map[string][]string
	docLen   map[string]int
	totalLen int
}

func New() *Index {
	return &Index{
		lists:  make(map[string][]string),
		docLen: make(map[string]int),
	}
}

// Add indexes a document under its name, the name's bigrams, each alias, and
// each alias's bigrams. Duplicate tokens across aliases contribute a single
// postings entry. The document length is recorded as len(aliases)+1.
func (x *Index) Add(name string, aliases []string) {
	x.docLen[name] = len(aliases) + 1
	x.totalLen += len(aliases) + 1

	seen := make(map[string]struct{})
	insert := func(token string) {
		if _, dup := seen[token]; dup {
			return
		}
		seen[token] = struct{}{}
		x.lists[token] = append(x.lists[token], name)
	}

	insert(name)
	for _, token := range tokenizer.Bigrams(name) {
		insert(token)
	}
	for _, alias := range aliases {
		insert(alias)
		for _, token := range tokenizer.Bigrams(alias) {
			insert(token)
		}
	}
}

// Remove strips the document from every postings list referencing it and
// deletes lists that become empty. Tokens derivable from the name are
// scrubbed first; a full pass over the remaining lists catches tokens that
// came from aliases (the index keeps no per-alias provenance).
func (x *Index) Remove(name string) {
	length, ok := x.docLen[name]
	if !ok {
		return
	}
	delete(x.docLen, name)
	x.totalLen -= length

	targets := []string{name}
	if tokenizer.RuneLen(name) < maxDeriveRunes {
		targets = append(targets, tokenizer.Bigrams(name)...)
	}
	for _, token := range targets {
		x.strip(token, name)
	}
	for token := range x.lists {
		x.strip(token, name)
	}
}

func (x *Index) strip(token, name string) {
	list, ok := x.lists[token]
	if !ok {
		return
	}
	kept := list[:0]
	for _, d := range list {
		if d != name {
			kept = append(kept, d)
		}
	}
	if len(kept) == 0 {
		delete(x.lists, token)
		return
	}
	x.lists[token] = kept
}

// List returns the postings list for token, or nil.
func (x *Index) List(token string) []string {
	return x.lists[token]
}

// DocLen returns the recorded token-length count for a document, defaulting
// to 1 for unknown names.
func (x *Index) DocLen(name string) int {
	if l, ok := x.docLen[name]; ok {
		return l
	}
	return 1
}

// AvgDocLen returns the mean document length across the corpus.
func (x *Index) AvgDocLen() float64 {
	if len(x.docLen) == 0 {
		return 0
	}
	return float64(x.totalLen) / float64(len(x.docLen))
}

// DocCount returns the number of indexed documents.
func (x *Index) DocCount() int {
	return len(x.docLen)
}

// Tokens returns the number of distinct tokens currently indexed.
func (x *Index) Tokens() int {
	return len(x.lists)
}

// Has reports whether a document is indexed.
func (x *Index) Has(name string) bool {
	_, ok := x.docLen[name]
	return ok
}

// Reset empties the index.
func (x *Index) Reset() {
	x.lists = make(map[string][]string)
	x.docLen = make(map[string]int)
	x.totalLen = 0
}
