// Package engine implements the in-process fuzzy/phonetic search index: a
// document store of named entities with aliases, a derived token index or
// normalisation cache depending on variant, ranked lookups, and versioned
// snapshot persistence.
//
// The engine is single-writer and fully synchronous. Searches may populate
// the normalisation cache, so even read paths require exclusive access;
// callers embedding the engine in a concurrent host must serialise every
// operation externally.
package engine

import (
	"sort"
	"strings"

	"github.com/kgoto/aliasearch/internal/engine/codec"
	"github.com/kgoto/aliasearch/internal/engine/postings"
	"github.com/kgoto/aliasearch/internal/engine/scan"
	"github.com/kgoto/aliasearch/internal/engine/scorer"
	"github.com/kgoto/aliasearch/internal/engine/strcache"
)

// Variant selects the lookup structure backing Search.
type Variant int

const (
	// VariantPostings answers queries from the token-based inverted index
	// with relevance scoring.
	VariantPostings Variant = iota
	// VariantScan walks the document store directly through the
	// normalisation cache, ranking by match class only.
	VariantScan
)

// DefaultLimit is the result-count limit applied when the caller passes a
// non-positive one.
const DefaultLimit = 10

// Document is a named entity with its ordered alias list.
type Document struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
}

// Options configures a new Index.
type Options struct {
	Variant Variant
	// SplitWideSpace extends AND-search keyword splitting to the
	// ideographic space U+3000. Off by default.
	SplitWideSpace bool
	// DefaultLimit overrides the package default when positive.
	DefaultLimit int
}

// Index is the search engine facade. It owns the authoritative name→aliases
// mapping; the postings index and normalisation cache are derived from it
// and rebuilt wholesale after a snapshot load. Not safe for concurrent use.
type Index struct {
	opts  Options
	docs  map[string][]string
	names []string // sorted; deterministic iteration for the scan paths
	nDocs int

	cache *strcache.Cache
	idx   *postings.Index
}

// New creates an empty Index.
func New(opts Options) *Index {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultLimit
	}
	return &Index{
		opts:  opts,
		docs:  make(map[string][]string),
		cache: strcache.New(),
		idx:   postings.New(),
	}
}

// Len returns the number of live documents.
func (ix *Index) Len() int {
	return ix.nDocs
}

// Version reports the snapshot schema version this engine writes.
func (ix *Index) Version() uint32 {
	return codec.CurrentVersion
}

// Tokens reports the distinct token count of the postings index. Always zero
// for the scan variant.
func (ix *Index) Tokens() int {
	return ix.idx.Tokens()
}

// Documents returns a name-sorted snapshot of the store.
func (ix *Index) Documents() []Document {
	out := make([]Document, 0, len(ix.names))
	for _, name := range ix.names {
		aliases := make([]string, len(ix.docs[name]))
		copy(aliases, ix.docs[name])
		out = append(out, Document{Name: name, Aliases: aliases})
	}
	return out
}

// Add inserts a document. Re-adding an existing name removes the old entry
// first, cascading through the postings index and cache.
func (ix *Index) Add(name string, aliases []string) {
	if _, exists := ix.docs[name]; exists {
		ix.remove(name)
	}
	stored := make([]string, len(aliases))
	copy(stored, aliases)
	ix.docs[name] = stored
	ix.insertName(name)
	ix.nDocs++

	ix.warmCache(name, stored)
	if ix.opts.Variant == VariantPostings {
		ix.idx.Add(name, stored)
	}
}

// AddMany inserts every document in order, with single-add semantics per
// entry.
func (ix *Index) AddMany(docs []Document) {
	for _, doc := range docs {
		ix.Add(doc.Name, doc.Aliases)
	}
}

// Update replaces a document's aliases. It reports false, without touching
// anything, when the name is absent.
func (ix *Index) Update(name string, aliases []string) bool {
	if _, exists := ix.docs[name]; !exists {
		return false
	}
	ix.remove(name)
	ix.Add(name, aliases)
	return true
}

// Remove deletes a document, reporting whether it existed.
func (ix *Index) Remove(name string) bool {
	if _, exists := ix.docs[name]; !exists {
		return false
	}
	ix.remove(name)
	return true
}

// ReplaceAll clears the store and loads the given documents.
func (ix *Index) ReplaceAll(docs []Document) {
	ix.Clear()
	ix.AddMany(docs)
}

// Clear empties the store, the postings index, and the cache.
func (ix *Index) Clear() {
	ix.docs = make(map[string][]string)
	ix.names = ix.names[:0]
	ix.nDocs = 0
	ix.cache.Clear()
	ix.idx.Reset()
}

func (ix *Index) remove(name string) {
	aliases := ix.docs[name]
	delete(ix.docs, name)
	ix.deleteName(name)
	if ix.nDocs > 0 {
		ix.nDocs--
	}
	ix.cache.Evict(name, aliases)
	ix.idx.Remove(name)
}

func (ix *Index) warmCache(name string, aliases []string) {
	ix.cache.Lowercase(name)
	ix.cache.Hiragana(name)
	for _, alias := range aliases {
		ix.cache.Lowercase(alias)
		ix.cache.Hiragana(alias)
		ix.cache.Link(alias, name)
	}
}

func (ix *Index) insertName(name string) {
	i := sort.SearchStrings(ix.names, name)
	ix.names = append(ix.names, "")
	copy(ix.names[i+1:], ix.names[i:])
	ix.names[i] = name
}

func (ix *Index) deleteName(name string) {
	i := sort.SearchStrings(ix.names, name)
	if i < len(ix.names) && ix.names[i] == name {
		ix.names = append(ix.names[:i], ix.names[i+1:]...)
	}
}

// Search answers a ranked lookup for the given raw terms, returning up to
// limit document names, most relevant first. A non-positive limit applies
// the configured default. An empty store or term list yields no results and
// no error. A single term containing a space separator switches to the
// AND-search path.
func (ix *Index) Search(terms []string, limit int) []string {
	if limit <= 0 {
		limit = ix.opts.DefaultLimit
	}
	if ix.nDocs == 0 || len(terms) == 0 {
		return []string{}
	}

	if len(terms) == 1 && ix.isANDQuery(terms[0]) {
		keywords := ix.splitKeywords(strings.ToLower(terms[0]))
		return nonNil(ix.scanEngine().And(keywords, limit))
	}

	if ix.opts.Variant == VariantScan {
		lowered := make([]string, len(terms))
		for i, t := range terms {
			lowered[i] = strings.ToLower(t)
		}
		return nonNil(ix.scanEngine().Unified(lowered, limit))
	}

	q := scorer.Expand(terms)
	return nonNil(scorer.Rank(q, ix.idx, func(name string) []string {
		return ix.docs[name]
	}, limit))
}

func nonNil(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}

func (ix *Index) scanEngine() *scan.Engine {
	return &scan.Engine{Docs: ix.docs, Names: ix.names, Cache: ix.cache}
}

func (ix *Index) isANDQuery(term string) bool {
	if strings.ContainsRune(term, ' ') {
		return true
	}
	return ix.opts.SplitWideSpace && strings.ContainsRune(term, '　')
}

func (ix *Index) splitKeywords(term string) []string {
	split := func(r rune) bool {
		if r == ' ' {
			return true
		}
		return ix.opts.SplitWideSpace && r == '　'
	}
	return strings.FieldsFunc(term, split)
}

// Dump serialises the document store into the current snapshot schema.
func (ix *Index) Dump() ([]byte, error) {
	return codec.Encode(ix.docs, ix.nDocs)
}

// Load replaces the engine's contents with a decoded snapshot, accepting the
// current schema or migrating the legacy one, then rebuilds the derived
// postings index and cache from scratch.
func (ix *Index) Load(data []byte) error {
	docs, nDocs, err := codec.Decode(data)
	if err != nil {
		return err
	}

	ix.Clear()
	for name, aliases := range docs {
		ix.docs[name] = aliases
		ix.insertName(name)
		ix.warmCache(name, aliases)
		if ix.opts.Variant == VariantPostings {
			ix.idx.Add(name, aliases)
		}
	}
	ix.nDocs = nDocs
	if ix.nDocs != len(ix.docs) {
		// The count is authoritative data but the map is the source of
		// truth after migration; reconcile in favour of the map.
		ix.nDocs = len(ix.docs)
	}
	return nil
}
