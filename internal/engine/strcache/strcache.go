// Package strcache memoises the lowercase and hiragana forms of strings seen
// by the search engine, and keeps an alias-to-document reverse index so the
// right entries can be dropped when a document goes away. Everything here is
// derived state: losing the cache is always safe, it is rebuilt from the
// document store.
package strcache

import (
	"strings"
	"unicode"

	"github.com/gojp/kana"
)

// Cache holds memoised string forms. It is not safe for concurrent use;
// callers serialise access together with the rest of the engine.
type Cache struct {
	lower     map[string]string
	hiragana  map[string]string
	aliasDocs map[string][]string
}

func New() *Cache {
	return &Cache{
		lower:     make(map[string]string),
		hiragana:  make(map[string]string),
		aliasDocs: make(map[string][]string),
	}
}

// Lowercase returns the cached lowercase form of s, computing it on first use.
func (c *Cache) Lowercase(s string) string {
	if v, ok := c.lower[s]; ok {
		return v
	}
	v := strings.ToLower(s)
	c.lower[s] = v
	return v
}

// Hiragana returns the cached hiragana transliteration of s. Only pure-ASCII
// strings are transliterated: non-ASCII input is assumed to be native script
// already, and ok is false for it. This is policy, not an error.
func (c *Cache) Hiragana(s string) (string, bool) {
	if !isASCII(s) {
		return "", false
	}
	if v, ok := c.hiragana[s]; ok {
		return v, true
	}
	v := ToHiragana(s)
	c.hiragana[s] = v
	return v, true
}

// ToHiragana converts a romanised string into its hiragana phonetic form.
// It is the uncached conversion used for query terms, which are transient.
func ToHiragana(s string) string {
	return kana.RomajiToHiragana(strings.ToLower(s))
}

// Link records that alias belongs to doc in the reverse index.
func (c *Cache) Link(alias, doc string) {
	c.aliasDocs[alias] = append(c.aliasDocs[alias], doc)
}

// Unlink removes doc from alias's reverse-index entry, dropping the entry
// entirely once its document list is empty.
func (c *Cache) Unlink(alias, doc string) {
	docs, ok := c.aliasDocs[alias]
	if !ok {
		return
	}
	kept := docs[:0]
	for _, d := range docs {
		if d != doc {
			kept = append(kept, d)
		}
	}
	if len(kept) == 0 {
		delete(c.aliasDocs, alias)
		return
	}
	c.aliasDocs[alias] = kept
}

// DocsForAlias returns the document names currently linked to alias.
func (c *Cache) DocsForAlias(alias string) []string {
	return c.aliasDocs[alias]
}

// Evict drops the cached forms for a document's name and aliases and unlinks
// each alias.
func (c *Cache) Evict(doc string, aliases []string) {
	delete(c.lower, doc)
	delete(c.hiragana, doc)
	for _, alias := range aliases {
		delete(c.lower, alias)
		delete(c.hiragana, alias)
		c.Unlink(alias, doc)
	}
}

// Clear drops all cached forms and the reverse index.
func (c *Cache) Clear() {
	c.lower = make(map[string]string)
	c.hiragana = make(map[string]string)
	c.aliasDocs = make(map[string][]string)
}

// Len reports the number of cached lowercase entries. Used by tests and
// engine stats.
func (c *Cache) Len() int {
	return len(c.lower)
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
