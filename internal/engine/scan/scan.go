// Package scan implements the cache-backed search variant: instead of a
// token index it walks the document store directly, classifying each document
// against the query through the memoised lowercase and hiragana forms. It
// also hosts the AND-search path shared by both variants.
package scan

import (
	"sort"
	"strings"

	"github.com/kgoto/aliasearch/internal/engine/scorer"
	"github.com/kgoto/aliasearch/internal/engine/strcache"
)

// Engine scans an ordered view of the document store. Names preserves a
// deterministic iteration order over Docs. Searching populates the cache,
// so even lookups require exclusive access.
type Engine struct {
	Docs  map[string][]string
	Names []string
	Cache *strcache.Cache
}

type ranked struct {
	priority scorer.Priority
	name     string
}

// Unified runs the priority-based scan: each document gets the best match
// class any query term achieves against its name or aliases, candidates are
// collected until twice the limit is reached, then sorted by class.
// Query terms are expected lowercased.
func (e *Engine) Unified(queries []string, limit int) []string {
	if limit <= 0 || len(queries) == 0 {
		return nil
	}
	candidates := make([]ranked, 0, 2*limit)

	for _, name := range e.Names {
		priority, ok := e.classifyDoc(name, e.Docs[name], queries)
		if !ok {
			continue
		}
		candidates = append(candidates, ranked{priority: priority, name: name})
		if len(candidates) >= 2*limit {
			break
		}
	}

	// Stable keeps the document order as the last-resort tiebreak.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].priority < candidates[j].priority
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.name
	}
	return names
}

func (e *Engine) classifyDoc(name string, aliases []string, queries []string) (scorer.Priority, bool) {
	var best scorer.Priority
	found := false
	improve := func(p scorer.Priority) {
		if !found || p < best {
			best = p
			found = true
		}
	}

	for _, query := range queries {
		nameLower := e.Cache.Lowercase(name)
		nameHira, nameHiraOK := e.Cache.Hiragana(name)
		queryHira := strcache.ToHiragana(query)

		if nameLower == query || nameLower == queryHira {
			return scorer.PriorityNameExact, true
		}
		if strings.HasPrefix(nameLower, query) || strings.HasPrefix(nameLower, queryHira) {
			improve(scorer.PriorityNamePrefix)
		}
		if strings.Contains(nameLower, query) || strings.Contains(nameLower, queryHira) ||
			(nameHiraOK && strings.Contains(nameHira, queryHira)) {
			improve(scorer.PriorityNamePartial)
		}

		for _, alias := range aliases {
			aliasLower := e.Cache.Lowercase(alias)
			aliasHira, aliasHiraOK := e.Cache.Hiragana(alias)

			switch {
			case aliasLower == query || aliasLower == queryHira:
				improve(scorer.PriorityAliasExact)
			case strings.HasPrefix(aliasLower, query) || strings.HasPrefix(aliasLower, queryHira):
				improve(scorer.PriorityAliasPrefix)
			case strings.Contains(aliasLower, query) || strings.Contains(aliasLower, queryHira) ||
				(aliasHiraOK && strings.Contains(aliasHira, queryHira)):
				improve(scorer.PriorityAliasPartial)
			}
		}
	}
	return best, found
}

// And emits documents containing every keyword. Pass 1 walks names only,
// pass 2 widens to aliases for documents not already emitted; both passes
// share the limit and deduplicate by document identity.
func (e *Engine) And(keywords []string, limit int) []string {
	if limit <= 0 || len(keywords) == 0 {
		return nil
	}
	matches := make([]string, 0, limit)
	emitted := make(map[string]struct{}, limit)

	for _, name := range e.Names {
		if e.nameContainsAll(name, keywords) {
			emitted[name] = struct{}{}
			matches = append(matches, name)
			if len(matches) >= limit {
				return matches
			}
		}
	}

	for _, name := range e.Names {
		if _, done := emitted[name]; done {
			continue
		}
		if e.docContainsAll(name, e.Docs[name], keywords) {
			emitted[name] = struct{}{}
			matches = append(matches, name)
			if len(matches) >= limit {
				return matches
			}
		}
	}
	return matches
}

func (e *Engine) nameContainsAll(name string, keywords []string) bool {
	nameLower := e.Cache.Lowercase(name)
	nameHira, nameHiraOK := e.Cache.Hiragana(name)
	for _, kw := range keywords {
		if strings.Contains(nameLower, kw) {
			continue
		}
		kwHira := strcache.ToHiragana(kw)
		if strings.Contains(nameLower, kwHira) {
			continue
		}
		if nameHiraOK && strings.Contains(nameHira, kwHira) {
			continue
		}
		return false
	}
	return true
}

func (e *Engine) docContainsAll(name string, aliases []string, keywords []string) bool {
	nameLower := e.Cache.Lowercase(name)
	nameHira, nameHiraOK := e.Cache.Hiragana(name)
	for _, kw := range keywords {
		kwHira := strcache.ToHiragana(kw)
		if strings.Contains(nameLower, kw) || strings.Contains(nameLower, kwHira) {
			continue
		}
		if nameHiraOK && strings.Contains(nameHira, kwHira) {
			continue
		}
		matched := false
		for _, alias := range aliases {
			aliasLower := e.Cache.Lowercase(alias)
			if strings.Contains(aliasLower, kw) || strings.Contains(aliasLower, kwHira) {
				matched = true
				break
			}
			if aliasHira, ok := e.Cache.Hiragana(alias); ok && strings.Contains(aliasHira, kwHira) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}
