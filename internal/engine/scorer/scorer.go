// Package scorer ranks candidate documents for the postings-index search
// variant. It combines a length-normalised relevance score with a discrete
// match-priority class per document, under a bounded work budget.
package scorer

import (
	"container/heap"
	"math"
	"sort"
	"strings"

	"github.com/kgoto/aliasearch/internal/engine/postings"
	"github.com/kgoto/aliasearch/internal/engine/tokenizer"
)

const (
	k1 = 1.2
	b  = 0.75

	// Flat bonuses for verbatim query terms hitting the document directly.
	nameExactBonus = 10.0
	substringBonus = 5.0

	// Work-budget multipliers: stop visiting candidates once visits exceed
	// visitBudgetFactor*limit and at least scoredFloorFactor*limit distinct
	// documents are already scored.
	visitBudgetFactor = 10
	scoredFloorFactor = 2

	// Bounded top-K selection only pays off for small limits.
	heapLimitCeiling = 100
)

type candidate struct {
	name  string
	rank  Priority
	score float64
}

// Rank scores every document reachable from the expanded query against the
// postings index and returns up to limit names, best first. aliasesOf
// resolves a document's alias list for the substring bonus.
func Rank(q *Query, idx *postings.Index, aliasesOf func(name string) []string, limit int) []string {
	nDocs := idx.DocCount()
	if nDocs == 0 || len(q.Tokens) == 0 || limit <= 0 {
		return nil
	}
	avgLen := idx.AvgDocLen()

	scores := make(map[string]float64)
	best := make(map[string]Priority)
	visits := 0

	for _, token := range q.Tokens {
		list := idx.List(token)
		if len(list) == 0 {
			continue
		}
		df := float64(len(list))
		idf := math.Log((float64(nDocs)-df+0.5)/(df+0.5) + 1)
		verbatim := q.Verbatim(token)
		tf := 1.0
		if verbatim {
			tf = 2.0
		}
		tokenRunes := tokenizer.RuneLen(token)

		for _, name := range list {
			if visits > visitBudgetFactor*limit && len(scores) >= scoredFloorFactor*limit {
				break
			}
			visits++

			docLen := float64(idx.DocLen(name))
			scores[name] += idf * tf * (k1 + 1) / (tf + k1*(1-b+b*docLen/avgLen))

			cls := classify(q, token, name, verbatim, tokenRunes)
			if prev, ok := best[name]; !ok || cls < prev {
				best[name] = cls
			}
		}
	}

	for name := range scores {
		scores[name] += bonuses(q, name, aliasesOf(name))
	}

	if len(scores) > scoredFloorFactor*limit && limit < heapLimitCeiling {
		return selectTopK(scores, best, limit)
	}

	all := make([]candidate, 0, len(scores))
	for name, score := range scores {
		all = append(all, candidate{name: name, rank: best[name], score: score})
	}
	sort.Slice(all, func(i, j int) bool {
		return better(all[i], all[j])
	})
	if len(all) > limit {
		all = all[:limit]
	}
	ranked := make([]string, len(all))
	for i, c := range all {
		ranked[i] = c.name
	}
	return ranked
}

// classify determines the match class a token contributes to a document.
// The postings list keeps no per-alias provenance, so alias classes are
// inferred: tokens derived from (or prefixing) an original query term count
// as alias-prefix, short pure bigrams as alias-partial.
func classify(q *Query, token, name string, verbatim bool, tokenRunes int) Priority {
	if verbatim {
		if token == name {
			return PriorityNameExact
		}
		return PriorityAliasExact
	}
	if tokenRunes <= maxTranslitRunes {
		if strings.HasPrefix(name, token) {
			return PriorityNamePrefix
		}
		if strings.Contains(name, token) {
			return PriorityNamePartial
		}
	}
	if q.fromTerm(token) {
		return PriorityAliasPrefix
	}
	if tokenRunes <= 2 {
		return PriorityAliasPartial
	}
	return priorityUnranked
}

func bonuses(q *Query, name string, aliases []string) float64 {
	var bonus float64
	for term := range q.verbatim {
		if term == name {
			bonus += nameExactBonus
			break
		}
	}
	for term := range q.verbatim {
		if strings.Contains(name, term) {
			bonus += substringBonus
			return bonus
		}
		for _, alias := range aliases {
			if strings.Contains(alias, term) {
				bonus += substringBonus
				return bonus
			}
		}
	}
	return bonus
}

// better orders candidates best-first: priority rank ascending, then score
// descending, then name ascending for deterministic output.
func better(a, b candidate) bool {
	if a.rank != b.rank {
		return a.rank < b.rank
	}
	if a.score != b.score {
		return a.score > b.score
	}
	return a.name < b.name
}

// selectTopK keeps the best limit candidates in a bounded min-priority heap,
// evicting the worst entry whenever capacity is exceeded.
func selectTopK(scores map[string]float64, best map[string]Priority, limit int) []string {
	h := &boundedHeap{}
	heap.Init(h)
	for name, score := range scores {
		heap.Push(h, candidate{name: name, rank: best[name], score: score})
		if h.Len() > limit {
			heap.Pop(h)
		}
	}
	ranked := make([]string, h.Len())
	for i := h.Len() - 1; i >= 0; i-- {
		ranked[i] = heap.Pop(h).(candidate).name
	}
	return ranked
}

// boundedHeap keeps the worst candidate at the root so Pop evicts it.
type boundedHeap []candidate

func (h boundedHeap) Len() int            { return len(h) }
func (h boundedHeap) Less(i, j int) bool  { return better(h[j], h[i]) }
func (h boundedHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *boundedHeap) Push(x interface{}) { *h = append(*h, x.(candidate)) }
func (h *boundedHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
