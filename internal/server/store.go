package server

import (
	"context"
	"sync"

	"github.com/kgoto/aliasearch/internal/engine"
	"github.com/kgoto/aliasearch/internal/server/qcache"
	"github.com/kgoto/aliasearch/pkg/metrics"
)

// Store serialises all access to the engine behind one mutex. The engine
// itself has no internal locking, and its search path writes to the
// normalisation cache, so searches take the same exclusive lock mutations
// do. Mutations additionally invalidate the Redis query cache.
type Store struct {
	mu      sync.Mutex
	idx     *engine.Index
	qcache  *qcache.Cache
	metrics *metrics.Metrics
}

// NewStore wraps the engine. Both qc and m may be nil.
func NewStore(idx *engine.Index, qc *qcache.Cache, m *metrics.Metrics) *Store {
	return &Store{idx: idx, qcache: qc, metrics: m}
}

func (s *Store) Add(ctx context.Context, name string, aliases []string) {
	s.mu.Lock()
	s.idx.Add(name, aliases)
	s.mu.Unlock()
	s.afterMutation(ctx, "add")
}

func (s *Store) AddMany(ctx context.Context, docs []engine.Document) {
	s.mu.Lock()
	s.idx.AddMany(docs)
	s.mu.Unlock()
	s.afterMutation(ctx, "add_many")
}

func (s *Store) Update(ctx context.Context, name string, aliases []string) bool {
	s.mu.Lock()
	ok := s.idx.Update(name, aliases)
	s.mu.Unlock()
	if ok {
		s.afterMutation(ctx, "update")
	}
	return ok
}

func (s *Store) Remove(ctx context.Context, name string) bool {
	s.mu.Lock()
	ok := s.idx.Remove(name)
	s.mu.Unlock()
	if ok {
		s.afterMutation(ctx, "remove")
	}
	return ok
}

func (s *Store) ReplaceAll(ctx context.Context, docs []engine.Document) {
	s.mu.Lock()
	s.idx.ReplaceAll(docs)
	s.mu.Unlock()
	s.afterMutation(ctx, "replace_all")
}

func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.idx.Clear()
	s.mu.Unlock()
	s.afterMutation(ctx, "clear")
}

// Search consults the query cache when configured, otherwise runs the engine
// directly. The bool reports a cache hit.
func (s *Store) Search(ctx context.Context, terms []string, limit int) ([]string, bool, error) {
	run := func() ([]string, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.idx.Search(terms, limit), nil
	}
	if s.qcache != nil {
		return s.qcache.GetOrCompute(ctx, terms, limit, run)
	}
	names, err := run()
	return names, false, err
}

func (s *Store) Dump() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx.Dump()
}

func (s *Store) Load(ctx context.Context, data []byte) error {
	s.mu.Lock()
	err := s.idx.Load(data)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.afterMutation(ctx, "load")
	return nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx.Len()
}

func (s *Store) Tokens() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx.Tokens()
}

func (s *Store) CacheStats() (hits, misses int64, enabled bool) {
	if s.qcache == nil {
		return 0, 0, false
	}
	hits, misses = s.qcache.Stats()
	return hits, misses, true
}

func (s *Store) afterMutation(ctx context.Context, op string) {
	if s.qcache != nil {
		s.qcache.Invalidate(ctx)
	}
	if s.metrics != nil {
		s.metrics.MutationsTotal.WithLabelValues(op).Inc()
		s.metrics.DocumentsIndexed.Set(float64(s.Len()))
		s.metrics.IndexTokens.Set(float64(s.Tokens()))
	}
}
