// Package benchmark exercises the hot paths of the search engine: indexing,
// ranked lookups, AND lookups, and snapshot round trips.
//
// Run with:
//
//	go test -bench=. -benchmem ./test/benchmark/...
package benchmark

import (
	"fmt"
	"testing"

	"github.com/kgoto/aliasearch/internal/engine"
)

func corpus(n int) []engine.Document {
	docs := make([]engine.Document, 0, n)
	for i := 0; i < n; i++ {
		docs = append(docs, engine.Document{
			Name:    fmt.Sprintf("brewery %04d east", i),
			Aliases: []string{fmt.Sprintf("brew%04d", i), "beer", "lager"},
		})
	}
	return docs
}

func seeded(variant engine.Variant, n int) *engine.Index {
	ix := engine.New(engine.Options{Variant: variant})
	ix.AddMany(corpus(n))
	return ix
}

func BenchmarkAdd(b *testing.B) {
	docs := corpus(1000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ix := engine.New(engine.Options{})
		ix.AddMany(docs)
	}
}

func BenchmarkSearchPostings(b *testing.B) {
	for _, size := range []int{100, 1000, 5000} {
		ix := seeded(engine.VariantPostings, size)
		b.Run(fmt.Sprintf("docs_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				ix.Search([]string{"brewery"}, 10)
			}
		})
	}
}

func BenchmarkSearchScan(b *testing.B) {
	for _, size := range []int{100, 1000, 5000} {
		ix := seeded(engine.VariantScan, size)
		b.Run(fmt.Sprintf("docs_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				ix.Search([]string{"brewery"}, 10)
			}
		})
	}
}

func BenchmarkSearchAND(b *testing.B) {
	ix := seeded(engine.VariantPostings, 1000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ix.Search([]string{"brewery east"}, 10)
	}
}

func BenchmarkSearchTransliterated(b *testing.B) {
	ix := seeded(engine.VariantPostings, 1000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ix.Search([]string{"sushi"}, 10)
	}
}

func BenchmarkDump(b *testing.B) {
	ix := seeded(engine.VariantPostings, 1000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ix.Dump(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLoad(b *testing.B) {
	src := seeded(engine.VariantPostings, 1000)
	buf, err := src.Dump()
	if err != nil {
		b.Fatal(err)
	}
	dst := engine.New(engine.Options{})
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := dst.Load(buf); err != nil {
			b.Fatal(err)
		}
	}
}
