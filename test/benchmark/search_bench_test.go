// Package benchmark contains Go benchmarks for the inverted index, the
// boolean query evaluator, and cosine ranking, measuring throughput and
// allocation behaviour.
package benchmark

import (
	"fmt"
	"testing"

	"github.com/LudwigAndreas/Infopoisk/internal/catalog"
	"github.com/LudwigAndreas/Infopoisk/internal/index"
	"github.com/LudwigAndreas/Infopoisk/internal/searcher/executor"
	"github.com/LudwigAndreas/Infopoisk/internal/searcher/ranker"
)

var terms = []string{"distributed", "search", "retrieval", "ranking", "index", "query", "vector", "corpus"}

func buildFixture(docs int) (*index.Inverted, *catalog.Catalog) {
	inv := index.NewInverted()
	catDocs := make([]catalog.Document, 0, docs)
	for i := 0; i < docs; i++ {
		docID := fmt.Sprintf("%d", i)
		catDocs = append(catDocs, catalog.Document{
			ID:  docID,
			URL: fmt.Sprintf("http://example.com/doc/%d", i),
		})
		inv.Add(terms[i%len(terms)], docID)
		inv.Add(terms[(i+1)%len(terms)], docID)
		inv.Add(terms[(i+3)%len(terms)], docID)
	}
	return inv, catalog.New(catDocs)
}

// BenchmarkInvertedAdd measures per-posting insert throughput.
func BenchmarkInvertedAdd(b *testing.B) {
	inv := index.NewInverted()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		inv.Add(terms[i%len(terms)], fmt.Sprintf("%d", i))
	}
}

// BenchmarkEvaluateTerm measures single-term lookup latency over 10 000
// documents.
func BenchmarkEvaluateTerm(b *testing.B) {
	inv, cat := buildFixture(10000)
	e := executor.New(inv, cat)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		set, err := e.Evaluate(terms[i%len(terms)])
		if err != nil {
			b.Fatal(err)
		}
		_ = set
	}
}

// BenchmarkEvaluateCompound measures evaluation of a nested query with all
// three operators.
func BenchmarkEvaluateCompound(b *testing.B) {
	inv, cat := buildFixture(10000)
	e := executor.New(inv, cat)
	query := "(search AND ranking) OR (index AND NOT query)"

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		set, err := e.Evaluate(query)
		if err != nil {
			b.Fatal(err)
		}
		_ = set
	}
}

// BenchmarkEvaluateParallel measures concurrent read throughput against one
// immutable index.
func BenchmarkEvaluateParallel(b *testing.B) {
	inv, cat := buildFixture(10000)
	e := executor.New(inv, cat)

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			set, err := e.Evaluate("search AND retrieval")
			if err != nil {
				b.Fatal(err)
			}
			_ = set
		}
	})
}

// BenchmarkRank measures cosine ranking latency at various corpus sizes.
func BenchmarkRank(b *testing.B) {
	sizes := []int{100, 1000, 10000}
	for _, docs := range sizes {
		b.Run(fmt.Sprintf("docs_%d", docs), func(b *testing.B) {
			catDocs := make([]catalog.Document, 0, docs)
			docVectors := make(map[string]ranker.Vector, docs)
			idf := make(map[string]float64, len(terms))
			for i, term := range terms {
				idf[term] = 1.0 + float64(i)/10
			}
			for i := 0; i < docs; i++ {
				docID := fmt.Sprintf("%d", i)
				catDocs = append(catDocs, catalog.Document{ID: docID, URL: "http://example.com/" + docID})
				docVectors[docID] = ranker.Vector{
					terms[i%len(terms)]:     0.6,
					terms[(i+2)%len(terms)]: 0.3,
				}
			}
			cat := catalog.New(catDocs)
			query := ranker.QueryVector("search ranking index", idf, nil)

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				results := ranker.Rank(query, docVectors, cat, 10)
				_ = results
			}
		})
	}
}
