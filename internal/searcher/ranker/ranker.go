// Package ranker implements ranked retrieval over persisted TF-IDF vectors:
// sparse cosine similarity between a weighted query vector and every document
// vector, with deterministic ordering.
package ranker

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/LudwigAndreas/Infopoisk/internal/catalog"
	"github.com/LudwigAndreas/Infopoisk/internal/corpus"
)

// Vector is a sparse term→weight mapping; absent terms weigh 0.
type Vector map[string]float64

// ScoredDoc is one ranked result.
type ScoredDoc struct {
	DocID string  `json:"doc_id"`
	URL   string  `json:"url"`
	Score float64 `json:"score"`
}

// QueryVector turns free text into a TF-IDF weighted vector. The tokenizer
// is deliberately more permissive than document-side indexing: lowercase and
// split on non-alphanumerics, with no stopword or alphabetic-only filtering.
// When lemmas is non-nil, tokens are mapped into the lemma term space first.
// Terms absent from the idf table are dropped, not zero-weighted.
func QueryVector(text string, idf map[string]float64, lemmas *corpus.LemmaTable) Vector {
	tokens := tokenize(text)
	if lemmas != nil {
		tokens = lemmas.Apply(tokens)
	}
	if len(tokens) == 0 {
		return Vector{}
	}

	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	total := float64(len(tokens))

	vec := make(Vector, len(counts))
	for term, count := range counts {
		weight, ok := idf[term]
		if !ok {
			continue
		}
		vec[term] = float64(count) / total * weight
	}
	return vec
}

// CosineSimilarity returns dot(a,b)/(|a|*|b|), summing over the union of
// both key sets with missing keys as 0, and 0.0 when either norm is zero.
func CosineSimilarity(a, b Vector) float64 {
	var dot float64
	small, large := a, b
	if len(large) < len(small) {
		small, large = large, small
	}
	for term, wa := range small {
		dot += wa * large[term]
	}
	normA := norm(a)
	normB := norm(b)
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (normA * normB)
}

func norm(v Vector) float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// Rank scores every document vector against the query vector, discards
// scores ≤ 0, sorts by descending score with ascending document id as the
// tie-break, and returns the first topK results joined with the catalog.
func Rank(query Vector, docVectors map[string]Vector, cat *catalog.Catalog, topK int) []ScoredDoc {
	scored := make([]ScoredDoc, 0, len(docVectors))
	for docID, vec := range docVectors {
		score := CosineSimilarity(query, vec)
		if score <= 0 {
			continue
		}
		url, _ := cat.URL(docID)
		scored = append(scored, ScoredDoc{DocID: docID, URL: url, Score: score})
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return catalog.IDLess(scored[i].DocID, scored[j].DocID)
	})
	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

// tokenize lowercases and splits on any rune that is not a letter or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
