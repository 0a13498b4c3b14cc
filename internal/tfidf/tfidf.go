// Package tfidf computes TF-IDF weights over the corpus, independently for
// the raw-term and lemma term spaces, and persists per-document weight files.
package tfidf

import "math"

// TermFrequency returns each term's relative frequency within the token
// sequence: count/len(tokens), over the un-deduplicated token count.
func TermFrequency(tokens []string) map[string]float64 {
	if len(tokens) == 0 {
		return map[string]float64{}
	}
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	total := float64(len(tokens))
	tf := make(map[string]float64, len(counts))
	for term, count := range counts {
		tf[term] = float64(count) / total
	}
	return tf
}

// IDF returns the smoothed inverse document frequency
// ln(N/(1+df)) + 1, a corpus-wide constant per term.
func IDF(totalDocs, docFreq int) float64 {
	return math.Log(float64(totalDocs)/float64(1+docFreq)) + 1
}

// TFIDF combines a document-local frequency with the corpus-wide idf.
func TFIDF(tf, idf float64) float64 {
	return tf * idf
}
