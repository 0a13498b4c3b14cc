package tfidf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTermFrequency(t *testing.T) {
	tf := TermFrequency([]string{"a", "a", "b"})
	assert.InDelta(t, 2.0/3.0, tf["a"], 1e-9)
	assert.InDelta(t, 1.0/3.0, tf["b"], 1e-9)
	assert.Len(t, tf, 2)

	assert.Empty(t, TermFrequency(nil))
}

func TestIDF(t *testing.T) {
	// Term in 2 of 3 documents: ln(3/3)+1 = 1.
	assert.InDelta(t, 1.0, IDF(3, 2), 1e-9)
	assert.InDelta(t, math.Log(2)+1, IDF(10, 4), 1e-9)
	// A term in every document is down-weighted below 1.
	assert.Less(t, IDF(5, 5), 1.0)
}

func TestTFIDF(t *testing.T) {
	assert.InDelta(t, 2.0/3.0, TFIDF(2.0/3.0, 1.0), 1e-9)
	assert.Zero(t, TFIDF(0, 5))
}
