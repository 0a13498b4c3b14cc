package tfidf

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LudwigAndreas/Infopoisk/internal/corpus"
)

func writeDoc(t *testing.T, dir, name string, lines ...string) {
	t.Helper()
	content := strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestEngineRun(t *testing.T) {
	corpusDir := t.TempDir()
	writeDoc(t, corpusDir, "tokens_1.txt", "a", "a", "b")
	writeDoc(t, corpusDir, "tokens_2.txt", "b", "c")
	writeDoc(t, corpusDir, "tokens_3.txt", "a", "c", "c")

	outDir := filepath.Join(t.TempDir(), "out")
	engine := NewEngine(corpus.NewDirSource(corpusDir), 4)
	require.NoError(t, engine.Run(context.Background(), outDir))

	// Every term appears in 2 of 3 documents, so idf = ln(3/3)+1 = 1 and the
	// tfidf weight equals the raw term frequency.
	data, err := os.ReadFile(filepath.Join(outDir, "tfidf_terms_1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "a 1.000000 0.666667\nb 1.000000 0.333333\n", string(data))

	data, err = os.ReadFile(filepath.Join(outDir, "tfidf_terms_2.txt"))
	require.NoError(t, err)
	assert.Equal(t, "b 1.000000 0.500000\nc 1.000000 0.500000\n", string(data))

	// With no lemma artifacts the lemma space collapses onto the raw terms.
	data, err = os.ReadFile(filepath.Join(outDir, "tfidf_lemmas_3.txt"))
	require.NoError(t, err)
	assert.Equal(t, "a 1.000000 0.333333\nc 1.000000 0.666667\n", string(data))
}

func TestEngineRunWithLemmas(t *testing.T) {
	corpusDir := t.TempDir()
	writeDoc(t, corpusDir, "tokens_1.txt", "ran", "running")
	writeDoc(t, corpusDir, "lemmas_1.txt", "run ran running")
	writeDoc(t, corpusDir, "tokens_2.txt", "walk")
	writeDoc(t, corpusDir, "lemmas_2.txt", "walk walk")

	outDir := filepath.Join(t.TempDir(), "out")
	engine := NewEngine(corpus.NewDirSource(corpusDir), 2)
	require.NoError(t, engine.Run(context.Background(), outDir))

	// Both surface forms fold onto one lemma: tf(run, doc1) = 1,
	// idf(run) = ln(2/2)+1 = 1.
	data, err := os.ReadFile(filepath.Join(outDir, "tfidf_lemmas_1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "run 1.000000 1.000000\n", string(data))

	// The raw-term space keeps the surfaces apart.
	data, err = os.ReadFile(filepath.Join(outDir, "tfidf_terms_1.txt"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 2)
}

func TestEngineRunEmptyCorpus(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	engine := NewEngine(corpus.NewDirSource(t.TempDir()), 2)
	require.NoError(t, engine.Run(context.Background(), outDir))

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
