package ranker

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/LudwigAndreas/Infopoisk/pkg/errors"
)

func writeVectors(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadVectors(t *testing.T) {
	dir := t.TempDir()
	writeVectors(t, dir, "tfidf_terms_1.txt", "apple 1.200000 0.600000\nbanana 1.000000 0.400000\n")
	writeVectors(t, dir, "tfidf_terms_2.txt", "apple 1.200000 0.300000\n")
	writeVectors(t, dir, "tfidf_lemmas_1.txt", "apple 2.000000 0.900000\n")
	writeVectors(t, dir, "notes.txt", "ignored\n")

	docVectors, idf, err := LoadVectors(dir, SpaceTerms)
	require.NoError(t, err)

	require.Len(t, docVectors, 2)
	assert.InDelta(t, 0.6, docVectors["1"]["apple"], 1e-9)
	assert.InDelta(t, 0.4, docVectors["1"]["banana"], 1e-9)
	assert.InDelta(t, 0.3, docVectors["2"]["apple"], 1e-9)

	// idf comes from the terms files, not the lemma file of the same name.
	assert.InDelta(t, 1.2, idf["apple"], 1e-9)
	assert.InDelta(t, 1.0, idf["banana"], 1e-9)
}

func TestLoadVectorsLemmaSpace(t *testing.T) {
	dir := t.TempDir()
	writeVectors(t, dir, "tfidf_terms_1.txt", "apple 1.200000 0.600000\n")
	writeVectors(t, dir, "tfidf_lemmas_1.txt", "fruit 2.000000 0.900000\n")

	docVectors, idf, err := LoadVectors(dir, SpaceLemmas)
	require.NoError(t, err)
	require.Len(t, docVectors, 1)
	assert.InDelta(t, 0.9, docVectors["1"]["fruit"], 1e-9)
	assert.NotContains(t, idf, "apple")
}

func TestLoadVectorsMissing(t *testing.T) {
	_, _, err := LoadVectors(filepath.Join(t.TempDir(), "nope"), SpaceTerms)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrVectorsMissing))

	// Directory exists but holds no matching artifacts.
	_, _, err = LoadVectors(t.TempDir(), SpaceTerms)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrVectorsMissing))
}

func TestLoadVectorsMalformed(t *testing.T) {
	dir := t.TempDir()
	writeVectors(t, dir, "tfidf_terms_1.txt", "apple 1.2\n")

	_, _, err := LoadVectors(dir, SpaceTerms)
	assert.Error(t, err)
}

func TestSpaceString(t *testing.T) {
	assert.Equal(t, "terms", SpaceTerms.String())
	assert.Equal(t, "lemmas", SpaceLemmas.String())
}
