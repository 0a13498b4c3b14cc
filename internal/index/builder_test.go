package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LudwigAndreas/Infopoisk/internal/catalog"
	"github.com/LudwigAndreas/Infopoisk/internal/corpus"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func fixtureCorpus(t *testing.T) (string, *catalog.Catalog) {
	t.Helper()
	dir := t.TempDir()
	writeFixture(t, dir, "tokens_1.txt", "apple\nBanana\napple\n")
	writeFixture(t, dir, "lemmas_1.txt", "banana Banana\n")
	writeFixture(t, dir, "tokens_2.txt", "cherry\n")
	writeFixture(t, dir, "lemmas_2.txt", "cherry cherry\n")
	cat := catalog.New([]catalog.Document{
		{ID: "1", URL: "u1"},
		{ID: "2", URL: "u2"},
	})
	return dir, cat
}

func TestBuild(t *testing.T) {
	dir, cat := fixtureCorpus(t)
	b := NewBuilder(corpus.NewDirSource(dir), 4)

	inv, err := b.Build(context.Background(), cat)
	require.NoError(t, err)

	// Tokens and lemma keys land in the same index, lowercased.
	assert.Equal(t, []string{"1"}, inv.Postings("apple").IDs())
	assert.Equal(t, []string{"1"}, inv.Postings("banana").IDs())
	assert.Equal(t, []string{"2"}, inv.Postings("cherry").IDs())
	assert.Equal(t, 3, inv.TermCount())
}

func TestBuildSkipsMissingArtifacts(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "tokens_1.txt", "apple\n")
	cat := catalog.New([]catalog.Document{
		{ID: "1", URL: "u1"},
		{ID: "2", URL: "u2"},
	})
	b := NewBuilder(corpus.NewDirSource(dir), 2)

	inv, err := b.Build(context.Background(), cat)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, inv.Postings("apple").IDs())
	assert.Equal(t, 1, inv.TermCount())
}

func TestBuildCancelled(t *testing.T) {
	dir, cat := fixtureCorpus(t)
	b := NewBuilder(corpus.NewDirSource(dir), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := b.Build(ctx, cat)
	assert.Error(t, err)
}
