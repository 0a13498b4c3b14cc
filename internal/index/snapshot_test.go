package index

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LudwigAndreas/Infopoisk/internal/catalog"
	"github.com/LudwigAndreas/Infopoisk/internal/corpus"
	apperrors "github.com/LudwigAndreas/Infopoisk/pkg/errors"
)

func TestSnapshotRoundTrip(t *testing.T) {
	cat := catalog.New([]catalog.Document{
		{ID: "1", URL: "u1"},
		{ID: "2", URL: "u2"},
	})
	inv := NewInverted()
	inv.Add("apple", "1")
	inv.Add("apple", "2")
	inv.Add("banana", "2")

	path := filepath.Join(t.TempDir(), "snapshots", "index.json")
	require.NoError(t, Save(path, cat, inv))

	loadedCat, loadedInv, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cat.IDs(), loadedCat.IDs())
	assert.True(t, inv.Equal(loadedInv))
}

func TestLoadMissing(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "none.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrMissingArtifact))
}

func TestLoadCorrupt(t *testing.T) {
	dir := t.TempDir()

	badJSON := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badJSON, []byte("{not json"), 0o644))
	_, _, err := Load(badJSON)
	assert.True(t, errors.Is(err, apperrors.ErrCorruptSnapshot))

	missingFields := filepath.Join(dir, "partial.json")
	require.NoError(t, os.WriteFile(missingFields, []byte(`{"doc_urls":{"1":"u1"}}`), 0o644))
	_, _, err = Load(missingFields)
	assert.True(t, errors.Is(err, apperrors.ErrCorruptSnapshot))
}

func TestStoreOpenRebuildsCorruptSnapshot(t *testing.T) {
	corpusDir, cat := fixtureCorpus(t)
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	store := NewStore(path, NewBuilder(corpus.NewDirSource(corpusDir), 2))
	gotCat, gotInv, err := store.Open(context.Background(), cat, false)
	require.NoError(t, err)
	assert.Equal(t, cat.IDs(), gotCat.IDs())
	assert.Equal(t, []string{"1"}, gotInv.Postings("apple").IDs())

	// The rebuilt snapshot replaced the corrupt file on disk.
	reloadedCat, reloadedInv, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cat.IDs(), reloadedCat.IDs())
	assert.True(t, gotInv.Equal(reloadedInv))
}

func TestStoreOpenPrefersSnapshot(t *testing.T) {
	corpusDir, cat := fixtureCorpus(t)
	path := filepath.Join(t.TempDir(), "index.json")
	store := NewStore(path, NewBuilder(corpus.NewDirSource(corpusDir), 2))

	_, first, err := store.Open(context.Background(), cat, false)
	require.NoError(t, err)

	// Remove the corpus; a second open must come from the snapshot alone.
	for _, name := range []string{"tokens_1.txt", "lemmas_1.txt", "tokens_2.txt", "lemmas_2.txt"} {
		require.NoError(t, os.Remove(filepath.Join(corpusDir, name)))
	}
	_, second, err := store.Open(context.Background(), cat, false)
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
}

func TestStoreOpenForceRebuild(t *testing.T) {
	corpusDir, cat := fixtureCorpus(t)
	path := filepath.Join(t.TempDir(), "index.json")
	store := NewStore(path, NewBuilder(corpus.NewDirSource(corpusDir), 2))

	_, _, err := store.Open(context.Background(), cat, false)
	require.NoError(t, err)

	// New artifact appears; force picks it up even with a valid snapshot.
	writeFixture(t, corpusDir, "tokens_2.txt", "cherry\ndate\n")
	_, inv, err := store.Open(context.Background(), cat, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, inv.Postings("date").IDs())
}
