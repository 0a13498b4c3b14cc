package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/LudwigAndreas/Infopoisk/pkg/errors"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeCatalog(t, "1 http://example.com/a\n2 http://example.com/b\n\n3 http://example.com/c\n")

	cat, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cat.Len())
	url, ok := cat.URL("2")
	require.True(t, ok)
	assert.Equal(t, "http://example.com/b", url)
	assert.True(t, cat.Contains("1"))
	assert.False(t, cat.Contains("99"))
}

func TestLoadFileSkipsMalformedLines(t *testing.T) {
	path := writeCatalog(t, "1 http://example.com/a\njusttoken\n2 http://example.com/b\n")

	cat, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrMissingArtifact))
}

func TestIDsSortedNumerically(t *testing.T) {
	cat := New([]Document{
		{ID: "10", URL: "u10"},
		{ID: "2", URL: "u2"},
		{ID: "1", URL: "u1"},
	})
	assert.Equal(t, []string{"1", "2", "10"}, cat.IDs())
}

func TestIDLess(t *testing.T) {
	assert.True(t, IDLess("2", "10"))
	assert.False(t, IDLess("10", "2"))
	assert.True(t, IDLess("abc", "abd"))
	// Mixed ids fall back to bytewise ordering.
	assert.True(t, IDLess("1", "a"))
}

func TestURLsRoundTrip(t *testing.T) {
	cat := New([]Document{{ID: "1", URL: "u1"}, {ID: "2", URL: "u2"}})
	rebuilt := FromMap(cat.URLs())
	assert.Equal(t, cat.IDs(), rebuilt.IDs())
	for _, id := range cat.IDs() {
		want, _ := cat.URL(id)
		got, _ := rebuilt.URL(id)
		assert.Equal(t, want, got)
	}
}
