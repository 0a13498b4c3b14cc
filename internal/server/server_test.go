package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LudwigAndreas/Infopoisk/internal/catalog"
	"github.com/LudwigAndreas/Infopoisk/internal/corpus"
	"github.com/LudwigAndreas/Infopoisk/internal/engine"
	"github.com/LudwigAndreas/Infopoisk/internal/tfidf"
	"github.com/LudwigAndreas/Infopoisk/pkg/config"
	"github.com/LudwigAndreas/Infopoisk/pkg/health"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	corpusDir := t.TempDir()
	docs := map[string]string{
		"tokens_1.txt": "apple\nbanana\n",
		"tokens_2.txt": "banana\ncherry\n",
	}
	for name, content := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(corpusDir, name), []byte(content), 0o644))
	}
	tfidfDir := filepath.Join(t.TempDir(), "tfidf")
	require.NoError(t, tfidf.NewEngine(corpus.NewDirSource(corpusDir), 2).Run(context.Background(), tfidfDir))

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Corpus.DataDir = corpusDir
	cfg.Index.SnapshotFile = filepath.Join(t.TempDir(), "inverted_index.json")
	cfg.TFIDF.OutputDir = tfidfDir

	loader := func(ctx context.Context) (*catalog.Catalog, error) {
		return catalog.New([]catalog.Document{
			{ID: "1", URL: "u1"},
			{ID: "2", URL: "u2"},
		}), nil
	}
	eng := engine.New(cfg, loader, engine.Deps{})
	require.NoError(t, eng.Rebuild(context.Background(), false))

	checker := health.NewChecker()
	checker.Register("snapshot", func(ctx context.Context) health.ComponentHealth {
		if eng.Snapshot() == nil {
			return health.ComponentHealth{Status: health.StatusDown}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	srv := New(cfg, eng, nil, checker)
	ts := httptest.NewServer(srv.httpSrv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestBooleanSearchEndpoint(t *testing.T) {
	ts := testServer(t)

	var body searchResponse
	status := getJSON(t, ts.URL+"/api/v1/search?q=banana", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "banana", body.Query)
	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Results, 2)
	assert.Equal(t, "1", body.Results[0].DocID)
	assert.Equal(t, "2", body.Results[1].DocID)
}

func TestBooleanSearchEndpointInvalidQuery(t *testing.T) {
	ts := testServer(t)

	var body errorResponse
	status := getJSON(t, ts.URL+"/api/v1/search?q=apple+AND", &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, body.Error)
	assert.Empty(t, body.Results)
}

func TestRankedSearchEndpoint(t *testing.T) {
	ts := testServer(t)

	var body rankResponse
	status := getJSON(t, ts.URL+"/api/v1/rank?q=cherry&limit=5", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "terms", body.TermSpace)
	require.NotEmpty(t, body.Results)
	assert.Equal(t, "2", body.Results[0].DocID)

	status = getJSON(t, ts.URL+"/api/v1/rank?q=cherry&space=lemmas", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "lemmas", body.TermSpace)
}

func TestRebuildEndpoint(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Post(ts.URL+"/api/v1/rebuild", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "rebuilt", body["status"])
	assert.EqualValues(t, 2, body["documents"])
}

func TestRebuildEndpointRejectsGet(t *testing.T) {
	ts := testServer(t)
	resp, err := http.Get(ts.URL + "/api/v1/rebuild")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var report health.Report
	status := getJSON(t, ts.URL+"/readyz", &report)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, health.StatusUp, report.Status)
	assert.Contains(t, report.Components, "snapshot")
}
