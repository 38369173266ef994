package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ObservaLosRios/sellos-apl-por-corfo/domain/apl"
	"github.com/ObservaLosRios/sellos-apl-por-corfo/internal/dataset"
	"github.com/ObservaLosRios/sellos-apl-por-corfo/internal/site"
)

func writeManifest(t *testing.T, dir, buildID string) {
	t.Helper()
	manifest := site.Manifest{
		BuildID:     buildID,
		GeneratedAt: time.Now().UTC(),
		Source:      dataset.SourceEmbedded,
		PlotlySrc:   "https://cdn.plot.ly/plotly-2.30.0.min.js",
		Sections:    []site.ManifestSection{{ID: "evolucion", Label: "Evolución anual"}},
	}
	data, err := json.Marshal(manifest)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), data, 0o644))
}

func newTestServer(t *testing.T, siteDir string) *Server {
	t.Helper()
	bundle, err := dataset.NewLoader("").Load()
	require.NoError(t, err)
	return NewServer(bundle, Options{SiteDir: siteDir, GinMode: gin.TestMode})
}

func get(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.Router().ServeHTTP(w, req)

	var body map[string]interface{}
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestServesGeneratedPages(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>panel</html>"), 0o644))

	s := newTestServer(t, dir)

	w, _ := get(t, s, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "panel")

	w, _ = get(t, s, "/index.html")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStatusReportsBuild(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "build-123")

	s := newTestServer(t, dir)
	w, body := get(t, s, "/api/status")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, dataset.SourceEmbedded, body["source"])
	assert.Equal(t, float64(len(apl.DatasetNames())), body["datasets"])
	assert.Equal(t, true, body["site_built"])
	assert.Equal(t, "build-123", body["build_id"])
	assert.Equal(t, float64(1), body["sections"])
}

func TestStatusWithoutManifest(t *testing.T) {
	s := newTestServer(t, t.TempDir())
	w, body := get(t, s, "/api/status")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["site_built"])
	assert.NotContains(t, body, "build_id")
}

func TestStatusPicksUpRebuild(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "build-one")
	s := newTestServer(t, dir)

	_, body := get(t, s, "/api/status")
	require.Equal(t, "build-one", body["build_id"])

	writeManifest(t, dir, "build-two")
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "manifest.json"), later, later))

	_, body = get(t, s, "/api/status")
	assert.Equal(t, "build-two", body["build_id"])
}

func TestDatasetListing(t *testing.T) {
	s := newTestServer(t, t.TempDir())
	w, body := get(t, s, "/api/datasets")

	require.Equal(t, http.StatusOK, w.Code)
	items, ok := body["datasets"].([]interface{})
	require.True(t, ok)
	require.Len(t, items, len(apl.DatasetNames()))

	first, ok := items[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, apl.DatasetYearlySummary, first["name"])
	assert.Greater(t, first["rows"], float64(0))
}

func TestDatasetByName(t *testing.T) {
	s := newTestServer(t, t.TempDir())
	w, body := get(t, s, "/api/datasets/"+apl.DatasetAdhesionByYear)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, apl.DatasetAdhesionByYear, body["name"])

	rows, ok := body["rows"].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, rows)
	firstRow, ok := rows[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(apl.FirstAdhesionYear), firstRow[apl.ColYear])
}

func TestDatasetNotFound(t *testing.T) {
	s := newTestServer(t, t.TempDir())
	w, body := get(t, s, "/api/datasets/no_such_dataset")

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, body["error"], "no_such_dataset")
	assert.NotEmpty(t, body["code"])
}
