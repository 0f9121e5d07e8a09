//go:build !integration

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petroverse/ingest-cli/internal/fetcher"
)

func TestFetchSource_HTTP(t *testing.T) {
	setTestConfig(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Company,Product,Year,Month,Volume\n"))
	}))
	defer srv.Close()

	httpF := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{RatePerSec: 1000})
	destDir := t.TempDir()

	paths, err := fetchSource(context.Background(), httpF, nil, srv.URL+"/2026-02.csv", destDir)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(destDir, "2026-02.csv"), paths[0])

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "Company,Product")
}

func TestFetchSource_UnsupportedScheme(t *testing.T) {
	setTestConfig(t)

	_, err := fetchSource(context.Background(), nil, nil, "file:///tmp/extract.csv", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported scheme")
}

func TestFetchSource_CancelledContext(t *testing.T) {
	setTestConfig(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	httpF := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{RatePerSec: 1000})
	_, err := fetchSource(ctx, httpF, nil, srv.URL+"/a.csv", t.TempDir())
	require.Error(t, err)
}
