// Package fetcher downloads extract files over HTTP and FTP.
package fetcher

import (
	"context"
	"io"
)

// Fetcher defines the interface for downloading remote extracts.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path.
	// Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}
