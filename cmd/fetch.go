package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/petroverse/ingest-cli/internal/fetcher"
)

var fetchDir string

var fetchCmd = &cobra.Command{
	Use:   "fetch [url]...",
	Short: "Download monthly extract files",
	Long:  "Downloads extract files over HTTP(S) or FTP. With no arguments, downloads every configured source. ZIP archives are unpacked to their tabular entries when fetch.unzip is set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		sources := args
		if len(sources) == 0 {
			sources = cfg.Fetch.Sources
		}
		if len(sources) == 0 {
			return eris.New("no sources given and none configured (fetch.sources)")
		}

		destDir := fetchDir
		if destDir == "" {
			destDir = cfg.Fetch.DownloadDir
		}
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return eris.Wrap(err, "create download dir")
		}

		httpF := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:  cfg.Fetch.UserAgent,
			Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Fetch.MaxRetries,
			RatePerSec: cfg.Fetch.RatePerSec,
		})
		ftpF := fetcher.NewFTPFetcher(fetcher.FTPOptions{
			Timeout: time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		})

		for _, src := range sources {
			dest, err := fetchSource(ctx, httpF, ftpF, src, destDir)
			if err != nil {
				return eris.Wrapf(err, "fetch %s", src)
			}
			for _, d := range dest {
				fmt.Println(d)
			}
		}

		return nil
	},
}

// fetchSource downloads one URL and, for ZIP archives, unpacks the tabular
// entries. Returns the local paths ready for normalize.
func fetchSource(ctx context.Context, httpF *fetcher.HTTPFetcher, ftpF *fetcher.FTPFetcher, src, destDir string) ([]string, error) {
	var f fetcher.Fetcher
	switch {
	case strings.HasPrefix(src, "ftp://"):
		f = ftpF
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		f = httpF
	default:
		return nil, eris.Errorf("unsupported scheme in %q", src)
	}

	dest := filepath.Join(destDir, fileNameFromURL(src))
	n, err := f.DownloadToFile(ctx, src, dest)
	if err != nil {
		return nil, err
	}
	zap.L().Info("downloaded", zap.String("url", src), zap.String("path", dest), zap.Int64("bytes", n))

	if cfg.Fetch.Unzip && strings.EqualFold(filepath.Ext(dest), ".zip") {
		extracted, err := fetcher.ExtractTabular(dest, destDir)
		if err != nil {
			return nil, err
		}
		return extracted, nil
	}

	return []string{dest}, nil
}

// fileNameFromURL derives a local file name from the URL path, falling
// back to a timestamped name when the path has none.
func fileNameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err == nil {
		if name := path.Base(u.Path); name != "" && name != "." && name != "/" {
			return name
		}
	}
	return fmt.Sprintf("extract_%s", time.Now().Format("20060102_150405"))
}

func init() {
	fetchCmd.Flags().StringVar(&fetchDir, "dir", "", "download directory (default from config)")
	rootCmd.AddCommand(fetchCmd)
}
