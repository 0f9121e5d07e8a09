package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/petroverse/ingest-cli/internal/export"
	"github.com/petroverse/ingest-cli/internal/extract"
	"github.com/petroverse/ingest-cli/internal/model"
	"github.com/petroverse/ingest-cli/internal/normalize"
)

var (
	normalizeOutput   string
	normalizeTables   string
	normalizeSheet    string
	normalizeSkipRows int
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <file>...",
	Short: "Normalize monthly extract files to a standardized CSV",
	Long:  "Parses one or more CSV/XLSX extracts, maps products and companies to canonical names, converts volumes to liters/kg/MT, flags outliers, and writes the combined batch as CSV.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		run, err := st.CreateRun(ctx, args)
		if err != nil {
			return eris.Wrap(err, "create run")
		}

		records, rejections, summary, err := normalizeFiles(args)
		if err != nil {
			if failErr := st.FailRun(ctx, run.ID, err.Error()); failErr != nil {
				zap.L().Error("record run failure", zap.Error(failErr))
			}
			return err
		}

		output := normalizeOutput
		if output == "" {
			output = filepath.Join(cfg.Normalize.OutputDir,
				fmt.Sprintf("normalized_%s.csv", time.Now().Format("20060102_150405")))
		}
		if err := export.WriteCSV(records, output); err != nil {
			if failErr := st.FailRun(ctx, run.ID, err.Error()); failErr != nil {
				zap.L().Error("record run failure", zap.Error(failErr))
			}
			return err
		}

		if err := st.CompleteRun(ctx, run.ID, summary); err != nil {
			return eris.Wrap(err, "complete run")
		}

		fmt.Printf("Run %s\n", run.ID)
		fmt.Printf("Wrote %s\n", output)
		for _, line := range export.SummaryLines(summary) {
			fmt.Println(line)
		}
		logRejectionSample(rejections)

		return nil
	},
}

// normalizeFiles parses every input concurrently, then normalizes the
// merged rows as ONE batch so the outlier threshold sees the whole month,
// not each file in isolation.
func normalizeFiles(paths []string) ([]model.NormalizedRecord, []model.Rejection, model.RunSummary, error) {
	tables, err := loadTables()
	if err != nil {
		return nil, nil, model.RunSummary{}, err
	}

	sheet := normalizeSheet
	if sheet == "" {
		sheet = cfg.Normalize.SheetName
	}
	skipRows := normalizeSkipRows
	if skipRows == 0 {
		skipRows = cfg.Normalize.SkipRows
	}
	opts := extract.Options{
		SheetName: sheet,
		SkipRows:  skipRows,
	}

	parsed := make([][]model.RawRecord, len(paths))
	var g errgroup.Group
	g.SetLimit(4)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			raws, err := extract.ReadFile(path, opts)
			if err != nil {
				return err
			}
			parsed[i] = raws
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, model.RunSummary{}, err
	}

	var raws []model.RawRecord
	for _, p := range parsed {
		raws = append(raws, p...)
	}

	records, rejections, summary := normalize.New(tables).Batch(raws)
	return records, rejections, summary, nil
}

// loadTables returns the lookup tables, preferring the --tables flag, then
// the configured path, then the built-in tables.
func loadTables() (*normalize.Tables, error) {
	path := normalizeTables
	if path == "" {
		path = cfg.Normalize.TablesPath
	}
	if path != "" {
		return normalize.LoadTablesFile(path)
	}
	return normalize.LoadBuiltinTables()
}

// logRejectionSample logs up to a handful of rejections so operators can
// spot new spellings without grepping the full output.
func logRejectionSample(rejections []model.Rejection) {
	const sample = 5
	for i, r := range rejections {
		if i >= sample {
			fmt.Fprintf(os.Stderr, "  ... and %d more rejections\n", len(rejections)-sample)
			break
		}
		fmt.Fprintf(os.Stderr, "  rejected %s row %d: %s (product=%q company=%q)\n",
			r.SourceFile, r.RowNumber, r.Reason, r.RawProduct, r.RawCompany)
	}
}

func init() {
	normalizeCmd.Flags().StringVarP(&normalizeOutput, "output", "o", "", "output CSV path (default normalized_<timestamp>.csv in the configured output dir)")
	normalizeCmd.Flags().StringVar(&normalizeTables, "tables", "", "path to a YAML lookup-tables file overriding the built-in tables")
	normalizeCmd.Flags().StringVar(&normalizeSheet, "sheet", "", "XLSX sheet name (default first sheet)")
	normalizeCmd.Flags().IntVar(&normalizeSkipRows, "skip-rows", 0, "leading rows to drop before the header")
	rootCmd.AddCommand(normalizeCmd)
}
