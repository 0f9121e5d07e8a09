package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/petroverse/ingest-cli/internal/export"
)

var loadCSVOutput string

var loadCmd = &cobra.Command{
	Use:   "load <file>...",
	Short: "Normalize extract files and load the warehouse schema",
	Long:  "Runs the full pipeline: parse, normalize, then replace the fact table in Postgres in one transaction. Dimension rows are upserted; the previous fact rows are truncated.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pg, err := initPostgres(ctx)
		if err != nil {
			return err
		}
		defer pg.Close() //nolint:errcheck
		if err := pg.Migrate(ctx); err != nil {
			return err
		}

		run, err := pg.CreateRun(ctx, args)
		if err != nil {
			return eris.Wrap(err, "create run")
		}

		records, rejections, summary, err := normalizeFiles(args)
		if err != nil {
			if failErr := pg.FailRun(ctx, run.ID, err.Error()); failErr != nil {
				zap.L().Error("record run failure", zap.Error(failErr))
			}
			return err
		}

		loaded, err := pg.LoadBatch(ctx, records)
		if err != nil {
			if failErr := pg.FailRun(ctx, run.ID, err.Error()); failErr != nil {
				zap.L().Error("record run failure", zap.Error(failErr))
			}
			return eris.Wrap(err, "load batch")
		}

		if loadCSVOutput != "" {
			if err := export.WriteCSV(records, loadCSVOutput); err != nil {
				zap.L().Warn("write csv copy failed", zap.Error(err))
			}
		}

		if err := pg.CompleteRun(ctx, run.ID, summary); err != nil {
			return eris.Wrap(err, "complete run")
		}

		fmt.Printf("Run %s\n", run.ID)
		fmt.Printf("Loaded %d fact rows\n", loaded)
		for _, line := range export.SummaryLines(summary) {
			fmt.Println(line)
		}
		logRejectionSample(rejections)

		return nil
	},
}

func init() {
	loadCmd.Flags().StringVar(&loadCSVOutput, "csv", "", "also write the normalized batch to this CSV path")
	loadCmd.Flags().StringVar(&normalizeTables, "tables", "", "path to a YAML lookup-tables file overriding the built-in tables")
	loadCmd.Flags().StringVar(&normalizeSheet, "sheet", "", "XLSX sheet name (default first sheet)")
	loadCmd.Flags().IntVar(&normalizeSkipRows, "skip-rows", 0, "leading rows to drop before the header")
	rootCmd.AddCommand(loadCmd)
}
