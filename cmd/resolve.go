package cmd

import (
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/reconciler/internal/dataset"
	"github.com/lehigh-university-libraries/reconciler/internal/report"
	"github.com/lehigh-university-libraries/reconciler/internal/resolve"
	"github.com/lehigh-university-libraries/reconciler/internal/store"
	"github.com/spf13/cobra"
)

func newResolveCmd() *cobra.Command {
	var configPath string
	var outputPath string
	var reportDir string
	var dbDriver string
	var dbDSN string

	cmd := &cobra.Command{
		Use:   "resolve [dataset file]",
		Short: "Resolve a batch of raw records into canonical records",
		Long: `Runs one resolution pass over a dataset of raw metadata records.

The dataset file may be CSV, JSONL, or Parquet; the format is inferred
from the file extension. Records are normalized, clustered by ISBN
family, and merged into canonical records which are written as CSV.`,
		Example: `  # Resolve a CSV export with default weights
  reconciler resolve records.csv

  # Custom weights and threshold, persist results to sqlite
  reconciler resolve records.jsonl --config weights.yaml --db-driver sqlite --db-dsn reconciler.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolve.LoadConfig(configPath)
			if err != nil {
				return err
			}
			engine, err := resolve.New(cfg)
			if err != nil {
				return err
			}

			slog.Info("Loading dataset", "path", args[0])
			raws, err := dataset.NewLoader(args[0]).Load()
			if err != nil {
				return fmt.Errorf("failed to load dataset: %w", err)
			}

			result, err := engine.Resolve(cmd.Context(), raws)
			if err != nil {
				return err
			}
			report.LogOutcomes(result)

			if err := dataset.WriteCanonicalCSV(outputPath, result.Canonical); err != nil {
				return err
			}
			slog.Info("Canonical records written", "path", outputPath, "records", len(result.Canonical))

			if reportDir != "" {
				path, err := report.SaveYAML(reportDir, result, engine.Threshold())
				if err != nil {
					return err
				}
				slog.Info("Report saved", "path", path)
			}

			if dbDriver != "" {
				st, err := store.Open(dbDriver, dbDSN)
				if err != nil {
					return err
				}
				if err := st.Migrate(); err != nil {
					return fmt.Errorf("failed to migrate database: %w", err)
				}
				if err := st.SaveAll(cmd.Context(), result.Canonical); err != nil {
					return fmt.Errorf("failed to persist canonical records: %w", err)
				}
				slog.Info("Canonical records persisted", "driver", dbDriver)
			}

			report.PrintSummary(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to YAML config (weights, threshold, source trust)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "canonical.csv", "Output CSV path for canonical records")
	cmd.Flags().StringVar(&reportDir, "report-dir", "", "Directory for the YAML resolution report (omit to skip)")
	cmd.Flags().StringVar(&dbDriver, "db-driver", "", "Database driver for persistence (mysql or sqlite; omit to skip)")
	cmd.Flags().StringVar(&dbDSN, "db-dsn", "", "Database DSN for persistence")

	return cmd
}
