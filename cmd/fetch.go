package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lehigh-university-libraries/reconciler/internal/dataset"
	"github.com/lehigh-university-libraries/reconciler/internal/records"
	"github.com/lehigh-university-libraries/reconciler/internal/sources"
	"github.com/spf13/cobra"
)

func newFetchCmd() *cobra.Command {
	var sourceNames []string
	var outputPath string
	var inputPath string

	cmd := &cobra.Command{
		Use:   "fetch [isbn...]",
		Short: "Fetch raw metadata records for ISBNs from remote sources",
		Long: `Queries the configured metadata sources for each ISBN and writes the
raw records as JSON lines, ready to feed into the resolve command.

Supported sources:
  gobo    Google Books (optional GOOGLE_BOOKS_API_KEY)
  ol      Open Library
  isbndb  ISBNdb (requires ISBNDB_API_KEY)

Fetching is best-effort: a source that fails or has no data for an ISBN
contributes nothing.`,
		Example: `  # Fetch one ISBN from Google Books and Open Library
  reconciler fetch 9780140268867

  # Fetch several ISBNs from all sources
  ISBNDB_API_KEY=... reconciler fetch --sources gobo,ol,isbndb 9780140268867 0262033844`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			isbns := args
			if inputPath != "" {
				data, err := os.ReadFile(inputPath)
				if err != nil {
					return fmt.Errorf("failed to read ISBN list: %w", err)
				}
				for _, line := range strings.Split(string(data), "\n") {
					if line = strings.TrimSpace(line); line != "" {
						isbns = append(isbns, line)
					}
				}
			}
			if len(isbns) == 0 {
				return fmt.Errorf("no ISBNs given: pass them as arguments or via --input")
			}

			var srcs []sources.Source
			for _, name := range sourceNames {
				switch strings.TrimSpace(name) {
				case "gobo":
					srcs = append(srcs, sources.NewGoogleBooks("", os.Getenv("GOOGLE_BOOKS_API_KEY")))
				case "ol":
					srcs = append(srcs, sources.NewOpenLibrary(""))
				case "isbndb":
					key := os.Getenv("ISBNDB_API_KEY")
					if key == "" {
						return fmt.Errorf("ISBNDB_API_KEY is required for the isbndb source")
					}
					srcs = append(srcs, sources.NewISBNDB("", key))
				default:
					return fmt.Errorf("unknown source: %s", name)
				}
			}

			fetcher := sources.NewFetcher(srcs...)
			var out []records.RawRecord
			for _, isbn := range isbns {
				slog.Info("Fetching", "isbn", isbn)
				out = append(out, fetcher.Fetch(cmd.Context(), isbn)...)
			}

			if err := dataset.WriteJSONL(outputPath, out); err != nil {
				return err
			}
			slog.Info("Raw records written", "path", outputPath, "records", len(out))
			fmt.Printf("\nResolve the fetched records with:\n")
			fmt.Printf("  reconciler resolve %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&sourceNames, "sources", []string{"gobo", "ol"}, "Comma-separated source names (gobo, ol, isbndb)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "raw.jsonl", "Output JSONL path for raw records")
	cmd.Flags().StringVar(&inputPath, "input", "", "File with one ISBN per line, in addition to arguments")

	return cmd
}
