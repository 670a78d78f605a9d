package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/arcanaland/wanderwheel/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import [csv_file]",
	Short: "Import cards from a CSV export",
	Long: `Import reads a ';'-delimited CSV file with a header row and adds its cards
to the corpus. Cards whose id already exists are replaced in place.

Columns are matched by header name: id, interactive, language, city, address,
gps_lat, gps_lng, title, text, question, options, correct_index, reality,
explanation, routes, persons and the optional tags. List cells (options,
routes, persons, tags) use ';' between items and must be quoted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, args[0], (*importer.Importer).ImportCSV)
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge [json_file]",
	Short: "Merge a JSON array of new cards into the corpus",
	Long: `Merge reads a JSON array of cards and adds them to the corpus.
Cards without an id or language are reported and skipped; cards whose id
already exists are replaced in place.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, args[0], (*importer.Importer).MergeJSON)
	},
}

func init() {
	RootCmd.AddCommand(importCmd)
	RootCmd.AddCommand(mergeCmd)
}

type importFunc func(*importer.Importer, context.Context, io.Reader) (importer.Stats, []importer.RowWarning, error)

func runImport(cmd *cobra.Command, path string, apply importFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening %s: %w", path, err)
	}
	defer f.Close()

	st, closeFn, err := openStore()
	if err != nil {
		return err
	}
	defer closeFn()

	stats, warnings, err := apply(importer.New(st, appLogger), cmd.Context(), f)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	printImport(cmd.OutOrStdout(), stats, warnings)
	return nil
}

func printImport(w io.Writer, stats importer.Stats, warnings []importer.RowWarning) {
	for _, warn := range warnings {
		fmt.Fprintf(w, "⚠️ %s\n", warn)
	}
	fmt.Fprintf(w, "✅ Added %d, updated %d, %d cards in corpus.\n", stats.New, stats.Updated, stats.Total)
}
