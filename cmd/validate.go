package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/arcanaland/wanderwheel/internal/store"
	"github.com/arcanaland/wanderwheel/internal/validator"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a JSON card corpus",
	Long: `Validate checks that a JSON card corpus is well formed.
It reports cards missing an id or language, quizzes without a usable question,
options or correct index, and duplicate ids. Without a path the configured
corpus is checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		corpusPath := cfg.CardsPath
		if len(args) == 1 {
			corpusPath = args[0]
		} else if cfg.Store == store.EngineSQLite {
			return fmt.Errorf("validate reads JSON corpora, pass the path of one")
		}

		// Check if path exists
		if _, err := os.Stat(corpusPath); os.IsNotExist(err) {
			return fmt.Errorf("card corpus not found: %s", corpusPath)
		}

		// Create validator and run validation
		v := validator.NewValidator(corpusPath)
		results, err := v.Validate()
		if err != nil {
			return fmt.Errorf("validation error: %w", err)
		}

		return printResults(cmd.OutOrStdout(), corpusPath, results)
	},
}

// printResults displays validation results, failing when there are errors
func printResults(w io.Writer, corpusPath string, results validator.ValidationResults) error {
	fmt.Fprintln(w, "Validation Results:")
	fmt.Fprintln(w, "-------------------")

	if len(results.Errors) == 0 {
		fmt.Fprintf(w, "✅ Corpus '%s' is valid.\n", corpusPath)
	} else {
		fmt.Fprintf(w, "❌ Corpus '%s' has %d validation errors:\n", corpusPath, len(results.Errors))
		for i, err := range results.Errors {
			fmt.Fprintf(w, "%d. %s\n", i+1, err)
		}
	}

	if len(results.Warnings) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for i, warn := range results.Warnings {
			fmt.Fprintf(w, "%d. %s\n", i+1, warn)
		}
	}

	if len(results.Errors) > 0 {
		return fmt.Errorf("validation failed")
	}
	return nil
}
