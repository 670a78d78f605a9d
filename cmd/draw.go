package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcanaland/wanderwheel/internal/card"
	"github.com/arcanaland/wanderwheel/internal/selector"
)

var drawCmd = &cobra.Command{
	Use:   "draw",
	Short: "Draw a fact or a quiz for a language and city",
	Long: `Draw picks one card from the corpus. Four draws out of five show a fact,
the fifth asks a quiz when the selected language and city have one.

If no language or city is given, the defaults from your config are used.
Use city 'all' to draw from every city.

Examples:
  wanderwheel draw
  wanderwheel draw --lang en --city spb
  wanderwheel draw --lang ru --city moscow --answer 2`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		language, city := cfg.Language, cfg.City
		if cmd.Flags().Changed("lang") {
			language, _ = cmd.Flags().GetString("lang")
		}
		if cmd.Flags().Changed("city") {
			city, _ = cmd.Flags().GetString("city")
		}

		st, closeFn, err := openStore()
		if err != nil {
			return err
		}
		defer closeFn()

		sel := selector.New(st, selector.WithLogger(appLogger))
		c, err := sel.SelectCard(cmd.Context(), language, city)
		if errors.Is(err, selector.ErrNoEligibleCards) {
			return fmt.Errorf("⚠️ no cards for language %q and city %q", language, city)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		width := terminalWidth()
		renderCard(out, c, width)

		if c.IsQuiz() && cmd.Flags().Changed("answer") {
			chosen, _ := cmd.Flags().GetInt("answer")
			renderAnswer(out, c, card.EvaluateAnswer(c, chosen-1), width)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(drawCmd)

	drawCmd.Flags().StringP("lang", "l", "", "Card language (ru, en, cn)")
	drawCmd.Flags().StringP("city", "c", "", "City key (moscow, spb) or 'all'")
	drawCmd.Flags().IntP("answer", "a", 0, "Answer a drawn quiz with this option number")
}
