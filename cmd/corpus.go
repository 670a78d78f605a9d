package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arcanaland/wanderwheel/internal/card"
	"github.com/arcanaland/wanderwheel/internal/config"
	"github.com/arcanaland/wanderwheel/internal/selector"
)

// corpusCmd represents the corpus command group
var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Inspect the card corpus and manage defaults",
	Long:  `Commands for inspecting the card corpus and choosing the default language and city.`,
}

// corpusListCmd represents the corpus ls command
var corpusListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List cards per language and city",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, closeFn, err := openStore()
		if err != nil {
			return err
		}
		defer closeFn()

		cards, err := st.Load(cmd.Context())
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(cmd.OutOrStdout(), "Card corpus at %s does not exist.\n", cfg.CardsPath)
				fmt.Fprintln(cmd.OutOrStdout(), "Run 'wanderwheel corpus init' or 'wanderwheel import' to create it.")
				return nil
			}
			return err
		}

		printBuckets(cmd.OutOrStdout(), buckets(cards), cfg.Language, cfg.City)
		return nil
	},
}

// corpusDefaultCmd represents the corpus default command
var corpusDefaultCmd = &cobra.Command{
	Use:   "default",
	Short: "Set the default language and city",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		language, _ := cmd.Flags().GetString("lang")
		city, _ := cmd.Flags().GetString("city")
		if language == "" && city == "" {
			return fmt.Errorf("nothing to set, pass --lang and/or --city")
		}

		c, err := config.SetDefaultFilter(language, city)
		if err != nil {
			return fmt.Errorf("error setting defaults: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Default filter set to: %s / %s\n", c.Language, c.City)
		return nil
	},
}

// corpusInitCmd represents the corpus init command
var corpusInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an empty card corpus",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if _, err := os.Stat(cfg.CardsPath); err == nil {
			fmt.Fprintln(out, "Card corpus already exists at:", cfg.CardsPath)
			return nil
		}

		st, closeFn, err := openStore()
		if err != nil {
			return err
		}
		defer closeFn()

		if err := st.Save(cmd.Context(), []card.Card{}); err != nil {
			return fmt.Errorf("error creating card corpus: %w", err)
		}

		fmt.Fprintln(out, "Card corpus initialized at:", cfg.CardsPath)
		fmt.Fprintln(out, "Config file at:", config.GetConfigFilePath())
		return nil
	},
}

func init() {
	RootCmd.AddCommand(corpusCmd)
	corpusCmd.AddCommand(corpusListCmd)
	corpusCmd.AddCommand(corpusDefaultCmd)
	corpusCmd.AddCommand(corpusInitCmd)

	corpusDefaultCmd.Flags().StringP("lang", "l", "", "Default card language")
	corpusDefaultCmd.Flags().StringP("city", "c", "", "Default city key or 'all'")
}

// bucket counts the cards drawable for one language and city
type bucket struct {
	Language string
	City     string
	Facts    int
	Quizzes  int
}

// buckets groups cards by language and effective city, sorted by both.
// Cards without a city only show up under "all".
func buckets(cards []card.Card) []bucket {
	type key struct{ language, city string }
	seen := make(map[key]bool)
	var keys []key
	for _, c := range cards {
		language := strings.ToLower(c.Language)
		for _, city := range []string{selector.CityAll, c.EffectiveCity()} {
			k := key{language, city}
			if city == "" || seen[k] {
				continue
			}
			seen[k] = true
			keys = append(keys, k)
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].language != keys[j].language {
			return keys[i].language < keys[j].language
		}
		if (keys[i].city == selector.CityAll) != (keys[j].city == selector.CityAll) {
			return keys[i].city == selector.CityAll
		}
		return keys[i].city < keys[j].city
	})

	result := make([]bucket, 0, len(keys))
	for _, k := range keys {
		pools := selector.Filter(cards, k.language, k.city)
		result = append(result, bucket{
			Language: k.language,
			City:     k.city,
			Facts:    len(pools.Facts),
			Quizzes:  len(pools.Quizzes),
		})
	}
	return result
}

func printBuckets(w io.Writer, list []bucket, defaultLanguage, defaultCity string) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No cards found in the corpus.")
		return
	}

	for _, b := range list {
		marker := " "
		if b.Language == defaultLanguage && b.City == defaultCity {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %-4s %-10s %3d facts %3d quizzes\n", marker, b.Language, b.City, b.Facts, b.Quizzes)
	}
}
