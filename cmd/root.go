package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/arcanaland/wanderwheel/internal/config"
	"github.com/arcanaland/wanderwheel/internal/logger"
	"github.com/arcanaland/wanderwheel/internal/store"
)

var (
	// cfg is the resolved configuration for the running command
	cfg *config.Config
	// appLogger is set up from cfg before any command runs
	appLogger = slog.Default()
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "wanderwheel",
	Short: "Draw city facts and quizzes from a card corpus",
	Long: `WanderWheel is a command-line tool for drawing facts and quizzes about a city.
It filters a card corpus by language and city and draws a fact four times out of five,
or a quiz otherwise. It also validates, imports and merges card corpora.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	RootCmd.PersistentFlags().String("cards", "", "Path to the card corpus (defaults to the configured path)")
	RootCmd.PersistentFlags().String("store", "", "Storage engine: json or sqlite")
	RootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	RootCmd.AddCommand(validateCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

// setup loads the config, applies flag overrides and configures logging
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("cards") {
		c.CardsPath, _ = flags.GetString("cards")
	}
	if flags.Changed("store") {
		c.Store, _ = flags.GetString("store")
	}
	if flags.Changed("log-level") {
		c.LogLevel, _ = flags.GetString("log-level")
	}
	if !flags.Changed("cards") {
		c.UseEngineDefaults()
	}

	cfg = c
	appLogger = logger.Setup(c.LogLevel, cmd.ErrOrStderr())
	appLogger.Debug("configuration loaded",
		"config_file", config.GetConfigFilePath(),
		"cards", c.CardsPath,
		"store", c.Store)
	return nil
}

// openStore opens the configured store, wrapped in the load cache when a
// cache TTL is set. The returned func closes it.
func openStore() (store.Store, func(), error) {
	ttl, err := cfg.CacheDuration()
	if err != nil {
		return nil, nil, err
	}

	st, err := store.NewByEngine(cfg.Store, cfg.CardsPath, appLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening card store: %w", err)
	}
	st = store.Cached(st, ttl)

	return st, func() { closeStore(st) }, nil
}

func closeStore(st store.Store) {
	closer, ok := st.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		appLogger.Warn("error closing card store", "error", err)
	}
}
