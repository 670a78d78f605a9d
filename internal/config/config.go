package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// Default values written to a fresh config file
const (
	DefaultStore    = "json"
	DefaultLanguage = "ru"
	DefaultCity     = "all"
	DefaultLogLevel = "info"
	DefaultCacheTTL = "0s"

	engineSQLite = "sqlite"
)

// Config represents the application configuration. Environment variables
// override values from the config file.
type Config struct {
	CardsPath string `toml:"cards_path" env:"WANDERWHEEL_CARDS"`
	Store     string `toml:"store" env:"WANDERWHEEL_STORE"`
	Language  string `toml:"language" env:"WANDERWHEEL_LANGUAGE"`
	City      string `toml:"city" env:"WANDERWHEEL_CITY"`
	LogLevel  string `toml:"log_level" env:"WANDERWHEEL_LOG_LEVEL"`
	CacheTTL  string `toml:"cache_ttl" env:"WANDERWHEEL_CACHE_TTL"`
}

// CacheDuration parses CacheTTL. An empty value disables caching.
func (c *Config) CacheDuration() (time.Duration, error) {
	if strings.TrimSpace(c.CacheTTL) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid cache_ttl %q: %w", c.CacheTTL, err)
	}
	return d, nil
}

// GetXDGDataHome returns XDG_DATA_HOME or default path
func GetXDGDataHome() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return xdgData
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".local", "share")
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetDataDir returns the directory holding the card corpus
func GetDataDir() string {
	return filepath.Join(GetXDGDataHome(), "wanderwheel")
}

// GetDefaultCardsPath returns the corpus location used when none is configured
func GetDefaultCardsPath() string {
	return filepath.Join(GetDataDir(), "cards.json")
}

// GetDefaultSQLitePath returns the corpus location used by the sqlite engine
// when none is configured
func GetDefaultSQLitePath() string {
	return filepath.Join(GetDataDir(), "cards.db")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), "wanderwheel", "config.toml")
}

// Defaults returns the configuration used for a fresh install
func Defaults() *Config {
	return &Config{
		CardsPath: GetDefaultCardsPath(),
		Store:     DefaultStore,
		Language:  DefaultLanguage,
		City:      DefaultCity,
		LogLevel:  DefaultLogLevel,
		CacheTTL:  DefaultCacheTTL,
	}
}

// LoadConfig loads the config file, creating it with defaults when missing,
// then applies environment overrides
func LoadConfig() (*Config, error) {
	config, err := loadFile()
	if err != nil {
		return nil, err
	}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("error parsing environment: %w", err)
	}

	config.fillDefaults()
	config.UseEngineDefaults()
	return config, nil
}

// UseEngineDefaults matches a default corpus path to the engine: cards.db
// for sqlite, cards.json otherwise. Any other path is left alone.
func (c *Config) UseEngineDefaults() {
	sqlite := strings.EqualFold(c.Store, engineSQLite)
	switch {
	case sqlite && c.CardsPath == GetDefaultCardsPath():
		c.CardsPath = GetDefaultSQLitePath()
	case !sqlite && c.CardsPath == GetDefaultSQLitePath():
		c.CardsPath = GetDefaultCardsPath()
	}
}

func loadFile() (*Config, error) {
	configPath := GetConfigFilePath()

	// Create default config if it doesn't exist
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig()
	}

	var config Config
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}

	return &config, nil
}

// fillDefaults replaces empty settings with their defaults
func (c *Config) fillDefaults() {
	d := Defaults()
	if c.CardsPath == "" {
		c.CardsPath = d.CardsPath
	}
	if c.Store == "" {
		c.Store = d.Store
	}
	if c.Language == "" {
		c.Language = d.Language
	}
	if c.City == "" {
		c.City = d.City
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.CacheTTL == "" {
		c.CacheTTL = d.CacheTTL
	}
}

// createDefaultConfig creates a default config file
func createDefaultConfig() (*Config, error) {
	config := Defaults()
	if err := writeConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func writeConfig(config *Config) error {
	configPath := GetConfigFilePath()
	configDir := filepath.Dir(configPath)

	// Ensure the config directory exists
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	return nil
}

// SetDefaultFilter stores the language and city used when no flags are given.
// Empty values leave the current setting alone.
func SetDefaultFilter(language, city string) (*Config, error) {
	config, err := loadFile()
	if err != nil {
		return nil, err
	}

	if language != "" {
		config.Language = strings.ToLower(language)
	}
	if city != "" {
		config.City = strings.ToLower(city)
	}

	if err := writeConfig(config); err != nil {
		return nil, err
	}
	config.fillDefaults()
	return config, nil
}
