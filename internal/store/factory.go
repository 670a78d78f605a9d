package store

import (
	"fmt"
	"log/slog"
	"strings"
)

const (
	EngineJSON   = "json"
	EngineSQLite = "sqlite"
)

// NewByEngine opens the corpus with the named engine. An empty engine is JSON.
func NewByEngine(engine string, path string, logger *slog.Logger) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineJSON:
		return NewJSONStore(path, logger), nil
	case EngineSQLite:
		return NewSQLiteStore(path, logger)
	default:
		return nil, fmt.Errorf("unsupported store engine: %s", engine)
	}
}
