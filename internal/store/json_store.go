package store

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/arcanaland/wanderwheel/internal/card"
)

// JSONStore keeps the corpus in a single JSON file. It reads the file on every
// Load and never holds the corpus in memory.
type JSONStore struct {
	filePath string
	logger   *slog.Logger

	// writes are serialised; reads go straight to the file
	mu sync.Mutex
}

func NewJSONStore(filePath string, logger *slog.Logger) *JSONStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONStore{filePath: filePath, logger: logger}
}

// Path returns the corpus file location
func (s *JSONStore) Path() string {
	return s.filePath
}

func (s *JSONStore) Load(ctx context.Context) ([]card.Card, error) {
	if err := ctx.Err(); err != nil {
		return []card.Card{}, loadFailure("load %s: %w", s.filePath, err)
	}

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return []card.Card{}, loadFailure("read %s: %w", s.filePath, err)
	}

	cards, err := DecodeCorpus(data, s.logger)
	if err != nil {
		return cards, err
	}
	s.logger.Debug("corpus loaded", "path", s.filePath, "cards", len(cards))
	return cards, nil
}

func (s *JSONStore) Save(ctx context.Context, cards []card.Card) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cards == nil {
		cards = []card.Card{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dedupe(cards)); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
		return err
	}

	// write-then-rename so a concurrent Load never sees a half-written file
	tmpPath := s.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, s.filePath); err != nil {
		return err
	}

	s.logger.Debug("corpus saved", "path", s.filePath, "cards", len(cards))
	return nil
}
