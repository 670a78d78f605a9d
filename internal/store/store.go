// Package store loads and saves the card corpus.
//
// Load never fails hard: when the corpus is missing, unreadable or not an
// array of cards, it returns an empty slice together with an error wrapping
// ErrLoadFailure, and callers are expected to log it and carry on with
// nothing to show. Individual records that are not usable cards are skipped.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/arcanaland/wanderwheel/internal/card"
	"github.com/arcanaland/wanderwheel/internal/validator"
)

// ErrLoadFailure is wrapped by every error Load returns
var ErrLoadFailure = errors.New("card corpus load failure")

// Store is a persisted card corpus
type Store interface {
	Load(ctx context.Context) ([]card.Card, error)
	Save(ctx context.Context, cards []card.Card) error
}

func loadFailure(format string, args ...any) error {
	return fmt.Errorf("%w: %w", ErrLoadFailure, fmt.Errorf(format, args...))
}

// DecodeCorpus decodes a JSON array of cards. Records that are not objects
// or lack required fields are logged and dropped. Optional fields of the
// wrong type are coerced or cleared (see card.Decode) and logged. Duplicate
// ids keep the position of their first occurrence and the content of their
// last.
func DecodeCorpus(data []byte, logger *slog.Logger) ([]card.Card, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return []card.Card{}, loadFailure("decode corpus: %w", err)
	}
	if records == nil {
		// a literal null is not an array
		return []card.Card{}, loadFailure("decode corpus: not a JSON array")
	}

	cards := make([]card.Card, 0, len(records))
	for i, raw := range records {
		c, notes, err := card.Decode(raw)
		if err != nil {
			logger.Warn("skipping malformed card", "position", i+1, "error", err)
			continue
		}
		if err := validator.CheckRecord(c); err != nil {
			logger.Warn("skipping malformed card", "position", i+1, "id", c.ID, "error", err)
			continue
		}
		for _, note := range notes {
			logger.Warn("card field has the wrong type", "position", i+1, "id", c.ID, "field", note)
		}
		for _, issue := range validator.QuizIssues(c) {
			logger.Debug("quiz card loaded with issue", "id", c.ID, "issue", issue)
		}
		cards = append(cards, c)
	}

	return dedupe(cards), nil
}

// dedupe keeps one card per id, last write wins in place of the first
func dedupe(cards []card.Card) []card.Card {
	index := make(map[string]int, len(cards))
	result := make([]card.Card, 0, len(cards))
	for _, c := range cards {
		if pos, ok := index[c.ID]; ok {
			result[pos] = c
			continue
		}
		index[c.ID] = len(result)
		result = append(result, c)
	}
	return result
}
