package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/arcanaland/wanderwheel/internal/card"
	"github.com/arcanaland/wanderwheel/internal/store"
	"github.com/arcanaland/wanderwheel/internal/validator"
)

// Stats counts how an import changed the corpus
type Stats struct {
	New     int
	Updated int
	Total   int
}

// Upsert merges incoming cards into existing ones by id. Incoming cards
// replace existing ones in place; new ids are appended in input order.
func Upsert(existing, incoming []card.Card) ([]card.Card, Stats) {
	merged := make([]card.Card, 0, len(existing)+len(incoming))
	index := make(map[string]int, len(existing)+len(incoming))
	for _, c := range existing {
		if pos, ok := index[c.ID]; ok {
			merged[pos] = c
			continue
		}
		index[c.ID] = len(merged)
		merged = append(merged, c)
	}

	known := make(map[string]bool, len(index))
	for id := range index {
		known[id] = true
	}

	var stats Stats
	for _, c := range incoming {
		if known[c.ID] {
			stats.Updated++
		} else {
			stats.New++
		}
		if pos, ok := index[c.ID]; ok {
			merged[pos] = c
			continue
		}
		index[c.ID] = len(merged)
		merged = append(merged, c)
	}
	stats.Total = len(merged)
	return merged, stats
}

// DecodeJSON reads a JSON array of cards for merging. Invalid cards are
// reported and left out; a payload that is not an array is an error.
func DecodeJSON(r io.Reader) ([]card.Card, []RowWarning, error) {
	var records []json.RawMessage
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, nil, fmt.Errorf("new cards must be a JSON array: %w", err)
	}

	var (
		cards    []card.Card
		warnings []RowWarning
	)
	for i, raw := range records {
		c, notes, err := card.Decode(raw)
		if err != nil {
			warnings = append(warnings, RowWarning{Row: i + 1, Reason: err.Error()})
			continue
		}
		if err := validator.CheckRecord(c); err != nil {
			warnings = append(warnings, RowWarning{Row: i + 1, Reason: err.Error()})
			continue
		}
		for _, note := range notes {
			warnings = append(warnings, RowWarning{Row: i + 1, Reason: fmt.Sprintf("%s: %s (kept)", c.ID, note)})
		}
		for _, issue := range validator.QuizIssues(c) {
			warnings = append(warnings, RowWarning{Row: i + 1, Reason: fmt.Sprintf("%s: %s (kept)", c.ID, issue)})
		}
		cards = append(cards, c)
	}
	return cards, warnings, nil
}

// Importer applies decoded cards to a store
type Importer struct {
	store  store.Store
	logger *slog.Logger
}

func New(st store.Store, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{store: st, logger: logger}
}

// Apply upserts cards into the store. A corpus that cannot be loaded is
// replaced by the imported cards.
func (im *Importer) Apply(ctx context.Context, cards []card.Card) (Stats, error) {
	existing, err := im.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrLoadFailure) {
			return Stats{}, err
		}
		if errors.Is(err, os.ErrNotExist) {
			im.logger.Info("no existing corpus, starting a new one")
		} else {
			im.logger.Warn("existing corpus unreadable, it will be rewritten", "error", err)
		}
		existing = nil
	}

	merged, stats := Upsert(existing, cards)
	if err := im.store.Save(ctx, merged); err != nil {
		return Stats{}, fmt.Errorf("save corpus: %w", err)
	}

	im.logger.Info("cards imported", "new", stats.New, "updated", stats.Updated, "total", stats.Total)
	return stats, nil
}

// ImportCSV decodes a CSV export and applies it
func (im *Importer) ImportCSV(ctx context.Context, r io.Reader) (Stats, []RowWarning, error) {
	cards, warnings, err := DecodeCSV(r)
	if err != nil {
		return Stats{}, nil, err
	}
	im.logWarnings(warnings)
	stats, err := im.Apply(ctx, cards)
	return stats, warnings, err
}

// MergeJSON decodes a JSON array of new cards and applies it
func (im *Importer) MergeJSON(ctx context.Context, r io.Reader) (Stats, []RowWarning, error) {
	cards, warnings, err := DecodeJSON(r)
	if err != nil {
		return Stats{}, nil, err
	}
	im.logWarnings(warnings)
	stats, err := im.Apply(ctx, cards)
	return stats, warnings, err
}

func (im *Importer) logWarnings(warnings []RowWarning) {
	for _, w := range warnings {
		im.logger.Debug("import row skipped or flagged", "row", w.Row, "reason", w.Reason)
	}
}
