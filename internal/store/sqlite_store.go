package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/arcanaland/wanderwheel/internal/card"
	"github.com/arcanaland/wanderwheel/internal/validator"
)

// SQLiteStore keeps the corpus in a cards table. Rows come back in the order
// their id was first saved.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLiteStore(filePath string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", filePath)
	if err != nil {
		return nil, err
	}
	st := &SQLiteStore{db: db, logger: logger}
	if err := st.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context) ([]card.Card, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, interactive, language, city, icon, title, text, question, options,
			correct_index, reality, explanation, routes, persons, tags, location
		FROM cards
		ORDER BY seq`)
	if err != nil {
		return []card.Card{}, loadFailure("query cards: %w", err)
	}
	defer rows.Close()

	cards := make([]card.Card, 0)
	for rows.Next() {
		var (
			c            card.Card
			interactive  int
			options      string
			correctIndex sql.NullInt64
			routes       string
			persons      string
			tags         string
			location     string
		)
		if err := rows.Scan(
			&c.ID,
			&interactive,
			&c.Language,
			&c.City,
			&c.Icon,
			&c.Title,
			&c.Text,
			&c.Question,
			&options,
			&correctIndex,
			&c.Reality,
			&c.Explanation,
			&routes,
			&persons,
			&tags,
			&location,
		); err != nil {
			return []card.Card{}, loadFailure("scan card: %w", err)
		}

		c.Interactive = intToBool(interactive)
		if correctIndex.Valid {
			c.CorrectIndex = card.IntPtr(int(correctIndex.Int64))
		}
		if err := decodeColumns(&c, options, routes, persons, tags, location); err != nil {
			s.logger.Warn("skipping malformed card row", "id", c.ID, "error", err)
			continue
		}
		if err := validator.CheckRecord(c); err != nil {
			s.logger.Warn("skipping malformed card row", "id", c.ID, "error", err)
			continue
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return []card.Card{}, loadFailure("read cards: %w", err)
	}

	s.logger.Debug("corpus loaded", "engine", EngineSQLite, "cards", len(cards))
	return cards, nil
}

// Save replaces the corpus. Ids that already exist keep their position.
func (s *SQLiteStore) Save(ctx context.Context, cards []card.Card) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `CREATE TEMP TABLE IF NOT EXISTS keep_ids (id TEXT PRIMARY KEY)`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM keep_ids`); err != nil {
		return err
	}

	for _, c := range cards {
		cols, err := encodeColumns(c)
		if err != nil {
			return fmt.Errorf("encode card %s: %w", c.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO cards
			(id, interactive, language, city, icon, title, text, question, options,
				correct_index, reality, explanation, routes, persons, tags, location)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				interactive = excluded.interactive,
				language = excluded.language,
				city = excluded.city,
				icon = excluded.icon,
				title = excluded.title,
				text = excluded.text,
				question = excluded.question,
				options = excluded.options,
				correct_index = excluded.correct_index,
				reality = excluded.reality,
				explanation = excluded.explanation,
				routes = excluded.routes,
				persons = excluded.persons,
				tags = excluded.tags,
				location = excluded.location`,
			c.ID,
			boolToInt(c.Interactive),
			c.Language,
			c.City,
			c.Icon,
			c.Title,
			c.Text,
			c.Question,
			cols.options,
			nullableInt(c.CorrectIndex),
			c.Reality,
			c.Explanation,
			cols.routes,
			cols.persons,
			cols.tags,
			cols.location,
		); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO keep_ids (id) VALUES (?)`, c.ID); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE id NOT IN (SELECT id FROM keep_ids)`); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Debug("corpus saved", "engine", EngineSQLite, "cards", len(cards))
	return nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		PRAGMA journal_mode=WAL;
		CREATE TABLE IF NOT EXISTS cards (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			interactive INTEGER NOT NULL,
			language TEXT NOT NULL,
			city TEXT NOT NULL,
			icon TEXT NOT NULL,
			title TEXT NOT NULL,
			text TEXT NOT NULL,
			question TEXT NOT NULL,
			options TEXT NOT NULL,
			correct_index INTEGER,
			reality TEXT NOT NULL,
			explanation TEXT NOT NULL,
			routes TEXT NOT NULL,
			persons TEXT NOT NULL,
			tags TEXT NOT NULL,
			location TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_cards_language_city ON cards(language, city);
	`)
	return err
}

type encodedColumns struct {
	options  string
	routes   string
	persons  string
	tags     string
	location string
}

func encodeColumns(c card.Card) (encodedColumns, error) {
	var cols encodedColumns
	var err error
	if cols.options, err = jsonText(c.Options); err != nil {
		return cols, err
	}
	if cols.routes, err = jsonText(c.Routes); err != nil {
		return cols, err
	}
	if cols.persons, err = jsonText(c.Persons); err != nil {
		return cols, err
	}
	if cols.tags, err = jsonText(c.Tags); err != nil {
		return cols, err
	}
	if cols.location, err = jsonText(c.Location); err != nil {
		return cols, err
	}
	return cols, nil
}

func decodeColumns(c *card.Card, options, routes, persons, tags, location string) error {
	for _, col := range []struct {
		name string
		text string
		dst  any
	}{
		{"options", options, &c.Options},
		{"routes", routes, &c.Routes},
		{"persons", persons, &c.Persons},
		{"tags", tags, &c.Tags},
		{"location", location, &c.Location},
	} {
		if err := json.Unmarshal([]byte(col.text), col.dst); err != nil {
			return fmt.Errorf("decode %s: %w", col.name, err)
		}
	}
	return nil
}

func jsonText(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func intToBool(v int) bool {
	return v != 0
}
