// Package importer turns spreadsheet exports into cards and merges them
// into the corpus.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arcanaland/wanderwheel/internal/card"
)

// Column names expected in the CSV header
const (
	ColID           = "id"
	ColInteractive  = "interactive"
	ColLanguage     = "language"
	ColCity         = "city"
	ColAddress      = "address"
	ColGPSLat       = "gps_lat"
	ColGPSLng       = "gps_lng"
	ColTitle        = "title"
	ColText         = "text"
	ColQuestion     = "question"
	ColOptions      = "options"
	ColCorrectIndex = "correct_index"
	ColReality      = "reality"
	ColExplanation  = "explanation"
	ColRoutes       = "routes"
	ColPersons      = "persons"
	ColTags         = "tags"
)

// RequiredColumns must all be present in the header; tags is optional
var RequiredColumns = []string{
	ColID, ColInteractive, ColLanguage, ColCity, ColAddress, ColGPSLat, ColGPSLng,
	ColTitle, ColText, ColQuestion, ColOptions, ColCorrectIndex, ColReality,
	ColExplanation, ColRoutes, ColPersons,
}

// Delimiter separates CSV fields and the items of list cells
const Delimiter = ';'

// ErrNoHeader is returned for an empty CSV
var ErrNoHeader = errors.New("csv has no header row")

// RowWarning describes a row that was skipped
type RowWarning struct {
	Row    int
	Reason string
}

func (w RowWarning) String() string {
	return fmt.Sprintf("row %d: %s", w.Row, w.Reason)
}

// header maps column names to field positions
type header map[string]int

func parseHeader(fields []string) (header, error) {
	h := make(header, len(fields))
	for i, name := range fields {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if name == "" {
			continue
		}
		if _, dup := h[name]; dup {
			return nil, fmt.Errorf("duplicate column %q in header", name)
		}
		h[name] = i
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := h[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("csv header is missing columns: %s", strings.Join(missing, ", "))
	}
	return h, nil
}

// width is the number of fields a row needs to cover every required column
func (h header) width() int {
	w := 0
	for _, col := range RequiredColumns {
		if i := h[col]; i+1 > w {
			w = i + 1
		}
	}
	return w
}

func (h header) get(row []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// DecodeCSV reads cards from a ';'-delimited CSV with a header row. Rows too
// short for the header are skipped and reported; a missing or incomplete
// header fails the whole import.
func DecodeCSV(r io.Reader) ([]card.Card, []RowWarning, error) {
	reader := csv.NewReader(r)
	reader.Comma = Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	first, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, ErrNoHeader
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}
	h, err := parseHeader(first)
	if err != nil {
		return nil, nil, err
	}
	width := h.width()

	var (
		cards    []card.Card
		warnings []RowWarning
	)
	for rowNum := 2; ; rowNum++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, nil, fmt.Errorf("read csv row %d: %w", rowNum, err)
			}
			warnings = append(warnings, RowWarning{Row: rowNum, Reason: err.Error()})
			continue
		}
		if isBlank(row) {
			continue
		}
		if len(row) < width {
			warnings = append(warnings, RowWarning{
				Row:    rowNum,
				Reason: fmt.Sprintf("expected %d columns, got %d", width, len(row)),
			})
			continue
		}

		c := decodeRow(h, row)
		if c.ID == "" {
			warnings = append(warnings, RowWarning{Row: rowNum, Reason: "empty id"})
			continue
		}
		if c.Language == "" {
			warnings = append(warnings, RowWarning{Row: rowNum, Reason: "empty language"})
			continue
		}
		cards = append(cards, c)
	}
	return cards, warnings, nil
}

func decodeRow(h header, row []string) card.Card {
	interactive := strings.ToLower(h.get(row, ColInteractive)) == "true"
	reality := strings.ToLower(h.get(row, ColReality))

	c := card.Card{
		ID:          h.get(row, ColID),
		Interactive: interactive,
		Language:    strings.ToLower(h.get(row, ColLanguage)),
		City:        strings.ToLower(h.get(row, ColCity)),
		Icon:        card.IconFor(reality),
		Title:       unquote(h.get(row, ColTitle)),
		Text:        unquote(h.get(row, ColText)),
		Options:     []string{},
		Reality:     reality,
		Routes:      splitList(h.get(row, ColRoutes)),
		Persons:     splitList(h.get(row, ColPersons)),
		Tags:        splitList(h.get(row, ColTags)),
	}

	if interactive {
		c.Question = h.get(row, ColQuestion)
		c.Options = splitList(h.get(row, ColOptions))
		c.CorrectIndex = parseIndex(h.get(row, ColCorrectIndex))
		c.Explanation = h.get(row, ColExplanation)
	}

	var gps *card.GPS
	lat, latOK := parseFloat(h.get(row, ColGPSLat))
	lng, lngOK := parseFloat(h.get(row, ColGPSLng))
	if latOK && lngOK {
		gps = &card.GPS{Lat: lat, Lng: lng}
	}
	c.Location = card.PlaceLocation("", unquote(h.get(row, ColAddress)), gps)

	return c
}

// splitList splits a list cell on the delimiter, dropping empty items
func splitList(cell string) []string {
	items := []string{}
	for _, item := range strings.Split(cell, string(Delimiter)) {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parseIndex(cell string) *int {
	if cell == "" {
		return nil
	}
	v, err := strconv.Atoi(cell)
	if err != nil {
		return nil
	}
	return &v
}

func parseFloat(cell string) (float64, bool) {
	if cell == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func unquote(s string) string {
	return strings.TrimSpace(strings.Trim(s, `"`))
}

func isBlank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
