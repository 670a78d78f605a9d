package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/wanderwheel/internal/card"
	"github.com/arcanaland/wanderwheel/internal/selector"
	"github.com/arcanaland/wanderwheel/internal/store"
)

const csvHeader = "id;interactive;language;city;address;gps_lat;gps_lng;title;text;question;options;correct_index;reality;explanation;routes;persons;tags\n"

func TestDecodeCSV(t *testing.T) {
	t.Parallel()

	input := csvHeader +
		`f1;false;RU;Moscow;"""Red Square"" 1";55.7539;37.6208;"Red Square";Once a market.;ignored?;a;0;Fact;ignored;center; Ivan ;"square;;history"` + "\n" +
		`q1;TRUE;en;spb;;59.93;;;;Which bridge?;"Palace; Trinity ;Lion";1;LEGEND;The Palace bridge.;;;` + "\n" +
		`short;false;ru` + "\n" +
		`;false;ru;moscow;;;;t;x;;;;fact;;;;` + "\n" +
		`q2;true;cn;moscow;;;;;;Q?;x;not-a-number;fantasy;;;;` + "\n" +
		";;;;;;;;;;;;;;;;\n"

	cards, warnings, err := DecodeCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, cards, 3)

	f1 := cards[0]
	assert.Equal(t, card.Card{
		ID:       "f1",
		Language: "ru",
		City:     "moscow",
		Icon:     card.IconDefault,
		Title:    "Red Square",
		Text:     "Once a market.",
		Options:  []string{},
		Reality:  "fact",
		Routes:   []string{"center"},
		Persons:  []string{"Ivan"},
		Tags:     []string{"square", "history"},
		Location: card.PlaceLocation("", `Red Square" 1`, &card.GPS{Lat: 55.7539, Lng: 37.6208}),
	}, f1)

	q1 := cards[1]
	assert.True(t, q1.Interactive)
	assert.Equal(t, "Which bridge?", q1.Question)
	assert.Equal(t, []string{"Palace", "Trinity", "Lion"}, q1.Options)
	require.NotNil(t, q1.CorrectIndex)
	assert.Equal(t, 1, *q1.CorrectIndex)
	assert.Equal(t, card.IconLegend, q1.Icon)
	assert.Equal(t, "legend", q1.Reality)
	assert.Equal(t, "The Palace bridge.", q1.Explanation)
	assert.Equal(t, card.Location{}, q1.Location, "half a gps pair is dropped")
	assert.Equal(t, []string{}, q1.Tags)

	q2 := cards[2]
	assert.Nil(t, q2.CorrectIndex)
	assert.Equal(t, card.IconDefault, q2.Icon)

	require.Len(t, warnings, 2)
	assert.Equal(t, 4, warnings[0].Row)
	assert.Contains(t, warnings[0].Reason, "expected 16 columns, got 3")
	assert.Equal(t, "row 5: empty id", warnings[1].String())
}

func TestDecodeCSVWithoutTagsColumn(t *testing.T) {
	t.Parallel()

	header := strings.TrimSuffix(csvHeader, ";tags\n") + "\n"
	input := header + "f1;false;ru;spb;;;;Title;Text;;;;fact;;;\n"

	cards, warnings, err := DecodeCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, cards, 1)
	assert.Equal(t, []string{}, cards[0].Tags)
}

func TestDecodeCSVColumnsByName(t *testing.T) {
	t.Parallel()

	input := "language;id;title;interactive;city;address;gps_lat;gps_lng;text;question;options;correct_index;reality;explanation;routes;persons\n" +
		"en;x1;Swapped;false;moscow;;;;;;;;fact;;;\n"

	cards, _, err := DecodeCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "x1", cards[0].ID)
	assert.Equal(t, "en", cards[0].Language)
	assert.Equal(t, "Swapped", cards[0].Title)
}

func TestDecodeCSVHeaderErrors(t *testing.T) {
	t.Parallel()

	_, _, err := DecodeCSV(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrNoHeader))

	_, _, err = DecodeCSV(strings.NewReader("id;language\nx;ru\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing columns: interactive")

	_, _, err = DecodeCSV(strings.NewReader("id;id\n"))
	assert.Error(t, err)
}

func TestUpsert(t *testing.T) {
	t.Parallel()

	existing := []card.Card{
		{ID: "a", Language: "ru", Title: "a1"},
		{ID: "b", Language: "ru", Title: "b1"},
	}
	incoming := []card.Card{
		{ID: "c", Language: "en", Title: "c1"},
		{ID: "a", Language: "ru", Title: "a2"},
	}

	merged, stats := Upsert(existing, incoming)
	assert.Equal(t, Stats{New: 1, Updated: 1, Total: 3}, stats)
	require.Len(t, merged, 3)
	assert.Equal(t, "a2", merged[0].Title)
	assert.Equal(t, "b1", merged[1].Title)
	assert.Equal(t, "c1", merged[2].Title)
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	cards, warnings, err := DecodeJSON(strings.NewReader(`[
		{"id":"a","language":"ru"},
		{"language":"ru"},
		{"id":"q","language":"en","interactive":true,"question":"?","options":["x"],"correct_index":2}
	]`))
	require.NoError(t, err)
	require.Len(t, cards, 2)
	require.Len(t, warnings, 2)
	assert.Equal(t, 2, warnings[0].Row)
	assert.Contains(t, warnings[1].Reason, "(kept)")

	_, _, err = DecodeJSON(strings.NewReader(`{"id":"a"}`))
	assert.Error(t, err)
}

func TestImportCSVRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data", "cards.json")
	st := store.NewJSONStore(path, nil)
	im := New(st, nil)
	ctx := context.Background()

	input := csvHeader +
		`a;false;ru;moscow;Red Square;55.75;37.62;Kremlin;Walls;;;;legend;;;;` + "\n" +
		`b;true;ru;moscow;;;;;;Pick;"x;y";1;fact;Because;;;` + "\n"

	stats, warnings, err := im.ImportCSV(ctx, strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, Stats{New: 2, Total: 2}, stats)

	decoded, _, err := DecodeCSV(strings.NewReader(input))
	require.NoError(t, err)

	loaded, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, decoded, loaded)

	// second import updates in place
	update := csvHeader + `a;false;ru;moscow;;;;Kremlin v2;;;;;fact;;;;` + "\n"
	stats, _, err = im.ImportCSV(ctx, strings.NewReader(update))
	require.NoError(t, err)
	assert.Equal(t, Stats{New: 0, Updated: 1, Total: 2}, stats)

	loaded, err = st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Kremlin v2", loaded[0].Title)
	assert.Equal(t, card.Location{}, loaded[0].Location)

	// the imported corpus feeds the selector
	sel := selector.New(st, selector.WithRoller(func() int { return 10 }))
	picked, err := sel.SelectCard(ctx, "ru", "moscow")
	require.NoError(t, err)
	assert.Equal(t, "b", picked.ID)
}

func TestApplyRewritesDamagedCorpus(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cards.json")
	require.NoError(t, os.WriteFile(path, []byte(`{broken`), 0o644))

	st := store.NewJSONStore(path, nil)
	stats, err := New(st, nil).Apply(context.Background(), []card.Card{{ID: "a", Language: "ru"}})
	require.NoError(t, err)
	assert.Equal(t, Stats{New: 1, Total: 1}, stats)

	loaded, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestMergeJSONIntoSQLite(t *testing.T) {
	t.Parallel()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "cards.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})

	im := New(st, nil)
	ctx := context.Background()

	stats, _, err := im.MergeJSON(ctx, strings.NewReader(`[{"id":"a","language":"ru","location":"spb"}]`))
	require.NoError(t, err)
	assert.Equal(t, Stats{New: 1, Total: 1}, stats)

	stats, _, err = im.MergeJSON(ctx, strings.NewReader(`[{"id":"a","language":"ru","city":"moscow"},{"id":"b","language":"en"}]`))
	require.NoError(t, err)
	assert.Equal(t, Stats{New: 1, Updated: 1, Total: 2}, stats)

	loaded, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "moscow", loaded[0].City)
}
