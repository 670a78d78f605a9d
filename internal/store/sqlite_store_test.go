package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/wanderwheel/internal/card"
	"github.com/arcanaland/wanderwheel/internal/store"
)

func TestSQLiteStoreBasicFlow(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "cards.db")
	st, err := store.NewSQLiteStore(dbPath, nil)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()

	empty, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	in := []card.Card{
		{
			ID:       "a",
			Language: "ru",
			City:     "moscow",
			Icon:     card.IconDefault,
			Title:    "Red Square",
			Text:     "Once a market.",
			Options:  []string{},
			Reality:  "fact",
			Tags:     []string{"square", "center"},
			Location: card.PlaceLocation("", "Red Square", &card.GPS{Lat: 55.7539, Lng: 37.6208}),
		},
		{
			ID:           "b",
			Interactive:  true,
			Language:     "ru",
			Icon:         card.IconLegend,
			Question:     "Which tower?",
			Options:      []string{"x", "y"},
			CorrectIndex: card.IntPtr(1),
			Reality:      "legend",
			Location:     card.LegacyLocation("spb"),
		},
		{
			ID:       "c",
			Language: "en",
			Title:    "No location",
		},
	}
	require.NoError(t, st.Save(ctx, in))

	out, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	// updating "a" keeps its position, dropping "c" removes it, "d" goes last
	updated := []card.Card{
		{ID: "d", Language: "cn", Title: "new"},
		{ID: "b", Language: "ru", Interactive: true, Options: []string{"x"}, CorrectIndex: card.IntPtr(0)},
		{ID: "a", Language: "ru", Title: "Red Square, again"},
	}
	require.NoError(t, st.Save(ctx, updated))

	out, err = st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "Red Square, again", out[0].Title)
	assert.Equal(t, "b", out[1].ID)
	assert.Equal(t, 0, *out[1].CorrectIndex)
	assert.Equal(t, "d", out[2].ID)
}

func TestSQLiteStoreReopen(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "cards.db")
	ctx := context.Background()

	st, err := store.NewSQLiteStore(dbPath, nil)
	require.NoError(t, err)
	require.NoError(t, st.Save(ctx, []card.Card{{ID: "a", Language: "ru"}}))
	require.NoError(t, st.Close())

	st, err = store.NewSQLiteStore(dbPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})

	out, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].ID)
}
