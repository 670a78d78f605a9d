package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/wanderwheel/internal/card"
)

type countingStore struct {
	mu    sync.Mutex
	loads int
	cards []card.Card
	err   error
}

func (s *countingStore) Load(context.Context) ([]card.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.err != nil {
		return []card.Card{}, s.err
	}
	return append([]card.Card{}, s.cards...), nil
}

func (s *countingStore) Save(_ context.Context, cards []card.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards = cards
	return nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func TestCachedZeroTTLPassesThrough(t *testing.T) {
	t.Parallel()

	next := &countingStore{}
	assert.Same(t, next, Cached(next, 0))
}

func TestCachedStalenessBounded(t *testing.T) {
	t.Parallel()

	next := &countingStore{cards: []card.Card{{ID: "a", Language: "ru"}}}
	clock := &fakeClock{now: time.Unix(1000, 0)}
	st := newCachedStore(next, time.Minute, clock.Now)
	ctx := context.Background()

	_, err := st.Load(ctx)
	require.NoError(t, err)
	_, err = st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, next.loads)

	// the source changes behind the cache's back
	next.cards = []card.Card{{ID: "b", Language: "ru"}}

	clock.now = clock.now.Add(59 * time.Second)
	cards, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", cards[0].ID)

	clock.now = clock.now.Add(time.Second)
	cards, err = st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", cards[0].ID)
	assert.Equal(t, 2, next.loads)
}

func TestCachedDoesNotCacheFailures(t *testing.T) {
	t.Parallel()

	next := &countingStore{err: errors.Join(ErrLoadFailure, errors.New("boom"))}
	st := newCachedStore(next, time.Hour, time.Now)
	ctx := context.Background()

	_, err := st.Load(ctx)
	assert.ErrorIs(t, err, ErrLoadFailure)
	_, err = st.Load(ctx)
	assert.ErrorIs(t, err, ErrLoadFailure)
	assert.Equal(t, 2, next.loads)

	next.err = nil
	next.cards = []card.Card{{ID: "a", Language: "ru"}}
	cards, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, cards, 1)
}

func TestCachedSaveInvalidates(t *testing.T) {
	t.Parallel()

	next := &countingStore{cards: []card.Card{{ID: "a", Language: "ru"}}}
	st := newCachedStore(next, time.Hour, time.Now)
	ctx := context.Background()

	_, err := st.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, st.Save(ctx, []card.Card{{ID: "z", Language: "en"}}))

	cards, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "z", cards[0].ID)
	assert.Equal(t, 2, next.loads)
}

func TestCachedReturnsCopies(t *testing.T) {
	t.Parallel()

	next := &countingStore{cards: []card.Card{{ID: "a", Language: "ru"}}}
	st := newCachedStore(next, time.Hour, time.Now)
	ctx := context.Background()

	cards, err := st.Load(ctx)
	require.NoError(t, err)
	cards[0].ID = "mutated"

	again, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].ID)
}
