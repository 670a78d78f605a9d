package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/arcanaland/wanderwheel/internal/card"
)

// CachedStore serves the last successful load for at most ttl.
// Failed loads are never cached and a Save always invalidates.
type CachedStore struct {
	next Store
	ttl  time.Duration
	now  func() time.Time

	mu       sync.RWMutex
	cards    []card.Card
	loadedAt time.Time
	valid    bool
}

// Cached wraps next with a time-bounded cache. A ttl of zero or less returns
// next unchanged, so every Load reads the source.
func Cached(next Store, ttl time.Duration) Store {
	if ttl <= 0 {
		return next
	}
	return newCachedStore(next, ttl, time.Now)
}

func newCachedStore(next Store, ttl time.Duration, now func() time.Time) *CachedStore {
	return &CachedStore{next: next, ttl: ttl, now: now}
}

func (s *CachedStore) Load(ctx context.Context) ([]card.Card, error) {
	s.mu.RLock()
	if s.valid && s.now().Sub(s.loadedAt) < s.ttl {
		cards := slices.Clone(s.cards)
		s.mu.RUnlock()
		return cards, nil
	}
	s.mu.RUnlock()

	cards, err := s.next.Load(ctx)
	if err != nil {
		return cards, err
	}

	s.mu.Lock()
	s.cards = slices.Clone(cards)
	s.loadedAt = s.now()
	s.valid = true
	s.mu.Unlock()

	return cards, nil
}

func (s *CachedStore) Save(ctx context.Context, cards []card.Card) error {
	err := s.next.Save(ctx, cards)
	s.Invalidate()
	return err
}

// Invalidate drops the cached corpus
func (s *CachedStore) Invalidate() {
	s.mu.Lock()
	s.cards = nil
	s.valid = false
	s.mu.Unlock()
}

// Close closes the wrapped store when it holds resources
func (s *CachedStore) Close() error {
	if closer, ok := s.next.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
