// Package selector picks the card to show for a language and city.
//
// # Filtering
//
// A card is eligible when its language equals the requested language and,
// unless the requested city is CityAll, its effective city (see
// card.Card.EffectiveCity) equals the requested city. Both comparisons are
// exact after lower-casing.
//
// # Selection
//
// A roll in [1, 100] decides the kind of card. Rolls up to QuizThreshold
// pick a quiz when any quiz is eligible. Every other roll picks a fact, and
// falls back to a quiz when no fact is eligible. ErrNoEligibleCards is only
// returned when nothing matches at all.
package selector

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"sync"

	"github.com/arcanaland/wanderwheel/internal/card"
	"github.com/arcanaland/wanderwheel/internal/random"
)

// CityAll matches every effective city
const CityAll = "all"

// QuizThreshold is the highest roll that prefers a quiz
const QuizThreshold = 20

// RollSides is the size of the roll range
const RollSides = 100

// ErrNoEligibleCards is returned when no card matches the language and city
var ErrNoEligibleCards = errors.New("no eligible cards")

// Loader provides a fresh snapshot of the corpus
type Loader interface {
	Load(ctx context.Context) ([]card.Card, error)
}

// Pools holds the eligible cards for one filter, split by kind
type Pools struct {
	Facts   []card.Card
	Quizzes []card.Card
}

// Empty reports whether nothing matched
func (p Pools) Empty() bool {
	return len(p.Facts) == 0 && len(p.Quizzes) == 0
}

// Filter partitions the eligible cards into facts and quizzes, keeping corpus order
func Filter(cards []card.Card, language, city string) Pools {
	language = strings.ToLower(language)
	city = strings.ToLower(city)

	pools := Pools{Facts: []card.Card{}, Quizzes: []card.Card{}}
	for _, c := range cards {
		if !Matches(c, language, city) {
			continue
		}
		if c.IsQuiz() {
			pools.Quizzes = append(pools.Quizzes, c)
		} else {
			pools.Facts = append(pools.Facts, c)
		}
	}
	return pools
}

// Matches reports whether a card is eligible for the given filter
func Matches(c card.Card, language, city string) bool {
	if strings.ToLower(c.Language) != strings.ToLower(language) {
		return false
	}
	city = strings.ToLower(city)
	if city == CityAll {
		return true
	}
	return c.EffectiveCity() == city
}

// Selector draws cards from a corpus
type Selector struct {
	loader Loader
	logger *slog.Logger

	mu   sync.Mutex
	rng  *rand.Rand
	roll func() int
}

// Option configures a Selector
type Option func(*Selector)

// WithLogger sets the logger used for load failures and draws
func WithLogger(logger *slog.Logger) Option {
	return func(s *Selector) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRand sets the random source used for rolls and picks
func WithRand(rng *rand.Rand) Option {
	return func(s *Selector) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithRoller replaces the roll with a fixed sequence or function.
// The function must return values in [1, RollSides].
func WithRoller(roll func() int) Option {
	return func(s *Selector) {
		s.roll = roll
	}
}

// New creates a Selector over loader. Without WithRand the random source is
// seeded from crypto/rand.
func New(loader Loader, opts ...Option) *Selector {
	s := &Selector{
		loader: loader,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		seed, err := random.NewSeed()
		if err != nil {
			s.logger.Warn("falling back to a fixed random seed", "error", err)
			seed = 1
		}
		s.rng = rand.New(rand.NewSource(seed))
	}
	return s
}

// Pools loads the corpus and returns the eligible cards for the filter.
// A load failure is logged and treated as an empty corpus.
func (s *Selector) Pools(ctx context.Context, language, city string) Pools {
	cards, err := s.loader.Load(ctx)
	if err != nil {
		s.logger.Error("card corpus unavailable, treating as empty", "error", err)
	}

	pools := Filter(cards, language, city)
	s.logger.Debug("filtered cards",
		"language", strings.ToLower(language),
		"city", strings.ToLower(city),
		"facts", len(pools.Facts),
		"quizzes", len(pools.Quizzes))
	return pools
}

// SelectCard picks one card for the language and city
func (s *Selector) SelectCard(ctx context.Context, language, city string) (card.Card, error) {
	pools := s.Pools(ctx, language, city)

	roll := s.nextRoll()
	c, err := s.Pick(pools, roll)
	if err != nil {
		return card.Card{}, err
	}
	s.logger.Debug("card selected", "roll", roll, "id", c.ID, "quiz", c.IsQuiz())
	return c, nil
}

// Pick applies the selection rule to pools for a given roll
func (s *Selector) Pick(pools Pools, roll int) (card.Card, error) {
	if roll <= QuizThreshold && len(pools.Quizzes) > 0 {
		return s.choose(pools.Quizzes), nil
	}
	if len(pools.Facts) > 0 {
		return s.choose(pools.Facts), nil
	}
	if len(pools.Quizzes) > 0 {
		return s.choose(pools.Quizzes), nil
	}
	return card.Card{}, ErrNoEligibleCards
}

func (s *Selector) nextRoll() int {
	if s.roll != nil {
		return s.roll()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(RollSides) + 1
}

func (s *Selector) choose(cards []card.Card) card.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cards[s.rng.Intn(len(cards))]
}
