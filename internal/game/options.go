package game

import (
	rand "math/rand/v2"
	"time"

	"github.com/lox/blackjack/cards"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/rs/zerolog"
)

// Table defaults.
const (
	DefaultBetStep  = 10
	DefaultMinBet   = 10
	DefaultMaxSeats = 3
	// MaxSeats is the hard upper bound on concurrent player hands.
	MaxSeats = 3
)

// DeckFactory builds the deck for a new round.
type DeckFactory func(rng *rand.Rand) *cards.Deck

// Option configures a Table during creation.
type Option func(*tableConfig)

type tableConfig struct {
	rng         *rand.Rand
	deckFactory DeckFactory
	betStep     int
	minBet      int
	maxBet      int // 0 means no limit
	maxSeats    int
	logger      zerolog.Logger
	bus         EventBus
	now         func() time.Time
}

func defaultConfig() *tableConfig {
	return &tableConfig{
		deckFactory: cards.NewDeck,
		betStep:     DefaultBetStep,
		minBet:      DefaultMinBet,
		maxSeats:    DefaultMaxSeats,
		logger:      zerolog.Nop(),
		now:         time.Now,
	}
}

// WithRNG sets the RNG used to shuffle every round's deck. Without it the
// table seeds one from the wall clock.
func WithRNG(rng *rand.Rand) Option {
	return func(c *tableConfig) {
		c.rng = rng
	}
}

// WithSeed is shorthand for WithRNG(randutil.New(seed)).
func WithSeed(seed int64) Option {
	return func(c *tableConfig) {
		c.rng = randutil.New(seed)
	}
}

// WithDeckFactory replaces fresh shuffled decks, typically with stacked
// decks for tests and replays.
func WithDeckFactory(f DeckFactory) Option {
	return func(c *tableConfig) {
		c.deckFactory = f
	}
}

// WithStackedDecks deals the given decks in order, one per round. Once they
// are used up rounds fall back to shuffled decks.
func WithStackedDecks(decks ...[]cards.Card) Option {
	return func(c *tableConfig) {
		next := 0
		c.deckFactory = func(rng *rand.Rand) *cards.Deck {
			if next >= len(decks) {
				return cards.NewDeck(rng)
			}
			d := cards.NewStackedDeck(decks[next]...)
			next++
			return d
		}
	}
}

// WithBetStep requires bets to be multiples of step.
func WithBetStep(step int) Option {
	return func(c *tableConfig) {
		c.betStep = step
	}
}

// WithBetLimits sets the per-seat minimum and maximum bet. A zero maximum
// means unlimited.
func WithBetLimits(minBet, maxBet int) Option {
	return func(c *tableConfig) {
		c.minBet = minBet
		c.maxBet = maxBet
	}
}

// WithMaxSeats caps the number of concurrent hands a round may open. It is
// clamped to 1..3.
func WithMaxSeats(n int) Option {
	return func(c *tableConfig) {
		c.maxSeats = n
	}
}

// WithLogger sets the zerolog logger for table diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *tableConfig) {
		c.logger = logger
	}
}

// WithEventBus publishes table events on bus instead of a private one.
func WithEventBus(bus EventBus) Option {
	return func(c *tableConfig) {
		c.bus = bus
	}
}
