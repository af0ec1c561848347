// Package game implements the single-deck blackjack round engine.
//
// The main type is Table, which owns the player's balance, the deck RNG, the
// Hi-Lo running count and the current Round. Every operation runs to
// completion before returning and either applies all of its effects or none
// of them; illegal actions return a sentinel error and leave the table
// untouched, so callers that gate actions on Eligibility may ignore errors.
//
// # Basic Usage
//
//	t := game.NewTable(1000)
//	if err := t.StartRound(100, 1); err != nil {
//	    return err
//	}
//	_ = t.Hit(0)
//	_ = t.Stand(0)
//	snap := t.Snapshot()
//
// # Deterministic Testing
//
// Inject a seeded RNG for reproducible shuffles, or a deck factory that
// returns stacked decks for exact card sequences:
//
//	t := game.NewTable(1000, game.WithRNG(randutil.New(42)))
//
//	deck := cards.NewStackedDeck(cards.MustParseCards("Th 9s 7d 6c Kh")...)
//	t := game.NewTable(1000, game.WithDeckFactory(func(*rand.Rand) *cards.Deck { return deck }))
//
// # Dealer Pacing
//
// The dealer policy runs synchronously inside the operation that ends player
// play. The ordered cards it made visible are carried on DealerTurnEvent so a
// presentation layer can replay them at whatever pace it likes.
package game
