package cards

import rand "math/rand/v2"

// DeckSize is the number of cards in a single deck.
const DeckSize = 52

// Deck is a single 52-card deck dealt from the top. Cards leave the deck
// exactly once; there is no discard pile or reshuffle mid-round.
type Deck struct {
	cards []Card
	next  int
}

// NewDeck creates a fresh deck shuffled with the provided RNG.
func NewDeck(rng *rand.Rand) *Deck {
	if rng == nil {
		panic("cards: rng is required")
	}
	d := &Deck{cards: make([]Card, 0, DeckSize)}
	for _, suit := range Suits {
		for _, rank := range Ranks {
			d.cards = append(d.cards, NewCard(rank, suit))
		}
	}

	// Fisher-Yates
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
	return d
}

// NewStackedDeck creates an unshuffled deck that deals the given cards in
// order, first card on top. Used for tests and replays.
func NewStackedDeck(cs ...Card) *Deck {
	d := &Deck{cards: make([]Card, len(cs))}
	for i, c := range cs {
		c.Hidden = false
		d.cards[i] = c
	}
	return d
}

// Deal removes and returns the top card. The second result is false when the
// deck is empty.
func (d *Deck) Deal() (Card, bool) {
	if d.next >= len(d.cards) {
		return Card{}, false
	}
	c := d.cards[d.next]
	d.next++
	return c, true
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}
