package game

import "github.com/lox/blackjack/cards"

// HandValue returns the best total of the visible cards and whether that
// total is soft. Aces count 11 and are demoted to 1, one at a time, while
// the total exceeds 21. Hidden cards are ignored.
func HandValue(cs []cards.Card) (total int, soft bool) {
	aces := 0
	for _, c := range cs {
		if c.Hidden {
			continue
		}
		total += c.Value()
		if c.IsAce() {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total, aces > 0
}

// IsBlackjack reports whether cs is a natural: exactly two visible cards
// totalling 21.
func IsBlackjack(cs []cards.Card) bool {
	if len(cs) != 2 || cs[0].Hidden || cs[1].Hidden {
		return false
	}
	v, _ := HandValue(cs)
	return v == 21
}

// IsBust reports whether the visible total exceeds 21.
func IsBust(cs []cards.Card) bool {
	v, _ := HandValue(cs)
	return v > 21
}

// IsPair reports whether cs is two cards of equal blackjack value.
func IsPair(cs []cards.Card) bool {
	return len(cs) == 2 && cs[0].Value() == cs[1].Value()
}

// Hand is one player hand. Doubled and split hands carry their own bet.
type Hand struct {
	Cards     []cards.Card
	Bet       int
	Doubled   bool
	FromSplit bool
	Done      bool

	// Set at resolution.
	Outcome Outcome
	Net     int
}

// Value returns the hand's best total.
func (h *Hand) Value() int {
	v, _ := HandValue(h.Cards)
	return v
}

// IsSoft reports whether an ace is still counted as 11.
func (h *Hand) IsSoft() bool {
	_, soft := HandValue(h.Cards)
	return soft
}

// IsBlackjack reports whether the hand is a two-card 21.
func (h *Hand) IsBlackjack() bool { return IsBlackjack(h.Cards) }

// IsBust reports whether the hand is over 21.
func (h *Hand) IsBust() bool { return IsBust(h.Cards) }
