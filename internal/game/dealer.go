package game

import "github.com/lox/blackjack/cards"

// DealerStandsOn is the total at which the dealer stops drawing. Soft and
// hard 17 are treated alike.
const DealerStandsOn = 17

// PlayDealer runs the fixed dealer policy. It reveals any hidden card, then
// draws from deck while the total is below 17. The dealer slice is not
// modified; the returned cards are every card that became visible, in order,
// revealed hole cards first. Drawing stops early if the deck runs out.
func PlayDealer(dealer []cards.Card, deck *cards.Deck) []cards.Card {
	hand := make([]cards.Card, len(dealer))
	copy(hand, dealer)

	var visible []cards.Card
	for i := range hand {
		if hand[i].Hidden {
			hand[i].Hidden = false
			visible = append(visible, hand[i])
		}
	}

	for {
		if v, _ := HandValue(hand); v >= DealerStandsOn {
			break
		}
		c, ok := deck.Deal()
		if !ok {
			break
		}
		hand = append(hand, c)
		visible = append(visible, c)
	}
	return visible
}
