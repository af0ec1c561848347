package game

import "github.com/lox/blackjack/cards"

// Outcome is the settled result of a player hand.
type Outcome string

const (
	OutcomeNone      Outcome = ""
	OutcomeWin       Outcome = "win"
	OutcomeLose      Outcome = "lose"
	OutcomePush      Outcome = "push"
	OutcomeBlackjack Outcome = "blackjack"
	OutcomeSurrender Outcome = "surrender"
)

// String returns the string representation of the outcome
func (o Outcome) String() string { return string(o) }

// IsLoss reports whether the outcome counts as a loss for streaks.
func (o Outcome) IsLoss() bool { return o == OutcomeLose || o == OutcomeSurrender }

// Settle compares a finished player hand against the dealer's final hand and
// returns the outcome and the amount credited back to the balance. The
// player's bet has already been debited, so a loss credits nothing.
//
// naturalPays is false for split hands and multi-seat rounds; a two-card 21
// there still pushes against a dealer natural but is paid as a plain total.
func Settle(player, dealer []cards.Card, bet int, naturalPays bool) (Outcome, int) {
	pv, _ := HandValue(player)
	dv, _ := HandValue(dealer)
	playerBJ := IsBlackjack(player)
	dealerBJ := IsBlackjack(dealer)

	switch {
	case pv > 21:
		return OutcomeLose, 0
	case dealerBJ && playerBJ:
		return OutcomePush, bet
	case dealerBJ:
		return OutcomeLose, 0
	case playerBJ && naturalPays:
		return OutcomeBlackjack, bet + bet*3/2
	case dv > 21:
		return OutcomeWin, 2 * bet
	case pv > dv:
		return OutcomeWin, 2 * bet
	case pv == dv:
		return OutcomePush, bet
	default:
		return OutcomeLose, 0
	}
}

// SurrenderRefund is the part of bet returned on surrender.
func SurrenderRefund(bet int) int { return bet / 2 }

// InsuranceStake is the insurance side bet for a given main bet and the
// balance left after that bet was committed.
func InsuranceStake(bet, balance int) int {
	return min(bet/2, balance)
}
