package strategy

import (
	"fmt"

	"github.com/lox/blackjack/cards"
	"github.com/lox/blackjack/internal/game"
)

// Recommend returns the chart action for hand against the dealer's upcard.
// The result is always one of Hit, Stand, Double or Split.
func Recommend(hand []cards.Card, dealerUp cards.Card, canDouble, canSplit bool) game.Action {
	s := NewSituation(hand, dealerUp, canDouble, canSplit)
	if r, ok := Match(s); ok {
		return r.decide(s)
	}
	return game.ActionHit
}

// ShouldSurrender reports whether surrender is advised: hard 16 against 9,
// 10 or ace, and hard 15 against 10.
func ShouldSurrender(hand []cards.Card, dealerUp cards.Card) bool {
	total, isSoft := game.HandValue(hand)
	if isSoft {
		return false
	}
	up := dealerUp.Value()
	switch total {
	case 16:
		return up >= 9
	case 15:
		return up == 10
	}
	return false
}

// Advise picks the action for the current decision point. Insurance is
// always declined; surrender, when legal and advised, beats the chart.
func Advise(hand []cards.Card, dealerUp cards.Card, e game.Eligibility) game.Action {
	if e.Insurance {
		return game.ActionDeclineInsurance
	}
	if e.Surrender && ShouldSurrender(hand, dealerUp) {
		return game.ActionSurrender
	}
	return Recommend(hand, dealerUp, e.Double, e.Split)
}

// AdviseSnapshot advises on the active hand of snap. It returns false when
// no decision is pending.
func AdviseSnapshot(snap game.Snapshot) (game.Action, bool) {
	up, ok := snap.DealerUp()
	if !ok {
		return "", false
	}
	if snap.Phase == game.PhaseInsurance {
		return game.ActionDeclineInsurance, true
	}
	h, ok := snap.ActiveHand()
	if !ok {
		return "", false
	}
	return Advise(h.Cards, up, snap.Eligible), true
}

// Hint returns a one-line explanation of the advised action.
func Hint(hand []cards.Card, dealerUp cards.Card, e game.Eligibility) string {
	action := Advise(hand, dealerUp, e)
	s := NewSituation(hand, dealerUp, e.Double, e.Split)
	switch action {
	case game.ActionDeclineInsurance:
		return "Decline insurance: it loses money without a count"
	case game.ActionSurrender:
		return fmt.Sprintf("Surrender %s", s)
	}
	if r, ok := Match(s); ok {
		if r.Action == game.ActionDouble && action != game.ActionDouble {
			return fmt.Sprintf("%s %s (would double if allowed)", actionName(action), s)
		}
		return fmt.Sprintf("%s %s (%s)", actionName(action), s, r.Name)
	}
	return fmt.Sprintf("%s %s", actionName(action), s)
}

func actionName(a game.Action) string {
	switch a {
	case game.ActionHit:
		return "Hit"
	case game.ActionStand:
		return "Stand"
	case game.ActionDouble:
		return "Double"
	case game.ActionSplit:
		return "Split"
	case game.ActionSurrender:
		return "Surrender"
	}
	return string(a)
}
