package strategy

import (
	"fmt"

	"github.com/lox/blackjack/cards"
	"github.com/lox/blackjack/internal/game"
)

// Situation is the decision point a rule is matched against. Up is the
// dealer's upcard value with aces as 11 and faces as 10.
type Situation struct {
	Total     int
	Soft      bool
	Pair      bool
	PairValue int
	Up        int
	CanDouble bool
	CanSplit  bool
}

// NewSituation derives a Situation from a hand and dealer upcard.
func NewSituation(hand []cards.Card, dealerUp cards.Card, canDouble, canSplit bool) Situation {
	total, soft := game.HandValue(hand)
	s := Situation{
		Total:     total,
		Soft:      soft,
		Pair:      game.IsPair(hand),
		Up:        dealerUp.Value(),
		CanDouble: canDouble,
		CanSplit:  canSplit,
	}
	if s.Pair {
		s.PairValue = hand[0].Value()
	}
	return s
}

// String describes the hand, e.g. "pair of 8s vs 10" or "soft 18 vs A".
func (s Situation) String() string {
	up := fmt.Sprintf("%d", s.Up)
	if s.Up == 11 {
		up = "A"
	}
	switch {
	case s.Pair && s.CanSplit:
		pv := fmt.Sprintf("%ds", s.PairValue)
		if s.PairValue == 11 {
			pv = "aces"
		}
		return fmt.Sprintf("pair of %s vs %s", pv, up)
	case s.Soft:
		return fmt.Sprintf("soft %d vs %s", s.Total, up)
	default:
		return fmt.Sprintf("hard %d vs %s", s.Total, up)
	}
}

// Rule is one row of the chart. When Action is Double and doubling is not
// available, Otherwise is returned instead.
type Rule struct {
	Name      string
	Match     func(Situation) bool
	Action    game.Action
	Otherwise game.Action
}

func (r Rule) decide(s Situation) game.Action {
	if r.Action == game.ActionDouble && !s.CanDouble {
		return r.Otherwise
	}
	return r.Action
}

func upIn(lo, hi int) func(int) bool {
	return func(up int) bool { return up >= lo && up <= hi }
}

func upAny(vals ...int) func(int) bool {
	return func(up int) bool {
		for _, v := range vals {
			if up == v {
				return true
			}
		}
		return false
	}
}

func always(int) bool { return true }

func pair(value int, vs func(int) bool) func(Situation) bool {
	return func(s Situation) bool { return s.PairValue == value && vs(s.Up) }
}

func soft(lo, hi int, vs func(int) bool) func(Situation) bool {
	return func(s Situation) bool { return s.Total >= lo && s.Total <= hi && vs(s.Up) }
}

func hard(lo, hi int, vs func(int) bool) func(Situation) bool {
	return soft(lo, hi, vs)
}

// PairRules are consulted first, only when the hand may be split.
var PairRules = []Rule{
	{Name: "split aces", Match: pair(11, always), Action: game.ActionSplit},
	{Name: "split eights", Match: pair(8, always), Action: game.ActionSplit},
	{Name: "split nines vs 2-6, 8, 9", Match: pair(9, upAny(2, 3, 4, 5, 6, 8, 9)), Action: game.ActionSplit},
	{Name: "split sevens vs 2-7", Match: pair(7, upIn(2, 7)), Action: game.ActionSplit},
	{Name: "split sixes vs 2-6", Match: pair(6, upIn(2, 6)), Action: game.ActionSplit},
	{Name: "split fours vs 5-6", Match: pair(4, upIn(5, 6)), Action: game.ActionSplit},
	{Name: "split threes vs 2-7", Match: pair(3, upIn(2, 7)), Action: game.ActionSplit},
	{Name: "split twos vs 2-7", Match: pair(2, upIn(2, 7)), Action: game.ActionSplit},
}

// SoftRules apply when an ace still counts as 11.
var SoftRules = []Rule{
	{Name: "soft 20+ stands", Match: soft(20, 21, always), Action: game.ActionStand},
	{Name: "soft 19 doubles vs 6", Match: soft(19, 19, upAny(6)), Action: game.ActionDouble, Otherwise: game.ActionStand},
	{Name: "soft 19 stands", Match: soft(19, 19, always), Action: game.ActionStand},
	{Name: "soft 18 doubles vs 3-6", Match: soft(18, 18, upIn(3, 6)), Action: game.ActionDouble, Otherwise: game.ActionStand},
	{Name: "soft 18 stands vs 2, 7, 8", Match: soft(18, 18, upAny(2, 7, 8)), Action: game.ActionStand},
	{Name: "soft 18 hits vs 9, 10, A", Match: soft(18, 18, upIn(9, 11)), Action: game.ActionHit},
	{Name: "soft 17 doubles vs 3-6", Match: soft(17, 17, upIn(3, 6)), Action: game.ActionDouble, Otherwise: game.ActionHit},
	{Name: "soft 17 hits", Match: soft(17, 17, always), Action: game.ActionHit},
}

// HardRules apply to every other hand.
var HardRules = []Rule{
	{Name: "hard 17+ stands", Match: hard(17, 99, always), Action: game.ActionStand},
	{Name: "hard 13-16 stands vs 2-6", Match: hard(13, 16, upIn(2, 6)), Action: game.ActionStand},
	{Name: "hard 13-16 hits", Match: hard(13, 16, always), Action: game.ActionHit},
	{Name: "hard 12 stands vs 4-6", Match: hard(12, 12, upIn(4, 6)), Action: game.ActionStand},
	{Name: "hard 12 hits", Match: hard(12, 12, always), Action: game.ActionHit},
	{Name: "hard 11 doubles vs 2-10", Match: hard(11, 11, upIn(2, 10)), Action: game.ActionDouble, Otherwise: game.ActionHit},
	{Name: "hard 10 doubles vs 2-9", Match: hard(10, 10, upIn(2, 9)), Action: game.ActionDouble, Otherwise: game.ActionHit},
	{Name: "hard 9 doubles vs 3-6", Match: hard(9, 9, upIn(3, 6)), Action: game.ActionDouble, Otherwise: game.ActionHit},
	{Name: "hard 8 or less hits", Match: hard(0, 8, always), Action: game.ActionHit},
}

// Match returns the first rule that applies to s, or false when the chart
// falls through to the default Hit.
func Match(s Situation) (Rule, bool) {
	if s.CanSplit && s.Pair {
		for _, r := range PairRules {
			if r.Match(s) {
				return r, true
			}
		}
	}
	table := HardRules
	if s.Soft {
		table = SoftRules
	}
	for _, r := range table {
		if r.Match(s) {
			return r, true
		}
	}
	return Rule{}, false
}
