package game

import (
	"testing"

	"github.com/lox/blackjack/cards"
)

func TestHandValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		cards string
		value int
		soft  bool
	}{
		{"empty", "", 0, false},
		{"soft 17", "As 6d", 17, true},
		{"ace demoted", "As 6d 9c", 16, false},
		{"ace nine two", "Ah 9s 2c", 12, false},
		{"two aces", "As Ad", 12, true},
		{"four aces", "As Ad Ah Ac", 14, true},
		{"blackjack", "As Kd", 21, true},
		{"faces", "Kd Qs", 20, false},
		{"bust", "Kd Qs 5c", 25, false},
		{"soft 21 three cards", "As 5d 5c", 21, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v, soft := HandValue(cards.MustParseCards(tt.cards))
			if v != tt.value || soft != tt.soft {
				t.Errorf("HandValue(%s) = %d,%v want %d,%v", tt.cards, v, soft, tt.value, tt.soft)
			}
		})
	}
}

func TestHandValueIgnoresHidden(t *testing.T) {
	t.Parallel()

	cs := cards.MustParseCards("9h Td")
	cs[1].Hidden = true
	if v, _ := HandValue(cs); v != 9 {
		t.Errorf("value with hidden card = %d, want 9", v)
	}
	if IsBlackjack(cards.MustParseCards("As Kd")[:1]) {
		t.Error("one card cannot be blackjack")
	}
}

func TestIsBlackjack(t *testing.T) {
	t.Parallel()

	if !IsBlackjack(cards.MustParseCards("As Kh")) {
		t.Error("A,K should be blackjack")
	}
	if IsBlackjack(cards.MustParseCards("As 5h 5c")) {
		t.Error("three-card 21 is not blackjack")
	}
	hidden := cards.MustParseCards("As Kh")
	hidden[1].Hidden = true
	if IsBlackjack(hidden) {
		t.Error("blackjack with a hidden card should not count")
	}
}

func TestIsPair(t *testing.T) {
	t.Parallel()

	if !IsPair(cards.MustParseCards("Kd Ts")) {
		t.Error("K,T share value 10")
	}
	if IsPair(cards.MustParseCards("8d 8s 8c")) {
		t.Error("three cards are not a pair")
	}
	if IsPair(cards.MustParseCards("8d 9s")) {
		t.Error("8,9 are not a pair")
	}
}

func TestSettle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		player      string
		dealer      string
		naturalPays bool
		outcome     Outcome
		credit      int
	}{
		{"player bust loses to dealer bust", "Th 6c Kd", "Tc 6d Ks", true, OutcomeLose, 0},
		{"both blackjack push", "As Kd", "Ah Qc", true, OutcomePush, 100},
		{"dealer blackjack", "Th 9c", "Ah Qc", true, OutcomeLose, 0},
		{"player blackjack", "As Kd", "9h 9c", true, OutcomeBlackjack, 250},
		{"split natural pays even", "As Kd", "9h 9c", false, OutcomeWin, 200},
		{"dealer bust", "Th 7c", "Td 6s Kh", true, OutcomeWin, 200},
		{"higher total", "Th 9c", "Td 8s", true, OutcomeWin, 200},
		{"equal total", "Th 8c", "Td 8s", true, OutcomePush, 100},
		{"lower total", "Th 7c", "Td 8s", true, OutcomeLose, 0},
		{"split natural pushes dealer natural", "As Kd", "Ah Qc", false, OutcomePush, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			outcome, credit := Settle(cards.MustParseCards(tt.player), cards.MustParseCards(tt.dealer), 100, tt.naturalPays)
			if outcome != tt.outcome || credit != tt.credit {
				t.Errorf("Settle = %s,%d want %s,%d", outcome, credit, tt.outcome, tt.credit)
			}
		})
	}
}

func TestBlackjackPayoutFloors(t *testing.T) {
	t.Parallel()

	_, credit := Settle(cards.MustParseCards("As Kd"), cards.MustParseCards("9h 9c"), 15, true)
	if credit != 15+22 {
		t.Errorf("credit = %d, want %d", credit, 37)
	}
}
