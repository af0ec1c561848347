package strategy

import (
	"fmt"
	"io"
	"strings"

	"github.com/lox/blackjack/cards"
	"github.com/lox/blackjack/internal/game"
)

// Upcards lists dealer upcards in chart column order.
var Upcards = []cards.Rank{cards.Two, cards.Three, cards.Four, cards.Five, cards.Six,
	cards.Seven, cards.Eight, cards.Nine, cards.Ten, cards.Ace}

var chartCodes = map[game.Action]string{
	game.ActionHit:       "H",
	game.ActionStand:     "S",
	game.ActionDouble:    "D",
	game.ActionSplit:     "P",
	game.ActionSurrender: "R",
}

// WriteChart prints hard, soft and pair tables with every action available.
func WriteChart(w io.Writer) error {
	full := game.Eligibility{Hit: true, Stand: true, Double: true, Split: true, Surrender: true}

	var b strings.Builder
	header := func(title string) {
		fmt.Fprintf(&b, "%-8s", title)
		for _, up := range Upcards {
			fmt.Fprintf(&b, "%3s", up)
		}
		b.WriteString("\n")
	}
	row := func(label string, hand []cards.Card, e game.Eligibility) {
		fmt.Fprintf(&b, "%-8s", label)
		for _, up := range Upcards {
			a := Advise(hand, cards.NewCard(up, cards.Spades), e)
			fmt.Fprintf(&b, "%3s", chartCodes[a])
		}
		b.WriteString("\n")
	}

	noSplit := full
	noSplit.Split = false

	header("Hard")
	for total := 5; total <= 20; total++ {
		row(fmt.Sprintf("%d", total), hardHand(total), noSplit)
	}
	b.WriteString("\n")
	header("Soft")
	for other := cards.Two; other <= cards.Nine; other++ {
		hand := []cards.Card{cards.NewCard(cards.Ace, cards.Hearts), cards.NewCard(other, cards.Clubs)}
		row(fmt.Sprintf("A,%s", other), hand, noSplit)
	}
	b.WriteString("\n")
	header("Pairs")
	for _, r := range []cards.Rank{cards.Ace, cards.Two, cards.Three, cards.Four, cards.Five,
		cards.Six, cards.Seven, cards.Eight, cards.Nine, cards.Ten} {
		hand := []cards.Card{cards.NewCard(r, cards.Hearts), cards.NewCard(r, cards.Clubs)}
		row(fmt.Sprintf("%s,%s", r, r), hand, full)
	}
	b.WriteString("\nH hit  S stand  D double  P split  R surrender\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// hardHand builds a two-card non-pair hand with the given hard total.
func hardHand(total int) []cards.Card {
	lo := 2
	if total-lo == lo {
		lo = 3
	}
	hi := total - lo
	if hi > 10 {
		lo = total - 10
		hi = 10
	}
	return []cards.Card{cards.NewCard(cards.Rank(lo), cards.Hearts), cards.NewCard(cards.Rank(hi), cards.Clubs)}
}

