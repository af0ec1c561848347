package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/lox/blackjack/cards"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/strategy"
)

// AdviseCmd prints the basic strategy decision for a hand.
type AdviseCmd struct {
	Hand        string `arg:"" optional:"" help:"Player cards, e.g. \"Ah 7d\""`
	Dealer      string `arg:"" optional:"" help:"Dealer up card, e.g. Ts"`
	Chart       bool   `help:"Print the full strategy chart instead"`
	NoDouble    bool   `help:"Doubling is not allowed"`
	NoSplit     bool   `help:"Splitting is not allowed"`
	NoSurrender bool   `help:"Surrender is not allowed"`
}

func (c *AdviseCmd) Run() error {
	if c.Chart {
		return strategy.WriteChart(os.Stdout)
	}
	if c.Hand == "" || c.Dealer == "" {
		return errors.New("a hand and a dealer card are required (or use --chart)")
	}

	hand, err := cards.ParseCards(c.Hand)
	if err != nil {
		return err
	}
	if len(hand) < 2 {
		return fmt.Errorf("a hand needs at least two cards, got %d", len(hand))
	}
	up, err := cards.ParseCard(c.Dealer)
	if err != nil {
		return err
	}

	two := len(hand) == 2
	e := game.Eligibility{
		Hit:       true,
		Stand:     true,
		Double:    two && !c.NoDouble,
		Split:     two && game.IsPair(hand) && !c.NoSplit,
		Surrender: two && !c.NoSurrender,
	}
	fmt.Println(strategy.Hint(hand, up, e))
	return nil
}
