package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lox/blackjack/internal/store"
)

// StatsCmd prints or resets the lifetime statistics.
type StatsCmd struct {
	Reset bool `help:"Delete the stored statistics"`
}

func (c *StatsCmd) Run(g *Globals) error {
	cfg, err := g.Load()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return err
	}
	defer s.Close()

	if c.Reset {
		if err := s.Delete(ctx, store.KeyLifetimeStats); err != nil {
			return err
		}
		fmt.Println("Lifetime statistics cleared")
		return nil
	}

	st, err := loadLifetime(ctx, s)
	if err != nil {
		return err
	}
	if st.Rounds == 0 {
		fmt.Println("No rounds recorded yet")
		return nil
	}
	if err := st.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	fmt.Printf("Rounds:      %d (%d hands)\n", st.Rounds, st.Hands)
	fmt.Printf("Outcomes:    %d won, %d lost, %d pushed, %d blackjacks, %d surrendered\n",
		st.Wins, st.Losses, st.Pushes, st.Blackjacks, st.Surrenders)
	fmt.Printf("Busts:       %d  Doubles: %d  Splits: %d\n", st.Busts, st.Doubles, st.Splits)
	fmt.Printf("Insurance:   %d taken, %d won\n", st.InsuranceTaken, st.InsuranceWon)
	fmt.Printf("Wagered:     %d  Net: %+d  Edge: %.2f%%\n", st.Wagered, st.Net, st.HouseEdge()*100)
	fmt.Printf("Biggest:     win %d, loss %d\n", st.BiggestWin, st.BiggestLoss)
	fmt.Printf("Best streak: %d\n", st.BestStreak)
	fmt.Printf("Per round:   %.3f ± %.3f units\n", st.Mean(), st.StdError())
	return nil
}
