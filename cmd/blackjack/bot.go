package main

import (
	"fmt"
	"os"

	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/simulator"
	"github.com/lox/blackjack/protocol"
	"github.com/lox/blackjack/sdk/client"
)

// BotCmd connects to a server and plays with a built-in policy.
type BotCmd struct {
	URL    string `default:"ws://localhost:8080/ws" help:"Server URL"`
	Rounds int    `default:"100" help:"Rounds to play"`
	Bet    int    `default:"10" help:"Bet per hand"`
	Seats  int    `default:"1" help:"Hands per round"`
	Policy string `default:"basic" help:"Decision policy"`
	Seed   int64  `default:"1" help:"Seed for the random policy"`
}

func (c *BotCmd) Run(g *Globals) error {
	cfg, err := g.Load()
	if err != nil {
		return err
	}
	logger := shared.SetupLogger(cfg.LogLevel)
	ctx := shared.SetupSignalHandler(logger)

	policy, err := simulator.ParsePolicy(c.Policy)
	if err != nil {
		return err
	}
	rng := randutil.New(c.Seed)

	conn, err := client.Dial(ctx, c.URL, client.WithLogger(shared.SetupCharmLogger(os.Stderr, cfg.LogLevel)))
	if err != nil {
		return err
	}
	defer conn.Close()

	logger.Info().
		Str("session_id", conn.Welcome().SessionID).
		Str("policy", policy.Name()).
		Int("rounds", c.Rounds).
		Msg("Bot connected")

	sum, err := client.RunBot(ctx, conn, client.BotConfig{
		Rounds: c.Rounds,
		Bet:    c.Bet,
		Seats:  c.Seats,
	}, func(state protocol.StateData) game.Action {
		return policy.Decide(state.Snapshot, rng)
	})
	if err != nil {
		return err
	}

	fmt.Printf("Played %d rounds (%d decisions, %d refills): net %+d, final balance %d\n",
		sum.Rounds, sum.Decisions, sum.Refills, sum.Net, sum.FinalBalance)
	return nil
}
