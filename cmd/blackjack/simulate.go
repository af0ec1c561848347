package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/simulator"
)

// SimulateCmd plays many rounds with a fixed policy and reports the result.
type SimulateCmd struct {
	Rounds  int           `default:"100000" help:"Rounds to simulate"`
	Seed    int64         `default:"0" help:"Base RNG seed (0 for random)"`
	Workers int           `default:"0" help:"Parallel workers (0 for one per CPU)"`
	Bet     int           `default:"10" help:"Bet per hand"`
	Seats   int           `default:"1" help:"Hands per round (1-3)"`
	Policy  []string      `default:"basic" help:"Policies to run, comma separated"`
	Timeout time.Duration `default:"0" help:"Stop after this long (0 for no limit)"`
	Verbose bool          `short:"V" help:"Log worker progress"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, err := g.Load()
	if err != nil {
		return err
	}
	logger := shared.SetupLogger(cfg.LogLevel)
	ctx := shared.SetupSignalHandler(logger)

	level := "warn"
	if c.Verbose {
		level = "debug"
	}

	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	for i, policy := range c.Policy {
		policy = strings.TrimSpace(policy)
		simCfg := simulator.Config{
			Rounds:          c.Rounds,
			Seed:            seed,
			Workers:         c.Workers,
			Bet:             c.Bet,
			Seats:           c.Seats,
			StartingBalance: cfg.Table.StartingBalance,
			Policy:          policy,
			Timeout:         c.Timeout,
			Logger:          shared.SetupCharmLogger(os.Stderr, level),
		}
		sim, err := simulator.New(simCfg)
		if err != nil {
			return err
		}
		res, err := sim.Run(ctx)
		if err != nil {
			return fmt.Errorf("simulate %s: %w", policy, err)
		}
		if i > 0 {
			fmt.Println()
		}
		simulator.PrintSummary(os.Stdout, res, simCfg)
	}
	return nil
}
