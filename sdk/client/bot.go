package client

import (
	"context"
	"fmt"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/protocol"
)

// Policy picks the action for the pending decision in state.
type Policy func(state protocol.StateData) game.Action

// BotConfig controls a bot session.
type BotConfig struct {
	Rounds int
	Bet    int
	Seats  int
	// Refill is the balance requested when the bankroll cannot cover the
	// next bet. Zero uses the starting balance from the welcome message.
	Refill int
}

// BotSummary reports what a bot session did.
type BotSummary struct {
	Rounds       int
	Decisions    int
	Refills      int
	Net          int
	FinalBalance int
}

// RunBot plays cfg.Rounds rounds on c, choosing every decision with policy.
func RunBot(ctx context.Context, c *Client, cfg BotConfig, policy Policy) (BotSummary, error) {
	var sum BotSummary
	if cfg.Seats <= 0 {
		cfg.Seats = 1
	}
	if cfg.Refill <= 0 {
		cfg.Refill = c.Welcome().Balance
	}
	balance := c.Welcome().Balance

	for sum.Rounds < cfg.Rounds {
		if balance < cfg.Bet*cfg.Seats {
			if err := c.Refill(cfg.Refill); err != nil {
				return sum, err
			}
			state, err := c.AwaitState(ctx)
			if err != nil {
				return sum, fmt.Errorf("refill: %w", err)
			}
			balance = state.Balance
			sum.Refills++
			c.logger.Info("Refilled", "balance", balance)
		}

		if err := c.StartRound(cfg.Bet, cfg.Seats); err != nil {
			return sum, err
		}
		state, err := c.AwaitState(ctx)
		if err != nil {
			return sum, fmt.Errorf("start round: %w", err)
		}

		for state.Phase.InRound() {
			action := policy(state)
			if err := c.Act(state.Active, action); err != nil {
				return sum, err
			}
			sum.Decisions++
			if state, err = c.AwaitState(ctx); err != nil {
				return sum, fmt.Errorf("%s: %w", action, err)
			}
		}

		sum.Rounds++
		sum.Net += state.Net
		balance = state.Balance
		c.logger.Debug("Round finished", "round", sum.Rounds, "net", state.Net, "balance", balance)
	}

	sum.FinalBalance = balance
	return sum, nil
}
