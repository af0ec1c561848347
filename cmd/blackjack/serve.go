package main

import (
	"time"

	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/server"
)

// ServeCmd runs the WebSocket table server.
type ServeCmd struct {
	Addr    string         `help:"Listen address (default from config)"`
	Timeout *time.Duration `help:"Decision timeout, 0 to disable (default from config)"`
	Seed    *int64         `help:"Deterministic deck seed for every table"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := g.Load()
	if err != nil {
		return err
	}
	logger := shared.SetupLogger(cfg.LogLevel)

	srvCfg := server.Config{
		Address:         cfg.Server.Address,
		StartingBalance: cfg.Table.StartingBalance,
		DecisionTimeout: cfg.DecisionTimeout(),
		TableOptions:    cfg.TableOptions(),
	}
	if c.Addr != "" {
		srvCfg.Address = c.Addr
	}
	if c.Timeout != nil {
		srvCfg.DecisionTimeout = *c.Timeout
	}
	if c.Seed != nil {
		logger.Info().Int64("seed", *c.Seed).Msg("Using deterministic seed")
		srvCfg.TableOptions = append(srvCfg.TableOptions, game.WithSeed(*c.Seed))
	}

	logger.Info().
		Str("address", srvCfg.Address).
		Int("starting_balance", srvCfg.StartingBalance).
		Dur("decision_timeout", srvCfg.DecisionTimeout).
		Int("bet_step", cfg.Table.BetStep).
		Int("max_seats", cfg.Table.MaxSeats).
		Msg("Starting blackjack server")

	ctx := shared.SetupSignalHandler(logger)
	s := server.NewServer(srvCfg, server.WithLogger(logger))
	return s.ListenAndServe(ctx)
}
