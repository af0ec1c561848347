package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/statistics"
	"github.com/lox/blackjack/internal/store"
	"github.com/lox/blackjack/internal/tui"
	"github.com/rs/zerolog"
)

// PlayCmd runs the terminal table.
type PlayCmd struct {
	Seed        *int64         `help:"Deterministic deck seed"`
	Balance     int            `help:"Starting balance (default from config)"`
	DealerDelay *time.Duration `help:"Pause between dealer cards (default from config)"`
	LogFile     string         `type:"path" help:"Write debug logs to this file"`
	NoSave      bool           `help:"Do not add this session to the lifetime statistics"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := g.Load()
	if err != nil {
		return err
	}

	balance := cfg.Table.StartingBalance
	if c.Balance > 0 {
		balance = c.Balance
	}
	opts := cfg.TableOptions()
	if c.Seed != nil {
		opts = append(opts, game.WithSeed(*c.Seed))
	}
	table := game.NewTable(balance, opts...)

	delay := cfg.DealerDelay()
	if c.DealerDelay != nil {
		delay = *c.DealerDelay
	}

	logOut, closeLog, err := openLogFile(c.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	session := &statistics.Statistics{}
	model := tui.NewModel(table,
		tui.WithLogger(shared.SetupCharmLogger(logOut, "debug")),
		tui.WithDealerDelay(delay),
		tui.WithRefill(balance),
		tui.WithStatistics(session),
	)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run terminal UI: %w", err)
	}

	fmt.Printf("Played %d rounds, net %+d, final balance %d\n", session.Rounds, session.Net, table.Balance())
	if c.NoSave || session.Rounds == 0 {
		return nil
	}
	return saveLifetime(cfg, session, shared.SetupLogger(cfg.LogLevel))
}

// openLogFile returns the writer for TUI logs. TUI output owns the
// terminal, so without a file logs are discarded.
func openLogFile(path string) (io.Writer, func(), error) {
	if path == "" {
		return io.Discard, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// saveLifetime merges session into the stored lifetime statistics.
func saveLifetime(cfg *config.Config, session *statistics.Statistics, logger zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return err
	}
	defer s.Close()

	lifetime, err := loadLifetime(ctx, s)
	if err != nil {
		return err
	}
	lifetime.Merge(session)
	if err := store.SaveJSON(ctx, s, store.KeyLifetimeStats, lifetime); err != nil {
		return fmt.Errorf("save lifetime statistics: %w", err)
	}
	logger.Debug().Int("rounds", lifetime.Rounds).Str("backend", cfg.Store.Backend).Msg("Saved lifetime statistics")
	return nil
}

func loadLifetime(ctx context.Context, s store.Store) (*statistics.Statistics, error) {
	var lifetime statistics.Statistics
	err := store.LoadJSON(ctx, s, store.KeyLifetimeStats, &lifetime)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load lifetime statistics: %w", err)
	}
	return &lifetime, nil
}
