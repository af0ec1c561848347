package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/daily"
	"github.com/lox/blackjack/internal/store"
	"github.com/lox/blackjack/internal/tui"
)

// DailyCmd plays the seeded challenge for a date.
type DailyCmd struct {
	Date    string `help:"Challenge date as YYYY-MM-DD (default today)"`
	Show    bool   `help:"Only show the stored result"`
	LogFile string `type:"path" help:"Write debug logs to this file"`
}

func (c *DailyCmd) Run(g *Globals) error {
	cfg, err := g.Load()
	if err != nil {
		return err
	}

	date := daily.DateString(time.Now())
	if c.Date != "" {
		if date, err = daily.ParseDate(c.Date); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return err
	}
	defer s.Close()

	if c.Show {
		rec, err := daily.Lookup(ctx, s, date)
		if errors.Is(err, store.ErrNotFound) {
			fmt.Printf("No result for %s\n", date)
			return nil
		}
		if err != nil {
			return err
		}
		printRecord(date, rec)
		return nil
	}

	logOut, closeLog, err := openLogFile(c.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	challenge := daily.New(date)
	table := challenge.NewTable(cfg.TableOptions()...)
	model := tui.NewModel(table,
		tui.WithLogger(shared.SetupCharmLogger(logOut, "debug")),
		tui.WithDealerDelay(cfg.DealerDelay()),
		tui.WithTitle("Daily challenge "+date),
		tui.WithRoundLimit(challenge.Rounds),
		tui.WithRefill(challenge.StartingBalance),
	)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run terminal UI: %w", err)
	}

	if !model.Finished() {
		fmt.Printf("Challenge abandoned after %d of %d rounds; nothing recorded\n", model.Rounds(), challenge.Rounds)
		return nil
	}

	submitCtx, submitCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer submitCancel()
	rec, err := daily.Submit(submitCtx, s, daily.Result{
		Date:         date,
		FinalBalance: table.Balance(),
		Rounds:       model.Rounds(),
		Accuracy:     model.Tracker().Accuracy(),
		CompletedAt:  time.Now(),
	})
	if err != nil {
		return err
	}
	printRecord(date, rec)
	return saveLifetime(cfg, model.Statistics(), shared.SetupLogger(cfg.LogLevel))
}

func printRecord(date string, rec daily.Record) {
	fmt.Printf("Daily challenge %s\n", date)
	fmt.Printf("  First attempt: balance %d, strategy accuracy %.0f%%\n",
		rec.First.FinalBalance, rec.First.Accuracy*100)
	fmt.Printf("  Best balance:  %d over %d attempt(s)\n", rec.BestBalance, rec.Attempts)
}
