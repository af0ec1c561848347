// Package daily implements the daily challenge: a fixed number of rounds
// dealt from decks seeded by the calendar date, so every player who plays a
// given day sees the same cards.
package daily

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/store"
)

const (
	DefaultRounds          = 10
	DefaultStartingBalance = 1000
	dateLayout             = "2006-01-02"
	keyPrefix              = "daily:"
)

// DateString formats t as the challenge date.
func DateString(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseDate validates a YYYY-MM-DD date string.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid challenge date %q: %w", s, err)
	}
	return DateString(t), nil
}

// SeedFor returns the deck seed for date.
func SeedFor(date string) int64 {
	return randutil.SeedFromString(keyPrefix + date)
}

// KeyFor returns the store key for date.
func KeyFor(date string) string {
	return keyPrefix + date
}

// Challenge describes one day's session.
type Challenge struct {
	Date            string
	Rounds          int
	StartingBalance int
}

// New returns the challenge for date with default rules.
func New(date string) Challenge {
	return Challenge{Date: date, Rounds: DefaultRounds, StartingBalance: DefaultStartingBalance}
}

// NewTable builds the seeded table for the challenge. Extra options are
// applied after the seed.
func (c Challenge) NewTable(opts ...game.Option) *game.Table {
	all := append([]game.Option{game.WithSeed(SeedFor(c.Date))}, opts...)
	return game.NewTable(c.StartingBalance, all...)
}

// Result is one completed challenge attempt.
type Result struct {
	Date         string    `json:"date"`
	FinalBalance int       `json:"final_balance"`
	Rounds       int       `json:"rounds"`
	Accuracy     float64   `json:"accuracy"`
	CompletedAt  time.Time `json:"completed_at"`
}

// Record is what the store keeps per date: the first attempt counts, later
// ones only improve BestBalance.
type Record struct {
	First       Result `json:"first"`
	BestBalance int    `json:"best_balance"`
	Attempts    int    `json:"attempts"`
}

// Submit records r and returns the updated record.
func Submit(ctx context.Context, s store.Store, r Result) (Record, error) {
	key := KeyFor(r.Date)
	var rec Record
	err := store.LoadJSON(ctx, s, key, &rec)
	switch {
	case errors.Is(err, store.ErrNotFound):
		rec = Record{First: r, BestBalance: r.FinalBalance, Attempts: 1}
	case err != nil:
		return Record{}, fmt.Errorf("load daily record: %w", err)
	default:
		rec.Attempts++
		rec.BestBalance = max(rec.BestBalance, r.FinalBalance)
	}

	if err := store.SaveJSON(ctx, s, key, rec); err != nil {
		return Record{}, fmt.Errorf("save daily record: %w", err)
	}
	return rec, nil
}

// Lookup returns the record for date, or store.ErrNotFound.
func Lookup(ctx context.Context, s store.Store, date string) (Record, error) {
	var rec Record
	if err := store.LoadJSON(ctx, s, KeyFor(date), &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}
