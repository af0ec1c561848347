// Package simulator plays many rounds with a fixed policy to measure its
// return and its agreement with basic strategy.
package simulator

import (
	"context"
	"fmt"
	"io"
	rand "math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/statistics"
	"github.com/lox/blackjack/internal/strategy"
	"golang.org/x/sync/errgroup"
)

// maxDecisions bounds the decisions in one round. A single deck cannot
// produce more than this many.
const maxDecisions = 64

// Config holds configuration for running simulations
type Config struct {
	Rounds          int
	Seed            int64
	Workers         int
	Bet             int
	Seats           int
	StartingBalance int
	Policy          string
	Timeout         time.Duration
	Logger          *log.Logger
}

// Result is what a simulation produced.
type Result struct {
	Policy  string
	Stats   *statistics.Statistics
	Tracker *strategy.Tracker
	Elapsed time.Duration
}

// Simulator runs blackjack round simulations
type Simulator struct {
	config Config
	policy Policy
}

// New creates a new simulator with the given configuration
func New(config Config) (*Simulator, error) {
	if config.Rounds <= 0 {
		return nil, fmt.Errorf("rounds must be positive, got %d", config.Rounds)
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.Workers > config.Rounds {
		config.Workers = config.Rounds
	}
	if config.Bet <= 0 {
		config.Bet = game.DefaultMinBet
	}
	if config.Seats <= 0 {
		config.Seats = 1
	}
	if config.StartingBalance <= 0 {
		config.StartingBalance = 1000 * config.Bet
	}
	if config.Policy == "" {
		config.Policy = "basic"
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	policy, err := ParsePolicy(config.Policy)
	if err != nil {
		return nil, err
	}
	return &Simulator{config: config, policy: policy}, nil
}

// Run plays every round and returns merged results.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	workers := s.config.Workers
	perWorker := s.config.Rounds / workers
	remainder := s.config.Rounds % workers

	stats := make([]*statistics.Statistics, workers)
	trackers := make([]*strategy.Tracker, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		rounds := perWorker
		if w < remainder {
			rounds++ // Distribute remainder rounds
		}
		seed := randutil.Derive(s.config.Seed, w)
		stats[w] = &statistics.Statistics{}
		trackers[w] = strategy.NewTracker()

		g.Go(func() error {
			return s.runWorker(ctx, w, seed, rounds, stats[w], trackers[w])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Policy:  s.policy.Name(),
		Stats:   &statistics.Statistics{},
		Tracker: strategy.NewTracker(),
	}
	for w := range stats {
		res.Stats.Merge(stats[w])
		res.Tracker.Merge(trackers[w])
	}
	if err := res.Stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	res.Elapsed = time.Since(start)
	return res, nil
}

func (s *Simulator) runWorker(ctx context.Context, worker int, seed int64, rounds int, stats *statistics.Statistics, tracker *strategy.Tracker) error {
	rng := randutil.New(seed)
	table := game.NewTable(s.config.StartingBalance,
		game.WithSeed(randutil.Derive(seed, 1)),
		game.WithBetStep(1),
		game.WithBetLimits(1, 0),
	)
	table.Subscribe(stats.Observer())
	table.Subscribe(tracker)

	for i := 0; i < rounds; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("worker %d stopped after %d rounds: %w", worker, i, err)
		}
		if table.Balance() < s.config.Bet*s.config.Seats {
			if err := table.Refill(s.config.StartingBalance); err != nil {
				return err
			}
		}
		if err := s.playRound(table, rng); err != nil {
			return fmt.Errorf("worker %d round %d: %w", worker, i, err)
		}
	}

	s.config.Logger.Debug("Worker finished", "worker", worker, "rounds", rounds, "net", stats.Net)
	return nil
}

func (s *Simulator) playRound(table *game.Table, rng *rand.Rand) error {
	if err := table.StartRound(s.config.Bet, s.config.Seats); err != nil {
		return err
	}
	for n := 0; table.Phase().InRound(); n++ {
		if n >= maxDecisions {
			return fmt.Errorf("round %s did not finish after %d decisions", table.Round().ID, n)
		}
		snap := table.Snapshot()
		action := s.policy.Decide(snap, rng)
		if err := table.Act(snap.Active, action); err != nil {
			return fmt.Errorf("policy %s chose %s: %w", s.policy.Name(), action, err)
		}
	}
	return nil
}

// PrintSummary writes a report of res to w.
func PrintSummary(w io.Writer, res *Result, cfg Config) {
	stats := res.Stats
	low, high := stats.ConfidenceInterval95()

	fmt.Fprintf(w, "\n=== FINAL RESULTS: %s policy ===\n", res.Policy)
	fmt.Fprintf(w, "Rounds played: %d (%d hands, %d seat(s), bet %d)\n", stats.Rounds, stats.Hands, cfg.Seats, cfg.Bet)
	fmt.Fprintf(w, "Elapsed: %s\n", res.Elapsed.Round(time.Millisecond))

	fmt.Fprintf(w, "\n=== STATISTICAL RESULTS ===\n")
	fmt.Fprintf(w, "Mean: %.4f bets/round\n", stats.Mean())
	fmt.Fprintf(w, "Median: %.4f bets/round\n", stats.Median())
	fmt.Fprintf(w, "Std Dev: %.4f bets\n", stats.StdDev())
	fmt.Fprintf(w, "Std Error: %.4f bets\n", stats.StdError())
	fmt.Fprintf(w, "95%% CI: [%.4f, %.4f] bets/round\n", low, high)
	fmt.Fprintf(w, "Percentiles: P5=%.3f, P25=%.3f, P75=%.3f, P95=%.3f\n",
		stats.Percentile(0.05), stats.Percentile(0.25), stats.Percentile(0.75), stats.Percentile(0.95))
	fmt.Fprintf(w, "House edge: %.3f%% of wagered\n", stats.HouseEdge()*100)

	fmt.Fprintf(w, "\n=== OUTCOMES ===\n")
	pct := func(n int) float64 {
		if stats.Hands == 0 {
			return 0
		}
		return float64(n) / float64(stats.Hands) * 100
	}
	fmt.Fprintf(w, "Wins: %d (%.1f%%)\n", stats.Wins, pct(stats.Wins))
	fmt.Fprintf(w, "Blackjacks: %d (%.1f%%)\n", stats.Blackjacks, pct(stats.Blackjacks))
	fmt.Fprintf(w, "Pushes: %d (%.1f%%)\n", stats.Pushes, pct(stats.Pushes))
	fmt.Fprintf(w, "Losses: %d (%.1f%%)\n", stats.Losses, pct(stats.Losses))
	fmt.Fprintf(w, "Surrenders: %d (%.1f%%)\n", stats.Surrenders, pct(stats.Surrenders))
	fmt.Fprintf(w, "Busts: %d, doubles: %d, splits: %d\n", stats.Busts, stats.Doubles, stats.Splits)
	fmt.Fprintf(w, "Insurance: taken %d, won %d\n", stats.InsuranceTaken, stats.InsuranceWon)
	fmt.Fprintf(w, "Best win streak: %d hands\n", stats.BestStreak)

	fmt.Fprintf(w, "\n=== STRATEGY ===\n")
	fmt.Fprintf(w, "Basic strategy agreement: %.1f%% (%d/%d decisions)\n",
		res.Tracker.Accuracy()*100, res.Tracker.Correct(), res.Tracker.Total())
}
