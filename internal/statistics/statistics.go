// Package statistics accumulates session results for the simulator, the
// terminal UI and persisted lifetime stats.
package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/blackjack/internal/game"
)

// RoundResult is the settled outcome of one round as statistics sees it.
// Net and Wagered are in chips; Unit converts them into bet units.
type RoundResult struct {
	Seed         int64 // RNG seed for this round (for replay)
	Unit         int   // base bet, used to normalise Net
	Wagered      int
	Net          int
	Hands        []game.HandResult
	Insurance    int
	InsuranceNet int
}

// FromRoundEnd converts a table event into a RoundResult.
func FromRoundEnd(e game.RoundEndEvent, unit int) RoundResult {
	r := RoundResult{
		Unit:         unit,
		Net:          e.Net,
		Hands:        e.Results,
		Insurance:    e.Insurance,
		InsuranceNet: e.InsuranceNet,
	}
	for _, h := range e.Results {
		r.Wagered += h.Bet
	}
	r.Wagered += e.Insurance
	return r
}

// Statistics tracks session counters and running sums of net result per
// round in bet units.
type Statistics struct {
	Rounds int     `json:"rounds"`
	SumU   float64 `json:"sum_units"`
	SumU2  float64 `json:"sum_units_sq"` // Sum of squares for variance calculation
	// Values holds this process's round results for median/percentile
	// calculation. It is not persisted.
	Values []float64 `json:"-"`

	Hands      int `json:"hands"`
	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
	Pushes     int `json:"pushes"`
	Blackjacks int `json:"blackjacks"`
	Surrenders int `json:"surrenders"`
	Busts      int `json:"busts"`
	Doubles    int `json:"doubles"`
	Splits     int `json:"splits"`

	InsuranceTaken int `json:"insurance_taken"`
	InsuranceWon   int `json:"insurance_won"`

	Wagered     int `json:"wagered"`
	Net         int `json:"net"`
	BiggestWin  int `json:"biggest_win"`
	BiggestLoss int `json:"biggest_loss"`

	WinStreak  int `json:"win_streak"`
	BestStreak int `json:"best_streak"`
}

// Add incorporates a round into the statistics. Hands are counted one by
// one; the win streak follows hand outcomes in order, with surrender
// counting as a loss and pushes leaving it unchanged.
func (s *Statistics) Add(r RoundResult) {
	unit := r.Unit
	if unit <= 0 {
		unit = 1
	}
	u := float64(r.Net) / float64(unit)
	s.Rounds++
	s.SumU += u
	s.SumU2 += u * u
	s.Values = append(s.Values, u)

	s.Wagered += r.Wagered
	s.Net += r.Net
	s.BiggestWin = max(s.BiggestWin, r.Net)
	s.BiggestLoss = min(s.BiggestLoss, r.Net)

	if r.Insurance > 0 {
		s.InsuranceTaken++
		if r.InsuranceNet > 0 {
			s.InsuranceWon++
		}
	}

	split := false
	for _, h := range r.Hands {
		s.Hands++
		if h.Doubled {
			s.Doubles++
		}
		if h.FromSplit {
			split = true
		}
		if h.Bust() {
			s.Busts++
		}

		switch h.Outcome {
		case game.OutcomeWin:
			s.Wins++
		case game.OutcomeBlackjack:
			s.Blackjacks++
		case game.OutcomeLose:
			s.Losses++
		case game.OutcomeSurrender:
			s.Surrenders++
		case game.OutcomePush:
			s.Pushes++
		}

		switch {
		case h.Outcome == game.OutcomeWin || h.Outcome == game.OutcomeBlackjack:
			s.WinStreak++
			s.BestStreak = max(s.BestStreak, s.WinStreak)
		case h.Outcome.IsLoss():
			s.WinStreak = 0
		}
	}
	if split {
		s.Splits++
	}
}

// Observer returns a subscriber that adds every RoundEndEvent using the
// round's opening bet as the unit.
func (s *Statistics) Observer() game.EventSubscriber {
	unit := 0
	return game.SubscriberFunc(func(event game.GameEvent) {
		switch e := event.(type) {
		case game.RoundStartEvent:
			unit = e.Bet
		case game.RoundEndEvent:
			s.Add(FromRoundEnd(e, unit))
		}
	})
}

// Merge folds other into s. Streaks cannot be joined across sessions, so
// only the best streak carries over.
func (s *Statistics) Merge(other *Statistics) {
	s.Rounds += other.Rounds
	s.SumU += other.SumU
	s.SumU2 += other.SumU2
	s.Values = append(s.Values, other.Values...)
	s.Hands += other.Hands
	s.Wins += other.Wins
	s.Losses += other.Losses
	s.Pushes += other.Pushes
	s.Blackjacks += other.Blackjacks
	s.Surrenders += other.Surrenders
	s.Busts += other.Busts
	s.Doubles += other.Doubles
	s.Splits += other.Splits
	s.InsuranceTaken += other.InsuranceTaken
	s.InsuranceWon += other.InsuranceWon
	s.Wagered += other.Wagered
	s.Net += other.Net
	s.BiggestWin = max(s.BiggestWin, other.BiggestWin)
	s.BiggestLoss = min(s.BiggestLoss, other.BiggestLoss)
	s.BestStreak = max(s.BestStreak, other.BestStreak)
}

// Mean returns the arithmetic mean result in bet units per round
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumU / float64(s.Rounds)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumU2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median value of all results
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// WinRate returns wins (including blackjacks) per hand.
func (s *Statistics) WinRate() float64 {
	if s.Hands == 0 {
		return 0
	}
	return float64(s.Wins+s.Blackjacks) / float64(s.Hands)
}

// HouseEdge returns the player's loss per chip wagered; negative means the
// player is ahead.
func (s *Statistics) HouseEdge() float64 {
	if s.Wagered == 0 {
		return 0
	}
	return -float64(s.Net) / float64(s.Wagered)
}

// Validate checks that the per-hand ledger adds up.
func (s *Statistics) Validate() error {
	settled := s.Wins + s.Losses + s.Pushes + s.Blackjacks + s.Surrenders
	if settled != s.Hands {
		return fmt.Errorf("ledger mismatch: %d outcomes for %d hands", settled, s.Hands)
	}
	if s.Rounds < 0 || s.Hands < s.Rounds {
		return fmt.Errorf("invalid counts: %d hands over %d rounds", s.Hands, s.Rounds)
	}
	if s.InsuranceWon > s.InsuranceTaken {
		return fmt.Errorf("insurance won (%d) exceeds insurance taken (%d)", s.InsuranceWon, s.InsuranceTaken)
	}
	if s.BestStreak < s.WinStreak {
		return fmt.Errorf("best streak (%d) below current streak (%d)", s.BestStreak, s.WinStreak)
	}
	return nil
}
