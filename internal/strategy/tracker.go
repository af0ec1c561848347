package strategy

import "github.com/lox/blackjack/internal/game"

// Tracker grades decisions against the advisor. It observes only and never
// influences play.
type Tracker struct {
	correct    int
	total      int
	streak     int
	bestStreak int

	roundDecisions int
	roundMistakes  int
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Record logs one decision and reports whether it matched the advice.
func (t *Tracker) Record(taken, advised game.Action) bool {
	ok := taken == advised
	t.total++
	t.roundDecisions++
	if ok {
		t.correct++
	} else {
		t.roundMistakes++
	}
	return ok
}

// EndRound closes the current round. A round with at least one decision and
// no mistakes extends the streak; any mistake resets it. Rounds without
// decisions leave it alone.
func (t *Tracker) EndRound() {
	if t.roundDecisions > 0 {
		if t.roundMistakes == 0 {
			t.streak++
			t.bestStreak = max(t.bestStreak, t.streak)
		} else {
			t.streak = 0
		}
	}
	t.roundDecisions = 0
	t.roundMistakes = 0
}

// Accuracy returns the fraction of correct decisions, or 0 before any.
func (t *Tracker) Accuracy() float64 {
	if t.total == 0 {
		return 0
	}
	return float64(t.correct) / float64(t.total)
}

// Correct returns the number of correct decisions.
func (t *Tracker) Correct() int { return t.correct }

// Total returns the number of graded decisions.
func (t *Tracker) Total() int { return t.total }

// Streak returns the current run of fully correct rounds.
func (t *Tracker) Streak() int { return t.streak }

// BestStreak returns the longest streak seen.
func (t *Tracker) BestStreak() int { return t.bestStreak }

// Merge folds other's totals into t. Streaks keep the better best streak.
func (t *Tracker) Merge(other *Tracker) {
	t.correct += other.correct
	t.total += other.total
	t.bestStreak = max(t.bestStreak, other.bestStreak)
}

// OnEvent grades player actions and closes rounds as a table reports them.
// Decisions forced by a timeout are not graded.
func (t *Tracker) OnEvent(event game.GameEvent) {
	switch e := event.(type) {
	case game.PlayerActionEvent:
		if e.Timeout {
			return
		}
		t.Record(e.Action, Advise(e.Cards, e.DealerUp, e.Eligibility))
	case game.RoundEndEvent:
		t.EndRound()
	}
}
