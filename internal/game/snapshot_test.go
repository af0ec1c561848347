package game

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/lox/blackjack/cards"
)

func TestSnapshotMasksHoleCard(t *testing.T) {
	t.Parallel()

	tbl, _ := stacked(t, 1000, "Ts 9h 6c Td")
	mustStart(t, tbl, 100, 1)

	snap := tbl.Snapshot()
	if snap.Phase != PhasePlaying || snap.Balance != 900 || snap.Bet != 100 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if len(snap.Dealer.Cards) != 2 {
		t.Fatalf("dealer cards = %v", snap.Dealer.Cards)
	}
	if snap.Dealer.Cards[1] != (cards.Card{Hidden: true}) {
		t.Errorf("hole card leaked: %+v", snap.Dealer.Cards[1])
	}
	if snap.Dealer.Value != 9 {
		t.Errorf("dealer value = %d, want 9", snap.Dealer.Value)
	}
	if h, ok := snap.ActiveHand(); !ok || h.Value != 16 {
		t.Errorf("active hand = %+v, %v", h, ok)
	}
	if !snap.Eligible.Hit || !snap.Eligible.Surrender || snap.Eligible.Split {
		t.Errorf("eligibility = %+v", snap.Eligible)
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		t.Fatal(err)
	}
	// Only the masked hole card carries the hidden flag.
	if strings.Count(string(raw), `"hidden":true`) != 1 {
		t.Errorf("unexpected JSON: %s", raw)
	}
}

func TestSnapshotAfterResolution(t *testing.T) {
	t.Parallel()

	tbl, _ := stacked(t, 1000, "Th Td 7c 6s Kh")
	mustStart(t, tbl, 100, 1)
	_ = tbl.Stand(0)

	snap := tbl.Snapshot()
	if snap.Phase != PhaseResolved || snap.Net != 100 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Dealer.Value != 26 || len(snap.Dealer.Cards) != 3 {
		t.Errorf("dealer = %+v", snap.Dealer)
	}
	if snap.Hands[0].Outcome != OutcomeWin {
		t.Errorf("outcome = %s", snap.Hands[0].Outcome)
	}
	if _, ok := snap.ActiveHand(); ok {
		t.Error("no active hand after resolution")
	}
	if snap.Eligible != (Eligibility{}) {
		t.Errorf("eligibility after resolution = %+v", snap.Eligible)
	}
}

func TestSnapshotIdle(t *testing.T) {
	t.Parallel()

	snap := NewTable(500, WithSeed(1)).Snapshot()
	if snap.Phase != PhaseIdle || snap.Balance != 500 || len(snap.Hands) != 0 || snap.RoundID != "" {
		t.Errorf("idle snapshot = %+v", snap)
	}
}
