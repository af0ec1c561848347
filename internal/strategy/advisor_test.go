package strategy

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lox/blackjack/cards"
	"github.com/lox/blackjack/internal/game"
)

func up(s string) cards.Card {
	c, err := cards.ParseCard(s)
	if err != nil {
		panic(err)
	}
	return c
}

func TestRecommend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hand      string
		up        string
		canDouble bool
		canSplit  bool
		want      game.Action
	}{
		// Pairs
		{"As Ad", "Ts", true, true, game.ActionSplit},
		{"8s 8d", "As", true, true, game.ActionSplit},
		{"9s 9d", "7s", true, true, game.ActionStand},
		{"9s 9d", "8s", true, true, game.ActionSplit},
		{"9s 9d", "Ts", true, true, game.ActionStand},
		{"7s 7d", "7s", true, true, game.ActionSplit},
		{"7s 7d", "8s", true, true, game.ActionHit},
		{"6s 6d", "6s", true, true, game.ActionSplit},
		{"6s 6d", "7s", true, true, game.ActionHit},
		{"4s 4d", "5s", true, true, game.ActionSplit},
		{"4s 4d", "4s", true, true, game.ActionHit},
		{"3s 3d", "2s", true, true, game.ActionSplit},
		{"2s 2d", "7s", true, true, game.ActionSplit},
		{"2s 2d", "8s", true, true, game.ActionHit},
		{"Ts Kd", "6s", true, true, game.ActionStand},
		{"5s 5d", "6s", true, true, game.ActionDouble},
		{"8s 8d", "Ts", true, false, game.ActionHit},
		{"As Ad", "6s", true, false, game.ActionHit},

		// Soft totals
		{"As 9d", "6s", true, false, game.ActionStand},
		{"As 8d", "6s", true, false, game.ActionDouble},
		{"As 8d", "6s", false, false, game.ActionStand},
		{"As 8d", "5s", true, false, game.ActionStand},
		{"As 7d", "3s", true, false, game.ActionDouble},
		{"As 7d", "3s", false, false, game.ActionStand},
		{"As 7d", "2s", true, false, game.ActionStand},
		{"As 7d", "8s", true, false, game.ActionStand},
		{"As 7d", "9s", true, false, game.ActionHit},
		{"As 7d", "As", true, false, game.ActionHit},
		{"As 6d", "4s", true, false, game.ActionDouble},
		{"As 6d", "4s", false, false, game.ActionHit},
		{"As 6d", "2s", true, false, game.ActionHit},
		{"As 3d", "5s", true, false, game.ActionHit},
		{"As 3d", "3s", true, false, game.ActionHit},
		{"As 2d 3c", "6s", false, false, game.ActionHit},
		{"As 5d 4c", "Ts", false, false, game.ActionStand},

		// Hard totals
		{"Ts 7d", "As", true, false, game.ActionStand},
		{"Ts 6d", "6s", true, false, game.ActionStand},
		{"Ts 6d", "7s", true, false, game.ActionHit},
		{"Ts 3d", "2s", true, false, game.ActionStand},
		{"Ts 2d", "3s", true, false, game.ActionHit},
		{"Ts 2d", "4s", true, false, game.ActionStand},
		{"Ts 2d", "7s", true, false, game.ActionHit},
		{"6s 5d", "Ts", true, false, game.ActionDouble},
		{"6s 5d", "As", true, false, game.ActionHit},
		{"6s 5d", "Ts", false, false, game.ActionHit},
		{"6s 4d", "9s", true, false, game.ActionDouble},
		{"6s 4d", "Ts", true, false, game.ActionHit},
		{"5s 4d", "3s", true, false, game.ActionDouble},
		{"5s 4d", "2s", true, false, game.ActionHit},
		{"5s 3d", "6s", true, false, game.ActionHit},
		{"Ts 2d 5h", "6s", false, false, game.ActionStand},
	}
	for _, tt := range tests {
		name := tt.hand + " vs " + tt.up
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got := Recommend(cards.MustParseCards(tt.hand), up(tt.up), tt.canDouble, tt.canSplit)
			if got != tt.want {
				t.Errorf("Recommend(%s vs %s, double=%v split=%v) = %s, want %s",
					tt.hand, tt.up, tt.canDouble, tt.canSplit, got, tt.want)
			}
		})
	}
}

func TestRecommendFacesCountAsTen(t *testing.T) {
	t.Parallel()

	for _, u := range []string{"Ts", "Js", "Qs", "Ks"} {
		if got := Recommend(cards.MustParseCards("6s 5d"), up(u), true, false); got != game.ActionDouble {
			t.Errorf("11 vs %s = %s, want double", u, got)
		}
	}
}

func TestShouldSurrender(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hand string
		up   string
		want bool
	}{
		{"Ts 6d", "9s", true},
		{"Ts 6d", "Ks", true},
		{"Ts 6d", "As", true},
		{"Ts 6d", "8s", false},
		{"Ts 5d", "Ts", true},
		{"Ts 5d", "9s", false},
		{"Ts 5d", "As", false},
		{"As 5d", "Ts", false},
		{"8s 8d", "Ts", true},
		{"Ts 7d", "Ts", false},
	}
	for _, tt := range tests {
		if got := ShouldSurrender(cards.MustParseCards(tt.hand), up(tt.up)); got != tt.want {
			t.Errorf("ShouldSurrender(%s vs %s) = %v, want %v", tt.hand, tt.up, got, tt.want)
		}
	}
}

func TestAdvise(t *testing.T) {
	t.Parallel()

	all := game.Eligibility{Hit: true, Stand: true, Double: true, Split: true, Surrender: true}

	if got := Advise(cards.MustParseCards("Ts 6d"), up("Ts"), all); got != game.ActionSurrender {
		t.Errorf("16 vs 10 = %s, want surrender", got)
	}
	if got := Advise(cards.MustParseCards("8s 8d"), up("Ts"), all); got != game.ActionSurrender {
		t.Errorf("8,8 vs 10 = %s, want surrender", got)
	}
	noSurrender := all
	noSurrender.Surrender = false
	if got := Advise(cards.MustParseCards("Ts 6d"), up("Ts"), noSurrender); got != game.ActionHit {
		t.Errorf("16 vs 10 without surrender = %s, want hit", got)
	}
	if got := Advise(cards.MustParseCards("8s 8d"), up("Ts"), noSurrender); got != game.ActionSplit {
		t.Errorf("8,8 vs 10 without surrender = %s, want split", got)
	}
	if got := Advise(cards.MustParseCards("Ts 9d"), up("As"), game.Eligibility{Insurance: true}); got != game.ActionDeclineInsurance {
		t.Errorf("insurance = %s", got)
	}
}

func TestMatchFallback(t *testing.T) {
	t.Parallel()

	// Soft totals below 17 are not in the soft table and fall through to Hit,
	// even when doubling is open.
	for _, hand := range []string{"As Ad", "As 2d", "As 3h", "As 4c", "As 5s"} {
		for _, dealer := range []string{"4d", "5d", "6d"} {
			hc := cards.MustParseCards(hand)
			if r, ok := Match(NewSituation(hc, up(dealer), true, false)); ok {
				t.Errorf("%s vs %s matched %q", hand, dealer, r.Name)
			}
			if got := Advise(hc, up(dealer), game.Eligibility{Hit: true, Stand: true, Double: true}); got != game.ActionHit {
				t.Errorf("%s vs %s = %s, want hit", hand, dealer, got)
			}
		}
	}
}

func TestHint(t *testing.T) {
	t.Parallel()

	e := game.Eligibility{Hit: true, Stand: true, Double: true, Surrender: true}
	if h := Hint(cards.MustParseCards("Ts 6d"), up("Ts"), e); h != "Surrender hard 16 vs 10" {
		t.Errorf("hint = %q", h)
	}
	if h := Hint(cards.MustParseCards("As 7d"), up("As"), e); !strings.HasPrefix(h, "Hit soft 18 vs A") {
		t.Errorf("hint = %q", h)
	}
	e.Double = false
	if h := Hint(cards.MustParseCards("6s 5d"), up("6s"), e); !strings.Contains(h, "would double") {
		t.Errorf("hint = %q", h)
	}
}

func TestAdviseSnapshot(t *testing.T) {
	t.Parallel()

	tbl := game.NewTable(1000, game.WithStackedDecks(cards.MustParseCards("Ts Th 6c 8d")))
	if _, ok := AdviseSnapshot(tbl.Snapshot()); ok {
		t.Error("advice before a round")
	}
	if err := tbl.StartRound(100, 1); err != nil {
		t.Fatal(err)
	}
	a, ok := AdviseSnapshot(tbl.Snapshot())
	if !ok || a != game.ActionSurrender {
		t.Errorf("advice = %s,%v want surrender", a, ok)
	}
}

func TestWriteChart(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteChart(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Hard", "Soft", "Pairs", "A,7", "8,8"} {
		if !strings.Contains(out, want) {
			t.Errorf("chart missing %q", want)
		}
	}
}
