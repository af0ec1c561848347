package simulator

import (
	"fmt"
	rand "math/rand/v2"
	"sort"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/strategy"
)

// Policy decides the action for the pending decision in snap.
type Policy interface {
	Name() string
	Decide(snap game.Snapshot, rng *rand.Rand) game.Action
}

type policyFunc struct {
	name   string
	decide func(game.Snapshot, *rand.Rand) game.Action
}

func (p policyFunc) Name() string { return p.name }

func (p policyFunc) Decide(snap game.Snapshot, rng *rand.Rand) game.Action {
	return p.decide(snap, rng)
}

var policies = map[string]Policy{
	"basic":      policyFunc{"basic", basicPolicy},
	"dealer":     policyFunc{"dealer", dealerPolicy},
	"never-bust": policyFunc{"never-bust", neverBustPolicy},
	"random":     policyFunc{"random", randomPolicy},
}

// ParsePolicy looks up a policy by name.
func ParsePolicy(name string) (Policy, error) {
	p, ok := policies[name]
	if !ok {
		return nil, fmt.Errorf("unknown policy %q (available: %v)", name, PolicyNames())
	}
	return p, nil
}

// PolicyNames lists the registered policies.
func PolicyNames() []string {
	names := make([]string, 0, len(policies))
	for name := range policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func basicPolicy(snap game.Snapshot, _ *rand.Rand) game.Action {
	a, ok := strategy.AdviseSnapshot(snap)
	if !ok {
		return game.ActionStand
	}
	return a
}

// dealerPolicy mimics the house: hit below 17, never double or split.
func dealerPolicy(snap game.Snapshot, _ *rand.Rand) game.Action {
	if snap.Phase == game.PhaseInsurance {
		return game.ActionDeclineInsurance
	}
	h, _ := snap.ActiveHand()
	if h.Value < game.DealerStandsOn {
		return game.ActionHit
	}
	return game.ActionStand
}

// neverBustPolicy stands on any hard 12 or better and soft 18 or better.
func neverBustPolicy(snap game.Snapshot, _ *rand.Rand) game.Action {
	if snap.Phase == game.PhaseInsurance {
		return game.ActionDeclineInsurance
	}
	h, _ := snap.ActiveHand()
	if (!h.Soft && h.Value >= 12) || h.Value >= 18 {
		return game.ActionStand
	}
	return game.ActionHit
}

func randomPolicy(snap game.Snapshot, rng *rand.Rand) game.Action {
	e := snap.Eligible
	if e.Insurance {
		if rng.IntN(2) == 0 {
			return game.ActionInsurance
		}
		return game.ActionDeclineInsurance
	}
	var options []game.Action
	for _, a := range []game.Action{game.ActionHit, game.ActionStand, game.ActionDouble, game.ActionSplit, game.ActionSurrender} {
		if e.Allows(a) {
			options = append(options, a)
		}
	}
	if len(options) == 0 {
		return game.ActionStand
	}
	return options[rng.IntN(len(options))]
}
