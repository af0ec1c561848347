package game

import "fmt"

// Action is a player decision.
type Action string

const (
	ActionHit              Action = "hit"
	ActionStand            Action = "stand"
	ActionDouble           Action = "double"
	ActionSplit            Action = "split"
	ActionSurrender        Action = "surrender"
	ActionInsurance        Action = "insurance"
	ActionDeclineInsurance Action = "decline_insurance"
)

// String returns the string representation of the action
func (a Action) String() string { return string(a) }

// ParseAction converts a wire or CLI string into an Action.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionHit, ActionStand, ActionDouble, ActionSplit, ActionSurrender,
		ActionInsurance, ActionDeclineInsurance:
		return Action(s), nil
	}
	switch s {
	case "h":
		return ActionHit, nil
	case "s":
		return ActionStand, nil
	case "d":
		return ActionDouble, nil
	case "p":
		return ActionSplit, nil
	case "r":
		return ActionSurrender, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// Eligibility lists which actions the active hand may take right now.
type Eligibility struct {
	Hit       bool `json:"hit"`
	Stand     bool `json:"stand"`
	Double    bool `json:"double"`
	Split     bool `json:"split"`
	Surrender bool `json:"surrender"`
	Insurance bool `json:"insurance"`
}

// Allows reports whether a is currently permitted.
func (e Eligibility) Allows(a Action) bool {
	switch a {
	case ActionHit:
		return e.Hit
	case ActionStand:
		return e.Stand
	case ActionDouble:
		return e.Double
	case ActionSplit:
		return e.Split
	case ActionSurrender:
		return e.Surrender
	case ActionInsurance, ActionDeclineInsurance:
		return e.Insurance
	}
	return false
}
