package game

import "errors"

var (
	// ErrWrongPhase is returned when an operation is not valid in the
	// table's current phase.
	ErrWrongPhase = errors.New("game: operation not allowed in current phase")
	// ErrNotActiveSeat is returned when acting on a hand other than the
	// active one.
	ErrNotActiveSeat = errors.New("game: seat is not the active hand")
	// ErrIneligible is returned when the hand does not qualify for the
	// requested action.
	ErrIneligible = errors.New("game: action not available for this hand")
	// ErrInsufficientBalance is returned when the balance cannot cover a
	// wager.
	ErrInsufficientBalance = errors.New("game: insufficient balance")
	// ErrInvalidBet is returned for bets outside the table limits or off
	// the bet step.
	ErrInvalidBet = errors.New("game: invalid bet")
	// ErrInvalidSeats is returned for a seat count outside 1..MaxSeats.
	ErrInvalidSeats = errors.New("game: invalid seat count")
	// ErrInvalidAmount is returned for a non-positive refill.
	ErrInvalidAmount = errors.New("game: invalid amount")
	// ErrDeckEmpty is returned when a player card is requested from an
	// exhausted deck.
	ErrDeckEmpty = errors.New("game: deck is empty")
	// ErrUnknownAction is returned by Act for unrecognised actions.
	ErrUnknownAction = errors.New("game: unknown action")
)
