package game

import (
	"time"

	"github.com/lox/blackjack/cards"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for round engine events
const (
	EventTypeRoundStart       EventType = "round_start"
	EventTypeCardVisible      EventType = "card_visible"
	EventTypeInsuranceOffered EventType = "insurance_offered"
	EventTypePlayerAction     EventType = "player_action"
	EventTypeDealerTurn       EventType = "dealer_turn"
	EventTypeRoundEnd         EventType = "round_end"
	EventTypeBroke            EventType = "broke"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// GameEvent represents any event published by a Table
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// RoundStartEvent is published once the initial cards are dealt.
type RoundStartEvent struct {
	RoundID   string
	Bet       int
	Seats     int
	Balance   int
	timestamp time.Time
}

func (e RoundStartEvent) EventType() EventType { return EventTypeRoundStart }
func (e RoundStartEvent) Timestamp() time.Time { return e.timestamp }

// CardVisibleEvent is published whenever a card turns face up. Seat is -1 for
// dealer cards.
type CardVisibleEvent struct {
	RoundID      string
	Card         cards.Card
	Seat         int
	RunningCount int
	timestamp    time.Time
}

func (e CardVisibleEvent) EventType() EventType { return EventTypeCardVisible }
func (e CardVisibleEvent) Timestamp() time.Time { return e.timestamp }

// Dealer reports whether the card went to the dealer.
func (e CardVisibleEvent) Dealer() bool { return e.Seat < 0 }

// InsuranceOfferedEvent is published when the dealer shows an ace.
type InsuranceOfferedEvent struct {
	RoundID   string
	Stake     int
	timestamp time.Time
}

func (e InsuranceOfferedEvent) EventType() EventType { return EventTypeInsuranceOffered }
func (e InsuranceOfferedEvent) Timestamp() time.Time { return e.timestamp }

// PlayerActionEvent is published after an action has been applied. Cards and
// Eligibility describe the hand as it was when the decision was made, which
// is what strategy grading needs.
type PlayerActionEvent struct {
	RoundID     string
	Seat        int
	Action      Action
	Cards       []cards.Card
	DealerUp    cards.Card
	Eligibility Eligibility
	Timeout     bool
	timestamp   time.Time
}

func (e PlayerActionEvent) EventType() EventType { return EventTypePlayerAction }
func (e PlayerActionEvent) Timestamp() time.Time { return e.timestamp }

// DealerTurnEvent carries the dealer's reveal and draws in order.
type DealerTurnEvent struct {
	RoundID   string
	Revealed  []cards.Card
	Final     []cards.Card
	Value     int
	timestamp time.Time
}

func (e DealerTurnEvent) EventType() EventType { return EventTypeDealerTurn }
func (e DealerTurnEvent) Timestamp() time.Time { return e.timestamp }

// HandResult is the settlement of one player hand.
type HandResult struct {
	Seat      int          `json:"seat"`
	Cards     []cards.Card `json:"cards"`
	Value     int          `json:"value"`
	Bet       int          `json:"bet"`
	Doubled   bool         `json:"doubled,omitempty"`
	FromSplit bool         `json:"from_split,omitempty"`
	Outcome   Outcome      `json:"outcome"`
	Net       int          `json:"net"`
}

// Bust reports whether the hand finished over 21.
func (r HandResult) Bust() bool { return r.Value > 21 }

// RoundEndEvent is published when every hand has been settled.
type RoundEndEvent struct {
	RoundID      string
	Seats        int
	Results      []HandResult
	Dealer       []cards.Card
	DealerValue  int
	Insurance    int
	InsuranceNet int
	Net          int
	Balance      int
	timestamp    time.Time
}

func (e RoundEndEvent) EventType() EventType { return EventTypeRoundEnd }
func (e RoundEndEvent) Timestamp() time.Time { return e.timestamp }

// BrokeEvent is published when a resolution leaves the balance at or below
// zero.
type BrokeEvent struct {
	RoundID   string
	Balance   int
	timestamp time.Time
}

func (e BrokeEvent) EventType() EventType { return EventTypeBroke }
func (e BrokeEvent) Timestamp() time.Time { return e.timestamp }

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// SubscriberFunc adapts a function to EventSubscriber.
type SubscriberFunc func(GameEvent)

// OnEvent calls f(event).
func (f SubscriberFunc) OnEvent(event GameEvent) { f(event) }

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus is a basic in-memory, synchronous event bus
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() *SimpleEventBus {
	return &SimpleEventBus{}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber. SubscriberFunc values cannot be compared
// and are never removed.
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	if _, ok := subscriber.(SubscriberFunc); ok {
		return
	}
	for i, sub := range bus.subscribers {
		if _, ok := sub.(SubscriberFunc); ok {
			continue
		}
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers in subscription order
func (bus *SimpleEventBus) Publish(event GameEvent) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}

// EventRecorder collects every event it receives. Handy in tests and for
// round logs.
type EventRecorder struct {
	Events []GameEvent
}

// OnEvent appends event.
func (r *EventRecorder) OnEvent(event GameEvent) { r.Events = append(r.Events, event) }

// OfType returns recorded events of the given type.
func (r *EventRecorder) OfType(t EventType) []GameEvent {
	var out []GameEvent
	for _, e := range r.Events {
		if e.EventType() == t {
			out = append(out, e)
		}
	}
	return out
}
