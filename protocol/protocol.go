// Package protocol defines the JSON messages exchanged between the blackjack
// server and its clients.
package protocol

import (
	"encoding/json"
	"time"

	"github.com/lox/blackjack/internal/game"
)

// MessageType identifies a WebSocket message.
type MessageType string

const (
	// Client to server
	MessageTypeStartRound MessageType = "start_round"
	MessageTypeAction     MessageType = "action"
	MessageTypeInsurance  MessageType = "insurance"
	MessageTypeHint       MessageType = "hint"
	MessageTypeRefill     MessageType = "refill"
	MessageTypeGetState   MessageType = "get_state"

	// Server to client
	MessageTypeWelcome MessageType = "welcome"
	MessageTypeState   MessageType = "state"
	MessageTypeAdvice  MessageType = "advice"
	MessageTypeTimeout MessageType = "timeout"
	MessageTypeError   MessageType = "error"
)

func (mt MessageType) String() string {
	return string(mt)
}

// Message is the envelope for every frame in both directions.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"request_id,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	msg := &Message{Type: messageType, Timestamp: time.Now()}
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		msg.Data = b
	}
	return msg, nil
}

// Decode unmarshals the payload into v.
func (m *Message) Decode(v any) error {
	if len(m.Data) == 0 {
		return json.Unmarshal([]byte("{}"), v)
	}
	return json.Unmarshal(m.Data, v)
}

// Client → Server payloads

type StartRoundData struct {
	Bet   int `json:"bet"`
	Seats int `json:"seats,omitempty"`
}

type ActionData struct {
	Action string `json:"action"`
	Seat   int    `json:"seat"`
}

type InsuranceData struct {
	Take bool `json:"take"`
}

type RefillData struct {
	Amount int `json:"amount"`
}

// Server → Client payloads

type WelcomeData struct {
	SessionID         string `json:"session_id"`
	Balance           int    `json:"balance"`
	BetStep           int    `json:"bet_step"`
	MaxSeats          int    `json:"max_seats"`
	DecisionTimeoutMS int64  `json:"decision_timeout_ms"`
}

// StateData carries the table snapshot after every change, plus the
// session's basic strategy accuracy.
type StateData struct {
	game.Snapshot
	Accuracy float64 `json:"accuracy"`
	Streak   int     `json:"streak"`
}

type AdviceData struct {
	Action game.Action `json:"action"`
	Text   string      `json:"text"`
}

type TimeoutData struct {
	Action game.Action `json:"action"`
	Seat   int         `json:"seat"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
