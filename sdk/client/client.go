// Package client connects to a blackjack server over WebSocket.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/protocol"
)

// ErrClosed is returned once the connection has gone away.
var ErrClosed = errors.New("client: connection closed")

// ServerError is an error message sent by the server.
type ServerError struct {
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %s: %s", e.Code, e.Message)
}

// Client is a connected session. Send methods are safe for concurrent use;
// messages are consumed by a single reader through Next.
type Client struct {
	conn     *websocket.Conn
	logger   *log.Logger
	incoming chan *protocol.Message
	done     chan struct{}
	writeMu  sync.Mutex
	nextID   atomic.Uint64

	closeOnce sync.Once

	welcome protocol.WelcomeData
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// Dial connects to serverURL and waits for the welcome message. http and
// https URLs are converted to ws and wss, and an empty path becomes /ws.
func Dial(ctx context.Context, serverURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		u.Scheme = "ws"
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}

	c := &Client{
		logger:   log.New(io.Discard),
		incoming: make(chan *protocol.Message, 16),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.logger.Debug("Connecting to server", "url", u.String())
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	c.conn = conn
	go c.readMessages()

	msg, err := c.Next(ctx)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	if msg.Type != protocol.MessageTypeWelcome {
		_ = c.Close()
		return nil, fmt.Errorf("expected welcome, got %s", msg.Type)
	}
	if err := msg.Decode(&c.welcome); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("decode welcome: %w", err)
	}
	c.logger.Info("Connected", "session", c.welcome.SessionID, "balance", c.welcome.Balance)
	return c, nil
}

// Welcome returns the session details the server sent on connect.
func (c *Client) Welcome() protocol.WelcomeData { return c.welcome }

func (c *Client) readMessages() {
	defer close(c.incoming)
	for {
		var msg protocol.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		select {
		case c.incoming <- &msg:
		case <-c.done:
			return
		}
	}
}

// Next returns the next message from the server.
func (c *Client) Next(ctx context.Context) (*protocol.Message, error) {
	select {
	case msg, ok := <-c.incoming:
		if !ok {
			return nil, ErrClosed
		}
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// send writes a request and returns its request ID.
func (c *Client) send(t protocol.MessageType, data any) (string, error) {
	msg, err := protocol.NewMessage(t, data)
	if err != nil {
		return "", err
	}
	msg.RequestID = strconv.FormatUint(c.nextID.Add(1), 10)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	select {
	case <-c.done:
		return "", ErrClosed
	default:
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		return "", fmt.Errorf("send %s: %w", t, err)
	}
	return msg.RequestID, nil
}

// StartRound bets on seats hands.
func (c *Client) StartRound(bet, seats int) error {
	_, err := c.send(protocol.MessageTypeStartRound, protocol.StartRoundData{Bet: bet, Seats: seats})
	return err
}

// Act sends a decision for seat. Insurance decisions ignore seat.
func (c *Client) Act(seat int, action game.Action) error {
	_, err := c.send(protocol.MessageTypeAction, protocol.ActionData{Action: action.String(), Seat: seat})
	return err
}

// Insurance answers the insurance offer.
func (c *Client) Insurance(take bool) error {
	_, err := c.send(protocol.MessageTypeInsurance, protocol.InsuranceData{Take: take})
	return err
}

// Hint asks for advice on the pending decision.
func (c *Client) Hint() error {
	_, err := c.send(protocol.MessageTypeHint, nil)
	return err
}

// Refill resets the balance between rounds.
func (c *Client) Refill(amount int) error {
	_, err := c.send(protocol.MessageTypeRefill, protocol.RefillData{Amount: amount})
	return err
}

// RequestState asks the server to resend the current state.
func (c *Client) RequestState() error {
	_, err := c.send(protocol.MessageTypeGetState, nil)
	return err
}

// AwaitState reads until the next state message. Error messages are
// returned as *ServerError; timeout notices are logged and skipped.
func (c *Client) AwaitState(ctx context.Context) (protocol.StateData, error) {
	var state protocol.StateData
	for {
		msg, err := c.Next(ctx)
		if err != nil {
			return state, err
		}
		switch msg.Type {
		case protocol.MessageTypeState:
			err := msg.Decode(&state)
			return state, err
		case protocol.MessageTypeError:
			return state, decodeError(msg)
		case protocol.MessageTypeTimeout:
			var data protocol.TimeoutData
			_ = msg.Decode(&data)
			c.logger.Warn("Decision timed out", "action", data.Action, "seat", data.Seat)
		default:
			c.logger.Debug("Skipping message", "type", msg.Type)
		}
	}
}

// Advice requests a hint and waits for it.
func (c *Client) Advice(ctx context.Context) (protocol.AdviceData, error) {
	var advice protocol.AdviceData
	if err := c.Hint(); err != nil {
		return advice, err
	}
	for {
		msg, err := c.Next(ctx)
		if err != nil {
			return advice, err
		}
		switch msg.Type {
		case protocol.MessageTypeAdvice:
			err := msg.Decode(&advice)
			return advice, err
		case protocol.MessageTypeError:
			return advice, decodeError(msg)
		}
	}
}

func decodeError(msg *protocol.Message) error {
	var data protocol.ErrorData
	if err := msg.Decode(&data); err != nil {
		return fmt.Errorf("decode error message: %w", err)
	}
	return &ServerError{Code: data.Code, Message: data.Message}
}

// Close sends a close frame and closes the connection.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		close(c.done)
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}
