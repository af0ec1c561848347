package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/statistics"
	"github.com/lox/blackjack/internal/strategy"
	"github.com/lox/blackjack/protocol"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

// ErrSessionClosed is returned when sending on a closed session.
var ErrSessionClosed = errors.New("session closed")

// Session is one WebSocket client playing at its own table.
type Session struct {
	id      string
	conn    *websocket.Conn
	send    chan *protocol.Message
	server  *Server
	logger  zerolog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	closeMu sync.Once

	mu      sync.Mutex // guards table, timer and timerGen
	table   *game.Table
	tracker *strategy.Tracker
	timer   *quartz.Timer
	// timerGen invalidates callbacks of timers that were stopped too late.
	timerGen uint64
}

func newSession(id string, conn *websocket.Conn, srv *Server) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	logger := srv.logger.With().Str("component", "session").Str("session_id", id).Logger()

	opts := append([]game.Option{game.WithLogger(logger)}, srv.config.TableOptions...)
	table := game.NewTable(srv.config.StartingBalance, opts...)

	s := &Session{
		id:      id,
		conn:    conn,
		send:    make(chan *protocol.Message, 64),
		server:  srv,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		table:   table,
		tracker: strategy.NewTracker(),
	}

	unit := 0
	table.Subscribe(srv.metrics)
	table.Subscribe(s.tracker)
	table.Subscribe(game.SubscriberFunc(func(event game.GameEvent) {
		switch e := event.(type) {
		case game.RoundStartEvent:
			unit = e.Bet
		case game.RoundEndEvent:
			srv.recordRound(statistics.FromRoundEnd(e, unit))
			s.logger.Info().
				Str("round_id", e.RoundID).
				Int("net", e.Net).
				Int("balance", e.Balance).
				Msg("Round resolved")
		case game.BrokeEvent:
			s.logger.Info().Msg("Player is broke")
		}
	}))
	return s
}

// ID returns the session identifier sent in the welcome message.
func (s *Session) ID() string { return s.id }

// Start runs the pumps and greets the client.
func (s *Session) Start() {
	go s.writePump()
	go s.readPump()

	s.mu.Lock()
	welcome := protocol.WelcomeData{
		SessionID:         s.id,
		Balance:           s.table.Balance(),
		BetStep:           s.table.BetStep(),
		MaxSeats:          s.table.MaxSeats(),
		DecisionTimeoutMS: s.server.config.DecisionTimeout.Milliseconds(),
	}
	s.mu.Unlock()
	s.reply(protocol.MessageTypeWelcome, welcome, "")
}

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} { return s.ctx.Done() }

// Close stops the pumps. A pending decision timer sees the cancelled
// context and does nothing.
func (s *Session) Close() error {
	var err error
	s.closeMu.Do(func() {
		s.cancel()
		err = s.conn.Close()
	})
	return err
}

// SendMessage queues msg for the write pump.
func (s *Session) SendMessage(msg *protocol.Message) error {
	select {
	case <-s.ctx.Done():
		return ErrSessionClosed
	default:
	}

	select {
	case s.send <- msg:
		return nil
	case <-s.ctx.Done():
		return ErrSessionClosed
	default:
		s.logger.Warn().Msg("Send buffer full, closing session")
		_ = s.Close()
		return ErrSessionClosed
	}
}

func (s *Session) reply(t protocol.MessageType, data any, requestID string) {
	msg, err := protocol.NewMessage(t, data)
	if err != nil {
		s.logger.Error().Err(err).Str("type", t.String()).Msg("Failed to encode message")
		return
	}
	msg.RequestID = requestID
	_ = s.SendMessage(msg)
}

func (s *Session) sendError(code, message, requestID string) {
	s.reply(protocol.MessageTypeError, protocol.ErrorData{Code: code, Message: message}, requestID)
}

func (s *Session) readPump() {
	defer func() { _ = s.Close() }()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg protocol.Message
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn().Err(err).Msg("WebSocket read error")
			}
			return
		}
		s.handleMessage(&msg)
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(msg); err != nil {
				s.logger.Error().Err(err).Msg("Failed to write message")
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-s.ctx.Done():
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (s *Session) handleMessage(msg *protocol.Message) {
	s.logger.Debug().Str("type", msg.Type.String()).Msg("Received message")

	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	switch msg.Type {
	case protocol.MessageTypeStartRound:
		var data protocol.StartRoundData
		if err := msg.Decode(&data); err != nil {
			s.sendError("invalid_message", "Failed to parse start_round data", msg.RequestID)
			return
		}
		if data.Seats == 0 {
			data.Seats = 1
		}
		err = s.table.StartRound(data.Bet, data.Seats)

	case protocol.MessageTypeAction:
		var data protocol.ActionData
		if err := msg.Decode(&data); err != nil {
			s.sendError("invalid_message", "Failed to parse action data", msg.RequestID)
			return
		}
		var action game.Action
		if action, err = game.ParseAction(data.Action); err == nil {
			err = s.table.Act(data.Seat, action)
		}

	case protocol.MessageTypeInsurance:
		var data protocol.InsuranceData
		if err := msg.Decode(&data); err != nil {
			s.sendError("invalid_message", "Failed to parse insurance data", msg.RequestID)
			return
		}
		if data.Take {
			err = s.table.TakeInsurance()
		} else {
			err = s.table.DeclineInsurance()
		}

	case protocol.MessageTypeRefill:
		var data protocol.RefillData
		if err := msg.Decode(&data); err != nil {
			s.sendError("invalid_message", "Failed to parse refill data", msg.RequestID)
			return
		}
		err = s.table.Refill(data.Amount)

	case protocol.MessageTypeHint:
		s.sendAdviceLocked(msg.RequestID)
		return

	case protocol.MessageTypeGetState:

	default:
		s.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String(), msg.RequestID)
		return
	}

	if err != nil {
		s.logger.Debug().Err(err).Str("type", msg.Type.String()).Msg("Request rejected")
		s.sendError(errorCode(err), err.Error(), msg.RequestID)
		return
	}
	s.pushStateLocked(msg.RequestID)
}

func (s *Session) sendAdviceLocked(requestID string) {
	snap := s.table.Snapshot()
	action, ok := strategy.AdviseSnapshot(snap)
	if !ok {
		s.sendError("no_decision", "No decision is pending", requestID)
		return
	}

	text := "Decline insurance"
	if h, ok := snap.ActiveHand(); ok && snap.Phase == game.PhasePlaying {
		up, _ := snap.DealerUp()
		text = strategy.Hint(h.Cards, up, snap.Eligible)
	}
	s.reply(protocol.MessageTypeAdvice, protocol.AdviceData{Action: action, Text: text}, requestID)
}

// pushStateLocked sends the snapshot and re-arms the decision timer when a
// decision is pending. The timer is armed before the send so a client that
// has the state is guaranteed the timer is running.
func (s *Session) pushStateLocked(requestID string) {
	s.stopTimerLocked()
	if s.table.Phase().InRound() && s.server.config.DecisionTimeout > 0 {
		s.timerGen++
		gen := s.timerGen
		s.timer = s.server.clock.AfterFunc(s.server.config.DecisionTimeout, func() {
			s.expire(gen)
		}, "session", "decision")
	}
	s.reply(protocol.MessageTypeState, protocol.StateData{
		Snapshot: s.table.Snapshot(),
		Accuracy: s.tracker.Accuracy(),
		Streak:   s.tracker.Streak(),
	}, requestID)
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) expire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.timerGen || s.ctx.Err() != nil {
		return
	}
	s.timer = nil

	action, seat, err := s.table.Expire()
	if err != nil {
		return
	}
	s.logger.Info().Str("action", action.String()).Int("seat", seat).Msg("Decision timed out")
	s.reply(protocol.MessageTypeTimeout, protocol.TimeoutData{Action: action, Seat: seat}, "")
	s.pushStateLocked("")
}

// errorCode maps engine errors to stable wire codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrWrongPhase):
		return "wrong_phase"
	case errors.Is(err, game.ErrNotActiveSeat):
		return "not_active_seat"
	case errors.Is(err, game.ErrIneligible):
		return "ineligible"
	case errors.Is(err, game.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, game.ErrInvalidBet):
		return "invalid_bet"
	case errors.Is(err, game.ErrInvalidSeats):
		return "invalid_seats"
	case errors.Is(err, game.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, game.ErrDeckEmpty):
		return "deck_empty"
	case errors.Is(err, game.ErrUnknownAction):
		return "unknown_action"
	}
	return "request_failed"
}
