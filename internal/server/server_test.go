package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/blackjack/cards"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func startServer(t *testing.T, cfg Config, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()
	srv := NewServer(cfg, opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server) *testClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	c := &testClient{t: t, conn: conn}
	welcome := c.read(protocol.MessageTypeWelcome)
	var data protocol.WelcomeData
	require.NoError(t, welcome.Decode(&data))
	require.NotEmpty(t, data.SessionID)
	return c
}

func (c *testClient) send(t protocol.MessageType, data any, requestID string) {
	c.t.Helper()
	msg, err := protocol.NewMessage(t, data)
	require.NoError(c.t, err)
	msg.RequestID = requestID
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

func (c *testClient) read(want protocol.MessageType) *protocol.Message {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg protocol.Message
	require.NoError(c.t, c.conn.ReadJSON(&msg))
	require.Equal(c.t, want, msg.Type, "payload: %s", msg.Data)
	return &msg
}

func (c *testClient) state() protocol.StateData {
	c.t.Helper()
	var s protocol.StateData
	require.NoError(c.t, c.read(protocol.MessageTypeState).Decode(&s))
	return s
}

func stackedConfig(decks ...string) Config {
	cfg := DefaultConfig()
	cfg.DecisionTimeout = 0
	var stacked [][]cards.Card
	for _, d := range decks {
		stacked = append(stacked, cards.MustParseCards(d))
	}
	cfg.TableOptions = []game.Option{game.WithSeed(7), game.WithStackedDecks(stacked...)}
	return cfg
}

func TestPlayRound(t *testing.T) {
	t.Parallel()

	srv, ts := startServer(t, stackedConfig("Th 7c 9d Ks 5h"))
	c := dial(t, ts)

	c.send(protocol.MessageTypeStartRound, protocol.StartRoundData{Bet: 100}, "r1")
	s := c.state()
	assert.Equal(t, game.PhasePlaying, s.Phase)
	assert.Equal(t, 900, s.Balance)
	assert.True(t, s.Dealer.Cards[1].Hidden)
	assert.True(t, s.Eligible.Stand)

	c.send(protocol.MessageTypeAction, protocol.ActionData{Action: "stand"}, "r2")
	s = c.state()
	assert.Equal(t, game.PhaseResolved, s.Phase)
	assert.Equal(t, 100, s.Net)
	assert.Equal(t, 1100, s.Balance)
	assert.Equal(t, 1.0, s.Accuracy)

	assert.Eventually(t, func() bool { return srv.Stats().Rounds == 1 }, time.Second, 10*time.Millisecond)
}

func TestErrorsCarryCodeAndRequestID(t *testing.T) {
	t.Parallel()

	_, ts := startServer(t, stackedConfig())
	c := dial(t, ts)

	tests := []struct {
		typ  protocol.MessageType
		data any
		code string
	}{
		{protocol.MessageTypeAction, protocol.ActionData{Action: "hit"}, "wrong_phase"},
		{protocol.MessageTypeAction, protocol.ActionData{Action: "fold"}, "unknown_action"},
		{protocol.MessageTypeStartRound, protocol.StartRoundData{Bet: 15}, "invalid_bet"},
		{protocol.MessageTypeStartRound, protocol.StartRoundData{Bet: 10, Seats: 4}, "invalid_seats"},
		{protocol.MessageTypeRefill, protocol.RefillData{Amount: 0}, "invalid_amount"},
		{protocol.MessageTypeHint, nil, "no_decision"},
		{protocol.MessageType("nope"), nil, "unknown_message_type"},
	}
	for i, tt := range tests {
		id := string(rune('a' + i))
		c.send(tt.typ, tt.data, id)
		msg := c.read(protocol.MessageTypeError)
		var e protocol.ErrorData
		require.NoError(t, msg.Decode(&e))
		assert.Equal(t, tt.code, e.Code, "request %s", tt.typ)
		assert.Equal(t, id, msg.RequestID)
	}
}

func TestHint(t *testing.T) {
	t.Parallel()

	_, ts := startServer(t, stackedConfig("Ts 6c 6d 9s"))
	c := dial(t, ts)

	c.send(protocol.MessageTypeStartRound, protocol.StartRoundData{Bet: 10}, "")
	c.state()
	c.send(protocol.MessageTypeHint, nil, "h")
	var advice protocol.AdviceData
	require.NoError(t, c.read(protocol.MessageTypeAdvice).Decode(&advice))
	assert.Equal(t, game.ActionStand, advice.Action)
	assert.Contains(t, advice.Text, "Stand")
}

func TestInsurance(t *testing.T) {
	t.Parallel()

	_, ts := startServer(t, stackedConfig("Th As 9d Kc"))
	c := dial(t, ts)

	c.send(protocol.MessageTypeStartRound, protocol.StartRoundData{Bet: 100}, "")
	s := c.state()
	require.Equal(t, game.PhaseInsurance, s.Phase)

	c.send(protocol.MessageTypeInsurance, protocol.InsuranceData{Take: true}, "")
	s = c.state()
	assert.Equal(t, game.PhasePlaying, s.Phase)
	assert.Equal(t, 50, s.Insurance)

	c.send(protocol.MessageTypeAction, protocol.ActionData{Action: "s"}, "")
	s = c.state()
	assert.Equal(t, game.PhaseResolved, s.Phase)
	assert.Equal(t, 50, s.InsuranceNet)
	assert.Equal(t, 950, s.Balance)
}

func TestDecisionTimeoutStands(t *testing.T) {
	t.Parallel()

	mClock := quartz.NewMock(t)
	cfg := stackedConfig("Th 7c 9d Ks")
	cfg.DecisionTimeout = 5 * time.Second
	_, ts := startServer(t, cfg, WithClock(mClock))
	c := dial(t, ts)

	c.send(protocol.MessageTypeStartRound, protocol.StartRoundData{Bet: 100}, "")
	require.Equal(t, game.PhasePlaying, c.state().Phase)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	d, w := mClock.AdvanceNext()
	w.MustWait(ctx)
	assert.Equal(t, 5*time.Second, d)

	var timeout protocol.TimeoutData
	require.NoError(t, c.read(protocol.MessageTypeTimeout).Decode(&timeout))
	assert.Equal(t, game.ActionStand, timeout.Action)

	s := c.state()
	assert.Equal(t, game.PhaseResolved, s.Phase)
	assert.Equal(t, 1100, s.Balance)
}

func TestHTTPEndpoints(t *testing.T) {
	t.Parallel()

	srv, ts := startServer(t, stackedConfig("Th 7c 9d Ks"))
	c := dial(t, ts)
	c.send(protocol.MessageTypeStartRound, protocol.StartRoundData{Bet: 100}, "")
	c.state()
	c.send(protocol.MessageTypeAction, protocol.ActionData{Action: "stand"}, "")
	c.state()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, WaitForHealthy(ctx, ts.URL))

	assert.Eventually(t, func() bool { return srv.Stats().Rounds == 1 }, time.Second, 10*time.Millisecond)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), `blackjack_rounds_total{outcome="win"} 1`)
	assert.Contains(t, string(body), `blackjack_actions_total{action="stand"} 1`)
	assert.Contains(t, string(body), "blackjack_active_sessions 1")

	resp, err = http.Get(ts.URL + "/stats")
	require.NoError(t, err)
	var stats statsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	resp.Body.Close()
	assert.Equal(t, 1, stats.Rounds)
	assert.Equal(t, 100, stats.Net)
	assert.Equal(t, 1, stats.Sessions)

	require.NoError(t, c.conn.Close())
	assert.Eventually(t, func() bool { return srv.SessionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServeShutdown(t *testing.T) {
	t.Parallel()

	srv := NewServer(stackedConfig())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	require.NoError(t, WaitForHealthy(waitCtx, "http://"+ln.Addr().String()))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
