package client

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lox/blackjack/cards"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/server"
	"github.com/lox/blackjack/internal/strategy"
	"github.com/lox/blackjack/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts ...game.Option) *httptest.Server {
	t.Helper()
	cfg := server.DefaultConfig()
	cfg.DecisionTimeout = 0
	cfg.TableOptions = opts
	ts := httptest.NewServer(server.NewServer(cfg).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func dial(t *testing.T, ts *httptest.Server) (*Client, context.Context) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	c, err := Dial(ctx, ts.URL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, ctx
}

func basicPolicy(state protocol.StateData) game.Action {
	action, ok := strategy.AdviseSnapshot(state.Snapshot)
	if !ok {
		return game.ActionStand
	}
	return action
}

func TestDialAndPlay(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, game.WithStackedDecks(cards.MustParseCards("Th 7c 9d Ks")))
	c, ctx := dial(t, ts)
	assert.Equal(t, 1000, c.Welcome().Balance)
	assert.NotEmpty(t, c.Welcome().SessionID)

	require.NoError(t, c.StartRound(100, 1))
	state, err := c.AwaitState(ctx)
	require.NoError(t, err)
	assert.Equal(t, game.PhasePlaying, state.Phase)

	advice, err := c.Advice(ctx)
	require.NoError(t, err)
	assert.Equal(t, game.ActionStand, advice.Action)

	require.NoError(t, c.Act(0, advice.Action))
	state, err = c.AwaitState(ctx)
	require.NoError(t, err)
	assert.Equal(t, game.PhaseResolved, state.Phase)
	assert.Equal(t, 1100, state.Balance)
}

func TestServerErrors(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	c, ctx := dial(t, ts)

	require.NoError(t, c.Act(0, game.ActionHit))
	_, err := c.AwaitState(ctx)
	var serr *ServerError
	require.True(t, errors.As(err, &serr), "err = %v", err)
	assert.Equal(t, "wrong_phase", serr.Code)

	require.NoError(t, c.Insurance(true))
	_, err = c.AwaitState(ctx)
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "wrong_phase", serr.Code)
}

func TestRefillAndState(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	c, ctx := dial(t, ts)

	require.NoError(t, c.Refill(250))
	state, err := c.AwaitState(ctx)
	require.NoError(t, err)
	assert.Equal(t, 250, state.Balance)

	require.NoError(t, c.RequestState())
	state, err = c.AwaitState(ctx)
	require.NoError(t, err)
	assert.Equal(t, game.PhaseIdle, state.Phase)
}

func TestRunBot(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, game.WithSeed(42))
	c, ctx := dial(t, ts)

	sum, err := RunBot(ctx, c, BotConfig{Rounds: 25, Bet: 100, Seats: 2}, basicPolicy)
	require.NoError(t, err)
	assert.Equal(t, 25, sum.Rounds)
	assert.Positive(t, sum.Decisions)
	assert.Positive(t, sum.FinalBalance+sum.Refills, "bot either kept a balance or refilled")
}

func TestDialRejectsBadURL(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := Dial(ctx, "://bad")
	require.Error(t, err)
}

func TestCloseStopsSends(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	c, ctx := dial(t, ts)
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.StartRound(10, 1), ErrClosed)

	_, err := c.Next(ctx)
	assert.Error(t, err)
}
