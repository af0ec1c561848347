package tui

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/blackjack/cards"
	"github.com/lox/blackjack/internal/game"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func newModel(t *testing.T, balance int, deck string, opts ...Option) *Model {
	t.Helper()
	table := game.NewTable(balance, game.WithSeed(1), game.WithStackedDecks(cards.MustParseCards(deck)))
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	return NewModel(table, append([]Option{WithLogger(logger)}, opts...)...)
}

func typeKeys(m *Model, s string) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return cmd
}

func press(m *Model, k tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: k})
	return cmd
}

func logText(m *Model) string {
	return strings.Join(m.Log(), "\n")
}

func TestBetAndStand(t *testing.T) {
	m := newModel(t, 1000, "Th 7c 9d Ks")

	typeKeys(m, "100")
	press(m, tea.KeyEnter)
	require.Equal(t, game.PhasePlaying, m.Table().Phase())
	assert.Equal(t, 900, m.Table().Balance())

	typeKeys(m, "s")
	assert.Equal(t, game.PhaseResolved, m.Table().Phase())
	assert.Equal(t, 1, m.Rounds())
	assert.Contains(t, logText(m), "Net +100, balance 1100")
	assert.Equal(t, 1, m.Tracker().Total())
	assert.Equal(t, 1, m.Statistics().Rounds)
}

func TestLettersIgnoredInBetInput(t *testing.T) {
	m := newModel(t, 1000, "Th 7c 9d Ks")

	typeKeys(m, "x")
	typeKeys(m, "20")
	press(m, tea.KeyEnter)
	require.Equal(t, game.PhasePlaying, m.Table().Phase())
	assert.Equal(t, 20, m.Table().Round().Bet)
}

func TestInvalidBetShowsError(t *testing.T) {
	m := newModel(t, 1000, "Th 7c 9d Ks")

	typeKeys(m, "15")
	press(m, tea.KeyEnter)
	assert.Equal(t, game.PhaseIdle, m.Table().Phase())
	assert.Contains(t, m.Status(), "multiple")
}

func TestSeatSelection(t *testing.T) {
	m := newModel(t, 1000, "Th 7c 9d Ks")

	typeKeys(m, "+")
	typeKeys(m, "+")
	typeKeys(m, "+")
	assert.Equal(t, 3, m.Seats())
	typeKeys(m, "-")
	assert.Equal(t, 2, m.Seats())
}

func TestInsuranceKeys(t *testing.T) {
	m := newModel(t, 1000, "Th As 9d Kc")

	typeKeys(m, "100")
	press(m, tea.KeyEnter)
	require.Equal(t, game.PhaseInsurance, m.Table().Phase())
	assert.Contains(t, logText(m), "Insurance costs 50")

	typeKeys(m, "h")
	assert.Equal(t, game.PhaseInsurance, m.Table().Phase(), "play keys wait for the insurance answer")

	typeKeys(m, "n")
	assert.Equal(t, game.PhasePlaying, m.Table().Phase())
	typeKeys(m, "s")
	assert.Equal(t, game.PhaseResolved, m.Table().Phase())
}

func TestDealerRevealIsPaced(t *testing.T) {
	mClock := quartz.NewMock(t)
	m := newModel(t, 1000, "Th 6c 9d Ts 5h", WithClock(mClock), WithDealerDelay(500*time.Millisecond))

	typeKeys(m, "100")
	press(m, tea.KeyEnter)
	cmd := typeKeys(m, "s")
	require.NotNil(t, cmd)
	assert.True(t, m.Revealing())
	assert.NotContains(t, logText(m), "Net")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msgs := make(chan tea.Msg, 1)
	go func() { msgs <- cmd() }()
	require.Eventually(t, func() bool {
		_, ok := mClock.Peek()
		return ok
	}, time.Second, time.Millisecond)
	mClock.Advance(500 * time.Millisecond).MustWait(ctx)

	var msg tea.Msg
	select {
	case msg = <-msgs:
	case <-ctx.Done():
		t.Fatal("reveal tick never fired")
	}
	_, cmd = m.Update(msg)
	require.NotNil(t, cmd, "the drawn card is still queued")
	assert.True(t, m.Revealing())

	_, cmd = m.Update(revealMsg{})
	assert.Nil(t, cmd)
	assert.False(t, m.Revealing())
	assert.Contains(t, logText(m), "Net -100, balance 900")
}

func TestBrokeAndRefill(t *testing.T) {
	m := newModel(t, 100, "Th 7c 6d Ks", WithRefill(500))

	typeKeys(m, "100")
	press(m, tea.KeyEnter)
	typeKeys(m, "s")
	require.True(t, m.Table().Broke())
	assert.Contains(t, logText(m), "BROKE")

	typeKeys(m, "f")
	assert.Equal(t, 500, m.Table().Balance())
	assert.False(t, m.Table().Broke())
}

func TestRoundLimit(t *testing.T) {
	m := newModel(t, 1000, "Th 7c 9d Ks", WithRoundLimit(1))

	typeKeys(m, "10")
	press(m, tea.KeyEnter)
	typeKeys(m, "s")
	require.True(t, m.Finished())

	press(m, tea.KeyEnter)
	assert.Equal(t, game.PhaseResolved, m.Table().Phase())
	assert.Contains(t, m.Status(), "Challenge complete")
}

func TestView(t *testing.T) {
	m := newModel(t, 1000, "Ts 6c 6d 9s", WithTitle("Daily 2026-10-14"))
	assert.Equal(t, "Loading...", m.View())

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	view := m.View()
	assert.Contains(t, view, "Balance")
	assert.Contains(t, view, "Daily 2026-10-14")

	typeKeys(m, "10")
	press(m, tea.KeyEnter)
	typeKeys(m, "?")
	view = m.View()
	assert.Contains(t, view, "Seat 1")
	assert.Contains(t, view, "Hint: Stand")
	assert.Contains(t, view, "??", "hole card stays hidden")
}

func TestQuit(t *testing.T) {
	m := newModel(t, 1000, "Th 7c 9d Ks")
	cmd := press(m, tea.KeyCtrlC)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, m.View())
}
