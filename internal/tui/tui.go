// Package tui is the interactive terminal blackjack table.
package tui

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/blackjack/cards"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/statistics"
	"github.com/lox/blackjack/internal/strategy"
)

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the model logger.
func WithLogger(logger *log.Logger) Option {
	return func(m *Model) { m.logger = logger }
}

// WithClock sets the clock pacing the dealer reveal.
func WithClock(clock quartz.Clock) Option {
	return func(m *Model) { m.clock = clock }
}

// WithDealerDelay sets the pause between dealer cards. Zero reveals the
// dealer hand at once.
func WithDealerDelay(d time.Duration) Option {
	return func(m *Model) { m.dealerDelay = d }
}

// WithRefill sets the balance restored by the refill key when broke.
func WithRefill(amount int) Option {
	return func(m *Model) { m.refill = amount }
}

// WithStatistics accumulates session results into stats.
func WithStatistics(stats *statistics.Statistics) Option {
	return func(m *Model) { m.stats = stats }
}

// WithTracker grades decisions into tracker.
func WithTracker(tracker *strategy.Tracker) Option {
	return func(m *Model) { m.tracker = tracker }
}

// WithTitle is shown in the header.
func WithTitle(title string) Option {
	return func(m *Model) { m.title = title }
}

// WithRoundLimit stops accepting bets after n rounds.
func WithRoundLimit(n int) Option {
	return func(m *Model) { m.roundLimit = n }
}

// revealMsg shows the next dealer card.
type revealMsg struct{}

// Model is the Bubble Tea model for a local table.
type Model struct {
	table  *game.Table
	logger *log.Logger
	clock  quartz.Clock

	dealerDelay time.Duration
	refill      int
	tracker     *strategy.Tracker
	stats       *statistics.Statistics
	title       string
	roundLimit  int
	rounds      int

	logViewport viewport.Model
	betInput    textinput.Model
	seats       int
	lastBet     int
	showHint    bool
	status      string
	statusErr   bool

	gameLog []string
	events  []game.GameEvent

	// Dealer replay: while revealing, dealerCards is what the view shows
	// and deferred holds log lines that must not spoil the result.
	revealing   bool
	dealerCards []cards.Card
	revealQueue []cards.Card
	deferred    []string

	width    int
	height   int
	quitting bool
}

// NewModel creates a model playing on table.
func NewModel(table *game.Table, opts ...Option) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "bet"
	ti.Focus()
	ti.CharLimit = 7
	ti.Width = 10
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "Bet > "

	m := &Model{
		table:       table,
		logger:      log.New(io.Discard),
		clock:       quartz.NewReal(),
		logViewport: vp,
		betInput:    ti,
		seats:       1,
		lastBet:     table.BetStep(),
		refill:      table.Balance(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.stats == nil {
		m.stats = &statistics.Statistics{}
	}
	if m.tracker == nil {
		m.tracker = strategy.NewTracker()
	}
	m.logger = m.logger.WithPrefix("tui")

	table.Subscribe(m.stats.Observer())
	table.Subscribe(m.tracker)
	table.Subscribe(game.SubscriberFunc(func(e game.GameEvent) {
		m.events = append(m.events, e)
	}))
	return m
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses and reveal ticks.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case revealMsg:
		return m, m.revealNext()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "pgup":
			m.logViewport.HalfPageUp()
			return m, nil
		case "pgdown":
			m.logViewport.HalfPageDown()
			return m, nil
		}
		if m.revealing {
			return m, nil
		}

		switch m.table.Phase() {
		case game.PhasePlaying:
			return m, m.handlePlayingKey(msg)
		case game.PhaseInsurance:
			return m, m.handleInsuranceKey(msg)
		default:
			return m, m.handleBettingKey(msg)
		}
	}
	return m, nil
}

var actionKeys = map[string]game.Action{
	"h": game.ActionHit,
	"s": game.ActionStand,
	"d": game.ActionDouble,
	"p": game.ActionSplit,
	"r": game.ActionSurrender,
}

func (m *Model) handlePlayingKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "?" {
		m.showHint = !m.showHint
		return nil
	}
	action, ok := actionKeys[key]
	if !ok {
		return nil
	}
	return m.act(m.table.Round().Active, action)
}

func (m *Model) handleInsuranceKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "i", "y":
		return m.act(0, game.ActionInsurance)
	case "n":
		return m.act(0, game.ActionDeclineInsurance)
	case "?":
		m.showHint = !m.showHint
	}
	return nil
}

func (m *Model) handleBettingKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		m.quitting = true
		return tea.Quit
	case "enter":
		return m.placeBet()
	case "+", "=":
		if m.seats < m.table.MaxSeats() {
			m.seats++
		}
		return nil
	case "-":
		if m.seats > 1 {
			m.seats--
		}
		return nil
	case "f":
		if m.table.Broke() {
			if err := m.table.Refill(m.refill); err != nil {
				m.setError(err)
			} else {
				m.setStatus(fmt.Sprintf("Balance refilled to %d", m.refill))
				m.addLog(SuccessStyle.Render(fmt.Sprintf("Refilled to %d", m.refill)))
			}
		}
		return nil
	}

	if msg.Type == tea.KeyRunes && !isDigits(string(msg.Runes)) {
		return nil
	}
	var cmd tea.Cmd
	m.betInput, cmd = m.betInput.Update(msg)
	return cmd
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func (m *Model) placeBet() tea.Cmd {
	if m.Finished() {
		m.setStatus("Challenge complete, press q to quit")
		return nil
	}

	bet := m.lastBet
	if v := strings.TrimSpace(m.betInput.Value()); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			m.setError(fmt.Errorf("invalid bet %q", v))
			return nil
		}
		bet = n
	}

	if err := m.table.StartRound(bet, m.seats); err != nil {
		m.setError(err)
		return nil
	}
	m.lastBet = bet
	m.betInput.SetValue("")
	m.setStatus("")
	return m.drain()
}

func (m *Model) act(seat int, action game.Action) tea.Cmd {
	if err := m.table.Act(seat, action); err != nil {
		m.setError(err)
		return nil
	}
	m.setStatus("")
	return m.drain()
}

// drain turns queued table events into log lines and starts the dealer
// replay when the dealer has played.
func (m *Model) drain() tea.Cmd {
	events := m.events
	m.events = nil

	for _, event := range events {
		switch e := event.(type) {
		case game.RoundStartEvent:
			m.revealing = false
			m.dealerCards = nil
			m.deferred = nil
			m.addLog(WarningStyle.Render(fmt.Sprintf("Round %d: %d on %d hand(s)", m.rounds+1, e.Bet, e.Seats)))

		case game.InsuranceOfferedEvent:
			m.addLog(WarningStyle.Render(fmt.Sprintf("Dealer shows an Ace. Insurance costs %d (i/n)", e.Stake)))

		case game.PlayerActionEvent:
			line := fmt.Sprintf("Seat %d: %s %s", e.Seat+1, e.Action, formatCards(e.Cards))
			if advised := strategy.Advise(e.Cards, e.DealerUp, e.Eligibility); advised != e.Action {
				line += InfoStyle.Render(fmt.Sprintf(" (basic strategy: %s)", advised))
			}
			m.addLog(line)

		case game.DealerTurnEvent:
			shown := len(e.Final) - len(e.Revealed)
			m.dealerCards = append([]cards.Card(nil), e.Final[:shown]...)
			m.revealQueue = append([]cards.Card(nil), e.Revealed...)
			m.revealing = true
			m.deferred = append(m.deferred, fmt.Sprintf("Dealer %s: %d", formatCards(e.Final), e.Value))

		case game.RoundEndEvent:
			m.rounds++
			for _, r := range e.Results {
				m.hold(fmt.Sprintf("Seat %d: %s %s", r.Seat+1, outcomeText(r.Outcome), signed(r.Net)))
			}
			if e.Insurance > 0 {
				m.hold(fmt.Sprintf("Insurance %s", signed(e.InsuranceNet)))
			}
			m.hold(fmt.Sprintf("Net %s, balance %d", signed(e.Net), e.Balance))
			m.logger.Debug("Round resolved", "round", m.rounds, "net", e.Net)

		case game.BrokeEvent:
			m.hold(BrokeBannerStyle.Render("BROKE: press f to refill"))
		}
	}

	if !m.revealing {
		return nil
	}
	if m.dealerDelay <= 0 {
		m.finishReveal()
		return nil
	}
	return m.revealTick()
}

func (m *Model) hold(line string) {
	if m.revealing {
		m.deferred = append(m.deferred, line)
		return
	}
	m.addLog(line)
}

func (m *Model) revealTick() tea.Cmd {
	clock, d := m.clock, m.dealerDelay
	return func() tea.Msg {
		t := clock.NewTimer(d, "tui", "reveal")
		<-t.C
		return revealMsg{}
	}
}

func (m *Model) revealNext() tea.Cmd {
	if !m.revealing {
		return nil
	}
	if len(m.revealQueue) > 0 {
		m.dealerCards = append(m.dealerCards, m.revealQueue[0])
		m.revealQueue = m.revealQueue[1:]
	}
	if len(m.revealQueue) == 0 {
		m.finishReveal()
		return nil
	}
	return m.revealTick()
}

func (m *Model) finishReveal() {
	m.revealing = false
	m.dealerCards = nil
	m.revealQueue = nil
	for _, line := range m.deferred {
		m.addLog(line)
	}
	m.deferred = nil
}

func (m *Model) addLog(line string) {
	m.gameLog = append(m.gameLog, line)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
	m.logger.Debug("Rejected", "error", err)
}

// Log returns the round log lines.
func (m *Model) Log() []string {
	return append([]string(nil), m.gameLog...)
}

// Status returns the last status or error line.
func (m *Model) Status() string { return m.status }

// Rounds returns how many rounds have been resolved.
func (m *Model) Rounds() int { return m.rounds }

// Seats returns the seat count for the next round.
func (m *Model) Seats() int { return m.seats }

// Revealing reports whether the dealer replay is still running.
func (m *Model) Revealing() bool { return m.revealing }

// Finished reports whether the round limit has been reached.
func (m *Model) Finished() bool {
	return m.roundLimit > 0 && m.rounds >= m.roundLimit && !m.table.Phase().InRound()
}

// Statistics returns the session statistics.
func (m *Model) Statistics() *statistics.Statistics { return m.stats }

// Tracker returns the strategy tracker.
func (m *Model) Tracker() *strategy.Tracker { return m.tracker }

// Table returns the table being played.
func (m *Model) Table() *game.Table { return m.table }

func outcomeText(o game.Outcome) string {
	switch o {
	case game.OutcomeWin:
		return SuccessStyle.Render("win")
	case game.OutcomeBlackjack:
		return SuccessStyle.Render("blackjack")
	case game.OutcomePush:
		return WarningStyle.Render("push")
	case game.OutcomeSurrender:
		return ErrorStyle.Render("surrender")
	}
	return ErrorStyle.Render("lose")
}

func signed(n int) string {
	if n > 0 {
		return fmt.Sprintf("+%d", n)
	}
	return strconv.Itoa(n)
}
