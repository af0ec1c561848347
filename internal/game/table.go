package game

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/google/uuid"
	"github.com/lox/blackjack/cards"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/rs/zerolog"
)

// Phase is the table's position in the round lifecycle.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseInsurance Phase = "insurance"
	PhasePlaying   Phase = "playing"
	PhaseResolved  Phase = "resolved"
)

// String returns the string representation of the phase
func (p Phase) String() string { return string(p) }

// InRound reports whether a round is waiting on player input.
func (p Phase) InRound() bool { return p == PhaseInsurance || p == PhasePlaying }

// Round is the state of one deal. It is owned by its Table.
type Round struct {
	ID     string
	Bet    int
	Seats  int
	Hands  []*Hand
	Active int
	Dealer []cards.Card
	// DealerDraws holds the cards the dealer policy made visible, hole card
	// first.
	DealerDraws    []cards.Card
	Insurance      int
	InsuranceTaken bool
	InsuranceNet   int
	Split          bool
	Net            int

	deck *cards.Deck
}

// DealerUp returns the dealer's face-up card.
func (r *Round) DealerUp() cards.Card {
	if len(r.Dealer) == 0 {
		return cards.Card{}
	}
	return r.Dealer[0]
}

// Table owns the balance, RNG, running count and current round. It is not
// safe for concurrent use.
type Table struct {
	cfg     *tableConfig
	rng     *rand.Rand
	bus     EventBus
	logger  zerolog.Logger
	balance int
	phase   Phase
	round   *Round
	count   int

	expiring bool
}

// NewTable creates a table holding the given starting balance.
func NewTable(balance int, opts ...Option) *Table {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.rng == nil {
		cfg.rng = randutil.New(cfg.now().UnixNano())
	}
	if cfg.bus == nil {
		cfg.bus = NewEventBus()
	}
	if cfg.maxSeats < 1 || cfg.maxSeats > MaxSeats {
		cfg.maxSeats = MaxSeats
	}

	return &Table{
		cfg:     cfg,
		rng:     cfg.rng,
		bus:     cfg.bus,
		logger:  cfg.logger.With().Str("component", "table").Logger(),
		balance: balance,
		phase:   PhaseIdle,
	}
}

// Bus returns the table's event bus.
func (t *Table) Bus() EventBus { return t.bus }

// Subscribe registers s on the table's event bus.
func (t *Table) Subscribe(s EventSubscriber) { t.bus.Subscribe(s) }

// Balance returns the current balance.
func (t *Table) Balance() int { return t.balance }

// Phase returns the current phase.
func (t *Table) Phase() Phase { return t.phase }

// Round returns the current or most recent round, or nil before the first
// deal. Callers must treat it as read-only.
func (t *Table) Round() *Round { return t.round }

// RunningCount returns the Hi-Lo count of every card made visible this round.
func (t *Table) RunningCount() int { return t.count }

// TrueCount returns the running count divided by the decks remaining.
func (t *Table) TrueCount() float64 {
	if t.round == nil {
		return 0
	}
	remaining := t.round.deck.Remaining()
	if remaining == 0 {
		return float64(t.count)
	}
	return float64(t.count) / (float64(remaining) / cards.DeckSize)
}

// Broke reports whether the balance is exhausted between rounds.
func (t *Table) Broke() bool {
	return !t.phase.InRound() && t.balance <= 0
}

// BetStep returns the required bet multiple.
func (t *Table) BetStep() int { return t.cfg.betStep }

// MaxSeats returns the most hands a round may open.
func (t *Table) MaxSeats() int { return t.cfg.maxSeats }

// ValidateBet checks bet against the table limits without touching state.
func (t *Table) ValidateBet(bet int) error {
	switch {
	case bet <= 0:
		return fmt.Errorf("%w: bet must be positive, got %d", ErrInvalidBet, bet)
	case t.cfg.betStep > 0 && bet%t.cfg.betStep != 0:
		return fmt.Errorf("%w: bet %d is not a multiple of %d", ErrInvalidBet, bet, t.cfg.betStep)
	case bet < t.cfg.minBet:
		return fmt.Errorf("%w: bet %d below minimum %d", ErrInvalidBet, bet, t.cfg.minBet)
	case t.cfg.maxBet > 0 && bet > t.cfg.maxBet:
		return fmt.Errorf("%w: bet %d above maximum %d", ErrInvalidBet, bet, t.cfg.maxBet)
	}
	return nil
}

// StartRound commits bet on each of seats hands, debits the balance and
// deals: one card to each seat, the dealer's up card, a second card to each
// seat, then the dealer's hole card face down.
func (t *Table) StartRound(bet, seats int) error {
	if t.phase.InRound() {
		return ErrWrongPhase
	}
	if seats < 1 || seats > t.cfg.maxSeats {
		return fmt.Errorf("%w: %d (allowed 1-%d)", ErrInvalidSeats, seats, t.cfg.maxSeats)
	}
	if err := t.ValidateBet(bet); err != nil {
		return err
	}
	if bet*seats > t.balance {
		return fmt.Errorf("%w: need %d, have %d", ErrInsufficientBalance, bet*seats, t.balance)
	}

	deck := t.cfg.deckFactory(t.rng)
	if deck.Remaining() < 2*seats+2 {
		return fmt.Errorf("%w: %d cards cannot cover the deal", ErrDeckEmpty, deck.Remaining())
	}

	r := &Round{
		ID:    newRoundID(),
		Bet:   bet,
		Seats: seats,
		Hands: make([]*Hand, seats),
		deck:  deck,
	}
	for i := range r.Hands {
		r.Hands[i] = &Hand{Bet: bet}
	}

	t.balance -= bet * seats
	t.count = 0
	t.round = r
	t.phase = PhasePlaying

	t.logger.Debug().
		Str("round_id", r.ID).
		Int("bet", bet).
		Int("seats", seats).
		Int("balance", t.balance).
		Msg("Round started")
	t.bus.Publish(RoundStartEvent{RoundID: r.ID, Bet: bet, Seats: seats, Balance: t.balance, timestamp: t.cfg.now()})

	for pass := 0; pass < 2; pass++ {
		for seat, h := range r.Hands {
			c, _ := deck.Deal()
			h.Cards = append(h.Cards, c)
			t.reveal(c, seat)
		}
		c, _ := deck.Deal()
		if pass == 1 {
			c.Hidden = true
			r.Dealer = append(r.Dealer, c)
			continue
		}
		r.Dealer = append(r.Dealer, c)
		t.reveal(c, -1)
	}

	if seats != 1 {
		// Multi-seat two-card 21s pay even money and take no decision.
		for _, h := range r.Hands {
			h.Done = h.IsBlackjack()
		}
		if r.Hands[0].Done {
			r.Active = -1
			t.advance()
		}
		return nil
	}
	if r.Hands[0].IsBlackjack() {
		r.Hands[0].Done = true
		t.finishRound(true)
		return nil
	}
	if r.DealerUp().IsAce() {
		if stake := InsuranceStake(bet, t.balance); stake > 0 {
			t.phase = PhaseInsurance
			t.bus.Publish(InsuranceOfferedEvent{RoundID: r.ID, Stake: stake, timestamp: t.cfg.now()})
		}
	}
	return nil
}

// Eligibility returns the actions open to the active hand.
func (t *Table) Eligibility() Eligibility {
	switch t.phase {
	case PhaseInsurance:
		return Eligibility{Insurance: true}
	case PhasePlaying:
		h := t.round.Hands[t.round.Active]
		if h.Done {
			return Eligibility{}
		}
		return Eligibility{
			Hit:       true,
			Stand:     true,
			Double:    t.canDouble(h),
			Split:     t.canSplit(h),
			Surrender: t.canSurrender(h),
		}
	}
	return Eligibility{}
}

func (t *Table) canDouble(h *Hand) bool {
	return len(h.Cards) == 2 && h.Bet <= t.balance
}

func (t *Table) canSplit(h *Hand) bool {
	r := t.round
	return IsPair(h.Cards) && h.Bet <= t.balance && !r.Split && len(r.Hands) == 1 && r.Seats == 1
}

func (t *Table) canSurrender(h *Hand) bool {
	return len(h.Cards) == 2 && t.round.Seats == 1 && !t.round.Split
}

// Act applies a to seat. Insurance actions ignore seat.
func (t *Table) Act(seat int, a Action) error {
	switch a {
	case ActionHit:
		return t.Hit(seat)
	case ActionStand:
		return t.Stand(seat)
	case ActionDouble:
		return t.DoubleDown(seat)
	case ActionSplit:
		return t.Split(seat)
	case ActionSurrender:
		return t.Surrender(seat)
	case ActionInsurance:
		return t.TakeInsurance()
	case ActionDeclineInsurance:
		return t.DeclineInsurance()
	}
	return fmt.Errorf("%w: %q", ErrUnknownAction, a)
}

// Hit deals one card to the active hand. A bust ends the hand.
func (t *Table) Hit(seat int) error {
	h, err := t.activeHand(seat)
	if err != nil {
		return err
	}
	if t.round.deck.Remaining() == 0 {
		return ErrDeckEmpty
	}

	t.publishAction(seat, h, ActionHit)
	t.dealTo(seat, h)
	if h.IsBust() {
		h.Done = true
		t.advance()
	}
	return nil
}

// Stand ends the active hand.
func (t *Table) Stand(seat int) error {
	h, err := t.activeHand(seat)
	if err != nil {
		return err
	}

	t.publishAction(seat, h, ActionStand)
	h.Done = true
	t.advance()
	return nil
}

// DoubleDown doubles the active hand's bet, deals exactly one card and
// stands.
func (t *Table) DoubleDown(seat int) error {
	h, err := t.activeHand(seat)
	if err != nil {
		return err
	}
	if !t.canDouble(h) {
		return fmt.Errorf("%w: double", ErrIneligible)
	}
	if t.round.deck.Remaining() == 0 {
		return ErrDeckEmpty
	}

	t.publishAction(seat, h, ActionDouble)
	t.balance -= h.Bet
	h.Bet *= 2
	h.Doubled = true
	t.dealTo(seat, h)
	h.Done = true
	t.advance()
	return nil
}

// Split moves the second card of a pair into a new hand with an equal bet
// and deals one card to each, first hand first. Split aces receive one card
// each and play ends.
func (t *Table) Split(seat int) error {
	h, err := t.activeHand(seat)
	if err != nil {
		return err
	}
	if !t.canSplit(h) {
		return fmt.Errorf("%w: split", ErrIneligible)
	}
	if t.round.deck.Remaining() < 2 {
		return ErrDeckEmpty
	}

	r := t.round
	t.publishAction(seat, h, ActionSplit)
	t.balance -= h.Bet
	aces := h.Cards[0].IsAce()

	second := &Hand{Cards: []cards.Card{h.Cards[1]}, Bet: h.Bet, FromSplit: true}
	h.Cards = h.Cards[:1:1]
	h.FromSplit = true
	r.Hands = append(r.Hands, second)
	r.Split = true

	t.dealTo(seat, h)
	t.dealTo(len(r.Hands)-1, second)

	if aces {
		h.Done = true
		second.Done = true
		t.advance()
	}
	return nil
}

// Surrender forfeits half the bet, reveals the dealer's hole card and ends
// the round without dealer draws.
func (t *Table) Surrender(seat int) error {
	h, err := t.activeHand(seat)
	if err != nil {
		return err
	}
	if !t.canSurrender(h) {
		return fmt.Errorf("%w: surrender", ErrIneligible)
	}

	t.publishAction(seat, h, ActionSurrender)
	refund := SurrenderRefund(h.Bet)
	t.balance += refund
	h.Outcome = OutcomeSurrender
	h.Net = refund - h.Bet
	h.Done = true
	t.finishRound(false)
	return nil
}

// TakeInsurance places the insurance side bet of min(bet/2, balance).
func (t *Table) TakeInsurance() error {
	if t.phase != PhaseInsurance {
		return ErrWrongPhase
	}
	r := t.round
	stake := InsuranceStake(r.Bet, t.balance)
	if stake <= 0 {
		return ErrInsufficientBalance
	}

	t.publishAction(0, r.Hands[0], ActionInsurance)
	t.balance -= stake
	r.Insurance = stake
	r.InsuranceTaken = true
	t.phase = PhasePlaying
	return nil
}

// DeclineInsurance refuses the insurance offer and continues play.
func (t *Table) DeclineInsurance() error {
	if t.phase != PhaseInsurance {
		return ErrWrongPhase
	}

	t.publishAction(0, t.round.Hands[0], ActionDeclineInsurance)
	t.phase = PhasePlaying
	return nil
}

// Expire makes the default decision for a player who ran out of time:
// insurance is declined and the active hand stands. It returns the action
// taken and the seat it applied to.
func (t *Table) Expire() (Action, int, error) {
	t.expiring = true
	defer func() { t.expiring = false }()

	switch t.phase {
	case PhaseInsurance:
		return ActionDeclineInsurance, 0, t.DeclineInsurance()
	case PhasePlaying:
		seat := t.round.Active
		return ActionStand, seat, t.Stand(seat)
	}
	return "", 0, ErrWrongPhase
}

// Refill resets the balance between rounds.
func (t *Table) Refill(amount int) error {
	if t.phase.InRound() {
		return ErrWrongPhase
	}
	if amount <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	t.logger.Info().Int("from", t.balance).Int("to", amount).Msg("Balance refilled")
	t.balance = amount
	return nil
}

func (t *Table) activeHand(seat int) (*Hand, error) {
	if t.phase != PhasePlaying {
		return nil, ErrWrongPhase
	}
	r := t.round
	if seat != r.Active || seat < 0 || seat >= len(r.Hands) || r.Hands[seat].Done {
		return nil, fmt.Errorf("%w: %d", ErrNotActiveSeat, seat)
	}
	return r.Hands[seat], nil
}

func (t *Table) publishAction(seat int, h *Hand, a Action) {
	t.bus.Publish(PlayerActionEvent{
		RoundID:     t.round.ID,
		Seat:        seat,
		Action:      a,
		Cards:       append([]cards.Card(nil), h.Cards...),
		DealerUp:    t.round.DealerUp(),
		Eligibility: t.Eligibility(),
		Timeout:     t.expiring,
		timestamp:   t.cfg.now(),
	})
}

func (t *Table) dealTo(seat int, h *Hand) {
	c, _ := t.round.deck.Deal()
	h.Cards = append(h.Cards, c)
	t.reveal(c, seat)
}

func (t *Table) reveal(c cards.Card, seat int) {
	t.count += c.HiLo()
	t.bus.Publish(CardVisibleEvent{
		RoundID:      t.round.ID,
		Card:         c,
		Seat:         seat,
		RunningCount: t.count,
		timestamp:    t.cfg.now(),
	})
}

// advance moves to the next unfinished hand or, when none remain, plays the
// dealer and resolves.
func (t *Table) advance() {
	r := t.round
	for i := r.Active + 1; i < len(r.Hands); i++ {
		if !r.Hands[i].Done {
			r.Active = i
			return
		}
	}
	t.finishRound(true)
}

// finishRound reveals the hole card, runs the dealer policy when draw is
// set, and settles every hand and the insurance bet.
func (t *Table) finishRound(draw bool) {
	r := t.round

	var visible []cards.Card
	if draw {
		visible = PlayDealer(r.Dealer, r.deck)
	} else {
		for _, c := range r.Dealer {
			if c.Hidden {
				c.Hidden = false
				visible = append(visible, c)
			}
		}
	}
	revealed := 0
	for i := range r.Dealer {
		if r.Dealer[i].Hidden {
			r.Dealer[i].Hidden = false
			revealed++
		}
	}
	r.Dealer = append(r.Dealer, visible[revealed:]...)
	r.DealerDraws = visible
	for _, c := range visible {
		t.reveal(c, -1)
	}
	dealerValue, _ := HandValue(r.Dealer)
	t.bus.Publish(DealerTurnEvent{
		RoundID:   r.ID,
		Revealed:  append([]cards.Card(nil), visible...),
		Final:     append([]cards.Card(nil), r.Dealer...),
		Value:     dealerValue,
		timestamp: t.cfg.now(),
	})

	naturalPays := r.Seats == 1 && !r.Split
	r.Net = 0
	results := make([]HandResult, 0, len(r.Hands))
	for seat, h := range r.Hands {
		if h.Outcome != OutcomeSurrender {
			outcome, credit := Settle(h.Cards, r.Dealer, h.Bet, naturalPays)
			t.balance += credit
			h.Outcome = outcome
			h.Net = credit - h.Bet
		}
		r.Net += h.Net
		results = append(results, HandResult{
			Seat:      seat,
			Cards:     append([]cards.Card(nil), h.Cards...),
			Value:     h.Value(),
			Bet:       h.Bet,
			Doubled:   h.Doubled,
			FromSplit: h.FromSplit,
			Outcome:   h.Outcome,
			Net:       h.Net,
		})
	}

	if r.Insurance > 0 {
		if IsBlackjack(r.Dealer) {
			t.balance += r.Insurance * 2
			r.InsuranceNet = r.Insurance
		} else {
			r.InsuranceNet = -r.Insurance
		}
		r.Net += r.InsuranceNet
	}

	t.phase = PhaseResolved
	t.logger.Debug().
		Str("round_id", r.ID).
		Int("dealer", dealerValue).
		Int("net", r.Net).
		Int("balance", t.balance).
		Msg("Round resolved")

	t.bus.Publish(RoundEndEvent{
		RoundID:      r.ID,
		Seats:        r.Seats,
		Results:      results,
		Dealer:       append([]cards.Card(nil), r.Dealer...),
		DealerValue:  dealerValue,
		Insurance:    r.Insurance,
		InsuranceNet: r.InsuranceNet,
		Net:          r.Net,
		Balance:      t.balance,
		timestamp:    t.cfg.now(),
	})
	if t.balance <= 0 {
		t.logger.Info().Str("round_id", r.ID).Int("balance", t.balance).Msg("Player is broke")
		t.bus.Publish(BrokeEvent{RoundID: r.ID, Balance: t.balance, timestamp: t.cfg.now()})
	}
}

// Results returns the settled hands of the last resolved round.
func (t *Table) Results() []HandResult {
	if t.round == nil || t.phase != PhaseResolved {
		return nil
	}
	out := make([]HandResult, len(t.round.Hands))
	for i, h := range t.round.Hands {
		out[i] = HandResult{
			Seat:      i,
			Cards:     append([]cards.Card(nil), h.Cards...),
			Value:     h.Value(),
			Bet:       h.Bet,
			Doubled:   h.Doubled,
			FromSplit: h.FromSplit,
			Outcome:   h.Outcome,
			Net:       h.Net,
		}
	}
	return out
}

func newRoundID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
