package game

import "github.com/lox/blackjack/cards"

// HandView is the read-only view of one player hand.
type HandView struct {
	Seat      int          `json:"seat"`
	Cards     []cards.Card `json:"cards"`
	Value     int          `json:"value"`
	Soft      bool         `json:"soft"`
	Blackjack bool         `json:"blackjack,omitempty"`
	Bust      bool         `json:"bust,omitempty"`
	Bet       int          `json:"bet"`
	Doubled   bool         `json:"doubled,omitempty"`
	FromSplit bool         `json:"from_split,omitempty"`
	Done      bool         `json:"done"`
	Outcome   Outcome      `json:"outcome,omitempty"`
	Net       int          `json:"net"`
}

// DealerView is the dealer hand with face-down cards masked. Value counts
// visible cards only.
type DealerView struct {
	Cards []cards.Card `json:"cards"`
	Value int          `json:"value"`
	Soft  bool         `json:"soft"`
}

// Snapshot is everything a presentation layer needs to draw the table.
type Snapshot struct {
	RoundID      string      `json:"round_id,omitempty"`
	Phase        Phase       `json:"phase"`
	Bet          int         `json:"bet"`
	Seats        int         `json:"seats"`
	Hands        []HandView  `json:"hands"`
	Dealer       DealerView  `json:"dealer"`
	Active       int         `json:"active"`
	Balance      int         `json:"balance"`
	Insurance    int         `json:"insurance,omitempty"`
	InsuranceNet int         `json:"insurance_net,omitempty"`
	RunningCount int         `json:"running_count"`
	TrueCount    float64     `json:"true_count"`
	Eligible     Eligibility `json:"eligible"`
	Net          int         `json:"net"`
	Broke        bool        `json:"broke,omitempty"`
}

// Snapshot returns a copy of the visible table state.
func (t *Table) Snapshot() Snapshot {
	s := Snapshot{
		Phase:        t.phase,
		Balance:      t.balance,
		RunningCount: t.count,
		TrueCount:    t.TrueCount(),
		Eligible:     t.Eligibility(),
		Broke:        t.Broke(),
		Hands:        []HandView{},
		Dealer:       DealerView{Cards: []cards.Card{}},
	}
	r := t.round
	if r == nil {
		return s
	}

	s.RoundID = r.ID
	s.Bet = r.Bet
	s.Seats = r.Seats
	s.Active = r.Active
	s.Insurance = r.Insurance
	if t.phase == PhaseResolved {
		s.InsuranceNet = r.InsuranceNet
		s.Net = r.Net
	}

	for i, h := range r.Hands {
		value, soft := HandValue(h.Cards)
		s.Hands = append(s.Hands, HandView{
			Seat:      i,
			Cards:     append([]cards.Card(nil), h.Cards...),
			Value:     value,
			Soft:      soft,
			Blackjack: h.IsBlackjack(),
			Bust:      value > 21,
			Bet:       h.Bet,
			Doubled:   h.Doubled,
			FromSplit: h.FromSplit,
			Done:      h.Done,
			Outcome:   h.Outcome,
			Net:       h.Net,
		})
	}

	for _, c := range r.Dealer {
		if c.Hidden {
			c = cards.Card{Hidden: true}
		}
		s.Dealer.Cards = append(s.Dealer.Cards, c)
	}
	s.Dealer.Value, s.Dealer.Soft = HandValue(r.Dealer)
	return s
}

// ActiveHand returns the view of the hand awaiting a decision.
func (s Snapshot) ActiveHand() (HandView, bool) {
	if !s.Phase.InRound() || s.Active < 0 || s.Active >= len(s.Hands) {
		return HandView{}, false
	}
	return s.Hands[s.Active], true
}

// DealerUp returns the dealer's face-up card.
func (s Snapshot) DealerUp() (cards.Card, bool) {
	if len(s.Dealer.Cards) == 0 {
		return cards.Card{}, false
	}
	return s.Dealer.Cards[0], true
}
