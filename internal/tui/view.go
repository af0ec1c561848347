package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/blackjack/cards"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/strategy"
)

const sidebarWidth = 28

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	snap := m.table.Snapshot()

	header := HeaderStyle.Render("Blackjack")
	if m.title != "" {
		header += " " + InfoStyle.Render(m.title)
	}

	actionPane := paneStyle.
		Width(max(m.width-2, 1)).
		Render(m.renderActionPane(snap))
	actionHeight := lipgloss.Height(actionPane)

	tablePane := paneStyle.
		Width(max(m.width-sidebarWidth-4, 1)).
		Render(m.renderTable(snap))
	sidebar := paneStyle.
		Width(sidebarWidth).
		Height(max(lipgloss.Height(tablePane)-2, 1)).
		Render(m.renderSidebar(snap))
	topRow := lipgloss.JoinHorizontal(lipgloss.Top, tablePane, sidebar)

	logHeight := m.height - lipgloss.Height(header) - lipgloss.Height(topRow) - actionHeight - 2
	m.logViewport.Width = max(m.width-2, 1)
	m.logViewport.Height = max(logHeight, 1)
	logPane := paneStyle.Width(max(m.width-2, 1)).Render(m.logViewport.View())

	return lipgloss.JoinVertical(lipgloss.Left, header, topRow, logPane, actionPane)
}

func (m *Model) renderTable(snap game.Snapshot) string {
	var b strings.Builder

	dealer := snap.Dealer.Cards
	if m.revealing {
		dealer = m.dealerCards
	}
	if len(dealer) == 0 {
		b.WriteString(InfoStyle.Render("Dealer: waiting for a bet"))
	} else {
		value, soft := game.HandValue(dealer)
		fmt.Fprintf(&b, "Dealer  %s  %s", formatCards(dealer), valueText(value, soft))
	}
	b.WriteString("\n\n")

	for i, h := range snap.Hands {
		marker := "  "
		if snap.Phase == game.PhasePlaying && i == snap.Active {
			marker = ActiveHandStyle.Render("▶ ")
		}
		line := fmt.Sprintf("%sSeat %d  %s  %s  bet %d", marker, i+1, formatCards(h.Cards), valueText(h.Value, h.Soft), h.Bet)
		if h.Doubled {
			line += " (doubled)"
		}
		if h.Outcome != game.OutcomeNone && !m.revealing {
			line += "  " + outcomeText(h.Outcome) + " " + signed(h.Net)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderSidebar(snap game.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %d\n", WarningStyle.Render("Balance"), snap.Balance)
	fmt.Fprintf(&b, "Seats   %d of %d\n", m.seats, m.table.MaxSeats())
	if m.roundLimit > 0 {
		fmt.Fprintf(&b, "Round   %d of %d\n", m.rounds, m.roundLimit)
	}
	fmt.Fprintf(&b, "Count   %+d (true %+.1f)\n", snap.RunningCount, snap.TrueCount)
	b.WriteString("\n")

	fmt.Fprintf(&b, "Strategy %d/%d", m.tracker.Correct(), m.tracker.Total())
	if m.tracker.Total() > 0 {
		fmt.Fprintf(&b, " (%.0f%%)", m.tracker.Accuracy()*100)
	}
	fmt.Fprintf(&b, "\nStreak  %d (best %d)\n\n", m.tracker.Streak(), m.tracker.BestStreak())

	st := m.stats
	fmt.Fprintf(&b, "Rounds  %d\n", st.Rounds)
	fmt.Fprintf(&b, "Net     %s\n", signed(st.Net))
	if st.Hands > 0 {
		fmt.Fprintf(&b, "Win     %.0f%%", st.WinRate()*100)
	}
	return b.String()
}

func (m *Model) renderActionPane(snap game.Snapshot) string {
	var b strings.Builder

	switch {
	case m.revealing:
		b.WriteString(InfoStyle.Render("Dealer is playing..."))
	case snap.Phase == game.PhaseInsurance:
		b.WriteString(ActionsStyle.Render("Insurance? ") + "[i] take  [n] decline  [?] hint")
	case snap.Phase == game.PhasePlaying:
		b.WriteString(renderActions(snap.Eligible))
	case m.table.Broke():
		b.WriteString(BrokeBannerStyle.Render(fmt.Sprintf("BROKE: press f to refill to %d", m.refill)))
	case m.Finished():
		b.WriteString(SuccessStyle.Render(fmt.Sprintf("Challenge complete. Final balance %d. Press q to quit.", snap.Balance)))
	default:
		b.WriteString(m.betInput.View())
		b.WriteString(InfoStyle.Render(fmt.Sprintf("  enter to deal (last %d)  +/- seats", m.lastBet)))
	}

	if m.showHint && snap.Phase.InRound() && !m.revealing {
		if text := hintText(snap); text != "" {
			b.WriteString("\n")
			b.WriteString(WarningStyle.Render("Hint: " + text))
		}
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.statusErr {
			b.WriteString(ErrorStyle.Render(m.status))
		} else {
			b.WriteString(SuccessStyle.Render(m.status))
		}
	}

	b.WriteString("\n")
	b.WriteString(InfoStyle.Render("PgUp/PgDn scroll log • q to quit between rounds • Ctrl+C to quit"))
	return b.String()
}

func renderActions(e game.Eligibility) string {
	opts := []struct {
		label string
		ok    bool
	}{
		{"[h]it", e.Hit},
		{"[s]tand", e.Stand},
		{"[d]ouble", e.Double},
		{"s[p]lit", e.Split},
		{"su[r]render", e.Surrender},
	}
	parts := make([]string, 0, len(opts)+1)
	for _, o := range opts {
		if o.ok {
			parts = append(parts, ActionsStyle.Render(o.label))
		} else {
			parts = append(parts, DisabledStyle.Render(o.label))
		}
	}
	parts = append(parts, InfoStyle.Render("[?] hint"))
	return strings.Join(parts, "  ")
}

func hintText(snap game.Snapshot) string {
	if snap.Phase == game.PhaseInsurance {
		return "Decline insurance"
	}
	h, ok := snap.ActiveHand()
	if !ok {
		return ""
	}
	up, _ := snap.DealerUp()
	return strategy.Hint(h.Cards, up, snap.Eligible)
}

func valueText(value int, soft bool) string {
	switch {
	case value > 21:
		return ErrorStyle.Render(fmt.Sprintf("%d bust", value))
	case soft:
		return fmt.Sprintf("soft %d", value)
	}
	return fmt.Sprintf("%d", value)
}

func formatCard(c cards.Card) string {
	switch {
	case c.Hidden:
		return HiddenCardStyle.Render("??")
	case c.IsRed():
		return RedCardStyle.Render(c.String())
	}
	return CardStyle.Render(c.String())
}

func formatCards(cs []cards.Card) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = formatCard(c)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
