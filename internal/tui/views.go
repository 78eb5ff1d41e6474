package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mattjoyce/hearth/internal/activity"
	"github.com/mattjoyce/hearth/internal/chord"
	"github.com/mattjoyce/hearth/internal/payment"
	"github.com/mattjoyce/hearth/internal/recent"
	"github.com/mattjoyce/hearth/internal/store"
	"github.com/mattjoyce/hearth/internal/tui/watch"
)

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	width := m.width
	if width == 0 {
		width = 80
	}

	var body string
	switch m.current {
	case viewActivity:
		body = m.renderActivity(width)
	case viewRecent:
		body = m.renderRecent(width)
	case viewPayment:
		body = m.renderPayment(width)
	case viewStatus:
		body = m.renderStatus(width)
	}

	parts := []string{m.renderTabs(), body}
	if m.searching || m.search.Value() != "" {
		parts = append(parts, " "+m.search.View())
	}
	if m.keys.Pending() {
		parts = append(parts, m.theme.Highlight.Render(" g…"))
	}
	if m.status != "" {
		parts = append(parts, m.theme.StatusOK.Render(" "+m.status))
	}
	parts = append(parts, m.help.View(chord.KeyMap{D: m.keys}))

	return lipgloss.NewStyle().Margin(1, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...),
	)
}

func (m *Model) renderTabs() string {
	var tabs []string
	for _, v := range []view{viewActivity, viewRecent, viewPayment, viewStatus} {
		label := viewTitles[v]
		if v == viewActivity && m.deps.Activity != nil {
			if n := m.deps.Activity.UnreadCount(); n > 0 {
				label = fmt.Sprintf("%s (%d)", label, n)
			}
		}
		if v == m.current {
			tabs = append(tabs, m.theme.Selected.Render("["+label+"]"))
		} else {
			tabs = append(tabs, m.theme.Dim.Render(" "+label+" "))
		}
	}
	return strings.Join(tabs, " ")
}

func (m *Model) panel(title string, width int, lines []string) string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Title.Render(title),
		lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines, "\n")),
	)
	return m.theme.Border.Width(width - 4).Render(content)
}

func (m *Model) renderActivity(width int) string {
	if m.deps.Activity == nil {
		return m.panel("ACTIVITY", width, []string{m.theme.Dim.Render("Activity feed disabled")})
	}
	groups := m.deps.Activity.Grouped(m.activityFilter())
	if len(groups) == 0 {
		return m.panel("ACTIVITY", width, []string{m.theme.Dim.Render("No activity yet")})
	}

	now := m.now()
	var lines []string
	i := 0
	for _, g := range groups {
		lines = append(lines, m.theme.Header.Render(g.Label))
		for _, a := range g.Items {
			marker := "  "
			if !a.IsRead {
				marker = m.theme.Unread.Render("● ")
			}
			title := a.Title
			if a.IsImportant {
				title = m.theme.Highlight.Render(title)
			}
			line := fmt.Sprintf("%s%s %s %s",
				marker,
				m.theme.Category(string(a.Category)).Render(fmt.Sprintf("%-13s", activity.CategoryLabel(a.Category))),
				title,
				m.theme.Dim.Render("· "+a.Actor.Name+" · "+store.TimeAgo(a.Timestamp, now)),
			)
			lines = append(lines, m.cursorLine(i, line))
			i++
		}
	}
	return m.panel("ACTIVITY", width, lines)
}

func (m *Model) renderRecent(width int) string {
	if m.deps.Recent == nil {
		return m.panel("RECENT", width, []string{m.theme.Dim.Render("Recent items disabled")})
	}
	now := m.now()
	query := m.search.Value()
	var lines []string
	i := 0
	for _, g := range m.deps.Recent.GroupedByType() {
		header := false
		for _, it := range g.Items {
			if !matchText(query, it.Title, it.Subtitle) {
				continue
			}
			if !header {
				lines = append(lines, m.theme.Header.Render(recent.TypeLabel(recent.Type(g.Label))))
				header = true
			}
			line := fmt.Sprintf("  %s %s", it.Title, m.theme.Dim.Render(recent.TimeAgo(it.Timestamp, now)))
			lines = append(lines, m.cursorLine(i, line))
			i++
		}
	}
	if len(lines) == 0 {
		lines = append(lines, m.theme.Dim.Render("Nothing visited yet"))
	}
	return m.panel("RECENT", width, lines)
}

func (m *Model) cursorLine(i int, line string) string {
	if i == m.cursor {
		return m.theme.Selected.Render("›") + line
	}
	return " " + line
}

func (m *Model) renderPayment(width int) string {
	if m.flow == nil {
		return m.panel("CHECKOUT", width, []string{m.theme.Dim.Render("Payments disabled")})
	}
	f := m.flow
	co := m.deps.Checkout
	lines := []string{
		fmt.Sprintf("%s  %s", co.Title, m.theme.Highlight.Render(formatAmount(co.AmountCents, co.Currency))),
		"",
	}

	switch f.Step() {
	case payment.StepProfile:
		def, _ := m.deps.Payment.DefaultMethod()
		lines = append(lines,
			"Pay with your saved method:",
			m.theme.Selected.Render("  "+def.DisplayName)+m.theme.Dim.Render(expirySuffix(def.ExpiryDate)),
			"",
			m.theme.Dim.Render("[enter] Pay • [n] Use another method"),
		)

	case payment.StepMethodSelection:
		lines = append(lines, "Choose a payment method:")
		for i, t := range payment.MethodTypes {
			lines = append(lines, fmt.Sprintf("  %s %s", m.theme.Key.Render(fmt.Sprint(i+1)), methodLabel(t)))
		}
		save := "[ ]"
		if f.SaveMethod() {
			save = "[x]"
		}
		hint := "[1-5] Select • [s] Save method " + save
		if _, ok := m.deps.Payment.DefaultMethod(); ok && m.deps.Payment.HasValidProfile() {
			hint += " • [b] Saved method"
		}
		lines = append(lines, "", m.theme.Dim.Render(hint))

	case payment.StepCardDetails:
		labels := [4]string{"Card number", "Name", "Expiry", "CVC"}
		for i := range m.card {
			label := fmt.Sprintf("%-12s", labels[i])
			if i == m.cardFocus {
				label = m.theme.Selected.Render(label)
			}
			lines = append(lines, label+" "+m.card[i].View())
		}
		if msg := f.Message(); msg != "" {
			lines = append(lines, "", m.theme.StatusWarn.Render(msg))
		}
		lines = append(lines, "", m.theme.Dim.Render("[tab] Next field • [enter] Pay • [esc] Back"))

	case payment.StepProcessing:
		lines = append(lines, m.spinner.View()+" Processing "+methodLabel(f.Selected())+"...")

	case payment.StepSuccess:
		lines = append(lines,
			m.theme.StatusOK.Render("✓ Payment successful"),
			m.theme.Dim.Render("Reference "+f.Result().Reference),
			"",
			m.theme.Dim.Render("[enter] Done"),
		)

	case payment.StepError:
		lines = append(lines,
			m.theme.StatusFailed.Render("✗ "+f.Message()),
			"",
			m.theme.Dim.Render("[enter] Try again"),
		)
	}
	return m.panel("CHECKOUT", width, lines)
}

func (m *Model) renderStatus(width int) string {
	var lines []string
	if s := m.deps.Activity; s != nil {
		lines = append(lines, fmt.Sprintf("Activity   %d/%d  unread %d", len(s.Activities(nil)), s.Capacity(), s.UnreadCount()))
	}
	if s := m.deps.Recent; s != nil {
		lines = append(lines, fmt.Sprintf("Recent     %d/%d", len(s.Items()), s.Capacity()))
	}
	if s := m.deps.Payment; s != nil {
		p := s.Profile()
		lines = append(lines, fmt.Sprintf("Payment    %d methods  %s", len(p.Methods), variantStyle(m, s.Variant())))
	}
	lines = append(lines, fmt.Sprintf("Shortcuts  %d bindings  enabled %t", len(m.keys.All()), m.keys.Enabled()))

	status := m.panel("STATUS", width, lines)
	stream := watch.RenderEventStream(m.eventLog, m.theme, width, 8)
	return lipgloss.JoinVertical(lipgloss.Left, status, stream)
}

func variantStyle(m *Model, v payment.Variant) string {
	switch v {
	case payment.VariantActive:
		return m.theme.StatusOK.Render(string(v))
	case payment.VariantExpired:
		return m.theme.StatusWarn.Render(string(v))
	case payment.VariantError:
		return m.theme.StatusFailed.Render(string(v))
	}
	return m.theme.StatusMuted.Render(string(v))
}

var methodLabels = map[payment.MethodType]string{
	payment.MethodCard:         "Credit or debit card",
	payment.MethodPayPal:       "PayPal",
	payment.MethodIDEAL:        "iDEAL",
	payment.MethodMobilePay:    "Apple Pay / Google Pay",
	payment.MethodBankTransfer: "Bank transfer",
}

func methodLabel(t payment.MethodType) string {
	if l, ok := methodLabels[t]; ok {
		return l
	}
	return string(t)
}

func expirySuffix(expiry string) string {
	if expiry == "" {
		return ""
	}
	return " · expires " + expiry
}

func formatAmount(cents int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", cents/100, cents%100, currency)
}

func matchText(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
