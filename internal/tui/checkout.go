package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattjoyce/hearth/internal/payment"
)

const (
	cardNumber = iota
	cardName
	cardExpiry
	cardCVC
)

func newCardForm() [4]textinput.Model {
	var form [4]textinput.Model
	placeholders := [4]string{"4242 4242 4242 4242", "Name on card", "MM / YY", "CVC"}
	limits := [4]int{23, 64, 7, 4}
	for i := range form {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = limits[i]
		ti.Prompt = ""
		form[i] = ti
	}
	form[cardCVC].EchoMode = textinput.EchoPassword
	form[cardCVC].EchoCharacter = '•'
	return form
}

func (m *Model) focusCard(i int) tea.Cmd {
	m.cardFocus = i
	for j := range m.card {
		if j == i {
			m.card[j].Focus()
		} else {
			m.card[j].Blur()
		}
	}
	return textinput.Blink
}

func (m *Model) cardDetails() payment.CardDetails {
	return payment.CardDetails{
		Number: m.card[cardNumber].Value(),
		Name:   m.card[cardName].Value(),
		Expiry: m.card[cardExpiry].Value(),
		CVC:    m.card[cardCVC].Value(),
	}
}

func (m *Model) resetCard() {
	m.card = newCardForm()
	m.cardFocus = cardNumber
}

// runFlow runs a flow operation off the update loop; processing blocks for
// the gateway call.
func (m *Model) runFlow(op func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return flowDoneMsg{err: op(ctx)}
	})
}

func (m *Model) paymentKey(msg tea.KeyMsg) tea.Cmd {
	f := m.flow
	key := msg.String()

	switch f.Step() {
	case payment.StepProfile:
		switch key {
		case "enter":
			return m.runFlow(f.PayWithSaved)
		case "n":
			_ = f.AddNewMethod()
		}

	case payment.StepMethodSelection:
		switch key {
		case "1", "2", "3", "4", "5":
			t := payment.MethodTypes[int(key[0]-'1')]
			if t == payment.MethodCard {
				if err := f.SelectMethod(m.ctx, t); err == nil {
					m.resetCard()
					return m.focusCard(cardNumber)
				}
				return nil
			}
			return m.runFlow(func(ctx context.Context) error { return f.SelectMethod(ctx, t) })
		case "s":
			f.SetSaveMethod(!f.SaveMethod())
		case "b":
			_ = f.BackToProfile()
		case "q":
			m.quitting = true
			return tea.Quit
		}

	case payment.StepCardDetails:
		switch msg.Type {
		case tea.KeyTab, tea.KeyDown:
			return m.focusCard((m.cardFocus + 1) % len(m.card))
		case tea.KeyShiftTab, tea.KeyUp:
			return m.focusCard((m.cardFocus + len(m.card) - 1) % len(m.card))
		case tea.KeyEsc:
			for i := range m.card {
				m.card[i].Blur()
			}
			_ = f.BackToMethods()
			return nil
		case tea.KeyEnter:
			if m.cardFocus < cardCVC {
				return m.focusCard(m.cardFocus + 1)
			}
			card := m.cardDetails()
			return m.runFlow(func(ctx context.Context) error { return f.SubmitCard(ctx, card) })
		}
		var cmd tea.Cmd
		m.card[m.cardFocus], cmd = m.card[m.cardFocus].Update(msg)
		if m.cardFocus == cardExpiry {
			m.card[cardExpiry].SetValue(formatExpiry(m.card[cardExpiry].Value()))
			m.card[cardExpiry].CursorEnd()
		}
		return cmd

	case payment.StepSuccess:
		switch key {
		case "enter":
			m.resetCard()
			f.Reset()
		case "q":
			m.quitting = true
			return tea.Quit
		}

	case payment.StepError:
		switch key {
		case "enter", "r":
			_ = f.BackToMethods()
		case "q":
			m.quitting = true
			return tea.Quit
		}
	}
	return nil
}

// formatExpiry renders typed digits as "MM / YY".
func formatExpiry(s string) string {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' && digits.Len() < 4 {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) <= 2 {
		return d
	}
	return d[:2] + " / " + d[2:]
}
