// Package watch is a read-only terminal monitor for a running `hearth serve`.
// It follows the SSE event stream and polls /healthz.
package watch

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattjoyce/hearth/internal/events"
	"github.com/mattjoyce/hearth/internal/tui/theme"
)

const eventLogSize = 50

// Model is the BubbleTea model for the watch TUI.
type Model struct {
	apiURL string
	apiKey string

	width  int
	height int

	health   HealthState
	eventLog []events.Event
	lastID   int64
	counts   map[string]int

	ticker  Ticker
	spinner Spinner
	now     func() time.Time

	theme theme.Theme

	hubEvents chan events.Event

	lastError string
}

// New creates a new watch TUI model.
func New(apiURL, apiKey string) *Model {
	return &Model{
		apiURL:    apiURL,
		apiKey:    apiKey,
		eventLog:  make([]events.Event, 0),
		counts:    make(map[string]int),
		hubEvents: make(chan events.Event, 100),
		ticker:    NewTicker(),
		spinner:   NewSpinner(),
		now:       time.Now,
		theme:     theme.NewDefaultTheme(),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		subscribeToEvents(m.apiURL, m.apiKey, 0, m.hubEvents),
		receiveNextEvent(m.hubEvents),
		func() tea.Msg { return fetchHealth(m.apiURL, m.apiKey) },
		tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) }),
		tea.EnterAltScreen,
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "c":
			m.eventLog = m.eventLog[:0]
			clear(m.counts)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.ticker.Tick()
		m.spinner.Decay(m.now())
		return m, tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })

	case eventMsg:
		m.record(events.Event(msg))
		return m, receiveNextEvent(m.hubEvents)

	case healthMsg:
		m.health.Status = msg.Status
		m.health.UptimeSeconds = msg.UptimeSeconds
		m.health.Activities = msg.Activities
		m.health.Unread = msg.Unread
		m.health.RecentItems = msg.RecentItems
		m.health.PaymentVariant = msg.PaymentVariant
		m.health.Connected = true
		m.health.LastCheck = m.now()
		m.lastError = ""

		return m, tea.Tick(5*time.Second, func(t time.Time) tea.Msg {
			return fetchHealth(m.apiURL, m.apiKey)
		})

	case sseDisconnectedMsg:
		m.health.Connected = false
		m.lastError = "SSE disconnected, reconnecting..."
		// The pending receiveNextEvent keeps waiting on the channel and
		// picks up events from the new subscription.
		return m, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return reconnectMsg{}
		})

	case reconnectMsg:
		return m, subscribeToEvents(m.apiURL, m.apiKey, m.lastID, m.hubEvents)

	case errMsg:
		m.lastError = msg.Error()
		return m, tea.Tick(5*time.Second, func(t time.Time) tea.Msg {
			return fetchHealth(m.apiURL, m.apiKey)
		})
	}

	return m, nil
}

// record applies an event to the log and to the health counters it carries.
func (m *Model) record(e events.Event) {
	if e.ID > 0 && e.ID <= m.lastID {
		return
	}
	if e.ID > m.lastID {
		m.lastID = e.ID
	}

	m.eventLog = append([]events.Event{e}, m.eventLog...)
	if len(m.eventLog) > eventLogSize {
		m.eventLog = m.eventLog[:eventLogSize]
	}
	m.counts[e.Type]++
	m.spinner.OnEvent(m.now())

	applyEvent(&m.health, e)
	m.health.Connected = true
	m.lastError = ""
}

func (m *Model) View() string {
	if m.width == 0 {
		return "Connecting to hearth..."
	}

	now := m.now()
	header := renderHeader(m.health, m.ticker, m.spinner, m.theme, m.width, now)
	totals := m.renderCounts()
	eventStream := RenderEventStream(m.eventLog, m.theme, m.width, 10)

	var errBar string
	if m.lastError != "" {
		errBar = m.theme.StatusFailed.Render(fmt.Sprintf(" ⚠ %s", m.lastError))
	}

	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Render(" [q] Quit • [c] Clear log")

	parts := []string{header, totals, eventStream}
	if errBar != "" {
		parts = append(parts, errBar)
	}
	parts = append(parts, help)

	return lipgloss.NewStyle().Margin(1, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...),
	)
}

func (m *Model) renderCounts() string {
	line := fmt.Sprintf(" activity %d • recent %d • payment %d • shortcuts %d",
		m.counts[events.TypeActivityChanged],
		m.counts[events.TypeRecentChanged],
		m.counts[events.TypePaymentChanged],
		m.counts[events.TypeShortcutDispatched],
	)
	return m.theme.Dim.Render(line)
}
