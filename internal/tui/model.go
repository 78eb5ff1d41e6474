// Package tui is the interactive terminal front end. Every key press is fed
// through a chord dispatcher first; keys it does not consume fall through to
// the active view.
package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattjoyce/hearth/internal/activity"
	"github.com/mattjoyce/hearth/internal/chord"
	"github.com/mattjoyce/hearth/internal/events"
	"github.com/mattjoyce/hearth/internal/payment"
	"github.com/mattjoyce/hearth/internal/recent"
	"github.com/mattjoyce/hearth/internal/tui/theme"
)

const eventLogSize = 20

type view string

const (
	viewActivity view = "activity"
	viewRecent   view = "recent"
	viewPayment  view = "payment"
	viewStatus   view = "status"
)

var viewTitles = map[view]string{
	viewActivity: "Activity",
	viewRecent:   "Recent",
	viewPayment:  "Payment",
	viewStatus:   "Status",
}

// Deps are the stores and collaborators the UI drives. Hub may be nil.
type Deps struct {
	Activity *activity.Store
	Recent   *recent.Store
	Payment  *payment.ProfileStore
	Gateway  payment.Gateway
	Checkout payment.Checkout
	Hub      *events.Hub
	// Shortcuts configures the dispatcher. Now, Logger and OnDispatch are
	// filled in by New when unset.
	Shortcuts chord.Options
	Logger    *slog.Logger
}

// --- Message types ---

type hubEventMsg events.Event

type flowDoneMsg struct{ err error }

// Model is the BubbleTea model for the interactive UI.
type Model struct {
	deps   Deps
	ctx    context.Context
	logger *slog.Logger
	now    func() time.Time

	feed *chord.Feed
	keys *chord.Dispatcher

	width  int
	height int
	theme  theme.Theme

	current view
	history []view
	cursor  int

	search    textinput.Model
	searching bool
	help      help.Model
	spinner   spinner.Model

	flow      *payment.Flow
	card      [4]textinput.Model
	cardFocus int

	hubEvents <-chan events.Event
	cancelHub func()
	eventLog  []events.Event

	status   string
	quitting bool
}

// New builds the UI over deps. Call Close when the program exits.
func New(ctx context.Context, deps Deps) *Model {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Gateway == nil {
		deps.Gateway = payment.NewSimulatedGateway(-1)
	}

	m := &Model{
		deps:    deps,
		ctx:     ctx,
		logger:  logger,
		now:     time.Now,
		feed:    chord.NewFeed(),
		theme:   theme.NewDefaultTheme(),
		current: viewActivity,
		help:    help.New(),
	}

	opts := deps.Shortcuts
	if opts.Logger == nil {
		opts.Logger = logger
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return m.now() }
	}
	if opts.OnDispatch == nil && deps.Hub != nil {
		opts.OnDispatch = events.ShortcutPublisher(deps.Hub)
	}
	m.keys = chord.New(m.feed, opts)
	m.registerBindings()

	m.search = textinput.New()
	m.search.Placeholder = "Search..."
	m.search.Prompt = "/ "
	m.search.CharLimit = 64

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot
	m.spinner.Style = m.theme.StatusPending

	m.card = newCardForm()
	m.flow = m.newFlow()

	if deps.Hub != nil {
		m.hubEvents, m.cancelHub = deps.Hub.Subscribe()
	}
	return m
}

// Close detaches the dispatcher and the hub subscription.
func (m *Model) Close() {
	m.keys.Close()
	if m.cancelHub != nil {
		m.cancelHub()
	}
}

func (m *Model) newFlow() *payment.Flow {
	if m.deps.Payment == nil {
		return nil
	}
	return payment.NewFlow(m.deps.Payment, m.deps.Gateway, m.deps.Checkout,
		payment.WithLogger(m.logger.With("component", "checkout")))
}

func (m *Model) Init() tea.Cmd {
	m.recordVisit(m.current)
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.hubEvents != nil {
		cmds = append(cmds, receiveHubEvent(m.hubEvents))
	}
	return tea.Batch(cmds...)
}

// receiveHubEvent waits for the next hub event. A closed subscription ends
// the loop.
func receiveHubEvent(ch <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return hubEventMsg(ev)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case hubEventMsg:
		m.eventLog = append([]events.Event{events.Event(msg)}, m.eventLog...)
		if len(m.eventLog) > eventLogSize {
			m.eventLog = m.eventLog[:eventLogSize]
		}
		return m, receiveHubEvent(m.hubEvents)

	case flowDoneMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		}
		if m.flow != nil && m.flow.Step() == payment.StepCardDetails {
			m.focusCard(m.cardFocus)
		}
	}
	return m, nil
}

// handleKey offers the key to the dispatcher and, when it is not consumed,
// to the search box or the active view.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	m.status = ""
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return tea.Quit
	}

	ev := chord.FromTeaKey(msg, m.target())
	m.feed.Dispatch(ev)
	if ev.DefaultPrevented() || m.keys.Pending() {
		return m.focusCmd()
	}

	if m.searching {
		return m.searchKey(msg)
	}
	if m.current == viewPayment && m.flow != nil {
		return m.paymentKey(msg)
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		m.cursor++
		m.clampCursor()
	case "enter", " ":
		m.selectCurrent()
	case "x", "delete":
		m.removeCurrent()
	}
	return nil
}

// target reports what has focus, for suppression of chords while typing.
func (m *Model) target() chord.Target {
	if m.searching {
		return chord.TargetInput
	}
	if m.current == viewPayment && m.flow != nil && m.flow.Step() == payment.StepCardDetails {
		return chord.TargetInput
	}
	return chord.TargetNone
}

// focusCmd returns the blink command when an action just focused a field.
func (m *Model) focusCmd() tea.Cmd {
	if m.searching {
		return textinput.Blink
	}
	return nil
}

func (m *Model) searchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return nil
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		return nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.cursor = 0
	return cmd
}

// --- navigation ---

func (m *Model) navigate(v view) {
	if v == m.current {
		return
	}
	m.history = append(m.history, m.current)
	m.show(v)
}

func (m *Model) back() {
	if len(m.history) == 0 {
		return
	}
	prev := m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
	m.show(prev)
}

func (m *Model) show(v view) {
	m.current = v
	m.cursor = 0
	if v == viewPayment && m.flow != nil {
		switch m.flow.Step() {
		case payment.StepSuccess, payment.StepError:
			m.flow.Reset()
		}
	}
	m.recordVisit(v)
}

// recordVisit adds the page to the recent items.
func (m *Model) recordVisit(v view) {
	if m.deps.Recent == nil {
		return
	}
	m.deps.Recent.AddItem(recent.Item{
		ID:       "page-" + string(v),
		Type:     recent.TypePage,
		Title:    viewTitles[v],
		Subtitle: "Page",
		Route:    "/" + string(v),
	})
}

// --- actions bound to shortcuts ---

func (m *Model) focusSearch() {
	m.searching = true
	m.search.Focus()
}

func (m *Model) toggleHelp() {
	m.help.ShowAll = !m.help.ShowAll
}

// closeTop dismisses the innermost open surface.
func (m *Model) closeTop() {
	switch {
	case m.help.ShowAll:
		m.help.ShowAll = false
	case m.search.Value() != "":
		m.search.SetValue("")
		m.cursor = 0
	case m.current == viewPayment && m.flow != nil:
		switch m.flow.Step() {
		case payment.StepError:
			_ = m.flow.BackToMethods()
		case payment.StepSuccess:
			m.flow.Reset()
		case payment.StepMethodSelection:
			_ = m.flow.BackToProfile()
		}
	}
}

func (m *Model) markAllRead() {
	if m.deps.Activity == nil {
		return
	}
	m.deps.Activity.MarkAllAsRead()
	m.status = "All activity marked as read"
}

// --- list views ---

func (m *Model) activityFilter() *activity.Filter {
	return &activity.Filter{Text: m.search.Value()}
}

func (m *Model) visibleActivities() []activity.Activity {
	if m.deps.Activity == nil {
		return nil
	}
	return m.deps.Activity.Activities(m.activityFilter())
}

func (m *Model) visibleRecent() []recent.Item {
	if m.deps.Recent == nil {
		return nil
	}
	var out []recent.Item
	for _, g := range m.deps.Recent.GroupedByType() {
		for _, it := range g.Items {
			if matchText(m.search.Value(), it.Title, it.Subtitle) {
				out = append(out, it)
			}
		}
	}
	return out
}

func (m *Model) listLen() int {
	switch m.current {
	case viewActivity:
		return len(m.visibleActivities())
	case viewRecent:
		return len(m.visibleRecent())
	}
	return 0
}

func (m *Model) clampCursor() {
	if n := m.listLen(); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m *Model) selectCurrent() {
	switch m.current {
	case viewActivity:
		items := m.visibleActivities()
		if m.cursor < len(items) && m.deps.Activity.MarkAsRead(items[m.cursor].ID) {
			m.status = "Marked as read"
		}
	case viewRecent:
		items := m.visibleRecent()
		if m.cursor < len(items) {
			m.status = "Open " + items[m.cursor].Route
			m.deps.Recent.AddItem(items[m.cursor])
			m.cursor = 0
		}
	}
}

func (m *Model) removeCurrent() {
	if m.current != viewRecent {
		return
	}
	items := m.visibleRecent()
	if m.cursor < len(items) && m.deps.Recent.RemoveItem(items[m.cursor].ID) {
		m.status = "Removed " + items[m.cursor].Title
		m.clampCursor()
	}
}
