package watch

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattjoyce/hearth/internal/events"
	"github.com/mattjoyce/hearth/internal/tui/theme"
)

// RenderEventStream draws the newest events first inside a bordered panel.
func RenderEventStream(eventLog []events.Event, th theme.Theme, width, limit int) string {
	innerWidth := width - 4

	if len(eventLog) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			th.Title.Render("EVENT STREAM"),
			th.Dim.Render("  Waiting for events..."),
		)
		return th.Border.Width(innerWidth).Render(content)
	}

	var lines []string
	for i, e := range eventLog {
		if i >= limit {
			break
		}
		lines = append(lines, formatEvent(e, th))
	}

	eventsText := lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines, "\n"))
	content := lipgloss.JoinVertical(lipgloss.Left,
		th.Title.Render("EVENT STREAM"),
		eventsText,
	)

	return th.Border.Width(innerWidth).Render(content)
}

func formatEvent(e events.Event, th theme.Theme) string {
	ts := th.Dim.Render(e.At.Local().Format("15:04:05"))

	var typeStyle lipgloss.Style
	switch e.Type {
	case events.TypeActivityChanged:
		typeStyle = th.StatusPending
	case events.TypeRecentChanged:
		typeStyle = th.Dim
	case events.TypePaymentChanged:
		typeStyle = th.StatusOK
		if strings.Contains(string(e.Data), `"error"`) || strings.Contains(string(e.Data), `"expired"`) {
			typeStyle = th.StatusFailed
		}
	case events.TypeShortcutDispatched:
		typeStyle = th.Highlight
	default:
		typeStyle = th.Dim
	}

	typeName := typeStyle.Render(fmt.Sprintf("%-20s", e.Type))
	return fmt.Sprintf("%s %s %s", ts, typeName, DescribeEvent(e))
}

// DescribeEvent returns a one-line summary of an event payload.
func DescribeEvent(e events.Event) string {
	switch e.Type {
	case events.TypeActivityChanged:
		var c events.ActivityChange
		if json.Unmarshal(e.Data, &c) == nil {
			return fmt.Sprintf("%d items, %d unread", c.Count, c.Unread)
		}
	case events.TypeRecentChanged:
		var c events.RecentChange
		if json.Unmarshal(e.Data, &c) == nil {
			if len(c.IDs) > 0 {
				return fmt.Sprintf("%d items, latest %s", c.Count, c.IDs[0])
			}
			return fmt.Sprintf("%d items", c.Count)
		}
	case events.TypePaymentChanged:
		var c events.PaymentChange
		if json.Unmarshal(e.Data, &c) == nil {
			return fmt.Sprintf("%d methods [%s]", c.Methods, c.Variant)
		}
	case events.TypeShortcutDispatched:
		var c events.ShortcutDispatch
		if json.Unmarshal(e.Data, &c) == nil {
			return fmt.Sprintf("%s %s", c.Key, c.Label)
		}
	}

	raw := string(e.Data)
	if len(raw) > 60 {
		raw = raw[:60] + "..."
	}
	return raw
}
