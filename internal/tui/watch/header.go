package watch

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattjoyce/hearth/internal/tui/theme"
)

// HealthState tracks server health from /healthz polling.
type HealthState struct {
	Status         string
	UptimeSeconds  int64
	Activities     int
	Unread         int
	RecentItems    int
	PaymentVariant string
	Connected      bool
	LastCheck      time.Time
}

func renderHeader(health HealthState, ticker Ticker, spinner Spinner, th theme.Theme, width int, now time.Time) string {
	innerWidth := width - 4

	statusText := th.StatusOK.Render("HEALTHY")
	statusIcon := "✅"
	if !health.Connected {
		statusText = th.StatusFailed.Render("CONNECTING")
		statusIcon = "🔌"
	} else if health.Status != "ok" && health.Status != "" {
		statusText = th.StatusFailed.Render("DEGRADED")
		statusIcon = "⚠️"
	}

	uptimeStr := formatDuration(time.Duration(health.UptimeSeconds) * time.Second)

	lastEventStr := "never"
	if !spinner.LastEvent().IsZero() {
		ago := now.Sub(spinner.LastEvent()).Round(time.Second)
		lastEventStr = fmt.Sprintf("%s ago", ago)
	}

	tickerStr := th.Highlight.Render(ticker.Current())
	clock := th.Dim.Render(now.Format("15:04:05"))
	titleText := fmt.Sprintf(" HEARTH WATCH %s", tickerStr)

	titleWidth := lipgloss.Width(titleText)
	clockWidth := lipgloss.Width(clock)
	pad := max(innerWidth-titleWidth-clockWidth-4, 1)
	titleLine := titleText + strings.Repeat(" ", pad) + clock + " "

	variant := health.PaymentVariant
	if variant == "" {
		variant = "-"
	}
	statsLine := fmt.Sprintf(" %s %s  ⏱ %s  Activity: %d (%s unread)  Recent: %d  Payment: %s",
		statusIcon, statusText,
		uptimeStr,
		health.Activities,
		th.Unread.Render(fmt.Sprint(health.Unread)),
		health.RecentItems,
		variant,
	)

	activityLine := fmt.Sprintf(" Last event: %s %s",
		lastEventStr,
		spinner.Render(th),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleLine,
		statsLine,
		activityLine,
	)

	return th.Border.Width(innerWidth).Render(content)
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
