package store

import (
	"fmt"
	"time"
)

const (
	labelToday     = "Today"
	labelYesterday = "Yesterday"
	week           = 7 * 24 * time.Hour
)

// DateLabel names the calendar day of ts as seen from now, in now's location:
// "Today", "Yesterday", the weekday name for days within the last week, and
// "Jan 2, 2006" otherwise.
func DateLabel(ts, now time.Time) string {
	loc := now.Location()
	ts = ts.In(loc)
	today := startOfDay(now)
	day := startOfDay(ts)

	switch {
	case day.Equal(today):
		return labelToday
	case day.Equal(today.AddDate(0, 0, -1)):
		return labelYesterday
	case now.Sub(day) < week:
		return ts.Weekday().String()
	default:
		return ts.Format("Jan 2, 2006")
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// TimeAgo renders a compact relative age: "Just now", "5m ago", "3h ago",
// "2d ago", "4w ago".
func TimeAgo(ts, now time.Time) string {
	secs := int64(now.Sub(ts) / time.Second)
	switch {
	case secs < 60:
		return "Just now"
	case secs < 3600:
		return fmt.Sprintf("%dm ago", secs/60)
	case secs < 86400:
		return fmt.Sprintf("%dh ago", secs/3600)
	case secs < 604800:
		return fmt.Sprintf("%dd ago", secs/86400)
	default:
		return fmt.Sprintf("%dw ago", secs/604800)
	}
}
