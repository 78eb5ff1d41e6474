package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateLabel(t *testing.T) {
	// Tuesday.
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		ts   time.Time
		want string
	}{
		{"earlier today", now.Add(-9 * time.Hour), "Today"},
		{"just before midnight yesterday", time.Date(2026, 3, 9, 23, 59, 0, 0, time.UTC), "Yesterday"},
		{"three days ago", now.AddDate(0, 0, -3), "Saturday"},
		{"six days ago", now.AddDate(0, 0, -6), "Wednesday"},
		{"seven days ago", now.AddDate(0, 0, -7), "Mar 3, 2026"},
		{"last year", time.Date(2025, 12, 24, 8, 0, 0, 0, time.UTC), "Dec 24, 2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DateLabel(tt.ts, now))
		})
	}
}

func TestDateLabelUsesNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, loc)
	// 22:00 UTC on the 9th is 08:00 on the 10th in UTC+10.
	ts := time.Date(2026, 3, 9, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, "Today", DateLabel(ts, now))
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "Just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{2 * 24 * time.Hour, "2d ago"},
		{29 * 24 * time.Hour, "4w ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TimeAgo(now.Add(-tt.ago), now), tt.ago.String())
	}
}
