package watch

import (
	"strings"
	"time"

	"github.com/mattjoyce/hearth/internal/tui/theme"
)

// Ticker rotates through frames to show the monitor is alive.
// A frozen frame means ticks stopped arriving.
type Ticker struct {
	frames []string
	index  int
}

func NewTicker() Ticker {
	return Ticker{frames: []string{"⟲", "⟳"}}
}

func (t *Ticker) Tick() {
	t.index = (t.index + 1) % len(t.frames)
}

func (t Ticker) Current() string {
	return t.frames[t.index]
}

// Spinner lights up on events and fades over the following ten seconds.
type Spinner struct {
	dots      int
	lastEvent time.Time
}

func NewSpinner() Spinner {
	return Spinner{}
}

func (s *Spinner) OnEvent(now time.Time) {
	s.dots = 5
	s.lastEvent = now
}

// Decay drops one dot per two seconds since the last event.
func (s *Spinner) Decay(now time.Time) {
	if s.dots == 0 {
		return
	}
	elapsed := now.Sub(s.lastEvent)
	s.dots = min(s.dots, max(0, 5-int(elapsed/(2*time.Second))))
}

func (s Spinner) Dots() int {
	return s.dots
}

func (s Spinner) Render(th theme.Theme) string {
	var result strings.Builder
	for i := range 5 {
		if i < s.dots {
			result.WriteString(th.TickerActive.Render("●"))
		} else {
			result.WriteString(th.TickerInactive.Render("○"))
		}
	}
	return result.String()
}

func (s Spinner) LastEvent() time.Time {
	return s.lastEvent
}
