package watch

import (
	"encoding/json"

	"github.com/mattjoyce/hearth/internal/events"
)

// applyEvent updates the header counters from a change summary so they stay
// current between health polls.
func applyEvent(h *HealthState, e events.Event) {
	switch e.Type {
	case events.TypeActivityChanged:
		var c events.ActivityChange
		if json.Unmarshal(e.Data, &c) == nil {
			h.Activities, h.Unread = c.Count, c.Unread
		}
	case events.TypeRecentChanged:
		var c events.RecentChange
		if json.Unmarshal(e.Data, &c) == nil {
			h.RecentItems = c.Count
		}
	case events.TypePaymentChanged:
		var c events.PaymentChange
		if json.Unmarshal(e.Data, &c) == nil {
			h.PaymentVariant = string(c.Variant)
		}
	}
}
