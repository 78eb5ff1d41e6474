package events

import (
	"github.com/mattjoyce/hearth/internal/activity"
	"github.com/mattjoyce/hearth/internal/chord"
	"github.com/mattjoyce/hearth/internal/payment"
	"github.com/mattjoyce/hearth/internal/recent"
)

// ActivityChange summarizes the feed after a change.
type ActivityChange struct {
	Count  int    `json:"count"`
	Unread int    `json:"unread"`
	Latest string `json:"latest,omitempty"`
}

// RecentChange summarizes the recent items after a change.
type RecentChange struct {
	Count int      `json:"count"`
	IDs   []string `json:"ids"`
}

// PaymentChange summarizes the profile after a change.
type PaymentChange struct {
	Methods    int             `json:"methods"`
	HasProfile bool            `json:"hasProfile"`
	Variant    payment.Variant `json:"variant"`
}

// ShortcutDispatch names the binding that ran.
type ShortcutDispatch struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Stores are the stores bridged onto a hub. Nil stores are skipped.
type Stores struct {
	Activity *activity.Store
	Recent   *recent.Store
	Payment  *payment.ProfileStore
}

// Bridge subscribes to every store and republishes a summary of each change.
// The returned func removes the subscriptions.
func Bridge(h *Hub, s Stores) func() {
	var cancels []func()
	if s.Activity != nil {
		cancels = append(cancels, s.Activity.Subscribe(func(items []activity.Activity) {
			ch := ActivityChange{Count: len(items)}
			for _, a := range items {
				if !a.IsRead {
					ch.Unread++
				}
			}
			if len(items) > 0 {
				ch.Latest = items[0].ID
			}
			h.Publish(TypeActivityChanged, ch)
		}))
	}
	if s.Recent != nil {
		cancels = append(cancels, s.Recent.Subscribe(func(items []recent.Item) {
			ch := RecentChange{Count: len(items), IDs: make([]string, 0, len(items))}
			for _, it := range items {
				ch.IDs = append(ch.IDs, it.ID)
			}
			h.Publish(TypeRecentChanged, ch)
		}))
	}
	if s.Payment != nil {
		cancels = append(cancels, s.Payment.Subscribe(func(prof payment.Profile) {
			h.Publish(TypePaymentChanged, PaymentChange{
				Methods:    len(prof.Methods),
				HasProfile: prof.HasProfile,
				Variant:    prof.Variant(),
			})
		}))
	}
	return func() {
		for _, c := range cancels {
			c()
		}
	}
}

// ShortcutPublisher returns a chord dispatch hook that publishes each
// dispatched binding.
func ShortcutPublisher(h *Hub) func(chord.Binding) {
	return func(b chord.Binding) {
		h.Publish(TypeShortcutDispatched, ShortcutDispatch{Key: b.Key, Label: b.Label})
	}
}
