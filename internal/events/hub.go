// Package events republishes store changes to asynchronous consumers such as
// the SSE endpoint. Store subscribers are still notified synchronously; the
// hub only carries a summary of each change to late or remote readers.
package events

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	TypeActivityChanged    = "activity.changed"
	TypeRecentChanged      = "recent.changed"
	TypePaymentChanged     = "payment.changed"
	TypeShortcutDispatched = "shortcut.dispatched"
)

type Event struct {
	ID   int64           `json:"id"`
	Type string          `json:"type"`
	At   time.Time       `json:"at"`
	Data json.RawMessage `json:"data"`
}

// Hub is an in-memory pub/sub with a ring buffer so reconnecting clients can
// catch up.
type Hub struct {
	nextID atomic.Int64
	now    func() time.Time
	logger *slog.Logger

	mu    sync.Mutex
	ring  []Event
	start int
	size  int

	subs      map[int]chan Event
	nextSubID int
}

func NewHub(capacity int, logger *slog.Logger) *Hub {
	if capacity <= 0 {
		capacity = 100
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		now:    time.Now,
		logger: logger,
		ring:   make([]Event, capacity),
		subs:   make(map[int]chan Event),
	}
}

// Publish records an event and offers it to every subscriber. Subscribers
// whose buffer is full miss the event but can replay it from the ring.
func (h *Hub) Publish(eventType string, data any) Event {
	payload := json.RawMessage("{}")
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			h.logger.Warn("event payload not encodable", "type", eventType, "error", err)
		} else {
			payload = b
		}
	}

	ev := Event{
		ID:   h.nextID.Add(1),
		Type: eventType,
		At:   h.now().UTC(),
		Data: payload,
	}

	h.mu.Lock()
	h.pushLocked(ev)
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	h.mu.Unlock()
	return ev
}

// Subscribe returns a channel of new events and a cancel func that closes it.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextSubID
	h.nextSubID++
	ch := make(chan Event, 128)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// SnapshotSince returns buffered events with ID > lastID, oldest first.
// lastID 0 returns the whole buffer.
func (h *Hub) SnapshotSince(lastID int64) []Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Event, 0, h.size)
	for i := 0; i < h.size; i++ {
		ev := h.ring[(h.start+i)%len(h.ring)]
		if lastID == 0 || ev.ID > lastID {
			out = append(out, ev)
		}
	}
	return out
}

func (h *Hub) pushLocked(ev Event) {
	capacity := len(h.ring)
	if h.size < capacity {
		h.ring[(h.start+h.size)%capacity] = ev
		h.size++
		return
	}
	h.ring[h.start] = ev
	h.start = (h.start + 1) % capacity
}
