package store

import "sync"

// Listener receives a snapshot of a store after each mutation.
type Listener[S any] func(snapshot S)

// Notifier fans a snapshot out to listeners synchronously, in registration
// order, on the caller's goroutine.
type Notifier[S any] struct {
	mu     sync.Mutex
	nextID int
	subs   []subscription[S]
}

type subscription[S any] struct {
	id int
	fn Listener[S]
}

// Subscribe registers fn and returns a func that removes it. Calling the
// returned func more than once is harmless.
func (n *Notifier[S]) Subscribe(fn Listener[S]) func() {
	if fn == nil {
		return func() {}
	}
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subs = append(n.subs, subscription[S]{id: id, fn: fn})
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, s := range n.subs {
			if s.id == id {
				n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
				return
			}
		}
	}
}

// Notify delivers snapshot to every listener registered at call time.
// Listeners may subscribe, unsubscribe or read the store while being notified.
func (n *Notifier[S]) Notify(snapshot S) {
	n.mu.Lock()
	subs := make([]subscription[S], len(n.subs))
	copy(subs, n.subs)
	n.mu.Unlock()

	for _, s := range subs {
		s.fn(snapshot)
	}
}

// Len reports the number of registered listeners.
func (n *Notifier[S]) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}
