package chord

import "sync"

// Target is the kind of surface holding focus when a key is pressed.
type Target int

const (
	TargetNone Target = iota
	TargetInput
	TargetTextArea
	TargetContentEditable
)

// IsTextEntry reports whether typing into t produces text.
func (t Target) IsTextEntry() bool {
	return t == TargetInput || t == TargetTextArea || t == TargetContentEditable
}

// KeyEvent is a raw key press. Ctrl and Meta are both treated as the
// platform modifier.
type KeyEvent struct {
	Key    string
	Ctrl   bool
	Meta   bool
	Target Target

	prevented bool
	stopped   bool
}

// PreventDefault marks the event as consumed.
func (e *KeyEvent) PreventDefault() { e.prevented = true }

// StopPropagation stops further handlers from seeing the event.
func (e *KeyEvent) StopPropagation() { e.stopped = true }

// DefaultPrevented reports whether a handler consumed the event.
func (e *KeyEvent) DefaultPrevented() bool { return e.prevented }

// PropagationStopped reports whether propagation was stopped.
func (e *KeyEvent) PropagationStopped() bool { return e.stopped }

// Source delivers key events to listeners.
type Source interface {
	// Listen registers fn and returns a func that removes it.
	Listen(fn func(*KeyEvent)) (remove func())
}

// Feed is a Source driven by the caller, e.g. a terminal UI's update loop.
type Feed struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]func(*KeyEvent)
	order     []int
}

// NewFeed returns an empty feed.
func NewFeed() *Feed {
	return &Feed{listeners: make(map[int]func(*KeyEvent))}
}

func (f *Feed) Listen(fn func(*KeyEvent)) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	f.order = append(f.order, id)
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.listeners[id]; !ok {
			return
		}
		delete(f.listeners, id)
		for i, v := range f.order {
			if v == id {
				f.order = append(f.order[:i:i], f.order[i+1:]...)
				break
			}
		}
	}
}

// Dispatch hands ev to every listener in registration order until one stops
// propagation.
func (f *Feed) Dispatch(ev *KeyEvent) {
	f.mu.Lock()
	fns := make([]func(*KeyEvent), 0, len(f.order))
	for _, id := range f.order {
		fns = append(fns, f.listeners[id])
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
		if ev.PropagationStopped() {
			return
		}
	}
}

// Len reports the number of listeners.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.order)
}
