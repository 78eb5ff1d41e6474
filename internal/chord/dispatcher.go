// Package chord routes key presses to registered actions.
//
// A Dispatcher attaches a single listener to its Source. Each event is
// normalized to a chord token: "mod+<key>" when Ctrl or Meta is held, "esc"
// for escape, otherwise the lower-cased key. A leader key ("g") arms a
// two-key sequence that must complete before a deadline. While focus is on
// a text-entry surface only always-on chords dispatch and the leader is
// never armed.
package chord

import (
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"
)

const (
	DefaultLeaderKey     = "g"
	DefaultLeaderTimeout = 1000 * time.Millisecond
)

var (
	DefaultSequenceKeys = []string{"d", "b", "r", "p", "s"}
	DefaultAlwaysOn     = []string{"mod+k"}
)

// Options configures a Dispatcher. Zero values take the defaults.
type Options struct {
	LeaderKey     string
	LeaderTimeout time.Duration
	SequenceKeys  []string
	// AlwaysOn chords still dispatch while typing.
	AlwaysOn []string
	// Platform selects the modifier glyph in FormatKey. Defaults to runtime.GOOS.
	Platform string
	Now      func() time.Time
	Logger   *slog.Logger
	// OnDispatch is called after an action ran.
	OnDispatch func(b Binding)
}

// Dispatcher maps chord tokens to bindings.
type Dispatcher struct {
	opts   Options
	remove func()
	once   sync.Once

	mu       sync.Mutex
	bindings map[string]Binding
	order    []string
	enabled  bool
	armed    bool
	deadline time.Time
}

// New attaches a dispatcher to src. Close detaches it.
func New(src Source, opts Options) *Dispatcher {
	if opts.LeaderKey == "" {
		opts.LeaderKey = DefaultLeaderKey
	}
	if opts.LeaderTimeout <= 0 {
		opts.LeaderTimeout = DefaultLeaderTimeout
	}
	if opts.SequenceKeys == nil {
		opts.SequenceKeys = DefaultSequenceKeys
	}
	if opts.AlwaysOn == nil {
		opts.AlwaysOn = DefaultAlwaysOn
	}
	if opts.Platform == "" {
		opts.Platform = runtime.GOOS
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	d := &Dispatcher{
		opts:     opts,
		bindings: make(map[string]Binding),
		enabled:  true,
	}
	d.remove = src.Listen(d.handle)
	return d
}

// Close detaches the dispatcher from its source.
func (d *Dispatcher) Close() {
	d.once.Do(d.remove)
}

// Register adds b. A binding already registered under the same key is
// replaced and keeps its listing position.
func (d *Dispatcher) Register(b Binding) {
	b.Key = normalizeToken(b.Key)
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.bindings[b.Key]; exists {
		d.opts.Logger.Debug("shortcut overwritten", "key", b.Key, "label", b.Label)
	} else {
		d.order = append(d.order, b.Key)
	}
	d.bindings[b.Key] = b
}

// RegisterMultiple registers each binding in order.
func (d *Dispatcher) RegisterMultiple(bs []Binding) {
	for _, b := range bs {
		d.Register(b)
	}
}

// Unregister removes the binding for key.
func (d *Dispatcher) Unregister(key string) {
	key = normalizeToken(key)
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.bindings[key]; !ok {
		return
	}
	delete(d.bindings, key)
	d.order = slices.DeleteFunc(d.order, func(k string) bool { return k == key })
}

// Has reports whether key is bound.
func (d *Dispatcher) Has(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.bindings[normalizeToken(key)]
	return ok
}

// Clear removes every binding.
func (d *Dispatcher) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bindings = make(map[string]Binding)
	d.order = nil
	d.armed = false
}

// All returns every binding in registration order.
func (d *Dispatcher) All() []Binding {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Binding, 0, len(d.order))
	for _, k := range d.order {
		out = append(out, d.bindings[k])
	}
	return out
}

// ByCategory returns the non-empty categories in navigation, actions,
// general order.
func (d *Dispatcher) ByCategory() []Group {
	all := d.All()
	var groups []Group
	for _, c := range categoryOrder {
		g := Group{ID: c.id, Label: c.label}
		for _, b := range all {
			if b.Category == c.id {
				g.Bindings = append(g.Bindings, b)
			}
		}
		if len(g.Bindings) > 0 {
			groups = append(groups, g)
		}
	}
	return groups
}

// SetEnabled gates all dispatch. Bindings are kept.
func (d *Dispatcher) SetEnabled(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enabled = enabled
	if !enabled {
		d.armed = false
	}
}

// Enabled reports whether dispatch is on.
func (d *Dispatcher) Enabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enabled
}

// Pending reports whether the leader key is armed and its deadline has not
// passed.
func (d *Dispatcher) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.armed && d.opts.Now().Before(d.deadline)
}

// FormatKey renders key for display, e.g. "mod+k" as "⌘ K" on darwin and
// "Ctrl K" elsewhere, "g+d" as "G D".
func (d *Dispatcher) FormatKey(key string) string {
	return FormatKey(d.opts.Platform, key)
}

// FormatKey renders key for display on platform.
func FormatKey(platform, key string) string {
	parts := strings.Split(normalizeToken(key), "+")
	for i, p := range parts {
		switch p {
		case "mod":
			if platform == "darwin" {
				parts[i] = "⌘"
			} else {
				parts[i] = "Ctrl"
			}
		case "esc":
			parts[i] = "Esc"
		case "":
			parts[i] = "+"
		default:
			parts[i] = strings.ToUpper(p)
		}
	}
	return strings.Join(parts, " ")
}

func (d *Dispatcher) handle(ev *KeyEvent) {
	key := normalizeKey(ev.Key)
	if key == "" {
		return
	}
	mod := ev.Ctrl || ev.Meta

	d.mu.Lock()
	if !d.enabled {
		d.mu.Unlock()
		return
	}

	var token string
	switch {
	case ev.Target.IsTextEntry():
		d.armed = false
		token = key
		if mod {
			token = "mod+" + key
		}
		if !slices.Contains(d.opts.AlwaysOn, token) {
			d.mu.Unlock()
			return
		}
	case mod:
		d.armed = false
		token = "mod+" + key
	case key == "esc":
		d.armed = false
		token = key
	default:
		token = d.advanceLocked(key)
	}

	b, ok := d.bindings[token]
	d.mu.Unlock()
	if token == "" || !ok || b.Disabled || b.Action == nil {
		return
	}

	ev.PreventDefault()
	ev.StopPropagation()
	b.Action()
	if d.opts.OnDispatch != nil {
		d.opts.OnDispatch(b)
	}
}

// advanceLocked steps the leader state machine for an unmodified key and
// returns the token to dispatch, or "" when the key only armed the leader.
func (d *Dispatcher) advanceLocked(key string) string {
	now := d.opts.Now()
	if d.armed {
		d.armed = false
		if now.Before(d.deadline) && slices.Contains(d.opts.SequenceKeys, key) {
			return d.opts.LeaderKey + "+" + key
		}
	}
	if key == d.opts.LeaderKey {
		d.armed = true
		d.deadline = now.Add(d.opts.LeaderTimeout)
		return ""
	}
	return key
}

func normalizeKey(k string) string {
	if k == " " {
		return "space"
	}
	k = strings.ToLower(strings.TrimSpace(k))
	switch k {
	case "escape":
		return "esc"
	case "control", "shift", "meta", "alt":
		return ""
	}
	return k
}

func normalizeToken(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.ReplaceAll(key, "cmd+", "mod+")
	key = strings.ReplaceAll(key, "ctrl+", "mod+")
	if key == "escape" {
		return "esc"
	}
	return key
}
