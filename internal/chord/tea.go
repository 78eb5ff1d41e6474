package chord

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// FromTeaKey converts a bubbletea key message into a KeyEvent aimed at target.
func FromTeaKey(msg tea.KeyMsg, target Target) *KeyEvent {
	ev := &KeyEvent{Target: target}
	switch msg.Type {
	case tea.KeyEsc:
		ev.Key = "escape"
		return ev
	case tea.KeyRunes:
		ev.Key = string(msg.Runes)
		return ev
	case tea.KeySpace:
		ev.Key = " "
		return ev
	}
	s := msg.String()
	if rest, ok := strings.CutPrefix(s, "alt+"); ok {
		s = rest
	}
	if rest, ok := strings.CutPrefix(s, "ctrl+"); ok {
		ev.Ctrl = true
		// Terminals report ctrl+/ as ctrl+_.
		if rest == "_" {
			rest = "/"
		}
		s = rest
	}
	ev.Key = s
	return ev
}

// HelpBindings returns the enabled bindings of category c as bubbles key
// bindings for a help view.
func (d *Dispatcher) HelpBindings(c Category) []key.Binding {
	var out []key.Binding
	for _, b := range d.All() {
		if b.Category != c || b.Disabled {
			continue
		}
		out = append(out, key.NewBinding(
			key.WithKeys(teaKeys(b.Key)...),
			key.WithHelp(d.FormatKey(b.Key), b.Label),
		))
	}
	return out
}

// KeyMap adapts the dispatcher to bubbles/help.
type KeyMap struct {
	D *Dispatcher
}

func (k KeyMap) ShortHelp() []key.Binding {
	var out []key.Binding
	for _, b := range k.D.All() {
		if b.Disabled {
			continue
		}
		out = append(out, key.NewBinding(key.WithKeys(teaKeys(b.Key)...), key.WithHelp(k.D.FormatKey(b.Key), b.Label)))
	}
	return out
}

func (k KeyMap) FullHelp() [][]key.Binding {
	var out [][]key.Binding
	for _, c := range categoryOrder {
		if bs := k.D.HelpBindings(c.id); len(bs) > 0 {
			out = append(out, bs)
		}
	}
	return out
}

func teaKeys(token string) []string {
	if rest, ok := strings.CutPrefix(token, "mod+"); ok {
		return []string{"ctrl+" + rest}
	}
	if token == "esc" {
		return []string{"esc"}
	}
	return []string{strings.ReplaceAll(token, "+", " ")}
}
