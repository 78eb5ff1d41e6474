package tui

import "github.com/mattjoyce/hearth/internal/chord"

type shortcut struct {
	binding chord.Binding
	action  func(m *Model)
}

var shortcuts = []shortcut{
	{chord.Binding{Key: "g+d", Label: "Activity", Description: "Go to the activity feed", Category: chord.CategoryNavigation},
		func(m *Model) { m.navigate(viewActivity) }},
	{chord.Binding{Key: "g+r", Label: "Recent", Description: "Go to recently visited items", Category: chord.CategoryNavigation},
		func(m *Model) { m.navigate(viewRecent) }},
	{chord.Binding{Key: "g+p", Label: "Payment", Description: "Go to checkout", Category: chord.CategoryNavigation},
		func(m *Model) { m.navigate(viewPayment) }},
	{chord.Binding{Key: "g+s", Label: "Status", Description: "Go to status and settings", Category: chord.CategoryNavigation},
		func(m *Model) { m.navigate(viewStatus) }},
	{chord.Binding{Key: "g+b", Label: "Back", Description: "Return to the previous view", Category: chord.CategoryNavigation},
		(*Model).back},
	{chord.Binding{Key: "mod+r", Label: "Mark all read", Description: "Mark every activity as read", Category: chord.CategoryActions},
		(*Model).markAllRead},
	{chord.Binding{Key: "mod+k", Label: "Search", Description: "Focus the search box", Category: chord.CategoryGeneral},
		(*Model).focusSearch},
	{chord.Binding{Key: "?", Label: "Help", Description: "Toggle the shortcut overlay", Category: chord.CategoryGeneral},
		(*Model).toggleHelp},
	{chord.Binding{Key: "mod+/", Label: "Help", Description: "Toggle the shortcut overlay", Category: chord.CategoryGeneral},
		(*Model).toggleHelp},
	{chord.Binding{Key: "esc", Label: "Close", Description: "Close the open overlay", Category: chord.CategoryGeneral},
		(*Model).closeTop},
}

func (m *Model) registerBindings() {
	bs := make([]chord.Binding, 0, len(shortcuts))
	for _, s := range shortcuts {
		b := s.binding
		action := s.action
		b.Action = func() { action(m) }
		bs = append(bs, b)
	}
	m.keys.RegisterMultiple(bs)
}

// ShortcutCatalog returns the UI's bindings without actions, for listings
// outside the terminal UI.
func ShortcutCatalog() []chord.Binding {
	bs := make([]chord.Binding, 0, len(shortcuts))
	for _, s := range shortcuts {
		bs = append(bs, s.binding)
	}
	return bs
}
