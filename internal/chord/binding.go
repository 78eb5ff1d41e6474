package chord

// Category groups bindings in help listings.
type Category string

const (
	CategoryNavigation Category = "navigation"
	CategoryActions    Category = "actions"
	CategoryGeneral    Category = "general"
)

var categoryOrder = []struct {
	id    Category
	label string
}{
	{CategoryNavigation, "Navigation"},
	{CategoryActions, "Actions"},
	{CategoryGeneral, "General"},
}

// Binding maps a chord token ("mod+k", "esc", "?", "g+d") to an action.
type Binding struct {
	Key         string   `json:"key"`
	Label       string   `json:"label"`
	Description string   `json:"description,omitempty"`
	Category    Category `json:"category"`
	Action      func()   `json:"-"`
	Disabled    bool     `json:"disabled,omitempty"`
}

// Group is one category of bindings.
type Group struct {
	ID       Category  `json:"id"`
	Label    string    `json:"label"`
	Bindings []Binding `json:"shortcuts"`
}
