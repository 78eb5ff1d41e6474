package recent

import "time"

// Type is the kind of entity an item points at.
type Type string

const (
	TypeBrandAsset     Type = "brand-asset"
	TypePersona        Type = "persona"
	TypeResearchPlan   Type = "research-plan"
	TypeResearchMethod Type = "research-method"
	TypeStrategyTool   Type = "strategy-tool"
	TypeProduct        Type = "product"
	TypeTrend          Type = "trend"
	TypeKnowledge      Type = "knowledge"
	TypePage           Type = "page"
)

// Types lists every item type.
var Types = []Type{
	TypeBrandAsset,
	TypePersona,
	TypeResearchPlan,
	TypeResearchMethod,
	TypeStrategyTool,
	TypeProduct,
	TypeTrend,
	TypeKnowledge,
	TypePage,
}

// Metadata is optional display detail for an item.
type Metadata struct {
	Status   string `json:"status,omitempty"`
	Category string `json:"category,omitempty"`
	Progress *int   `json:"progress,omitempty"`
}

// Item is a recently visited entity. Items are unique by ID; the timestamp
// is the time of the last visit.
type Item struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle,omitempty"`
	Icon      string    `json:"icon,omitempty"`
	Route     string    `json:"route"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  *Metadata `json:"metadata,omitempty"`
}

func cloneItem(it Item) Item {
	if it.Metadata != nil {
		md := *it.Metadata
		if md.Progress != nil {
			p := *md.Progress
			md.Progress = &p
		}
		it.Metadata = &md
	}
	return it
}
