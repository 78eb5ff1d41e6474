package recent

import (
	"time"

	"github.com/mattjoyce/hearth/internal/store"
)

var typeIcons = map[Type]string{
	TypeBrandAsset:     "Palette",
	TypePersona:        "Users",
	TypeResearchPlan:   "Target",
	TypeResearchMethod: "Microscope",
	TypeStrategyTool:   "Zap",
	TypeProduct:        "Package",
	TypeTrend:          "TrendingUp",
	TypeKnowledge:      "BookOpen",
	TypePage:           "FileText",
}

var typeLabels = map[Type]string{
	TypeBrandAsset:     "Brand Asset",
	TypePersona:        "Persona",
	TypeResearchPlan:   "Research Plan",
	TypeResearchMethod: "Research Method",
	TypeStrategyTool:   "Strategy Tool",
	TypeProduct:        "Product",
	TypeTrend:          "Trend",
	TypeKnowledge:      "Knowledge",
	TypePage:           "Page",
}

// TypeIcon returns the icon name for t, "Circle" when unknown.
func TypeIcon(t Type) string {
	if icon, ok := typeIcons[t]; ok {
		return icon
	}
	return "Circle"
}

// TypeLabel returns the human label for t, "Item" when unknown.
func TypeLabel(t Type) string {
	if label, ok := typeLabels[t]; ok {
		return label
	}
	return "Item"
}

// TimeAgo renders how long ago ts was, relative to now.
func TimeAgo(ts, now time.Time) string {
	return store.TimeAgo(ts, now)
}
