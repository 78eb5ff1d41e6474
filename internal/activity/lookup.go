package activity

// Icon returns the icon name for an activity type.
func Icon(t Type) string {
	if icon, ok := icons[t]; ok {
		return icon
	}
	return "Activity"
}

// Color returns the display color classes for a category.
func Color(c Category) string {
	if color, ok := colors[c]; ok {
		return color
	}
	return "text-gray-600 bg-gray-100"
}

// CategoryLabel returns the human label for a category.
func CategoryLabel(c Category) string {
	if label, ok := labels[c]; ok {
		return label
	}
	return string(c)
}

var icons = map[Type]string{
	TypeAssetCreated:        "Plus",
	TypeAssetUpdated:        "Edit",
	TypeAssetApproved:       "CheckCircle",
	TypeAssetRejected:       "XCircle",
	TypePersonaCreated:      "UserPlus",
	TypePersonaUpdated:      "UserCog",
	TypeResearchStarted:     "PlayCircle",
	TypeResearchCompleted:   "CheckCircle2",
	TypePlanCreated:         "FileText",
	TypePlanUpdated:         "FilePen",
	TypeCommentAdded:        "MessageSquare",
	TypeFileUploaded:        "Upload",
	TypeInsightAdded:        "Lightbulb",
	TypeRelationshipCreated: "Link",
	TypeStatusChanged:       "RefreshCw",
	TypeTeamMemberAdded:     "Users",
	TypeMilestoneReached:    "Trophy",
}

var colors = map[Category]string{
	CategoryBrand:         "text-purple-600 bg-purple-100 dark:bg-purple-900/30",
	CategoryResearch:      "text-blue-600 bg-blue-100 dark:bg-blue-900/30",
	CategoryPersonas:      "text-green-600 bg-green-100 dark:bg-green-900/30",
	CategoryStrategy:      "text-orange-600 bg-orange-100 dark:bg-orange-900/30",
	CategoryCollaboration: "text-pink-600 bg-pink-100 dark:bg-pink-900/30",
	CategorySystem:        "text-gray-600 bg-gray-100 dark:bg-gray-900/30",
}

var labels = map[Category]string{
	CategoryBrand:         "Brand Assets",
	CategoryResearch:      "Research",
	CategoryPersonas:      "Personas",
	CategoryStrategy:      "Strategy",
	CategoryCollaboration: "Collaboration",
	CategorySystem:        "System",
}
