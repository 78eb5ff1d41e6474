package activity

import "time"

// Type identifies what happened.
type Type string

const (
	TypeAssetCreated        Type = "asset-created"
	TypeAssetUpdated        Type = "asset-updated"
	TypeAssetApproved       Type = "asset-approved"
	TypeAssetRejected       Type = "asset-rejected"
	TypePersonaCreated      Type = "persona-created"
	TypePersonaUpdated      Type = "persona-updated"
	TypeResearchStarted     Type = "research-started"
	TypeResearchCompleted   Type = "research-completed"
	TypePlanCreated         Type = "plan-created"
	TypePlanUpdated         Type = "plan-updated"
	TypeCommentAdded        Type = "comment-added"
	TypeFileUploaded        Type = "file-uploaded"
	TypeInsightAdded        Type = "insight-added"
	TypeRelationshipCreated Type = "relationship-created"
	TypeStatusChanged       Type = "status-changed"
	TypeTeamMemberAdded     Type = "team-member-added"
	TypeMilestoneReached    Type = "milestone-reached"
)

// Types lists every activity type.
var Types = []Type{
	TypeAssetCreated, TypeAssetUpdated, TypeAssetApproved, TypeAssetRejected,
	TypePersonaCreated, TypePersonaUpdated,
	TypeResearchStarted, TypeResearchCompleted,
	TypePlanCreated, TypePlanUpdated,
	TypeCommentAdded, TypeFileUploaded, TypeInsightAdded, TypeRelationshipCreated,
	TypeStatusChanged, TypeTeamMemberAdded, TypeMilestoneReached,
}

// Category groups activity types for filtering and display.
type Category string

const (
	CategoryBrand         Category = "brand"
	CategoryResearch      Category = "research"
	CategoryPersonas      Category = "personas"
	CategoryStrategy      Category = "strategy"
	CategoryCollaboration Category = "collaboration"
	CategorySystem        Category = "system"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryBrand,
	CategoryResearch,
	CategoryPersonas,
	CategoryStrategy,
	CategoryCollaboration,
	CategorySystem,
}

// Actor is the user who performed an activity.
type Actor struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// Metadata carries free-form details (asset ids, status transitions, ...).
type Metadata map[string]any

// Activity is one feed entry. Everything but IsRead is fixed at creation.
type Activity struct {
	ID          string    `json:"id"`
	Type        Type      `json:"type"`
	Category    Category  `json:"category"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Actor       Actor     `json:"user"`
	Timestamp   time.Time `json:"timestamp"`
	Metadata    Metadata  `json:"metadata,omitempty"`
	IsRead      bool      `json:"isRead"`
	IsImportant bool      `json:"isImportant"`
}

// Options are the optional fields of AddActivity.
type Options struct {
	Description string
	IsImportant bool
}

// DateRange is an inclusive timestamp window.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Filter narrows a feed query. Empty allow-lists match everything.
type Filter struct {
	Categories []Category
	Types      []Type
	ActorIDs   []string
	DateRange  *DateRange
	UnreadOnly bool
	// Text matches title, description or actor name, case-insensitively.
	Text string
}
