package api

import (
	"github.com/mattjoyce/hearth/internal/activity"
	"github.com/mattjoyce/hearth/internal/payment"
	"github.com/mattjoyce/hearth/internal/recent"
	"github.com/mattjoyce/hearth/internal/store"
)

// ErrorResponse is returned on errors
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthzResponse is returned by GET /healthz.
type HealthzResponse struct {
	Status         string          `json:"status"`
	UptimeSeconds  int64           `json:"uptime_seconds"`
	Activities     int             `json:"activities"`
	Unread         int             `json:"unread"`
	RecentItems    int             `json:"recent_items"`
	PaymentVariant payment.Variant `json:"payment_variant,omitempty"`
}

// ActivitiesResponse is returned by GET /activities.
type ActivitiesResponse struct {
	Activities []activity.Activity `json:"activities"`
	Unread     int                 `json:"unread"`
}

// ActivityGroupsResponse is returned by GET /activities/grouped.
type ActivityGroupsResponse struct {
	Groups []store.Group[activity.Activity] `json:"groups"`
}

// UnreadResponse is returned by POST /activities/read-all.
type UnreadResponse struct {
	Unread int `json:"unread"`
}

// RecentResponse is returned by GET /recent.
type RecentResponse struct {
	Items []recent.Item `json:"items"`
}

// RecentGroupsResponse is returned by GET /recent/grouped.
type RecentGroupsResponse struct {
	Groups []RecentGroup `json:"groups"`
}

// RecentGroup is one type bucket with its display label.
type RecentGroup struct {
	Type  recent.Type   `json:"type"`
	Label string        `json:"label"`
	Icon  string        `json:"icon"`
	Items []recent.Item `json:"items"`
}

// PaymentProfileResponse is returned by GET /payment/profile.
type PaymentProfileResponse struct {
	Profile         payment.Profile `json:"profile"`
	Variant         payment.Variant `json:"variant"`
	HasValidProfile bool            `json:"has_valid_profile"`
}

// ShortcutsResponse is returned by GET /shortcuts.
type ShortcutsResponse struct {
	Categories []ShortcutCategory `json:"categories"`
}

// ShortcutCategory is one group of shortcuts.
type ShortcutCategory struct {
	ID        string         `json:"id"`
	Label     string         `json:"label"`
	Shortcuts []ShortcutView `json:"shortcuts"`
}

// ShortcutView describes a binding for display.
type ShortcutView struct {
	Key         string `json:"key"`
	Display     string `json:"display"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Disabled    bool   `json:"disabled,omitempty"`
}
