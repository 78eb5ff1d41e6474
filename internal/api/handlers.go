package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mattjoyce/hearth/internal/activity"
	"github.com/mattjoyce/hearth/internal/recent"
)

// handleHealthz handles GET /healthz (no auth).
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp := HealthzResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	}
	if s.deps.Activity != nil {
		resp.Activities = len(s.deps.Activity.Activities(nil))
		resp.Unread = s.deps.Activity.UnreadCount()
	}
	if s.deps.Recent != nil {
		resp.RecentItems = len(s.deps.Recent.Items())
	}
	if s.deps.Payment != nil {
		resp.PaymentVariant = s.deps.Payment.Variant()
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleListActivities handles GET /activities.
// Query: category, type and actor may repeat or be comma separated;
// unread=true; q is free text.
func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	f, err := parseActivityFilter(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, ActivitiesResponse{
		Activities: s.deps.Activity.Activities(f),
		Unread:     s.deps.Activity.UnreadCount(),
	})
}

// handleGroupedActivities handles GET /activities/grouped.
func (s *Server) handleGroupedActivities(w http.ResponseWriter, r *http.Request) {
	f, err := parseActivityFilter(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, ActivityGroupsResponse{Groups: s.deps.Activity.Grouped(f)})
}

// handleMarkRead handles POST /activities/{id}/read.
func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.deps.Activity.MarkAsRead(id) {
		if _, ok := s.deps.Activity.Find(id); !ok {
			s.writeError(w, http.StatusNotFound, "activity not found")
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMarkAllRead handles POST /activities/read-all.
func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	s.deps.Activity.MarkAllAsRead()
	respondJSON(w, http.StatusOK, UnreadResponse{Unread: s.deps.Activity.UnreadCount()})
}

// handleListRecent handles GET /recent, optionally narrowed by ?type=.
func (s *Server) handleListRecent(w http.ResponseWriter, r *http.Request) {
	var items []recent.Item
	if t := r.URL.Query().Get("type"); t != "" {
		items = s.deps.Recent.ItemsByType(recent.Type(t))
	} else {
		items = s.deps.Recent.Items()
	}
	respondJSON(w, http.StatusOK, RecentResponse{Items: items})
}

// handleGroupedRecent handles GET /recent/grouped.
func (s *Server) handleGroupedRecent(w http.ResponseWriter, r *http.Request) {
	groups := s.deps.Recent.GroupedByType()
	out := make([]RecentGroup, 0, len(groups))
	for _, g := range groups {
		t := recent.Type(g.Label)
		out = append(out, RecentGroup{
			Type:  t,
			Label: recent.TypeLabel(t),
			Icon:  recent.TypeIcon(t),
			Items: g.Items,
		})
	}
	respondJSON(w, http.StatusOK, RecentGroupsResponse{Groups: out})
}

// handleRemoveRecent handles DELETE /recent/{id}.
func (s *Server) handleRemoveRecent(w http.ResponseWriter, r *http.Request) {
	if !s.deps.Recent.RemoveItem(chi.URLParam(r, "id")) {
		s.writeError(w, http.StatusNotFound, "recent item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePaymentProfile handles GET /payment/profile.
func (s *Server) handlePaymentProfile(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, PaymentProfileResponse{
		Profile:         s.deps.Payment.Profile(),
		Variant:         s.deps.Payment.Variant(),
		HasValidProfile: s.deps.Payment.HasValidProfile(),
	})
}

// handleShortcuts handles GET /shortcuts.
func (s *Server) handleShortcuts(w http.ResponseWriter, r *http.Request) {
	groups := s.deps.Shortcuts.ByCategory()
	resp := ShortcutsResponse{Categories: make([]ShortcutCategory, 0, len(groups))}
	for _, g := range groups {
		cat := ShortcutCategory{ID: string(g.ID), Label: g.Label}
		for _, b := range g.Bindings {
			cat.Shortcuts = append(cat.Shortcuts, ShortcutView{
				Key:         b.Key,
				Display:     s.deps.Shortcuts.FormatKey(b.Key),
				Label:       b.Label,
				Description: b.Description,
				Disabled:    b.Disabled,
			})
		}
		resp.Categories = append(resp.Categories, cat)
	}
	respondJSON(w, http.StatusOK, resp)
}

func parseActivityFilter(r *http.Request) (*activity.Filter, error) {
	q := r.URL.Query()
	f := &activity.Filter{Text: q.Get("q")}
	for _, c := range splitValues(q["category"]) {
		f.Categories = append(f.Categories, activity.Category(c))
	}
	for _, t := range splitValues(q["type"]) {
		f.Types = append(f.Types, activity.Type(t))
	}
	f.ActorIDs = splitValues(q["actor"])
	if v := q.Get("unread"); v != "" {
		unread, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errBadParam("unread", v)
		}
		f.UnreadOnly = unread
	}
	since, until := q.Get("since"), q.Get("until")
	if since != "" || until != "" {
		dr := &activity.DateRange{End: time.Now()}
		if since != "" {
			t, err := time.Parse(time.RFC3339, since)
			if err != nil {
				return nil, errBadParam("since", since)
			}
			dr.Start = t
		}
		if until != "" {
			t, err := time.Parse(time.RFC3339, until)
			if err != nil {
				return nil, errBadParam("until", until)
			}
			dr.End = t
		}
		f.DateRange = dr
	}
	return f, nil
}

type paramError struct{ name, value string }

func (e paramError) Error() string { return "invalid " + e.name + " parameter: " + strconv.Quote(e.value) }

func errBadParam(name, value string) error { return paramError{name, value} }

func splitValues(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response
func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}
