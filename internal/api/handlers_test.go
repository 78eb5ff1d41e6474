package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/hearth/internal/activity"
	"github.com/mattjoyce/hearth/internal/chord"
	"github.com/mattjoyce/hearth/internal/events"
	"github.com/mattjoyce/hearth/internal/log"
	"github.com/mattjoyce/hearth/internal/payment"
	"github.com/mattjoyce/hearth/internal/recent"
	"github.com/mattjoyce/hearth/internal/state"
)

const testKey = "test-key"

type fixture struct {
	server   *Server
	activity *activity.Store
	recent   *recent.Store
	payment  *payment.ProfileStore
	hub      *events.Hub
	handler  http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	kv := state.NewMemory()
	logger := log.Discard()

	f := &fixture{
		activity: activity.New(ctx, kv, activity.Config{Logger: logger}),
		recent:   recent.New(ctx, kv, recent.Config{Logger: logger}),
		payment:  payment.NewProfileStore(ctx, kv, payment.Config{Logger: logger}),
		hub:      events.NewHub(50, logger),
	}
	t.Cleanup(events.Bridge(f.hub, events.Stores{Activity: f.activity, Recent: f.recent, Payment: f.payment}))

	d := chord.New(chord.NewFeed(), chord.Options{Platform: "linux", Logger: logger})
	t.Cleanup(d.Close)
	d.RegisterMultiple([]chord.Binding{
		{Key: "g+d", Label: "Activity", Category: chord.CategoryNavigation},
		{Key: "mod+k", Label: "Search", Category: chord.CategoryActions},
	})

	f.server = New(Config{APIKey: testKey}, Deps{
		Activity:  f.activity,
		Recent:    f.recent,
		Payment:   f.payment,
		Shortcuts: d,
	}, f.hub, logger)
	f.handler = f.server.Handler()
	return f
}

func (f *fixture) do(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+testKey)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealthzNoAuth(t *testing.T) {
	f := newFixture(t)
	f.payment.SeedDemo()

	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decode[HealthzResponse](t, rr)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, payment.VariantActive, resp.PaymentVariant)
}

func TestAuthRequired(t *testing.T) {
	f := newFixture(t)

	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/activities", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/activities", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rr = httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "invalid API key", decode[ErrorResponse](t, rr).Error)
}

func TestActivityRoutes(t *testing.T) {
	f := newFixture(t)
	sarah := activity.Actor{ID: "user-1", Name: "Sarah"}
	brand := f.activity.AddActivity(activity.TypeAssetApproved, activity.CategoryBrand, "Golden Circle", sarah, nil, activity.Options{})
	f.activity.AddActivity(activity.TypeResearchStarted, activity.CategoryResearch, "Workshop", sarah, nil, activity.Options{})

	rr := f.do(t, http.MethodGet, "/activities?category=brand")
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[ActivitiesResponse](t, rr)
	require.Len(t, list.Activities, 1)
	assert.Equal(t, brand.ID, list.Activities[0].ID)
	assert.Equal(t, 2, list.Unread)

	rr = f.do(t, http.MethodGet, "/activities?q=WORKSHOP&unread=true")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[ActivitiesResponse](t, rr).Activities, 1)

	rr = f.do(t, http.MethodGet, "/activities?unread=maybe")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodPost, "/activities/"+brand.ID+"/read")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = f.do(t, http.MethodPost, "/activities/"+brand.ID+"/read")
	assert.Equal(t, http.StatusNoContent, rr.Code, "already read is still success")
	rr = f.do(t, http.MethodPost, "/activities/activity-missing/read")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.do(t, http.MethodGet, "/activities/grouped")
	require.Equal(t, http.StatusOK, rr.Code)
	groups := decode[ActivityGroupsResponse](t, rr).Groups
	require.Len(t, groups, 1)
	assert.Equal(t, "Today", groups[0].Label)

	rr = f.do(t, http.MethodPost, "/activities/read-all")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, decode[UnreadResponse](t, rr).Unread)
}

func TestRecentRoutes(t *testing.T) {
	f := newFixture(t)
	f.recent.AddItem(recent.Item{ID: "p1", Type: recent.TypePersona, Title: "Persona"})
	f.recent.AddItem(recent.Item{ID: "a1", Type: recent.TypeBrandAsset, Title: "Asset"})

	rr := f.do(t, http.MethodGet, "/recent")
	require.Equal(t, http.StatusOK, rr.Code)
	items := decode[RecentResponse](t, rr).Items
	require.Len(t, items, 2)
	assert.Equal(t, "a1", items[0].ID)

	rr = f.do(t, http.MethodGet, "/recent?type=persona")
	assert.Len(t, decode[RecentResponse](t, rr).Items, 1)

	rr = f.do(t, http.MethodGet, "/recent/grouped")
	groups := decode[RecentGroupsResponse](t, rr).Groups
	require.Len(t, groups, 2)
	assert.Equal(t, "Brand Asset", groups[0].Label)
	assert.Equal(t, "Palette", groups[0].Icon)

	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/recent/p1").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodDelete, "/recent/p1").Code)
}

func TestPaymentAndShortcutRoutes(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodGet, "/payment/profile")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, payment.VariantEmpty, decode[PaymentProfileResponse](t, rr).Variant)

	f.payment.AddPaymentMethod(payment.MethodCard, "Card •••• 4242", "12/26", true)
	resp := decode[PaymentProfileResponse](t, f.do(t, http.MethodGet, "/payment/profile"))
	assert.Equal(t, payment.VariantActive, resp.Variant)
	assert.True(t, resp.HasValidProfile)
	require.Len(t, resp.Profile.Methods, 1)

	sc := decode[ShortcutsResponse](t, f.do(t, http.MethodGet, "/shortcuts"))
	require.Len(t, sc.Categories, 2)
	assert.Equal(t, "navigation", sc.Categories[0].ID)
	assert.Equal(t, "G D", sc.Categories[0].Shortcuts[0].Display)
	assert.Equal(t, "Ctrl K", sc.Categories[1].Shortcuts[0].Display)
}

func TestMissingStoreIsUnavailable(t *testing.T) {
	s := New(Config{APIKey: testKey}, Deps{}, nil, log.Discard())
	req := httptest.NewRequest(http.MethodGet, "/payment/profile", nil)
	req.Header.Set("Authorization", "Bearer "+testKey)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestEventsReplayAndStream(t *testing.T) {
	f := newFixture(t)
	f.activity.AddActivity(activity.TypeFileUploaded, activity.CategorySystem, "one", activity.Actor{ID: "u"}, nil, activity.Options{})
	f.activity.AddActivity(activity.TypeFileUploaded, activity.CategorySystem, "two", activity.Actor{ID: "u"}, nil, activity.Options{})

	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+testKey)
	req.Header.Set("Last-Event-ID", "1")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (id, typ string) {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "id: "):
				id = strings.TrimPrefix(line, "id: ")
			case strings.HasPrefix(line, "event: "):
				typ = strings.TrimPrefix(line, "event: ")
			case line == "" && id != "":
				return id, typ
			}
		}
	}

	id, typ := readEvent()
	assert.Equal(t, "2", id)
	assert.Equal(t, events.TypeActivityChanged, typ)

	f.recent.AddItem(recent.Item{ID: "x", Type: recent.TypeTrend})
	id, typ = readEvent()
	assert.Equal(t, "3", id)
	assert.Equal(t, events.TypeRecentChanged, typ)
}

func TestParseLastEventID(t *testing.T) {
	assert.Equal(t, int64(0), parseLastEventID(""))
	assert.Equal(t, int64(0), parseLastEventID("nope"))
	assert.Equal(t, int64(0), parseLastEventID("-3"))
	assert.Equal(t, int64(42), parseLastEventID("42"))
}
