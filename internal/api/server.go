// Package api serves the stores over a small local HTTP API with an SSE
// change stream.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mattjoyce/hearth/internal/activity"
	"github.com/mattjoyce/hearth/internal/chord"
	"github.com/mattjoyce/hearth/internal/events"
	"github.com/mattjoyce/hearth/internal/payment"
	"github.com/mattjoyce/hearth/internal/recent"
	"github.com/mattjoyce/hearth/internal/store"
)

// ActivityFeed is the part of the activity store the API reads and marks.
type ActivityFeed interface {
	Activities(f *activity.Filter) []activity.Activity
	Find(id string) (activity.Activity, bool)
	Grouped(f *activity.Filter) []store.Group[activity.Activity]
	MarkAsRead(id string) bool
	MarkAllAsRead()
	UnreadCount() int
}

// RecentList is the part of the recent items store the API exposes.
type RecentList interface {
	Items() []recent.Item
	ItemsByType(t recent.Type) []recent.Item
	GroupedByType() []store.Group[recent.Item]
	RemoveItem(id string) bool
}

// PaymentProfile is the read side of the payment profile store.
type PaymentProfile interface {
	Profile() payment.Profile
	Variant() payment.Variant
	HasValidProfile() bool
}

// ShortcutRegistry lists the registered chords.
type ShortcutRegistry interface {
	ByCategory() []chord.Group
	FormatKey(key string) string
}

// Config holds API server configuration
type Config struct {
	Listen string
	APIKey string
}

// Deps are the stores served by the API. Any may be nil, in which case its
// routes answer 503.
type Deps struct {
	Activity  ActivityFeed
	Recent    RecentList
	Payment   PaymentProfile
	Shortcuts ShortcutRegistry
}

// Server represents the HTTP API server
type Server struct {
	config    Config
	deps      Deps
	events    *events.Hub
	logger    *slog.Logger
	server    *http.Server
	startedAt time.Time
}

// New creates a new API server instance
func New(config Config, deps Deps, hub *events.Hub, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if hub == nil {
		hub = events.NewHub(256, logger)
	}
	return &Server{
		config:    config,
		deps:      deps,
		events:    hub,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.config.Listen,
		Handler:           s.setupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		// Streaming handlers end with ctx instead of holding up Shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	s.logger.Info("API server starting", "listen", s.config.Listen)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("API server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Route("/activities", func(r chi.Router) {
			r.Use(s.require(s.deps.Activity != nil))
			r.Get("/", s.handleListActivities)
			r.Get("/grouped", s.handleGroupedActivities)
			r.Post("/read-all", s.handleMarkAllRead)
			r.Post("/{id}/read", s.handleMarkRead)
		})
		r.Route("/recent", func(r chi.Router) {
			r.Use(s.require(s.deps.Recent != nil))
			r.Get("/", s.handleListRecent)
			r.Get("/grouped", s.handleGroupedRecent)
			r.Delete("/{id}", s.handleRemoveRecent)
		})
		r.With(s.require(s.deps.Payment != nil)).Get("/payment/profile", s.handlePaymentProfile)
		r.With(s.require(s.deps.Shortcuts != nil)).Get("/shortcuts", s.handleShortcuts)
		r.Get("/events", s.handleEvents)
	})

	return r
}

func (s *Server) require(available bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !available {
				s.writeError(w, http.StatusServiceUnavailable, "store not configured")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
