package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mattjoyce/hearth/internal/activity"
	"github.com/mattjoyce/hearth/internal/api"
	"github.com/mattjoyce/hearth/internal/chord"
	"github.com/mattjoyce/hearth/internal/config"
	"github.com/mattjoyce/hearth/internal/events"
	"github.com/mattjoyce/hearth/internal/lock"
	"github.com/mattjoyce/hearth/internal/log"
	"github.com/mattjoyce/hearth/internal/payment"
	"github.com/mattjoyce/hearth/internal/persist"
	"github.com/mattjoyce/hearth/internal/recent"
	"github.com/mattjoyce/hearth/internal/state"
	"github.com/mattjoyce/hearth/internal/storage"
	"github.com/mattjoyce/hearth/internal/tui"
)

// app is an opened state database with its stores.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	activity *activity.Store
	recent   *recent.Store
	payment  *payment.ProfileStore
	hub      *events.Hub

	closers []func()
}

// loadConfig resolves the config file and applies the global overrides.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.DBPath != "" {
		cfg.State.Path = opts.DBPath
	}
	if opts.InMemory {
		cfg.State.InMemory = true
	}
	return cfg, nil
}

// openApp loads config, takes the owner lock and opens the stores. logOut
// receives log lines; nil means stderr.
func openApp(ctx context.Context, opts *rootOptions, logOut io.Writer) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	var logger *slog.Logger
	if logOut == nil {
		log.Setup(cfg.Service.LogLevel, cfg.Service.LogFormat)
		logger = log.Get()
	} else {
		logger = log.New(logOut, cfg.Service.LogLevel, cfg.Service.LogFormat)
	}
	logger = logger.With(slog.String("service", cfg.Service.Name))

	a := &app{cfg: cfg, logger: logger}
	kv, err := a.openState(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.activity = activity.New(ctx, kv, activity.Config{
		Key:      cfg.Activity.PersistKey,
		Capacity: cfg.Activity.Capacity,
		Logger:   logger.With(slog.String("store", cfg.Activity.PersistKey)),
	})
	exclude := make([]recent.Type, 0, len(cfg.Recent.ExcludeTypes))
	for _, t := range cfg.Recent.ExcludeTypes {
		exclude = append(exclude, recent.Type(t))
	}
	a.recent = recent.New(ctx, kv, recent.Config{
		Key:          cfg.Recent.PersistKey,
		Capacity:     cfg.Recent.Capacity,
		ExcludeTypes: exclude,
		MaxAge:       cfg.Recent.MaxAge,
		Logger:       logger.With(slog.String("store", cfg.Recent.PersistKey)),
	})
	a.payment = payment.NewProfileStore(ctx, kv, payment.Config{
		Key:    cfg.Payment.PersistKey,
		Logger: logger.With(slog.String("store", cfg.Payment.PersistKey)),
	})

	a.hub = events.NewHub(256, logger.With(slog.String("component", "events")))
	a.closers = append(a.closers, events.Bridge(a.hub, events.Stores{
		Activity: a.activity,
		Recent:   a.recent,
		Payment:  a.payment,
	}))

	if cfg.Activity.SeedDemo && activity.SeedDemo(a.activity) {
		logger.Info("seeded demo activity")
	}
	if cfg.Payment.SeedDemo && a.payment.SeedDemo() {
		logger.Info("seeded demo payment profile")
	}
	return a, nil
}

func (a *app) openState(ctx context.Context) (persist.KV, error) {
	if a.cfg.State.InMemory {
		a.logger.Debug("using in-memory state")
		return state.NewMemory(), nil
	}

	owner, err := lock.Acquire(a.cfg.State.Path)
	if err != nil {
		if errors.Is(err, lock.ErrHeld) {
			return nil, fmt.Errorf("%w\nHint: stop the other hearth process or use --in-memory", err)
		}
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = owner.Release() })

	db, err := storage.OpenSQLite(ctx, a.cfg.State.Path)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}
	a.closers = append(a.closers, func() { _ = db.Close() })
	a.logger.Debug("state database opened", "path", a.cfg.State.Path, "lock", owner.Path())
	return state.NewStore(db), nil
}

// Close releases resources in reverse order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *app) shortcutOptions() chord.Options {
	sc := a.cfg.Shortcuts
	return chord.Options{
		LeaderKey:     sc.LeaderKey,
		LeaderTimeout: sc.LeaderTimeout,
		SequenceKeys:  sc.SequenceKeys,
		AlwaysOn:      sc.AlwaysOn,
		Platform:      sc.Platform,
		Logger:        a.logger.With(slog.String("component", "shortcuts")),
	}
}

// apiServer builds the HTTP API over the app's stores. The shortcut listing
// comes from the terminal UI catalog. The returned func releases it.
func (a *app) apiServer(cfg config.APIConfig) (*api.Server, func()) {
	shortcuts := chord.New(chord.NewFeed(), a.shortcutOptions())
	shortcuts.RegisterMultiple(tui.ShortcutCatalog())

	server := api.New(api.Config{Listen: cfg.Listen, APIKey: cfg.APIKey}, api.Deps{
		Activity:  a.activity,
		Recent:    a.recent,
		Payment:   a.payment,
		Shortcuts: shortcuts,
	}, a.hub, a.logger.With("component", "api"))
	return server, shortcuts.Close
}

func (a *app) checkout(amountCents int64, title string) payment.Checkout {
	return payment.Checkout{
		AmountCents: amountCents,
		Currency:    a.cfg.Payment.Currency,
		Title:       title,
	}
}

func (a *app) gateway() payment.Gateway {
	return payment.NewSimulatedGateway(a.cfg.Payment.ProcessingDelay)
}
