// Package bridge assembles the watch pipeline: a browser profile feeds the
// watcher, the watcher feeds a differ publishing on the management hub, and
// the forwarder relays hub notifications to the registered target element.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/blackwell-systems/apps2desktop/internal/browser"
	"github.com/blackwell-systems/apps2desktop/internal/config"
	"github.com/blackwell-systems/apps2desktop/internal/forwarder"
	"github.com/blackwell-systems/apps2desktop/internal/management"
	"github.com/blackwell-systems/apps2desktop/internal/metricsserver"
	"github.com/blackwell-systems/apps2desktop/internal/store"
	"github.com/blackwell-systems/apps2desktop/internal/target"
	"github.com/blackwell-systems/apps2desktop/internal/watcher"
)

const shutdownTimeout = 5 * time.Second

// Bridge runs the pipeline described by a Config. It implements
// watcher.Service so it can run in the foreground or as the daemon child.
type Bridge struct {
	cfg config.Config
	log zerolog.Logger

	Registry  *target.Registry
	Gatherer  *prometheus.Registry
	Hub       *management.Hub
	Forwarder *forwarder.Forwarder

	profile    *browser.Profile
	store      *store.Store
	journal    *target.Journal
	supervisor *target.HostSupervisor
	watcher    *watcher.Watcher
	metrics    *metricsserver.Server
}

// New validates cfg and resolves the profile. Nothing is started.
func New(cfg config.Config, log zerolog.Logger) (*Bridge, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Target == config.TargetJournal && cfg.DBPath == "" {
		return nil, errors.New("target journal requires db_path")
	}

	profile, err := browser.NewProfile(cfg.Browser, cfg.ProfileDir, log.With().Str("component", "profile").Logger())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve browser profile: %w", err)
	}

	gatherer := prometheus.NewRegistry()
	gatherer.MustRegister(collectors.NewGoCollector())

	return &Bridge{
		cfg:      cfg,
		log:      log,
		Registry: target.NewRegistry(),
		Gatherer: gatherer,
		profile:  profile,
	}, nil
}

// Profile returns the profile being watched.
func (b *Bridge) Profile() *browser.Profile {
	return b.profile
}

// Start brings the pipeline up: target element first, then the forwarder
// and its replay of the installed apps, then the watcher. On failure
// everything already started is stopped again.
func (b *Bridge) Start() error {
	if err := b.start(); err != nil {
		if stopErr := b.Stop(); stopErr != nil {
			b.log.Warn().Err(stopErr).Msg("cleanup after failed start")
		}
		return err
	}
	return nil
}

func (b *Bridge) start() error {
	if err := b.startTarget(); err != nil {
		return err
	}

	initial, err := b.profile.Extensions()
	if err != nil {
		return fmt.Errorf("failed to read profile %s: %w", b.profile.Dir, err)
	}
	b.log.Info().
		Str("browser", b.profile.Browser).
		Str("profile", b.profile.Dir).
		Int("extensions", len(initial)).
		Msg("profile loaded")

	b.Hub = management.NewHub(nil)
	differ := management.NewDiffer(b.Hub, initial)
	b.Hub.SetEnumerator(differ.Snapshot)

	b.Forwarder = forwarder.New(b.Registry.Resolver(b.cfg.ElementID), forwarder.Options{
		RetryDelay: b.cfg.RetryDelay.Duration,
		MaxPending: b.cfg.MaxPending,
		Logger:     b.log,
		Metrics:    forwarder.NewMetrics(b.Gatherer),
	})
	if err := b.Forwarder.Start(b.Hub); err != nil {
		return fmt.Errorf("failed to start forwarder: %w", err)
	}

	b.watcher, err = watcher.New(b.profile, differ, watcher.Options{
		Debounce:     b.cfg.Debounce.Duration,
		PollInterval: b.cfg.PollInterval.Duration,
		Logger:       b.log,
	})
	if err != nil {
		return err
	}
	if err := b.watcher.Start(); err != nil {
		b.watcher = nil
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	if b.cfg.MetricsAddr != "" {
		handler := metricsserver.NewRouter(b.Gatherer, b.healthy)
		b.metrics, err = metricsserver.Start(b.cfg.MetricsAddr, handler, b.log)
		if err != nil {
			return err
		}
	}

	return nil
}

func (b *Bridge) startTarget() error {
	switch b.cfg.Target {
	case config.TargetJournal:
		st, err := store.New(b.cfg.DBPath)
		if err != nil {
			return err
		}
		if err := st.CreateSchema(); err != nil {
			st.Close()
			return err
		}
		b.store = st
		b.journal = target.NewJournal(st, b.log)
		b.Registry.Register(b.cfg.ElementID, b.journal)
		b.log.Info().Str("element", b.cfg.ElementID).Str("db", b.cfg.DBPath).Msg("journal target registered")

	case config.TargetNativeHost:
		b.supervisor = target.NewHostSupervisor(b.Registry, b.cfg.ElementID, b.cfg.HostCommand, b.cfg.RetryDelay.Duration, b.log)
		if err := b.supervisor.Start(context.Background()); err != nil {
			b.supervisor = nil
			return fmt.Errorf("failed to start native host: %w", err)
		}
		b.log.Info().Str("element", b.cfg.ElementID).Strs("command", b.cfg.HostCommand).Msg("native host target registered")
	}
	return nil
}

// healthy reports whether the target element is currently registered.
func (b *Bridge) healthy() error {
	_, err := b.Registry.Lookup(b.cfg.ElementID)
	return err
}

// Stop shuts the pipeline down in reverse order and reports every failure.
func (b *Bridge) Stop() error {
	var result *multierror.Error

	if b.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := b.metrics.Shutdown(ctx); err != nil {
			result = multierror.Append(result, err)
		}
		cancel()
		b.metrics = nil
	}

	if b.watcher != nil {
		if err := b.watcher.Stop(); err != nil {
			result = multierror.Append(result, err)
		}
		b.watcher = nil
	}

	if b.Forwarder != nil {
		if err := b.Forwarder.Flush(); err != nil {
			b.log.Warn().Err(err).Msg("final flush incomplete")
		}
		if err := b.Forwarder.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if b.supervisor != nil {
		if err := b.supervisor.Stop(); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to stop native host: %w", err))
		}
		b.supervisor = nil
	}

	if b.store != nil {
		b.Registry.Unregister(b.cfg.ElementID, b.journal)
		b.journal = nil
		if err := b.store.Close(); err != nil {
			result = multierror.Append(result, err)
		}
		b.store = nil
	}

	return result.ErrorOrNil()
}
