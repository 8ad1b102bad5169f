package watcher

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/blackwell-systems/apps2desktop/internal/extension"
	"github.com/blackwell-systems/apps2desktop/internal/management"
)

const (
	DefaultDebounce     = 500 * time.Millisecond
	DefaultPollInterval = 30 * time.Second
)

// Source is a readable profile.
type Source interface {
	Extensions() ([]extension.Info, error)
	WatchPaths() []string
	IsRelevant(path string) bool
}

// Applier consumes snapshots; management.Differ implements it.
type Applier interface {
	Apply([]extension.Info) (management.Changes, error)
}

// Options configures a Watcher. Zero values select the defaults.
type Options struct {
	Debounce     time.Duration
	PollInterval time.Duration
	Logger       zerolog.Logger
}

// Watcher re-reads a profile whenever it changes on disk and feeds the
// snapshot to an Applier.
type Watcher struct {
	source  Source
	applier Applier
	opts    Options
	log     zerolog.Logger

	fsw        *fsnotify.Watcher
	stopCh     chan struct{}
	wg         sync.WaitGroup
	pollTicker *time.Ticker

	mu      sync.Mutex
	watched map[string]bool
	scans   int
}

// New creates a new Watcher instance.
func New(src Source, applier Applier, opts Options) (*Watcher, error) {
	if src == nil {
		return nil, errors.New("source cannot be nil")
	}
	if applier == nil {
		return nil, errors.New("applier cannot be nil")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	return &Watcher{
		source:  src,
		applier: applier,
		opts:    opts,
		log:     opts.Logger.With().Str("component", "watcher").Logger(),
		stopCh:  make(chan struct{}),
		watched: make(map[string]bool),
	}, nil
}

// Start registers the filesystem watches and begins processing. Changes
// made since the snapshot the Applier was seeded with are picked up
// immediately by an initial rescan.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	w.fsw = fsw

	if err := w.addWatches(); err != nil {
		fsw.Close()
		return err
	}

	if _, err := w.Rescan(); err != nil {
		w.log.Warn().Err(err).Msg("initial rescan failed")
	}

	w.pollTicker = time.NewTicker(w.opts.PollInterval)

	w.wg.Add(1)
	go w.run()

	return nil
}

// addWatches watches every path the source reports that is not watched
// yet. The first path (the profile directory) is required.
func (w *Watcher) addWatches() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i, p := range w.source.WatchPaths() {
		p = filepath.Clean(p)
		if w.watched[p] {
			continue
		}
		if err := w.fsw.Add(p); err != nil {
			if i == 0 {
				return fmt.Errorf("failed to watch %s: %w", p, err)
			}
			w.log.Warn().Err(err).Str("path", p).Msg("failed to watch path")
			continue
		}
		w.watched[p] = true
		w.log.Debug().Str("path", p).Msg("watching")
	}
	return nil
}

func (w *Watcher) run() {
	defer w.wg.Done()

	debounce := time.NewTimer(w.opts.Debounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.source.IsRelevant(ev.Name) {
				continue
			}
			w.log.Debug().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("profile changed")
			if !debounce.Stop() {
				select {
				case <-debounce.C:
				default:
				}
			}
			debounce.Reset(w.opts.Debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("filesystem watcher error")

		case <-debounce.C:
			// The Extensions directory may have been created by the first
			// install into a fresh profile.
			if err := w.addWatches(); err != nil {
				w.log.Warn().Err(err).Msg("failed to refresh watches")
			}
			w.rescanAndLog("change")

		case <-w.pollTicker.C:
			w.rescanAndLog("poll")

		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) rescanAndLog(reason string) {
	changes, err := w.Rescan()
	if err != nil {
		w.log.Error().Err(err).Str("reason", reason).Msg("rescan finished with errors")
	}
	if !changes.Empty() {
		w.log.Info().Str("reason", reason).
			Int("installed", len(changes.Installed)).
			Int("uninstalled", len(changes.Uninstalled)).
			Int("enabled", len(changes.Enabled)).
			Int("disabled", len(changes.Disabled)).
			Msg("profile rescanned")
	}
}

// Rescan reads the profile now and applies the snapshot. A profile that
// cannot be read leaves the previous snapshot in place.
func (w *Watcher) Rescan() (management.Changes, error) {
	infos, err := w.source.Extensions()
	if err != nil {
		return management.Changes{}, fmt.Errorf("failed to read profile: %w", err)
	}

	w.mu.Lock()
	w.scans++
	w.mu.Unlock()

	return w.applier.Apply(infos)
}

// Scans returns how many snapshots have been applied.
func (w *Watcher) Scans() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scans
}

// Stop halts the watcher and waits for the processing loop to exit.
func (w *Watcher) Stop() error {
	close(w.stopCh)

	if w.pollTicker != nil {
		w.pollTicker.Stop()
	}

	w.wg.Wait()

	var result *multierror.Error
	if w.fsw != nil {
		if err := w.fsw.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to close filesystem watcher: %w", err))
		}
	}
	return result.ErrorOrNil()
}
