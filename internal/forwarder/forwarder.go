package forwarder

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/blackwell-systems/apps2desktop/internal/extension"
	"github.com/blackwell-systems/apps2desktop/internal/management"
)

const (
	// DefaultRetryDelay is how long queued notifications wait before the
	// target is resolved again.
	DefaultRetryDelay = 2 * time.Second

	// DefaultMaxPending bounds the queue of notifications waiting for an
	// unavailable target.
	DefaultMaxPending = 256
)

// Options configures a Forwarder. Zero values select the defaults.
type Options struct {
	RetryDelay time.Duration
	MaxPending int
	Logger     zerolog.Logger
	Metrics    *Metrics
}

// call is one notification waiting to be applied to a target.
type call struct {
	op   Op
	info extension.Info
	id   string
}

func (c call) targetID() string {
	if c.op == OpRemove {
		return c.id
	}
	return c.info.ID
}

func (c call) apply(t Target) error {
	switch c.op {
	case OpAdd:
		return t.Add(c.info.Name, c.info.ID, c.info.Version, c.info.AppLaunchURL, c.info.Enabled)
	case OpEnable:
		return t.Enable(c.info.ID)
	case OpDisable:
		return t.Disable(c.info.ID)
	case OpRemove:
		return t.Remove(c.id)
	default:
		return fmt.Errorf("unknown operation %q", c.op)
	}
}

// Forwarder forwards lifecycle notifications to the resolved target.
// Handlers are serialized: each runs to completion before the next starts.
type Forwarder struct {
	resolve    Resolver
	retryDelay time.Duration
	maxPending int
	log        zerolog.Logger
	metrics    *Metrics

	mu      sync.Mutex
	pending []call
	timer   *time.Timer
	closed  bool
}

// New creates a Forwarder that resolves its target through resolve.
func New(resolve Resolver, opts Options) *Forwarder {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.MaxPending <= 0 {
		opts.MaxPending = DefaultMaxPending
	}
	return &Forwarder{
		resolve:    resolve,
		retryDelay: opts.RetryDelay,
		maxPending: opts.MaxPending,
		log:        opts.Logger.With().Str("component", "forwarder").Logger(),
		metrics:    opts.Metrics,
	}
}

// Start subscribes to the facility's four streams and replays its current
// enumeration through the install handler, in the order GetAll returns.
//
// The forwarder lock is held from subscription until replay completes, so
// live notifications that race with startup are handled after the replay.
// GetAll must therefore not publish synchronously.
func (f *Forwarder) Start(fac management.Facility) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}

	fac.OnInstalled(f.HandleInstalled)
	fac.OnUninstalled(f.HandleUninstalled)
	fac.OnEnabled(f.HandleEnabled)
	fac.OnDisabled(f.HandleDisabled)

	infos, err := fac.GetAll()
	if err != nil {
		return fmt.Errorf("failed to enumerate installed items: %w", err)
	}

	var apps int
	for _, info := range infos {
		if err := f.installedLocked(info); err != nil {
			f.log.Warn().Err(err).Str("id", info.ID).Msg("replay of installed item failed")
		}
		if info.IsApp {
			apps++
		}
	}

	f.log.Info().Int("items", len(infos)).Int("apps", apps).Msg("replayed installed items")
	return nil
}

// HandleInstalled forwards an install notification as Add when the item is
// an app.
func (f *Forwarder) HandleInstalled(info extension.Info) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.installedLocked(info)
}

// HandleEnabled forwards an enable notification when the item is an app.
func (f *Forwarder) HandleEnabled(info extension.Info) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.appLocked(OpEnable, info)
}

// HandleDisabled forwards a disable notification when the item is an app.
func (f *Forwarder) HandleDisabled(info extension.Info) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.appLocked(OpDisable, info)
}

// HandleUninstalled forwards every uninstall notification as Remove. No
// filter applies: uninstall carries only the id.
func (f *Forwarder) HandleUninstalled(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if id == "" {
		f.metrics.failed(OpRemove)
		f.log.Error().Str("op", string(OpRemove)).Msg("uninstall notification without id")
		return fmt.Errorf("uninstall: %w", extension.ErrMissingID)
	}
	return f.dispatchLocked(call{op: OpRemove, id: id})
}

func (f *Forwarder) installedLocked(info extension.Info) error {
	return f.appLocked(OpAdd, info)
}

func (f *Forwarder) appLocked(op Op, info extension.Info) error {
	if err := info.Validate(); err != nil {
		f.metrics.failed(op)
		f.log.Error().Err(err).Str("op", string(op)).Msg("rejected notification")
		return fmt.Errorf("%s: %w", op, err)
	}
	if !info.IsApp {
		f.metrics.filtered(op)
		f.log.Debug().Str("op", string(op)).Str("id", info.ID).Msg("skipping non-app item")
		return nil
	}
	return f.dispatchLocked(call{op: op, info: info})
}

// dispatchLocked delivers c, or queues it behind earlier notifications when
// the target is unavailable. A queued notification is not an error.
func (f *Forwarder) dispatchLocked(c call) error {
	if f.closed {
		return ErrClosed
	}
	if len(f.pending) > 0 {
		return f.enqueueLocked(c)
	}

	err := f.deliverLocked(c)
	if errors.Is(err, ErrTargetUnavailable) {
		f.log.Warn().Err(err).Str("op", string(c.op)).Str("id", c.targetID()).
			Msg("target unavailable, queueing notification")
		return f.enqueueLocked(c)
	}
	return err
}

func (f *Forwarder) deliverLocked(c call) error {
	t, err := f.resolve()
	if err != nil {
		return fmt.Errorf("failed to resolve target: %w", err)
	}
	if t == nil {
		return fmt.Errorf("failed to resolve target: %w", ErrTargetUnavailable)
	}

	if err := c.apply(t); err != nil {
		if !errors.Is(err, ErrTargetUnavailable) {
			f.metrics.failed(c.op)
			f.log.Error().Err(err).Str("op", string(c.op)).Str("id", c.targetID()).Msg("target call failed")
		}
		return fmt.Errorf("%s %s: %w", c.op, c.targetID(), err)
	}

	f.metrics.forwarded(c.op)
	f.log.Debug().Str("op", string(c.op)).Str("id", c.targetID()).Msg("forwarded")
	return nil
}

func (f *Forwarder) enqueueLocked(c call) error {
	if len(f.pending) >= f.maxPending {
		f.metrics.failed(c.op)
		f.log.Error().Str("op", string(c.op)).Str("id", c.targetID()).Int("pending", len(f.pending)).
			Msg("pending queue full, rejecting notification")
		return fmt.Errorf("%w: %s %s", ErrQueueFull, c.op, c.targetID())
	}

	f.pending = append(f.pending, c)
	f.metrics.setPending(len(f.pending))
	f.scheduleLocked()
	return nil
}

func (f *Forwarder) scheduleLocked() {
	if f.timer != nil || f.closed || len(f.pending) == 0 {
		return
	}
	f.timer = time.AfterFunc(f.retryDelay, f.retry)
}

func (f *Forwarder) retry() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.timer = nil
	if f.closed {
		return
	}
	if err := f.flushLocked(); err != nil {
		f.log.Warn().Err(err).Msg("retry delivered with errors")
	}
	f.scheduleLocked()
}

// Flush attempts to deliver queued notifications now. It stops at the first
// notification whose target is still unavailable. Notifications that fail
// for other reasons are dropped and their errors returned together.
func (f *Forwarder) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flushLocked()
}

func (f *Forwarder) flushLocked() error {
	var result *multierror.Error
	for len(f.pending) > 0 {
		c := f.pending[0]
		err := f.deliverLocked(c)
		if errors.Is(err, ErrTargetUnavailable) {
			break
		}
		if err != nil {
			result = multierror.Append(result, err)
		}
		f.pending = f.pending[1:]
	}
	if len(f.pending) == 0 {
		f.pending = nil
	}
	f.metrics.setPending(len(f.pending))
	return result.ErrorOrNil()
}

// Pending returns the number of queued notifications.
func (f *Forwarder) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// Close stops retries. Later notifications return ErrClosed. If
// notifications are still queued they are discarded and reported.
func (f *Forwarder) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}

	if n := len(f.pending); n > 0 {
		f.pending = nil
		f.metrics.setPending(0)
		return fmt.Errorf("discarded %d pending notifications: %w", n, ErrTargetUnavailable)
	}
	return nil
}
