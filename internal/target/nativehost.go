package target

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/apps2desktop/internal/forwarder"
	"github.com/blackwell-systems/apps2desktop/internal/nativemsg"
)

// HostMessage is the frame sent to a native host for each call.
type HostMessage struct {
	Method string      `json:"method"`
	Params interface{} `json:"params"`
}

// AddParams carries the arguments of an add call.
type AddParams struct {
	Name      string `json:"name"`
	ID        string `json:"id"`
	Version   string `json:"version"`
	LaunchURL string `json:"launchUrl,omitempty"`
	Enabled   bool   `json:"enabled"`
}

// IDParams carries the argument of enable, disable and remove calls.
type IDParams struct {
	ID string `json:"id"`
}

// NativeHost is a target backed by an external helper process speaking the
// native messaging protocol on stdin/stdout. Calls are fire-and-forget:
// replies are read and logged but never returned to the caller.
type NativeHost struct {
	enc   *nativemsg.Encoder
	stdin io.Closer
	log   zerolog.Logger

	done    chan struct{}
	drained chan struct{}

	mu      sync.Mutex
	exited  bool
	exitErr error
}

var _ forwarder.Target = (*NativeHost)(nil)

// StartNativeHost launches command and returns the running host. onExit,
// if non-nil, is called once from a background goroutine when the process
// exits.
func StartNativeHost(ctx context.Context, command []string, log zerolog.Logger, onExit func(*NativeHost, error)) (*NativeHost, error) {
	if len(command) == 0 {
		return nil, errors.New("native host command is empty")
	}

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open host stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open host stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start native host %s: %w", command[0], err)
	}

	h := newNativeHost(stdin, stdout, log.With().Str("host", command[0]).Int("pid", cmd.Process.Pid).Logger())
	h.log.Info().Msg("native host started")

	go func() {
		// Wait closes stdout, so every read must finish first.
		<-h.drained
		err := cmd.Wait()
		h.markExited(err)
		if onExit != nil {
			onExit(h, err)
		}
	}()

	return h, nil
}

func newNativeHost(w io.WriteCloser, r io.Reader, log zerolog.Logger) *NativeHost {
	h := &NativeHost{
		enc:     nativemsg.NewEncoder(w),
		stdin:   w,
		log:     log.With().Str("component", "native-host").Logger(),
		done:    make(chan struct{}),
		drained: make(chan struct{}),
	}
	go h.drain(r)
	return h
}

// drain logs replies until the host closes stdout.
func (h *NativeHost) drain(r io.Reader) {
	defer close(h.drained)

	dec := nativemsg.NewDecoder(r)
	for {
		raw, err := dec.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			// The framing is lost. Keep reading so the host never blocks
			// on a full stdout pipe and stops taking our writes.
			h.log.Warn().Err(err).Msg("failed to read host reply, discarding further output")
			n, _ := io.Copy(io.Discard, r)
			h.log.Debug().Int64("bytes", n).Msg("discarded host output")
			return
		}
		h.log.Debug().RawJSON("reply", raw).Msg("host reply")
	}
}

func (h *NativeHost) markExited(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.exited {
		return
	}
	h.exited = true
	h.exitErr = err
	close(h.done)

	if err != nil {
		h.log.Warn().Err(err).Msg("native host exited")
	} else {
		h.log.Info().Msg("native host exited")
	}
}

// Done is closed when the host process has exited.
func (h *NativeHost) Done() <-chan struct{} {
	return h.done
}

func (h *NativeHost) send(method string, params interface{}) error {
	h.mu.Lock()
	exited := h.exited
	h.mu.Unlock()
	if exited {
		return fmt.Errorf("native host has exited: %w", forwarder.ErrTargetUnavailable)
	}

	if err := h.enc.Encode(HostMessage{Method: method, Params: params}); err != nil {
		// A broken pipe means the host is gone; let the forwarder retry.
		return fmt.Errorf("%v: %w", err, forwarder.ErrTargetUnavailable)
	}
	return nil
}

func (h *NativeHost) Add(name, id, version, launchURL string, enabled bool) error {
	return h.send(string(forwarder.OpAdd), AddParams{
		Name:      name,
		ID:        id,
		Version:   version,
		LaunchURL: launchURL,
		Enabled:   enabled,
	})
}

func (h *NativeHost) Enable(id string) error {
	return h.send(string(forwarder.OpEnable), IDParams{ID: id})
}

func (h *NativeHost) Disable(id string) error {
	return h.send(string(forwarder.OpDisable), IDParams{ID: id})
}

func (h *NativeHost) Remove(id string) error {
	return h.send(string(forwarder.OpRemove), IDParams{ID: id})
}

// Close closes the host's stdin, which asks it to exit.
func (h *NativeHost) Close() error {
	return h.stdin.Close()
}
