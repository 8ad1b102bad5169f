package target

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// HostSupervisor keeps a native host running and registered. While the
// host is down the element is unregistered, so the forwarder queues
// notifications until the restarted host is back.
type HostSupervisor struct {
	reg          *Registry
	id           string
	command      []string
	restartDelay time.Duration
	log          zerolog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.Mutex
	host *NativeHost
}

func NewHostSupervisor(reg *Registry, id string, command []string, restartDelay time.Duration, log zerolog.Logger) *HostSupervisor {
	if restartDelay <= 0 {
		restartDelay = 2 * time.Second
	}
	return &HostSupervisor{
		reg:          reg,
		id:           id,
		command:      command,
		restartDelay: restartDelay,
		log:          log.With().Str("component", "host-supervisor").Str("element", id).Logger(),
	}
}

// Start launches the host and registers it. A host that fails to start
// the first time is reported; later failures are retried.
func (s *HostSupervisor) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	h, err := s.launch(ctx)
	if err != nil {
		s.cancel()
		return err
	}

	s.wg.Add(1)
	go s.run(ctx, h)
	return nil
}

func (s *HostSupervisor) launch(ctx context.Context) (*NativeHost, error) {
	h, err := StartNativeHost(ctx, s.command, s.log, nil)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.host = h
	s.mu.Unlock()

	s.reg.Register(s.id, h)
	return h, nil
}

func (s *HostSupervisor) run(ctx context.Context, h *NativeHost) {
	defer s.wg.Done()

	for {
		if h != nil {
			select {
			case <-h.Done():
				s.reg.Unregister(s.id, h)
			case <-ctx.Done():
				s.reg.Unregister(s.id, h)
				return
			}
		}

		select {
		case <-time.After(s.restartDelay):
		case <-ctx.Done():
			return
		}
		if ctx.Err() != nil {
			return
		}

		var err error
		h, err = s.launch(ctx)
		if err != nil {
			s.log.Error().Err(err).Dur("retry_in", s.restartDelay).Msg("failed to restart native host")
		}
	}
}

// Stop asks the current host to exit and waits for the supervisor loop.
func (s *HostSupervisor) Stop() error {
	var err error
	s.mu.Lock()
	if s.host != nil {
		err = s.host.Close()
	}
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	return err
}
