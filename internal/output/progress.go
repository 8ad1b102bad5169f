package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const (
	spinnerInterval = 100 * time.Millisecond
	// Elapsed time is appended once an operation takes longer than this.
	spinnerShowElapsed = 2 * time.Second
)

// Spinner shows progress for the short blocking steps of the watch command
// (starting or stopping the daemon, draining the pipeline).
//
// On a terminal it animates in place; anywhere else it prints the message
// once so daemon logs and redirected output stay readable.
type Spinner struct {
	mu      sync.Mutex
	w       io.Writer
	message string
	started time.Time
	running bool
	done    chan struct{}
	exited  chan struct{}
}

// NewSpinner returns a stopped spinner writing to stdout.
func NewSpinner(message string) *Spinner {
	return &Spinner{w: os.Stdout, message: message}
}

// SetWriter redirects the spinner's output.
func (s *Spinner) SetWriter(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w = w
}

func isTTY(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && isatty.IsTerminal(f.Fd())
}

// Start shows the spinner. Calling it on a running spinner does nothing.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.started = time.Now()

	if !isTTY(s.w) {
		fmt.Fprintf(s.w, "%s...\n", s.message)
		return
	}

	s.done = make(chan struct{})
	s.exited = make(chan struct{})
	go s.animate(s.done, s.exited)
}

func (s *Spinner) animate(done <-chan struct{}, exited chan<- struct{}) {
	defer close(exited)

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		s.mu.Lock()
		fmt.Fprintf(s.w, "\r%s %s", spinnerFrames[frame%len(spinnerFrames)], s.line())
		s.mu.Unlock()

		select {
		case <-ticker.C:
		case <-done:
			return
		}
	}
}

// line is the message plus elapsed seconds for slow steps. Callers hold mu.
func (s *Spinner) line() string {
	elapsed := time.Since(s.started)
	if elapsed < spinnerShowElapsed {
		return s.message
	}
	return fmt.Sprintf("%s (%ds)", s.message, int(elapsed.Seconds()))
}

// Stop hides the spinner. It returns once the animation has stopped
// writing, so output printed afterwards is never overwritten.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	done, exited := s.done, s.exited
	s.done, s.exited = nil, nil
	s.mu.Unlock()

	if done == nil {
		return
	}
	close(done)
	<-exited

	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.line())+2))
}

// StopWithMessage stops the spinner and prints message on its own line.
func (s *Spinner) StopWithMessage(message string) {
	s.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, message)
}
