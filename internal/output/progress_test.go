package output

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestSpinner_NonTTYPrintsOnce(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSpinner("Starting daemon")
	s.SetWriter(buf)

	s.Start()
	s.Start()
	time.Sleep(150 * time.Millisecond)
	s.Stop()

	if got := buf.String(); got != "Starting daemon...\n" {
		t.Errorf("spinner output = %q, want a single message line", got)
	}
}

func TestSpinner_StartStop(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSpinner("Test")
	s.SetWriter(buf)

	s.Start()
	if !s.running {
		t.Error("Spinner should be running after Start()")
	}

	s.Stop()
	if s.running {
		t.Error("Spinner should not be running after Stop()")
	}
}

func TestSpinner_MultipleStops(t *testing.T) {
	s := NewSpinner("Test")
	s.SetWriter(&bytes.Buffer{})
	s.Start()

	// Multiple stops should not panic
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinner_StopWithoutStart(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSpinner("Never shown")
	s.SetWriter(buf)

	s.StopWithMessage("Done")

	if got := buf.String(); got != "Done\n" {
		t.Errorf("output = %q, want %q", got, "Done\n")
	}
}

func TestSpinner_StopWithMessage(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSpinner("Working")
	s.SetWriter(buf)
	s.Start()

	s.StopWithMessage("✓ Done")

	output := buf.String()
	if !strings.Contains(output, "Working...") {
		t.Errorf("output missing start message, got: %q", output)
	}
	if !strings.HasSuffix(output, "✓ Done\n") {
		t.Errorf("output should end with final message, got: %q", output)
	}
}

func TestSpinner_LineShowsElapsedForSlowSteps(t *testing.T) {
	s := NewSpinner("Stopping daemon")

	s.started = time.Now()
	if got := s.line(); got != "Stopping daemon" {
		t.Errorf("line() = %q, want plain message", got)
	}

	s.started = time.Now().Add(-5 * time.Second)
	if got := s.line(); got != "Stopping daemon (5s)" {
		t.Errorf("line() = %q, want %q", got, "Stopping daemon (5s)")
	}
}

func TestSpinner_AnimateUntilDone(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSpinner("Starting daemon")
	s.SetWriter(buf)
	s.started = time.Now()

	done := make(chan struct{})
	exited := make(chan struct{})
	go s.animate(done, exited)

	time.Sleep(250 * time.Millisecond)
	close(done)

	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("animation did not stop")
	}

	out := buf.String()
	if strings.Count(out, "Starting daemon") < 2 {
		t.Errorf("animation drew fewer than two frames: %q", out)
	}
	if !strings.HasPrefix(out, "\r"+spinnerFrames[0]+" ") {
		t.Errorf("animation output = %q, want it to start with the first frame", out)
	}
}

func TestSpinner_ConcurrentStop(t *testing.T) {
	s := NewSpinner("Concurrent")
	s.SetWriter(&bytes.Buffer{})
	s.Start()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Stop()
		}()
	}
	wg.Wait()

	if s.running {
		t.Error("spinner still running after Stop()")
	}
}

func BenchmarkFormatRelativeTime(b *testing.B) {
	t := time.Now().Add(-36 * time.Hour)
	for i := 0; i < b.N; i++ {
		formatRelativeTime(t)
	}
}
