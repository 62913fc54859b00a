package shared

import (
	"os"
	"syscall"
	"testing"
	"time"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sig  os.Signal
		want int
	}{
		{syscall.SIGINT, 130},
		{syscall.SIGTERM, 143},
		{syscall.SIGHUP, 129},
	}

	for _, tt := range tests {
		if got := exitCode(tt.sig); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.sig, got, tt.want)
		}
	}
}

// runHandler starts handleSignals and returns the channel receiving its exit code.
func runHandler(sigCh chan os.Signal, cancelled chan struct{}, grace time.Duration) <-chan int {
	exited := make(chan int, 1)
	cancel := func() { close(cancelled) }
	go handleSignals(sigCh, cancel, grace, func(code int) { exited <- code })
	return exited
}

func TestHandleSignals_SecondSignalForcesExit(t *testing.T) {
	t.Parallel()

	sigCh := make(chan os.Signal, 2)
	cancelled := make(chan struct{})
	exited := runHandler(sigCh, cancelled, time.Minute)

	sigCh <- syscall.SIGTERM
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("first signal did not cancel the context")
	}

	select {
	case code := <-exited:
		t.Fatalf("exited with %d after one signal", code)
	case <-time.After(50 * time.Millisecond):
	}

	sigCh <- syscall.SIGTERM
	select {
	case code := <-exited:
		if code != 143 {
			t.Errorf("exit code = %d, want 143", code)
		}
	case <-time.After(time.Second):
		t.Fatal("second signal did not exit")
	}
}

func TestHandleSignals_GraceExpires(t *testing.T) {
	t.Parallel()

	sigCh := make(chan os.Signal, 1)
	cancelled := make(chan struct{})
	exited := runHandler(sigCh, cancelled, 20*time.Millisecond)

	sigCh <- syscall.SIGINT
	select {
	case code := <-exited:
		if code != 130 {
			t.Errorf("exit code = %d, want 130", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("did not exit after the grace period")
	}

	select {
	case <-cancelled:
	default:
		t.Error("context was not cancelled before exiting")
	}
}
