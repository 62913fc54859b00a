package shared

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"dominicbreuker/wsconnect/pkg/log"
)

// ShutdownGrace is how long a cancelled session may take to send its close
// frame and wait for the peer's reply before the process exits anyway.
const ShutdownGrace = 3 * time.Second

// SetupSignalHandling cancels the root context on the first termination
// signal, which makes an open session close its WebSocket. The process exits
// on a second signal or once grace has passed.
func SetupSignalHandling(cancel context.CancelFunc, grace time.Duration) {
	sigCh := make(chan os.Signal, 2)

	sigs := []os.Signal{os.Interrupt}
	if runtime.GOOS != "windows" {
		sigs = append(sigs, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
		// a closed stdout must not kill the process mid close handshake
		signal.Ignore(syscall.SIGPIPE)
	}
	signal.Notify(sigCh, sigs...)

	go handleSignals(sigCh, cancel, grace, os.Exit)
}

func handleSignals(sigCh <-chan os.Signal, cancel context.CancelFunc, grace time.Duration, exit func(int)) {
	s := <-sigCh
	log.InfoMsg("Received %s, closing session (repeat to force exit)\n", s)
	cancel()

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-sigCh:
		exit(exitCode(s))
	case <-timer.C:
		log.ErrorMsg("Session did not close within %v\n", grace)
		exit(exitCode(s))
	}
}

// exitCode maps s to the POSIX convention 128+signal number.
func exitCode(s os.Signal) int {
	if ss, ok := s.(syscall.Signal); ok {
		return 128 + int(ss)
	}
	return 1
}
