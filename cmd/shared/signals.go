package shared

import (
	"context"
	"dominicbreuker/netterm/pkg/log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"
)

// shutdownGrace is how long a cancelled session may take to close its
// sockets and restore the terminal.
const shutdownGrace = 5 * time.Second

// SetupSignalHandling cancels the session on the first signal. A second
// signal, or a session that outlives the grace period, ends the process.
// The returned function stops the handling.
func SetupSignalHandling(cancel context.CancelFunc) func() {
	sigCh := make(chan os.Signal, 2)

	sigs := []os.Signal{os.Interrupt}
	if runtime.GOOS != "windows" {
		sigs = append(sigs, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
		// writes to a peer that went away must fail, not kill us
		signal.Ignore(syscall.SIGPIPE)
	}
	signal.Notify(sigCh, sigs...)

	stop := make(chan struct{})
	go func() {
		var s os.Signal
		select {
		case s = <-sigCh:
		case <-stop:
			return
		}
		cancel()

		select {
		case <-sigCh:
			log.ErrorMsg("Interrupted twice, exiting\n")
			if ss, ok := s.(syscall.Signal); ok {
				os.Exit(128 + int(ss))
			}
			os.Exit(1)
		case <-time.After(shutdownGrace):
			os.Exit(0)
		case <-stop:
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(stop)
	}
}
