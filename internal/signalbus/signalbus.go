// Package signalbus maps OS signals to the reload/shutdown notifications
// consumed by the accept loops, grounded on the signal-handling goroutine in
// the teacher's cmd/contour/serve.go (SIGTERM/SIGINT -> context cancellation)
// and extended per spec.md §4.3 with a hangup-equivalent reload signal and
// reserved USR1/USR2 signals.
package signalbus

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/sirupsen/logrus"
)

// Bus exposes two notification channels derived from OS signals: Reload
// (SIGHUP) and Shutdown (SIGTERM, SIGINT). SIGUSR1/SIGUSR2 are observed and
// logged only, per spec.md's "reserved, logged only".
type Bus struct {
	log      logrus.FieldLogger
	reload   chan struct{}
	shutdown chan struct{}
	closed   atomic.Bool
	sigCh    chan os.Signal
}

// New creates a Bus and starts listening for signals immediately. Callers
// should call Stop when the bus is no longer needed to release the signal
// subscription.
func New(log logrus.FieldLogger) *Bus {
	b := &Bus{
		log:      log,
		reload:   make(chan struct{}, 1),
		shutdown: make(chan struct{}),
		sigCh:    make(chan os.Signal, 8),
	}
	signal.Notify(b.sigCh, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT, syscall.SIGUSR1, syscall.SIGUSR2)
	go b.run()
	return b
}

func (b *Bus) run() {
	for sig := range b.sigCh {
		switch sig {
		case syscall.SIGHUP:
			b.log.Info("received SIGHUP: reloading listeners and refreshing logging/http snapshots")
			b.notifyReload()
		case syscall.SIGTERM, syscall.SIGINT:
			b.log.WithField("signal", sig.String()).Info("received shutdown signal")
			b.notifyShutdown()
			return
		case syscall.SIGUSR1:
			b.log.Info("received SIGUSR1 (reserved): log reopen, no behavior implemented")
		case syscall.SIGUSR2:
			b.log.Info("received SIGUSR2 (reserved): binary upgrade, no behavior implemented")
		}
	}
}

func (b *Bus) notifyReload() {
	select {
	case b.reload <- struct{}{}:
	default:
	}
}

func (b *Bus) notifyShutdown() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.shutdown)
	}
}

// Reload fires once per SIGHUP, coalesced if multiple arrive before being
// consumed.
func (b *Bus) Reload() <-chan struct{} { return b.reload }

// Shutdown closes once, on first SIGTERM or SIGINT.
func (b *Bus) Shutdown() <-chan struct{} { return b.shutdown }

// Stop releases the underlying signal subscription.
func (b *Bus) Stop() {
	signal.Stop(b.sigCh)
}
