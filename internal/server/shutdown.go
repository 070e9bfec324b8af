package server

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yarhs-io/yarhs/internal/config"
)

// pollInterval is how often graceful shutdown samples the active-connection
// counters while waiting for them to quiesce, per spec.md §4.14.
const pollInterval = 500 * time.Millisecond

// GracefulShutdown waits for counters to drain to zero, or for
// max(read_timeout, write_timeout) to elapse since shutdown was requested,
// whichever comes first. It never aborts in-progress responses before the
// deadline; it only stops waiting.
func GracefulShutdown(ctx context.Context, log logrus.FieldLogger, perf config.Performance, counters ...*ConnCounter) {
	deadline := time.Now().Add(time.Duration(perf.ConnectionDeadline()) * time.Second)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if quiescent(counters) {
			log.Info("graceful shutdown: all connections drained")
			return
		}
		if time.Now().After(deadline) {
			log.Warn("graceful shutdown: deadline reached with connections still active, abandoning")
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func quiescent(counters []*ConnCounter) bool {
	for _, c := range counters {
		if c.Load() > 0 {
			return false
		}
	}
	return true
}
