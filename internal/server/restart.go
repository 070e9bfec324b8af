package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yarhs-io/yarhs/internal/config"
	"github.com/yarhs-io/yarhs/internal/netutil"
)

// drainWindow is the fixed interval an old listener keeps accepting its
// kernel backlog after a replacement has bound, per spec.md §4.6. It is a
// time bound, not a connection-count bound: it never waits for in-flight
// requests, since those are already tracked by the shared connection
// counter.
const drainWindow = 100 * time.Millisecond

// RestartController implements the bind-new/drain-old/swap handoff protocol
// for a single listener.
type RestartController struct {
	Name    string
	Log     logrus.FieldLogger
	Counter *ConnCounter

	// Dispatch handles one accepted connection; shared by the drain task and
	// the accept loop so in-flight work is indistinguishable once accepted.
	Dispatch func(ctx context.Context, conn net.Conn)
}

// Restart binds a replacement listener for newAddr. On success it returns
// the new listener and spawns a drain task against old (which may be nil on
// the very first bind). On bind failure, old is returned unchanged and the
// caller is responsible for clearing the staged endpoint (non-force case).
func (rc *RestartController) Restart(ctx context.Context, old net.Listener, newAddr config.Endpoint) (net.Listener, error) {
	addr := net.JoinHostPort(newAddr.Host, fmtPort(newAddr.Port))

	next, err := netutil.Listen(ctx, addr)
	if err != nil {
		rc.Log.WithError(err).WithField("addr", addr).Warn("listener restart: bind failed, keeping old listener")
		return old, fmt.Errorf("restart %s: %w", rc.Name, err)
	}

	mode := "switch"
	if old != nil && old.Addr().String() == next.Addr().String() {
		mode = "overlap"
	}
	rc.Log.WithFields(logrus.Fields{
		"listener": rc.Name,
		"addr":     addr,
		"mode":     mode,
	}).Info("listener restart: bound replacement")

	if old != nil {
		go rc.drain(old)
	}
	return next, nil
}

// drain accepts and dispatches connections already queued in old's kernel
// backlog for drainWindow, then closes it, releasing the kernel socket.
// In-flight tasks spawned here continue independently of drain's own
// deadline; only the accept loop itself is bounded.
func (rc *RestartController) drain(old net.Listener) {
	deadline := time.Now().Add(drainWindow)
	_ = old.(interface{ SetDeadline(time.Time) error }).SetDeadline(deadline)

	defer func() {
		if err := old.Close(); err != nil {
			rc.Log.WithError(err).WithField("listener", rc.Name).Debug("listener restart: old listener close")
		}
	}()

	for {
		conn, err := old.Accept()
		if err != nil {
			return
		}
		rc.Counter.Inc()
		go func() {
			defer rc.Counter.Dec()
			rc.Dispatch(context.Background(), conn)
		}()
	}
}

func fmtPort(p uint16) string {
	return fmt.Sprintf("%d", p)
}
