package server

import (
	"context"
	"errors"
	"net"

	"github.com/sirupsen/logrus"

	"github.com/yarhs-io/yarhs/internal/connid"
	"github.com/yarhs-io/yarhs/internal/metrics"
	"github.com/yarhs-io/yarhs/internal/xds"
)

// AcceptLoop owns one listener's lifetime: accept, dispatch, and reload.
// Exactly one of these runs per listener (data-plane, management), per
// spec.md §4.5.
type AcceptLoop struct {
	Name     string
	Log      logrus.FieldLogger
	Store    *xds.Store
	Staged   *StagedEndpoint
	Reload   <-chan struct{}
	Counter  *ConnCounter
	Metrics  *metrics.Metrics
	EnforceMax bool // data-plane listener enforces Performance.MaxConnections; management does not.
	Dispatch func(ctx context.Context, conn net.Conn)

	restart *RestartController
}

// Run accepts connections on ln until ctx is canceled, handling reload
// notifications fairly: a pending reload is observed before the loop blocks
// again, but a reload never preempts an in-progress accept (spec.md §4.5).
func (a *AcceptLoop) Run(ctx context.Context, ln net.Listener) error {
	a.restart = &RestartController{
		Name:     a.Name,
		Log:      a.Log,
		Counter:  a.Counter,
		Dispatch: a.Dispatch,
	}

	current := ln
	defer func() {
		if current != nil {
			_ = current.Close()
		}
	}()

	type acceptResult struct {
		ln   net.Listener
		conn net.Conn
		err  error
	}
	accepted := make(chan acceptResult, 1)

	startAccept := func(l net.Listener) {
		go func() {
			conn, err := l.Accept()
			accepted <- acceptResult{ln: l, conn: conn, err: err}
		}()
	}
	startAccept(current)

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-a.Reload:
			next, err := a.handleReload(ctx, current)
			if err != nil {
				if a.Metrics != nil {
					a.Metrics.ReloadFailures.WithLabelValues(a.Name).Inc()
				}
				continue
			}
			if next != current {
				current = next
				startAccept(current)
				if a.Metrics != nil {
					a.Metrics.ListenerReloads.WithLabelValues(a.Name).Inc()
				}
			}

		case res := <-accepted:
			if res.ln != current {
				// Result of an Accept still pending on a listener replaced by
				// a reload: serve a connection it got, ignore its close error.
				if res.err == nil {
					a.handleAccept(ctx, res.conn)
				}
				continue
			}
			if res.err != nil {
				if errors.Is(res.err, net.ErrClosed) {
					return nil
				}
				a.Log.WithError(res.err).WithField("listener", a.Name).Warn("accept error")
				startAccept(current)
				continue
			}
			a.handleAccept(ctx, res.conn)
			startAccept(current)
		}
	}
}

func (a *AcceptLoop) handleAccept(ctx context.Context, conn net.Conn) {
	limit := a.maxConnections()
	if !a.Counter.TryAcquire(limit) {
		if a.Metrics != nil {
			a.Metrics.RejectedConn.WithLabelValues(a.Name).Inc()
		}
		_ = conn.Close()
		return
	}
	if a.Metrics != nil {
		a.Metrics.AcceptedConn.WithLabelValues(a.Name).Inc()
		a.Metrics.ActiveConnections.WithLabelValues(a.Name).Set(float64(a.Counter.Load()))
	}
	go func() {
		defer func() {
			a.Counter.Dec()
			if a.Metrics != nil {
				a.Metrics.ActiveConnections.WithLabelValues(a.Name).Set(float64(a.Counter.Load()))
			}
		}()
		a.Dispatch(connid.WithID(ctx), conn)
	}()
}

func (a *AcceptLoop) maxConnections() *uint64 {
	if !a.EnforceMax {
		return nil
	}
	return a.Store.Performance().ReadSnapshot().MaxConnections
}

func (a *AcceptLoop) handleReload(ctx context.Context, current net.Listener) (net.Listener, error) {
	endpoint, ok := a.Staged.TakeIfSet()
	if !ok {
		a.Log.WithField("listener", a.Name).Debug("reload notified with no staged endpoint")
		return current, nil
	}

	next, err := a.restart.Restart(ctx, current, endpoint)
	if err != nil {
		a.Staged.Clear()
		return current, err
	}
	return next, nil
}
