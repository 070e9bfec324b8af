package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yarhs-io/yarhs/internal/config"
)

// oneShotListener adapts a single accepted net.Conn into a net.Listener so
// the stdlib HTTP/1.x engine (treated as the external wire library per
// spec.md §1) can drive it. The second Accept call blocks until Close,
// exactly mirroring how http.Server expects a listener to behave once its
// one connection is spent.
type oneShotListener struct {
	conn   net.Conn
	once   sync.Once
	closed chan struct{}
	addr   net.Addr
}

func newOneShotListener(conn net.Conn) *oneShotListener {
	return &oneShotListener{conn: conn, closed: make(chan struct{}), addr: conn.LocalAddr()}
}

func (l *oneShotListener) Accept() (net.Conn, error) {
	c := l.conn
	if c == nil {
		<-l.closed
		return nil, io.EOF
	}
	l.conn = nil
	return c, nil
}

func (l *oneShotListener) Close() error {
	l.once.Do(func() { close(l.closed) })
	return nil
}

func (l *oneShotListener) Addr() net.Addr { return l.addr }

// deadlineConn clamps every read/write deadline set by net/http to an
// absolute per-connection ceiling, so that keep-alive requests cannot push
// the connection's lifetime past max(read_timeout, write_timeout) seconds
// from accept (spec.md §4.7: "a deadline of max(read_timeout, write_timeout)
// seconds... read once at connection start, not re-read mid-connection").
type deadlineConn struct {
	net.Conn
	ceiling time.Time
}

func (c *deadlineConn) clamp(t time.Time) time.Time {
	if t.IsZero() || t.After(c.ceiling) {
		return c.ceiling
	}
	return t
}

func (c *deadlineConn) SetDeadline(t time.Time) error      { return c.Conn.SetDeadline(c.clamp(t)) }
func (c *deadlineConn) SetReadDeadline(t time.Time) error  { return c.Conn.SetReadDeadline(c.clamp(t)) }
func (c *deadlineConn) SetWriteDeadline(t time.Time) error { return c.Conn.SetWriteDeadline(c.clamp(t)) }

// ConnServer serves exactly one accepted connection with a single net/http
// engine, dispatching each request to handler.
type ConnServer struct {
	Log         logrus.FieldLogger
	Performance config.Performance
	Handler     http.Handler
}

// Serve blocks until the connection completes, times out, or ctx is
// canceled. The Performance snapshot is read once by the caller and passed
// in, never re-read for the lifetime of this connection.
func (s *ConnServer) Serve(ctx context.Context, conn net.Conn) {
	deadline := time.Now().Add(time.Duration(s.Performance.ConnectionDeadline()) * time.Second)
	wrapped := &deadlineConn{Conn: conn, ceiling: deadline}
	_ = wrapped.Conn.SetDeadline(deadline)

	ln := newOneShotListener(wrapped)
	defer ln.Close()

	srv := &http.Server{
		Handler:      s.Handler,
		ReadTimeout:  time.Duration(s.Performance.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Performance.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Performance.KeepAliveTimeout) * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
		// Once the single connection is finished, close the one-shot
		// listener so srv.Serve's pending Accept returns and Serve ends.
		ConnState: func(_ net.Conn, state http.ConnState) {
			if state == http.StateClosed || state == http.StateHijacked {
				_ = ln.Close()
			}
		},
	}
	srv.SetKeepAlivesEnabled(s.Performance.KeepAliveTimeout > 0)

	timer := time.AfterFunc(time.Until(deadline), func() {
		s.Log.WithField("remote", conn.RemoteAddr()).Warn("connection deadline exceeded, dropping")
		_ = conn.Close()
	})
	defer timer.Stop()

	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-ln.closed:
		}
	}()

	err := srv.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
		s.Log.WithError(err).WithField("remote", conn.RemoteAddr()).Debug("connection serve ended")
	}
}
