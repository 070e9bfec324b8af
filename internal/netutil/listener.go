// Package netutil builds the reusable TCP listeners that make zero-downtime
// restarts possible: SO_REUSEPORT lets a replacement listener bind the same
// (host, port) while the old one is still draining, and SO_REUSEADDR lets a
// bind through a TIME_WAIT socket left by an unrelated prior process.
// Grounded on the raw-fd listener setup in
// _examples/other_examples/4f40915e_Ankit-Kulkarni-go-experiments__graceful_restarts-SocketHandoff-main.go.go,
// adapted from FD-handoff to SO_REUSEPORT overlap.
package netutil

import (
	"context"
	"fmt"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// OptionError distinguishes a setsockopt failure from a bind failure, per
// spec.md §4.4's "must return a distinct error for bind failed vs.
// option-set failed".
type OptionError struct {
	Option string
	Err    error
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("netutil: setting %s: %v", e.Option, e.Err)
}

func (e *OptionError) Unwrap() error { return e.Err }

// BindError wraps a listen(2)/bind(2) failure.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("netutil: binding %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// Listen creates a non-blocking TCP listener on addr with SO_REUSEPORT and
// SO_REUSEADDR set. The network (tcp4/tcp6) is chosen by net.Listen's own
// address-family inference. The listen backlog is left at the platform
// default (somaxconn): net.ListenConfig exposes no API to set it.
func Listen(ctx context.Context, addr string) (net.Listener, error) {
	var optErr error
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			return c.Control(func(fd uintptr) {
				if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
					optErr = &OptionError{Option: "SO_REUSEPORT", Err: err}
					return
				}
				if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
					optErr = &OptionError{Option: "SO_REUSEADDR", Err: err}
					return
				}
			})
		},
	}

	ln, err := lc.Listen(ctx, "tcp", addr)
	if optErr != nil {
		return nil, optErr
	}
	if err != nil {
		return nil, &BindError{Addr: addr, Err: err}
	}
	return ln, nil
}
