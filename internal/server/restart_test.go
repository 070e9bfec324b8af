package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yarhs-io/yarhs/internal/config"
	"github.com/yarhs-io/yarhs/internal/netutil"
)

func TestRestartControllerBindsFirstListenerWithoutDraining(t *testing.T) {
	var counter ConnCounter
	rc := &RestartController{
		Name:     "test",
		Log:      logrus.New(),
		Counter:  &counter,
		Dispatch: func(context.Context, net.Conn) {},
	}

	ln, err := rc.Restart(context.Background(), nil, config.Endpoint{Host: "127.0.0.1", Port: 0})
	if err != nil {
		t.Fatalf("Restart() error = %v", err)
	}
	defer ln.Close()

	if ln.Addr() == nil {
		t.Fatal("expected a bound listener address")
	}
}

func TestRestartControllerDrainsOldListenerThenCloses(t *testing.T) {
	var counter ConnCounter
	dispatched := make(chan struct{}, 1)
	rc := &RestartController{
		Name:    "test",
		Log:     logrus.New(),
		Counter: &counter,
		Dispatch: func(ctx context.Context, conn net.Conn) {
			conn.Close()
			dispatched <- struct{}{}
		},
	}

	old, err := netutil.Listen(context.Background(), "127.0.0.1:0")
	if err != nil {
		t.Fatalf("netutil.Listen() error = %v", err)
	}
	oldAddr := old.Addr().(*net.TCPAddr)

	// Queue a connection in old's backlog before Restart takes over.
	go func() {
		conn, dialErr := net.Dial("tcp", oldAddr.String())
		if dialErr == nil {
			conn.Close()
		}
	}()
	time.Sleep(50 * time.Millisecond)

	next, err := rc.Restart(context.Background(), old, config.Endpoint{Host: "127.0.0.1", Port: 0})
	if err != nil {
		t.Fatalf("Restart() error = %v", err)
	}
	defer next.Close()

	select {
	case <-dispatched:
	case <-time.After(2 * time.Second):
		t.Fatal("expected the queued connection on the old listener to be drained and dispatched")
	}
}
