package telnet_test

import (
	"context"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/dicetray/internal/config"
	"github.com/cory-johannsen/dicetray/internal/frontend/telnet"
	"github.com/cory-johannsen/dicetray/internal/testutil"
)

// upperHandler answers every line with its upper-cased text until "quit".
type upperHandler struct {
	sessions atomic.Int32
}

func (h *upperHandler) HandleSession(_ context.Context, conn *telnet.Conn) error {
	h.sessions.Add(1)
	for {
		line, err := conn.ReadLine()
		if err != nil {
			return err
		}
		if line == "quit" {
			return conn.WriteLine("bye")
		}
		if err := conn.WriteLine("> " + strings.ToUpper(line)); err != nil {
			return err
		}
	}
}

func startAcceptor(t *testing.T, handler telnet.SessionHandler) (*telnet.Acceptor, <-chan error) {
	t.Helper()
	cfg := config.TelnetConfig{
		Host:         "127.0.0.1",
		Port:         0,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	acc := telnet.NewAcceptor(cfg, handler, zaptest.NewLogger(t))
	errCh := make(chan error, 1)
	go func() { errCh <- acc.ListenAndServe() }()

	select {
	case <-acc.Ready():
	case err := <-errCh:
		t.Fatalf("acceptor failed to start: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("acceptor did not start in time")
	}
	require.NotEmpty(t, acc.Addr())
	return acc, errCh
}

func TestAcceptor_ServesAndStops(t *testing.T) {
	handler := &upperHandler{}
	acc, errCh := startAcceptor(t, handler)

	client := testutil.NewTelnetClient(t, acc.Addr())
	client.Command("2d6+1", "> 2D6+1")
	client.Command("quit", "bye")
	client.Close()

	acc.Stop()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("acceptor did not stop in time")
	}
	assert.Equal(t, int32(1), handler.sessions.Load())
}

func TestAcceptor_StopDisconnectsIdleClients(t *testing.T) {
	handler := &upperHandler{}
	acc, errCh := startAcceptor(t, handler)

	const clients = 3
	for i := 0; i < clients; i++ {
		c := testutil.NewTelnetClient(t, acc.Addr())
		c.Command("d20", "> D20")
	}
	assert.Equal(t, clients, acc.ActiveSessions())

	stopped := make(chan struct{})
	go func() {
		acc.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop blocked on idle sessions")
	}
	assert.NoError(t, <-errCh)
	assert.Equal(t, 0, acc.ActiveSessions())
	acc.Stop()
}

func TestAcceptor_ListenError(t *testing.T) {
	acc, _ := startAcceptor(t, &upperHandler{})
	defer acc.Stop()

	host, port := splitAddr(t, acc.Addr())
	dup := telnet.NewAcceptor(config.TelnetConfig{Host: host, Port: port}, &upperHandler{}, zaptest.NewLogger(t))
	assert.Error(t, dup.ListenAndServe())
}

func TestSessionHandlerFunc(t *testing.T) {
	called := false
	h := telnet.SessionHandlerFunc(func(context.Context, *telnet.Conn) error {
		called = true
		return nil
	})
	require.NoError(t, h.HandleSession(context.Background(), nil))
	assert.True(t, called)
}

func splitAddr(t *testing.T, addr string) (string, int) {
	t.Helper()
	host, p, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(p)
	require.NoError(t, err)
	return host, port
}
