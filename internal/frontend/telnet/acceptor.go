package telnet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicetray/internal/config"
)

// SessionHandler runs the command loop for one connected client.
type SessionHandler interface {
	HandleSession(ctx context.Context, conn *Conn) error
}

// SessionHandlerFunc adapts a function into a SessionHandler.
type SessionHandlerFunc func(ctx context.Context, conn *Conn) error

// HandleSession calls f.
func (f SessionHandlerFunc) HandleSession(ctx context.Context, conn *Conn) error {
	return f(ctx, conn)
}

// Acceptor listens for Telnet clients and hands each to a SessionHandler.
// Stop closes the listener and every open client connection.
type Acceptor struct {
	cfg     config.TelnetConfig
	handler SessionHandler
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	ready  chan struct{}
	wg     sync.WaitGroup
	active atomic.Int64

	mu       sync.Mutex
	listener net.Listener
	conns    map[*Conn]struct{}
	stopped  bool
}

// NewAcceptor creates an Acceptor.
//
// Precondition: handler and logger must be non-nil.
func NewAcceptor(cfg config.TelnetConfig, handler SessionHandler, logger *zap.Logger) *Acceptor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Acceptor{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		ready:   make(chan struct{}),
		conns:   make(map[*Conn]struct{}),
	}
}

// ListenAndServe accepts clients until Stop is called.
//
// Postcondition: returns nil after Stop, or the listen error.
func (a *Acceptor) ListenAndServe() error {
	listener, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}

	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return listener.Close()
	}
	a.listener = listener
	a.mu.Unlock()
	close(a.ready)

	a.logger.Info("telnet acceptor listening", zap.String("addr", listener.Addr().String()))

	for {
		raw, err := listener.Accept()
		if err != nil {
			if a.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			a.logger.Warn("accepting connection", zap.Error(err))
			continue
		}
		a.wg.Add(1)
		go a.serve(raw)
	}
}

func (a *Acceptor) serve(raw net.Conn) {
	defer a.wg.Done()
	start := time.Now()
	logger := a.logger.With(zap.String("remote_addr", raw.RemoteAddr().String()))

	conn := NewConn(raw, a.cfg.ReadTimeout, a.cfg.WriteTimeout)
	if !a.track(conn) {
		_ = conn.Close()
		return
	}
	defer a.untrack(conn)

	n := a.active.Add(1)
	defer a.active.Add(-1)
	logger.Info("client connected", zap.Int64("active", n))

	if err := conn.Negotiate(); err != nil {
		logger.Warn("telnet negotiation failed", zap.Error(err))
		return
	}

	err := a.handler.HandleSession(a.ctx, conn)
	fields := []zap.Field{zap.Duration("duration", time.Since(start))}
	if err != nil && a.ctx.Err() == nil {
		logger.Debug("session ended", append(fields, zap.Error(err))...)
		return
	}
	logger.Info("session ended", fields...)
}

func (a *Acceptor) track(conn *Conn) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return false
	}
	a.conns[conn] = struct{}{}
	return true
}

func (a *Acceptor) untrack(conn *Conn) {
	a.mu.Lock()
	delete(a.conns, conn)
	a.mu.Unlock()
	_ = conn.Close()
}

// Stop closes the listener, disconnects every client and waits for their
// sessions to return. Calling Stop more than once is a no-op.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.stopped = true
	a.cancel()
	if a.listener != nil {
		_ = a.listener.Close()
	}
	for conn := range a.conns {
		_ = conn.Close()
	}
	a.mu.Unlock()

	a.wg.Wait()
	a.logger.Info("telnet acceptor stopped")
}

// Ready is closed once the listener is bound.
func (a *Acceptor) Ready() <-chan struct{} {
	return a.ready
}

// Addr returns the bound address, or "" before the listener is up.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// ActiveSessions returns the number of connected clients.
func (a *Acceptor) ActiveSessions() int {
	return int(a.active.Load())
}
