// Package handlers runs the dice tray command loop for Telnet sessions.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicetray/internal/config"
	"github.com/cory-johannsen/dicetray/internal/frontend/telnet"
	"github.com/cory-johannsen/dicetray/internal/game/command"
	"github.com/cory-johannsen/dicetray/internal/game/dice"
	"github.com/cory-johannsen/dicetray/internal/scripting"
	"github.com/cory-johannsen/dicetray/internal/tray"
)

// TrayHandler gives every Telnet session its own Tray over a shared catalog
// and macro set.
type TrayHandler struct {
	cfg       config.Config
	catalog   *tray.Catalog
	macros    *scripting.Manager
	newSource func() dice.Source
	registry  *command.Registry
	logger    *zap.Logger
}

// NewTrayHandler creates a TrayHandler. macros may be nil to disable macros;
// newSource is called once per session.
//
// Precondition: catalog, newSource and logger must be non-nil.
// Postcondition: returns an error if cfg.Dice.DefaultSet is not in catalog.
func NewTrayHandler(
	cfg config.Config,
	catalog *tray.Catalog,
	macros *scripting.Manager,
	newSource func() dice.Source,
	logger *zap.Logger,
) (*TrayHandler, error) {
	if _, ok := catalog.Set(cfg.Dice.DefaultSet); !ok {
		return nil, fmt.Errorf("%w %q", tray.ErrUnknownSet, cfg.Dice.DefaultSet)
	}
	return &TrayHandler{
		cfg:       cfg,
		catalog:   catalog,
		macros:    macros,
		newSource: newSource,
		registry:  command.DefaultRegistry(),
		logger:    logger,
	}, nil
}

// session is the per-connection state of one tray.
type session struct {
	h      *TrayHandler
	ctx    context.Context
	conn   *telnet.Conn
	tray   *tray.Tray
	logger *zap.Logger

	reveals sync.WaitGroup
}

// HandleSession runs the command loop until the client quits or disconnects.
//
// Postcondition: returns nil on quit; any in-flight reveal has stopped.
func (h *TrayHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	ctx, cancel := context.WithCancel(ctx)
	s := h.newSession(ctx, conn)
	defer func() {
		cancel()
		s.reveals.Wait()
	}()

	_ = conn.WriteLine(telnet.Colorize(telnet.BrightYellow, "Dice tray ready.") + " Type a specifier like 2d6+1, or help.")
	_ = conn.WritePrompt(Prompt)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := conn.ReadLine()
		if errors.Is(err, telnet.ErrLineTooLong) {
			s.notify("Error: input line too long")
			_ = conn.WritePrompt(Prompt)
			continue
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		if s.dispatch(line) {
			return nil
		}
		_ = conn.WritePrompt(Prompt)
	}
}

func (h *TrayHandler) newSession(ctx context.Context, conn *telnet.Conn) *session {
	logger := h.logger.With(zap.String("remote_addr", conn.RemoteAddr().String()))
	s := &session{h: h, ctx: ctx, conn: conn, logger: logger}

	set, _ := h.catalog.Set(h.cfg.Dice.DefaultSet)
	s.tray = tray.NewTray(
		h.catalog,
		tray.NewSelectionStore(set),
		tray.NewRollStore(),
		tray.NewHistoryStore(h.cfg.History.Capacity),
		dice.NewRoller(h.newSource(), logger),
		tray.NotifierFunc(s.notify),
		logger,
		tray.WithRevealer(s),
		tray.WithCompletionHook(s.completed),
		tray.WithKeptFaces(h.cfg.Dice.KeptFaces),
		tray.WithMaxDice(h.cfg.Tray.MaxDice),
	)
	return s
}

func (s *session) notify(msg string) {
	_ = s.conn.WriteLine(telnet.Colorize(telnet.Red, msg))
}

func (s *session) say(text string) {
	_ = s.conn.WriteLine(text)
}

func (s *session) sayf(format string, args ...any) {
	_ = s.conn.Writef(format, args...)
}

// Reveal announces the roll and shows one die every reveal delay. It stops
// early when the session ends or the roll is cleared.
func (s *session) Reveal(res tray.Resolution, record tray.RecordFunc) {
	s.say(RenderLaunch(res))
	s.reveals.Add(1)
	go func() {
		defer s.reveals.Done()
		for _, d := range res.Dice {
			if !s.pause() || !record(d.Instance, d.Roll) {
				return
			}
			s.say(RenderReveal(d))
		}
		s.say(RenderTotal(res))
		_ = s.conn.WritePrompt(Prompt)
	}()
}

func (s *session) pause() bool {
	delay := s.h.cfg.Tray.RevealDelay
	if delay <= 0 {
		return s.ctx.Err() == nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-s.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (s *session) completed(entry tray.HistoryEntry) {
	if entry.Hidden {
		s.logger.Debug("hidden roll completed", zap.Stringer("roll_id", entry.RollID))
		return
	}
	s.logger.Info("roll completed",
		zap.Stringer("roll_id", entry.RollID),
		zap.String("set", entry.SetID),
		zap.Stringer("dice", entry.Counts),
		zap.Int("bonus", entry.Bonus),
		zap.Int("total", entry.Total),
	)
}

// dispatch runs one input line and reports whether the session should end.
// Lines that are not commands are rolled as specifiers.
func (s *session) dispatch(line string) bool {
	parsed := command.Parse(line)
	if parsed.Command == "" {
		return false
	}
	cmd, ok := s.h.registry.Resolve(parsed.Command)
	if !ok {
		_, _ = s.tray.Roll(parsed.Line)
		return false
	}
	fn, ok := sessionHandlerMap[cmd.Handler]
	if !ok {
		s.logger.Error("command has no session handler", zap.String("handler", cmd.Handler))
		s.notify("Error: command unavailable")
		return false
	}
	return fn(s, cmd, parsed)
}
