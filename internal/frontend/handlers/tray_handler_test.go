package handlers_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/dicetray/internal/config"
	"github.com/cory-johannsen/dicetray/internal/frontend/handlers"
	"github.com/cory-johannsen/dicetray/internal/frontend/telnet"
	"github.com/cory-johannsen/dicetray/internal/game/dice"
	"github.com/cory-johannsen/dicetray/internal/scripting"
	"github.com/cory-johannsen/dicetray/internal/testutil"
	"github.com/cory-johannsen/dicetray/internal/tray"
)

type trayServer struct {
	acc    *telnet.Acceptor
	client *testutil.TelnetClient
}

func testConfig(delay time.Duration) config.Config {
	return config.Config{
		Telnet: config.TelnetConfig{
			Host:         "127.0.0.1",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
		Dice:    config.DiceConfig{Source: "pcg", DefaultSet: tray.DefaultSetID, KeptFaces: 20},
		History: config.HistoryConfig{Capacity: 10},
		Tray:    config.TrayConfig{RevealDelay: delay, MaxDice: 10},
	}
}

// startTray serves a tray whose dice draw the given zero-based values in a cycle.
func startTray(t *testing.T, cfg config.Config, macros *scripting.Manager, values ...int) *trayServer {
	t.Helper()
	return startTrayWithLogger(t, zaptest.NewLogger(t), cfg, macros, values...)
}

func startTrayWithLogger(t *testing.T, logger *zap.Logger, cfg config.Config, macros *scripting.Manager, values ...int) *trayServer {
	t.Helper()
	h, err := handlers.NewTrayHandler(cfg, tray.DefaultCatalog(), macros, func() dice.Source {
		return dice.NewSequenceSource(values...)
	}, logger)
	require.NoError(t, err)

	acc := telnet.NewAcceptor(cfg.Telnet, h, logger)
	go func() { _ = acc.ListenAndServe() }()
	select {
	case <-acc.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("acceptor did not start in time")
	}
	t.Cleanup(acc.Stop)

	client := testutil.NewTelnetClient(t, acc.Addr())
	client.ReadUntil("tray> ")
	return &trayServer{acc: acc, client: client}
}

func total(n int) string {
	return telnet.Colorf(telnet.Bold+telnet.BrightGreen, "%d", n)
}

func TestSession_BareSpecifierRolls(t *testing.T) {
	srv := startTray(t, testConfig(0), nil, 2, 4)
	c := srv.client

	c.Command("2d6+1", "Rolling 2d6 +1...")
	c.ReadUntil("[3 5] +1 = " + total(9))

	out := c.Command("history", "2d6 +1 = 9")
	assert.Contains(t, out, "#1")
}

func TestSession_RollCommandWithAdvantage(t *testing.T) {
	srv := startTray(t, testConfig(0), nil, 1, 4)
	c := srv.client

	c.Command("adv", "Rolling with advantage.")
	c.Command("roll d20", "Rolling 1d20...")
	c.ReadUntil("2 vs 5, kept 5")
	c.ReadUntil("= " + total(5))
}

func TestSession_MalformedInputIsReported(t *testing.T) {
	srv := startTray(t, testConfig(0), nil, 0)
	c := srv.client

	c.Command("xyz", telnet.Colorize(telnet.Red, `Error: Incorrect roll input "xyz"`))
	c.Command("roll", "Usage: roll <specifier>")
	c.Command("status", "Roll:      idle")
}

func TestSession_BuildSelectionAndLaunch(t *testing.T) {
	srv := startTray(t, testConfig(0), nil, 5, 0)
	c := srv.client

	c.Command("add d20", "Selected: 1d20")
	c.Command("add 4", "Selected: 1d4 + 1d20")
	c.Command("add 7", "has no d7")
	c.Command("bonus -2", "Bonus set to -2.")
	c.Command("status", "Bonus:     -2")

	c.Command("launch", "Rolling 1d4 + 1d20 -2...")
	// d4 draws 5%4=1 -> 2; d20 draws 0 -> 1.
	c.ReadUntil("[2 1] -2 = " + total(1))

	c.Command("launch", "no dice selected")
}

func TestSession_Reroll(t *testing.T) {
	srv := startTray(t, testConfig(0), nil, 2, 4)
	c := srv.client

	c.Command("3d6", "Rolling 3d6...")
	c.ReadUntil("[3 5 3] = " + total(11))
	c.Command("reroll", "Rolling 3d6...")
	// The sequence continues where the first roll stopped.
	c.ReadUntil("[5 3 5] = " + total(13))

	out := c.Command("history 2", "3d6 = 11")
	assert.Contains(t, out, "#1   3d6 = 13")

	c.Command("reroll 9", "no such roll in history")
	c.Command("reroll x", "Usage: reroll [n]")
}

func TestSession_SetsHideAndClear(t *testing.T) {
	srv := startTray(t, testConfig(0), nil, 0)
	c := srv.client

	c.Command("sets", "GALAXY_STANDARD")
	c.Command("set galaxy_standard", "Using dice set GALAXY_STANDARD.")
	c.Command("set nope", `unknown dice set "NOPE"`)
	c.Command("hide", "Rolls are hidden.")
	c.Command("status", "Hidden:    true")
	c.Command("show", "Rolls are visible.")
	c.Command("reset", "Selection reset.")
	c.Command("clear", "Tray cleared.")
	c.Command("help", "Any other line is rolled")
}

func TestSession_TooManyDice(t *testing.T) {
	srv := startTray(t, testConfig(0), nil, 0)
	srv.client.Command("11d6", "too many dice")
}

func TestSession_LongLineIsRejected(t *testing.T) {
	srv := startTray(t, testConfig(0), nil, 0)
	srv.client.Command(strings.Repeat("9", telnet.MaxLineLength+1), "input line too long")
	srv.client.Command("d2", "Rolling 1d2...")
}

func TestSession_Macros(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "m.lua"), []byte(`
		tray.macro("fireball", "8d6", "boom")
		tray.macro("attack", function(b) return tray.format(1, 20, tonumber(b)) end)
	`), 0o644))
	mgr := scripting.NewManager(zap.NewNop(), 0)
	t.Cleanup(mgr.Close)
	_, err := mgr.LoadDir(dir)
	require.NoError(t, err)

	srv := startTray(t, testConfig(0), mgr, 9)
	c := srv.client

	c.Command("macros", "fireball")
	c.Command("macro attack 4", "Rolling 1d20 +4...")
	c.ReadUntil("[10] +4 = " + total(14))
	c.Command("macro nope", "unknown macro")
	c.Command("macro", "Usage: macro <name> [args]")
}

func TestSession_MacrosDisabled(t *testing.T) {
	srv := startTray(t, testConfig(0), nil, 0)
	srv.client.Command("macro fireball", "macros are not enabled")
	srv.client.Command("macros", "No macros loaded.")
}

func TestSession_PacedRevealStopsOnQuit(t *testing.T) {
	srv := startTray(t, testConfig(time.Hour), nil, 0)
	c := srv.client

	c.Command("4d6", "Rolling 4d6...")
	c.Command("status", "rolling, 0 of 4 dice revealed")
	c.Command("2d6", "a roll is still in progress")
	c.Command("quit", "Goodbye.")

	stopped := make(chan struct{})
	go func() {
		srv.acc.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(3 * time.Second):
		t.Fatal("session did not end while a reveal was pending")
	}
}

func TestSession_HiddenRollStaysHiddenAfterShow(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	srv := startTrayWithLogger(t, zap.New(core), testConfig(100*time.Millisecond), nil, 0)
	c := srv.client

	c.Command("hide", "Rolls are hidden.")
	c.Command("3d6", "Rolling 3d6...")
	c.Command("show", "Rolls are visible.")
	c.ReadUntil("[1 1 1] = " + total(3))

	assert.Equal(t, 1, logs.FilterMessage("hidden roll completed").Len())
	assert.Zero(t, logs.FilterMessage("roll completed").Len())
}

func TestSession_ClearDropsPendingReveal(t *testing.T) {
	srv := startTray(t, testConfig(50*time.Millisecond), nil, 0)
	c := srv.client

	c.Command("10d6", "Rolling 10d6...")
	c.Command("clear", "Tray cleared.")
	c.Command("status", "Roll:      idle")
	c.Command("d4", "Rolling 1d4...")
	c.ReadUntil("[1] = " + total(1))
}

func TestNewTrayHandler_UnknownDefaultSet(t *testing.T) {
	cfg := testConfig(0)
	cfg.Dice.DefaultSet = "MISSING"
	_, err := handlers.NewTrayHandler(cfg, tray.DefaultCatalog(), nil, dice.NewSource, zap.NewNop())
	assert.ErrorIs(t, err, tray.ErrUnknownSet)
}
