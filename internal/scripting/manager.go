package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicetray/internal/game/dice"
)

var (
	// ErrUnknownMacro is returned by Expand for a name no script registered.
	ErrUnknownMacro = errors.New("scripting: unknown macro")
	// ErrBadExpansion is returned when a macro yields something other than a
	// valid specifier.
	ErrBadExpansion = errors.New("scripting: macro did not produce a valid specifier")
)

// Macro is a named roll registered by a script. Exactly one of Static or
// the script function is set.
type Macro struct {
	Name        string
	Description string
	// Static is the specifier of a fixed macro.
	Static string
	// File is the script that registered the macro.
	File string

	fn *lua.LFunction
}

// Dynamic reports whether the macro computes its specifier when expanded.
func (m *Macro) Dynamic() bool { return m.fn != nil }

// Manager loads macro scripts into one sandboxed VM and expands macros on
// demand. It is safe for concurrent use; calls into the VM are serialized.
type Manager struct {
	logger *zap.Logger
	limit  int

	mu     sync.Mutex
	L      *lua.LState
	macros map[string]*Macro
}

// NewManager creates a Manager with no macros loaded.
//
// Precondition: logger must be non-nil; instLimit >= 0 (0 uses DefaultInstructionLimit).
func NewManager(logger *zap.Logger, instLimit int) *Manager {
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{logger: logger, limit: instLimit, macros: map[string]*Macro{}}
}

// LoadDir runs every *.lua file in dir in lexicographic order and replaces
// the loaded macros with the ones they register. On error the previous
// macros stay in effect.
//
// Postcondition: returns the number of macros loaded.
func (m *Manager) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("scripting: reading macro dir %q: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	L := NewSandbox()
	macros := make(map[string]*Macro)
	var current string
	registerTray(L, func(mac *Macro) error {
		if mac.Name == "" {
			return errors.New("macro name must not be empty")
		}
		if _, dup := macros[mac.Name]; dup {
			return fmt.Errorf("macro %q already defined", mac.Name)
		}
		if !mac.Dynamic() {
			if _, err := dice.Parse(mac.Static); err != nil {
				return err
			}
		}
		mac.File = filepath.Base(current)
		macros[mac.Name] = mac
		return nil
	})

	for _, path := range files {
		current = path
		if err := limited(L, m.limit, func() error { return L.DoFile(path) }); err != nil {
			L.Close()
			return 0, fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	m.mu.Lock()
	old := m.L
	m.L, m.macros = L, macros
	m.mu.Unlock()
	if old != nil {
		old.Close()
	}

	m.logger.Info("macros loaded",
		zap.String("dir", dir),
		zap.Int("files", len(files)),
		zap.Int("macros", len(macros)),
	)
	return len(macros), nil
}

// Expand returns the specifier produced by the named macro. Function macros
// receive args as strings and must return a specifier string.
//
// Postcondition: a returned Specifier always satisfies dice.Parse.
func (m *Manager) Expand(name string, args ...string) (dice.Specifier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mac, ok := m.macros[name]
	if !ok {
		return dice.Specifier{}, fmt.Errorf("%w %q", ErrUnknownMacro, name)
	}
	text := mac.Static
	if mac.Dynamic() {
		out, err := m.call(mac, args)
		if err != nil {
			m.logger.Warn("macro failed", zap.String("macro", name), zap.Error(err))
			return dice.Specifier{}, fmt.Errorf("%w: %s: %v", ErrBadExpansion, name, err)
		}
		text = out
	}
	spec, err := dice.Parse(text)
	if err != nil {
		return dice.Specifier{}, fmt.Errorf("%w: %s: %v", ErrBadExpansion, name, err)
	}
	m.logger.Debug("macro expanded",
		zap.String("macro", name),
		zap.Strings("args", args),
		zap.Stringer("specifier", spec),
	)
	return spec, nil
}

// call runs a function macro. The caller holds m.mu.
func (m *Manager) call(mac *Macro, args []string) (string, error) {
	L := m.L
	largs := make([]lua.LValue, len(args))
	for i, a := range args {
		largs[i] = lua.LString(a)
	}
	var ret lua.LValue
	err := limited(L, m.limit, func() error {
		if err := L.CallByParam(lua.P{Fn: mac.fn, NRet: 1, Protect: true}, largs...); err != nil {
			return err
		}
		ret = L.Get(-1)
		L.Pop(1)
		return nil
	})
	if err != nil {
		return "", err
	}
	s, ok := ret.(lua.LString)
	if !ok {
		return "", fmt.Errorf("returned %s, want string", ret.Type())
	}
	return string(s), nil
}

// Macros returns the loaded macros sorted by name.
func (m *Manager) Macros() []Macro {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Macro, 0, len(m.macros))
	for _, mac := range m.macros {
		out = append(out, *mac)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Close releases the VM. Expand reports ErrUnknownMacro afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.L != nil {
		m.L.Close()
		m.L = nil
	}
	m.macros = map[string]*Macro{}
}
