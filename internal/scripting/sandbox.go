// Package scripting runs dice macros written in Lua. Scripts only see a
// restricted standard library and the tray table, and every call into a
// script is bounded by an opcode budget.
package scripting

import (
	"context"
	"errors"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the opcode budget for one script call when none
// is configured.
const DefaultInstructionLimit = 100_000

// ErrInstructionLimit is returned when a script exhausts its opcode budget.
var ErrInstructionLimit = errors.New("scripting: instruction limit exceeded")

// budgetContext cancels itself once Done has been polled limit times.
// The Lua VM polls Done once per opcode while a context is attached.
type budgetContext struct {
	context.Context
	cancel context.CancelFunc
	left   atomic.Int64
}

func (b *budgetContext) Done() <-chan struct{} {
	if b.left.Add(-1) < 0 {
		b.cancel()
	}
	return b.Context.Done()
}

// NewSandbox returns an LState with only the base, table, string and math
// libraries. The file and code loading globals are removed.
//
// Postcondition: the caller owns the state and must Close it.
func NewSandbox() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// limited runs fn on L with an opcode budget of limit (0 means
// DefaultInstructionLimit). A budget overrun is reported as ErrInstructionLimit.
func limited(L *lua.LState, limit int, fn func() error) error {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	base, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx := &budgetContext{Context: base, cancel: cancel}
	ctx.left.Store(int64(limit))

	L.SetContext(ctx)
	defer L.RemoveContext()

	err := fn()
	if err != nil && base.Err() != nil {
		return ErrInstructionLimit
	}
	return err
}
