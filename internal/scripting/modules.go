package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/dicetray/internal/game/dice"
)

// registerTray installs the tray table into L:
//
//	tray.macro(name, spec|function [, description])
//	tray.parse(spec)               -> count, sides, modifier | nil, message
//	tray.format(count, sides [, modifier]) -> canonical specifier
//
// Macros registered by scripts are passed to define.
func registerTray(L *lua.LState, define func(m *Macro) error) {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"macro": func(L *lua.LState) int {
			m := &Macro{
				Name:        L.CheckString(1),
				Description: L.OptString(3, ""),
			}
			switch v := L.CheckAny(2).(type) {
			case lua.LString:
				m.Static = string(v)
			case *lua.LFunction:
				m.fn = v
			default:
				L.ArgError(2, "expected a specifier string or a function")
			}
			if err := define(m); err != nil {
				L.RaiseError("%s", err.Error())
			}
			return 0
		},
		"parse": func(L *lua.LState) int {
			spec, err := dice.Parse(L.CheckString(1))
			if err != nil {
				L.Push(lua.LNil)
				L.Push(lua.LString(err.Error()))
				return 2
			}
			L.Push(lua.LNumber(spec.Count))
			L.Push(lua.LNumber(spec.Sides))
			L.Push(lua.LNumber(spec.Modifier))
			return 3
		},
		"format": func(L *lua.LState) int {
			spec := dice.Specifier{
				Count:    L.CheckInt(1),
				Sides:    L.CheckInt(2),
				Modifier: L.OptInt(3, 0),
			}
			L.Push(lua.LString(spec.String()))
			return 1
		},
	})
	L.SetGlobal("tray", mod)
}
