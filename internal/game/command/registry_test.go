package command

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Len(t, r.Commands(), len(BuiltinCommands()))
}

func TestResolve_CanonicalAndAlias(t *testing.T) {
	r := DefaultRegistry()
	tests := []struct {
		input   string
		name    string
		handler string
	}{
		{"roll", "roll", HandlerRoll},
		{"r", "roll", HandlerRoll},
		{"go", "launch", HandlerLaunch},
		{"adv", "adv", HandlerAdvantage},
		{"disadvantage", "dis", HandlerAdvantage},
		{"flat", "normal", HandlerAdvantage},
		{"use", "set", HandlerSet},
		{"h", "history", HandlerHistory},
		{"rr", "reroll", HandlerReroll},
		{"m", "macro", HandlerMacro},
		{"?", "help", HandlerHelp},
		{"exit", "quit", HandlerQuit},
	}
	for _, tt := range tests {
		cmd, ok := r.Resolve(tt.input)
		require.True(t, ok, "input %q not found", tt.input)
		assert.Equal(t, tt.name, cmd.Name, "input %q", tt.input)
		assert.Equal(t, tt.handler, cmd.Handler, "input %q", tt.input)
	}
}

func TestResolve_NotFound(t *testing.T) {
	_, ok := DefaultRegistry().Resolve("north")
	assert.False(t, ok)
}

func TestBuiltinCommands_HaveHelpAndKnownCategory(t *testing.T) {
	for _, cmd := range BuiltinCommands() {
		assert.NotEmpty(t, cmd.Help, cmd.Name)
		assert.NotEmpty(t, cmd.Handler, cmd.Name)
		assert.Contains(t, CategoryOrder, cmd.Category, cmd.Name)
	}
}

func TestNewRegistry_Collisions(t *testing.T) {
	cases := map[string][]Command{
		"duplicate command name": {{Name: "roll"}, {Name: "roll"}},
		"duplicate alias":        {{Name: "a", Aliases: []string{"x"}}, {Name: "b", Aliases: []string{"x"}}},
		"alias shadows name":     {{Name: "a"}, {Name: "b", Aliases: []string{"a"}}},
		"name shadows alias":     {{Name: "a", Aliases: []string{"b"}}, {Name: "b"}},
		"has no name":            {{Handler: "x"}},
	}
	for want, cmds := range cases {
		_, err := NewRegistry(cmds)
		require.Error(t, err, want)
		if want != "alias shadows name" && want != "name shadows alias" {
			assert.Contains(t, err.Error(), want)
		}
	}
}

func TestCommandsByCategory(t *testing.T) {
	cats := DefaultRegistry().CommandsByCategory()
	for _, cat := range CategoryOrder {
		assert.NotEmpty(t, cats[cat], cat)
	}
	names := make([]string, 0)
	for _, cmd := range cats[CategoryHistory] {
		names = append(names, cmd.Name)
	}
	assert.Equal(t, []string{"history", "reroll"}, names)
}

func TestHelpText(t *testing.T) {
	help := DefaultRegistry().HelpText()
	assert.True(t, strings.HasPrefix(help, "Roll:\n"))
	assert.Contains(t, help, "roll <specifier>")
	assert.Contains(t, help, "Macro:\n")
	assert.Less(t, strings.Index(help, "Selection:"), strings.Index(help, "System:"))
	assert.False(t, strings.HasSuffix(help, "\n"))
}

func TestHelpText_ExtraCategory(t *testing.T) {
	r, err := NewRegistry([]Command{
		{Name: "zap", Help: "z", Category: "zzz"},
		{Name: "roll", Help: "r", Category: CategoryRoll},
	})
	require.NoError(t, err)
	help := r.HelpText()
	assert.Less(t, strings.Index(help, "Roll:"), strings.Index(help, "Zzz:"))
}

func TestPropertyAllAliasesResolveToCanonical(t *testing.T) {
	r := DefaultRegistry()
	cmds := r.Commands()
	rapid.Check(t, func(rt *rapid.T) {
		cmd := rapid.SampledFrom(cmds).Draw(rt, "cmd")
		resolved, ok := r.Resolve(cmd.Name)
		require.True(rt, ok)
		assert.Equal(rt, cmd.Name, resolved.Name)
		for _, alias := range cmd.Aliases {
			resolved, ok := r.Resolve(alias)
			require.True(rt, ok, "alias %q", alias)
			assert.Equal(rt, cmd.Name, resolved.Name)
		}
	})
}
