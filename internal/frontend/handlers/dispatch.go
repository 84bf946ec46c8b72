package handlers

import (
	"strconv"
	"strings"

	"github.com/cory-johannsen/dicetray/internal/frontend/telnet"
	"github.com/cory-johannsen/dicetray/internal/game/command"
	"github.com/cory-johannsen/dicetray/internal/game/dice"
)

// defaultHistoryLines is how many entries "history" lists without an argument.
const defaultHistoryLines = 10

// sessionHandlerFunc runs one command and reports whether the session ends.
type sessionHandlerFunc func(s *session, cmd *command.Command, p command.ParseResult) bool

// sessionHandlerMap must have an entry for every Handler in command.BuiltinCommands.
var sessionHandlerMap = map[string]sessionHandlerFunc{
	command.HandlerRoll:      handleRoll,
	command.HandlerLaunch:    handleLaunch,
	command.HandlerClear:     handleClear,
	command.HandlerAdd:       handleAdd,
	command.HandlerBonus:     handleBonus,
	command.HandlerAdvantage: handleAdvantage,
	command.HandlerHide:      handleHide,
	command.HandlerShow:      handleShow,
	command.HandlerSet:       handleSet,
	command.HandlerSets:      handleSets,
	command.HandlerReset:     handleReset,
	command.HandlerStatus:    handleStatus,
	command.HandlerHistory:   handleHistory,
	command.HandlerReroll:    handleReroll,
	command.HandlerMacro:     handleMacro,
	command.HandlerMacros:    handleMacros,
	command.HandlerHelp:      handleHelp,
	command.HandlerQuit:      handleQuit,
}

func usage(s *session, cmd *command.Command) bool {
	s.notify("Usage: " + cmd.Usage)
	return false
}

// optionalCount parses an optional positive integer argument.
func optionalCount(p command.ParseResult, def int) (int, bool) {
	if len(p.Args) == 0 {
		return def, true
	}
	n, err := strconv.Atoi(p.Args[0])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func handleRoll(s *session, cmd *command.Command, p command.ParseResult) bool {
	if p.RawArgs == "" {
		return usage(s, cmd)
	}
	_, _ = s.tray.Roll(p.RawArgs)
	return false
}

func handleLaunch(s *session, _ *command.Command, _ command.ParseResult) bool {
	_, _ = s.tray.Launch()
	return false
}

func handleClear(s *session, _ *command.Command, _ command.ParseResult) bool {
	s.tray.Clear()
	s.say("Tray cleared.")
	return false
}

func handleAdd(s *session, cmd *command.Command, p command.ParseResult) bool {
	arg := strings.TrimPrefix(strings.ToLower(p.Arg(0)), "d")
	faces, err := strconv.Atoi(arg)
	if err != nil || len(p.Args) != 1 {
		return usage(s, cmd)
	}
	if s.tray.AddDie(faces) == nil {
		s.say("Selected: " + s.tray.Selection().Counts.String())
	}
	return false
}

func handleBonus(s *session, cmd *command.Command, p command.ParseResult) bool {
	n, err := strconv.Atoi(p.Arg(0))
	if err != nil || len(p.Args) != 1 {
		return usage(s, cmd)
	}
	s.tray.SetBonus(n)
	s.sayf("Bonus set to %+d.", n)
	return false
}

func handleAdvantage(s *session, cmd *command.Command, _ command.ParseResult) bool {
	adv, err := dice.ParseAdvantage(cmd.Name)
	if err != nil {
		s.notify("Error: " + err.Error())
		return false
	}
	s.tray.SetAdvantage(adv)
	if adv == dice.None {
		s.say("Rolling normally.")
	} else {
		s.sayf("Rolling with %s.", adv)
	}
	return false
}

func handleHide(s *session, _ *command.Command, _ command.ParseResult) bool {
	s.tray.SetHidden(true)
	s.say("Rolls are hidden.")
	return false
}

func handleShow(s *session, _ *command.Command, _ command.ParseResult) bool {
	s.tray.SetHidden(false)
	s.say("Rolls are visible.")
	return false
}

func handleSet(s *session, cmd *command.Command, p command.ParseResult) bool {
	if len(p.Args) != 1 {
		return usage(s, cmd)
	}
	id := p.Args[0]
	if _, ok := s.tray.Catalog().Set(id); !ok {
		id = strings.ToUpper(id)
	}
	if s.tray.SelectSet(id) == nil {
		s.sayf("Using dice set %s.", id)
	}
	return false
}

func handleSets(s *session, _ *command.Command, _ command.ParseResult) bool {
	s.say(RenderSets(s.tray.Catalog().Sets(), s.tray.Selection().SetID))
	return false
}

func handleReset(s *session, _ *command.Command, _ command.ParseResult) bool {
	s.tray.ResetSelection()
	s.say("Selection reset.")
	return false
}

func handleStatus(s *session, _ *command.Command, _ command.ParseResult) bool {
	s.say(RenderStatus(s.tray.Selection(), s.tray.State(), s.tray.Values(), s.tray.Catalog()))
	return false
}

func handleHistory(s *session, cmd *command.Command, p command.ParseResult) bool {
	n, ok := optionalCount(p, defaultHistoryLines)
	if !ok {
		return usage(s, cmd)
	}
	s.say(RenderHistory(s.tray.Recent(n)))
	return false
}

func handleReroll(s *session, cmd *command.Command, p command.ParseResult) bool {
	n, ok := optionalCount(p, 1)
	if !ok {
		return usage(s, cmd)
	}
	_, _ = s.tray.Reroll(n)
	return false
}

func handleMacro(s *session, cmd *command.Command, p command.ParseResult) bool {
	if len(p.Args) == 0 {
		return usage(s, cmd)
	}
	if s.h.macros == nil {
		s.notify("Error: macros are not enabled")
		return false
	}
	spec, err := s.h.macros.Expand(p.Args[0], p.Args[1:]...)
	if err != nil {
		s.notify("Error: " + err.Error())
		return false
	}
	_, _ = s.tray.Roll(spec.String())
	return false
}

func handleMacros(s *session, _ *command.Command, _ command.ParseResult) bool {
	if s.h.macros == nil {
		s.say(RenderMacros(nil))
		return false
	}
	s.say(RenderMacros(s.h.macros.Macros()))
	return false
}

func handleHelp(s *session, _ *command.Command, _ command.ParseResult) bool {
	s.say(s.h.registry.HelpText())
	s.say(telnet.Colorize(telnet.Dim, "Any other line is rolled as a specifier, e.g. 4d6 or d20+5."))
	return false
}

func handleQuit(s *session, _ *command.Command, _ command.ParseResult) bool {
	s.say(telnet.Colorize(telnet.Cyan, "The dice go back in the bag. Goodbye."))
	return true
}
