// Package command defines the tray's text commands, their registry and the
// line parser that feeds them.
package command

// Categories group commands in help output.
const (
	CategoryRoll      = "roll"
	CategorySelection = "selection"
	CategoryHistory   = "history"
	CategoryMacro     = "macro"
	CategorySystem    = "system"
)

// CategoryOrder is the order categories are listed in help output.
var CategoryOrder = []string{CategoryRoll, CategorySelection, CategoryHistory, CategoryMacro, CategorySystem}

// Handler identifiers dispatched by the session loop.
const (
	HandlerRoll      = "roll"
	HandlerLaunch    = "launch"
	HandlerClear     = "clear"
	HandlerAdd       = "add"
	HandlerBonus     = "bonus"
	HandlerAdvantage = "advantage"
	HandlerHide      = "hide"
	HandlerShow      = "show"
	HandlerSet       = "set"
	HandlerSets      = "sets"
	HandlerReset     = "reset"
	HandlerStatus    = "status"
	HandlerHistory   = "history"
	HandlerReroll    = "reroll"
	HandlerMacro     = "macro"
	HandlerMacros    = "macros"
	HandlerHelp      = "help"
	HandlerQuit      = "quit"
)

// Command defines one player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument form, e.g. "roll <specifier>".
	Usage string
	// Help is the one-line description shown by the help command.
	Help string
	// Category groups the command in help output.
	Category string
	// Handler selects the session function that runs the command.
	Handler string
}

// BuiltinCommands returns every command the tray understands.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "roll", Aliases: []string{"r"}, Usage: "roll <specifier>", Help: "Roll a specifier such as 2d6+3 or d20", Category: CategoryRoll, Handler: HandlerRoll},
		{Name: "launch", Aliases: []string{"go"}, Usage: "launch", Help: "Roll the dice currently selected", Category: CategoryRoll, Handler: HandlerLaunch},
		{Name: "clear", Usage: "clear", Help: "Clear a finished roll from the tray", Category: CategoryRoll, Handler: HandlerClear},

		{Name: "add", Usage: "add <faces>", Help: "Add one die to the selection (add 20 or add d20)", Category: CategorySelection, Handler: HandlerAdd},
		{Name: "bonus", Aliases: []string{"mod"}, Usage: "bonus <n>", Help: "Set the flat bonus added to the total", Category: CategorySelection, Handler: HandlerBonus},
		{Name: "adv", Aliases: []string{"advantage"}, Usage: "adv", Help: "Roll the kept die twice and keep the higher", Category: CategorySelection, Handler: HandlerAdvantage},
		{Name: "dis", Aliases: []string{"disadvantage"}, Usage: "dis", Help: "Roll the kept die twice and keep the lower", Category: CategorySelection, Handler: HandlerAdvantage},
		{Name: "normal", Aliases: []string{"flat"}, Usage: "normal", Help: "Roll without advantage", Category: CategorySelection, Handler: HandlerAdvantage},
		{Name: "hide", Usage: "hide", Help: "Hide the tray's rolls from the log", Category: CategorySelection, Handler: HandlerHide},
		{Name: "show", Usage: "show", Help: "Show the tray's rolls in the log", Category: CategorySelection, Handler: HandlerShow},
		{Name: "set", Aliases: []string{"use"}, Usage: "set <id>", Help: "Switch to another dice set", Category: CategorySelection, Handler: HandlerSet},
		{Name: "sets", Usage: "sets", Help: "List the available dice sets", Category: CategorySelection, Handler: HandlerSets},
		{Name: "reset", Usage: "reset", Help: "Return the selection to the set's default dice", Category: CategorySelection, Handler: HandlerReset},
		{Name: "status", Aliases: []string{"st"}, Usage: "status", Help: "Show the selection and roll state", Category: CategorySelection, Handler: HandlerStatus},

		{Name: "history", Aliases: []string{"hist", "h"}, Usage: "history [n]", Help: "List recent rolls, newest first", Category: CategoryHistory, Handler: HandlerHistory},
		{Name: "reroll", Aliases: []string{"rr"}, Usage: "reroll [n]", Help: "Roll the nth most recent history entry again", Category: CategoryHistory, Handler: HandlerReroll},

		{Name: "macro", Aliases: []string{"m"}, Usage: "macro <name> [args]", Help: "Expand a named macro and roll it", Category: CategoryMacro, Handler: HandlerMacro},
		{Name: "macros", Usage: "macros", Help: "List the loaded macros", Category: CategoryMacro, Handler: HandlerMacros},

		{Name: "help", Aliases: []string{"?"}, Usage: "help", Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Usage: "quit", Help: "Disconnect", Category: CategorySystem, Handler: HandlerQuit},
	}
}
