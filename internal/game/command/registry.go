package command

import (
	"fmt"
	"sort"
	"strings"
)

// Registry maps command names and aliases to Command definitions.
type Registry struct {
	commands map[string]*Command // canonical name → command
	aliases  map[string]string   // alias → canonical name
}

// NewRegistry creates a Registry from cmds.
//
// Precondition: No two commands may share a canonical name or alias.
// Postcondition: Returns a Registry or an error on name/alias collisions.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{
		commands: make(map[string]*Command, len(cmds)),
		aliases:  make(map[string]string),
	}
	for i := range cmds {
		cmd := &cmds[i]
		if cmd.Name == "" {
			return nil, fmt.Errorf("command %d has no name", i)
		}
		if err := r.claim(cmd.Name, cmd.Name); err != nil {
			return nil, err
		}
		r.commands[cmd.Name] = cmd
		for _, alias := range cmd.Aliases {
			if err := r.claim(alias, cmd.Name); err != nil {
				return nil, err
			}
			r.aliases[alias] = cmd.Name
		}
	}
	return r, nil
}

// claim fails if word is already a command name or alias.
func (r *Registry) claim(word, owner string) error {
	if _, ok := r.commands[word]; ok {
		return fmt.Errorf("duplicate command name %q (claimed by %q)", word, owner)
	}
	if existing, ok := r.aliases[word]; ok {
		return fmt.Errorf("duplicate alias %q: used by %q and %q", word, existing, owner)
	}
	return nil
}

// DefaultRegistry returns a Registry holding BuiltinCommands.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Resolve looks up a command by canonical name or alias.
//
// Postcondition: Returns (command, true) if found, or (nil, false).
func (r *Registry) Resolve(word string) (*Command, bool) {
	if cmd, ok := r.commands[word]; ok {
		return cmd, true
	}
	if canonical, ok := r.aliases[word]; ok {
		return r.commands[canonical], true
	}
	return nil, false
}

// Commands returns every command sorted by name.
func (r *Registry) Commands() []*Command {
	out := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CommandsByCategory groups commands by category, each group sorted by name.
func (r *Registry) CommandsByCategory() map[string][]*Command {
	categories := make(map[string][]*Command)
	for _, cmd := range r.Commands() {
		categories[cmd.Category] = append(categories[cmd.Category], cmd)
	}
	return categories
}

// HelpText renders the command list grouped by category in CategoryOrder.
// Categories outside CategoryOrder are appended alphabetically.
func (r *Registry) HelpText() string {
	cats := r.CommandsByCategory()
	order := append([]string(nil), CategoryOrder...)
	var extra []string
	for cat := range cats {
		if !contains(order, cat) {
			extra = append(extra, cat)
		}
	}
	sort.Strings(extra)
	order = append(order, extra...)

	var b strings.Builder
	for _, cat := range order {
		cmds := cats[cat]
		if len(cmds) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", strings.ToUpper(cat[:1])+cat[1:])
		for _, cmd := range cmds {
			usage := cmd.Usage
			if usage == "" {
				usage = cmd.Name
			}
			fmt.Fprintf(&b, "  %-22s %s\n", usage, cmd.Help)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
