package handlers

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/dicetray/internal/frontend/telnet"
	"github.com/cory-johannsen/dicetray/internal/game/dice"
	"github.com/cory-johannsen/dicetray/internal/scripting"
	"github.com/cory-johannsen/dicetray/internal/tray"
)

// Prompt is written whenever the tray is ready for the next command.
var Prompt = telnet.Colorize(telnet.BrightCyan, "tray> ")

func formatBonus(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf(" %+d", n)
}

func formatRoll(r dice.DieRoll) string {
	if r.Paired() {
		return "(" + r.String() + ")"
	}
	return r.String()
}

func formatRolls(rolls []dice.DieRoll) string {
	parts := make([]string, len(rolls))
	for i, r := range rolls {
		parts[i] = formatRoll(r)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// RenderLaunch announces a roll before its dice are revealed.
func RenderLaunch(res tray.Resolution) string {
	counts := make(tray.DiceCounts)
	for _, d := range res.Dice {
		counts[d.Type]++
	}
	return telnet.Colorf(telnet.Yellow, "Rolling %s%s...", counts, formatBonus(res.Bonus))
}

// RenderReveal shows one die as it lands.
func RenderReveal(d tray.ResolvedDie) string {
	return fmt.Sprintf("  %s %s",
		telnet.Colorf(telnet.Dim, "d%-3d", d.Type.Faces),
		telnet.Colorize(telnet.BrightWhite, d.Roll.String()))
}

// RenderTotal summarizes a fully revealed roll.
func RenderTotal(res tray.Resolution) string {
	rolls := make([]dice.DieRoll, len(res.Dice))
	for i, d := range res.Dice {
		rolls[i] = d.Roll
	}
	return fmt.Sprintf("%s%s = %s",
		formatRolls(rolls),
		formatBonus(res.Bonus),
		telnet.Colorf(telnet.Bold+telnet.BrightGreen, "%d", res.Total))
}

// RenderStatus describes the selection and the active roll.
func RenderStatus(sel tray.Selection, state tray.State, values []tray.RollValue, catalog *tray.Catalog) string {
	var b strings.Builder
	name := sel.SetID
	if set, ok := catalog.Set(sel.SetID); ok && set.Name != "" {
		name = fmt.Sprintf("%s (%s)", set.ID, set.Name)
	}
	fmt.Fprintf(&b, "Set:       %s\n", name)
	fmt.Fprintf(&b, "Dice:      %s\n", sel.Counts)
	fmt.Fprintf(&b, "Bonus:     %+d\n", sel.Bonus)
	adv := sel.Advantage.String()
	if adv == "" {
		adv = "normal"
	}
	fmt.Fprintf(&b, "Advantage: %s\n", adv)
	fmt.Fprintf(&b, "Hidden:    %t\n", sel.Hidden)

	revealed := 0
	for _, v := range values {
		if v.Roll != nil {
			revealed++
		}
	}
	switch state {
	case tray.Rolling:
		fmt.Fprintf(&b, "Roll:      rolling, %d of %d dice revealed", revealed, len(values))
	case tray.Finished:
		fmt.Fprintf(&b, "Roll:      finished, %d dice", len(values))
	default:
		b.WriteString("Roll:      idle")
	}
	return b.String()
}

// RenderHistory lists entries newest first, numbered for reroll.
func RenderHistory(entries []tray.HistoryEntry) string {
	if len(entries) == 0 {
		return "No rolls yet."
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		line := fmt.Sprintf("#%-3d %s%s = %d  %s", i+1, e.Counts, formatBonus(e.Bonus), e.Total, formatRolls(e.Results))
		if adv := e.Advantage.String(); adv != "" {
			line += " " + telnet.Colorize(telnet.Dim, adv)
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// RenderSets lists the catalog, marking the selected set.
func RenderSets(sets []*tray.DiceSet, current string) string {
	lines := make([]string, 0, len(sets))
	for _, set := range sets {
		mark := " "
		if set.ID == current {
			mark = telnet.Colorize(telnet.BrightGreen, "*")
		}
		faces := make([]string, len(set.Dice))
		for i, d := range set.Dice {
			faces[i] = fmt.Sprintf("d%d", d.Type.Faces)
		}
		line := fmt.Sprintf("%s %-18s %-20s %s", mark, set.ID, set.Name, strings.Join(faces, " "))
		if base := set.Baseline(); base.Total() > 0 {
			line += fmt.Sprintf("  (default %s)", base)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// RenderMacros lists loaded macros.
func RenderMacros(macros []scripting.Macro) string {
	if len(macros) == 0 {
		return "No macros loaded."
	}
	lines := make([]string, len(macros))
	for i, m := range macros {
		body := m.Static
		if m.Dynamic() {
			body = "(script)"
		}
		lines[i] = strings.TrimRight(fmt.Sprintf("  %-14s %-10s %s", m.Name, body, m.Description), " ")
	}
	return strings.Join(lines, "\n")
}
