// Package telnet serves the dice tray over Telnet with ANSI colour output.
package telnet

import (
	"fmt"
	"strings"
)

// ANSI SGR sequences used by the tray's text output.
const (
	Reset     = "\033[0m"
	Bold      = "\033[1m"
	Dim       = "\033[2m"
	Underline = "\033[4m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	BrightRed    = "\033[91m"
	BrightGreen  = "\033[92m"
	BrightYellow = "\033[93m"
	BrightCyan   = "\033[96m"
	BrightWhite  = "\033[97m"
)

// Colorize wraps text in the given SGR sequence and a trailing Reset.
//
// Precondition: color must be a valid ANSI escape sequence.
func Colorize(color, text string) string {
	return color + text + Reset
}

// Colorf formats and colorizes in one step.
func Colorf(color, format string, args ...any) string {
	return Colorize(color, fmt.Sprintf(format, args...))
}

// StripANSI removes CSI escape sequences (ESC '[' params final) from s.
// An unterminated sequence at the end of s is left in place.
//
// Postcondition: len(result) <= len(s).
func StripANSI(s string) string {
	if !strings.Contains(s, "\033[") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			if end := csiEnd(s, i+2); end > 0 {
				i = end
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// csiEnd returns the index just past the final byte of a CSI sequence whose
// parameters start at from, or 0 if the sequence is unterminated.
func csiEnd(s string, from int) int {
	for j := from; j < len(s); j++ {
		if c := s[j]; c >= 0x40 && c <= 0x7e {
			return j + 1
		}
	}
	return 0
}
