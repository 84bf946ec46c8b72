package command

import "strings"

// ParseResult holds the command word and arguments of one input line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining whitespace-separated words.
	Args []string
	// RawArgs is the text after the command word with inner spacing preserved.
	RawArgs string
	// Line is the whole trimmed input.
	Line string
}

// Parse splits a text line into a command word and arguments.
//
// Postcondition: If line is blank, Command is empty and Args is nil.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}
	fields := strings.Fields(line)
	res := ParseResult{
		Command: strings.ToLower(fields[0]),
		RawArgs: strings.TrimSpace(line[len(fields[0]):]),
		Line:    line,
	}
	if len(fields) > 1 {
		res.Args = fields[1:]
	}
	return res
}

// Arg returns the ith argument or "" when absent.
func (p ParseResult) Arg(i int) string {
	if i < 0 || i >= len(p.Args) {
		return ""
	}
	return p.Args[i]
}
