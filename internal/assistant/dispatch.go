// Package assistant runs the interactive conversation about a loaded table.
package assistant

import "strings"

// Mode selects how one input line is handled.
type Mode int

const (
	// ModeChat streams a free-text answer with no side effects.
	ModeChat Mode = iota
	// ModeQuery generates SQL, executes it and prints the rows.
	ModeQuery
	// ModeChart generates chart code and executes it.
	ModeChart
	// ModeExit ends the session.
	ModeExit
)

// Dispatch prefixes.
const (
	QueryPrefix = "-t"
	ChartPrefix = "-v"
	ExitCommand = "exit"
)

func (m Mode) String() string {
	switch m {
	case ModeQuery:
		return "query"
	case ModeChart:
		return "chart"
	case ModeExit:
		return "exit"
	default:
		return "chat"
	}
}

// Dispatch classifies line and returns the text the handler should work on:
// the prefix is stripped and surrounding space trimmed for query and chart
// turns, chat turns get the line unchanged. Like the prefixes, exit is
// matched against the raw line, in any casing.
func Dispatch(line string) (Mode, string) {
	if strings.EqualFold(line, ExitCommand) {
		return ModeExit, ""
	}
	switch {
	case strings.HasPrefix(line, QueryPrefix):
		return ModeQuery, strings.TrimSpace(line[len(QueryPrefix):])
	case strings.HasPrefix(line, ChartPrefix):
		return ModeChart, strings.TrimSpace(line[len(ChartPrefix):])
	default:
		return ModeChat, line
	}
}
