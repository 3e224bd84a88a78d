package tui

import (
	"os"

	"golang.org/x/term"
)

// OutputMode selects how a comparison is presented.
type OutputMode int

const (
	// OutputModePlain is uncolored text for pipes, files and NO_COLOR.
	OutputModePlain OutputMode = iota
	// OutputModeStyled is lipgloss-styled static output.
	OutputModeStyled
	// OutputModeInteractive is the full bubbletea program.
	OutputModeInteractive
)

// String returns the mode name.
func (m OutputMode) String() string {
	switch m {
	case OutputModePlain:
		return "plain"
	case OutputModeStyled:
		return "styled"
	case OutputModeInteractive:
		return "interactive"
	default:
		return "unknown"
	}
}

// DetectOutputMode picks a mode for stdout. forcePlain wins over everything;
// noInteractive limits a terminal to styled output.
func DetectOutputMode(forcePlain, noColor, noInteractive bool) OutputMode {
	return detectOutputMode(forcePlain, noColor, noInteractive, term.IsTerminal(int(os.Stdout.Fd())), os.LookupEnv)
}

func detectOutputMode(
	forcePlain, noColor, noInteractive, isTTY bool,
	lookupEnv func(string) (string, bool),
) OutputMode {
	if forcePlain || !isTTY {
		return OutputModePlain
	}
	if _, set := lookupEnv("NO_COLOR"); set || noColor {
		return OutputModePlain
	}
	if v, _ := lookupEnv("TERM"); v == "dumb" {
		return OutputModePlain
	}
	if noInteractive {
		return OutputModeStyled
	}
	if _, ci := lookupEnv("CI"); ci {
		return OutputModeStyled
	}
	return OutputModeInteractive
}

// TerminalWidth returns the stdout width, or fallback when it is not a terminal.
func TerminalWidth(fallback int) int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}
