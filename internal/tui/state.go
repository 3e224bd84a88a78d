package tui

import (
	"fmt"
	"strings"
)

// FilterMode selects which rows a projection includes.
type FilterMode int

const (
	// FilterAll includes every row.
	FilterAll FilterMode = iota
	// FilterDifferencesOnly includes only rows that differ between the profiles.
	FilterDifferencesOnly
)

// String returns the config/flag spelling of the mode.
func (f FilterMode) String() string {
	if f == FilterDifferencesOnly {
		return "differences"
	}
	return "all"
}

// Label returns the mode as shown in the status bar.
func (f FilterMode) Label() string {
	if f == FilterDifferencesOnly {
		return "Differences Only"
	}
	return "All"
}

// ParseFilterMode parses "all" or "differences". The empty string is FilterAll.
func ParseFilterMode(s string) (FilterMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "differences", "differences-only", "differences_only", "diff":
		return FilterDifferencesOnly, nil
	default:
		return FilterAll, fmt.Errorf("unknown filter mode %q (want all or differences)", s)
	}
}

// SessionState is the state of the current comparison session.
type SessionState int

const (
	// SessionIdle means no comparison has been started.
	SessionIdle SessionState = iota
	// SessionLoading means a comparison is in flight.
	SessionLoading
	// SessionReady means the comparison tree is available.
	SessionReady
	// SessionFailed means the last comparison failed.
	SessionFailed
)

// String returns the state name.
func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionLoading:
		return "loading"
	case SessionReady:
		return "ready"
	case SessionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ViewState is which part of the screen has focus.
type ViewState int

const (
	// ViewStateMain is the tab and row view.
	ViewStateMain ViewState = iota
	// ViewStatePicker is a profile picker overlay.
	ViewStatePicker
	// ViewStateQuitting is set once quit was requested.
	ViewStateQuitting
)

// Notice is a user-visible notification.
type Notice struct {
	Title   string
	Message string
}

// CardClass is the presentation class of a summary card.
type CardClass string

// Card classes.
const (
	CardClassSuccess CardClass = "success"
	CardClassWarning CardClass = "warning"
)

// SummaryCard is one per-category count card.
type SummaryCard struct {
	Label     string
	Total     int
	Different int
	Class     CardClass
}
