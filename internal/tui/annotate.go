package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/profdiff/internal/engine"
)

// RowClass is the presentation class of a rendered row.
type RowClass string

// Row classes.
const (
	RowClassPlain     RowClass = "plain"
	RowClassHighlight RowClass = "highlight"
)

// Style returns the lipgloss style for the class.
func (c RowClass) Style() lipgloss.Style {
	if c == RowClassHighlight {
		return HighlightRowStyle
	}
	return PlainRowStyle
}

// AnnotatedRow is a comparison row ready for display.
type AnnotatedRow struct {
	engine.ComparisonRow

	Class RowClass `json:"class"`
}

// Annotate returns a display copy of row. Differing rows get RowClassHighlight.
// row itself is never modified.
func Annotate(row engine.ComparisonRow, isDifferent bool) AnnotatedRow {
	class := RowClassPlain
	if isDifferent {
		class = RowClassHighlight
	}
	return AnnotatedRow{ComparisonRow: row, Class: class}
}
