package tui

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/profdiff/internal/engine"
)

// tabwriterPadding is the minimum padding between plain table columns.
const tabwriterPadding = 2

// ErrNoComparison is returned when rendering a model without a loaded comparison.
var ErrNoComparison = errors.New("no comparison loaded")

// RenderOptions controls static rendering.
type RenderOptions struct {
	// Categories limits output to these categories. Empty means all.
	Categories []engine.Category
	// Width is the output width for styled rendering.
	Width int
}

func (o RenderOptions) categories() []engine.Category {
	if len(o.Categories) == 0 {
		return engine.AllCategories()
	}
	return o.Categories
}

// RenderPlain writes the comparison as uncolored tables, one per category.
func RenderPlain(w io.Writer, m *ComparisonModel, opts RenderOptions) error {
	if m.Result() == nil {
		return ErrNoComparison
	}
	p := message.NewPrinter(language.English)
	result := m.Result()
	summary := m.Summary()

	if _, err := p.Fprintf(w, "%s vs %s (filter: %s)\n",
		result.Profile1.OptionLabel(), result.Profile2.OptionLabel(), m.FilterMode().Label()); err != nil {
		return err
	}

	for _, c := range opts.categories() {
		count := summary.Count(c)
		if _, err := p.Fprintf(w, "\n%s: %d of %d different\n", c.Label(), count.Different, count.Total); err != nil {
			return err
		}

		rows := m.Projection(c)
		if len(rows) == 0 {
			if _, err := fmt.Fprintln(w, "  "+msgNoRows); err != nil {
				return err
			}
			continue
		}

		tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)
		fmt.Fprintf(tw, "  NAME\t%s\t%s\tDIFF\n", result.Profile1.Name, result.Profile2.Name)
		for _, r := range rows {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", displayLabel(r.AnnotatedRow), r.Left, r.Right, diffMarker(r.IsDifferent))
			if !r.Expanded {
				continue
			}
			if len(r.Details) == 0 {
				fmt.Fprintf(tw, "      (%s)\t\t\t\n", strings.ToLower(m.emptyDetailMessage()))
			}
			for _, d := range r.Details {
				fmt.Fprintf(tw, "      %s\t%s\t%s\t%s\n", displayLabel(d), d.Left, d.Right, diffMarker(d.IsDifferent))
			}
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// RenderStyled writes the comparison with lipgloss styling: summary cards,
// then one section per category with differing rows highlighted.
func RenderStyled(w io.Writer, m *ComparisonModel, opts RenderOptions) error {
	if m.Result() == nil {
		return ErrNoComparison
	}
	result := m.Result()
	width := opts.Width
	if width <= 0 {
		width = defaultWidth
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%s vs %s", result.Profile1.OptionLabel(), result.Profile2.OptionLabel())))
	b.WriteString("\n")
	b.WriteString(m.renderSummaryCards())
	b.WriteString("\n")

	for _, c := range opts.categories() {
		b.WriteString("\n")
		b.WriteString(LabelStyle.Render(m.TabLabel(c)))
		b.WriteString("\n")

		rows := m.Projection(c)
		if len(rows) == 0 {
			b.WriteString(SubtleStyle.Render("  " + msgNoRows))
			b.WriteString("\n")
			continue
		}
		for _, r := range rows {
			b.WriteString(renderColumns("  ", r.AnnotatedRow))
			b.WriteString("\n")
			if !r.Expanded {
				continue
			}
			if len(r.Details) == 0 {
				b.WriteString(SubtleStyle.Render(detailIndent + m.emptyDetailMessage()))
				b.WriteString("\n")
			}
			for _, d := range r.Details {
				b.WriteString(renderColumns(detailIndent, d))
				b.WriteString("\n")
			}
		}
	}

	_, err := io.WriteString(w, lipgloss.NewStyle().MaxWidth(width).Render(b.String())+"\n")
	return err
}

// jsonOutput is the document written by RenderJSON.
type jsonOutput struct {
	Profile1   engine.ProfileInfo                 `json:"profile1"`
	Profile2   engine.ProfileInfo                 `json:"profile2"`
	Filter     string                             `json:"filter"`
	Summary    engine.Summary                     `json:"summary"`
	Categories map[engine.Category][]ProjectedRow `json:"categories"`
}

// RenderJSON writes the projection of the selected categories as indented JSON.
// The summary always covers the unfiltered comparison.
func RenderJSON(w io.Writer, m *ComparisonModel, opts RenderOptions) error {
	if m.Result() == nil {
		return ErrNoComparison
	}
	out := jsonOutput{
		Profile1:   m.Result().Profile1,
		Profile2:   m.Result().Profile2,
		Filter:     m.FilterMode().String(),
		Summary:    m.Summary(),
		Categories: make(map[engine.Category][]ProjectedRow),
	}
	for _, c := range opts.categories() {
		out.Categories[c] = m.Projection(c)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func (m *ComparisonModel) emptyDetailMessage() string {
	if m.filter == FilterDifferencesOnly {
		return msgNoDetail
	}
	return msgNoDetailAll
}

func displayLabel(r AnnotatedRow) string {
	if r.Label != "" {
		return r.Label
	}
	return r.Key
}

func diffMarker(different bool) string {
	if different {
		return "*"
	}
	return ""
}
