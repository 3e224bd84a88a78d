package tui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/rshade/profdiff/internal/engine"
)

const (
	pickerCharLimit   = 80
	pickerInputWidth  = 40
	pickerMaxVisible  = 8
	pickerPlaceholder = "Type to search profiles..."
)

// PickerResult is the outcome of a key press in the picker.
type PickerResult int

const (
	// PickerOpen means the picker is still accepting input.
	PickerOpen PickerResult = iota
	// PickerChosen means the highlighted profile was chosen.
	PickerChosen
	// PickerCancelled means the picker was closed without a choice.
	PickerCancelled
)

// ProfilePicker is a fuzzy-search selection input over profile option labels.
type ProfilePicker struct {
	title   string
	input   textinput.Model
	options []engine.ProfileInfo
	matches []engine.ProfileInfo
	cursor  int
}

// NewProfilePicker creates a focused picker over options.
func NewProfilePicker(title string, options []engine.ProfileInfo) *ProfilePicker {
	ti := textinput.New()
	ti.Placeholder = pickerPlaceholder
	ti.CharLimit = pickerCharLimit
	ti.Width = pickerInputWidth
	ti.Focus()

	p := &ProfilePicker{title: title, input: ti, options: options}
	p.refilter()
	return p
}

// Update handles one key press.
func (p *ProfilePicker) Update(msg tea.KeyMsg) (PickerResult, tea.Cmd) {
	switch msg.String() {
	case keyEnter:
		if len(p.matches) == 0 {
			return PickerOpen, nil
		}
		return PickerChosen, nil
	case keyEsc, keyCtrlC:
		return PickerCancelled, nil
	case keyUp:
		if p.cursor > 0 {
			p.cursor--
		}
		return PickerOpen, nil
	case keyDown:
		if p.cursor < len(p.matches)-1 {
			p.cursor++
		}
		return PickerOpen, nil
	}

	var cmd tea.Cmd
	before := p.input.Value()
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.refilter()
	}
	return PickerOpen, cmd
}

// SetQuery replaces the search text.
func (p *ProfilePicker) SetQuery(q string) {
	p.input.SetValue(q)
	p.refilter()
}

// Matches returns the profiles matching the current query, best match first.
func (p *ProfilePicker) Matches() []engine.ProfileInfo {
	return p.matches
}

// Selected returns the highlighted profile.
func (p *ProfilePicker) Selected() (engine.ProfileInfo, bool) {
	if p.cursor < 0 || p.cursor >= len(p.matches) {
		return engine.ProfileInfo{}, false
	}
	return p.matches[p.cursor], true
}

// refilter ranks options against the query. An empty query keeps the
// original order.
func (p *ProfilePicker) refilter() {
	p.cursor = 0
	query := strings.TrimSpace(p.input.Value())
	if query == "" {
		p.matches = p.options
		return
	}

	labels := make([]string, len(p.options))
	for i, o := range p.options {
		labels[i] = o.OptionLabel()
	}
	ranks := fuzzy.RankFindFold(query, labels)
	sort.Stable(ranks)

	p.matches = make([]engine.ProfileInfo, 0, len(ranks))
	for _, r := range ranks {
		p.matches = append(p.matches, p.options[r.OriginalIndex])
	}
}

// View renders the input and the visible matches.
func (p *ProfilePicker) View() string {
	var b strings.Builder
	b.WriteString(LabelStyle.Render(p.title))
	b.WriteString("\n")
	b.WriteString(p.input.View())
	b.WriteString("\n")

	if len(p.matches) == 0 {
		b.WriteString(SubtleStyle.Render("  no matching profiles"))
		return BoxStyle.Render(b.String())
	}

	start := 0
	if p.cursor >= pickerMaxVisible {
		start = p.cursor - pickerMaxVisible + 1
	}
	end := min(start+pickerMaxVisible, len(p.matches))
	for i := start; i < end; i++ {
		label := p.matches[i].OptionLabel()
		if i == p.cursor {
			b.WriteString(CursorStyle.Render("> " + label))
		} else {
			b.WriteString("  " + label)
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return BoxStyle.Render(b.String())
}
