package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/profdiff/internal/engine"
)

type rowKind int

const (
	rowKindParent rowKind = iota
	rowKindDetail
	rowKindLoading
	rowKindEmpty
)

// rowItem is one line of the flattened projection shown in the row list.
type rowItem struct {
	kind     rowKind
	category engine.Category
	parent   string
	row      ProjectedRow
	detail   AnnotatedRow
}

const (
	labelColumnWidth = 40
	valueColumnWidth = 20
	detailIndent     = "    "
	msgNoDetail      = "No field differences"
	msgNoDetailAll   = "No field permissions"
	msgLoadingDetail = "Loading field permissions..."
	msgNoRows        = "No rows to display"
)

// refreshList flattens the active tab's projection into the row list.
func (m *ComparisonModel) refreshList() {
	category := m.ActiveCategory()
	projection := m.Projection(category)

	items := make([]rowItem, 0, len(projection))
	for _, p := range projection {
		items = append(items, rowItem{kind: rowKindParent, category: category, parent: p.Key, row: p})
		if !p.Expanded {
			continue
		}
		switch {
		case p.Loading:
			items = append(items, rowItem{kind: rowKindLoading, category: category, parent: p.Key})
		case len(p.Details) == 0:
			items = append(items, rowItem{kind: rowKindEmpty, category: category, parent: p.Key})
		default:
			for _, d := range p.Details {
				items = append(items, rowItem{kind: rowKindDetail, category: category, parent: p.Key, detail: d})
			}
		}
	}
	m.list.SetItems(items)
}

// toggleSelected toggles the parent of the row under the cursor.
func (m *ComparisonModel) toggleSelected() tea.Cmd {
	item := m.list.GetSelectedItem()
	if item == nil {
		return nil
	}
	parent := item.parent
	cmd := m.Toggle(item.category, parent)

	// Keep the cursor on the parent row after a collapse.
	for i, it := range m.list.Items() {
		if it.kind == rowKindParent && it.parent == parent {
			m.list.SetSelected(i)
			break
		}
	}
	return cmd
}

// renderItem renders one row list line.
func (m *ComparisonModel) renderItem(item rowItem, selected bool) string {
	cursor := "  "
	if selected {
		cursor = CursorStyle.Render("> ")
	}

	switch item.kind {
	case rowKindLoading:
		return cursor + detailIndent + SubtleStyle.Render(msgLoadingDetail)
	case rowKindEmpty:
		return cursor + detailIndent + SubtleStyle.Render(m.emptyDetailMessage())
	case rowKindDetail:
		return cursor + renderColumns(detailIndent, item.detail)
	case rowKindParent:
		marker := "  "
		if item.row.Expandable {
			marker = "▸ "
			if item.row.Expanded {
				marker = "▾ "
			}
		}
		return cursor + renderColumns(marker, item.row.AnnotatedRow)
	default:
		return ""
	}
}

func renderColumns(prefix string, row AnnotatedRow) string {
	label := row.Label
	if label == "" {
		label = row.Key
	}
	line := fmt.Sprintf("%s%-*s %-*s %-*s",
		prefix,
		labelColumnWidth, truncate(label, labelColumnWidth),
		valueColumnWidth, truncate(row.Left, valueColumnWidth),
		valueColumnWidth, truncate(row.Right, valueColumnWidth),
	)
	return row.Class.Style().Render(line)
}

// truncate shortens s to maxLen runes with an ellipsis.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 { //nolint:mnd // Room for the ellipsis.
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// View renders the model (Bubble Tea interface).
func (m *ComparisonModel) View() string {
	if m.view == ViewStateQuitting {
		return ""
	}

	sections := []string{
		HeaderStyle.Render("Profile Comparison"),
		m.renderSelection(),
	}
	if m.notice != nil {
		sections = append(sections, NoticeStyle.Render(m.notice.Title+": "+m.notice.Message))
	}
	if m.view == ViewStatePicker && m.picker != nil {
		sections = append(sections, m.picker.View())
	}

	switch m.state {
	case SessionLoading:
		sections = append(sections, m.loading.View())
	case SessionReady:
		sections = append(sections, m.renderSummaryCards(), m.renderTabs(), m.renderRows())
	case SessionIdle, SessionFailed:
		sections = append(sections, SubtleStyle.Render("Select two profiles and press 'c' to compare."))
	}

	sections = append(sections, m.renderStatusBar(), m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *ComparisonModel) renderSelection() string {
	p1 := LabelStyle.Render("Profile 1: ") + m.profileLabel(m.profile1)
	p2 := LabelStyle.Render("Profile 2: ") + m.profileLabel(m.profile2)
	hint := InfoStyle.Render("[c] Compare")
	if !m.CanCompare() {
		hint = SubtleStyle.Render("[c] Compare (" + msgSelectTwoProfiles + ")")
	}
	return lipgloss.JoinVertical(lipgloss.Left, p1, p2, hint)
}

func (m *ComparisonModel) profileLabel(id string) string {
	if id == "" {
		return SubtleStyle.Render("not selected")
	}
	for _, p := range m.profiles {
		if p.ID == id {
			return ValueStyle.Render(p.OptionLabel())
		}
	}
	return ValueStyle.Render(id)
}

func (m *ComparisonModel) renderSummaryCards() string {
	cards := m.SummaryCards()
	rendered := make([]string, 0, len(cards))
	for _, c := range cards {
		countStyle := SuccessStyle
		border := ColorSuccess
		if c.Class == CardClassWarning {
			countStyle = WarningStyle
			border = ColorWarning
		}
		body := lipgloss.JoinVertical(lipgloss.Center,
			LabelStyle.Render(c.Label),
			countStyle.Render(fmt.Sprintf("%d", c.Different)),
			SubtleStyle.Render(fmt.Sprintf("of %d", c.Total)),
		)
		rendered = append(rendered, CardStyle.BorderForeground(border).Render(body))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m *ComparisonModel) renderTabs() string {
	tabs := make([]string, 0, len(engine.AllCategories()))
	for i, c := range engine.AllCategories() {
		style := TabStyle
		if i == m.activeTab {
			style = ActiveTabStyle
		}
		tabs = append(tabs, style.Render(m.TabLabel(c)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *ComparisonModel) renderRows() string {
	header := SubtleStyle.Render(fmt.Sprintf("    %-*s %-*s %-*s",
		labelColumnWidth, "Name",
		valueColumnWidth, truncate(m.profileName(m.profile1), valueColumnWidth),
		valueColumnWidth, truncate(m.profileName(m.profile2), valueColumnWidth),
	))
	if m.list.ItemCount() == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, header, SubtleStyle.Render("  "+msgNoRows))
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, m.list.View())
}

func (m *ComparisonModel) profileName(id string) string {
	for _, p := range m.profiles {
		if p.ID == id {
			return p.Name
		}
	}
	return id
}

func (m *ComparisonModel) renderStatusBar() string {
	var parts []string
	parts = append(parts, "Filter: "+m.filter.Label())
	if m.state == SessionReady {
		parts = append(parts, fmt.Sprintf("Rows: %d", len(m.Projection(m.ActiveCategory()))))
	}
	return SubtleStyle.Render(strings.Join(parts, " | "))
}
