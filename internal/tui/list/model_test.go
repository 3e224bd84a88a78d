package listview

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbered(n int) []string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf("row-%d", i)
	}
	return items
}

func render(item string, selected bool) string {
	if selected {
		return "> " + item
	}
	return "  " + item
}

// TestVirtualList_Navigation verifies cursor movement keys.
func TestVirtualList_Navigation(t *testing.T) {
	m := NewVirtualListModel(numbered(50), 10, 40, render)

	tests := []struct {
		name string
		msg  tea.KeyMsg
		want int
	}{
		{"down", tea.KeyMsg{Type: tea.KeyDown}, 1},
		{"j", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}, 2},
		{"k", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")}, 1},
		{"page down", tea.KeyMsg{Type: tea.KeyPgDown}, 11},
		{"end", tea.KeyMsg{Type: tea.KeyEnd}, 49},
		{"down at end", tea.KeyMsg{Type: tea.KeyDown}, 49},
		{"home", tea.KeyMsg{Type: tea.KeyHome}, 0},
		{"up at start", tea.KeyMsg{Type: tea.KeyUp}, 0},
		{"G", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")}, 49},
	}
	for _, tt := range tests {
		m.Update(tt.msg)
		assert.Equal(t, tt.want, m.Selected(), tt.name)
		assert.GreaterOrEqual(t, m.Selected(), m.VisibleFrom(), tt.name)
		assert.Less(t, m.Selected(), m.VisibleTo(), tt.name)
	}
}

// TestVirtualList_View verifies only the window plus buffer is rendered.
func TestVirtualList_View(t *testing.T) {
	m := NewVirtualListModel(numbered(1000), 10, 40, render)
	m.SetSelected(500)

	lines := strings.Split(m.View(), "\n")
	assert.Len(t, lines, 10+2*defaultBufferSize)
	assert.Contains(t, m.View(), "> row-500")
	assert.NotContains(t, m.View(), "row-0\n")
}

// TestVirtualList_SetItems verifies the cursor is clamped when items shrink.
func TestVirtualList_SetItems(t *testing.T) {
	m := NewVirtualListModel(numbered(20), 5, 40, render)
	m.SetSelected(15)

	m.SetItems(numbered(30))
	assert.Equal(t, 15, m.Selected())

	m.SetItems(numbered(4))
	assert.Equal(t, 3, m.Selected())
	require.NotNil(t, m.GetSelectedItem())
	assert.Equal(t, "row-3", *m.GetSelectedItem())

	m.SetItems(nil)
	assert.Equal(t, 0, m.Selected())
	assert.Nil(t, m.GetSelectedItem())
	assert.Empty(t, m.View())
}

// TestVirtualList_Resize verifies window size messages update the viewport.
func TestVirtualList_Resize(t *testing.T) {
	m := NewVirtualListModel(numbered(100), 5, 40, render)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	assert.Equal(t, 80, m.Width())
	assert.Equal(t, 20, m.Height())
	assert.Equal(t, 20, m.VisibleTo()-m.VisibleFrom())
}
