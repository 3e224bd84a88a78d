package tui

import "github.com/charmbracelet/lipgloss"

// Layout defaults used before the first tea.WindowSizeMsg arrives.
const (
	defaultWidth  = 100
	defaultHeight = 30
	minHeight     = 5
)

// Palette.
//
//nolint:gochecknoglobals // Shared lipgloss palette.
var (
	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#1B5E9B", Dark: "#5FAFFF"}
	ColorSubtle    = lipgloss.AdaptiveColor{Light: "#6C6C6C", Dark: "#8A8A8A"}
	ColorWarning   = lipgloss.AdaptiveColor{Light: "#B35C00", Dark: "#FFAF5F"}
	ColorSuccess   = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#87D787"}
	ColorCritical  = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#FF5F5F"}
	ColorHighlight = lipgloss.AdaptiveColor{Light: "#FFF3CD", Dark: "#3A3000"}
)

// Text and layout styles.
//
//nolint:gochecknoglobals // Shared lipgloss styles.
var (
	HeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	LabelStyle    = lipgloss.NewStyle().Bold(true)
	ValueStyle    = lipgloss.NewStyle()
	SubtleStyle   = lipgloss.NewStyle().Foreground(ColorSubtle)
	InfoStyle     = lipgloss.NewStyle().Foreground(ColorPrimary)
	WarningStyle  = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	SuccessStyle  = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSubtle).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(cardWidth)

	TabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(ColorSubtle)
	ActiveTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true).Foreground(ColorPrimary)

	PlainRowStyle     = lipgloss.NewStyle()
	HighlightRowStyle = lipgloss.NewStyle().Background(ColorHighlight)
	CursorStyle       = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(ColorCritical).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(ColorCritical).
			PaddingLeft(1)
)

// cardWidth is the width of one summary card.
const cardWidth = 18
