package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// ══════════════════════════════════════════════════════════════════════════════
// COLOR PALETTE - Dracula-inspired, shared with the diagram exporters
// ══════════════════════════════════════════════════════════════════════════════

var (
	ColorBg          = lipgloss.Color("#282A36")
	ColorBgHighlight = lipgloss.Color("#44475A")
	ColorText        = lipgloss.Color("#F8F8F2")
	ColorSubtext     = lipgloss.Color("#BFBFBF")
	ColorMuted       = lipgloss.Color("#6272A4")

	ColorPrimary = lipgloss.Color("#BD93F9")
	ColorInfo    = lipgloss.Color("#8BE9FD")
	ColorSuccess = lipgloss.Color("#50FA7B")
	ColorWarning = lipgloss.Color("#FFB86C")
	ColorDanger  = lipgloss.Color("#FF5555")
)

// ══════════════════════════════════════════════════════════════════════════════
// SHARED STYLES
// ══════════════════════════════════════════════════════════════════════════════

var (
	// TitleBarStyle renders the tree name header.
	TitleBarStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SelectedRowStyle highlights the cursor row.
	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(ColorText).
				Background(ColorBgHighlight).
				Bold(true)

	// RowStyle renders an unselected row.
	RowStyle = lipgloss.NewStyle().
			Foreground(ColorSubtext)

	// BranchStyle renders the tree guide characters.
	BranchStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// StatusStyle renders the transient status line.
	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorInfo)

	// ErrorStyle renders advisory failures ("this reparent is not allowed").
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorDanger)

	// PromptStyle renders input prompts.
	PromptStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	// OverlayStyle wraps modal overlays.
	OverlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(1, 2)

	// PinnedBadgeStyle marks manually positioned nodes.
	PinnedBadgeStyle = lipgloss.NewStyle().
				Foreground(ColorWarning)
)

// RenderMoveBadge marks the node picked up for a move.
func RenderMoveBadge() string {
	return lipgloss.NewStyle().
		Foreground(ColorBg).
		Background(ColorWarning).
		Bold(true).
		Render(" MOVING ")
}
