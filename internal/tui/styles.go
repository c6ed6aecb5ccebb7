package tui

import "github.com/charmbracelet/lipgloss"

// Color constants: dashboard palette.
var (
	colorGreen      = lipgloss.Color("#10b981")
	colorYellow     = lipgloss.Color("#f59e0b")
	colorRed        = lipgloss.Color("#ef4444")
	colorGray       = lipgloss.Color("#6b7280")
	colorBlue       = lipgloss.Color("#3b82f6")
	colorCyan       = lipgloss.Color("#06b6d4")
	colorPurple     = lipgloss.Color("#8b5cf6")
	colorIndigo     = lipgloss.Color("#6366f1")
	colorOrange     = lipgloss.Color("#f97316")
	colorWhite      = lipgloss.Color("#f8fafc")
	colorDark       = lipgloss.Color("#1e293b")
	colorAlt        = lipgloss.Color("#0f172a")
	colorSelectedBg = lipgloss.Color("#334155")
)

// Readiness styles: bold foreground, used for the mining state indicator.
var (
	StyleStateMining  = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	StyleStateLoading = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	StyleStateStuck   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	StyleStateIdle    = lipgloss.NewStyle().Foreground(colorGray)
)

// StyleHeader: full-width dark header bar.
var StyleHeader = lipgloss.NewStyle().
	Background(colorDark).
	Foreground(colorWhite).
	Padding(0, 1)

// StyleOverviewCard: card for the overview bar.
var StyleOverviewCard = lipgloss.NewStyle().
	Background(colorAlt).
	Foreground(colorWhite).
	Padding(0, 1).
	Margin(0).
	Align(lipgloss.Center)

// Utility styles.
var (
	StyleError = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	StyleDim   = lipgloss.NewStyle().Foreground(colorGray)
)

// Named color styles.
var (
	StyleYellow = lipgloss.NewStyle().Foreground(colorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(colorRed)
)

// ReadinessStyle returns the indicator style for a readiness state.
func ReadinessStyle(state string, stuck bool) lipgloss.Style {
	if stuck {
		return StyleStateStuck
	}
	switch state {
	case "mining":
		return StyleStateMining
	case "starting", "stopping":
		return StyleStateLoading
	default:
		return StyleStateIdle
	}
}

// ModeStyle colors the mining mode label: orange for Ludicrous, green for Eco.
func ModeStyle(mode string) lipgloss.Style {
	if mode == "Ludicrous" {
		return lipgloss.NewStyle().Bold(true).Foreground(colorOrange)
	}
	return lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
}
