package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dm/minerdeck/internal/format"
)

// renderMetricCard renders a single metric card with title, value, and sparkline.
//
// Layout (3 rows inside a rounded border):
//
//	╭──────────────────╮
//	│ Title            │   ← titleStyle (dim, or yellow/red while polls fail)
//	│ 1.20 MH/s        │   ← bold, metric color
//	│ ▁▂▃▅▇█▇▅▃▂       │   ← colored sparkline
//	╰──────────────────╯
func renderMetricCard(title, value string, sparkValues []float64, cardWidth int, color lipgloss.Color, titleStyle lipgloss.Style) string {
	const minCardWidth = 8
	if cardWidth < minCardWidth {
		cardWidth = minCardWidth
	}

	// Inner width = card width minus border (2) and padding (2), measured
	// against the Width() we hand lipgloss below.
	innerWidth := cardWidth - 6
	if innerWidth < 1 {
		innerWidth = 1
	}

	valueStyle := lipgloss.NewStyle().Bold(true).Foreground(color)

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorGray).
		Padding(0, 1).
		Width(cardWidth - 4)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		valueStyle.Render(value),
		RenderSparkline(sparkValues, innerWidth, color),
	))
}

// renderMetricsRow renders the CPU, GPU and Total hashrate cards under a
// "Hashrate" label. Cards stack vertically below 60 columns.
// Returns empty string until the first status has arrived.
func renderMetricsRow(app *App) string {
	v := app.view
	if v.sync.LastUpdated.IsZero() || v.history == nil {
		return ""
	}

	titleStyle := severityTitleStyle(syncSeverity(v.sync.ConsecutiveFails))

	type metric struct {
		title  string
		value  float64
		series string
		color  lipgloss.Color
	}
	metrics := []metric{
		{"CPU", v.cpu.HashRate, "cpu", colorGreen},
		{"GPU", v.gpu.HashRate, "gpu", colorBlue},
		{"Total", v.cpu.HashRate + v.gpu.HashRate, "total", colorCyan},
	}

	width := app.width
	if width <= 0 {
		width = 80
	}

	if width < 60 {
		// Each card renders at (cardWidth-2) chars wide; one card per line.
		cardWidth := width + 2
		if cardWidth < 8 {
			return ""
		}
		cards := []string{StyleDim.MaxWidth(width).Render("Hashrate")}
		for _, m := range metrics {
			cards = append(cards, renderMetricCard(m.title, format.FormatHashrate(m.value), v.history.Values(m.series), cardWidth, m.color, titleStyle))
		}
		return lipgloss.JoinVertical(lipgloss.Left, cards...)
	}

	// For 3 cards to fill width: 3*(cardWidth-2)=width → cardWidth=(width+6)/3.
	cardWidth := (width + 6) / 3
	if cardWidth < 20 {
		cardWidth = 20
	}

	cards := make([]string, 0, len(metrics))
	for _, m := range metrics {
		cards = append(cards, renderMetricCard(m.title, format.FormatHashrate(m.value), v.history.Values(m.series), cardWidth, m.color, titleStyle))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	return lipgloss.JoinVertical(lipgloss.Left, StyleDim.Render("Hashrate"), row)
}
