package tui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sparkBlocks are the eight block heights used by sparklines.
var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline draws values as a block sparkline exactly width cells wide,
// scaled against the largest value shown. Only the newest width values are
// drawn; shorter series are right-aligned with leading spaces. Empty input
// renders as blanks and an all-zero series sits on the floor level.
func RenderSparkline(values []float64, width int, color lipgloss.Color) string {
	if width <= 0 {
		return ""
	}

	if len(values) == 0 {
		return strings.Repeat(" ", width)
	}

	if len(values) > width {
		values = values[len(values)-width:]
	}

	maxVal := slices.Max(values)

	style := lipgloss.NewStyle().Foreground(color)

	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", width-len(values)))

	for _, v := range values {
		sb.WriteRune(sparkBlocks[level(v, maxVal)])
	}

	return style.Render(sb.String())
}

// level maps v onto a sparkBlocks index relative to maxVal.
func level(v, maxVal float64) int {
	if maxVal <= 0 || v <= 0 {
		return 0
	}
	return min(int(v/maxVal*float64(len(sparkBlocks)-1)), len(sparkBlocks)-1)
}
