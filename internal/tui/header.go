package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the top header bar with mode, mining state, and timing info.
//
// Layout:
//
//	left:   "minerdeck  MODE" (or "Connecting to <URL>..." before the first status)
//	center: colored "● STATE" readiness indicator (or "● DISCONNECTED  <error>" when polls fail)
//	right:  "Last: HH:MM:SS  Poll: Ns" (or "Press r to retry" when offline)
func renderHeader(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}

	v := app.view
	var left, center, right string

	neverSynced := v.sync.LastUpdated.IsZero()
	disconnected := !v.sync.Connected && v.sync.ConsecutiveFails > 0

	if neverSynced {
		left = "Connecting to " + sanitize(app.deps.BridgeURL) + "..."
	} else {
		mode := strings.ToUpper(sanitize(string(v.mode)))
		if mode == "" {
			mode = "UNKNOWN"
		}
		left = "minerdeck  " + ModeStyle(string(v.mode)).Render(mode)
	}

	if disconnected {
		errDisplay := "● DISCONNECTED"
		if v.sync.LastError != "" {
			errDisplay += "  " + truncateText(sanitize(v.sync.LastError), 40)
		}
		center = StyleError.Render(errDisplay)
		right = StyleError.Render("Press r to retry")
	} else if !neverSynced {
		center = renderReadiness(app)

		lastStr := v.sync.LastUpdated.Format("15:04:05")
		right = StyleDim.Render(fmt.Sprintf("Last: %s  Poll: %s", lastStr, formatDuration(app.deps.PollInterval)))
	}

	// Build row: left + padding + center + padding + right, filling innerWidth.
	// StyleHeader has Padding(0, 1) so inner content width = total width - 2.
	innerWidth := width - 2
	leftVW := lipgloss.Width(left)
	centerVW := lipgloss.Width(center)
	rightVW := lipgloss.Width(right)

	spacing := innerWidth - leftVW - centerVW - rightVW
	if spacing < 0 {
		spacing = 0
	}
	leftSpacing := spacing / 2
	rightSpacing := spacing - leftSpacing

	row := left +
		strings.Repeat(" ", leftSpacing) +
		center +
		strings.Repeat(" ", rightSpacing) +
		right

	// Narrow terminals clip the row instead of wrapping the header.
	if innerWidth > 0 {
		row = lipgloss.NewStyle().MaxWidth(innerWidth).Render(row)
	}
	return StyleHeader.Width(width).Render(row)
}

// renderReadiness renders the mining state indicator. Loading states carry
// the spinner; a stuck state is flagged.
func renderReadiness(app *App) string {
	r := app.view.readiness
	label := strings.ToUpper(string(r.State))
	if label == "" {
		label = "IDLE"
	}
	if r.Stuck {
		label += " (STUCK)"
	}
	style := ReadinessStyle(string(r.State), r.Stuck)

	if r.Loading() && !r.Stuck {
		return app.spinner.View() + style.Render(label)
	}
	return style.Render("● " + label)
}

// formatDuration formats a poll interval as a compact string, e.g. "500ms", "10s" or "2m".
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d >= time.Second:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

func truncateText(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// sanitize strips escape sequences and control characters so backend-provided
// text cannot move the cursor or recolor the terminal.
func sanitize(s string) string {
	var b strings.Builder
	r := []rune(s)
	for i := 0; i < len(r); i++ {
		c := r[i]
		switch {
		case c == 0x1b:
			i = skipEscape(r, i)
		case c < 0x20, c == 0x7f, c >= 0x80 && c <= 0x9f:
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

// skipEscape returns the index of the last rune of the escape sequence
// starting at r[i].
func skipEscape(r []rune, i int) int {
	if i+1 >= len(r) {
		return i
	}
	switch r[i+1] {
	case '[': // CSI: parameters then a final byte in 0x40-0x7e
		for j := i + 2; j < len(r); j++ {
			if r[j] >= 0x40 && r[j] <= 0x7e {
				return j
			}
		}
		return len(r) - 1
	case ']': // OSC: terminated by BEL or ESC \
		for j := i + 2; j < len(r); j++ {
			if r[j] == 0x07 {
				return j
			}
			if r[j] == 0x1b && j+1 < len(r) && r[j+1] == '\\' {
				return j + 1
			}
		}
		return len(r) - 1
	default:
		return i + 1
	}
}
