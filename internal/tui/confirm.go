package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dm/minerdeck/internal/format"
)

// renderDialogTitle renders a full-width title bar styled like the header,
// with the title on the left and the key hint on the right.
func renderDialogTitle(width int, title, hint string) string {
	hintText := StyleDim.Render(hint)
	innerWidth := width - 2 // StyleHeader has Padding(0,1) -> 1 char per side
	gap := innerWidth - lipgloss.Width(title) - lipgloss.Width(hintText)
	if gap < 1 {
		gap = 1
	}
	return StyleHeader.Width(width).MaxWidth(width).Render(title + strings.Repeat(" ", gap) + hintText)
}

// dialogSize returns the terminal size with defaults for the first frame.
func dialogSize(app *App) (width, height int) {
	width, height = app.width, app.height
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	return width, height
}

// renderStopConfirm renders the stop-mining confirmation dialog. The caller
// (View) renders the header above and footer below; the dialog fills the
// height between them.
func renderStopConfirm(app *App) string {
	width, height := dialogSize(app)

	titleBar := renderDialogTitle(width, "Stop Mining", "[y: confirm  n/esc: cancel]")

	headerH := renderedHeight(renderHeader(app))
	footerH := renderedHeight(renderFooter(app))
	availH := height - headerH - lipgloss.Height(titleBar) - footerH
	if availH < 1 {
		availH = 1
	}

	v := app.view
	body := []string{
		"",
		"  Both miners will be stopped. Hashing resumes only when you start again.",
		"",
		"  CPU  " + format.FormatHashrate(v.cpu.HashRate),
		"  GPU  " + format.FormatHashrate(v.gpu.HashRate),
	}
	prompt := []string{
		"",
		"  " + StyleYellow.Render("Press y to confirm, n or esc to cancel."),
	}

	// The prompt is never trimmed; the body gives way first.
	keep := availH - len(prompt)
	if keep < 0 {
		keep = 0
		prompt = prompt[len(prompt)-availH:]
	}
	if len(body) > keep {
		body = body[:keep]
	}

	lines := make([]string, 0, availH)
	lines = append(lines, body...)
	lines = append(lines, prompt...)
	for len(lines) < availH {
		lines = append(lines, "")
	}
	return titleBar + "\n" + strings.Join(lines, "\n")
}
