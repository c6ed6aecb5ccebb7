package tui

import "strings"

// renderFooter renders the key binding help footer at full terminal width.
// When app.showHelp is true, shows all key bindings; otherwise a brief hint
// plus the current preferences.
func renderFooter(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}
	if app.showHelp {
		return StyleDim.Width(width).Render(helpText)
	}

	v := app.view
	airdrop := "logged out"
	if v.loggedIn {
		airdrop = "logged in"
	}
	parts := []string{
		"CPU: " + onOff(v.cpuEnabled),
		"GPU: " + onOff(v.gpuEnabled),
		"Telemetry: " + onOff(v.telemetry),
		"Airdrop: " + airdrop,
	}
	if app.busy != "" {
		parts = append(parts, app.busy+"...")
	}
	if app.refreshing {
		parts = append(parts, "refreshing...")
	}
	parts = append(parts, "? for help")
	return StyleDim.Width(width).Render(strings.Join(parts, "  "))
}

// renderErrorLine renders the current user-visible error, if any.
func renderErrorLine(app *App) string {
	if app.view.err == "" {
		return ""
	}
	width := app.width
	if width <= 0 {
		width = 80
	}
	return StyleError.MaxWidth(width).Render("✗ "+sanitize(app.view.err)) + StyleDim.Render("  (e to dismiss)")
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
