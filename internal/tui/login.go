package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dm/minerdeck/internal/model"
)

// loginField is one editable field of the login form.
type loginField struct {
	Label string
	Hint  string
	input textinput.Model
}

const (
	fieldAccessToken = iota
	fieldRefreshToken
	fieldExpiresAt
)

// LoginFormModel collects an airdrop credential typed in by the user.
type LoginFormModel struct {
	fields       []loginField
	focusedField int
	err          string // last validation or login error
	submitted    bool   // set by ctrl+s; cleared by parent after handling
	cancelled    bool   // set by esc
}

func buildLoginForm() LoginFormModel {
	fields := []loginField{
		{Label: "Access Token", Hint: "JWT issued by the airdrop service"},
		{Label: "Refresh Token"},
		{Label: "Expires At", Hint: "unix seconds; empty reads the token's exp claim"},
	}

	for i := range fields {
		ti := textinput.New()
		ti.CharLimit = 4096
		if i != fieldExpiresAt {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		} else {
			ti.CharLimit = 20
		}
		fields[i].input = ti
	}
	fields[0].input.Focus()

	return LoginFormModel{fields: fields}
}

// Update handles keyboard input for the login form.
// ctrl+s sets submitted and esc sets cancelled; the parent checks both flags.
// ↑/↓ and Tab/Shift+Tab move between fields. Other keys go to the focused input.
func (m LoginFormModel) Update(msg tea.Msg) (LoginFormModel, tea.Cmd) {
	if len(m.fields) == 0 {
		return m, nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.fields[m.focusedField].input, cmd = m.fields[m.focusedField].input.Update(msg)
		return m, cmd
	}

	switch keyMsg.String() {
	case "esc":
		m.cancelled = true
		return m, nil

	case "ctrl+s":
		m.submitted = true
		return m, nil

	case "up", "shift+tab":
		m.focus((m.focusedField - 1 + len(m.fields)) % len(m.fields))
		return m, nil

	case "down", "tab":
		m.focus((m.focusedField + 1) % len(m.fields))
		return m, nil

	default:
		var cmd tea.Cmd
		m.fields[m.focusedField].input, cmd = m.fields[m.focusedField].input.Update(msg)
		return m, cmd
	}
}

func (m *LoginFormModel) focus(i int) {
	m.fields[m.focusedField].input.Blur()
	m.focusedField = i
	m.fields[m.focusedField].input.Focus()
}

// credential builds the credential from the form values.
func (m LoginFormModel) credential() (model.Credential, error) {
	if len(m.fields) == 0 {
		return model.Credential{}, fmt.Errorf("login form is not initialised")
	}
	c := model.Credential{
		Token:        strings.TrimSpace(m.fields[fieldAccessToken].input.Value()),
		RefreshToken: strings.TrimSpace(m.fields[fieldRefreshToken].input.Value()),
	}
	if raw := strings.TrimSpace(m.fields[fieldExpiresAt].input.Value()); raw != "" {
		exp, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || exp <= 0 {
			return model.Credential{}, fmt.Errorf("expires at: %q is not a unix timestamp", raw)
		}
		c.ExpiresAt = exp
	}
	return c, nil
}

// renderLoginForm renders the full-screen login overlay between the header and footer.
func renderLoginForm(app *App) string {
	width, height := dialogSize(app)
	form := &app.login

	titleBar := renderDialogTitle(width, "Airdrop Login", "[tab: next  ctrl+s: log in  esc: cancel]")

	headerH := renderedHeight(renderHeader(app))
	footerH := renderedHeight(renderFooter(app))
	availH := height - headerH - lipgloss.Height(titleBar) - footerH
	if availH < 1 {
		availH = 1
	}

	lines := []string{""}
	selectedBg := lipgloss.NewStyle().Background(colorSelectedBg)

	for i, f := range form.fields {
		row := fmt.Sprintf("  %-16s", f.Label) + f.input.View()
		if i == form.focusedField {
			row = selectedBg.Width(width - 2).Render(row)
		}
		lines = append(lines, row)
		if f.Hint != "" {
			lines = append(lines, "  "+strings.Repeat(" ", 16)+StyleDim.Render(f.Hint))
		}
	}

	if form.err != "" {
		lines = append(lines, "", "  "+StyleError.Render("Error: "+sanitize(form.err)))
	}

	if len(lines) > availH {
		lines = lines[:availH]
	}
	for len(lines) < availH {
		lines = append(lines, "")
	}
	return titleBar + "\n" + strings.Join(lines, "\n")
}
