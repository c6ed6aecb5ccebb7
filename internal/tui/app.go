package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dm/minerdeck/internal/mining"
	"github.com/dm/minerdeck/internal/model"
	"github.com/dm/minerdeck/internal/store"
)

// renderInterval is how often the dashboard re-reads the stores.
const renderInterval = 250 * time.Millisecond

// actionTimeout bounds a single user action.
const actionTimeout = 15 * time.Second

// Controls are the user actions the dashboard can trigger.
type Controls interface {
	Start(ctx context.Context)
	Stop(ctx context.Context, opts mining.StopOptions)
	SetMode(ctx context.Context, mode model.Mode)
	SetGPUMiningEnabled(ctx context.Context, enabled bool)
	SetCPUMiningEnabled(ctx context.Context, enabled bool)
	SetTelemetryMode(ctx context.Context, allowed bool)
}

// Refresher performs an out-of-band status poll.
type Refresher interface {
	PollOnce(ctx context.Context) error
}

// Credentials installs and clears the airdrop credential.
type Credentials interface {
	Login(c model.Credential) error
	Logout() error
}

// Deps wires the dashboard to the running session.
type Deps struct {
	Stores       *store.Stores
	Controls     Controls
	Refresher    Refresher
	Credentials  Credentials
	BridgeURL    string
	PollInterval time.Duration
}

// dashboard is one consistent read of the stores.
type dashboard struct {
	mode       model.Mode
	cpu        model.CPUStatus
	gpu        model.GPUStatus
	node       model.BaseNodeStatus
	wallet     model.WalletBalance
	address    string
	p2pool     model.P2PoolSnapshot
	sync       model.SyncHealth
	history    *model.HashrateHistory
	telemetry  bool
	gpuEnabled bool
	cpuEnabled bool
	intent     bool
	animation  model.AnimationState
	readiness  model.Readiness
	loggedIn   bool
	points     model.Points
	hardware   model.HardwareSample
	err        string
}

func readStores(s *store.Stores) dashboard {
	return dashboard{
		mode:       s.Mode.Get(),
		cpu:        s.CPU.Get(),
		gpu:        s.GPU.Get(),
		node:       s.BaseNode.Get(),
		wallet:     s.Wallet.Get(),
		address:    s.WalletAddress.Get(),
		p2pool:     s.P2Pool.Get(),
		sync:       s.Sync.Get(),
		history:    s.History.Get(),
		telemetry:  s.Telemetry.Get(),
		gpuEnabled: s.GPUMiningEnabled.Get(),
		cpuEnabled: s.CPUMiningEnabled.Get(),
		intent:     s.MiningInitiated.Get(),
		animation:  s.Animation.Get(),
		readiness:  s.Readiness.Get(),
		loggedIn:   s.Credential.Get() != nil,
		points:     s.Points.Get(),
		hardware:   s.Hardware.Get(),
		err:        s.Error.Get(),
	}
}

type overlay int

const (
	overlayNone overlay = iota
	overlayConfirmStop
	overlayLogin
)

// App is the root Bubble Tea model for minerdeck.
type App struct {
	deps Deps
	view dashboard

	// In-flight work
	busy       string // name of the running action, "" when idle
	refreshing bool

	// Layout
	width, height int

	// UI state
	showHelp bool
	overlay  overlay
	login    LoginFormModel
	spinner  spinner.Model
}

// NewApp creates a new App reading from deps.Stores.
func NewApp(deps Deps) *App {
	if deps.Stores == nil {
		deps.Stores = store.New()
	}
	if deps.PollInterval <= 0 {
		deps.PollInterval = time.Second
	}
	app := &App{
		deps:    deps,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(StyleStateLoading)),
	}
	app.view = readStores(deps.Stores)
	return app
}

// Init implements tea.Model. Starts the render tick and the spinner.
func (app *App) Init() tea.Cmd {
	return tea.Batch(renderTickCmd(), app.spinner.Tick)
}

// Update implements tea.Model and is the single state-mutation entry point.
func (app *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		app.width = msg.Width
		app.height = msg.Height

	case RenderTickMsg:
		app.view = readStores(app.deps.Stores)
		return app, renderTickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		app.spinner, cmd = app.spinner.Update(msg)
		return app, cmd

	case ActionDoneMsg:
		app.busy = ""
		app.view = readStores(app.deps.Stores)

	case RefreshDoneMsg:
		app.refreshing = false
		app.view = readStores(app.deps.Stores)

	case tea.KeyMsg:
		switch app.overlay {
		case overlayLogin:
			return app.updateLogin(msg)
		case overlayConfirmStop:
			return app.updateConfirmStop(msg)
		}
		return app.updateKeys(msg)

	default:
		if app.overlay == overlayLogin {
			var cmd tea.Cmd
			app.login, cmd = app.login.Update(msg)
			return app, cmd
		}
	}

	return app, nil
}

func (app *App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return app, tea.Quit
	case key.Matches(msg, keys.Help):
		app.showHelp = !app.showHelp
	case key.Matches(msg, keys.Refresh):
		if app.refreshing || app.deps.Refresher == nil {
			return app, nil
		}
		app.refreshing = true
		return app, refreshCmd(app.deps.Refresher)
	case key.Matches(msg, keys.Dismiss):
		app.deps.Stores.Error.Clear()
		app.view.err = ""
	case key.Matches(msg, keys.Start):
		return app, app.runAction("start", func(ctx context.Context, c Controls) {
			c.Start(ctx)
		})
	case key.Matches(msg, keys.Stop):
		if app.busy == "" && app.deps.Controls != nil {
			app.overlay = overlayConfirmStop
		}
	case key.Matches(msg, keys.Pause):
		return app, app.runAction("pause", func(ctx context.Context, c Controls) {
			c.Stop(ctx, mining.StopOptions{IsPause: true})
		})
	case key.Matches(msg, keys.Mode):
		next := app.view.mode.Next()
		return app, app.runAction("mode", func(ctx context.Context, c Controls) {
			c.SetMode(ctx, next)
		})
	case key.Matches(msg, keys.GPU):
		enabled := !app.view.gpuEnabled
		return app, app.runAction("gpu", func(ctx context.Context, c Controls) {
			c.SetGPUMiningEnabled(ctx, enabled)
		})
	case key.Matches(msg, keys.CPU):
		enabled := !app.view.cpuEnabled
		return app, app.runAction("cpu", func(ctx context.Context, c Controls) {
			c.SetCPUMiningEnabled(ctx, enabled)
		})
	case key.Matches(msg, keys.Telemetry):
		allowed := !app.view.telemetry
		return app, app.runAction("telemetry", func(ctx context.Context, c Controls) {
			c.SetTelemetryMode(ctx, allowed)
		})
	case key.Matches(msg, keys.Login):
		if app.deps.Credentials != nil {
			app.login = buildLoginForm()
			app.overlay = overlayLogin
		}
	case key.Matches(msg, keys.Logout):
		if app.deps.Credentials != nil {
			app.deps.Stores.Error.Report(app.deps.Credentials.Logout())
			app.view = readStores(app.deps.Stores)
		}
	}
	return app, nil
}

func (app *App) updateConfirmStop(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Confirm):
		app.overlay = overlayNone
		return app, app.runAction("stop", func(ctx context.Context, c Controls) {
			c.Stop(ctx, mining.StopOptions{})
		})
	case key.Matches(msg, keys.Cancel), key.Matches(msg, keys.Quit):
		app.overlay = overlayNone
	}
	return app, nil
}

func (app *App) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	app.login, cmd = app.login.Update(msg)

	switch {
	case app.login.cancelled:
		app.overlay = overlayNone
	case app.login.submitted:
		app.login.submitted = false
		cred, err := app.login.credential()
		if err == nil {
			err = app.deps.Credentials.Login(cred)
		}
		if err != nil {
			app.login.err = err.Error()
			return app, cmd
		}
		app.overlay = overlayNone
		app.view = readStores(app.deps.Stores)
	}
	return app, cmd
}

// runAction starts fn on a goroutine unless another action is in flight.
func (app *App) runAction(name string, fn func(context.Context, Controls)) tea.Cmd {
	if app.busy != "" || app.deps.Controls == nil {
		return nil
	}
	app.busy = name
	c := app.deps.Controls
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		fn(ctx, c)
		return ActionDoneMsg{Action: name}
	}
}

// View implements tea.Model. Renders the full TUI.
func (app *App) View() string {
	var parts []string

	if h := renderHeader(app); h != "" {
		parts = append(parts, h)
	}

	switch app.overlay {
	case overlayConfirmStop:
		parts = append(parts, renderStopConfirm(app))
	case overlayLogin:
		parts = append(parts, renderLoginForm(app))
	default:
		if o := renderOverview(app); o != "" {
			parts = append(parts, o)
		}
		if m := renderMetricsRow(app); m != "" {
			parts = append(parts, m)
		}
		if e := renderErrorLine(app); e != "" {
			parts = append(parts, e)
		}
	}
	parts = append(parts, renderFooter(app))

	return strings.Join(parts, "\n")
}

// renderTickCmd schedules the next store read.
func renderTickCmd() tea.Cmd {
	return tea.Tick(renderInterval, func(t time.Time) tea.Msg {
		return RenderTickMsg(t)
	})
}

// refreshCmd runs one status poll and reports when it is done.
func refreshCmd(r Refresher) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return RefreshDoneMsg{Err: r.PollOnce(ctx)}
	}
}

// renderedHeight returns the number of lines s occupies, 0 for "".
func renderedHeight(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
