package ui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quickstart-labs/hubctl/internal/api"
	"github.com/quickstart-labs/hubctl/internal/config"
	"github.com/quickstart-labs/hubctl/internal/prefs"
	"github.com/quickstart-labs/hubctl/internal/ui/components"
)

// --- Messages ---

type errMsg struct{ err error }
type clearToastMsg struct{}
type startupCheckedMsg struct {
	apiErr string
	status *api.Status
}

type startupSummary struct {
	API     string
	Auth    string
	Version string
	Done    bool
}

type appToast struct {
	level string
	text  string
}

// --- App Model ---

// App is the root TUI model. It owns the banner, the status bar, the
// feedback area and the global keys; everything else is the home view.
type App struct {
	backend Backend
	config  *config.Config
	logger  *slog.Logger

	width       int
	height      int
	err         string
	lastErrCode string
	helpOpen    bool
	quitConfirm bool

	startupChecking bool
	startup         startupSummary
	toast           *appToast

	home HomeModel
}

// NewApp creates the root application model. backend may be nil, in which
// case the home view stays empty.
func NewApp(backend Backend, store prefs.Store, cfg *config.Config, logger *slog.Logger) App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var (
		entities EntityRepository
		flows    FlowRepository
	)
	if backend != nil {
		entities = backend
		flows = backend
	}
	return App{
		backend:         backend,
		config:          cfg,
		logger:          logger,
		startupChecking: backend != nil,
		startup: startupSummary{
			API:     "checking",
			Auth:    "checking",
			Version: "-",
		},
		home: NewHomeModel(entities, flows, store, logger),
	}
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.home.Init()}
	if a.startupChecking {
		cmds = append(cmds, a.runStartupCheckCmd())
	}
	return tea.Batch(cmds...)
}

// Close releases background resources held by the views.
func (a App) Close() {
	a.home.Close()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.home.SetSize(msg.Width, msg.Height)
		return a, nil

	case errMsg:
		a.logger.Warn("operation failed", "error", msg.err)
		a.err = msg.err.Error()
		a.lastErrCode, _ = parseErrorCodeAndMessage(a.err)
		var cmd tea.Cmd
		a.home, cmd = a.home.Update(msg)
		return a, cmd

	case toastMsg:
		return a, a.setToast(msg.level, msg.text)

	case clearToastMsg:
		a.toast = nil
		return a, nil

	case startupCheckedMsg:
		a.startupChecking = false
		a.startup.Done = true
		a.startup.API = classifyStartupAPI(msg.apiErr)
		a.startup.Auth = classifyStartupAuth(a.config)
		if msg.status != nil && msg.status.Version != "" {
			a.startup.Version = msg.status.Version
		}
		level, text := startupToastCopy(a.startup)
		return a, a.setToast(level, text)

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	var cmd tea.Cmd
	a.home, cmd = a.home.Update(msg)
	return a, cmd
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.quitConfirm {
		switch {
		case key.Matches(msg, keys.Confirm):
			return a, tea.Quit
		case key.Matches(msg, keys.Deny):
			a.quitConfirm = false
		}
		return a, nil
	}
	if a.helpOpen {
		if key.Matches(msg, keys.Cancel, keys.Help) {
			a.helpOpen = false
		}
		return a, nil
	}
	if key.Matches(msg, keys.ForceQuit) {
		return a.quit()
	}
	if a.err != "" {
		a.err = ""
		a.lastErrCode = ""
	}

	ev := newUIEvent(msg)
	var cmd tea.Cmd
	a.home, cmd = a.home.HandleKey(ev)
	if ev.Stopped() {
		return a, cmd
	}

	// Global keys
	switch {
	case key.Matches(msg, keys.Help):
		a.helpOpen = true
	case key.Matches(msg, keys.Quit):
		return a.quit()
	case key.Matches(msg, keys.Refresh):
		cmd = tea.Batch(cmd, a.home.Reload())
	case key.Matches(msg, keys.Status):
		if a.backend != nil {
			a.startupChecking = true
			a.startup = startupSummary{API: "checking", Auth: "checking", Version: a.startup.Version}
			cmd = tea.Batch(cmd, a.runStartupCheckCmd())
		}
	}
	return a, cmd
}

func (a App) quit() (tea.Model, tea.Cmd) {
	if a.home.HasInput() {
		a.quitConfirm = true
		return a, nil
	}
	return a, tea.Quit
}

func (a App) View() string {
	banner := centerBlockUniform(RenderBanner(), a.width)
	startupPanel := ""
	if a.startupChecking {
		startupPanel = "\n\n" + centerBlockUniform(a.renderStartupPanel(), a.width)
	}

	content := a.home.View()
	switch {
	case a.quitConfirm:
		content = a.renderQuitConfirm()
	case a.helpOpen:
		content = a.renderHelp()
	}
	content = centerBlockUniform(content, a.width)

	context, bindings := a.statusHints()
	hints := components.StatusBar(context, bindings, a.width)

	feedback := ""
	if a.err != "" {
		message := a.err
		if hint := recoveryHint(a.lastErrCode); hint != "" {
			message += "\n\n" + hint
		}
		feedback = "\n\n" + centerBlockUniform(components.ErrorBox("Error", message, a.width), a.width)
	} else if a.toast != nil {
		feedback = "\n\n" + centerBlockUniform(a.renderToast(), a.width)
	}

	return fmt.Sprintf("%s%s\n\n%s\n\n\n%s%s", banner, startupPanel, content, hints, feedback)
}

// statusHints returns the status bar label and the bindings that apply to
// whatever currently has the keyboard.
func (a App) statusHints() (string, []key.Binding) {
	if a.quitConfirm {
		return "quit?", []key.Binding{keys.Confirm, keys.Deny}
	}
	if a.helpOpen {
		return "help", []key.Binding{withHelp(keys.Cancel, "close")}
	}
	if form := a.home.FormName(); form != "" {
		submit := keys.Submit
		if form == formRunOptions {
			submit = withHelp(submit, "run")
		}
		return form, []key.Binding{submit, keys.NextField, keys.Cancel}
	}
	return "entities", a.homeHints()
}

func (a App) homeHints() []key.Binding {
	hints := []key.Binding{keys.Up, keys.Open}
	if row, ok := a.home.selectedRow(); ok && row.kind == rowFlow {
		hints = append(hints, keys.Run)
	} else {
		hints = append(hints, keys.Refresh)
	}
	return append(hints, keys.NewEntity, keys.Help, keys.Quit)
}

func (a App) renderHelp() string {
	bindings := keys.listHelp()
	lines := make([]string, 0, len(bindings)+4)
	lines = append(lines, MutedStyle.Render("esc to close"), "")
	for _, b := range bindings {
		h := b.Help()
		lines = append(lines, "  "+SelectedStyle.Render(fmt.Sprintf("%-8s", h.Key))+" "+NormalStyle.Render(h.Desc))
	}
	lines = append(lines, "",
		MutedStyle.Render("enter expands an entity, selects a flow, or adds a flow from a group row."),
		MutedStyle.Render("r runs the flow under the cursor and reloads anywhere else."))
	return components.Indent(components.TitledBox("Help", strings.Join(lines, "\n"), a.width), 1)
}

func (a App) renderQuitConfirm() string {
	body := "A form has unsaved input. Quit anyway?"
	return components.Indent(components.ConfirmDialog("Quit", body), 1)
}

func (a App) runStartupCheckCmd() tea.Cmd {
	backend := a.backend
	return func() tea.Msg {
		if client, ok := backend.(*api.Client); ok {
			backend = client.WithTimeout(700 * time.Millisecond)
		}
		status, err := backend.Status()
		if err != nil {
			return startupCheckedMsg{apiErr: err.Error()}
		}
		return startupCheckedMsg{status: status}
	}
}

func (a *App) setToast(level, text string) tea.Cmd {
	a.toast = &appToast{
		level: level,
		text:  components.SanitizeOneLine(text),
	}
	return tea.Tick(2500*time.Millisecond, func(time.Time) tea.Msg {
		return clearToastMsg{}
	})
}

func (a App) renderToast() string {
	if a.toast == nil {
		return ""
	}
	title := "Info"
	switch a.toast.level {
	case "success":
		title = "Success"
	case "warning":
		title = "Warning"
	case "error":
		return components.ErrorBox("Error", a.toast.text, a.width)
	}
	return components.TitledBox(title, a.toast.text, a.width)
}

func (a App) renderStartupPanel() string {
	rows := []components.TableRow{
		{Label: "API", Value: a.startup.API, ValueColor: startupStatusColor(a.startup.API)},
		{Label: "Auth", Value: a.startup.Auth, ValueColor: startupStatusColor(a.startup.Auth)},
		{Label: "Version", Value: a.startup.Version},
	}
	return components.Table("Hub Status", rows, a.width)
}

func parseErrorCodeAndMessage(errText string) (string, string) {
	text := strings.TrimSpace(errText)
	if text == "" {
		return "", ""
	}
	parts := strings.SplitN(text, ":", 2)
	if len(parts) != 2 {
		return "", text
	}
	code := strings.TrimSpace(parts[0])
	if code == "" || strings.HasPrefix(strings.ToUpper(code), "HTTP ") {
		return "", text
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '_' {
			return "", text
		}
	}
	return code, strings.TrimSpace(parts[1])
}

func recoveryHint(code string) string {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "UNAUTHORIZED", "FORBIDDEN":
		return "Run `hubctl login` to refresh your API key."
	}
	return ""
}

func classifyStartupAPI(errText string) string {
	if strings.TrimSpace(errText) == "" {
		return "ok"
	}
	lower := strings.ToLower(errText)
	if strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded") {
		return "timeout"
	}
	return "down"
}

func classifyStartupAuth(cfg *config.Config) string {
	if cfg == nil || strings.TrimSpace(cfg.APIKey) == "" {
		return "missing"
	}
	return "ok"
}

func startupToastCopy(summary startupSummary) (string, string) {
	if summary.API != "ok" {
		return "error", fmt.Sprintf("Hub unreachable: API is %s.", summary.API)
	}
	if summary.Auth != "ok" {
		return "warning", "Connected, but no API key is configured. Run `hubctl login`."
	}
	if summary.Version != "" && summary.Version != "-" {
		return "success", fmt.Sprintf("Connected to hub %s.", summary.Version)
	}
	return "success", "Connected to hub."
}

func startupStatusColor(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "ok":
		return string(ColorSuccess)
	case "checking":
		return string(ColorMuted)
	case "missing", "timeout":
		return string(ColorWarning)
	case "down":
		return string(ColorError)
	default:
		return string(ColorMuted)
	}
}

func centerBlockUniform(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	maxWidth := 0
	for _, line := range lines {
		if w := lipgloss.Width(line); w > maxWidth {
			maxWidth = w
		}
	}
	if maxWidth <= 0 || maxWidth >= width {
		return s
	}
	pad := (width - maxWidth) / 2
	if pad <= 0 {
		return s
	}
	prefix := strings.Repeat(" ", pad)
	for i := range lines {
		if lines[i] != "" {
			lines[i] = prefix + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
