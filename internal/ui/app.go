// Package ui runs the terminal dashboard: an intro splash followed by the
// classifier view.
package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/yildizm/histodash/internal/charts"
	"github.com/yildizm/histodash/internal/config"
	"github.com/yildizm/histodash/internal/dashboard"
	"github.com/yildizm/histodash/internal/emoji"
	"github.com/yildizm/histodash/internal/formatter"
	"github.com/yildizm/histodash/internal/logger"
	"github.com/yildizm/histodash/internal/preview"
	"github.com/yildizm/histodash/internal/splash"
	"github.com/yildizm/histodash/internal/ui/components"
	"github.com/yildizm/histodash/internal/watch"
)

// Phase is the screen currently owning the terminal
type Phase int

const (
	PhaseSplash Phase = iota
	PhaseDashboard
)

// Options configures the dashboard program
type Options struct {
	Splash      config.SplashConfig
	ExportDir   string
	ChartWidth  int
	ChartHeight int
	Theme       Theme

	// Clock drives the splash timers; nil uses the runtime timers
	Clock splash.Clock
}

// Model is the bubbletea model for the splash and the dashboard
type Model struct {
	ctrl     *dashboard.Controller
	previews *preview.Manager
	watcher  *watch.Watcher
	log      *logger.Logger
	opts     Options
	theme    Theme
	styles   Styles

	phase   Phase
	mounted bool

	// Splash state
	seq          *splash.Sequencer
	splashMsgs   chan tea.Msg
	splashStop   chan struct{}
	splashOnce   sync.Once
	splashImages []*preview.Handle
	splashState  splash.State

	input     textinput.Model
	prompting bool
	spinner   *components.Spinner

	status      string
	statusError bool

	width    int
	height   int
	ready    bool
	quitting bool
	closed   bool
}

// New creates the dashboard model. The watcher may be nil.
func New(ctrl *dashboard.Controller, previews *preview.Manager, watcher *watch.Watcher, opts Options, log *logger.Logger) *Model {
	if log == nil {
		log = logger.Nop()
	}
	if previews == nil {
		previews = preview.NewManager()
	}
	theme := opts.Theme
	if theme.Name == "" {
		theme = DefaultTheme
	}

	input := textinput.New()
	input.Prompt = "Image path: "
	input.Placeholder = "path/to/slide.png"
	input.CharLimit = 4096

	m := &Model{
		ctrl:       ctrl,
		previews:   previews,
		watcher:    watcher,
		log:        log,
		opts:       opts,
		theme:      theme,
		styles:     NewStyles(theme),
		phase:      PhaseDashboard,
		splashStop: make(chan struct{}),
		input:      input,
		spinner:    components.NewSpinner("Predicting..."),
	}

	if opts.Splash.Enabled {
		m.phase = PhaseSplash
		m.splashMsgs = make(chan tea.Msg, 4)
		for _, path := range opts.Splash.Images {
			h, err := previews.Acquire(config.ExpandPath(path))
			if err != nil {
				log.Warn("splash image %s unavailable: %v", path, err)
			}
			m.splashImages = append(m.splashImages, h)
		}
		m.seq = splash.New(len(opts.Splash.Images), splash.Options{
			Visible:  opts.Splash.VisibleDuration,
			Fade:     opts.Splash.FadeDuration,
			OnChange: func(st splash.State) { m.sendSplash(splashStateMsg{state: st}) },
			OnFinish: func() { m.sendSplash(splashDoneMsg{}) },
		}, opts.Clock)
	}

	return m
}

// Init starts the splash, or mounts the dashboard when there is none
func (m *Model) Init() tea.Cmd {
	if m.phase == PhaseSplash {
		m.seq.Start()
		return tea.Batch(waitForSplash(m.splashMsgs, m.splashStop), tick())
	}
	return tea.Batch(m.mount(), tick())
}

// Update handles messages and key presses
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tickMsg:
		return m.handleTick()
	case splashStateMsg:
		return m.handleSplashState(msg)
	case splashDoneMsg:
		return m.handleSplashDone()
	case metricsLoadedMsg:
		return m.handleMetricsLoaded(msg)
	case predictDoneMsg:
		return m.handlePredictDone(msg)
	case fileEventMsg:
		return m.handleFileEvent(msg)
	case chartsExportedMsg:
		return m.handleChartsExported(msg)
	}

	if m.prompting {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Phase returns the current screen
func (m *Model) Phase() Phase {
	return m.phase
}

// Status returns the transient status line
func (m *Model) Status() string {
	return m.status
}

// Close tears down the splash, the controller, the watcher and every
// preview handle. It is safe to call more than once.
func (m *Model) Close() {
	m.endSplash()
	if m.closed {
		return
	}
	m.closed = true
	m.ctrl.Close()
	if m.watcher != nil {
		if err := m.watcher.Close(); err != nil {
			m.log.Warn("failed to close watcher: %v", err)
		}
	}
	m.previews.ReleaseAll()
}

// mount switches to the dashboard and starts its background work
func (m *Model) mount() tea.Cmd {
	m.endSplash()
	m.phase = PhaseDashboard
	if m.mounted {
		return nil
	}
	m.mounted = true
	m.log.Debug("dashboard mounted")

	cmds := []tea.Cmd{fetchMetricsCmd(m.ctrl)}
	if m.watcher != nil {
		cmds = append(cmds, waitForFileEvent(m.watcher.Events()))
	}
	return tea.Batch(cmds...)
}

// endSplash stops the sequencer and releases the splash images
func (m *Model) endSplash() {
	m.splashOnce.Do(func() {
		if m.seq != nil {
			m.seq.Stop()
		}
		close(m.splashStop)
		for _, h := range m.splashImages {
			if h != nil {
				h.Release()
			}
		}
		m.splashImages = nil
	})
}

// sendSplash runs on the sequencer's timer goroutines
func (m *Model) sendSplash(msg tea.Msg) {
	select {
	case m.splashMsgs <- msg:
	case <-m.splashStop:
	}
}

// Handler functions for Update method

func (m *Model) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.input.Width = max(msg.Width-20, 10)
	return m, nil
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m.handleQuit()
	}

	if m.phase == PhaseSplash {
		switch key {
		case "q":
			return m.handleQuit()
		case "s":
			return m.handleSkip()
		}
		return m, nil
	}

	if m.prompting {
		return m.handlePromptKey(msg)
	}

	switch key {
	case "q":
		return m.handleQuit()
	case "o":
		return m.handleOpen()
	case "p", "enter":
		return m.handleSubmit()
	case "e":
		return m.handleExport()
	}
	return m, nil
}

func (m *Model) handleQuit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.Close()
	return m, tea.Quit
}

func (m *Model) handleSkip() (tea.Model, tea.Cmd) {
	m.log.Debug("splash skipped at image %d", m.splashState.Index)
	return m, m.mount()
}

func (m *Model) handleTick() (tea.Model, tea.Cmd) {
	m.spinner.Tick()
	return m, tick()
}

func (m *Model) handleSplashState(msg splashStateMsg) (tea.Model, tea.Cmd) {
	if m.phase != PhaseSplash {
		return m, nil
	}
	m.splashState = msg.state
	return m, waitForSplash(m.splashMsgs, m.splashStop)
}

func (m *Model) handleSplashDone() (tea.Model, tea.Cmd) {
	if m.phase != PhaseSplash {
		return m, nil
	}
	return m, m.mount()
}

func (m *Model) handleOpen() (tea.Model, tea.Cmd) {
	m.prompting = true
	m.input.SetValue(m.ctrl.State().Upload.Path)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		path := cleanPath(m.input.Value())
		m.closePrompt()
		m.selectFile(path)
		return m, nil
	case "esc":
		m.closePrompt()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closePrompt() {
	m.prompting = false
	m.input.Blur()
	m.input.Reset()
}

func (m *Model) handleSubmit() (tea.Model, tea.Cmd) {
	t, ok := m.ctrl.BeginSubmit()
	if !ok {
		return m, nil
	}
	m.setStatus("", false)
	return m, submitCmd(m.ctrl, t)
}

func (m *Model) handlePredictDone(msg predictDoneMsg) (tea.Model, tea.Cmd) {
	m.log.Debug("prediction %d settled", uint64(msg.ticket))
	return m, nil
}

func (m *Model) handleMetricsLoaded(msg metricsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.log.Debug("analytics hidden: %v", msg.err)
	}
	return m, nil
}

func (m *Model) handleExport() (tea.Model, tea.Cmd) {
	st := m.ctrl.State()
	if !st.ShowAnalytics() {
		m.setStatus("Charts appear once a prediction is available", false)
		return m, nil
	}
	m.setStatus(emoji.GetEmoji("hourglass")+" Exporting charts...", false)
	set := charts.Build(*st.Metrics, *st.Prediction)
	return m, exportChartsCmd(set, m.opts.ExportDir, m.opts.ChartWidth, m.opts.ChartHeight)
}

func (m *Model) handleChartsExported(msg chartsExportedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.log.Warn("chart export failed: %v", msg.err)
		m.setStatus("Chart export failed: "+msg.err.Error(), true)
		return m, nil
	}
	m.setStatus(fmt.Sprintf("%s Exported %d charts to %s", emoji.GetEmoji("folder"), len(msg.paths), msg.dir), false)
	return m, nil
}

func (m *Model) handleFileEvent(msg fileEventMsg) (tea.Model, tea.Cmd) {
	if m.watcher == nil {
		return m, nil
	}
	next := waitForFileEvent(m.watcher.Events())

	current := m.ctrl.State().Upload.Path
	if current == "" || !samePath(current, msg.event.Path) {
		return m, next
	}

	name := filepath.Base(current)
	switch msg.event.Kind {
	case watch.Modified:
		m.log.Debug("%s changed on disk", current)
		if m.selectFile(current) {
			m.setStatus(name+" changed on disk and was reloaded", false)
		}
	case watch.Removed:
		m.log.Debug("%s removed", current)
		m.selectFile("")
		m.setStatus(name+" was removed", true)
	}
	return m, next
}

// selectFile selects path, or nothing for "", and follows it on disk
func (m *Model) selectFile(path string) bool {
	if err := m.ctrl.SelectFile(path); err != nil {
		m.log.Warn("%v", err)
		m.setStatus(err.Error(), true)
		m.watchPath("")
		return false
	}
	m.watchPath(path)
	m.setStatus("", false)
	return true
}

func (m *Model) watchPath(path string) {
	if m.watcher == nil {
		return
	}
	if err := m.watcher.Watch(path); err != nil {
		m.log.Warn("cannot follow %s: %v", path, err)
	}
}

func (m *Model) setStatus(text string, isError bool) {
	m.status = text
	m.statusError = isError
}

// Rendering

// View renders the current screen
func (m *Model) View() string {
	if m.quitting {
		return m.renderGoodbyeScreen()
	}
	if !m.ready {
		return m.renderLoadingScreen()
	}
	if m.phase == PhaseSplash {
		return m.renderSplash()
	}
	return m.renderDashboard()
}

func (m *Model) renderLoadingScreen() string {
	loading := m.styles.Title.Render("Starting histodash...")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, loading)
}

func (m *Model) renderGoodbyeScreen() string {
	goodbye := lipgloss.NewStyle().
		Foreground(m.theme.Success).
		Bold(true).
		Render(emoji.GetEmoji("door") + " Goodbye")

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, goodbye)
}

func (m *Model) renderSplash() string {
	w, h := previewSize(m.width-4, m.height-6)

	var img string
	st := m.splashState
	if st.Visible && st.Index < len(m.splashImages) && m.splashImages[st.Index] != nil {
		if out, err := m.splashImages[st.Index].Render(w, h); err == nil {
			img = out
		}
	}
	if img == "" {
		img = lipgloss.NewStyle().Width(w).Height(h).Render("")
	}

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		img,
		"",
		m.styles.Caption.Render(m.opts.Splash.Caption),
		"",
		m.styles.Muted.Render("s skip • q quit"),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderDashboard() string {
	st := m.ctrl.State()
	header := m.styles.Title.Render(emoji.GetEmoji("stethoscope") + " Breast Cancer Image Classifier")

	body := m.renderLeftColumn(st, max(m.width-4, 24))
	if st.ShowAnalytics() {
		leftWidth := max(m.width/2-2, 24)
		rightWidth := max(m.width-leftWidth-6, 24)
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderLeftColumn(st, leftWidth),
			"  ",
			m.renderAnalytics(st, rightWidth),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", m.renderFooter())
}

func (m *Model) renderLeftColumn(st dashboard.State, width int) string {
	sections := []string{m.renderControls(st)}

	if m.prompting {
		sections = append(sections, m.styles.Prompt.Width(width-2).Render(m.input.View()))
	}
	if st.Upload.Selected() {
		sections = append(sections, m.renderFileCard(st.Upload, width))
	}
	sections = append(sections, m.renderPreview(st.Upload, width), m.renderPrediction(st))
	if st.Error != nil {
		sections = append(sections, m.styles.ErrorBox.Width(width-2).Render(emoji.GetEmoji("error")+" "+*st.Error))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderControls(st dashboard.State) string {
	choose := m.styles.Key.Render("[o]") + " Choose Image"

	var predict string
	switch {
	case st.Loading:
		predict = m.spinner.Render()
	case st.Upload.Selected():
		predict = m.styles.Key.Render("[p]") + " Predict"
	default:
		predict = m.styles.Muted.Render("[p] Predict")
	}

	return choose + "   " + predict
}

func (m *Model) renderFileCard(up dashboard.Upload, width int) string {
	desc := formatter.FormatBytes(up.Size) + " • not a decodable image"
	if up.Preview != nil {
		b := up.Preview.Bounds()
		desc = fmt.Sprintf("%s • %s %dx%d", formatter.FormatBytes(up.Size), up.Preview.Format(), b.Dx(), b.Dy())
	}
	return components.NewCard("Selected image", filepath.Base(up.Path), desc).
		SetIcon(emoji.GetEmoji("image")).
		SetWidth(width - 2).
		Render()
}

func (m *Model) renderPreview(up dashboard.Upload, width int) string {
	w, h := previewSize(width-4, m.height/2-4)
	if up.Preview != nil {
		if out, err := up.Preview.Render(w, h); err == nil {
			return m.styles.Panel.Render(out)
		}
	}

	placeholder := m.styles.Muted.
		Width(w).
		Height(h).
		Align(lipgloss.Center, lipgloss.Center).
		Render("Image preview appears here")
	return m.styles.Panel.Render(placeholder)
}

func (m *Model) renderPrediction(st dashboard.State) string {
	title := m.styles.Title.Render("Prediction")
	if st.Prediction == nil {
		return lipgloss.JoinVertical(lipgloss.Left, title, m.styles.Muted.Render("No prediction yet"))
	}

	class := dashboard.BadgeClass(*st.Prediction)
	badge := m.styles.Badge(class).Render(formatter.BadgeText(*st.Prediction))
	return lipgloss.JoinVertical(lipgloss.Left, title, emoji.GetEmoji(class)+" "+badge)
}

func (m *Model) renderAnalytics(st dashboard.State, width int) string {
	title := m.styles.Title.Render(emoji.GetEmoji("statistics") + " Model Analytics")
	set := charts.Build(*st.Metrics, *st.Prediction)

	return m.styles.Panel.
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", charts.RenderTerminal(set, width-4)))
}

func (m *Model) renderFooter() string {
	help := "o open • p predict • e export charts • q quit"
	if m.prompting {
		help = "enter select • esc cancel"
	}
	lines := []string{m.styles.Muted.Render(help)}

	if m.status != "" {
		style := m.styles.Status
		if m.statusError {
			style = m.styles.Failure
		}
		lines = append([]string{style.Render(m.status)}, lines...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// previewSize clamps a preview area to something a terminal can show
func previewSize(width, height int) (int, int) {
	return min(max(width, 8), 64), min(max(height, 4), 24)
}

// cleanPath trims whitespace and the quotes terminals add to dropped files
func cleanPath(raw string) string {
	path := strings.Trim(strings.TrimSpace(raw), `"'`)
	if path == "" {
		return ""
	}
	return config.ExpandPath(path)
}

func samePath(a, b string) bool {
	abs, err := filepath.Abs(a)
	if err != nil {
		return false
	}
	return abs == filepath.Clean(b)
}

// Run runs the dashboard until the user quits
func Run(m *Model) error {
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
