package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	focusdto "studyfocus/internal/modules/focus/dto"
	timerdto "studyfocus/internal/modules/timer/dto"
	apperrors "studyfocus/internal/platform/errors"
	"studyfocus/internal/ui/components"
	"studyfocus/internal/ui/theme"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type timerPort interface {
	Start(ctx context.Context, input timerdto.StartInput) (timerdto.StateOutput, error)
	Pause(ctx context.Context) (timerdto.StateOutput, error)
	Resume(ctx context.Context) (timerdto.StateOutput, error)
	Skip(ctx context.Context) (timerdto.StateOutput, error)
	Stop(ctx context.Context) (timerdto.SummaryOutput, error)
	Watch(ctx context.Context) (<-chan timerdto.StateOutput, func())
	ConsumeCompleted(ctx context.Context) (timerdto.CompletedOutput, bool)
}

type focusPort interface {
	Status(ctx context.Context) focusdto.StatusOutput
}

// ─── async messages ───────────────────────────────────────────────────────────

type stateMsg struct {
	state timerdto.StateOutput
	ok    bool
}

type startedMsg struct {
	state timerdto.StateOutput
	err   error
}

type commandMsg struct {
	name  string
	state timerdto.StateOutput
	err   error
}

type stoppedMsg struct {
	summary timerdto.SummaryOutput
	err     error
	quit    bool
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Toggle  key.Binding
	Skip    key.Binding
	Stop    key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Toggle:  key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "pause/resume")),
		Skip:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "skip phase")),
		Stop:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop session")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Skip, k.Stop, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Skip, k.Stop},
		{k.Help, k.Palette, k.Quit},
	}
}

// paletteCommands lists what runCommand accepts.
var paletteCommands = []components.Command{
	{Name: "pause", Help: "pause the current phase"},
	{Name: "resume", Help: "continue a paused phase"},
	{Name: "skip", Help: "end the current phase now"},
	{Name: "stop", Help: "stop and record the session"},
	{Name: "focus", Help: "show focus enforcement status"},
	{Name: "quit", Help: "stop the session and exit"},
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model renders the running session. The engine pushes snapshots through the watch channel;
// commands go back through the timer port.
type Model struct {
	timer timerPort
	focus focusPort
	start timerdto.StartInput

	updates     <-chan timerdto.StateOutput
	unsubscribe func()

	state    timerdto.StateOutput
	keys     keyMap
	help     help.Model
	showHelp bool
	palette  components.Palette
	notice   string
	status   string
	width    int
	height   int
}

func NewModel(timer timerPort, focus focusPort, start timerdto.StartInput) Model {
	updates, unsubscribe := timer.Watch(context.Background())
	return Model{
		timer:       timer,
		focus:       focus,
		start:       start,
		updates:     updates,
		unsubscribe: unsubscribe,
		keys:        defaultKeys(),
		help:        help.New(),
		palette:     components.NewPalette(paletteCommands),
		status:      "starting",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.startCmd(), m.waitForState())
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 60))
		m.help.Width = m.width

	case stateMsg:
		if !msg.ok {
			return m, nil
		}
		m.state = msg.state
		if m.state.SessionCompleted {
			m.consumeCompletion()
		}
		return m, m.waitForState()

	case startedMsg:
		if msg.err != nil {
			m.status = "start failed: " + msg.err.Error()
			return m, nil
		}
		m.state = msg.state
		m.status = "session started"

	case commandMsg:
		if msg.err != nil {
			m.status = msg.name + ": " + msg.err.Error()
			return m, nil
		}
		m.state = msg.state
		m.status = msg.name

	case stoppedMsg:
		switch {
		case msg.err != nil && !errors.Is(msg.err, apperrors.ErrNotRunning):
			m.status = "stop: " + msg.err.Error()
		case msg.err == nil:
			m.notice = fmt.Sprintf("Session stopped after %d min (cycle %d)", msg.summary.DurationMinutes, msg.summary.Cycles)
			m.status = "stopped"
		}
		if msg.quit {
			m.unsubscribe()
			return m, tea.Quit
		}

	case components.PaletteSubmitMsg:
		return m.runCommand(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m.runCommand("quit")
		case key.Matches(msg, m.keys.Toggle):
			if m.state.IsPaused {
				return m.runCommand("resume")
			}
			return m.runCommand("pause")
		case key.Matches(msg, m.keys.Skip):
			return m.runCommand("skip")
		case key.Matches(msg, m.keys.Stop):
			return m.runCommand("stop")
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
		case key.Matches(msg, m.keys.Palette):
			return m, m.palette.Open()
		}
	}
	return m, nil
}

// consumeCompletion shows the completion notice. The engine hands the event out once, so a
// redraw or a second completed snapshot never repeats it.
func (m *Model) consumeCompletion() {
	event, ok := m.timer.ConsumeCompleted(context.Background())
	if !ok {
		return
	}
	s := event.Summary
	m.notice = fmt.Sprintf("Session complete: %d min over %d cycles of %s", s.DurationMinutes, s.Cycles, s.TaskName)
	m.status = "completed"
}

func (m Model) runCommand(input string) (tea.Model, tea.Cmd) {
	switch strings.TrimSpace(input) {
	case "":
		return m, nil
	case "pause":
		return m, m.commandCmd("paused", m.timer.Pause)
	case "resume":
		return m, m.commandCmd("resumed", m.timer.Resume)
	case "skip":
		return m, m.commandCmd("skipped", m.timer.Skip)
	case "stop":
		return m, m.stopCmd(false)
	case "focus":
		m.status = m.focusLine()
	case "quit":
		if running(m.state) {
			return m, m.stopCmd(true)
		}
		m.unsubscribe()
		return m, tea.Quit
	default:
		m.status = "unknown command: " + input
	}
	return m, nil
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	var body string
	switch {
	case m.showHelp:
		body = m.help.View(m.keys)
	case m.palette.Visible():
		body = m.palette.View()
	default:
		body = m.renderTimer()
	}
	footer := theme.Muted.Render(m.status) + "\n" + m.help.ShortHelpView(m.keys.ShortHelp())
	view := lipgloss.JoinVertical(lipgloss.Left, body, "", footer)
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, view)
	}
	return view
}

func (m Model) renderTimer() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("studyfocus") + "\n\n")

	s := m.state
	if !running(s) {
		if m.notice != "" {
			sb.WriteString(theme.Notice.Render(m.notice) + "\n")
		} else {
			sb.WriteString(theme.Muted.Render("no active session") + "\n")
		}
		return theme.Pane.Render(sb.String())
	}

	phase := lipgloss.NewStyle().Foreground(theme.PhaseColor(string(s.Phase))).Bold(true)
	label := strings.ReplaceAll(string(s.Phase), "_", " ")
	if s.IsPaused {
		label += " (paused)"
	}
	sb.WriteString(theme.Hot.Render(s.TaskName) + "\n")
	sb.WriteString(phase.Render(label) + "\n\n")
	sb.WriteString(phase.Render(Clock(s.TimeRemainingSeconds)) + "\n")
	sb.WriteString(ProgressBar(s.TotalTimeSeconds-s.TimeRemainingSeconds, s.TotalTimeSeconds, 30) + "\n\n")

	cycle := fmt.Sprintf("cycle %d/%d", s.CurrentCycle, s.TotalCycles)
	if s.AutoLoopEnabled {
		cycle += " (loop)"
	}
	sb.WriteString(theme.Muted.Render(fmt.Sprintf("%s  ·  %d min studied", cycle, s.TotalWorkMinutes)) + "\n")
	sb.WriteString(theme.Muted.Render(m.focusLine()))
	if m.notice != "" {
		sb.WriteString("\n\n" + theme.Notice.Render(m.notice))
	}
	return theme.Pane.Render(sb.String())
}

// running is false for the zero snapshot seen before the first update.
func running(s timerdto.StateOutput) bool {
	return s.SessionID != "" && s.Active()
}

func (m Model) focusLine() string {
	if m.focus == nil {
		return "focus: off"
	}
	status := m.focus.Status(context.Background())
	switch {
	case status.Degraded:
		return "focus: unavailable on this platform"
	case !status.Active:
		return "focus: inactive"
	case status.StrictMode:
		return fmt.Sprintf("focus: strict, %d apps allowed, %d redirects", len(status.Allowed), status.Redirects)
	default:
		return fmt.Sprintf("focus: %d apps allowed, %d redirects", len(status.Allowed), status.Redirects)
	}
}

// Clock formats seconds as mm:ss, or h:mm:ss past an hour.
func Clock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, seconds/60%60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

func ProgressBar(done, total, width int) string {
	filled := 0
	if total > 0 {
		filled = max(0, min(width, done*width/total))
	}
	return theme.BarFilled.Render(strings.Repeat("█", filled)) + theme.BarEmpty.Render(strings.Repeat("░", width-filled))
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) waitForState() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		state, ok := <-updates
		return stateMsg{state: state, ok: ok}
	}
}

func (m Model) startCmd() tea.Cmd {
	return func() tea.Msg {
		state, err := m.timer.Start(context.Background(), m.start)
		return startedMsg{state: state, err: err}
	}
}

func (m Model) commandCmd(name string, fn func(context.Context) (timerdto.StateOutput, error)) tea.Cmd {
	return func() tea.Msg {
		state, err := fn(context.Background())
		return commandMsg{name: name, state: state, err: err}
	}
}

func (m Model) stopCmd(quit bool) tea.Cmd {
	return func() tea.Msg {
		summary, err := m.timer.Stop(context.Background())
		return stoppedMsg{summary: summary, err: err, quit: quit}
	}
}
