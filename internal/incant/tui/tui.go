package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lexcodex/incant/extract"
	runtimesvc "github.com/lexcodex/incant/internal/incant/runtime"
	"github.com/lexcodex/incant/session"
)

type phase int

const (
	phaseInput phase = iota
	phaseWorking
	phaseConfirm
	phaseEdit
)

// Run launches the Bubble Tea console.
func Run(ctx context.Context, rt *runtimesvc.Runtime) error {
	m := newModel(ctx, rt)
	program := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

type model struct {
	ctx        context.Context
	runtime    *runtimesvc.Runtime
	controller *session.Controller

	width  int
	height int

	phase   phase
	input   textinput.Model
	editor  textarea.Model
	view    viewport.Model
	spin    spinner.Model
	log     []string
	working string

	inputs      []string
	recallIndex int
}

func newModel(ctx context.Context, rt *runtimesvc.Runtime) model {
	input := textinput.New()
	input.Placeholder = "Describe a task, or /help for commands"
	input.CharLimit = 4000
	input.Prompt = "❯ "
	input.Focus()

	editor := textarea.New()
	editor.Placeholder = "Edit the code, ctrl+s to apply"
	editor.CharLimit = 0
	editor.ShowLineNumbers = true

	vp := viewport.New(0, 0)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	log := append([]string{}, rt.Banner()...)
	log = append(log, "Describe a task and the configured model drafts the code for it. /help lists commands.")

	m := model{
		ctx:        ctx,
		runtime:    rt,
		controller: rt.Controller,
		phase:      phaseInput,
		input:      input,
		editor:     editor,
		view:       vp,
		spin:       sp,
		log:        log,
	}
	return m
}

func (m model) Init() tea.Cmd {
	return waitEventCmd(m.runtime.Events)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.view.Width = max(10, msg.Width-2)
		m.view.Height = max(5, msg.Height-4)
		m.input.Width = max(20, msg.Width-4)
		m.editor.SetWidth(max(20, msg.Width-4))
		m.editor.SetHeight(min(12, max(4, msg.Height/2)))
		m.refreshViewport()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case eventMsg:
		if line := describeEvent(msg.event); line != "" {
			m.appendLine(line)
		}
		switch msg.event.Type {
		case session.EventGenerationStart:
			m.working = "generating…"
		case session.EventInstallStart:
			m.working = "installing…"
		case session.EventExecutionStart:
			m.working = "running…"
		}
		return m, waitEventCmd(m.runtime.Events)
	case spinner.TickMsg:
		if m.phase != phaseWorking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case turnMsg:
		return m.handleTurn(msg)
	default:
		var cmd tea.Cmd
		switch m.phase {
		case phaseInput:
			m.input, cmd = m.input.Update(msg)
		case phaseEdit:
			m.editor, cmd = m.editor.Update(msg)
		}
		return m, cmd
	}
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("incant"))
	b.WriteString("  ")
	b.WriteString(statusStyle.Render(fmt.Sprintf("mode:%s · model:%s · lang:%s",
		m.runtime.Session.Mode, m.runtime.Session.Model, m.runtime.Session.Language)))
	b.WriteString("\n")
	b.WriteString(m.view.View())
	b.WriteString("\n")
	switch m.phase {
	case phaseInput:
		b.WriteString(m.input.View())
	case phaseWorking:
		b.WriteString(m.spin.View())
		b.WriteString(infoStyle.Render(m.working))
	case phaseConfirm:
		b.WriteString(confirmStyle.Render("run this? (y)es · (e)dit · (n)o"))
	case phaseEdit:
		b.WriteString(m.editor.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("ctrl+s apply · esc cancel"))
	}
	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	switch m.phase {
	case phaseInput:
		switch msg.String() {
		case "enter":
			return m, m.submit()
		case "up":
			m.recallPrev()
			return m, nil
		case "down":
			m.recallNext()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	case phaseWorking:
		return m, nil
	case phaseConfirm:
		switch msg.String() {
		case "y", "Y", "enter":
			m.phase = phaseWorking
			m.working = "running…"
			return m, tea.Batch(confirmCmd(m.ctx, m.controller), m.spin.Tick)
		case "e", "E":
			m.phase = phaseWorking
			m.working = "opening editor…"
			return m, submitCmd(m.ctx, m.controller, "/edit")
		case "n", "N", "esc":
			turn := m.controller.Discard()
			m.appendLine(infoStyle.Render(turn.Message))
			m.phase = phaseInput
			m.input.Focus()
			return m, nil
		}
		return m, nil
	case phaseEdit:
		switch msg.String() {
		case "ctrl+s":
			m.phase = phaseWorking
			m.working = "applying edit…"
			m.editor.Blur()
			return m, tea.Batch(applyEditCmd(m.ctx, m.controller, m.editor.Value()), m.spin.Tick)
		case "esc":
			m.phase = phaseConfirm
			m.editor.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) submit() tea.Cmd {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return nil
	}
	m.input.SetValue("")
	m.inputs = append(m.inputs, line)
	m.recallIndex = len(m.inputs)
	m.appendLine(promptStyle.Render("❯ " + line))
	m.phase = phaseWorking
	m.working = "working…"
	m.input.Blur()
	return tea.Batch(submitCmd(m.ctx, m.controller, line), m.spin.Tick)
}

func (m model) handleTurn(msg turnMsg) (tea.Model, tea.Cmd) {
	m.working = ""
	if msg.err != nil {
		m.appendLine(errorStyle.Render("✗ " + msg.err.Error()))
		m.phase = phaseInput
		m.input.Focus()
		return m, nil
	}
	turn := msg.turn
	if turn.Exit {
		return m, tea.Quit
	}
	if turn.ClearScreen {
		m.log = nil
		m.refreshViewport()
	}
	if turn.Message != "" {
		m.appendLine(turn.Message)
	}
	if turn.NeedsEdit && turn.Artifact != nil {
		m.editor.SetValue(turn.Artifact.Body)
		m.editor.Focus()
		m.phase = phaseEdit
		return m, nil
	}
	if turn.Artifact != nil && m.runtime.Config.DisplayCode &&
		(m.controller.State() == session.StateAwaitingConfirmation || turn.Result != nil) {
		m.appendLine(renderArtifact(turn.Artifact))
	}
	if m.controller.State() == session.StateAwaitingConfirmation {
		m.phase = phaseConfirm
		m.input.Blur()
		return m, nil
	}
	if turn.Result != nil {
		m.appendResult(turn)
	}
	m.phase = phaseInput
	m.input.Focus()
	return m, nil
}

func (m *model) appendResult(turn *session.Turn) {
	if turn.ExecErr != nil {
		m.appendLine(errorStyle.Render(fmt.Sprintf("✗ exit %d: %v", turn.Result.ExitCode, turn.ExecErr)))
	} else {
		m.appendLine(okStyle.Render(fmt.Sprintf("✓ exit %d", turn.Result.ExitCode)))
	}
	if out := strings.TrimRight(turn.Result.Stdout, "\n"); out != "" {
		m.appendLine(out)
	}
	if errOut := strings.TrimRight(turn.Result.Stderr, "\n"); errOut != "" && turn.ExecErr != nil {
		m.appendLine(dimStyle.Render(errOut))
	}
}

func (m *model) recallPrev() {
	if len(m.inputs) == 0 || m.recallIndex == 0 {
		return
	}
	m.recallIndex--
	m.input.SetValue(m.inputs[m.recallIndex])
	m.input.CursorEnd()
}

func (m *model) recallNext() {
	if m.recallIndex >= len(m.inputs) {
		return
	}
	m.recallIndex++
	if m.recallIndex == len(m.inputs) {
		m.input.SetValue("")
		return
	}
	m.input.SetValue(m.inputs[m.recallIndex])
	m.input.CursorEnd()
}

func (m *model) appendLine(line string) {
	m.log = append(m.log, line)
	m.refreshViewport()
}

func (m *model) refreshViewport() {
	if m.view.Width == 0 {
		return
	}
	m.view.SetContent(strings.Join(m.log, "\n"))
	m.view.GotoBottom()
}

func renderArtifact(artifact *extract.Artifact) string {
	header := fmt.Sprintf("%s v%d", artifact.Language, artifact.Version)
	return codeStyle.Render(dimStyle.Render(header) + "\n" + artifact.Body)
}

// describeEvent turns a controller event into a transcript line. Turn errors
// are skipped; the turn handler already prints them.
func describeEvent(event session.Event) string {
	switch event.Type {
	case session.EventGenerationStart:
		return dimStyle.Render("… generating with " + event.Message)
	case session.EventGenerationDone:
		return dimStyle.Render("… received " + event.Message)
	case session.EventExtraction:
		return dimStyle.Render("… extracted " + event.Message)
	case session.EventInstallStart:
		return dimStyle.Render("… installing " + event.Message)
	case session.EventInstallDone:
		return dimStyle.Render("… installed " + event.Message)
	case session.EventExecutionStart:
		return dimStyle.Render("… running " + event.Message)
	case session.EventExecutionDone:
		return dimStyle.Render("… " + event.Message)
	case session.EventNotice:
		return warnStyle.Render("⚠ " + event.Message)
	case session.EventTurnError:
		return ""
	}
	return event.Message
}

// --- Commands ---

type turnMsg struct {
	turn *session.Turn
	err  error
}

type eventMsg struct{ event session.Event }

func submitCmd(ctx context.Context, controller *session.Controller, line string) tea.Cmd {
	return func() tea.Msg {
		turn, err := controller.Submit(ctx, line)
		return turnMsg{turn: turn, err: err}
	}
}

func confirmCmd(ctx context.Context, controller *session.Controller) tea.Cmd {
	return func() tea.Msg {
		turn, err := controller.Confirm(ctx)
		return turnMsg{turn: turn, err: err}
	}
}

func applyEditCmd(ctx context.Context, controller *session.Controller, body string) tea.Cmd {
	return func() tea.Msg {
		turn, err := controller.ApplyEdit(ctx, body)
		return turnMsg{turn: turn, err: err}
	}
}

func waitEventCmd(events <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg{event: event}
	}
}

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("79"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("204")).Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("150"))
	confirmStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Padding(0, 1)
	codeStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
)
