package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nevora/english-to-code/internal/models"
	"github.com/nevora/english-to-code/internal/translator"
)

type sessionState int

const (
	stateInput sessionState = iota
	stateLoading
	stateError
)

type model struct {
	state      sessionState
	translator *translator.Translator
	target     string
	mode       models.Mode
	refine     bool

	textInput textinput.Model
	viewport  viewport.Model
	err       error
	lastCode  string
	plan      *models.GenerationPlan
	notice    string
	width     int
	height    int
}

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	codeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500"))

	planStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)
)

// NewModel starts an interactive session translating into target.
func NewModel(tr *translator.Translator, target string, mode models.Mode) model {
	ti := textinput.New()
	ti.Placeholder = "Describe a feature in English..."
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 60

	if mode == "" {
		mode = models.DefaultMode
	}
	return model{
		state:      stateInput,
		translator: tr,
		target:     target,
		mode:       mode,
		textInput:  ti,
		viewport:   viewport.New(80, 20),
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

type translatedMsg struct {
	prompt string
	code   string
	plan   models.GenerationPlan
	err    error
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			if m.state != stateInput {
				return m, nil
			}
			input := strings.TrimSpace(m.textInput.Value())
			if input == "" {
				return m, nil
			}
			m.textInput.Reset()
			if strings.HasPrefix(input, "/") {
				return m.command(input)
			}
			m.state = stateLoading
			m.notice = ""
			return m, m.translate(input)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = int(float64(msg.Width) * 0.70)
		m.viewport.Height = msg.Height - 7

	case translatedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.state = stateInput
		m.lastCode = msg.code
		m.plan = &msg.plan
		header := promptStyle.Width(m.viewport.Width).Render("> " + msg.prompt)
		m.viewport.SetContent(header + "\n\n" + codeStyle.Render(msg.code))
		m.viewport.GotoTop()
		return m, nil
	}

	if m.state == stateInput {
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// command handles a slash command typed at the prompt.
func (m model) command(input string) (tea.Model, tea.Cmd) {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/quit":
		return m, tea.Quit
	case "/target":
		supported := m.translator.SupportedTargets()
		for _, t := range supported {
			if t == strings.ToLower(arg) {
				m.target = t
				m.notice = "target set to " + t
				return m, nil
			}
		}
		m.notice = fmt.Sprintf("unsupported target %q. Supported: %s", arg, strings.Join(supported, ", "))
	case "/mode":
		if mode := models.Mode(arg); mode.Valid() {
			m.mode = mode
			m.notice = "mode set to " + arg
			return m, nil
		}
		m.notice = fmt.Sprintf("unsupported mode %q. Supported: %s", arg, strings.Join(models.ModeNames(), ", "))
	case "/refine":
		if m.lastCode == "" && !m.refine {
			m.notice = "nothing to refine yet"
			return m, nil
		}
		m.refine = !m.refine
		m.notice = fmt.Sprintf("refine %s", onOff(m.refine))
	case "/plan":
		if m.plan == nil {
			m.notice = "no plan yet"
			return m, nil
		}
		m.viewport.SetContent(m.plan.Explain())
		m.viewport.GotoTop()
	default:
		m.notice = "unknown command " + name
	}
	return m, nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m model) View() string {
	var s string

	switch m.state {
	case stateInput, stateLoading:
		main := lipgloss.JoinHorizontal(lipgloss.Top, m.viewport.View(), m.renderPlan())
		status := fmt.Sprintf("target=%s mode=%s refine=%s", m.target, m.mode, onOff(m.refine))
		if m.state == stateLoading {
			status += "  translating..."
		}
		lines := []string{main, "\n" + m.textInput.View(), helpStyle.Render(status)}
		if m.notice != "" {
			lines = append(lines, noticeStyle.Render(m.notice))
		}
		lines = append(lines, helpStyle.Render("Commands: /target X, /mode X, /refine, /plan, /quit"))
		s = lipgloss.JoinVertical(lipgloss.Left, lines...)

	case stateError:
		s = fmt.Sprintf("\n  Error: %v\n\nPress Esc to quit.", m.err)
	}

	return "\n" + s + "\n"
}

// renderPlan is the side panel with the intent of the last translation.
func (m model) renderPlan() string {
	if m.plan == nil {
		return ""
	}
	intent := m.plan.Intent

	var b strings.Builder
	for _, section := range []struct {
		title string
		items []string
	}{
		{"ENTITIES", intent.Entities},
		{"ACTIONS", intent.Actions},
		{"CONDITIONS", intent.Conditions},
		{"OUTPUTS", intent.Outputs},
	} {
		b.WriteString(titleStyle.Render(section.title) + "\n")
		if len(section.items) == 0 {
			b.WriteString("(none)\n")
		}
		for _, item := range section.items {
			b.WriteString("- " + item + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(titleStyle.Render("STATE") + "\n")
	for _, k := range []string{"active", "last_event", "status"} {
		fmt.Fprintf(&b, "%s: %s\n", k, m.plan.StateModel[k])
	}

	width := int(float64(m.width) * 0.27)
	return planStyle.Width(width).Height(m.viewport.Height).Render(b.String())
}

func (m model) translate(prompt string) tea.Cmd {
	req := translator.Request{Prompt: prompt, Target: m.target, Mode: m.mode}
	if m.refine {
		req.Refine = true
		req.Context = m.lastCode
	}
	tr := m.translator
	return func() tea.Msg {
		code, plan, err := tr.TranslateWithPlan(context.Background(), req)
		return translatedMsg{prompt: prompt, code: code, plan: plan, err: err}
	}
}

// Run starts the interactive translator.
func Run(tr *translator.Translator, target string, mode models.Mode) error {
	p := tea.NewProgram(NewModel(tr, target, mode), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
