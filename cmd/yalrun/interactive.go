package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/yal-runtime/entry"
	"github.com/wippyai/yal-runtime/guest"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateEdit modelState = iota
	stateRunning
	stateResult
)

type interactiveModel struct {
	err      error
	engine   *guest.Engine
	module   *guest.Module
	settings settings
	filename string
	preview  string
	output   string
	input    textinput.Model
	code     int
	ran      bool
	state    modelState
}

type loadedMsg struct {
	err    error
	engine *guest.Engine
	mod    *guest.Module
}

type previewMsg struct {
	err     error
	preview string
}

type runResultMsg struct {
	err    error
	output string
	code   int
}

func newInteractiveModel(s settings, args []string) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = "args: "
	ti.Placeholder = "arguments after the program path"
	ti.Width = 60
	ti.SetValue(strings.Join(args[1:], " "))
	ti.Focus()

	return &interactiveModel{
		settings: s,
		filename: args[0],
		input:    ti,
		state:    stateEdit,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadModule)
}

func (m *interactiveModel) loadModule() tea.Msg {
	ctx := context.Background()

	data, err := os.ReadFile(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}

	// Program output would corrupt the screen, so it is captured per run.
	eng, err := guest.NewEngine(ctx, &m.settings.guest)
	if err != nil {
		return loadedMsg{err: err}
	}
	mod, err := eng.Load(ctx, data)
	if err != nil {
		eng.Close(ctx)
		return loadedMsg{err: err}
	}
	return loadedMsg{engine: eng, mod: mod}
}

func (m *interactiveModel) args() []string {
	return append([]string{m.filename}, strings.Fields(m.input.Value())...)
}

func (m *interactiveModel) close() {
	if m.engine != nil {
		m.engine.Close(context.Background())
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.close()
			return m, tea.Quit

		case "tab":
			if m.state == stateEdit && m.module != nil {
				return m, m.previewArgs(m.args())
			}

		case "enter":
			switch m.state {
			case stateEdit:
				if m.module == nil {
					return m, nil
				}
				m.state = stateRunning
				return m, m.runProgram(m.args())
			case stateResult:
				m.state = stateEdit
				m.output = ""
				m.err = nil
				return m, nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.engine = msg.engine
		m.module = msg.mod
		return m, m.previewArgs(m.args())

	case previewMsg:
		m.preview = msg.preview
		m.err = msg.err
		return m, nil

	case runResultMsg:
		m.code = msg.code
		m.ran = true
		m.output = msg.output
		m.err = msg.err
		m.state = stateResult
		return m, nil
	}

	if m.state == stateEdit {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// previewArgs marshals args into a scratch instance and renders the Slice.
func (m *interactiveModel) previewArgs(args []string) tea.Cmd {
	mod, s := m.module, m.settings
	return func() tea.Msg {
		ctx := context.Background()
		inst, err := mod.Instantiate(ctx)
		if err != nil {
			return previewMsg{err: err}
		}
		defer inst.Close(ctx)

		slice, _, err := entry.NewRunner(s.entry).Prepare(inst, args)
		if err != nil {
			return previewMsg{err: err}
		}
		rows, err := describeArgs(inst.Memory(), slice, s.entry.Target)
		if err != nil {
			return previewMsg{err: err}
		}
		return previewMsg{preview: renderArgs(slice, rows, true)}
	}
}

// runProgram calls Main in a fresh instance whose output is captured.
func (m *interactiveModel) runProgram(args []string) tea.Cmd {
	mod, s := m.module, m.settings
	return func() tea.Msg {
		ctx := context.Background()
		var out bytes.Buffer
		inst, err := mod.InstantiateWithOutput(ctx, &out, &out)
		if err != nil {
			return runResultMsg{code: 1, err: err}
		}
		defer inst.Close(ctx)

		code, err := execute(ctx, s, inst, args, &out, false)
		return runResultMsg{code: code, output: out.String(), err: err}
	}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state == stateEdit && m.module == nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress esc to quit.", m.err))
	}
	if m.module == nil {
		return "Loading program..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Yal Runner"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateEdit:
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n")
		} else {
			b.WriteString(m.preview)
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab preview • enter run • esc quit"))

	case stateRunning:
		b.WriteString("Running Main...")

	case stateResult:
		if m.output != "" {
			b.WriteString(m.output)
			if !strings.HasSuffix(m.output, "\n") {
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n")
		}
		b.WriteString(resultStyle.Render(fmt.Sprintf("exit status %d", m.code)))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • esc quit"))
	}

	return b.String()
}

// exitStatus is the status of the last run, or 0 when Main never ran.
func (m *interactiveModel) exitStatus() int {
	if !m.ran {
		return 0
	}
	return m.code
}

// runInteractive returns the exit status of the last run.
func runInteractive(s settings, args []string) (int, error) {
	p := tea.NewProgram(newInteractiveModel(s, args), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return 1, err
	}
	m, ok := final.(*interactiveModel)
	if !ok {
		return 0, nil
	}
	return m.exitStatus(), nil
}
