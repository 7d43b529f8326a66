package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// taskDoneMsg reports that the background task finished.
type taskDoneMsg struct {
	err error
}

// spinnerModel shows a spinner while a task runs.
type spinnerModel struct {
	spinner spinner.Model
	status  string
	task    func() error
	done    bool
	err     error
}

func newSpinnerModel(status string, task func() error) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return spinnerModel{spinner: s, status: status, task: task}
}

func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runTask())
}

func (m spinnerModel) runTask() tea.Cmd {
	task := m.task
	return func() tea.Msg {
		return taskDoneMsg{err: task()}
	}
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.err = errCancelled
			return m, tea.Quit
		}

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case taskDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf(" %s %s\n", m.spinner.View(), m.status)
}

// withSpinner runs task while showing status. Without a terminal the task
// runs directly.
func withSpinner(status string, task func() error) error {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return task()
	}
	final, err := tea.NewProgram(newSpinnerModel(status, task), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return fmt.Errorf("failed to run spinner: %w", err)
	}
	return final.(spinnerModel).err
}

// interactive reports whether prompts can be shown.
func interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}
