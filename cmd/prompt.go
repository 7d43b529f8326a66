package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"modpack-server-installer/ui"
)

// termPromptModel asks for a search term on a single line.
type termPromptModel struct {
	input     textinput.Model
	submitted bool
	quitting  bool
}

func newTermPrompt() termPromptModel {
	ti := textinput.New()
	ti.Placeholder = "e.g. Revelation"
	ti.CharLimit = 64
	ti.Width = 40
	ti.Focus()
	return termPromptModel{input: ti}
}

func (m termPromptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m termPromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			if strings.TrimSpace(m.input.Value()) != "" {
				m.submitted = true
				return m, tea.Quit
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m termPromptModel) View() string {
	if m.submitted || m.quitting {
		return ""
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s\n", ui.Banner("Search for a modpack"), m.input.View(), ui.Dim("enter: search  esc: quit"))
}

// term returns the entered text once submitted.
func (m termPromptModel) term() string {
	if !m.submitted {
		return ""
	}
	return strings.TrimSpace(m.input.Value())
}

// promptSearch asks for a search term when the command was started without
// a pack id.
func promptSearch() (request, error) {
	final, err := tea.NewProgram(newTermPrompt()).Run()
	if err != nil {
		return request{}, fmt.Errorf("failed to run search prompt: %w", err)
	}
	term := final.(termPromptModel).term()
	if term == "" {
		return request{}, errCancelled
	}
	return request{Term: term}, nil
}
