package cmd

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"modpack-server-installer/ui"
)

var errCancelled = errors.New("cancelled by user")

// choice is one row of a picker.
type choice struct {
	Title  string
	Detail string
	Tag    string // short coloured label, e.g. a release channel
	Color  int
}

// pickerModel lets the user choose one row with the arrow keys, j/k or a
// number key.
type pickerModel struct {
	title    string
	choices  []choice
	cursor   int
	chosen   int
	quitting bool
}

func newPicker(title string, choices []choice) pickerModel {
	return pickerModel{title: title, choices: choices, chosen: -1}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case "enter":
		if len(m.choices) > 0 {
			m.chosen = m.cursor
			return m, tea.Quit
		}
	default:
		if s := key.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if i := int(s[0] - '1'); i < len(m.choices) {
				m.cursor = i
				m.chosen = i
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.chosen >= 0 || m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(ui.Banner(m.title) + "\n\n")

	for i, c := range m.choices {
		rowStyle := lipgloss.NewStyle().Padding(0, 1)
		indicator := " "
		if i == m.cursor {
			rowStyle = rowStyle.Background(lipgloss.Color("8")).Bold(true)
			indicator = ">"
		}

		row := fmt.Sprintf("%s %d) %-40s", indicator, i+1, truncate(c.Title, 40))
		if c.Tag != "" {
			row += " " + ui.Colorize(fmt.Sprintf("%-8s", c.Tag), c.Color)
		}
		if c.Detail != "" {
			row += " " + truncate(c.Detail, 50)
		}
		b.WriteString(rowStyle.Render(row) + "\n")
	}

	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Italic(true)
	b.WriteString("\n" + footerStyle.Render("↑/k: up  ↓/j: down  1-9/enter: select  q: quit") + "\n")
	return b.String()
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) > maxLen {
		return string(r[:maxLen-3]) + "..."
	}
	return s
}

// pick runs a picker and returns the chosen index.
func pick(title string, choices []choice) (int, error) {
	if len(choices) == 0 {
		return -1, errors.New("nothing to choose from")
	}
	final, err := tea.NewProgram(newPicker(title, choices)).Run()
	if err != nil {
		return -1, fmt.Errorf("failed to run picker: %w", err)
	}
	m := final.(pickerModel)
	if m.chosen < 0 {
		return -1, errCancelled
	}
	return m.chosen, nil
}

// confirm asks a yes/no question; yes is preselected.
func confirm(question string) (bool, error) {
	i, err := pick(question, []choice{{Title: "Yes"}, {Title: "No"}})
	if err != nil {
		return false, err
	}
	return i == 0, nil
}
