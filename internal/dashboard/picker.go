package dashboard

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/leadradar/internal/config"
)

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Padding(1, 0, 1, 2)

	pickerItemStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 4)

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 0, 0, 2)

	pickerHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(1, 0, 0, 2)
)

type pickerModel struct {
	companies []config.CompanyConfig
	cursor    int
	marked    map[int]bool
	chosen    []string
	quit      bool
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
	case "q", "ctrl+c", "esc":
		m.quit = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.companies)-1 {
			m.cursor++
		}
	case " ", "x":
		if len(m.companies) > 0 {
			m.marked[m.cursor] = !m.marked[m.cursor]
		}
	case "enter":
		if len(m.companies) == 0 {
			return m, nil
		}
		for i, c := range m.companies {
			if m.marked[i] {
				m.chosen = append(m.chosen, c.Name)
			}
		}
		if len(m.chosen) == 0 {
			m.chosen = []string{m.companies[m.cursor].Name}
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	var b strings.Builder
	b.WriteString(pickerTitleStyle.Render("Scan: select companies"))
	b.WriteByte('\n')

	for i, c := range m.companies {
		box := "[ ]"
		if m.marked[i] {
			box = "[x]"
		}
		label := fmt.Sprintf("%s %s", box, c.Name)
		if !c.Enabled {
			label += " (disabled)"
		}
		if i == m.cursor {
			b.WriteString(pickerSelectedStyle.Render("> " + label))
		} else {
			b.WriteString(pickerItemStyle.Render(label))
		}
		b.WriteByte('\n')
	}

	b.WriteString(pickerHintStyle.Render("↑/↓/j/k navigate  space mark  enter scan  q quit"))
	return b.String()
}

// RunCompanyPicker shows an interactive multi-select over the configured
// companies. It returns the chosen names (the highlighted one if none were
// marked), or nil if the user quit.
func RunCompanyPicker(companies []config.CompanyConfig) ([]string, error) {
	m := pickerModel{
		companies: companies,
		marked:    make(map[int]bool),
	}

	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return nil, err
	}

	final := result.(pickerModel)
	if final.quit {
		return nil, nil
	}
	return final.chosen, nil
}
