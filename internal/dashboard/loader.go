package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/leadradar/internal/model"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// ErrCancelled is returned by RunLoader when the user presses ctrl+c.
var ErrCancelled = errors.New("cancelled")

type computeDoneMsg struct {
	signals []model.Signal
	err     error
}

type spinnerTickMsg struct{}

type loaderModel struct {
	label   string
	fn      LoadFunc
	timeout time.Duration
	frame   int
	result  []model.Signal
	err     error
	done    bool
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.run(), m.tick())
}

func (m loaderModel) run() tea.Cmd {
	fn, timeout := m.fn, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		signals, err := fn(ctx)
		return computeDoneMsg{signals: signals, err: err}
	}
}

func (m loaderModel) tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case computeDoneMsg:
		m.result = msg.signals
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinnerTickMsg:
		if m.done {
			return m, nil
		}
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, m.tick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = ErrCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	spinner := lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Render(spinnerFrames[m.frame])
	return fmt.Sprintf("%s %s...\n", spinner, m.label)
}

// RunLoader shows a spinner with label while fn runs. It renders inline (no alt screen).
func RunLoader(label string, timeout time.Duration, fn LoadFunc) ([]model.Signal, error) {
	m := loaderModel{
		label:   label,
		fn:      fn,
		timeout: timeout,
	}
	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return nil, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}
