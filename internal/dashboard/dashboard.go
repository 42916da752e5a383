package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/leadradar/internal/model"
)

const (
	loadTimeout = 30 * time.Second
	barWidth    = 10
)

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")) // bright blue

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true).
			Padding(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(14)

	strongStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))  // green
	mediumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")) // amber
	weakStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // gray
)

// LoadFunc fetches the signals shown in the dashboard.
type LoadFunc func(ctx context.Context) ([]model.Signal, error)

type signalsLoadedMsg struct {
	signals []model.Signal
	err     error
}

type dashboardModel struct {
	load    LoadFunc
	signals []model.Signal
	loadErr error
	loading bool

	table  table.Model
	detail viewport.Model
	view   viewState
	width  int
	height int
}

func newDashboardModel(load LoadFunc) dashboardModel {
	t := table.New(
		table.WithColumns(columns(100)),
		table.WithFocused(true),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("24"))
	t.SetStyles(s)

	return dashboardModel{
		load:    load,
		loading: true,
		table:   t,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m dashboardModel) loadCmd() tea.Cmd {
	load := m.load
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		signals, err := load(ctx)
		return signalsLoadedMsg{signals: signals, err: err}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case signalsLoadedMsg:
		m.loading = false
		m.loadErr = msg.err
		if msg.err != nil {
			m.signals = nil
		} else {
			m.signals = msg.signals
		}
		m.table.SetRows(rows(m.signals))
		m.table.SetCursor(0)
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}
	return m, nil
}

func (m dashboardModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, m.loadCmd()
	case "enter":
		if len(m.signals) == 0 {
			return m, nil
		}
		m.view = viewDetail
		m.detail = viewport.New(max(m.width-4, 20), max(m.height-4, 5))
		m.detail.SetContent(renderDetail(m.signals[m.table.Cursor()]))
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m dashboardModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m *dashboardModel) resize() {
	width := max(m.width-4, 40)
	m.table.SetColumns(columns(width))
	// Title (1) + border (2) + status bar (1).
	m.table.SetHeight(max(m.height-4, 5))
	if m.view == viewDetail {
		m.detail.Width = max(m.width-4, 20)
		m.detail.Height = max(m.height-4, 5)
	}
}

func (m dashboardModel) View() string {
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m dashboardModel) viewList() string {
	title := titleStyle.Render(fmt.Sprintf("Recent Signals (%d)", len(m.signals)))
	if m.loading {
		title += "  (loading...)"
	}

	var body string
	switch {
	case m.loadErr != nil:
		body = emptyStyle.Render("no signals available") + "\n" +
			errorStyle.Render("  ⚠ "+m.loadErr.Error()) + "\n" +
			emptyStyle.Render("press r to retry")
	case len(m.signals) == 0 && !m.loading:
		body = emptyStyle.Render("no signals available")
	default:
		body = m.table.View()
	}

	status := statusBarStyle.Width(m.width).Render(" ↑/↓ move  enter detail  r refresh  q quit")
	return title + "\n" + borderStyle.Render(body) + "\n" + status
}

func (m dashboardModel) viewDetail() string {
	title := titleStyle.Render("Signal Details")
	content := borderStyle.Width(max(m.width-2, 20)).Render(m.detail.View())
	status := statusBarStyle.Width(m.width).Render(" esc/backspace back  ↑/↓ scroll  q quit")
	return title + "\n" + content + "\n" + status
}

func columns(width int) []table.Column {
	// Fixed-width columns; details take what is left.
	const company, kind, strength, date = 22, 16, 16, 12
	details := max(width-company-kind-strength-date-10, 12)
	return []table.Column{
		{Title: "Company", Width: company},
		{Title: "Type", Width: kind},
		{Title: "Details", Width: details},
		{Title: "Strength", Width: strength},
		{Title: "Date", Width: date},
	}
}

func rows(signals []model.Signal) []table.Row {
	out := make([]table.Row, 0, len(signals))
	for _, s := range signals {
		out = append(out, table.Row{
			s.CompanyName,
			typeLabel(s.SignalType),
			s.Details,
			strengthBar(s.Strength),
			formatDate(s.CreatedAt),
		})
	}
	return out
}

// strengthBar renders strength as a fixed-width bar followed by the number.
func strengthBar(strength int) string {
	strength = min(max(strength, 0), 100)
	filled := (strength*barWidth + 50) / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled) + fmt.Sprintf(" %d", strength)
}

func strengthStyle(strength int) lipgloss.Style {
	switch {
	case strength >= 70:
		return strongStyle
	case strength >= 40:
		return mediumStyle
	default:
		return weakStyle
	}
}

func typeLabel(t model.SignalType) string {
	switch t {
	case model.SignalJobPosting:
		return "Job Posting"
	case model.SignalTechChange:
		return "Tech Change"
	case model.SignalFunding:
		return "Funding"
	case model.SignalHiringVelocity:
		return "Hiring Velocity"
	}
	return string(t)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "n/a"
	}
	return t.Local().Format("2006-01-02")
}

func renderDetail(s model.Signal) string {
	var b strings.Builder
	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	addField("Company", s.CompanyName)
	addField("Type", typeLabel(s.SignalType))
	addField("Strength", strengthStyle(s.Strength).Render(strengthBar(s.Strength)))
	addField("Details", s.Details)
	addField("Job Count", fmt.Sprintf("%d", s.Metadata.JobCount))
	if !s.CreatedAt.IsZero() {
		addField("Detected", s.CreatedAt.Local().Format("2006-01-02 15:04 MST"))
	}
	addField("Signal ID", s.ID.String())

	if len(s.Metadata.RecentTitles) > 0 {
		b.WriteByte('\n')
		b.WriteString(detailLabelStyle.Render("Recent Roles"))
		b.WriteByte('\n')
		for _, title := range s.Metadata.RecentTitles {
			b.WriteString("  • " + title + "\n")
		}
	}
	return b.String()
}

// Run launches the full-screen dashboard. load is called on start and on
// every refresh; its errors are shown in place and never end the program.
func Run(load LoadFunc) error {
	p := tea.NewProgram(newDashboardModel(load), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
