package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"mnemogen/internal/table"
)

type progressModel struct {
	title  string
	events <-chan table.Event
	spin   spinner.Model
	prog   progress.Model
	items  []sourceItem
	index  map[string]int
	width  int
	done   bool
}

type sourceItem struct {
	name    string
	path    string
	status  table.Status
	records uint32
}

type eventMsg table.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that shows per-source status
// while a table is generated. It quits when events is closed.
func NewProgressModel(title string, sources []table.Source, events <-chan table.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]sourceItem, 0, len(sources))
	index := make(map[string]int, len(sources))
	for i, src := range sources {
		items = append(items, sourceItem{name: src.Var, path: src.Path, status: table.StatusQueued})
		index[src.Var] = i
	}
	return &progressModel{
		title:  title,
		events: events,
		spin:   sp,
		prog:   prog,
		items:  items,
		index:  index,
		width:  80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(table.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		updated, cmd := m.prog.Update(msg)
		m.prog = updated.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.done {
		header = "done: " + header
	} else {
		header = fmt.Sprintf("%s %s", m.spin.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	const statusWidth = 10
	nameWidth := max(m.width-statusWidth-16, 20)
	for _, item := range m.items {
		status := styleStatus(item.status).Render(fmt.Sprintf("%*s", statusWidth, item.status))
		label := truncate(item.name+" ← "+item.path, nameWidth)
		line := fmt.Sprintf("  %s %s", status, label)
		if item.status == table.StatusDone {
			line += fmt.Sprintf(" (%d records)", item.records)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev table.Event) tea.Cmd {
	idx, ok := m.index[ev.Var]
	if !ok {
		return nil
	}
	m.items[idx].status = ev.Status
	m.items[idx].records = ev.Records
	return m.prog.SetPercent(m.fraction())
}

func (m *progressModel) fraction() float64 {
	if len(m.items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range m.items {
		switch item.status {
		case table.StatusDone, table.StatusError:
			total += 1.0
		case table.StatusWorking:
			total += 0.5
		}
	}
	return total / float64(len(m.items))
}

func styleStatus(status table.Status) lipgloss.Style {
	switch status {
	case table.StatusDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case table.StatusError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case table.StatusWorking:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
