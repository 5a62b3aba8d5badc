// ABOUTME: Model is a Bubble Tea TUI that polls a Deck's directory snapshot and renders
// ABOUTME: it as a bubbles/table, grounded on the teacher's tick-driven status panels.
package hapmonitor

import (
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DRoMarin/caravela/core"
	"github.com/DRoMarin/caravela/deck"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))

	initiatedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	activeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	waitingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	suspendedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62"))
)

// styleForState maps an AgentState to its display style, mirroring the
// teacher's StyleForStatus dispatch over node statuses.
func styleForState(s core.AgentState) lipgloss.Style {
	switch s {
	case core.Active:
		return activeStyle
	case core.Waiting:
		return waitingStyle
	case core.Suspended:
		return suspendedStyle
	default:
		return initiatedStyle
	}
}

// tickMsg drives periodic re-polling of the Deck, same pattern as the
// teacher's TickMsg/TickCmd pair.
type tickMsg time.Time

func tickCmd(interval time.Duration) tea.Cmd {
	return func() tea.Msg {
		time.Sleep(interval)
		return tickMsg(time.Now())
	}
}

var columns = []table.Column{
	{Title: "AGENT", Width: 24},
	{Title: "STATE", Width: 10},
	{Title: "PRIORITY", Width: 8},
}

// Model is the hapmonitor Bubble Tea model. It never writes to the Deck;
// each tick copies deck.Snapshot() into rows, and View renders the rows from
// the most recent tick.
type Model struct {
	deck     *deck.Deck
	interval time.Duration
	table    table.Model

	rows   []deck.AgentSnapshot
	width  int
	height int
}

// NewModel returns a Model polling d every interval. A non-positive interval
// defaults to 250ms.
func NewModel(d *deck.Deck, interval time.Duration) Model {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(false),
		table.WithHeight(20),
	)
	return Model{deck: d, interval: interval, table: t}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.interval)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(m.height - 4)
		return m, nil

	case tickMsg:
		m.rows = m.deck.Snapshot()
		sort.Slice(m.rows, func(i, j int) bool {
			return m.rows[i].AID.Name < m.rows[j].AID.Name
		})
		m.table.SetRows(snapshotsToRows(m.rows))
		return m, tickCmd(m.interval)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}
	return m, nil
}

// snapshotsToRows converts Deck snapshots to table.Row values.
func snapshotsToRows(rows []deck.AgentSnapshot) []table.Row {
	out := make([]table.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, table.Row{row.AID.String(), row.State.String(), strconv.Itoa(row.Priority)})
	}
	return out
}

// View implements tea.Model.
func (m Model) View() string {
	header := titleStyle.Render("caravela directory")
	body := m.table.View()
	if len(m.rows) == 0 {
		body += "\nno agents registered"
	}

	width := m.width
	if width <= 0 {
		width = 60
	}
	return header + "\n" + borderStyle.Width(width-2).Render(body)
}

// Run starts the interactive TUI against d, blocking until the user quits.
func Run(d *deck.Deck) error {
	p := tea.NewProgram(NewModel(d, 250*time.Millisecond))
	_, err := p.Run()
	return err
}
