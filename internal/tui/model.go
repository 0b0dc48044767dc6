package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/scantag/internal/app"
)

// DefaultPollInterval is how often the session is polled for a token.
const DefaultPollInterval = 100 * time.Millisecond

// Screen represents the active screen
type Screen int

const (
	ScreenMain Screen = iota
	ScreenPorts
)

type focusArea int

const (
	focusTable focusArea = iota
	focusInput
)

// pollTickMsg is one scheduled poll for the session of generation gen.
type pollTickMsg struct {
	gen uint64
}

type portsListedMsg struct {
	notice app.Notice
	ports  []portItem
	err    error
}

// Model is the Bubble Tea model for the scantag screen. It is the only
// caller of the App it wraps.
type Model struct {
	app          *app.App
	pollInterval time.Duration

	screen Screen
	focus  focusArea
	width  int
	height int

	table       table.Model
	tableStyles table.Styles
	idleStyles  table.Styles
	input       textinput.Model
	rawLog      viewport.Model
	portList    list.Model
	spinner     spinner.Model
	scanning    bool
	notice      *app.Notice
	status      string
	help        help.Model
	tableKeys   tableKeyMap
	inputKeys   inputKeyMap
	portKeys    portKeyMap
	noticeKeys  noticeKeyMap
}

// New creates the model for a. A non-positive pollInterval uses
// DefaultPollInterval.
func New(a *app.App, pollInterval time.Duration) Model {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	selected := table.DefaultStyles()
	selected.Header = selected.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		BorderBottom(true).
		Bold(true)
	selected.Selected = selected.Selected.
		Foreground(TextColor).
		Background(PrimaryColor).
		Bold(true)

	// Without a selection the cursor row renders like any other row
	idle := selected
	idle.Selected = lipgloss.NewStyle()

	t := table.New(
		table.WithColumns(columns(MinTerminalWidth)),
		table.WithFocused(false),
		table.WithHeight(8),
	)
	t.SetStyles(idle)

	input := textinput.New()
	input.Placeholder = "name for the selected token"
	input.Prompt = "Name: "
	input.PromptStyle = BlurredInputStyle
	input.CharLimit = 256
	input.Width = 40

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	portList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	portList.Title = "Serial Ports"
	portList.Styles.Title = TitleStyle
	portList.SetShowStatusBar(false)
	portList.SetShowHelp(false)
	portList.SetFilteringEnabled(false)
	portList.DisableQuitKeybindings()

	m := Model{
		app:          a,
		pollInterval: pollInterval,
		table:        t,
		tableStyles:  selected,
		idleStyles:   idle,
		input:        input,
		rawLog:       viewport.New(MinTerminalWidth, rawLogHeight),
		portList:     portList,
		spinner:      s,
		status:       "Press p to choose a serial port.",
		help:         help.New(),
		tableKeys:    newTableKeyMap(),
		inputKeys:    newInputKeyMap(),
		portKeys:     newPortKeyMap(),
		noticeKeys:   newNoticeKeyMap(),
	}
	m.syncRows()
	return m
}

// Init sets the window title.
func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle("scantag")
}

// Update handles all messages and routes key presses by screen and focus.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case pollTickMsg:
		return m.handleTick(msg)

	case portsListedMsg:
		return m.handlePorts(msg)

	case spinner.TickMsg:
		if !m.scanning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch {
		case m.notice != nil:
			return m.updateNotice(msg)
		case m.screen == ScreenPorts:
			return m.updatePorts(msg)
		case m.focus == focusInput:
			return m.updateInput(msg)
		default:
			return m.updateTable(msg)
		}
	}

	if m.focus == focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) scheduleTick(gen uint64) tea.Cmd {
	return tea.Tick(m.pollInterval, func(time.Time) tea.Msg {
		return pollTickMsg{gen: gen}
	})
}

// handleTick runs one poll step. The chain stops when the tick belongs to a
// closed session.
func (m Model) handleTick(msg pollTickMsg) (tea.Model, tea.Cmd) {
	again, n := m.app.Tick(msg.gen)
	if n != nil {
		m.show(*n)
	}
	m.syncRows()
	if !again {
		return m, nil
	}
	return m, m.scheduleTick(msg.gen)
}

func (m Model) updateNotice(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.noticeKeys.Dismiss) {
		m.notice = nil
	}
	return m, nil
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.tableKeys.Up):
		m.moveSelection(-1)

	case key.Matches(msg, m.tableKeys.Down):
		m.moveSelection(1)

	case key.Matches(msg, m.tableKeys.Name):
		m.focus = focusInput
		m.input.PromptStyle = FocusedInputStyle
		return m, m.input.Focus()

	case key.Matches(msg, m.tableKeys.Deselect):
		m.app.Editor().ClearSelection()
		m.syncRows()

	case key.Matches(msg, m.tableKeys.Ports):
		return m.openPorts()

	case key.Matches(msg, m.tableKeys.Disconnect):
		n, _ := m.app.Disconnect()
		m.show(n)
		m.syncRows()

	case key.Matches(msg, m.tableKeys.Delete):
		n, _ := m.app.DeleteSelected()
		m.show(n)
		m.syncRows()

	case key.Matches(msg, m.tableKeys.Save):
		n, _ := m.app.Save()
		m.show(n)
		m.syncRows()

	case key.Matches(msg, m.tableKeys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.tableKeys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.inputKeys.Commit):
		m.app.Editor().SetInput(m.input.Value())
		n, _ := m.app.CommitInput()
		m.show(n)
		m.syncRows()
		return m, nil

	case key.Matches(msg, m.inputKeys.Up):
		m.moveSelection(-1)
		return m, nil

	case key.Matches(msg, m.inputKeys.Down):
		m.moveSelection(1)
		return m, nil

	case key.Matches(msg, m.inputKeys.Back):
		m.focus = focusTable
		m.input.PromptStyle = BlurredInputStyle
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.app.Editor().SetInput(m.input.Value())
	return m, cmd
}

// moveSelection moves the selection by delta rows. With nothing selected,
// moving down selects the first row and moving up the last.
func (m *Model) moveSelection(delta int) {
	ed := m.app.Editor()
	count := ed.Buffer().Len()
	if count == 0 {
		return
	}

	i := ed.SelectedIndex()
	switch {
	case i < 0 && delta > 0:
		i = 0
	case i < 0:
		i = count - 1
	default:
		i += delta
	}
	if i < 0 {
		i = 0
	}
	if i >= count {
		i = count - 1
	}
	_ = ed.SelectIndex(i)
	m.syncRows()
}

// show presents n: modal notices block input until dismissed, status
// notices only replace the status line.
func (m *Model) show(n app.Notice) {
	if n.Modal() {
		m.notice = &n
		m.status = n.Title
		if n.Message != "" {
			m.status += ": " + n.Message
		}
		return
	}
	m.status = n.Message
}

// syncRows copies the editor state into the table, the raw log and the
// name input.
func (m *Model) syncRows() {
	ed := m.app.Editor()

	rows := ed.Buffer().Rows()
	tableRows := make([]table.Row, len(rows))
	for i, r := range rows {
		tableRows[i] = table.Row{strconv.Itoa(i + 1), r.Token, r.Name}
	}
	m.table.SetRows(tableRows)

	if i := ed.SelectedIndex(); i >= 0 {
		m.table.SetCursor(i)
		m.table.SetStyles(m.tableStyles)
	} else {
		m.table.SetStyles(m.idleStyles)
	}

	m.rawLog.SetContent(strings.Join(m.app.RawLog(), "\n"))
	m.rawLog.GotoBottom()

	if m.input.Value() != ed.Input() {
		m.input.SetValue(ed.Input())
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 6

	// Container border and padding plus panel border and padding
	inner := width - 10
	if inner < 20 {
		inner = 20
	}

	m.rawLog.Width = inner
	m.rawLog.Height = rawLogHeight

	tableHeight := height - fixedChromeLines - rawLogHeight
	if tableHeight < 3 {
		tableHeight = 3
	}
	m.table.SetColumns(columns(inner))
	m.table.SetWidth(inner)
	m.table.SetHeight(tableHeight)

	m.input.Width = inner - len(m.input.Prompt) - 2
	m.portList.SetSize(width-6, height-8)
}

// columns splits width between the row number, the token and the name.
func columns(width int) []table.Column {
	const numWidth = 4
	rest := width - numWidth - 6 // cell padding
	if rest < 20 {
		rest = 20
	}
	tokenWidth := rest / 2
	return []table.Column{
		{Title: "#", Width: numWidth},
		{Title: "Token", Width: tokenWidth},
		{Title: "Name", Width: rest - tokenWidth},
	}
}

// View renders the active screen inside the application container, or the
// pending notice on top of it.
func (m Model) View() string {
	width, height := m.width, m.height
	if width == 0 {
		width = MinTerminalWidth
	}
	if height == 0 {
		height = 24
	}

	if m.notice != nil {
		return RenderModal(m.renderNotice(width), width, height)
	}

	if m.screen == ScreenPorts {
		return RenderApplicationContainer(m.renderPorts(), m.help.View(m.portKeys), width, height)
	}

	var helpText string
	if m.focus == focusInput {
		helpText = m.help.View(m.inputKeys)
	} else {
		helpText = m.help.View(m.tableKeys)
	}
	return RenderApplicationContainer(m.renderMain(), helpText, width, height)
}

func (m Model) renderMain() string {
	var b strings.Builder

	conn := DisconnectedStyle.Render("disconnected")
	if m.app.Connected() {
		conn = ConnectedStyle.Render(m.app.PortName())
	}
	b.WriteString(LabelStyle.Render("Port: ") + conn)
	b.WriteString(LabelStyle.Render("   Output: ") + ValueStyle.Render(m.app.OutputPath()))
	b.WriteString("\n")

	b.WriteString(PanelStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left, SubtitleStyle.Render("Received"), m.rawLog.View()),
	))
	b.WriteString("\n")

	rows := m.app.Editor().Buffer().Len()
	names := m.app.Editor().Names().Len()
	title := TitleStyle.Render(fmt.Sprintf("Tokens (%d rows, %d named)", rows, names))
	b.WriteString(PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, m.table.View())))
	b.WriteString("\n")

	selected := "none"
	if row, ok := m.app.Editor().Selected(); ok {
		selected = row.Token
	}
	b.WriteString(LabelStyle.Render("Selected: ") + ValueStyle.Render(selected))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(StatusBarStyle.Render(m.status))

	return b.String()
}

func (m Model) renderNotice(width int) string {
	n := m.notice
	color := noticeColor(n.Level)

	lines := []string{
		lipgloss.NewStyle().Foreground(color).Bold(true).Render(noticeMarker(n.Level) + "  " + n.Title),
		"",
		n.Message,
	}
	if len(n.Hints) > 0 {
		lines = append(lines, "", LabelStyle.Render("Troubleshooting:"))
		for _, hint := range n.Hints {
			lines = append(lines, "  • "+hint)
		}
	}
	lines = append(lines, "", m.help.View(m.noticeKeys))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(1, 2).
		Width(SafeModalWidth(60, width)).
		Render(strings.Join(lines, "\n"))
}
