package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/scantag/internal/ports"
)

// portItem wraps a Port for use with bubbles/list
type portItem struct {
	port ports.Port
}

func (p portItem) FilterValue() string { return p.port.Name }

// Title returns the port path for list display
func (p portItem) Title() string { return p.port.Name }

// Description returns the USB details for list display
func (p portItem) Description() string { return p.port.Description() }

// openPorts switches to the port picker and starts a scan.
func (m Model) openPorts() (tea.Model, tea.Cmd) {
	m.screen = ScreenPorts
	m.scanning = true
	m.portList.SetItems([]list.Item{})
	return m, tea.Batch(listPorts(m), m.spinner.Tick)
}

// listPorts runs the enumeration off the update loop. It touches only the
// enumerator, never the rows.
func listPorts(m Model) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		found, n, err := a.ListPorts()
		items := make([]portItem, len(found))
		for i, p := range found {
			items[i] = portItem{port: p}
		}
		return portsListedMsg{notice: n, ports: items, err: err}
	}
}

func (m Model) handlePorts(msg portsListedMsg) (tea.Model, tea.Cmd) {
	m.scanning = false
	if msg.err != nil {
		m.screen = ScreenMain
		m.show(msg.notice)
		return m, nil
	}

	items := make([]list.Item, len(msg.ports))
	selected := 0
	for i, p := range msg.ports {
		items[i] = p
		if p.port.Name == m.app.LastPort() {
			selected = i
		}
	}
	cmd := m.portList.SetItems(items)
	m.portList.Select(selected)
	m.show(msg.notice)
	return m, cmd
}

func (m Model) updatePorts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.portKeys.Back):
		m.screen = ScreenMain
		m.scanning = false
		return m, nil

	case m.scanning:
		return m, nil

	case key.Matches(msg, m.portKeys.Rescan):
		return m.openPorts()

	case key.Matches(msg, m.portKeys.Connect):
		name := ""
		if item, ok := m.portList.SelectedItem().(portItem); ok {
			name = item.port.Name
		}
		n, err := m.app.Connect(name)
		m.show(n)
		m.syncRows()
		if err != nil {
			return m, nil
		}
		m.screen = ScreenMain
		return m, m.scheduleTick(m.app.Generation())
	}

	var cmd tea.Cmd
	m.portList, cmd = m.portList.Update(msg)
	return m, cmd
}

func (m Model) renderPorts() string {
	if m.scanning {
		return lipgloss.JoinVertical(lipgloss.Left,
			TitleStyle.Render("Serial Ports"),
			"",
			m.spinner.View()+" Scanning for serial ports...",
		)
	}

	if len(m.portList.Items()) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			TitleStyle.Render("Serial Ports"),
			"",
			SubtitleStyle.Render("No serial ports found. Plug in the scanner and press r to rescan."),
		)
	}

	footer := LabelStyle.Render(fmt.Sprintf("%d port(s)", len(m.portList.Items())))
	if last := m.app.LastPort(); last != "" {
		footer += LabelStyle.Render("   last used: ") + ValueStyle.Render(last)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.portList.View(), footer)
}
