// Package tui implements the interactive scantag screen.
//
// The screen is a single Bubble Tea model over an app.App. It shows the
// connection state, the raw lines received from the device, the table of
// scanned tokens and the name input for the selected row. A second screen
// lists the serial ports to connect to.
//
// # Polling
//
// Connecting starts a chain of pollTickMsg messages carrying the session
// generation. Each tick appends at most one row and re-arms only while the
// generation is current, so a closed or replaced session stops its chain at
// the next tick boundary.
//
// # Notices
//
// Command outcomes that need acknowledgement are drawn as a centered modal
// with RenderModal and swallow every key except dismissal and ctrl+c.
// Committing a name only updates the status line.
//
// # Framework Components
//
//   - bubbles/table: token rows
//   - bubbles/textinput: name entry
//   - bubbles/viewport: raw device log
//   - bubbles/list and bubbles/spinner: port picker
//   - bubbles/help and bubbles/key: context-sensitive key help
//   - lipgloss: styling and layout
//
// # Usage Example
//
//	model := tui.New(a, cfg.Serial.PollInterval())
//	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
//	    return err
//	}
package tui
