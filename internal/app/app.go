package app

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muurk/scantag/internal/apperr"
	"github.com/muurk/scantag/internal/catalog"
	"github.com/muurk/scantag/internal/config"
	"github.com/muurk/scantag/internal/device"
	"github.com/muurk/scantag/internal/feed"
	"github.com/muurk/scantag/internal/logging"
	"github.com/muurk/scantag/internal/ports"
	"github.com/muurk/scantag/internal/store"
)

const maxRawLogLines = 1000

// Session is an open device connection as the application sees it.
type Session interface {
	Name() string
	Poll() (string, bool)
	Close() error
	Err() error
}

// PortLister lists openable serial ports.
type PortLister interface {
	ListAvailable() ([]ports.Port, error)
}

// OpenFunc opens a session on a port.
type OpenFunc func(name string, opts device.Options) (Session, error)

// Options configures an App. Zero fields take defaults.
type Options struct {
	Ports      PortLister
	Open       OpenFunc
	Device     device.Options
	OutputPath string
	Publisher  feed.Publisher

	// Registry, when set, remembers the last connected port.
	Registry   *config.Registry
	SaveConfig func(*config.Registry) error
}

// App owns the session, the editor and the output path. Methods are called
// from the UI loop and are not safe for concurrent use, except ListPorts,
// which touches only the enumerator.
type App struct {
	ports      PortLister
	open       OpenFunc
	deviceOpts device.Options
	outputPath string
	publisher  feed.Publisher
	registry   *config.Registry
	saveConfig func(*config.Registry) error

	session    Session
	sessionID  string
	generation uint64

	editor *catalog.Editor
	rawLog []string
}

// New creates an App that is not connected.
func New(opts Options) *App {
	a := &App{
		ports:      opts.Ports,
		open:       opts.Open,
		deviceOpts: opts.Device,
		outputPath: opts.OutputPath,
		publisher:  opts.Publisher,
		registry:   opts.Registry,
		saveConfig: opts.SaveConfig,
		editor:     catalog.NewEditor(),
	}
	if a.ports == nil {
		a.ports = ports.NewEnumerator()
	}
	if a.open == nil {
		a.open = openDevice
	}
	if a.outputPath == "" {
		a.outputPath = store.DefaultPath
	}
	if a.publisher == nil {
		a.publisher = feed.Discard
	}
	if a.saveConfig == nil {
		a.saveConfig = (*config.Registry).Save
	}
	return a
}

func openDevice(name string, opts device.Options) (Session, error) {
	s, err := device.Open(name, opts)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Editor exposes the rows, the name map and the selection.
func (a *App) Editor() *catalog.Editor { return a.editor }

// OutputPath returns where Save writes.
func (a *App) OutputPath() string { return a.outputPath }

// Connected reports whether a session is open.
func (a *App) Connected() bool { return a.session != nil }

// PortName returns the connected port, or "".
func (a *App) PortName() string {
	if a.session == nil {
		return ""
	}
	return a.session.Name()
}

// Generation identifies the current session. Ticks carrying another value
// are stale.
func (a *App) Generation() uint64 { return a.generation }

// LastPort returns the remembered port, if any.
func (a *App) LastPort() string {
	if a.registry == nil || a.registry.Serial == nil {
		return ""
	}
	return a.registry.Serial.LastPort
}

// RawLog returns the lines received since the last clear, oldest first.
func (a *App) RawLog() []string {
	out := make([]string, len(a.rawLog))
	copy(out, a.rawLog)
	return out
}

// ListPorts enumerates openable ports.
func (a *App) ListPorts() ([]ports.Port, Notice, error) {
	list, err := a.ports.ListAvailable()
	if err != nil {
		if apperr.IsPlatformUnsupported(err) {
			return nil, failure("Unsupported platform", err), err
		}
		return nil, failure("Port scan failed", err), err
	}
	if len(list) == 0 {
		return list, status("No serial ports found"), nil
	}
	return list, status(fmt.Sprintf("%d serial port(s) found", len(list))), nil
}

// Connect opens port. A previous session, and the data collected under it,
// is dropped only once the new port is open; a failed open leaves both alone.
// Reopening the port already in use releases it first, as drivers may hold
// it exclusively.
func (a *App) Connect(port string) (Notice, error) {
	if port == "" {
		err := apperr.NewSelectionError("no port selected")
		return warning("Warning", "Please select a port."), err
	}

	if a.session != nil && a.session.Name() == port {
		a.releaseSession("replaced")
	}

	s, err := a.open(port, a.deviceOpts)
	if err != nil {
		logging.LogPortEvent(port, "open failed", zap.Error(err))
		if !apperr.IsConnection(err) {
			err = apperr.NewConnectionError(port, "failed to open serial port", err)
		}
		return failure("Connection failed", err), err
	}

	if a.session != nil {
		a.releaseSession("replaced")
	}
	a.clear()

	a.session = s
	a.sessionID = uuid.NewString()
	a.generation++

	ev := feed.NewEvent(feed.EventConnected, a.sessionID)
	ev.Port = port
	a.publisher.Publish(ev)

	a.rememberPort(port)

	msg := fmt.Sprintf("Listening on %s.", port)
	if a.deviceOpts.BaudRate > 0 {
		msg = fmt.Sprintf("Listening on %s at %d baud.", port, a.deviceOpts.BaudRate)
	}
	return info("Connected", msg), nil
}

func (a *App) rememberPort(port string) {
	if a.registry == nil {
		return
	}
	a.registry.RememberPort(port)
	if err := a.saveConfig(a.registry); err != nil {
		logging.Warn("Failed to remember last port", zap.String("port", port), zap.Error(err))
	}
}

// Disconnect closes the session and clears the rows, the names and the raw
// log.
func (a *App) Disconnect() (Notice, error) {
	if a.session == nil {
		err := apperr.NewConnectionError("", "no connection active", nil)
		return warning("No connection", "No serial connection is active."), err
	}
	a.closeSession("user")
	return info("Disconnected", "The serial connection was closed."), nil
}

// closeSession closes the port and performs the clearing a close implies.
func (a *App) closeSession(reason string) {
	a.releaseSession(reason)
	a.clear()
}

// releaseSession closes the port and ends its generation. Rows, names and
// the raw log are kept.
func (a *App) releaseSession(reason string) {
	port := a.session.Name()
	if err := a.session.Close(); err != nil {
		logging.LogPortEvent(port, "close failed", zap.Error(err))
	}

	ev := feed.NewEvent(feed.EventDisconnected, a.sessionID)
	ev.Port = port
	ev.Reason = reason
	a.publisher.Publish(ev)

	a.session = nil
	a.sessionID = ""
	a.generation++
}

func (a *App) clear() {
	a.editor.Clear()
	a.editor.SetInput("")
	a.rawLog = a.rawLog[:0]
}

// Tick is one poll step for generation gen. It appends at most one row and
// reports whether the poll should be scheduled again. A notice is returned
// when the device went away; the port is released but the collected rows and
// names stay so they can still be saved.
func (a *App) Tick(gen uint64) (bool, *Notice) {
	if a.session == nil || gen != a.generation {
		return false, nil
	}

	if token, ok := a.session.Poll(); ok {
		h := a.editor.Append(token)
		a.appendRaw(token)
		logging.LogToken(a.session.Name(), token)

		ev := feed.NewEvent(feed.EventToken, a.sessionID)
		ev.Port = a.session.Name()
		ev.Row = uint64(h)
		ev.Token = token
		a.publisher.Publish(ev)
		return true, nil
	}

	if err := a.session.Err(); err != nil {
		a.releaseSession("lost")
		n := failure("Connection lost", err)
		return false, &n
	}
	return true, nil
}

func (a *App) appendRaw(line string) {
	a.rawLog = append(a.rawLog, line)
	if over := len(a.rawLog) - maxRawLogLines; over > 0 {
		a.rawLog = append(a.rawLog[:0], a.rawLog[over:]...)
	}
}

// CommitName names the selected row.
func (a *App) CommitName(name string) (Notice, error) {
	row, err := a.editor.CommitName(name)
	if err != nil {
		var e *apperr.Error
		if errors.As(err, &e) && e.Message == catalog.MsgEmptyName {
			return warning("Error", "Please enter a name."), err
		}
		return warning("Error", "Please select a row to add the name to."), err
	}

	ev := feed.NewEvent(feed.EventNamed, a.sessionID)
	ev.Row = uint64(row.Handle)
	ev.Token = row.Token
	ev.Name = row.Name
	a.publisher.Publish(ev)

	return status(fmt.Sprintf("%s → %s", row.Token, row.Name)), nil
}

// CommitInput names the selected row with the pending input.
func (a *App) CommitInput() (Notice, error) {
	return a.CommitName(a.editor.Input())
}

// DeleteSelected removes the selected row and its token's name.
func (a *App) DeleteSelected() (Notice, error) {
	row, err := a.editor.DeleteSelected()
	if err != nil {
		return warning("Error", "No row selected."), err
	}

	ev := feed.NewEvent(feed.EventDeleted, a.sessionID)
	ev.Row = uint64(row.Handle)
	ev.Token = row.Token
	a.publisher.Publish(ev)

	return info("Deleted", "The selected row was deleted."), nil
}

// Save writes the name map to the output file and, on success only, clears
// the rows, the names and the raw log. Unnamed rows are not written.
func (a *App) Save() (Notice, error) {
	names := a.editor.Names().Snapshot()
	if err := store.Save(a.outputPath, names); err != nil {
		logging.Error("Save failed", zap.String("path", a.outputPath), zap.Error(err))
		return failure("Save failed", err), err
	}

	logging.Info("Names saved", zap.String("path", a.outputPath), zap.Int("count", len(names)))

	ev := feed.NewEvent(feed.EventSaved, a.sessionID)
	ev.Path = a.outputPath
	ev.Count = len(names)
	a.publisher.Publish(ev)

	a.clear()
	return info("Saved", fmt.Sprintf("Data was saved to '%s'.", a.outputPath)), nil
}

// Close releases the session without clearing state, for shutdown.
func (a *App) Close() {
	if a.session == nil {
		return
	}
	if err := a.session.Close(); err != nil {
		logging.LogPortEvent(a.session.Name(), "close failed", zap.Error(err))
	}
	a.session = nil
}
