package ports

import (
	"fmt"
	"path/filepath"
	"runtime"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"

	"github.com/muurk/scantag/internal/apperr"
	"github.com/muurk/scantag/internal/logging"
)

// Candidate rules per platform.
const (
	windowsPortCount = 256
	linuxPattern     = "/dev/tty[A-Za-z]*"
	darwinPattern    = "/dev/tty.*"
)

// Port is a serial port that could be opened during enumeration.
type Port struct {
	// Name is the path or name passed to the serial driver (e.g. "/dev/ttyUSB0", "COM3")
	Name string `json:"name"`

	// USB metadata, filled when the OS enumerator knows the port
	IsUSB        bool   `json:"usb"`
	VID          string `json:"vid,omitempty"`
	PID          string `json:"pid,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
	Product      string `json:"product,omitempty"`
}

// String returns the port name
func (p Port) String() string {
	return p.Name
}

// Description returns a one-line summary of the USB metadata, or "" for
// ports without any.
func (p Port) Description() string {
	if !p.IsUSB {
		return ""
	}
	desc := fmt.Sprintf("USB %s:%s", p.VID, p.PID)
	if p.Product != "" {
		desc += " " + p.Product
	}
	if p.SerialNumber != "" {
		desc += " (S/N " + p.SerialNumber + ")"
	}
	return desc
}

// Enumerator lists the serial ports that can be opened on this host.
// The function fields are seams for tests.
type Enumerator struct {
	// GOOS selects the candidate rules (runtime.GOOS by default)
	GOOS string

	// Glob expands a device path pattern (filepath.Glob by default)
	Glob func(pattern string) ([]string, error)

	// Probe opens and immediately closes a port; a non-nil error excludes it
	Probe func(name string) error

	// Details returns OS enumerator metadata; may be nil
	Details func() ([]*enumerator.PortDetails, error)
}

// NewEnumerator creates an enumerator for the running host.
func NewEnumerator() *Enumerator {
	return &Enumerator{
		GOOS:    runtime.GOOS,
		Glob:    filepath.Glob,
		Probe:   probePort,
		Details: enumerator.GetDetailedPortsList,
	}
}

// ListAvailable lists openable ports on the running host.
func ListAvailable() ([]Port, error) {
	return NewEnumerator().ListAvailable()
}

// Candidates returns the device names to probe, in discovery order.
func (e *Enumerator) Candidates() ([]string, error) {
	switch e.GOOS {
	case "windows":
		names := make([]string, 0, windowsPortCount)
		for i := 1; i <= windowsPortCount; i++ {
			names = append(names, fmt.Sprintf("COM%d", i))
		}
		return names, nil

	case "linux":
		return e.glob(linuxPattern)

	case "darwin":
		return e.glob(darwinPattern)

	default:
		return nil, apperr.NewPlatformUnsupportedError(e.GOOS)
	}
}

func (e *Enumerator) glob(pattern string) ([]string, error) {
	matches, err := e.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to expand %s: %w", pattern, err)
	}
	return matches, nil
}

// ListAvailable probes each candidate and returns the ones that opened,
// in discovery order.
func (e *Enumerator) ListAvailable() ([]Port, error) {
	candidates, err := e.Candidates()
	if err != nil {
		return nil, err
	}

	details := e.details()
	available := make([]Port, 0)
	for _, name := range candidates {
		if err := e.Probe(name); err != nil {
			logging.Debug("Port probe failed", zap.String("port", name), zap.Error(err))
			continue
		}
		port := Port{Name: name}
		if d, ok := details[name]; ok && d.IsUSB {
			port.IsUSB = true
			port.VID = d.VID
			port.PID = d.PID
			port.SerialNumber = d.SerialNumber
			port.Product = d.Product
		}
		available = append(available, port)
	}

	logging.Info("Port enumeration complete",
		zap.String("goos", e.GOOS),
		zap.Int("candidates", len(candidates)),
		zap.Int("available", len(available)),
	)
	return available, nil
}

func (e *Enumerator) details() map[string]*enumerator.PortDetails {
	out := make(map[string]*enumerator.PortDetails)
	if e.Details == nil {
		return out
	}
	list, err := e.Details()
	if err != nil {
		logging.Debug("Detailed port enumeration unavailable", zap.Error(err))
		return out
	}
	for _, d := range list {
		if d != nil {
			out[d.Name] = d
		}
	}
	return out
}

func probePort(name string) error {
	p, err := serial.Open(name, &serial.Mode{BaudRate: 9600})
	if err != nil {
		return err
	}
	return p.Close()
}
