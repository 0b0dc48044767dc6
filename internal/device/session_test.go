package device

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/muurk/scantag/internal/apperr"
)

// pipePort feeds a session from an in-memory pipe.
type pipePort struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (p *pipePort) Read(b []byte) (int, error) { return p.r.Read(b) }
func (p *pipePort) Close() error              { return p.r.Close() }

func withPipePort(t *testing.T) *pipePort {
	t.Helper()
	r, w := io.Pipe()
	port := &pipePort{r: r, w: w}

	orig := openPort
	openPort = func(name string, opts Options) (Port, error) { return port, nil }
	t.Cleanup(func() {
		openPort = orig
		w.Close()
	})
	return port
}

func waitToken(t *testing.T, s *Session) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if token, ok := s.Poll(); ok {
			return token
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timed out waiting for a token")
	return ""
}

func TestOpen_Failure(t *testing.T) {
	orig := openPort
	defer func() { openPort = orig }()
	openPort = func(name string, opts Options) (Port, error) {
		return nil, errors.New("device busy")
	}

	s, err := Open("/dev/ttyUSB9", DefaultOptions())
	if s != nil {
		t.Error("Open() should not return a session on failure")
	}
	if !apperr.IsConnection(err) {
		t.Fatalf("Open() error = %v, want connection error", err)
	}
	var e *apperr.Error
	if errors.As(err, &e) && e.Port != "/dev/ttyUSB9" {
		t.Errorf("error Port = %q, want /dev/ttyUSB9", e.Port)
	}
}

func TestOpen_AppliesDefaults(t *testing.T) {
	var got Options
	orig := openPort
	defer func() { openPort = orig }()
	r, w := io.Pipe()
	defer w.Close()
	openPort = func(name string, opts Options) (Port, error) {
		got = opts
		return &pipePort{r: r, w: w}, nil
	}

	s, err := Open("COM3", Options{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if got != DefaultOptions() {
		t.Errorf("opener got %+v, want %+v", got, DefaultOptions())
	}
	if s.Name() != "COM3" {
		t.Errorf("Name() = %q, want COM3", s.Name())
	}
}

func TestPoll_SplitsLines(t *testing.T) {
	port := withPipePort(t)
	s, err := Open("/dev/ttyUSB0", DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if _, ok := s.Poll(); ok {
		t.Fatal("Poll() should report nothing before data arrives")
	}

	go func() {
		port.w.Write([]byte("ABC1"))
		port.w.Write([]byte("23\r\n\r\n   \nXYZ789\n"))
	}()

	if got := waitToken(t, s); got != "ABC123" {
		t.Errorf("first token = %q, want ABC123", got)
	}
	if got := waitToken(t, s); got != "XYZ789" {
		t.Errorf("second token = %q, want XYZ789", got)
	}
}

func TestPoll_PartialLineIsHeld(t *testing.T) {
	port := withPipePort(t)
	s, err := Open("/dev/ttyUSB0", DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if _, err := port.w.Write([]byte("NO-NEWLINE")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if token, ok := s.Poll(); ok {
		t.Errorf("Poll() = %q, want nothing for an unterminated line", token)
	}
}

func TestPoll_OversizedLineIsDropped(t *testing.T) {
	port := withPipePort(t)
	s, err := Open("/dev/ttyUSB0", DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	go func() {
		port.w.Write(bytes.Repeat([]byte{0xff}, 1<<20))
		port.w.Write([]byte("\nABC123\n"))
	}()

	if got := waitToken(t, s); got != "ABC123" {
		t.Errorf("token = %q, want ABC123 after the oversized line", got)
	}
}

func TestClose_StopsTokens(t *testing.T) {
	port := withPipePort(t)
	s, err := Open("/dev/ttyUSB0", DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	go port.w.Write([]byte("FIRST\n"))
	if got := waitToken(t, s); got != "FIRST" {
		t.Fatalf("token = %q, want FIRST", got)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if _, err := port.w.Write([]byte("LATE\n")); err == nil {
		t.Error("writes after Close should fail")
	}
	if token, ok := s.Poll(); ok {
		t.Errorf("Poll() after Close = %q, want nothing", token)
	}
	if s.Err() != nil {
		t.Errorf("Err() after Close = %v, want nil", s.Err())
	}
}

func TestReader_DeviceLost(t *testing.T) {
	port := withPipePort(t)
	s, err := Open("/dev/ttyACM0", DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	port.w.CloseWithError(errors.New("device unplugged"))

	deadline := time.Now().Add(2 * time.Second)
	for s.Err() == nil && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !apperr.IsConnection(s.Err()) {
		t.Errorf("Err() = %v, want connection error", s.Err())
	}
}

func TestDecodeLine(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want string
	}{
		{"plain", []byte("ABC123"), "ABC123"},
		{"carriage return", []byte("ABC123\r"), "ABC123"},
		{"trailing spaces and tabs", []byte("ABC 123 \t"), "ABC 123"},
		{"leading space kept", []byte("  ABC"), "  ABC"},
		{"whitespace only", []byte(" \r\t"), ""},
		{"utf-8", []byte("Ünïcode"), "Ünïcode"},
		{"invalid byte", []byte{'A', 0xff, 'B'}, "A�B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeLine(tt.raw); got != tt.want {
				t.Errorf("DecodeLine(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
