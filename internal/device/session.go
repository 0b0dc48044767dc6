package device

import (
	"strings"
	"sync"
	"time"
	"unicode"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/muurk/scantag/internal/apperr"
	"github.com/muurk/scantag/internal/logging"
)

// Default serial settings for hand scanners.
const (
	DefaultBaudRate    = 9600
	DefaultReadTimeout = time.Second
	DefaultQueueSize   = 256
)

const readBufferSize = 1024

// Options configures a session. Zero fields take the defaults above.
type Options struct {
	BaudRate    int
	ReadTimeout time.Duration
	QueueSize   int
}

// DefaultOptions returns 9600 baud, 8N1, one second read timeout.
func DefaultOptions() Options {
	return Options{
		BaudRate:    DefaultBaudRate,
		ReadTimeout: DefaultReadTimeout,
		QueueSize:   DefaultQueueSize,
	}
}

func (o Options) withDefaults() Options {
	if o.BaudRate <= 0 {
		o.BaudRate = DefaultBaudRate
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = DefaultReadTimeout
	}
	if o.QueueSize <= 0 {
		o.QueueSize = DefaultQueueSize
	}
	return o
}

// Port is the part of a serial port a session uses. A Read that times out
// returns 0, nil.
type Port interface {
	Read(p []byte) (int, error)
	Close() error
}

// allow tests to replace the serial driver
var openPort = func(name string, opts Options) (Port, error) {
	p, err := serial.Open(name, &serial.Mode{
		BaudRate: opts.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, err
	}
	if err := p.SetReadTimeout(opts.ReadTimeout); err != nil {
		p.Close()
		return nil, err
	}
	if err := p.ResetInputBuffer(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// Session is one open connection to a scanner. A background reader splits
// the incoming stream into tokens; Poll hands them out one at a time.
type Session struct {
	name string
	opts Options
	port Port

	lines  chan string
	stopCh chan struct{}
	doneCh chan struct{}

	closeOnce sync.Once
	closeErr  error

	mu  sync.Mutex
	err error
}

// Open connects to the named port and starts reading.
func Open(name string, opts Options) (*Session, error) {
	opts = opts.withDefaults()

	port, err := openPort(name, opts)
	if err != nil {
		return nil, apperr.NewConnectionError(name, "failed to open serial port", err)
	}

	s := &Session{
		name:   name,
		opts:   opts,
		port:   port,
		lines:  make(chan string, opts.QueueSize),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	go s.readLoop()

	logging.LogPortEvent(name, "opened",
		zap.Int("baud", opts.BaudRate),
		zap.Duration("read_timeout", opts.ReadTimeout),
	)
	return s, nil
}

// Name returns the port name the session was opened on.
func (s *Session) Name() string {
	return s.name
}

// Options returns the settings in effect.
func (s *Session) Options() Options {
	return s.opts
}

// Poll returns the next token if one has arrived. It never blocks, and
// returns ok=false once the session is closed.
func (s *Session) Poll() (token string, ok bool) {
	select {
	case <-s.stopCh:
		return "", false
	default:
	}

	select {
	case token = <-s.lines:
		return token, true
	default:
		return "", false
	}
}

// Err reports why the reader stopped, or nil while it is healthy.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops the reader and closes the port. Tokens that were not polled
// are dropped. Calling Close again returns the first result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopCh)
		s.closeErr = s.port.Close()
		<-s.doneCh
		logging.LogPortEvent(s.name, "closed")
	})
	return s.closeErr
}

func (s *Session) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *Session) stopping() bool {
	select {
	case <-s.stopCh:
		return true
	default:
		return false
	}
}

func (s *Session) readLoop() {
	defer close(s.doneCh)

	buf := make([]byte, readBufferSize)
	var lines lineSplitter

	emit := func(raw []byte) bool {
		token := DecodeLine(raw)
		if token == "" {
			return true
		}
		select {
		case s.lines <- token:
			return true
		case <-s.stopCh:
			return false
		}
	}

	for {
		if s.stopping() {
			return
		}

		n, err := s.port.Read(buf)
		if n > 0 {
			logging.LogRawBytes(s.name, buf[:n])
			dropped := lines.dropped
			if !lines.feed(buf[:n], emit) {
				return
			}
			if lines.dropped > dropped {
				logging.LogPortEvent(s.name, "line too long, dropped",
					zap.Int("max_length", MaxLineLength),
				)
			}
		}

		if err != nil {
			if s.stopping() {
				return
			}
			logging.LogPortEvent(s.name, "read failed", zap.Error(err))
			s.setErr(apperr.NewConnectionError(s.name, "lost connection to serial port", err))
			return
		}
	}
}

// DecodeLine turns one raw line (without its '\n') into a token: invalid
// UTF-8 is replaced and trailing whitespace, including '\r', is removed.
func DecodeLine(raw []byte) string {
	line := strings.ToValidUTF8(string(raw), "�")
	return strings.TrimRightFunc(line, unicode.IsSpace)
}
