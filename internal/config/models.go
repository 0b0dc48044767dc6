package config

import "time"

// Default values for a fresh configuration.
const (
	DefaultBaudRate       = 9600
	DefaultReadTimeoutMS  = 1000
	DefaultPollIntervalMS = 100
	DefaultOutputPath     = "data.json"
	DefaultFeedAddr       = "127.0.0.1:8765"
)

// Registry represents the entire user configuration file.
type Registry struct {
	Version int          `yaml:"version"`
	Serial  *SerialPrefs `yaml:"serial,omitempty"`
	Output  *OutputPrefs `yaml:"output,omitempty"`
	Feed    *FeedPrefs   `yaml:"feed,omitempty"`
}

// SerialPrefs holds the connection settings and the last used port.
type SerialPrefs struct {
	BaudRate       int       `yaml:"baud_rate"`                 // Line speed
	ReadTimeoutMS  int       `yaml:"read_timeout_ms"`           // Device read timeout
	PollIntervalMS int       `yaml:"poll_interval_ms"`          // UI poll tick
	LastPort       string    `yaml:"last_port,omitempty"`       // Pre-selected in the port picker
	LastConnected  time.Time `yaml:"last_connected,omitempty"` // When LastPort was last opened
}

// ReadTimeout returns the read timeout as a duration.
func (s *SerialPrefs) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutMS) * time.Millisecond
}

// PollInterval returns the poll tick as a duration.
func (s *SerialPrefs) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalMS) * time.Millisecond
}

// OutputPrefs says where saved names go.
type OutputPrefs struct {
	Path string `yaml:"path"`
}

// FeedPrefs configures the optional websocket feed.
type FeedPrefs struct {
	Enabled   bool   `yaml:"enabled"`
	Addr      string `yaml:"addr"`
	Advertise bool   `yaml:"advertise"` // Announce the feed over mDNS
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	r := &Registry{Version: 1}
	r.fillDefaults()
	return r
}

// fillDefaults initializes missing sections and zero values.
func (r *Registry) fillDefaults() {
	if r.Serial == nil {
		r.Serial = &SerialPrefs{}
	}
	if r.Serial.BaudRate <= 0 {
		r.Serial.BaudRate = DefaultBaudRate
	}
	if r.Serial.ReadTimeoutMS <= 0 {
		r.Serial.ReadTimeoutMS = DefaultReadTimeoutMS
	}
	if r.Serial.PollIntervalMS <= 0 {
		r.Serial.PollIntervalMS = DefaultPollIntervalMS
	}

	if r.Output == nil {
		r.Output = &OutputPrefs{}
	}
	if r.Output.Path == "" {
		r.Output.Path = DefaultOutputPath
	}

	if r.Feed == nil {
		r.Feed = &FeedPrefs{}
	}
	if r.Feed.Addr == "" {
		r.Feed.Addr = DefaultFeedAddr
	}
}

// RememberPort records a successfully opened port.
func (r *Registry) RememberPort(name string) {
	if r.Serial == nil {
		r.fillDefaults()
	}
	r.Serial.LastPort = name
	r.Serial.LastConnected = time.Now()
}
