package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Feed represents a scantag live feed found on the network
type Feed struct {
	// Instance is the advertised service instance name (e.g., "scantag on bench-pc")
	Instance string

	// Hostname is the mDNS hostname (e.g., "bench-pc.local.")
	Hostname string

	// IP is the address the feed was seen on (IPv4 preferred)
	IP string

	// Port is the feed's HTTP port
	Port int

	// Metadata contains the TXT record data
	// Common fields: "path=/ws", "version=1.2.0", "port=/dev/ttyUSB0"
	Metadata map[string]string

	// DiscoveredAt is when the feed was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the feed
func (f *Feed) String() string {
	return fmt.Sprintf("%s (%s) at %s", f.Instance, f.Hostname, f.HostPort())
}

// HostPort returns ip:port, bracketing IPv6 addresses
func (f *Feed) HostPort() string {
	return net.JoinHostPort(f.IP, strconv.Itoa(f.Port))
}

// URL returns the websocket URL of the feed
func (f *Feed) URL() string {
	path := f.GetMetadata("path")
	if path == "" {
		path = DefaultPath
	}
	return "ws://" + f.HostPort() + path
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (f *Feed) GetMetadata(key string) string {
	if f.Metadata == nil {
		return ""
	}
	return f.Metadata[key]
}
