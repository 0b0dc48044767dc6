package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type scantag feeds advertise under
	ServiceType = "_scantag._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultPath is the websocket path when the TXT record has none
	DefaultPath = "/ws"

	// DefaultScanTimeout is the default timeout for feed discovery
	DefaultScanTimeout = 5 * time.Second
)

// Scanner handles mDNS feed discovery
type Scanner struct {
	// Timeout is the maximum time to wait for feed discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForFeeds collects every scantag feed seen on the local network until
// the timeout or ctx ends
func (s *Scanner) ScanForFeeds(ctx context.Context) ([]*Feed, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	var (
		mu    sync.Mutex
		feeds = make([]*Feed, 0)
	)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for {
			select {
			case entry := <-entries:
				if feed := s.parseServiceEntry(entry); feed != nil {
					mu.Lock()
					feeds = append(feeds, feed)
					mu.Unlock()
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()

	mu.Lock()
	defer mu.Unlock()
	return append([]*Feed(nil), feeds...), nil
}

// WaitForFeed returns the first feed seen, or an error if none shows up
// within the timeout
func (s *Scanner) WaitForFeed(ctx context.Context) (*Feed, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	feedChan := make(chan *Feed, 1)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for {
			select {
			case entry := <-entries:
				if feed := s.parseServiceEntry(entry); feed != nil {
					feedChan <- feed
					cancel()
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case feed := <-feedChan:
		return feed, nil
	case <-ctx.Done():
		select {
		case feed := <-feedChan:
			return feed, nil
		default:
		}
		return nil, fmt.Errorf("no scantag feed found within %s", s.Timeout)
	}
}

// parseServiceEntry converts a zeroconf service entry to a Feed
// Returns nil if the entry has no usable address
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Feed {
	if entry == nil || entry.Port == 0 {
		return nil
	}

	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	instance := entry.Instance
	if instance == "" {
		instance = entry.HostName
	}

	return &Feed{
		Instance:     instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         entry.Port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}
