// Package discovery finds scantag live feeds on the local network.
//
// A scantag instance started with --advertise registers its feed as a
// "_scantag._tcp" mDNS service. This package browses for those services and
// returns their websocket URLs.
//
// # Usage Example
//
//	scanner := discovery.NewScanner()
//	scanner.Timeout = 3 * time.Second
//
//	feeds, err := scanner.ScanForFeeds(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, f := range feeds {
//	    fmt.Printf("Found: %s -> %s\n", f.Instance, f.URL())
//	}
//
// # TXT Records
//
// Feeds publish:
//   - path: websocket path (default "/ws")
//   - version: scantag version string
//
// # Network Requirements
//
// mDNS uses UDP port 5353 multicast. Browsing across subnets or through
// firewalls that drop multicast will find nothing.
package discovery
