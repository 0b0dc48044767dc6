// Package feed broadcasts scantag state changes to websocket clients.
//
// The feed is read-only. Every connect, token, name, delete and save is
// published as a JSON Event on /ws; clients cannot send commands back.
// Publishing never blocks the caller, so the UI loop is never held up by a
// slow or stuck client.
//
// Starting a feed:
//
//	srv := feed.NewServer(feed.Config{Addr: "127.0.0.1:8765", Advertise: true})
//	if err := srv.Start(); err != nil {
//	    return err
//	}
//	defer srv.Shutdown(context.Background())
//
//	srv.Publish(feed.NewEvent(feed.EventToken, sessionID))
//
// With Advertise set the feed registers itself as a "_scantag._tcp" mDNS
// service; the discovery package finds it again. Watch is the matching
// client.
package feed
