package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/scantag/internal/logging"
)

// Watch dials a feed and calls fn for every event until ctx is cancelled or
// the server goes away. A normal close by either side returns nil.
func Watch(ctx context.Context, url string, fn func(Event)) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to feed %s: %w", url, err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			conn.Close()
		case <-stop:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("feed connection lost: %w", err)
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			logging.Warn("Ignoring malformed feed message", zap.Error(err))
			continue
		}
		fn(ev)
	}
}

// ErrNoFeed is returned when no feed URL was given and none was found.
var ErrNoFeed = errors.New("no feed found")
