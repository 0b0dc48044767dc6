package feed

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a state change broadcast on the feed.
type EventType string

const (
	EventConnected    EventType = "connected"
	EventDisconnected EventType = "disconnected"
	EventToken        EventType = "token"
	EventNamed        EventType = "named"
	EventDeleted      EventType = "deleted"
	EventSaved        EventType = "saved"
)

// Event is one JSON message on the feed.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Session   string    `json:"session,omitempty"`
	Port      string    `json:"port,omitempty"`
	Row       uint64    `json:"row,omitempty"`
	Token     string    `json:"token,omitempty"`
	Name      string    `json:"name,omitempty"`
	Path      string    `json:"path,omitempty"`
	Count     int       `json:"count,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent stamps an event with a fresh ID and the current time.
func NewEvent(t EventType, session string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Session:   session,
		Timestamp: time.Now().UTC(),
	}
}

// Publisher accepts events without blocking the caller.
type Publisher interface {
	Publish(Event)
}

// Discard is a Publisher that drops everything.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Event) {}
