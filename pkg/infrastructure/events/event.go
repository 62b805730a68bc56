package events

import (
	"slices"
	"time"
)

// Event is one entry of the session log
type Event interface {
	Type() string
	StreamID() string
	Data() interface{}
	Timestamp() time.Time
	// Version is the 1-based position of the event within its stream
	Version() int
}

type EventHandler interface {
	Handle(event Event) error
	CanHandle(eventType string) bool
}

// EventStore is an append-only log of what happened during a session
type EventStore interface {
	AppendEvent(streamID string, event Event) error
	ReadEvents(streamID string, fromVersion int) ([]Event, error)
	ReadAllEvents(fromPosition int) ([]Event, error)
	Subscribe(eventTypes []string, handler EventHandler) error
	Unsubscribe(handler EventHandler) error
}

// Record is the stored form of an event. It marshals to JSON for the
// interactive event listing and for exports.
type Record struct {
	Kind     string      `json:"type"`
	Stream   string      `json:"stream"`
	Payload  interface{} `json:"data"`
	At       time.Time   `json:"time"`
	Sequence int         `json:"version"`
}

func (r Record) Type() string         { return r.Kind }
func (r Record) StreamID() string     { return r.Stream }
func (r Record) Data() interface{}    { return r.Payload }
func (r Record) Timestamp() time.Time { return r.At }
func (r Record) Version() int         { return r.Sequence }

// NewEvent stamps payload with the current time. The store assigns the version.
func NewEvent(eventType, streamID string, data interface{}) Event {
	return Record{Kind: eventType, Stream: streamID, Payload: data, At: time.Now()}
}

// HandlerFunc adapts a function to EventHandler for the listed event types
type HandlerFunc struct {
	Types []string
	Fn    func(Event) error
}

func (h *HandlerFunc) Handle(event Event) error {
	return h.Fn(event)
}

func (h *HandlerFunc) CanHandle(eventType string) bool {
	return slices.Contains(h.Types, eventType)
}
