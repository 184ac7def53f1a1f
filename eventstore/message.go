package eventstore

import (
	"bytes"
	"time"
)

// EventMessage is one immutable fact within an EventStream.
type EventMessage struct {
	ID            EventMessageID
	IdentityID    IdentityID
	PublisherID   PublisherID
	EventStreamID EventStreamID

	// Payload is the business content of the event. The store never parses it.
	Payload string

	// Position is the sequence number of the message within its stream,
	// starting at 0.
	Position uint64

	// IsFinal is true only on the last message of a closed stream.
	IsFinal bool

	OccurredOn time.Time
}

// Messages is a sequence of EventMessage ordered by Position
type Messages []EventMessage

// Len implements sort.Interface
func (m Messages) Len() int {
	return len(m)
}

// Swap implements sort.Interface
func (m Messages) Swap(i, j int) {
	m[i], m[j] = m[j], m[i]
}

// Less implements sort.Interface. Messages sharing a position are ordered by
// id so that the result does not depend on listing order.
func (m Messages) Less(i, j int) bool {
	if m[i].Position != m[j].Position {
		return m[i].Position < m[j].Position
	}
	return bytes.Compare(m[i].ID[:], m[j].ID[:]) < 0
}

// EventStream is the ordered history of every message sharing one stream id.
type EventStream struct {
	ID       EventStreamID
	Messages Messages
}

// Len returns the number of messages in the stream.
func (s EventStream) Len() int {
	return len(s.Messages)
}

// Final returns the message flagged as final, if any.
//
// Closure is an interpretation made by consumers; the store keeps accepting
// appends after a final message.
func (s EventStream) Final() (EventMessage, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].IsFinal {
			return s.Messages[i], true
		}
	}
	return EventMessage{}, false
}

// Publisher is the named source of events.
type Publisher struct {
	ID   PublisherID
	Name string
}
