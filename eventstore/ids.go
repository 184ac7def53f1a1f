package eventstore

import (
	"strconv"

	uuid "github.com/satori/go.uuid"
)

// IdentityID identifies the identity that caused an event.
type IdentityID int64

// String returns the decimal representation of the id.
func (id IdentityID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// PublisherID identifies a Publisher.
type PublisherID int64

// String returns the decimal representation of the id.
func (id PublisherID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// EventMessageID is the globally unique id of an EventMessage.
type EventMessageID uuid.UUID

// NewEventMessageID returns a new random message id.
func NewEventMessageID() EventMessageID {
	return EventMessageID(uuid.NewV4())
}

// ParseEventMessageID parses the canonical string form of a message id.
func ParseEventMessageID(s string) (EventMessageID, error) {
	u, err := uuid.FromString(s)
	if err != nil {
		return EventMessageID{}, err
	}
	return EventMessageID(u), nil
}

// IsNil reports whether the id is the nil UUID.
func (id EventMessageID) IsNil() bool {
	return uuid.Equal(uuid.UUID(id), uuid.Nil)
}

func (id EventMessageID) String() string {
	return uuid.UUID(id).String()
}

// EventStreamID identifies an EventStream.
type EventStreamID uuid.UUID

// NewEventStreamID returns a new random stream id.
func NewEventStreamID() EventStreamID {
	return EventStreamID(uuid.NewV4())
}

// ParseEventStreamID parses the canonical string form of a stream id.
func ParseEventStreamID(s string) (EventStreamID, error) {
	u, err := uuid.FromString(s)
	if err != nil {
		return EventStreamID{}, err
	}
	return EventStreamID(u), nil
}

// IsNil reports whether the id is the nil UUID.
func (id EventStreamID) IsNil() bool {
	return uuid.Equal(uuid.UUID(id), uuid.Nil)
}

func (id EventStreamID) String() string {
	return uuid.UUID(id).String()
}
