package codec

import (
	"github.com/kapivara/eventhub/eventstore"
)

// Serializer converts domain records to and from the bytes kept in storage
type Serializer interface {
	// MarshalMessage converts an EventMessage to its stored form
	MarshalMessage(message eventstore.EventMessage) ([]byte, error)

	// UnmarshalMessage converts the stored form back into an EventMessage
	UnmarshalMessage(data []byte) (eventstore.EventMessage, error)

	// MarshalPublisher converts a Publisher to its stored form
	MarshalPublisher(publisher eventstore.Publisher) ([]byte, error)

	// UnmarshalPublisher converts the stored form back into a Publisher
	UnmarshalPublisher(data []byte) (eventstore.Publisher, error)
}
