package testutils

import (
	"fmt"
	"time"

	"github.com/kapivara/eventhub/eventstore"
)

// Epoch is the occurredOn time of the message at position 0 built by
// NewEventMessage.
var Epoch = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

// NewEventMessage returns a message for the given stream and position with a
// fresh id. Successive positions occur one second apart.
func NewEventMessage(streamID eventstore.EventStreamID, position uint64) eventstore.EventMessage {
	return eventstore.EventMessage{
		ID:            eventstore.NewEventMessageID(),
		IdentityID:    1,
		PublisherID:   1,
		EventStreamID: streamID,
		Payload:       fmt.Sprintf(`{"seq":%d}`, position),
		Position:      position,
		OccurredOn:    Epoch.Add(time.Duration(position) * time.Second),
	}
}

// NewEventMessages returns n messages for the given stream at positions
// 0..n-1. The last one is flagged final when final is true.
func NewEventMessages(streamID eventstore.EventStreamID, n int, final bool) eventstore.Messages {
	messages := make(eventstore.Messages, n)
	for i := range messages {
		messages[i] = NewEventMessage(streamID, uint64(i))
	}
	if final && n > 0 {
		messages[n-1].IsFinal = true
	}
	return messages
}
