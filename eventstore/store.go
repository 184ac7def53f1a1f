package eventstore

import "context"

// EventStreamRepository persists event messages into per-stream append-only
// logs.
type EventStreamRepository interface {
	// Store appends a single message to its stream.
	//
	// Storing a message with an id that was already stored overwrites it with
	// the given content. Duplicate submissions under a new id are not detected.
	Store(ctx context.Context, message EventMessage) error

	// Fetch reconstructs a stream, ordered by ascending position.
	//
	// ok is false if nothing was ever stored to the stream.
	Fetch(ctx context.Context, id EventStreamID) (stream EventStream, ok bool, err error)
}

// PublisherRepository persists publishers.
type PublisherRepository interface {
	// Store saves the publisher, replacing any previous record with the same id.
	Store(ctx context.Context, publisher Publisher) error

	// Fetch loads a publisher. ok is false if it was never stored.
	Fetch(ctx context.Context, id PublisherID) (publisher Publisher, ok bool, err error)
}
