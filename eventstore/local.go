package eventstore

import (
	"context"
	"sort"
	"sync"
)

type memoryEventStore struct {
	mux        sync.RWMutex
	eventsByID map[EventStreamID]map[EventMessageID]EventMessage
}

func (m *memoryEventStore) Store(ctx context.Context, message EventMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mux.Lock()
	defer m.mux.Unlock()

	stream, ok := m.eventsByID[message.EventStreamID]
	if !ok {
		stream = map[EventMessageID]EventMessage{}
		m.eventsByID[message.EventStreamID] = stream
	}
	stream[message.ID] = message

	return nil
}

func (m *memoryEventStore) Fetch(ctx context.Context, id EventStreamID) (EventStream, bool, error) {
	if err := ctx.Err(); err != nil {
		return EventStream{}, false, err
	}

	m.mux.RLock()
	defer m.mux.RUnlock()

	all, ok := m.eventsByID[id]
	if !ok {
		return EventStream{}, false, nil
	}

	messages := make(Messages, 0, len(all))
	for _, message := range all {
		messages = append(messages, message)
	}
	sort.Sort(messages)

	return EventStream{ID: id, Messages: messages}, true, nil
}

// GetLocalStore returns an EventStreamRepository in memory - good for tests!
func GetLocalStore() EventStreamRepository {
	return &memoryEventStore{
		eventsByID: map[EventStreamID]map[EventMessageID]EventMessage{},
	}
}

type memoryPublisherStore struct {
	mux        sync.RWMutex
	publishers map[PublisherID]Publisher
}

func (m *memoryPublisherStore) Store(ctx context.Context, publisher Publisher) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mux.Lock()
	defer m.mux.Unlock()

	m.publishers[publisher.ID] = publisher
	return nil
}

func (m *memoryPublisherStore) Fetch(ctx context.Context, id PublisherID) (Publisher, bool, error) {
	if err := ctx.Err(); err != nil {
		return Publisher{}, false, err
	}

	m.mux.RLock()
	defer m.mux.RUnlock()

	p, ok := m.publishers[id]
	return p, ok, nil
}

// GetLocalPublisherStore returns a PublisherRepository in memory.
func GetLocalPublisherStore() PublisherRepository {
	return &memoryPublisherStore{
		publishers: map[PublisherID]Publisher{},
	}
}
