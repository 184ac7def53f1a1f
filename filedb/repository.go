package filedb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/kapivara/eventhub/codec"
	"github.com/kapivara/eventhub/eventstore"
	"golang.org/x/exp/slog"
)

// EventStreamRepository is an eventstore.EventStreamRepository that keeps
// every message in its own file.
type EventStreamRepository struct {
	db         Storage
	resolver   Resolver
	serializer codec.Serializer
	logger     *slog.Logger
}

var _ eventstore.EventStreamRepository = (*EventStreamRepository)(nil)

// Store writes the message to <bucket>/<eventStreamId>/<eventMessageId>.gz
func (r *EventStreamRepository) Store(ctx context.Context, message eventstore.EventMessage) error {
	p := r.resolver.MessageFile(message.EventStreamID, message.ID)

	data, err := r.serializer.MarshalMessage(message)
	if err != nil {
		return fmt.Errorf("unable to marshal event message %s: %w", message.ID, err)
	}

	if err := r.db.WriteAtomic(ctx, p, data); err != nil {
		return fmt.Errorf("unable to store event message %s: %w", message.ID, err)
	}

	r.logger.DebugContext(
		ctx,
		"event message stored",
		slog.String("event_stream_id", message.EventStreamID.String()),
		slog.String("event_message_id", message.ID.String()),
		slog.Uint64("position", message.Position),
		slog.Bool("is_final", message.IsFinal),
	)

	return nil
}

// Fetch reads every message of the stream and orders them by position.
//
// A single malformed or misplaced record fails the whole fetch: a partial
// history is never returned.
func (r *EventStreamRepository) Fetch(ctx context.Context, id eventstore.EventStreamID) (eventstore.EventStream, bool, error) {
	dir := r.resolver.StreamDir(id)

	files, err := r.db.ListAndReadAll(ctx, dir, codec.Extension)
	if errors.Is(err, ErrNotFound) {
		return eventstore.EventStream{}, false, nil
	}
	if err != nil {
		return eventstore.EventStream{}, false, fmt.Errorf("unable to fetch event stream %s: %w", id, err)
	}

	// A directory left by an interrupted first write holds no message yet.
	if len(files) == 0 {
		return eventstore.EventStream{}, false, nil
	}

	messages := make(eventstore.Messages, 0, len(files))
	for _, f := range files {
		m, err := r.decode(id, dir, f)
		if err != nil {
			r.logger.WarnContext(
				ctx,
				"unable to decode stored event message",
				slog.String("event_stream_id", id.String()),
				slog.String("file", f.Name),
				slog.String("error", err.Error()),
			)
			return eventstore.EventStream{}, false, err
		}
		messages = append(messages, m)
	}

	sort.Sort(messages)

	r.logger.DebugContext(
		ctx,
		"event stream fetched",
		slog.String("event_stream_id", id.String()),
		slog.Int("messages", len(messages)),
	)

	return eventstore.EventStream{ID: id, Messages: messages}, true, nil
}

// decode converts a stored file back into a message, checking that it was
// found where Store would have put it.
func (r *EventStreamRepository) decode(id eventstore.EventStreamID, dir string, f File) (eventstore.EventMessage, error) {
	source := path.Join(dir, f.Name)

	m, err := r.serializer.UnmarshalMessage(f.Content)
	if err != nil {
		var serr *eventstore.SerializationError
		if errors.As(err, &serr) {
			serr.Source = source
			return m, serr
		}
		return m, &eventstore.SerializationError{Source: source, Err: err}
	}

	if name := strings.TrimSuffix(f.Name, codec.Extension); name != m.ID.String() {
		return m, &eventstore.SerializationError{
			Source: source,
			Field:  codec.FieldID,
			Err:    fmt.Errorf("%w: document id %s does not match file name", eventstore.ErrIntegrity, m.ID),
		}
	}

	if m.EventStreamID != id {
		return m, &eventstore.SerializationError{
			Source: source,
			Field:  codec.FieldEventStreamID,
			Err:    fmt.Errorf("%w: document belongs to stream %s", eventstore.ErrIntegrity, m.EventStreamID),
		}
	}

	return m, nil
}

// NewEventStreamRepository is a factory function that creates a new
// EventStreamRepository. A nil logger discards all log output.
func NewEventStreamRepository(
	db Storage,
	resolver Resolver,
	serializer codec.Serializer,
	logger *slog.Logger,
) *EventStreamRepository {
	if logger == nil {
		logger = discardLogger()
	}
	return &EventStreamRepository{db, resolver, serializer, logger}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
