package filedb

import (
	"context"
	"errors"
	"fmt"

	"github.com/kapivara/eventhub/codec"
	"github.com/kapivara/eventhub/eventstore"
	"golang.org/x/exp/slog"
)

// PublisherRepository keeps each publisher in <publisherId>.gz under its own
// storage root.
type PublisherRepository struct {
	db         Storage
	serializer codec.Serializer
	logger     *slog.Logger
}

var _ eventstore.PublisherRepository = (*PublisherRepository)(nil)

// Store saves the publisher.
func (r *PublisherRepository) Store(ctx context.Context, p eventstore.Publisher) error {
	data, err := r.serializer.MarshalPublisher(p)
	if err != nil {
		return fmt.Errorf("unable to marshal publisher %s: %w", p.ID, err)
	}

	if err := r.db.WriteAtomic(ctx, publisherFile(p.ID), data); err != nil {
		return fmt.Errorf("unable to store publisher %s: %w", p.ID, err)
	}

	r.logger.DebugContext(
		ctx,
		"publisher stored",
		slog.String("publisher_id", p.ID.String()),
		slog.String("publisher_name", p.Name),
	)

	return nil
}

// Fetch loads a publisher.
func (r *PublisherRepository) Fetch(ctx context.Context, id eventstore.PublisherID) (eventstore.Publisher, bool, error) {
	name := publisherFile(id)

	data, err := r.db.Read(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return eventstore.Publisher{}, false, nil
	}
	if err != nil {
		return eventstore.Publisher{}, false, fmt.Errorf("unable to fetch publisher %s: %w", id, err)
	}

	p, err := r.serializer.UnmarshalPublisher(data)
	if err != nil {
		var serr *eventstore.SerializationError
		if errors.As(err, &serr) {
			serr.Source = name
		}
		return eventstore.Publisher{}, false, err
	}

	if p.ID != id {
		return eventstore.Publisher{}, false, &eventstore.SerializationError{
			Source: name,
			Field:  codec.FieldID,
			Err:    fmt.Errorf("%w: document id %s does not match file name", eventstore.ErrIntegrity, p.ID),
		}
	}

	return p, true, nil
}

func publisherFile(id eventstore.PublisherID) string {
	return id.String() + codec.Extension
}

// NewPublisherRepository is a factory function that creates a new
// PublisherRepository. A nil logger discards all log output.
func NewPublisherRepository(
	db Storage,
	serializer codec.Serializer,
	logger *slog.Logger,
) *PublisherRepository {
	if logger == nil {
		logger = discardLogger()
	}
	return &PublisherRepository{db, serializer, logger}
}
