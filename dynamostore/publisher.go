package dynamostore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/kapivara/eventhub/codec"
	"github.com/kapivara/eventhub/eventstore"
	"golang.org/x/exp/slog"
)

// PublisherIDAttr is the hash key of the publisher table.
const PublisherIDAttr = "publisher_id"

type publisherItem struct {
	PublisherID int64  `dynamodbav:"publisher_id"`
	Document    []byte `dynamodbav:"document"`
}

// PublisherRepository is an eventstore.PublisherRepository backed by a
// DynamoDB table keyed by publisher_id.
type PublisherRepository struct {
	table      string
	api        API
	serializer codec.Serializer
	logger     *slog.Logger
}

var _ eventstore.PublisherRepository = (*PublisherRepository)(nil)

// Store puts the publisher item.
func (r *PublisherRepository) Store(ctx context.Context, p eventstore.Publisher) error {
	data, err := r.serializer.MarshalPublisher(p)
	if err != nil {
		return fmt.Errorf("unable to marshal publisher %s: %w", p.ID, err)
	}

	item, err := attributevalue.MarshalMap(publisherItem{
		PublisherID: int64(p.ID),
		Document:    data,
	})
	if err != nil {
		return fmt.Errorf("unable to marshal publisher %s: %w", p.ID, err)
	}

	if _, err := r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf(
			"unable to store publisher %s: %w",
			p.ID,
			&eventstore.IOError{Op: "put", Path: r.table, Err: err},
		)
	}

	r.logger.DebugContext(
		ctx,
		"publisher stored",
		slog.String("table", r.table),
		slog.String("publisher_id", p.ID.String()),
	)

	return nil
}

// Fetch gets a publisher.
func (r *PublisherRepository) Fetch(ctx context.Context, id eventstore.PublisherID) (eventstore.Publisher, bool, error) {
	out, err := r.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		ConsistentRead: aws.Bool(true),
		Key: map[string]types.AttributeValue{
			PublisherIDAttr: &types.AttributeValueMemberN{Value: strconv.FormatInt(int64(id), 10)},
		},
	})
	if err != nil {
		return eventstore.Publisher{}, false, fmt.Errorf(
			"unable to fetch publisher %s: %w",
			id,
			&eventstore.IOError{Op: "get", Path: r.table, Err: err},
		)
	}

	if len(out.Item) == 0 {
		return eventstore.Publisher{}, false, nil
	}

	source := r.table + "/" + id.String()

	var rec publisherItem
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return eventstore.Publisher{}, false, &eventstore.SerializationError{Source: source, Err: err}
	}

	p, err := r.serializer.UnmarshalPublisher(rec.Document)
	if err != nil {
		var serr *eventstore.SerializationError
		if errors.As(err, &serr) {
			serr.Source = source
		}
		return eventstore.Publisher{}, false, err
	}

	if p.ID != id {
		return eventstore.Publisher{}, false, &eventstore.SerializationError{
			Source: source,
			Field:  codec.FieldID,
			Err:    fmt.Errorf("%w: document id %s does not match item key", eventstore.ErrIntegrity, p.ID),
		}
	}

	return p, true, nil
}

// NewPublisherRepository is a factory function that creates a new
// PublisherRepository on the given table. A nil logger discards all log
// output.
func NewPublisherRepository(
	table string,
	api API,
	serializer codec.Serializer,
	logger *slog.Logger,
) *PublisherRepository {
	if logger == nil {
		logger = discardLogger()
	}
	return &PublisherRepository{table, api, serializer, logger}
}
