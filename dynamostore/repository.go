package dynamostore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/kapivara/eventhub/codec"
	"github.com/kapivara/eventhub/eventstore"
	"golang.org/x/exp/slog"
)

// Attribute names of the message table.
const (
	StreamIDAttr  = "stream_id"
	MessageIDAttr = "message_id"
	PositionAttr  = "position"
	DocumentAttr  = "document"
)

// API is the subset of the DynamoDB client used by the repositories.
type API interface {
	dynamodb.QueryAPIClient
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

type messageItem struct {
	StreamID  string `dynamodbav:"stream_id"`
	MessageID string `dynamodbav:"message_id"`
	Position  uint64 `dynamodbav:"position"`
	Document  []byte `dynamodbav:"document"`
}

// Repository is an eventstore.EventStreamRepository backed by a DynamoDB
// table.
type Repository struct {
	table      string
	api        API
	serializer codec.Serializer
	logger     *slog.Logger
}

var _ eventstore.EventStreamRepository = (*Repository)(nil)

// Store puts the message item. Storing the same message again overwrites the
// item with equivalent content.
func (r *Repository) Store(ctx context.Context, message eventstore.EventMessage) error {
	data, err := r.serializer.MarshalMessage(message)
	if err != nil {
		return fmt.Errorf("unable to marshal event message %s: %w", message.ID, err)
	}

	item, err := attributevalue.MarshalMap(messageItem{
		StreamID:  message.EventStreamID.String(),
		MessageID: message.ID.String(),
		Position:  message.Position,
		Document:  data,
	})
	if err != nil {
		return fmt.Errorf("unable to marshal event message %s: %w", message.ID, err)
	}

	if _, err := r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf(
			"unable to store event message %s: %w",
			message.ID,
			&eventstore.IOError{Op: "put", Path: r.table, Err: err},
		)
	}

	r.logger.DebugContext(
		ctx,
		"event message stored",
		slog.String("table", r.table),
		slog.String("event_stream_id", message.EventStreamID.String()),
		slog.String("event_message_id", message.ID.String()),
		slog.Uint64("position", message.Position),
	)

	return nil
}

// Fetch queries every item of the stream and orders the messages by
// position. A single bad item fails the whole fetch.
func (r *Repository) Fetch(ctx context.Context, id eventstore.EventStreamID) (eventstore.EventStream, bool, error) {
	pages := dynamodb.NewQueryPaginator(r.api, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		ConsistentRead:         aws.Bool(true),
		KeyConditionExpression: aws.String("#key = :key"),
		ExpressionAttributeNames: map[string]string{
			"#key": StreamIDAttr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":key": &types.AttributeValueMemberS{Value: id.String()},
		},
	})

	var messages eventstore.Messages
	for pages.HasMorePages() {
		out, err := pages.NextPage(ctx)
		if err != nil {
			return eventstore.EventStream{}, false, fmt.Errorf(
				"unable to fetch event stream %s: %w",
				id,
				&eventstore.IOError{Op: "query", Path: r.table, Err: err},
			)
		}

		for _, item := range out.Items {
			m, err := r.decode(id, item)
			if err != nil {
				r.logger.WarnContext(
					ctx,
					"unable to decode stored event message",
					slog.String("table", r.table),
					slog.String("event_stream_id", id.String()),
					slog.String("error", err.Error()),
				)
				return eventstore.EventStream{}, false, err
			}
			messages = append(messages, m)
		}
	}

	if len(messages) == 0 {
		return eventstore.EventStream{}, false, nil
	}

	sort.Sort(messages)

	r.logger.DebugContext(
		ctx,
		"event stream fetched",
		slog.String("table", r.table),
		slog.String("event_stream_id", id.String()),
		slog.Int("messages", len(messages)),
	)

	return eventstore.EventStream{ID: id, Messages: messages}, true, nil
}

func (r *Repository) decode(id eventstore.EventStreamID, item map[string]types.AttributeValue) (eventstore.EventMessage, error) {
	var rec messageItem
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return eventstore.EventMessage{}, &eventstore.SerializationError{Source: r.table, Err: err}
	}

	source := r.table + "/" + rec.StreamID + "/" + rec.MessageID

	m, err := r.serializer.UnmarshalMessage(rec.Document)
	if err != nil {
		var serr *eventstore.SerializationError
		if errors.As(err, &serr) {
			serr.Source = source
			return m, serr
		}
		return m, &eventstore.SerializationError{Source: source, Err: err}
	}

	if rec.MessageID != m.ID.String() {
		return m, &eventstore.SerializationError{
			Source: source,
			Field:  codec.FieldID,
			Err:    fmt.Errorf("%w: document id %s does not match item key", eventstore.ErrIntegrity, m.ID),
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

// NewRepository is a factory function that creates a new Repository on the
// given table. A nil logger discards all log output.
func NewRepository(
	table string,
	api API,
	serializer codec.Serializer,
	logger *slog.Logger,
) *Repository {
	if logger == nil {
		logger = discardLogger()
	}
	return &Repository{table, api, serializer, logger}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
