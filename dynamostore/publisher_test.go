package dynamostore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/kapivara/eventhub/codec"
	"github.com/kapivara/eventhub/eventstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPublisherTable = "publishers_test"

func TestPublisherRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("store then fetch", func(ct *testing.T) {
		api := newFakeAPI(10)
		repo := NewPublisherRepository(testPublisherTable, api, codec.NewJSONSerializer(), nil)

		p := eventstore.Publisher{ID: -7, Name: "billing"}
		require.NoError(ct, repo.Store(ctx, p))
		assert.Contains(ct, api.tables[testPublisherTable], "-7")

		fetched, ok, err := repo.Fetch(ctx, p.ID)
		require.NoError(ct, err)
		assert.True(ct, ok)
		assert.Equal(ct, p, fetched)
	})

	t.Run("missing publisher", func(ct *testing.T) {
		repo := NewPublisherRepository(testPublisherTable, newFakeAPI(10), codec.NewJSONSerializer(), nil)

		_, ok, err := repo.Fetch(ctx, 1)
		require.NoError(ct, err)
		assert.False(ct, ok)
	})

	t.Run("client failure is an IOError (error)", func(ct *testing.T) {
		api := newFakeAPI(10)
		api.err = errors.New("access denied")
		repo := NewPublisherRepository(testPublisherTable, api, codec.NewJSONSerializer(), nil)

		var ioErr *eventstore.IOError
		assert.ErrorAs(ct, repo.Store(ctx, eventstore.Publisher{ID: 1, Name: "a"}), &ioErr)

		_, _, err := repo.Fetch(ctx, 1)
		require.ErrorAs(ct, err, &ioErr)
		assert.Equal(ct, "get", ioErr.Op)
	})

	t.Run("document under another key is an integrity fault", func(ct *testing.T) {
		api := newFakeAPI(10)
		repo := NewPublisherRepository(testPublisherTable, api, codec.NewJSONSerializer(), nil)

		data, err := codec.NewJSONSerializer().MarshalPublisher(eventstore.Publisher{ID: 2, Name: "b"})
		require.NoError(ct, err)
		item, err := attributevalue.MarshalMap(publisherItem{PublisherID: 3, Document: data})
		require.NoError(ct, err)
		api.put(testPublisherTable, item)

		_, ok, err := repo.Fetch(ctx, 3)
		assert.False(ct, ok)
		assert.ErrorIs(ct, err, eventstore.ErrIntegrity)
	})
}
