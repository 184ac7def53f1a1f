package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kapivara/eventhub/eventstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"golang.org/x/exp/slog"
	"gopkg.in/yaml.v3"
)

const (
	streamID  = "f47ac10b-58cc-4372-a567-0e02b2c3d479"
	createdID = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	shippedID = "6ba7b811-9dad-11d1-80b4-00c04fd430c8"
)

func newLocalRepositories() Repositories {
	return Repositories{
		Streams:    eventstore.GetLocalStore(),
		Publishers: eventstore.GetLocalPublisherStore(),
	}
}

func execute(repos Repositories, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd := NewRootCommand(
		func(context.Context, *slog.Logger) (Repositories, error) {
			return repos, nil
		},
		nil,
	)
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func storeOrder(t *testing.T, repos Repositories) {
	t.Helper()

	out, err := execute(repos,
		"store", "--stream", streamID, "--id", createdID,
		"--identity", "7", "--publisher", "3", "--position", "0",
		"--payload", "order-created", "--occurred-on", "2024-03-01T12:00:00.5Z",
	)
	require.NoError(t, err)
	assert.Equal(t, createdID+"\n", out)

	out, err = execute(repos,
		"store", "--stream", streamID, "--id", shippedID,
		"--identity", "7", "--publisher", "3", "--position", "1", "--final",
		"--payload", "order-shipped", "--occurred-on", "2024-03-01T13:00:00Z",
	)
	require.NoError(t, err)
	assert.Equal(t, shippedID+"\n", out)
}

func TestStoreCommand(t *testing.T) {
	t.Run("generates an id when none is given", func(ct *testing.T) {
		repos := newLocalRepositories()

		out, err := execute(repos, "store", "--stream", streamID, "--payload", "x")
		require.NoError(ct, err)

		id, err := eventstore.ParseEventMessageID(strings.TrimSpace(out))
		require.NoError(ct, err)

		sid, _ := eventstore.ParseEventStreamID(streamID)
		stream, ok, err := repos.Streams.Fetch(context.Background(), sid)
		require.NoError(ct, err)
		require.True(ct, ok)
		assert.Equal(ct, id, stream.Messages[0].ID)
	})

	t.Run("missing stream flag (error)", func(ct *testing.T) {
		_, err := execute(newLocalRepositories(), "store", "--payload", "x")
		require.Error(ct, err)
		assert.Contains(ct, err.Error(), "required flag")
	})

	t.Run("invalid ids (error)", func(ct *testing.T) {
		_, err := execute(newLocalRepositories(), "store", "--stream", "nope")
		assert.ErrorContains(ct, err, "invalid --stream")

		_, err = execute(newLocalRepositories(), "store", "--stream", streamID, "--id", "nope")
		assert.ErrorContains(ct, err, "invalid --id")
	})

	t.Run("invalid occurred-on (error)", func(ct *testing.T) {
		_, err := execute(newLocalRepositories(), "store", "--stream", streamID, "--occurred-on", "yesterday")
		assert.ErrorContains(ct, err, "invalid --occurred-on")
	})
}

func TestFetchCommand(t *testing.T) {
	t.Run("yaml", func(ct *testing.T) {
		repos := newLocalRepositories()
		storeOrder(ct, repos)

		out, err := execute(repos, "fetch", streamID)
		require.NoError(ct, err)

		var v streamView
		require.NoError(ct, yaml.Unmarshal([]byte(out), &v))
		assert.Equal(ct, streamID, v.ID)
		require.Len(ct, v.Messages, 2)
		assert.Equal(ct, messageView{
			ID:            createdID,
			IdentityID:    7,
			PublisherID:   3,
			EventStreamID: streamID,
			Payload:       "order-created",
			Position:      0,
			OccurredOn:    "2024-03-01T12:00:00.5Z",
		}, v.Messages[0])
		assert.Equal(ct, shippedID, v.Messages[1].ID)
		assert.True(ct, v.Messages[1].IsFinal)
	})

	t.Run("json", func(ct *testing.T) {
		repos := newLocalRepositories()
		storeOrder(ct, repos)

		out, err := execute(repos, "fetch", streamID, "--format", "json")
		require.NoError(ct, err)
		require.True(ct, gjson.Valid(out))

		doc := gjson.Parse(out)
		assert.Equal(ct, streamID, doc.Get("id").String())
		assert.Equal(ct, []string{"order-created", "order-shipped"}, []string{
			doc.Get("messages.0.payload").String(),
			doc.Get("messages.1.payload").String(),
		})
		assert.Equal(ct, "2024-03-01T13:00:00Z", doc.Get("messages.1.occurredOn").String())
	})

	t.Run("missing stream (error)", func(ct *testing.T) {
		_, err := execute(newLocalRepositories(), "fetch", streamID)
		assert.ErrorContains(ct, err, "not found")
	})

	t.Run("invalid format (error)", func(ct *testing.T) {
		_, err := execute(newLocalRepositories(), "fetch", streamID, "--format", "xml")
		assert.ErrorContains(ct, err, "invalid format")
	})

	t.Run("missing argument (error)", func(ct *testing.T) {
		_, err := execute(newLocalRepositories(), "fetch")
		assert.Error(ct, err)
	})
}

func TestPublisherCommand(t *testing.T) {
	repos := newLocalRepositories()

	_, err := execute(repos, "publisher", "store", "--id", "42", "--name", "orders-service")
	require.NoError(t, err)

	out, err := execute(repos, "publisher", "fetch", "42", "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, int64(42), gjson.Get(out, "id").Int())
	assert.Equal(t, "orders-service", gjson.Get(out, "publisherName").String())

	_, err = execute(repos, "publisher", "fetch", "43")
	assert.ErrorContains(t, err, "publisher 43 not found")

	_, err = execute(repos, "publisher", "fetch", "x")
	assert.ErrorContains(t, err, "invalid publisher id")

	_, err = execute(repos, "publisher", "store", "--id", "1")
	assert.ErrorContains(t, err, "required flag")
}

func TestCommandsWithoutStorage(t *testing.T) {
	opened := 0
	cmd := NewRootCommand(
		func(context.Context, *slog.Logger) (Repositories, error) {
			opened++
			return Repositories{}, errors.New("EVENTHUB_STORAGE_ROOT is not set")
		},
		nil,
	)

	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"completion", "bash"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, buf.String(), "eventhub")
	assert.Equal(t, 0, opened)

	t.Run("storage commands report the open failure (error)", func(ct *testing.T) {
		cmd := NewRootCommand(
			func(context.Context, *slog.Logger) (Repositories, error) {
				return Repositories{}, errors.New("EVENTHUB_STORAGE_ROOT is not set")
			},
			nil,
		)
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		cmd.SetArgs([]string{"fetch", streamID})

		err := cmd.ExecuteContext(context.Background())
		assert.ErrorContains(ct, err, "unable to open repositories")
	})
}
