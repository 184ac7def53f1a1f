package cli

import (
	"fmt"
	"time"

	"github.com/kapivara/eventhub/codec"
	"github.com/kapivara/eventhub/eventstore"
	"github.com/spf13/cobra"
)

// StoreOptions holds flags for the store command.
type StoreOptions struct {
	*RootOptions
	Stream     string
	ID         string
	Identity   int64
	Publisher  int64
	Position   uint64
	Final      bool
	Payload    string
	OccurredOn string
}

// NewStoreCommand creates the store command.
func NewStoreCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StoreOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Append a message to an event stream",
		Long: `Store one event message and print its id.

Storing again with the same --id overwrites the message with the same content.

Examples:
  eventhub store --stream f47ac10b-58cc-4372-a567-0e02b2c3d479 \
    --identity 1 --publisher 1 --position 0 --payload order-created`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStore(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Stream, "stream", "", "event stream id (required)")
	_ = cmd.MarkFlagRequired("stream")
	cmd.Flags().StringVar(&opts.ID, "id", "", "event message id (default: a new id)")
	cmd.Flags().Int64Var(&opts.Identity, "identity", 0, "identity id")
	cmd.Flags().Int64Var(&opts.Publisher, "publisher", 0, "publisher id")
	cmd.Flags().Uint64Var(&opts.Position, "position", 0, "position within the stream")
	cmd.Flags().BoolVar(&opts.Final, "final", false, "mark the message as the last of its stream")
	cmd.Flags().StringVar(&opts.Payload, "payload", "", "event payload")
	cmd.Flags().StringVar(&opts.OccurredOn, "occurred-on", "", "RFC 3339 time of the event (default: now)")

	return cmd
}

func runStore(opts *StoreOptions, cmd *cobra.Command) error {
	streamID, err := eventstore.ParseEventStreamID(opts.Stream)
	if err != nil {
		return fmt.Errorf("invalid --stream: %w", err)
	}

	id := eventstore.NewEventMessageID()
	if opts.ID != "" {
		if id, err = eventstore.ParseEventMessageID(opts.ID); err != nil {
			return fmt.Errorf("invalid --id: %w", err)
		}
	}

	occurredOn := time.Now()
	if opts.OccurredOn != "" {
		if occurredOn, err = time.Parse(codec.TimeLayout, opts.OccurredOn); err != nil {
			return fmt.Errorf("invalid --occurred-on: %w", err)
		}
	}

	message := eventstore.EventMessage{
		ID:            id,
		IdentityID:    eventstore.IdentityID(opts.Identity),
		PublisherID:   eventstore.PublisherID(opts.Publisher),
		EventStreamID: streamID,
		Payload:       opts.Payload,
		Position:      opts.Position,
		IsFinal:       opts.Final,
		OccurredOn:    occurredOn.UTC().Round(0),
	}

	repos, err := opts.repositories(cmd)
	if err != nil {
		return err
	}

	if err := repos.Streams.Store(cmd.Context(), message); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}
