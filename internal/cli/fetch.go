package cli

import (
	"fmt"

	"github.com/kapivara/eventhub/eventstore"
	"github.com/spf13/cobra"
)

// NewFetchCommand creates the fetch command.
func NewFetchCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch STREAM",
		Short: "Print every message of an event stream",
		Long: `Fetch an event stream and print its messages ordered by position.

A stream that was never stored is reported as an error.

Examples:
  eventhub fetch f47ac10b-58cc-4372-a567-0e02b2c3d479
  eventhub fetch f47ac10b-58cc-4372-a567-0e02b2c3d479 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := eventstore.ParseEventStreamID(args[0])
			if err != nil {
				return fmt.Errorf("invalid stream id: %w", err)
			}

			repos, err := opts.repositories(cmd)
			if err != nil {
				return err
			}

			stream, ok, err := repos.Streams.Fetch(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("event stream %s not found", id)
			}

			return write(cmd.OutOrStdout(), opts.Format, newStreamView(stream))
		},
	}
}
