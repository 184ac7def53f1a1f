// Package cli implements the eventhub command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/kapivara/eventhub/eventstore"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
)

// Repositories are the stores the commands operate on.
type Repositories struct {
	Streams    eventstore.EventStreamRepository
	Publishers eventstore.PublisherRepository
}

// Opener opens the repositories used by a command.
type Opener func(ctx context.Context, logger *slog.Logger) (Repositories, error)

// RootOptions holds global flags and dependencies for all commands.
type RootOptions struct {
	Format string // "yaml" | "json"
	Logger *slog.Logger
	Open   Opener

	repos  Repositories
	opened bool
}

// repositories opens the repositories on first use. Commands that never touch
// storage, such as completion, never open them.
func (o *RootOptions) repositories(cmd *cobra.Command) (Repositories, error) {
	if !o.opened {
		repos, err := o.Open(cmd.Context(), o.Logger)
		if err != nil {
			return Repositories{}, fmt.Errorf("unable to open repositories: %w", err)
		}
		o.repos = repos
		o.opened = true
	}
	return o.repos, nil
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"yaml", "json"}

// NewRootCommand creates the root command of the eventhub CLI.
func NewRootCommand(open Opener, logger *slog.Logger) *cobra.Command {
	opts := &RootOptions{Open: open, Logger: logger}

	cmd := &cobra.Command{
		Use:   "eventhub",
		Short: "Store and fetch event streams",
		Long: `eventhub persists domain events into per-stream append-only logs and
reconstructs a stream's history on demand.

The backend is selected with EVENTHUB_BACKEND (file or dynamodb).`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "yaml", "output format (yaml|json)")

	cmd.AddCommand(NewStoreCommand(opts))
	cmd.AddCommand(NewFetchCommand(opts))
	cmd.AddCommand(NewPublisherCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
