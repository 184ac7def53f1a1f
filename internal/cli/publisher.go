package cli

import (
	"fmt"
	"strconv"

	"github.com/kapivara/eventhub/eventstore"
	"github.com/spf13/cobra"
)

// NewPublisherCommand creates the publisher command group.
func NewPublisherCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publisher",
		Short: "Store and fetch publishers",
	}

	cmd.AddCommand(newPublisherStoreCommand(opts))
	cmd.AddCommand(newPublisherFetchCommand(opts))

	return cmd
}

func newPublisherStoreCommand(opts *RootOptions) *cobra.Command {
	var (
		id   int64
		name string
	)

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Store a publisher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repos, err := opts.repositories(cmd)
			if err != nil {
				return err
			}

			return repos.Publishers.Store(cmd.Context(), eventstore.Publisher{
				ID:   eventstore.PublisherID(id),
				Name: name,
			})
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "publisher id (required)")
	_ = cmd.MarkFlagRequired("id")
	cmd.Flags().StringVar(&name, "name", "", "publisher name (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newPublisherFetchCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch ID",
		Short: "Print a publisher",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid publisher id: %w", err)
			}

			repos, err := opts.repositories(cmd)
			if err != nil {
				return err
			}

			p, ok, err := repos.Publishers.Fetch(cmd.Context(), eventstore.PublisherID(id))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("publisher %d not found", id)
			}

			return write(cmd.OutOrStdout(), opts.Format, publisherView{
				ID:   int64(p.ID),
				Name: p.Name,
			})
		},
	}
}
