package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/spf13/cobra"
)

// NewNestsCommand creates the nests command group
func NewNestsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "nests",
		Aliases: []string{"nest"},
		Short:   "Browse nests",
		Long:    "List nests and show their eggs",
	}

	cmd.AddCommand(newNestsListCommand())
	cmd.AddCommand(newNestsGetCommand())

	return cmd
}

func newNestsListCommand() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List nests",
		Long:  "List every nest",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			nests := client.Application().Nests()

			result, err := fetchList(cmd.Context(), &flags, nests.List, nests.Cursor)
			if err != nil {
				return fmt.Errorf("failed to list nests: %w", err)
			}

			return renderList(cmd, result.items, result.pagination, "nests", func(table *Table) {
				table.Header("ID", "Name", "Author", "Description")

				for _, nest := range result.items {
					table.Row(nest.ID, nest.Name, nest.Author, truncate(nest.Description))
				}
			})
		},
	}

	flags.register(cmd)

	return cmd
}

func newNestsGetCommand() *cobra.Command {
	var include []string

	cmd := &cobra.Command{
		Use:   "get NEST_ID",
		Short: "Get nest details",
		Long:  "Display a nest; --include eggs lists its eggs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			nest, err := withRetry(cmd.Context(), func(ctx context.Context) (*ptero.Nest, error) {
				return client.Application().Nests().Get(ctx, id, getOptions(include))
			})
			if err != nil {
				return fmt.Errorf("failed to get nest: %w", err)
			}

			return render(cmd, nest, func(table *Table) {
				table.Header("Property", "Value")
				table.Row("ID", nest.ID)
				table.Row("UUID", nest.UUID)
				table.Row("Name", nest.Name)
				table.Row("Author", nest.Author)
				table.Row("Description", truncate(nest.Description))
				table.Row("Created", formatTime(nest.CreatedAt))

				if eggs, err := nest.Eggs(); err == nil {
					for _, egg := range eggs {
						table.Row("Egg", fmt.Sprintf("%s (%d)", egg.Name, egg.ID))
					}
				}
			})
		},
	}

	cmd.Flags().StringSliceVar(&include, "include", nil, "relations to include (eggs, servers)")

	return cmd
}
