package commands

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/spf13/cobra"
)

// NewEggsCommand creates the eggs command group
func NewEggsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "eggs",
		Aliases: []string{"egg"},
		Short:   "Browse eggs",
		Long:    "List the eggs of a nest and show their startup configuration",
	}

	cmd.AddCommand(newEggsListCommand())
	cmd.AddCommand(newEggsGetCommand())

	return cmd
}

func newEggsListCommand() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list NEST_ID",
		Short: "List eggs",
		Long:  "List the eggs of a nest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nest, err := parseID(args[0])
			if err != nil {
				return err
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			result, err := fetchList(cmd.Context(), &flags,
				func(ctx context.Context, opts *ptero.ListOptions) (*ptero.ListResponse[ptero.Egg], error) {
					return client.Application().Eggs().List(ctx, nest, opts)
				}, nil)
			if err != nil {
				return fmt.Errorf("failed to list eggs: %w", err)
			}

			return renderList(cmd, result.items, result.pagination, "eggs", func(table *Table) {
				table.Header("ID", "Name", "Author", "Image", "Description")

				for _, egg := range result.items {
					table.Row(egg.ID, egg.Name, egg.Author, egg.DockerImage, truncate(egg.Description))
				}
			})
		},
	}

	flags.register(cmd)

	return cmd
}

func newEggsGetCommand() *cobra.Command {
	var include []string

	cmd := &cobra.Command{
		Use:   "get NEST_ID EGG_ID",
		Short: "Get egg details",
		Long:  "Display an egg; --include variables lists its startup variables",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			nest, err := parseID(args[0])
			if err != nil {
				return err
			}

			id, err := parseID(args[1])
			if err != nil {
				return err
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			egg, err := withRetry(cmd.Context(), func(ctx context.Context) (*ptero.Egg, error) {
				return client.Application().Eggs().Get(ctx, nest, id, getOptions(include))
			})
			if err != nil {
				return fmt.Errorf("failed to get egg: %w", err)
			}

			return render(cmd, egg, func(table *Table) {
				table.Header("Property", "Value")
				table.Row("ID", egg.ID)
				table.Row("UUID", egg.UUID)
				table.Row("Name", egg.Name)
				table.Row("Nest", egg.Nest)
				table.Row("Author", egg.Author)
				table.Row("Description", truncate(egg.Description))
				table.Row("Startup", truncate(egg.Startup))

				for _, name := range slices.Sorted(maps.Keys(egg.DockerImages)) {
					table.Row("Image "+name, egg.DockerImages[name])
				}

				if variables, err := egg.Variables(); err == nil {
					for _, variable := range variables {
						table.Row("Variable "+variable.EnvVariable, variable.DefaultValue)
					}
				}
			})
		},
	}

	cmd.Flags().StringSliceVar(&include, "include", nil, "relations to include (nest, servers, config, script, variables)")

	return cmd
}
