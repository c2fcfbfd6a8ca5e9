package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/spf13/cobra"
)

// NewLocationsCommand creates the locations command group
func NewLocationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "locations",
		Aliases: []string{"location"},
		Short:   "Manage locations",
		Long:    "List and manage the locations that group nodes",
	}

	cmd.AddCommand(newLocationsListCommand())
	cmd.AddCommand(newLocationsGetCommand())
	cmd.AddCommand(newLocationsCreateCommand())
	cmd.AddCommand(newLocationsUpdateCommand())
	cmd.AddCommand(newLocationsDeleteCommand())

	return cmd
}

func newLocationsListCommand() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List locations",
		Long:  "List every location. Filters: short, long",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			locations := client.Application().Locations()

			result, err := fetchList(cmd.Context(), &flags, locations.List, locations.Cursor)
			if err != nil {
				return fmt.Errorf("failed to list locations: %w", err)
			}

			return renderList(cmd, result.items, result.pagination, "locations", func(table *Table) {
				table.Header("ID", "Short", "Description", "Created")

				for _, location := range result.items {
					table.Row(location.ID, location.Short, truncate(location.Long), formatTime(location.CreatedAt))
				}
			})
		},
	}

	flags.register(cmd)

	return cmd
}

func newLocationsGetCommand() *cobra.Command {
	var include []string

	cmd := &cobra.Command{
		Use:   "get LOCATION_ID",
		Short: "Get location details",
		Long:  "Display a location",
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

			location, err := withRetry(cmd.Context(), func(ctx context.Context) (*ptero.Location, error) {
				return client.Application().Locations().Get(ctx, id, getOptions(include))
			})
			if err != nil {
				return fmt.Errorf("failed to get location: %w", err)
			}

			return renderLocation(cmd, location)
		},
	}

	cmd.Flags().StringSliceVar(&include, "include", nil, "relations to include (nodes, servers)")

	return cmd
}

func renderLocation(cmd *cobra.Command, location *ptero.Location) error {
	return render(cmd, location, func(table *Table) {
		table.Header("Property", "Value")
		table.Row("ID", location.ID)
		table.Row("Short", location.Short)
		table.Row("Description", location.Long)
		table.Row("Created", formatTime(location.CreatedAt))
		table.Row("Updated", formatTime(formatOptional(location.UpdatedAt)))

		if nodes, err := location.Nodes(); err == nil {
			for _, node := range nodes {
				table.Row("Node", fmt.Sprintf("%s (%d)", node.Name, node.ID))
			}
		}
	})
}

func newLocationsCreateCommand() *cobra.Command {
	var request ptero.LocationRequest

	cmd := &cobra.Command{
		Use:   "create SHORT",
		Short: "Create a location",
		Long:  "Create a location with a short code and an optional description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request.Short = args[0]

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			location, err := client.Application().Locations().Create(cmd.Context(), &request)
			if err != nil {
				return fmt.Errorf("failed to create location: %w", err)
			}

			printf(cmd, "Created location %s (%d)\n", location.Short, location.ID)

			return renderLocation(cmd, location)
		},
	}

	cmd.Flags().StringVar(&request.Long, "description", "", "description")

	return cmd
}

func newLocationsUpdateCommand() *cobra.Command {
	var request ptero.LocationRequest

	cmd := &cobra.Command{
		Use:   "update LOCATION_ID",
		Short: "Update a location",
		Long:  "Change the short code or description of a location",
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

			locations := client.Application().Locations()

			current, err := locations.Get(cmd.Context(), id, nil)
			if err != nil {
				return fmt.Errorf("failed to get location: %w", err)
			}

			if !cmd.Flags().Changed("short") {
				request.Short = current.Short
			}

			if !cmd.Flags().Changed("description") {
				request.Long = current.Long
			}

			location, err := locations.Update(cmd.Context(), id, &request)
			if err != nil {
				return fmt.Errorf("failed to update location: %w", err)
			}

			return renderLocation(cmd, location)
		},
	}

	cmd.Flags().StringVar(&request.Short, "short", "", "short code")
	cmd.Flags().StringVar(&request.Long, "description", "", "description")

	return cmd
}

func newLocationsDeleteCommand() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "delete LOCATION_ID",
		Short: "Delete a location",
		Long:  "Delete a location. The panel refuses locations that still have nodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			err = confirmDeletion(confirm)
			if err != nil {
				return err
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			err = client.Application().Locations().Delete(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to delete location: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted location %d\n", id)

			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm deletion")

	return cmd
}
