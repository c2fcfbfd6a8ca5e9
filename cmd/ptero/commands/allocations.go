package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/spf13/cobra"
)

// NewAllocationsCommand creates the allocations command group
func NewAllocationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "allocations",
		Aliases: []string{"allocation"},
		Short:   "Manage node allocations",
		Long:    "List, add and remove the IP and port pairs of a node",
	}

	cmd.AddCommand(newAllocationsListCommand())
	cmd.AddCommand(newAllocationsCreateCommand())
	cmd.AddCommand(newAllocationsDeleteCommand())

	return cmd
}

func newAllocationsListCommand() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list NODE_ID",
		Short: "List allocations",
		Long:  "List the allocations of a node. Filters: ip, port, ip_alias, server_id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := parseID(args[0])
			if err != nil {
				return err
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			allocations := client.Application().Allocations()

			result, err := fetchList(cmd.Context(), &flags,
				func(ctx context.Context, opts *ptero.ListOptions) (*ptero.ListResponse[ptero.Allocation], error) {
					return allocations.List(ctx, node, opts)
				},
				func(opts *ptero.ListOptions) *ptero.Cursor[ptero.Allocation] {
					return allocations.Cursor(node, opts)
				})
			if err != nil {
				return fmt.Errorf("failed to list allocations: %w", err)
			}

			return renderList(cmd, result.items, result.pagination, "allocations", func(table *Table) {
				table.Header("ID", "IP", "Port", "Alias", "Notes", "Assigned")

				for _, allocation := range result.items {
					table.Row(allocation.ID, allocation.IP, allocation.Port, formatOptional(allocation.Alias),
						truncate(formatOptional(allocation.Notes)), formatBool(allocation.Assigned))
				}
			})
		},
	}

	flags.register(cmd)

	return cmd
}

func newAllocationsCreateCommand() *cobra.Command {
	var request ptero.CreateAllocationsRequest

	cmd := &cobra.Command{
		Use:   "create NODE_ID",
		Short: "Add allocations",
		Long:  "Add ports on one IP of a node. Ports are single ports (25565) or ranges (25565-25570)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := parseID(args[0])
			if err != nil {
				return err
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			err = client.Application().Allocations().Create(cmd.Context(), node, &request)
			if err != nil {
				return fmt.Errorf("failed to create allocations: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added %d port specification(s) on %s to node %d\n",
				len(request.Ports), request.IP, node)

			return nil
		},
	}

	cmd.Flags().StringVar(&request.IP, "ip", "", "IP address")
	cmd.Flags().StringVar(&request.Alias, "alias", "", "IP alias shown to users")
	cmd.Flags().StringSliceVar(&request.Ports, "ports", nil, "ports or port ranges")

	return cmd
}

func newAllocationsDeleteCommand() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "delete NODE_ID ALLOCATION_ID",
		Short: "Delete an allocation",
		Long:  "Delete an unassigned allocation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := parseID(args[0])
			if err != nil {
				return err
			}

			id, err := parseID(args[1])
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

			err = client.Application().Allocations().Delete(cmd.Context(), node, id)
			if err != nil {
				return fmt.Errorf("failed to delete allocation: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted allocation %d from node %d\n", id, node)

			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm deletion")

	return cmd
}
