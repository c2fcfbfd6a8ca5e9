package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewNodesCommand creates the nodes command group
func NewNodesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "nodes",
		Aliases: []string{"node"},
		Short:   "Manage nodes",
		Long:    "List and manage Wings nodes through the Application API",
	}

	cmd.AddCommand(newNodesListCommand())
	cmd.AddCommand(newNodesGetCommand())
	cmd.AddCommand(newNodesConfigurationCommand())
	cmd.AddCommand(newNodesCreateCommand())
	cmd.AddCommand(newNodesUpdateCommand())
	cmd.AddCommand(newNodesDeleteCommand())

	return cmd
}

func newNodesListCommand() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List nodes",
		Long:  "List every node. Filters: uuid, name, fqdn, daemon_token_id",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			nodes := client.Application().Nodes()

			result, err := fetchList(cmd.Context(), &flags, nodes.List, nodes.Cursor)
			if err != nil {
				return fmt.Errorf("failed to list nodes: %w", err)
			}

			return renderList(cmd, result.items, result.pagination, "nodes", func(table *Table) {
				table.Header("ID", "Name", "FQDN", "Location", "Memory", "Disk", "Public", "Maintenance")

				for _, node := range result.items {
					table.Row(node.ID, node.Name, node.FQDN, node.LocationID,
						fmt.Sprintf("%d / %s", node.AllocatedResources.Memory, formatMiB(node.Memory)),
						fmt.Sprintf("%d / %s", node.AllocatedResources.Disk, formatMiB(node.Disk)),
						formatBool(node.Public), formatBool(node.MaintenanceMode))
				}
			})
		},
	}

	flags.register(cmd)

	return cmd
}

func newNodesGetCommand() *cobra.Command {
	var include []string

	cmd := &cobra.Command{
		Use:   "get NODE_ID",
		Short: "Get node details",
		Long:  "Display a node",
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

			node, err := withRetry(cmd.Context(), func(ctx context.Context) (*ptero.Node, error) {
				return client.Application().Nodes().Get(ctx, id, getOptions(include))
			})
			if err != nil {
				return fmt.Errorf("failed to get node: %w", err)
			}

			return renderNode(cmd, node)
		},
	}

	cmd.Flags().StringSliceVar(&include, "include", nil, "relations to include (allocations, location, servers)")

	return cmd
}

func renderNode(cmd *cobra.Command, node *ptero.Node) error {
	return render(cmd, node, func(table *Table) {
		table.Header("Property", "Value")
		table.Row("ID", node.ID)
		table.Row("UUID", node.UUID)
		table.Row("Name", node.Name)
		table.Row("Description", truncate(node.Description))
		table.Row("Location", node.LocationID)
		table.Row("Address", fmt.Sprintf("%s://%s:%d", node.Scheme, node.FQDN, node.DaemonListen))
		table.Row("SFTP Port", node.DaemonSFTP)
		table.Row("Behind Proxy", formatBool(node.BehindProxy))
		table.Row("Public", formatBool(node.Public))
		table.Row("Maintenance", formatBool(node.MaintenanceMode))
		table.Row("Memory", fmt.Sprintf("%s (overallocate %d%%)", formatMiB(node.Memory), node.MemoryOverallocate))
		table.Row("Disk", fmt.Sprintf("%s (overallocate %d%%)", formatMiB(node.Disk), node.DiskOverallocate))
		table.Row("Allocated", fmt.Sprintf("%d MiB memory, %d MiB disk",
			node.AllocatedResources.Memory, node.AllocatedResources.Disk))
		table.Row("Upload Size", formatMiB(node.UploadSize))
		table.Row("Created", formatTime(node.CreatedAt))

		if location, err := node.Location(); err == nil && location != nil {
			table.Row("Location Name", location.Short)
		}
	})
}

func newNodesConfigurationCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "configuration NODE_ID",
		Short: "Print the Wings configuration of a node",
		Long:  "Print the config.yml Wings needs to join the panel. Table output prints YAML",
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

			configuration, err := withRetry(cmd.Context(), func(ctx context.Context) (*ptero.NodeConfiguration, error) {
				return client.Application().Nodes().GetConfiguration(ctx, id)
			})
			if err != nil {
				return fmt.Errorf("failed to get node configuration: %w", err)
			}

			if isTableOutput() {
				encoder := yaml.NewEncoder(cmd.OutOrStdout())
				defer func() { _ = encoder.Close() }()

				return encoder.Encode(configuration)
			}

			return render(cmd, configuration, func(*Table) {})
		},
	}
}

func registerNodeFlags(cmd *cobra.Command, request *ptero.NodeRequest) {
	flags := cmd.Flags()
	flags.StringVar(&request.Name, "name", "", "node name")
	flags.StringVar(&request.Description, "description", "", "description")
	flags.IntVar(&request.LocationID, "location", 0, "location ID")
	flags.BoolVar(&request.Public, "public", true, "allow automatic deployment")
	flags.StringVar(&request.FQDN, "fqdn", "", "fully qualified domain name or IP")
	flags.StringVar(&request.Scheme, "scheme", "https", "http or https")
	flags.BoolVar(&request.BehindProxy, "behind-proxy", false, "node is behind a TLS terminating proxy")
	flags.BoolVar(&request.MaintenanceMode, "maintenance", false, "maintenance mode")
	flags.Int64Var(&request.Memory, "memory", 0, "total memory in MiB")
	flags.Int64Var(&request.MemoryOverallocate, "memory-overallocate", 0, "memory overallocation in percent, -1 disables checks")
	flags.Int64Var(&request.Disk, "disk", 0, "total disk in MiB")
	flags.Int64Var(&request.DiskOverallocate, "disk-overallocate", 0, "disk overallocation in percent, -1 disables checks")
	flags.Int64Var(&request.UploadSize, "upload-size", 100, "maximum upload size in MiB")
	flags.IntVar(&request.DaemonListen, "daemon-listen", 8080, "Wings API port")
	flags.IntVar(&request.DaemonSFTP, "daemon-sftp", 2022, "Wings SFTP port")
	flags.StringVar(&request.DaemonBase, "daemon-base", "", "server data directory")
}

func newNodesCreateCommand() *cobra.Command {
	var request ptero.NodeRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a node",
		Long:  "Register a node with the panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			node, err := client.Application().Nodes().Create(cmd.Context(), &request)
			if err != nil {
				return fmt.Errorf("failed to create node: %w", err)
			}

			printf(cmd, "Created node %s (%d)\n", node.Name, node.ID)

			return renderNode(cmd, node)
		},
	}

	registerNodeFlags(cmd, &request)

	return cmd
}

func newNodesUpdateCommand() *cobra.Command {
	var request ptero.NodeRequest

	cmd := &cobra.Command{
		Use:   "update NODE_ID",
		Short: "Update a node",
		Long:  "Update a node. Fields that are not given keep their current value",
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

			nodes := client.Application().Nodes()

			current, err := nodes.Get(cmd.Context(), id, nil)
			if err != nil {
				return fmt.Errorf("failed to get node: %w", err)
			}

			mergeNode(cmd, &request, current)

			node, err := nodes.Update(cmd.Context(), id, &request)
			if err != nil {
				return fmt.Errorf("failed to update node: %w", err)
			}

			return renderNode(cmd, node)
		},
	}

	registerNodeFlags(cmd, &request)

	return cmd
}

// mergeNode fills the node flags that were not given from the current node.
func mergeNode(cmd *cobra.Command, request *ptero.NodeRequest, current *ptero.Node) {
	changed := cmd.Flags().Changed

	merge := func(flag string, apply func()) {
		if !changed(flag) {
			apply()
		}
	}

	merge("name", func() { request.Name = current.Name })
	merge("description", func() { request.Description = current.Description })
	merge("location", func() { request.LocationID = current.LocationID })
	merge("public", func() { request.Public = current.Public })
	merge("fqdn", func() { request.FQDN = current.FQDN })
	merge("scheme", func() { request.Scheme = current.Scheme })
	merge("behind-proxy", func() { request.BehindProxy = current.BehindProxy })
	merge("maintenance", func() { request.MaintenanceMode = current.MaintenanceMode })
	merge("memory", func() { request.Memory = current.Memory })
	merge("memory-overallocate", func() { request.MemoryOverallocate = current.MemoryOverallocate })
	merge("disk", func() { request.Disk = current.Disk })
	merge("disk-overallocate", func() { request.DiskOverallocate = current.DiskOverallocate })
	merge("upload-size", func() { request.UploadSize = current.UploadSize })
	merge("daemon-listen", func() { request.DaemonListen = current.DaemonListen })
	merge("daemon-sftp", func() { request.DaemonSFTP = current.DaemonSFTP })
	merge("daemon-base", func() { request.DaemonBase = current.DaemonBase })
}

func newNodesDeleteCommand() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "delete NODE_ID",
		Short: "Delete a node",
		Long:  "Delete a node. The panel refuses nodes that still host servers",
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

			err = client.Application().Nodes().Delete(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to delete node: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted node %d\n", id)

			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm deletion")

	return cmd
}
