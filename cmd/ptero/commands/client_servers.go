package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/fivetwenty-io/ptero/internal/constants"
	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/spf13/cobra"
)

// NewClientServersCommand creates the client-servers command group
func NewClientServersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "client-servers",
		Aliases: []string{"cs"},
		Short:   "Operate your servers",
		Long:    "List and operate servers through the Client API. Servers are named by UUID or short identifier",
	}

	cmd.AddCommand(newClientServersListCommand())
	cmd.AddCommand(newClientServersShowCommand())
	cmd.AddCommand(newClientServersResourcesCommand())
	cmd.AddCommand(newClientServersWebSocketCommand())
	cmd.AddCommand(newClientServersCommandCommand())
	cmd.AddCommand(newClientServersPowerCommand())

	return cmd
}

func parseAccessType(value string) (ptero.ClientServerType, error) {
	access := ptero.ClientServerType(value)

	switch access {
	case ptero.ClientServersOwned, ptero.ClientServersAdmin, ptero.ClientServersAdminAll, ptero.ClientServersOwner:
		return access, nil
	default:
		return "", fmt.Errorf("%w: %q", constants.ErrInvalidAccessType, value)
	}
}

func newClientServersListCommand() *cobra.Command {
	var (
		flags      listFlags
		accessType string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List servers",
		Long:  "List the servers you can access. --type admin or admin-all lists servers you do not own (admins only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			access, err := parseAccessType(accessType)
			if err != nil {
				return err
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			servers := client.ClientAPI().Servers()

			result, err := fetchList(cmd.Context(), &flags,
				func(ctx context.Context, opts *ptero.ListOptions) (*ptero.ListResponse[ptero.ClientServer], error) {
					return servers.List(ctx, access, opts)
				},
				func(opts *ptero.ListOptions) *ptero.Cursor[ptero.ClientServer] {
					return servers.Cursor(access, opts)
				})
			if err != nil {
				return fmt.Errorf("failed to list servers: %w", err)
			}

			return renderList(cmd, result.items, result.pagination, "servers", func(table *Table) {
				table.Header("Identifier", "Name", "Node", "Owner", "Status", "Memory", "Disk")

				for _, server := range result.items {
					table.Row(server.Identifier, server.Name, server.Node, formatBool(server.ServerOwner),
						clientServerStatus(&server), formatMiB(server.Limits.Memory), formatMiB(server.Limits.Disk))
				}
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&accessType, "type", "", "access type: admin, admin-all or owner")

	return cmd
}

func clientServerStatus(server *ptero.ClientServer) string {
	switch {
	case server.IsSuspended:
		return ptero.ServerStatusSuspended
	case server.IsInstalling:
		return ptero.ServerStatusInstalling
	case server.IsTransferring:
		return "transferring"
	case server.Status != nil && *server.Status != "":
		return *server.Status
	default:
		return "ready"
	}
}

func newClientServersShowCommand() *cobra.Command {
	var include []string

	cmd := &cobra.Command{
		Use:   "show SERVER",
		Short: "Show server details",
		Long:  "Display a server as seen by the Client API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			server, err := withRetry(cmd.Context(), func(ctx context.Context) (*ptero.ClientServer, error) {
				return client.ClientAPI().Servers().Get(ctx, args[0], getOptions(include))
			})
			if err != nil {
				return fmt.Errorf("failed to get server: %w", err)
			}

			return render(cmd, server, func(table *Table) {
				table.Header("Property", "Value")
				table.Row("Identifier", server.Identifier)
				table.Row("UUID", server.UUID)
				table.Row("Name", server.Name)
				table.Row("Description", truncate(server.Description))
				table.Row("Node", server.Node)
				table.Row("Status", clientServerStatus(server))
				table.Row("SFTP", fmt.Sprintf("%s:%d", server.SFTPDetails.IP, server.SFTPDetails.Port))
				table.Row("Image", server.DockerImage)
				table.Row("Invocation", truncate(server.Invocation))
				table.Row("Memory", formatMiB(server.Limits.Memory))
				table.Row("Disk", formatMiB(server.Limits.Disk))

				if allocations, err := server.Allocations(); err == nil {
					for _, allocation := range allocations {
						table.Row("Allocation", fmt.Sprintf("%s:%d", allocation.IP, allocation.Port))
					}
				}
			})
		},
	}

	cmd.Flags().StringSliceVar(&include, "include", nil, "relations to include (egg, subusers)")

	return cmd
}

func newClientServersResourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resources SERVER",
		Short: "Show resource usage",
		Long:  "Display the live CPU, memory, disk and network usage of a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			resources, err := withRetry(cmd.Context(), func(ctx context.Context) (*ptero.ServerResources, error) {
				return client.ClientAPI().Servers().Resources(ctx, args[0])
			})
			if err != nil {
				return fmt.Errorf("failed to get resources: %w", err)
			}

			usage := resources.Resources

			return render(cmd, resources, func(table *Table) {
				table.Header("Property", "Value")
				table.Row("State", resources.CurrentState)
				table.Row("Suspended", formatBool(resources.IsSuspended))
				table.Row("CPU", fmt.Sprintf("%.2f%%", usage.CPUAbsolute))
				table.Row("Memory", formatBytes(usage.MemoryBytes))
				table.Row("Disk", formatBytes(usage.DiskBytes))
				table.Row("Network In", formatBytes(usage.NetworkRxBytes))
				table.Row("Network Out", formatBytes(usage.NetworkTxBytes))
				table.Row("Uptime", (time.Duration(usage.Uptime) * time.Millisecond).String())
			})
		},
	}
}

func newClientServersWebSocketCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "websocket SERVER",
		Short: "Print console credentials",
		Long:  "Print the Wings websocket URL and its short-lived token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			creds, err := withRetry(cmd.Context(), func(ctx context.Context) (*ptero.WebSocketCredentials, error) {
				return client.ClientAPI().Servers().WebSocket(ctx, args[0])
			})
			if err != nil {
				return fmt.Errorf("failed to get websocket credentials: %w", err)
			}

			expires := "unknown"
			if expiry, err := creds.ExpiresAt(); err == nil {
				expires = expiry.UTC().Format(time.RFC3339)
			}

			return render(cmd, creds, func(table *Table) {
				table.Header("Property", "Value")
				table.Row("Socket", creds.Socket)
				table.Row("Token", creds.Token)
				table.Row("Expires", expires)
			})
		},
	}
}

func newClientServersCommandCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "command SERVER COMMAND...",
		Short: "Send a console command",
		Long:  "Send a command to the console of a running server",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			command := strings.Join(args[1:], " ")

			err = do(cmd.Context(), func(ctx context.Context) error {
				return client.ClientAPI().Servers().SendCommand(ctx, args[0], command)
			})
			if err != nil {
				return fmt.Errorf("failed to send command: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Sent %q to %s\n", command, args[0])

			return nil
		},
	}
}

func newClientServersPowerCommand() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "power SIGNAL SERVER...",
		Short: "Change power state",
		Long:  "Send start, stop, restart or kill to one or more servers concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			signal := ptero.PowerSignal(args[0])
			if !slices.Contains(ptero.PowerSignals(), signal) {
				return fmt.Errorf("%w: %q", constants.ErrInvalidPowerSignal, args[0])
			}

			identifiers := args[1:]
			if len(identifiers) == 0 {
				return constants.ErrNoServersGiven
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			servers := client.ClientAPI().Servers()
			builder := ptero.NewBatchBuilder()

			for _, identifier := range identifiers {
				builder.AddOperation(ptero.BatchOperation{
					ID: identifier,
					Run: func(ctx context.Context) (interface{}, error) {
						return nil, do(ctx, func(ctx context.Context) error {
							return servers.SetPowerState(ctx, identifier, signal)
						})
					},
				})
			}

			results, err := ptero.NewBatchExecutor(concurrency).Execute(cmd.Context(), builder.Build())

			for _, result := range results {
				if result.Success {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Sent %s to %s\n", signal, result.ID)
				}
			}

			if err != nil {
				return fmt.Errorf("failed to send %s: %w", signal, err)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", constants.DefaultConcurrencyLimit, "servers signalled at once")

	return cmd
}
