package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/ptero/internal/constants"
	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
)

// NewServersCommand creates the servers command group
func NewServersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "servers",
		Aliases: []string{"server"},
		Short:   "Manage servers",
		Long:    "List, create and administer servers through the Application API",
	}

	cmd.AddCommand(newServersListCommand())
	cmd.AddCommand(newServersGetCommand())
	cmd.AddCommand(newServersCreateCommand())
	cmd.AddCommand(newServersUpdateDetailsCommand())
	cmd.AddCommand(newServersUpdateBuildCommand())
	cmd.AddCommand(newServersUpdateStartupCommand())
	cmd.AddCommand(newServersSuspendCommand(true))
	cmd.AddCommand(newServersSuspendCommand(false))
	cmd.AddCommand(newServersReinstallCommand())
	cmd.AddCommand(newServersDeleteCommand())

	return cmd
}

func newServersListCommand() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List servers",
		Long:  "List every server on the panel. Filters: name, uuid, uuidShort, external_id, image",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			servers := client.Application().Servers()

			result, err := fetchList(cmd.Context(), &flags, servers.List, servers.Cursor)
			if err != nil {
				return fmt.Errorf("failed to list servers: %w", err)
			}

			return renderList(cmd, result.items, result.pagination, "servers", func(table *Table) {
				table.Header("ID", "Identifier", "Name", "Status", "Owner", "Node", "Memory", "Disk")

				for _, server := range result.items {
					table.Row(server.ID, server.Identifier, server.Name, server.StatusString(),
						server.User, server.Node, formatMiB(server.Limits.Memory), formatMiB(server.Limits.Disk))
				}
			})
		},
	}

	flags.register(cmd)

	return cmd
}

func newServersGetCommand() *cobra.Command {
	var (
		external bool
		include  []string
	)

	cmd := &cobra.Command{
		Use:   "get SERVER_ID",
		Short: "Get server details",
		Long:  "Display a server by ID, or by external ID with --external",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			servers := client.Application().Servers()
			ctx := cmd.Context()

			var server *ptero.Server

			if external {
				server, err = withRetry(ctx, func(ctx context.Context) (*ptero.Server, error) {
					return servers.GetByExternalID(ctx, args[0], getOptions(include))
				})
			} else {
				id, parseErr := parseID(args[0])
				if parseErr != nil {
					return parseErr
				}

				server, err = withRetry(ctx, func(ctx context.Context) (*ptero.Server, error) {
					return servers.Get(ctx, id, getOptions(include))
				})
			}

			if err != nil {
				return fmt.Errorf("failed to get server: %w", err)
			}

			return renderServer(cmd, server)
		},
	}

	cmd.Flags().BoolVar(&external, "external", false, "treat the argument as an external ID")
	cmd.Flags().StringSliceVar(&include, "include", nil,
		"relations to include (allocations, user, subusers, nest, egg, variables, location, node, databases)")

	return cmd
}

func renderServer(cmd *cobra.Command, server *ptero.Server) error {
	return render(cmd, server, func(table *Table) {
		table.Header("Property", "Value")
		table.Row("ID", server.ID)
		table.Row("UUID", server.UUID)
		table.Row("Identifier", server.Identifier)
		table.Row("External ID", formatOptional(server.ExternalID))
		table.Row("Name", server.Name)
		table.Row("Description", truncate(server.Description))
		table.Row("Status", server.StatusString())
		table.Row("Suspended", formatBool(server.Suspended))
		table.Row("Owner", server.User)
		table.Row("Node", server.Node)
		table.Row("Allocation", server.Allocation)
		table.Row("Nest / Egg", fmt.Sprintf("%d / %d", server.Nest, server.Egg))
		table.Row("Image", server.Container.Image)
		table.Row("Startup", truncate(server.Container.StartupCommand))
		table.Row("Memory", formatMiB(server.Limits.Memory))
		table.Row("Disk", formatMiB(server.Limits.Disk))
		table.Row("CPU", fmt.Sprintf("%d%%", server.Limits.CPU))
		table.Row("Databases / Allocations / Backups", fmt.Sprintf("%d / %d / %d",
			server.FeatureLimits.Databases, server.FeatureLimits.Allocations, server.FeatureLimits.Backups))
		table.Row("Created", formatTime(server.CreatedAt))

		if owner, err := server.Owner(); err == nil && owner != nil {
			table.Row("Owner Username", owner.Username)
		}

		if node, err := server.NodeRelation(); err == nil && node != nil {
			table.Row("Node Name", node.Name)
		}

		if allocations, err := server.Allocations(); err == nil {
			for _, allocation := range allocations {
				table.Row("Allocation", fmt.Sprintf("%s:%d", allocation.IP, allocation.Port))
			}
		}
	})
}

func newServersCreateCommand() *cobra.Command {
	var (
		request     ptero.CreateServerRequest
		environment []string
		allocation  int
		additional  []int
		locations   []int
		dedicatedIP bool
		portRange   []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a server",
		Long:  "Create a server on an allocation, or let the panel deploy it with --deploy-location",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := parseEnvironment(environment)
			if err != nil {
				return err
			}

			request.Environment = env

			if allocation > 0 {
				request.Allocation = &ptero.AllocationSpec{Default: allocation, Additional: additional}
			}

			if len(locations) > 0 {
				request.Deploy = &ptero.DeploySpec{Locations: locations, DedicatedIP: dedicatedIP, PortRange: portRange}
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			server, err := client.Application().Servers().Create(cmd.Context(), &request)
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}

			printf(cmd, "Created server %s (%d)\n", server.Name, server.ID)

			return renderServer(cmd, server)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&request.Name, "name", "", "server name")
	flags.StringVar(&request.Description, "description", "", "server description")
	flags.StringVar(&request.ExternalID, "external-id", "", "external ID")
	flags.IntVar(&request.User, "user", 0, "owner user ID")
	flags.IntVar(&request.Egg, "egg", 0, "egg ID")
	flags.StringVar(&request.DockerImage, "image", "", "docker image")
	flags.StringVar(&request.Startup, "startup", "", "startup command")
	flags.StringArrayVar(&environment, "env", nil, "environment variable as KEY=VALUE (repeatable)")
	flags.Int64Var(&request.Limits.Memory, "memory", 0, "memory in MiB, 0 for unlimited")
	flags.Int64Var(&request.Limits.Swap, "swap", 0, "swap in MiB, -1 for unlimited")
	flags.Int64Var(&request.Limits.Disk, "disk", 0, "disk in MiB, 0 for unlimited")
	flags.Int64Var(&request.Limits.IO, "io", 500, "block IO weight (10-1000)")
	flags.Int64Var(&request.Limits.CPU, "cpu", 0, "CPU limit in percent, 0 for unlimited")
	flags.IntVar(&request.FeatureLimits.Databases, "databases", 0, "database limit")
	flags.IntVar(&request.FeatureLimits.Allocations, "allocations", 0, "allocation limit")
	flags.IntVar(&request.FeatureLimits.Backups, "backups", 0, "backup limit")
	flags.IntVar(&allocation, "allocation", 0, "default allocation ID")
	flags.IntSliceVar(&additional, "additional-allocation", nil, "additional allocation IDs")
	flags.IntSliceVar(&locations, "deploy-location", nil, "deploy to a node in these location IDs")
	flags.BoolVar(&dedicatedIP, "dedicated-ip", false, "deploy on a dedicated IP")
	flags.StringSliceVar(&portRange, "port-range", nil, "deploy on ports in these ranges")
	flags.BoolVar(&request.StartOnCompletion, "start", false, "start the server once installed")
	flags.BoolVar(&request.SkipScripts, "skip-scripts", false, "skip the egg install script")

	return cmd
}

func newServersUpdateDetailsCommand() *cobra.Command {
	var (
		request     ptero.UpdateServerDetailsRequest
		externalID  string
		description string
	)

	cmd := &cobra.Command{
		Use:   "update-details SERVER_ID",
		Short: "Update server details",
		Long:  "Change the name, owner, external ID or description. Fields that are not given keep their current value",
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

			servers := client.Application().Servers()

			current, err := servers.Get(cmd.Context(), id, nil)
			if err != nil {
				return fmt.Errorf("failed to get server: %w", err)
			}

			changed := cmd.Flags().Changed

			if !changed("name") {
				request.Name = current.Name
			}

			if !changed("user") {
				request.User = current.User
			}

			request.ExternalID = current.ExternalID
			if changed("external-id") {
				request.ExternalID = &externalID
			}

			request.Description = &current.Description
			if changed("description") {
				request.Description = &description
			}

			server, err := servers.UpdateDetails(cmd.Context(), id, &request)
			if err != nil {
				return fmt.Errorf("failed to update server details: %w", err)
			}

			return renderServer(cmd, server)
		},
	}

	cmd.Flags().StringVar(&request.Name, "name", "", "server name")
	cmd.Flags().IntVar(&request.User, "user", 0, "owner user ID")
	cmd.Flags().StringVar(&externalID, "external-id", "", "external ID")
	cmd.Flags().StringVar(&description, "description", "", "description")

	return cmd
}

func newServersUpdateBuildCommand() *cobra.Command {
	var request ptero.UpdateServerBuildRequest

	cmd := &cobra.Command{
		Use:   "update-build SERVER_ID",
		Short: "Update server build",
		Long:  "Replace the resource limits and allocations of a server. Limits that are not given keep their current value",
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

			servers := client.Application().Servers()

			current, err := servers.Get(cmd.Context(), id, nil)
			if err != nil {
				return fmt.Errorf("failed to get server: %w", err)
			}

			mergeBuild(cmd, &request, current)

			server, err := servers.UpdateBuild(cmd.Context(), id, &request)
			if err != nil {
				return fmt.Errorf("failed to update server build: %w", err)
			}

			return renderServer(cmd, server)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&request.Allocation, "allocation", 0, "default allocation ID")
	flags.Int64Var(&request.Memory, "memory", 0, "memory in MiB")
	flags.Int64Var(&request.Swap, "swap", 0, "swap in MiB")
	flags.Int64Var(&request.Disk, "disk", 0, "disk in MiB")
	flags.Int64Var(&request.IO, "io", 0, "block IO weight")
	flags.Int64Var(&request.CPU, "cpu", 0, "CPU limit in percent")
	flags.IntVar(&request.FeatureLimits.Databases, "databases", 0, "database limit")
	flags.IntVar(&request.FeatureLimits.Allocations, "allocations", 0, "allocation limit")
	flags.IntVar(&request.FeatureLimits.Backups, "backups", 0, "backup limit")
	flags.IntSliceVar(&request.AddAllocations, "add-allocation", nil, "allocation IDs to add")
	flags.IntSliceVar(&request.RemoveAllocations, "remove-allocation", nil, "allocation IDs to remove")

	return cmd
}

// mergeBuild fills the build flags that were not given from the current
// server.
func mergeBuild(cmd *cobra.Command, request *ptero.UpdateServerBuildRequest, current *ptero.Server) {
	changed := cmd.Flags().Changed

	if !changed("allocation") {
		request.Allocation = current.Allocation
	}

	if !changed("memory") {
		request.Memory = current.Limits.Memory
	}

	if !changed("swap") {
		request.Swap = current.Limits.Swap
	}

	if !changed("disk") {
		request.Disk = current.Limits.Disk
	}

	if !changed("io") {
		request.IO = current.Limits.IO
	}

	if !changed("cpu") {
		request.CPU = current.Limits.CPU
	}

	if !changed("databases") {
		request.FeatureLimits.Databases = current.FeatureLimits.Databases
	}

	if !changed("allocations") {
		request.FeatureLimits.Allocations = current.FeatureLimits.Allocations
	}

	if !changed("backups") {
		request.FeatureLimits.Backups = current.FeatureLimits.Backups
	}

	request.Threads = current.Limits.Threads
	request.OOMDisabled = current.Limits.OOMDisabled
}

func newServersUpdateStartupCommand() *cobra.Command {
	var (
		request     ptero.UpdateServerStartupRequest
		environment []string
	)

	cmd := &cobra.Command{
		Use:   "update-startup SERVER_ID",
		Short: "Update server startup",
		Long: "Change the startup command, egg, image or environment. The environment is sent as given; " +
			"variables that are not given are not carried over",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			request.Environment, err = parseEnvironment(environment)
			if err != nil {
				return err
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			server, err := client.Application().Servers().UpdateStartup(cmd.Context(), id, &request)
			if err != nil {
				return fmt.Errorf("failed to update server startup: %w", err)
			}

			return renderServer(cmd, server)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&request.Startup, "startup", "", "startup command")
	flags.IntVar(&request.Egg, "egg", 0, "egg ID")
	flags.StringVar(&request.Image, "image", "", "docker image")
	flags.StringArrayVar(&environment, "env", nil, "environment variable as KEY=VALUE (repeatable)")
	flags.BoolVar(&request.SkipScripts, "skip-scripts", false, "skip the egg install script")

	return cmd
}

func newServersSuspendCommand(suspend bool) *cobra.Command {
	verb, past := "suspend", "Suspended"
	if !suspend {
		verb, past = "unsuspend", "Unsuspended"
	}

	return &cobra.Command{
		Use:   verb + " SERVER_ID...",
		Short: fmt.Sprintf("%s servers", capitalize(verb)),
		Long:  fmt.Sprintf("%s one or more servers concurrently", capitalize(verb)),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int, 0, len(args))

			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}

				ids = append(ids, id)
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			builder := ptero.NewBatchBuilder()
			for _, id := range ids {
				builder.AddSuspend(client.Application().Servers(), id, suspend)
			}

			results, err := ptero.NewBatchExecutor(constants.DefaultConcurrencyLimit).Execute(cmd.Context(), builder.Build())
			for _, result := range results {
				if result.Success {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", past, result.ID)
				}
			}

			if err != nil {
				return fmt.Errorf("failed to %s servers: %w", verb, err)
			}

			return nil
		},
	}
}

func newServersReinstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reinstall SERVER_ID",
		Short: "Reinstall a server",
		Long:  "Run the egg install script of a server again",
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

			err = do(cmd.Context(), func(ctx context.Context) error {
				return client.Application().Servers().Reinstall(ctx, id)
			})
			if err != nil {
				return fmt.Errorf("failed to reinstall server: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Reinstalling server %d\n", id)

			return nil
		},
	}
}

func newServersDeleteCommand() *cobra.Command {
	var confirm, force bool

	cmd := &cobra.Command{
		Use:   "delete SERVER_ID...",
		Short: "Delete servers",
		Long:  "Delete one or more servers. --force deletes even when the node cannot be reached",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := confirmDeletion(confirm)
			if err != nil {
				return err
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			var merr *multierror.Error

			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					merr = multierror.Append(merr, err)

					continue
				}

				err = client.Application().Servers().Delete(cmd.Context(), id, force)
				if err != nil {
					merr = multierror.Append(merr, fmt.Errorf("server %d: %w", id, err))

					continue
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted server %d\n", id)
			}

			return merr.ErrorOrNil()
		},
	}

	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm deletion")
	cmd.Flags().BoolVar(&force, "force", false, "force deletion")

	return cmd
}
