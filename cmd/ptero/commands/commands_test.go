package commands_test

import (
	"testing"

	"github.com/fivetwenty-io/ptero/cmd/ptero/commands"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewRootCommand("1.0.0", "abc", "today")
	assert.Equal(t, "ptero", root.Use)
	assert.True(t, root.SilenceUsage)

	for _, flag := range []string{"config", "url", "token", "client-token", "output", "verbose", "retry-rate-limited"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "Flag %s should exist", flag)
	}

	assert.Equal(t, "table", root.PersistentFlags().Lookup("output").DefValue)
	assert.Equal(t, "0", root.PersistentFlags().Lookup("retry-rate-limited").DefValue)

	assert.ElementsMatch(t, []string{
		"version", "login", "config", "users", "servers", "nodes", "allocations", "locations",
		"nests", "eggs", "account", "client-servers", "databases", "files", "backups", "console",
	}, subcommandNames(root))
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestCommandGroups(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		cmd         *cobra.Command
		use         string
		aliases     []string
		subcommands []string
	}{
		{
			name:        "users",
			cmd:         commands.NewUsersCommand(),
			use:         "users",
			aliases:     []string{"user"},
			subcommands: []string{"list", "get", "create", "update", "delete"},
		},
		{
			name:    "servers",
			cmd:     commands.NewServersCommand(),
			use:     "servers",
			aliases: []string{"server"},
			subcommands: []string{
				"list", "get", "create", "update-details", "update-build", "update-startup",
				"suspend", "unsuspend", "reinstall", "delete",
			},
		},
		{
			name:        "nodes",
			cmd:         commands.NewNodesCommand(),
			use:         "nodes",
			aliases:     []string{"node"},
			subcommands: []string{"list", "get", "configuration", "create", "update", "delete"},
		},
		{
			name:        "allocations",
			cmd:         commands.NewAllocationsCommand(),
			use:         "allocations",
			aliases:     []string{"allocation"},
			subcommands: []string{"list", "create", "delete"},
		},
		{
			name:        "locations",
			cmd:         commands.NewLocationsCommand(),
			use:         "locations",
			aliases:     []string{"location"},
			subcommands: []string{"list", "get", "create", "update", "delete"},
		},
		{
			name:        "nests",
			cmd:         commands.NewNestsCommand(),
			use:         "nests",
			aliases:     []string{"nest"},
			subcommands: []string{"list", "get"},
		},
		{
			name:        "eggs",
			cmd:         commands.NewEggsCommand(),
			use:         "eggs",
			aliases:     []string{"egg"},
			subcommands: []string{"list", "get"},
		},
		{
			name:        "account",
			cmd:         commands.NewAccountCommand(),
			use:         "account",
			subcommands: []string{"show", "api-keys", "create-api-key", "delete-api-key", "two-factor"},
		},
		{
			name:        "client-servers",
			cmd:         commands.NewClientServersCommand(),
			use:         "client-servers",
			aliases:     []string{"cs"},
			subcommands: []string{"list", "show", "resources", "websocket", "command", "power"},
		},
		{
			name:        "databases",
			cmd:         commands.NewDatabasesCommand(),
			use:         "databases",
			aliases:     []string{"database", "db"},
			subcommands: []string{"list", "create", "rotate-password", "delete"},
		},
		{
			name:        "files",
			cmd:         commands.NewFilesCommand(),
			use:         "files",
			aliases:     []string{"file"},
			subcommands: []string{"list", "cat", "download"},
		},
		{
			name:        "backups",
			cmd:         commands.NewBackupsCommand(),
			use:         "backups",
			aliases:     []string{"backup"},
			subcommands: []string{"list", "get", "create", "download", "delete"},
		},
		{
			name:        "config",
			cmd:         commands.NewConfigCommand(),
			use:         "config",
			subcommands: []string{"show", "get", "set", "unset"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short)
			assert.NotEmpty(t, tt.cmd.Long)

			if tt.aliases != nil {
				assert.Equal(t, tt.aliases, tt.cmd.Aliases)
			}

			assert.ElementsMatch(t, tt.subcommands, subcommandNames(tt.cmd))

			for _, sub := range tt.cmd.Commands() {
				assert.NotEmpty(t, sub.Short, "%s %s should have a short description", tt.name, sub.Name())

				if len(sub.Commands()) == 0 {
					assert.NotNil(t, sub.RunE, "%s %s should have RunE", tt.name, sub.Name())
				}
			}
		})
	}
}

func TestListCommandFlags(t *testing.T) {
	t.Parallel()

	for _, group := range []*cobra.Command{
		commands.NewUsersCommand(),
		commands.NewServersCommand(),
		commands.NewNodesCommand(),
		commands.NewAllocationsCommand(),
		commands.NewLocationsCommand(),
		commands.NewNestsCommand(),
		commands.NewEggsCommand(),
		commands.NewClientServersCommand(),
		commands.NewBackupsCommand(),
	} {
		cmd := findSubcommand(group, "list")
		require.NotNil(t, cmd, group.Name())

		for _, flag := range []string{"all", "page", "per-page", "filter", "sort", "include"} {
			assert.NotNil(t, cmd.Flags().Lookup(flag), "%s list should have --%s", group.Name(), flag)
		}

		assert.Equal(t, "false", cmd.Flags().Lookup("all").DefValue)
		assert.Equal(t, "50", cmd.Flags().Lookup("per-page").DefValue)
	}
}

func TestDeleteCommandsRequireConfirm(t *testing.T) {
	t.Parallel()

	for _, group := range []*cobra.Command{
		commands.NewUsersCommand(),
		commands.NewServersCommand(),
		commands.NewNodesCommand(),
		commands.NewAllocationsCommand(),
		commands.NewLocationsCommand(),
		commands.NewDatabasesCommand(),
		commands.NewBackupsCommand(),
	} {
		cmd := findSubcommand(group, "delete")
		require.NotNil(t, cmd, group.Name())

		confirm := cmd.Flags().Lookup("confirm")
		require.NotNil(t, confirm, "%s delete should have --confirm", group.Name())
		assert.Equal(t, "false", confirm.DefValue)
	}

	force := findSubcommand(commands.NewServersCommand(), "delete").Flags().Lookup("force")
	require.NotNil(t, force)
	assert.Equal(t, "false", force.DefValue)
}

func TestServersCreateCommand(t *testing.T) {
	t.Parallel()

	cmd := findSubcommand(commands.NewServersCommand(), "create")
	require.NotNil(t, cmd)
	assert.Equal(t, "create", cmd.Use)

	flags := []string{
		"name", "description", "external-id", "user", "egg", "image", "startup", "env",
		"memory", "swap", "disk", "io", "cpu", "databases", "allocations", "backups",
		"allocation", "additional-allocation", "deploy-location", "dedicated-ip", "port-range",
		"start", "skip-scripts",
	}

	for _, flagName := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flagName), "Flag %s should exist", flagName)
	}

	assert.Equal(t, "500", cmd.Flags().Lookup("io").DefValue)
}

func TestConsoleCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewConsoleCommand()
	assert.Equal(t, "console SERVER", cmd.Use)
	assert.NotNil(t, cmd.RunE)

	for _, flag := range []string{"command", "logs", "stats", "nats-url", "subject"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "Flag %s should exist", flag)
	}

	assert.Equal(t, "true", cmd.Flags().Lookup("logs").DefValue)
}

func TestAccountTwoFactorCommand(t *testing.T) {
	t.Parallel()

	cmd := findSubcommand(commands.NewAccountCommand(), "two-factor")
	require.NotNil(t, cmd)
	assert.ElementsMatch(t, []string{"setup", "enable", "disable"}, subcommandNames(cmd))
	assert.NotNil(t, findSubcommand(cmd, "disable").Flags().Lookup("password"))
}
