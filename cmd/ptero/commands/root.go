// Package commands implements the ptero command line.
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fivetwenty-io/ptero/internal/constants"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configFs holds the configuration file. Tests swap it for a memory fs.
var configFs afero.Fs = afero.NewOsFs()

// NewRootCommand creates the ptero command with every subcommand attached.
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ptero",
		Short: "Pterodactyl panel CLI",
		Long: `A command-line interface for the Pterodactyl panel API.

Application API commands (users, servers, nodes, allocations, locations, nests,
eggs) need an application key (ptla_). Client API commands (account,
client-servers, databases, files, backups, console) need a client key (ptlc_).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.ptero/config.yml)")
	flags.StringP("url", "u", "", "panel URL")
	flags.StringP("token", "t", "", "application API key (ptla_...)")
	flags.String("client-token", "", "client API key (ptlc_...), defaults to --token")
	flags.StringP("output", "o", constants.OutputTable, "output format (table, json, yaml)")
	flags.BoolP("verbose", "v", false, "log HTTP requests to stderr")
	flags.Int("retry-rate-limited", 0, "retry rate limited requests up to N times with exponential backoff")
	flags.Int("requests-per-minute", 0, "send at most N requests per minute per API key (0 disables)")

	// Bind flags to viper
	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("url", flags.Lookup("url"))
	_ = viper.BindPFlag("token", flags.Lookup("token"))
	_ = viper.BindPFlag("client_token", flags.Lookup("client-token"))
	_ = viper.BindPFlag("output", flags.Lookup("output"))
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("retry_rate_limited", flags.Lookup("retry-rate-limited"))
	_ = viper.BindPFlag("requests_per_minute", flags.Lookup("requests-per-minute"))

	// Add commands
	rootCmd.AddCommand(NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(NewLoginCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewUsersCommand())
	rootCmd.AddCommand(NewServersCommand())
	rootCmd.AddCommand(NewNodesCommand())
	rootCmd.AddCommand(NewAllocationsCommand())
	rootCmd.AddCommand(NewLocationsCommand())
	rootCmd.AddCommand(NewNestsCommand())
	rootCmd.AddCommand(NewEggsCommand())
	rootCmd.AddCommand(NewAccountCommand())
	rootCmd.AddCommand(NewClientServersCommand())
	rootCmd.AddCommand(NewDatabasesCommand())
	rootCmd.AddCommand(NewFilesCommand())
	rootCmd.AddCommand(NewBackupsCommand())
	rootCmd.AddCommand(NewConsoleCommand())

	return rootCmd
}

func initConfig() error {
	viper.SetFs(configFs)

	cfgFile := viper.GetString("config")
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		configDir, err := defaultConfigDir()
		if err != nil {
			return err
		}

		// Search config in ~/.ptero/config.yml
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match
	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// A missing config file is fine
	if err := viper.ReadInConfig(); err == nil && viper.GetBool("verbose") {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	switch viper.GetString("output") {
	case constants.OutputTable, constants.OutputJSON, constants.OutputYAML:
		return nil
	default:
		return constants.ErrInvalidOutput
	}
}

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".ptero"), nil
}
