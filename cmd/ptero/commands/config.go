package commands

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fivetwenty-io/ptero/internal/constants"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the persisted CLI configuration.
type Config struct {
	URL         string `json:"url,omitempty"          yaml:"url,omitempty"`
	Token       string `json:"token,omitempty"        yaml:"token,omitempty"`
	ClientToken string `json:"client_token,omitempty" yaml:"client_token,omitempty"`
	Output      string `json:"output,omitempty"       yaml:"output,omitempty"`
}

// configKeys are the keys accepted by config get/set/unset.
var configKeys = []string{"url", "token", "client_token", "output"}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the panel URL, API keys and output format stored in the config file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigGetCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration with API keys masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			config.Token = maskToken(config.Token)
			config.ClientToken = maskToken(config.ClientToken)

			return render(cmd, config, func(table *Table) {
				table.Header("Property", "Value")
				table.Row("URL", config.URL)
				table.Row("Token", config.Token)
				table.Row("Client Token", config.ClientToken)
				table.Row("Output", config.Output)
				table.Row("Config File", configFilePath())
			})
		},
	}
}

func newConfigGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Get a configuration value",
		Long:  "Print one configuration value (url, token, client_token, output)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := configValue(loadConfig(), args[0])
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), value)

			return nil
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set one configuration value (url, token, client_token, output) and save the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfig(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove one configuration value from the config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], "")
			if err != nil {
				return err
			}

			err = saveConfig(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return nil
		},
	}
}

// loadConfig reads the effective configuration: flags, then environment,
// then the config file.
func loadConfig() *Config {
	return &Config{
		URL:         viper.GetString("url"),
		Token:       viper.GetString("token"),
		ClientToken: viper.GetString("client_token"),
		Output:      viper.GetString("output"),
	}
}

func normalizeKey(key string) (string, error) {
	key = strings.ReplaceAll(strings.ToLower(key), "-", "_")
	if !slices.Contains(configKeys, key) {
		return "", fmt.Errorf("%w %q, expected one of %s", constants.ErrUnknownConfigKey, key, strings.Join(configKeys, ", "))
	}

	return key, nil
}

func configValue(config *Config, key string) (string, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return "", err
	}

	switch key {
	case "url":
		return config.URL, nil
	case "token":
		return config.Token, nil
	case "client_token":
		return config.ClientToken, nil
	default:
		return config.Output, nil
	}
}

func setConfigValue(config *Config, key, value string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}

	switch key {
	case "url":
		config.URL = value
	case "token":
		config.Token = value
	case "client_token":
		config.ClientToken = value
	default:
		if value != "" && value != constants.OutputTable && value != constants.OutputJSON && value != constants.OutputYAML {
			return constants.ErrInvalidOutput
		}

		config.Output = value
	}

	viper.Set(key, value)

	return nil
}

func configFilePath() string {
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		return configFile
	}

	configDir, err := defaultConfigDir()
	if err != nil {
		return "config.yml"
	}

	return filepath.Join(configDir, "config.yml")
}

// saveConfig writes config to the config file with owner-only permissions.
func saveConfig(config *Config) error {
	configFile := configFilePath()

	err := configFs.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	stored := *config
	if stored.Output == constants.OutputTable {
		stored.Output = ""
	}

	data, err := yaml.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = afero.WriteFile(configFs, configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func maskToken(token string) string {
	const visible = 9

	if len(token) <= visible {
		return strings.Repeat("*", len(token))
	}

	return token[:visible] + strings.Repeat("*", 8)
}
