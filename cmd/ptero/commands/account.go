package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/spf13/cobra"
)

// NewAccountCommand creates the account command group
func NewAccountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage your account",
		Long:  "Show the account owning the client key and manage its API keys and two-factor authentication",
	}

	cmd.AddCommand(newAccountShowCommand())
	cmd.AddCommand(newAccountAPIKeysCommand())
	cmd.AddCommand(newAccountCreateAPIKeyCommand())
	cmd.AddCommand(newAccountDeleteAPIKeyCommand())
	cmd.AddCommand(newAccountTwoFactorCommand())

	return cmd
}

func newAccountShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show account details",
		Long:  "Display the account owning the client key",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			account, err := withRetry(cmd.Context(), client.ClientAPI().Account().Get)
			if err != nil {
				return fmt.Errorf("failed to get account: %w", err)
			}

			return render(cmd, account, func(table *Table) {
				table.Header("Property", "Value")
				table.Row("ID", account.ID)
				table.Row("Username", account.Username)
				table.Row("Email", account.Email)
				table.Row("Name", account.FullName())
				table.Row("Language", account.Language)
				table.Row("Admin", formatBool(account.Admin))
			})
		},
	}
}

func newAccountAPIKeysCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "api-keys",
		Short: "List API keys",
		Long:  "List the client API keys of the account",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			keys, err := withRetry(cmd.Context(), client.ClientAPI().Account().ListAPIKeys)
			if err != nil {
				return fmt.Errorf("failed to list API keys: %w", err)
			}

			return renderList(cmd, keys, nil, "API keys", func(table *Table) {
				table.Header("Identifier", "Description", "Allowed IPs", "Last Used", "Created")

				for _, key := range keys {
					table.Row(key.Identifier, truncate(key.Description), strings.Join(key.AllowedIPs, ", "),
						formatTime(formatOptional(key.LastUsedAt)), formatTime(key.CreatedAt))
				}
			})
		},
	}
}

func newAccountCreateAPIKeyCommand() *cobra.Command {
	var request ptero.CreateAPIKeyRequest

	cmd := &cobra.Command{
		Use:   "create-api-key DESCRIPTION",
		Short: "Create an API key",
		Long:  "Create a client API key. The token is printed once and cannot be shown again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request.Description = args[0]

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			key, err := client.ClientAPI().Account().CreateAPIKey(cmd.Context(), &request)
			if err != nil {
				return fmt.Errorf("failed to create API key: %w", err)
			}

			return render(cmd, key, func(table *Table) {
				table.Header("Property", "Value")
				table.Row("Identifier", key.Identifier)
				table.Row("Description", key.Description)
				table.Row("Allowed IPs", strings.Join(key.AllowedIPs, ", "))
				table.Row("Token", key.Token())
			})
		},
	}

	cmd.Flags().StringSliceVar(&request.AllowedIPs, "allowed-ip", nil, "IP addresses or CIDR ranges allowed to use the key")

	return cmd
}

func newAccountDeleteAPIKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-api-key IDENTIFIER",
		Short: "Delete an API key",
		Long:  "Revoke a client API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			err = client.ClientAPI().Account().DeleteAPIKey(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to delete API key: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted API key %s\n", args[0])

			return nil
		},
	}
}

func newAccountTwoFactorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "two-factor",
		Short: "Manage two-factor authentication",
		Long:  "Show the TOTP enrolment secret, then enable with a code or disable with your password",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "setup",
		Short: "Show the TOTP secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			setup, err := withRetry(cmd.Context(), client.ClientAPI().Account().GetTwoFactorSetup)
			if err != nil {
				return fmt.Errorf("failed to get two-factor setup: %w", err)
			}

			return render(cmd, setup, func(table *Table) {
				table.Header("Property", "Value")
				table.Row("Secret", setup.Secret)
				table.Row("QR Code URL", setup.ImageURLData)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "enable CODE",
		Short: "Enable two-factor authentication",
		Long:  "Enable two-factor authentication with a code from your authenticator and print the recovery tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateTwoFactor(cmd, &ptero.TwoFactorRequest{Code: args[0]})
		},
	})

	var password string

	disable := &cobra.Command{
		Use:   "disable",
		Short: "Disable two-factor authentication",
		Long:  "Disable two-factor authentication. The password is prompted for when --password is not given",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error

				password, err = readSecret(cmd.InOrStdin(), cmd.OutOrStdout(), "Password: ")
				if err != nil {
					return err
				}
			}

			return updateTwoFactor(cmd, &ptero.TwoFactorRequest{Password: password})
		},
	}
	disable.Flags().StringVar(&password, "password", "", "account password")
	cmd.AddCommand(disable)

	return cmd
}

func updateTwoFactor(cmd *cobra.Command, request *ptero.TwoFactorRequest) error {
	client, err := createClient(cmd)
	if err != nil {
		return err
	}

	tokens, err := withRetry(cmd.Context(), func(ctx context.Context) ([]string, error) {
		return client.ClientAPI().Account().UpdateTwoFactor(ctx, request)
	})
	if err != nil {
		return fmt.Errorf("failed to update two-factor authentication: %w", err)
	}

	if !request.Enables() {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Two-factor authentication disabled")

		return nil
	}

	return render(cmd, ptero.RecoveryTokens{Tokens: tokens}, func(table *Table) {
		table.Header("Recovery Tokens")

		for _, token := range tokens {
			table.Row(token)
		}
	})
}
