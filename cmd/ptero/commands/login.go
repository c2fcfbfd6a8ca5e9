package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fivetwenty-io/ptero/internal/auth"
	"github.com/fivetwenty-io/ptero/internal/constants"
	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/fivetwenty-io/ptero/pkg/pteroclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Save a panel URL and API key",
		Long: "Verify an API key against the panel and save it. Application keys (ptla_) are checked " +
			"by listing users, client keys (ptlc_) by reading the account.",
		RunE: func(cmd *cobra.Command, args []string) error {
			panelURL := viper.GetString("url")
			if panelURL == "" {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), "Panel URL: ")

				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read panel URL: %w", err)
				}

				panelURL = strings.TrimSpace(line)
			}

			panelURL = pteroclient.NormalizeURL(panelURL)
			if panelURL == "" {
				return constants.ErrNoPanelConfigured
			}

			token := viper.GetString("token")
			if token == "" {
				var err error

				token, err = readSecret(cmd.InOrStdin(), cmd.OutOrStdout(), "API key: ")
				if err != nil {
					return err
				}
			}

			token = ptero.StripBearer(token)
			if token == "" {
				return constants.ErrEmptyToken
			}

			client, err := pteroclient.NewWithToken(panelURL, token)
			if err != nil {
				return err
			}

			who, err := verifyKey(cmd.Context(), client, token)
			if err != nil {
				return err
			}

			config := loadConfig()
			config.URL = panelURL

			if (&auth.Token{AccessToken: token}).KeyKind() == auth.KindClient {
				config.ClientToken = token
			} else {
				config.Token = token
			}

			err = saveConfig(config)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s as %s\n", panelURL, who)

			return nil
		},
	}
}

// verifyKey makes one cheap request with the key and describes its owner.
func verifyKey(ctx context.Context, client ptero.Client, token string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	switch (&auth.Token{AccessToken: token}).KeyKind() {
	case auth.KindApplication:
		_, err := client.Application().Users().List(ctx, &ptero.ListOptions{Page: 1, PerPage: 1})
		if err != nil {
			return "", fmt.Errorf("failed to verify application key: %w", err)
		}

		return "application key", nil
	case auth.KindClient:
		account, err := client.ClientAPI().Account().Get(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to verify client key: %w", err)
		}

		return account.Username, nil
	default:
		return "", constants.ErrUnknownKeyPrefix
	}
}

// readSecret prompts for a value without echo. It needs a terminal.
func readSecret(in io.Reader, out io.Writer, prompt string) (string, error) {
	file, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return "", constants.ErrNotATerminal
	}

	_, _ = fmt.Fprint(out, prompt)

	secret, err := term.ReadPassword(int(file.Fd()))
	_, _ = fmt.Fprintln(out)

	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}

	return string(secret), nil
}
