package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/spf13/cobra"
)

// NewBackupsCommand creates the backups command group
func NewBackupsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "backups",
		Aliases: []string{"backup"},
		Short:   "Manage server backups",
		Long:    "List, create, download and delete the backups of a server",
	}

	cmd.AddCommand(newBackupsListCommand())
	cmd.AddCommand(newBackupsGetCommand())
	cmd.AddCommand(newBackupsCreateCommand())
	cmd.AddCommand(newBackupsDownloadCommand())
	cmd.AddCommand(newBackupsDeleteCommand())

	return cmd
}

func newBackupsListCommand() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list SERVER",
		Short: "List backups",
		Long:  "List the backups of a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			result, err := fetchList(cmd.Context(), &flags,
				func(ctx context.Context, opts *ptero.ListOptions) (*ptero.ListResponse[ptero.Backup], error) {
					return client.ClientAPI().Backups().List(ctx, args[0], opts)
				}, nil)
			if err != nil {
				return fmt.Errorf("failed to list backups: %w", err)
			}

			return renderList(cmd, result.items, result.pagination, "backups", func(table *Table) {
				table.Header("UUID", "Name", "Size", "Status", "Locked", "Created")

				for _, backup := range result.items {
					table.Row(backup.UUID, backup.Name, formatBytes(backup.Bytes), backupStatus(&backup),
						formatBool(backup.IsLocked), formatTime(backup.CreatedAt))
				}
			})
		},
	}

	flags.register(cmd)

	return cmd
}

func backupStatus(backup *ptero.Backup) string {
	switch {
	case backup.CompletedAt == nil:
		return "running"
	case backup.IsSuccessful:
		return "completed"
	default:
		return "failed"
	}
}

func renderBackup(cmd *cobra.Command, backup *ptero.Backup) error {
	return render(cmd, backup, func(table *Table) {
		table.Header("Property", "Value")
		table.Row("UUID", backup.UUID)
		table.Row("Name", backup.Name)
		table.Row("Status", backupStatus(backup))
		table.Row("Size", formatBytes(backup.Bytes))
		table.Row("Checksum", formatOptional(backup.Checksum))
		table.Row("Locked", formatBool(backup.IsLocked))
		table.Row("Ignored", strings.Join(backup.IgnoredFiles, ", "))
		table.Row("Created", formatTime(backup.CreatedAt))
		table.Row("Completed", formatTime(formatOptional(backup.CompletedAt)))
	})
}

func newBackupsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get SERVER BACKUP",
		Short: "Get backup details",
		Long:  "Display a backup",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			backup, err := withRetry(cmd.Context(), func(ctx context.Context) (*ptero.Backup, error) {
				return client.ClientAPI().Backups().Get(ctx, args[0], args[1])
			})
			if err != nil {
				return fmt.Errorf("failed to get backup: %w", err)
			}

			return renderBackup(cmd, backup)
		},
	}
}

func newBackupsCreateCommand() *cobra.Command {
	var (
		request ptero.CreateBackupRequest
		ignored []string
	)

	cmd := &cobra.Command{
		Use:   "create SERVER",
		Short: "Create a backup",
		Long:  "Start a backup. It runs in the background; check its status with backups get",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request.Ignored = strings.Join(ignored, "\n")

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			backup, err := client.ClientAPI().Backups().Create(cmd.Context(), args[0], &request)
			if err != nil {
				return fmt.Errorf("failed to create backup: %w", err)
			}

			return renderBackup(cmd, backup)
		},
	}

	cmd.Flags().StringVar(&request.Name, "name", "", "backup name")
	cmd.Flags().StringArrayVar(&ignored, "ignore", nil, "pattern to leave out (repeatable)")
	cmd.Flags().BoolVar(&request.IsLocked, "locked", false, "protect the backup from deletion")

	return cmd
}

func newBackupsDownloadCommand() *cobra.Command {
	var (
		output  string
		urlOnly bool
	)

	cmd := &cobra.Command{
		Use:   "download SERVER BACKUP",
		Short: "Download a backup",
		Long:  "Download a backup archive, or print its signed URL with --url",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			backups := client.ClientAPI().Backups()

			if urlOnly {
				url, err := backups.DownloadURL(cmd.Context(), args[0], args[1])
				if err != nil {
					return fmt.Errorf("failed to get backup download URL: %w", err)
				}

				_, _ = fmt.Fprintln(cmd.OutOrStdout(), url)

				return nil
			}

			destination := output
			if destination == "" {
				destination = args[1] + ".tar.gz"
			}

			written, err := backups.Download(cmd.Context(), args[0], args[1], downloadFs, destination)
			if err != nil {
				return fmt.Errorf("failed to download backup: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Downloaded backup %s to %s (%s)\n", args[1], destination, formatBytes(written))

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output-file", "O", "", "destination path, BACKUP.tar.gz by default")
	cmd.Flags().BoolVar(&urlOnly, "url", false, "print the signed URL instead of downloading")

	return cmd
}

func newBackupsDeleteCommand() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "delete SERVER BACKUP",
		Short: "Delete a backup",
		Long:  "Delete a backup. Locked backups must be unlocked in the panel first",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := confirmDeletion(confirm)
			if err != nil {
				return err
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			err = client.ClientAPI().Backups().Delete(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to delete backup: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted backup %s\n", args[1])

			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm deletion")

	return cmd
}
