package commands

import (
	"context"
	"fmt"
	"path"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// downloadFs receives downloaded files.
var downloadFs afero.Fs = afero.NewOsFs()

// NewFilesCommand creates the files command group
func NewFilesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "files",
		Aliases: []string{"file"},
		Short:   "Browse server files",
		Long:    "List, print and download the files of a server",
	}

	cmd.AddCommand(newFilesListCommand())
	cmd.AddCommand(newFilesCatCommand())
	cmd.AddCommand(newFilesDownloadCommand())

	return cmd
}

func newFilesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list SERVER [DIRECTORY]",
		Short: "List a directory",
		Long:  "List a directory of a server, the root when none is given",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			directory := "/"
			if len(args) == 2 {
				directory = args[1]
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			files, err := withRetry(cmd.Context(), func(ctx context.Context) ([]ptero.FileObject, error) {
				return client.ClientAPI().Files().List(ctx, args[0], directory)
			})
			if err != nil {
				return fmt.Errorf("failed to list files: %w", err)
			}

			return renderList(cmd, files, nil, "files", func(table *Table) {
				table.Header("Mode", "Size", "Modified", "Name")

				for _, file := range files {
					name := file.Name
					if !file.IsFile {
						name += "/"
					}

					table.Row(file.Mode, formatBytes(file.Size), formatTime(file.ModifiedAt), name)
				}
			})
		},
	}
}

func newFilesCatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cat SERVER FILE",
		Short: "Print a file",
		Long:  "Print the contents of a server file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			contents, err := withRetry(cmd.Context(), func(ctx context.Context) ([]byte, error) {
				return client.ClientAPI().Files().Contents(ctx, args[0], args[1])
			})
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}

			_, err = cmd.OutOrStdout().Write(contents)

			return err
		},
	}
}

func newFilesDownloadCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download SERVER FILE",
		Short: "Download a file",
		Long:  "Download a server file through a signed URL. Existing files are not overwritten",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			destination := output
			if destination == "" {
				destination = path.Base(args[1])
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			written, err := client.ClientAPI().Files().Download(cmd.Context(), args[0], args[1], downloadFs, destination)
			if err != nil {
				return fmt.Errorf("failed to download file: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %s to %s (%s)\n", args[1], destination, formatBytes(written))

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output-file", "O", "", "destination path, the file name by default")

	return cmd
}
