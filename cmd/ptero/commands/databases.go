package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/spf13/cobra"
)

// NewDatabasesCommand creates the databases command group
func NewDatabasesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "databases",
		Aliases: []string{"database", "db"},
		Short:   "Manage server databases",
		Long:    "List, create, rotate and delete the databases of a server",
	}

	cmd.AddCommand(newDatabasesListCommand())
	cmd.AddCommand(newDatabasesCreateCommand())
	cmd.AddCommand(newDatabasesRotatePasswordCommand())
	cmd.AddCommand(newDatabasesDeleteCommand())

	return cmd
}

func newDatabasesListCommand() *cobra.Command {
	var showPasswords bool

	cmd := &cobra.Command{
		Use:   "list SERVER",
		Short: "List databases",
		Long:  "List the databases of a server; --show-passwords includes their passwords",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			var opts *ptero.GetOptions
			if showPasswords {
				opts = &ptero.GetOptions{Include: []string{"password"}}
			}

			databases, err := withRetry(cmd.Context(), func(ctx context.Context) ([]ptero.Database, error) {
				return client.ClientAPI().Databases().List(ctx, args[0], opts)
			})
			if err != nil {
				return fmt.Errorf("failed to list databases: %w", err)
			}

			return renderList(cmd, databases, nil, "databases", func(table *Table) {
				header := []any{"ID", "Name", "Username", "Host", "Connections From", "Max Connections"}
				if showPasswords {
					header = append(header, "Password")
				}

				table.Header(header...)

				for _, database := range databases {
					row := []any{database.ID, database.Name, database.Username,
						fmt.Sprintf("%s:%d", database.Host.Address, database.Host.Port),
						database.ConnectionsFrom, database.MaxConnections}

					if showPasswords {
						password, _ := database.Password()
						row = append(row, password)
					}

					table.Row(row...)
				}
			})
		},
	}

	cmd.Flags().BoolVar(&showPasswords, "show-passwords", false, "include database passwords")

	return cmd
}

func renderDatabase(cmd *cobra.Command, database *ptero.Database) error {
	password, _ := database.Password()

	return render(cmd, database, func(table *Table) {
		table.Header("Property", "Value")
		table.Row("ID", database.ID)
		table.Row("Name", database.Name)
		table.Row("Username", database.Username)
		table.Row("Password", password)
		table.Row("Host", fmt.Sprintf("%s:%d", database.Host.Address, database.Host.Port))
		table.Row("Connections From", database.ConnectionsFrom)
	})
}

func newDatabasesCreateCommand() *cobra.Command {
	var request ptero.CreateDatabaseRequest

	cmd := &cobra.Command{
		Use:   "create SERVER NAME",
		Short: "Create a database",
		Long:  "Create a database; the password is printed once",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			request.Database = args[1]

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			database, err := client.ClientAPI().Databases().Create(cmd.Context(), args[0], &request)
			if err != nil {
				return fmt.Errorf("failed to create database: %w", err)
			}

			return renderDatabase(cmd, database)
		},
	}

	cmd.Flags().StringVar(&request.Remote, "remote", "%", "hosts allowed to connect")

	return cmd
}

func newDatabasesRotatePasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rotate-password SERVER DATABASE_ID",
		Short: "Rotate a database password",
		Long:  "Generate a new password for a database and print it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			database, err := client.ClientAPI().Databases().RotatePassword(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to rotate database password: %w", err)
			}

			return renderDatabase(cmd, database)
		},
	}
}

func newDatabasesDeleteCommand() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "delete SERVER DATABASE_ID",
		Short: "Delete a database",
		Long:  "Drop a database and its user",
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

			err = client.ClientAPI().Databases().Delete(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to delete database: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted database %s\n", args[1])

			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm deletion")

	return cmd
}
