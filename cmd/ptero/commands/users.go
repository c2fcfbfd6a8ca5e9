package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/spf13/cobra"
)

// NewUsersCommand creates the users command group
func NewUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Manage users",
		Long:    "List and manage panel users through the Application API",
	}

	cmd.AddCommand(newUsersListCommand())
	cmd.AddCommand(newUsersGetCommand())
	cmd.AddCommand(newUsersCreateCommand())
	cmd.AddCommand(newUsersUpdateCommand())
	cmd.AddCommand(newUsersDeleteCommand())

	return cmd
}

func newUsersListCommand() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Long:  "List panel users. Filters: email, uuid, username, external_id",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			users := client.Application().Users()

			result, err := fetchList(cmd.Context(), &flags, users.List, users.Cursor)
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			return renderList(cmd, result.items, result.pagination, "users", func(table *Table) {
				table.Header("ID", "Username", "Email", "Name", "Admin", "2FA", "Created")

				for _, user := range result.items {
					table.Row(user.ID, user.Username, user.Email, user.FirstName+" "+user.LastName,
						formatBool(user.RootAdmin), formatBool(user.TwoFactor), formatTime(user.CreatedAt))
				}
			})
		},
	}

	flags.register(cmd)

	return cmd
}

func newUsersGetCommand() *cobra.Command {
	var (
		external bool
		include  []string
	)

	cmd := &cobra.Command{
		Use:   "get USER_ID",
		Short: "Get user details",
		Long:  "Display a user by ID, or by external ID with --external",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			users := client.Application().Users()
			ctx := cmd.Context()

			var user *ptero.User

			if external {
				user, err = withRetry(ctx, func(ctx context.Context) (*ptero.User, error) {
					return users.GetByExternalID(ctx, args[0], getOptions(include))
				})
			} else {
				id, parseErr := parseID(args[0])
				if parseErr != nil {
					return parseErr
				}

				user, err = withRetry(ctx, func(ctx context.Context) (*ptero.User, error) {
					return users.Get(ctx, id, getOptions(include))
				})
			}

			if err != nil {
				return fmt.Errorf("failed to get user: %w", err)
			}

			return renderUser(cmd, user)
		},
	}

	cmd.Flags().BoolVar(&external, "external", false, "treat the argument as an external ID")
	cmd.Flags().StringSliceVar(&include, "include", nil, "relations to include (servers)")

	return cmd
}

func renderUser(cmd *cobra.Command, user *ptero.User) error {
	return render(cmd, user, func(table *Table) {
		table.Header("Property", "Value")
		table.Row("ID", user.ID)
		table.Row("UUID", user.UUID)
		table.Row("External ID", formatOptional(user.ExternalID))
		table.Row("Username", user.Username)
		table.Row("Email", user.Email)
		table.Row("Name", user.FirstName+" "+user.LastName)
		table.Row("Language", user.Language)
		table.Row("Root Admin", formatBool(user.RootAdmin))
		table.Row("2FA", formatBool(user.TwoFactor))
		table.Row("Created", formatTime(user.CreatedAt))
		table.Row("Updated", formatTime(formatOptional(user.UpdatedAt)))

		if servers, err := user.Servers(); err == nil && len(servers) > 0 {
			for _, server := range servers {
				table.Row("Server", fmt.Sprintf("%s (%d)", server.Name, server.ID))
			}
		}
	})
}

type userFlags struct {
	request ptero.UserRequest
}

func (f *userFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.request.Email, "email", "", "email address")
	cmd.Flags().StringVar(&f.request.Username, "username", "", "username")
	cmd.Flags().StringVar(&f.request.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&f.request.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&f.request.Password, "password", "", "password, generated and emailed by the panel when empty")
	cmd.Flags().StringVar(&f.request.Language, "language", "", "two letter language code")
	cmd.Flags().StringVar(&f.request.ExternalID, "external-id", "", "external ID")
	cmd.Flags().BoolVar(&f.request.RootAdmin, "admin", false, "grant root admin")
}

// merge fills the flags that were not given from the current user.
func (f *userFlags) merge(cmd *cobra.Command, current *ptero.User) ptero.UserRequest {
	request := f.request
	changed := cmd.Flags().Changed

	if !changed("email") {
		request.Email = current.Email
	}

	if !changed("username") {
		request.Username = current.Username
	}

	if !changed("first-name") {
		request.FirstName = current.FirstName
	}

	if !changed("last-name") {
		request.LastName = current.LastName
	}

	if !changed("language") {
		request.Language = current.Language
	}

	if !changed("external-id") {
		request.ExternalID = formatOptional(current.ExternalID)
	}

	if !changed("admin") {
		request.RootAdmin = current.RootAdmin
	}

	return request
}

func newUsersCreateCommand() *cobra.Command {
	var flags userFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Long:  "Create a panel user",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			user, err := client.Application().Users().Create(cmd.Context(), &flags.request)
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			printf(cmd, "Created user %s (%d)\n", user.Username, user.ID)

			return renderUser(cmd, user)
		},
	}

	flags.register(cmd)

	return cmd
}

func newUsersUpdateCommand() *cobra.Command {
	var flags userFlags

	cmd := &cobra.Command{
		Use:   "update USER_ID",
		Short: "Update a user",
		Long:  "Update a panel user. Fields that are not given keep their current value",
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

			users := client.Application().Users()

			current, err := users.Get(cmd.Context(), id, nil)
			if err != nil {
				return fmt.Errorf("failed to get user: %w", err)
			}

			request := flags.merge(cmd, current)

			user, err := users.Update(cmd.Context(), id, &request)
			if err != nil {
				return fmt.Errorf("failed to update user: %w", err)
			}

			printf(cmd, "Updated user %s (%d)\n", user.Username, user.ID)

			return renderUser(cmd, user)
		},
	}

	flags.register(cmd)

	return cmd
}

func newUsersDeleteCommand() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "delete USER_ID",
		Short: "Delete a user",
		Long:  "Delete a panel user. The panel refuses users that still own servers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			err = confirmDeletion(confirm)
			if err != nil {
				return err
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			err = client.Application().Users().Delete(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to delete user: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %d\n", id)

			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm deletion")

	return cmd
}
