package commands

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/arango/pkg/arango"
)

// NewDatabasesCommand creates the databases command group.
func NewDatabasesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "databases",
		Aliases: []string{"database", "db"},
		Short:   "Manage databases",
		Long:    "List and manage ArangoDB databases",
	}

	cmd.AddCommand(newDatabasesListCommand())
	cmd.AddCommand(newDatabasesCurrentCommand())
	cmd.AddCommand(newDatabasesCreateCommand())
	cmd.AddCommand(newDatabasesDropCommand())

	return cmd
}

func newDatabasesListCommand() *cobra.Command {
	var accessibleOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List databases",
		Long:  "List all databases, or only those accessible to the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			arangoClient, _, err := CreateClientWithServer(cmd)
			if err != nil {
				return err
			}

			var names []string

			if accessibleOnly {
				names, err = arangoClient.Databases().User(cmd.Context())
			} else {
				names, err = arangoClient.Databases().List(cmd.Context())
			}

			if err != nil {
				return fmt.Errorf("failed to list databases: %w", err)
			}

			rendered, err := renderStructured(names)
			if rendered || err != nil {
				return err
			}

			if len(names) == 0 {
				_, _ = os.Stdout.WriteString("No databases found\n")

				return nil
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Name")

			for _, name := range names {
				_ = table.Append(name)
			}

			err = table.Render()
			if err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&accessibleOnly, "accessible", false, "list only databases accessible to the current user")

	return cmd
}

func newDatabasesCurrentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the current database",
		Long:  "Display properties of the database the client is scoped to",
		RunE: func(cmd *cobra.Command, args []string) error {
			arangoClient, _, err := CreateClientWithServer(cmd)
			if err != nil {
				return err
			}

			info, err := arangoClient.Databases().Current(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get current database: %w", err)
			}

			rendered, err := renderStructured(info)
			if rendered || err != nil {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Property", "Value")
			_ = table.Append("Name", info.Name)
			_ = table.Append("ID", info.ID)
			_ = table.Append("Path", info.Path)
			_ = table.Append("System", boolWord(info.IsSystem))

			err = table.Render()
			if err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}
}

func newDatabasesCreateCommand() *cobra.Command {
	var users []string

	cmd := &cobra.Command{
		Use:   "create DATABASE_NAME",
		Short: "Create a database",
		Long:  "Create a new database, optionally granting access to users",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if name == "" {
				return ErrDatabaseNameRequired
			}

			arangoClient, _, err := CreateClientWithServer(cmd)
			if err != nil {
				return err
			}

			request := &arango.DatabaseCreateRequest{Name: name}
			for _, user := range users {
				request.Users = append(request.Users, arango.DatabaseUser{Username: user, Active: true})
			}

			err = arangoClient.Databases().Create(cmd.Context(), request)
			if err != nil {
				return fmt.Errorf("failed to create database: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Created database: %s\n", name)

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&users, "user", nil, "grant access to a user (repeatable)")

	return cmd
}

func newDatabasesDropCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "drop DATABASE_NAME",
		Short: "Drop a database",
		Long:  "Drop a database and everything in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			if !force {
				_, _ = fmt.Fprintf(os.Stdout, "Really drop database '%s'? This cannot be undone. (y/N): ", name)

				var response string

				_, _ = fmt.Scanln(&response)

				if response != "y" && response != "Y" {
					_, _ = os.Stdout.WriteString("Cancelled\n")

					return nil
				}
			}

			arangoClient, _, err := CreateClientWithServer(cmd)
			if err != nil {
				return err
			}

			err = arangoClient.Databases().Drop(cmd.Context(), name)
			if err != nil {
				return fmt.Errorf("failed to drop database: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Dropped database: %s\n", name)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")

	return cmd
}
