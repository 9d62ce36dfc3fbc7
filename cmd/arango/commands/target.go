package commands

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/arango/internal/constants"
)

// TargetInfo represents the current target information.
type TargetInfo struct {
	Server   string `json:"server,omitempty"   yaml:"server,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Database string `json:"database,omitempty" yaml:"database,omitempty"`
	User     string `json:"user,omitempty"     yaml:"user,omitempty"`
}

// NewTargetCommand creates the target command.
func NewTargetCommand() *cobra.Command {
	var (
		serverName   string
		databaseName string
	)

	cmd := &cobra.Command{
		Use:   "target",
		Short: "Set or show the targeted server and database",
		Long:  "Set or display the currently targeted ArangoDB server and database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if serverName == "" && databaseName == "" {
				return showTarget()
			}

			config := loadConfig()

			if serverName != "" {
				if _, exists := config.Servers[serverName]; !exists {
					return fmt.Errorf("%w, use 'arango login' to add it: '%s'", ErrServerNotFound, serverName)
				}

				config.CurrentServer = serverName
				_, _ = fmt.Fprintf(os.Stdout, "Targeted server: %s\n", serverName)
			}

			if databaseName != "" {
				if config.CurrentServer == "" {
					return fmt.Errorf("%w, use 'arango login' to add one", ErrNoServersConfigured)
				}

				serverConfig, exists := config.Servers[config.CurrentServer]
				if !exists {
					return fmt.Errorf("%w in configuration: '%s'", ErrCurrentServerNotFound, config.CurrentServer)
				}

				// Verify the database exists before targeting it
				arangoClient, _, err := CreateClientWithServer(cmd)
				if err != nil {
					return err
				}

				databases, err := arangoClient.Databases().List(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list databases: %w", err)
				}

				found := false

				for _, name := range databases {
					if name == databaseName {
						found = true

						break
					}
				}

				if !found {
					return fmt.Errorf("database '%s': %w", databaseName, ErrDatabaseNotFound)
				}

				serverConfig.Database = databaseName
				_, _ = fmt.Fprintf(os.Stdout, "Targeted database: %s\n", databaseName)
			}

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&serverName, "server", "s", "", "target server short name")
	cmd.Flags().StringVarP(&databaseName, "database", "d", "", "target database")

	return cmd
}

func showTarget() error {
	config := loadConfig()

	if config.CurrentServer == "" {
		_, _ = os.Stdout.WriteString("No server targeted. Use 'arango login' or 'arango target -s SERVER'.\n")

		return nil
	}

	serverConfig, exists := config.Servers[config.CurrentServer]
	if !exists {
		return fmt.Errorf("%w in configuration: '%s'", ErrCurrentServerNotFound, config.CurrentServer)
	}

	database := serverConfig.Database
	if database == "" {
		database = constants.DefaultDatabase
	}

	info := TargetInfo{
		Server:   config.CurrentServer,
		Endpoint: serverConfig.Endpoint,
		Database: database,
		User:     serverConfig.Username,
	}

	rendered, err := renderStructured(info)
	if rendered || err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	_ = table.Append("Server", info.Server)
	_ = table.Append("Endpoint", info.Endpoint)
	_ = table.Append("Database", info.Database)

	user := info.User
	if user == "" {
		user = NotAvailable
	}

	_ = table.Append("User", user)

	err = table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
