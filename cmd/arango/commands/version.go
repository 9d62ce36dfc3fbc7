package commands

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display CLI version information, and the server version with --server-version",
		RunE: func(cmd *cobra.Command, args []string) error {
			type VersionInfo struct {
				Version string `json:"version"                  yaml:"version"`
				Commit  string `json:"commit"                   yaml:"commit"`
				Built   string `json:"built"                    yaml:"built"`
				Server  string `json:"server,omitempty"         yaml:"server,omitempty"`
				License string `json:"server_license,omitempty" yaml:"server_license,omitempty"`
			}

			versionInfo := VersionInfo{
				Version: version,
				Commit:  commit,
				Built:   date,
			}

			if remote {
				arangoClient, _, err := CreateClientWithServer(cmd)
				if err != nil {
					return err
				}

				serverVersion, err := arangoClient.Version(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to get server version: %w", err)
				}

				versionInfo.Server = serverVersion.Version
				versionInfo.License = serverVersion.License
			}

			rendered, err := renderStructured(versionInfo)
			if rendered || err != nil {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Property", "Value")
			_ = table.Append("Version", versionInfo.Version)
			_ = table.Append("Commit", versionInfo.Commit)
			_ = table.Append("Built", versionInfo.Built)

			if remote {
				_ = table.Append("Server Version", versionInfo.Server)
				_ = table.Append("Server License", versionInfo.License)
			}

			err = table.Render()
			if err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "server-version", false, "also report the targeted server's version")

	return cmd
}
