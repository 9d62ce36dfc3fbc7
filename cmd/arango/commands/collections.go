package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/arango/pkg/arango"
)

// NewCollectionsCommand creates the collections command group.
func NewCollectionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collections",
		Aliases: []string{"collection", "col"},
		Short:   "Manage collections",
		Long:    "List and manage collections in the targeted database",
	}

	cmd.AddCommand(newCollectionsListCommand())
	cmd.AddCommand(newCollectionsGetCommand())
	cmd.AddCommand(newCollectionsCreateCommand())
	cmd.AddCommand(newCollectionsDropCommand())
	cmd.AddCommand(newCollectionsTruncateCommand())
	cmd.AddCommand(newCollectionsRenameCommand())
	cmd.AddCommand(newCollectionsCountCommand())
	cmd.AddCommand(newCollectionsFiguresCommand())

	return cmd
}

func collectionStatusWord(status arango.CollectionStatus) string {
	switch status {
	case arango.CollectionStatusLoaded:
		return "loaded"
	case arango.CollectionStatusUnloaded:
		return "unloaded"
	case arango.CollectionStatusDeleted:
		return "deleted"
	default:
		return strconv.Itoa(int(status))
	}
}

func collectionTypeWord(collectionType arango.CollectionType) string {
	switch collectionType {
	case arango.CollectionEdge:
		return "edge"
	case arango.CollectionDocument:
		return "document"
	default:
		return strconv.Itoa(int(collectionType))
	}
}

func newCollectionsListCommand() *cobra.Command {
	var includeSystem bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List collections",
		Long:  "List collections in the targeted database",
		RunE: func(cmd *cobra.Command, args []string) error {
			arangoClient, database, err := CreateClientWithServer(cmd)
			if err != nil {
				return err
			}

			collections, err := arangoClient.Collections().List(cmd.Context(), !includeSystem)
			if err != nil {
				return fmt.Errorf("failed to list collections: %w", err)
			}

			rendered, err := renderStructured(collections)
			if rendered || err != nil {
				return err
			}

			if len(collections) == 0 {
				_, _ = fmt.Fprintf(os.Stdout, "No collections found in database '%s'\n", database)

				return nil
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Name", "Type", "Status", "System")

			for _, collection := range collections {
				_ = table.Append(
					collection.Name,
					collectionTypeWord(collection.Type),
					collectionStatusWord(collection.Status),
					boolWord(collection.IsSystem),
				)
			}

			err = table.Render()
			if err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&includeSystem, "system", false, "include system collections")

	return cmd
}

func newCollectionsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get COLLECTION_NAME",
		Short: "Show collection properties",
		Long:  "Display the full property set of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arangoClient, _, err := CreateClientWithServer(cmd)
			if err != nil {
				return err
			}

			properties, err := arangoClient.Collections().Properties(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get collection: %w", err)
			}

			rendered, err := renderStructured(properties)
			if rendered || err != nil {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Property", "Value")
			_ = table.Append("Name", properties.Name)
			_ = table.Append("ID", properties.ID)
			_ = table.Append("Type", collectionTypeWord(properties.Type))
			_ = table.Append("Status", collectionStatusWord(properties.Status))
			_ = table.Append("System", boolWord(properties.IsSystem))
			_ = table.Append("Wait For Sync", boolWord(properties.WaitForSync))

			if properties.KeyOptions != nil {
				_ = table.Append("Key Generator", properties.KeyOptions.Type)
			}

			err = table.Render()
			if err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}
}

func newCollectionsCreateCommand() *cobra.Command {
	var (
		edge        bool
		waitForSync bool
	)

	cmd := &cobra.Command{
		Use:   "create COLLECTION_NAME",
		Short: "Create a collection",
		Long:  "Create a document or edge collection in the targeted database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arangoClient, _, err := CreateClientWithServer(cmd)
			if err != nil {
				return err
			}

			request := &arango.CollectionCreateRequest{
				Name:        args[0],
				WaitForSync: waitForSync,
			}
			if edge {
				request.Type = arango.CollectionEdge
			}

			collection, err := arangoClient.Collections().Create(cmd.Context(), request)
			if err != nil {
				return fmt.Errorf("failed to create collection: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Created %s collection: %s\n",
				collectionTypeWord(collection.Type), collection.Name)

			return nil
		},
	}

	cmd.Flags().BoolVar(&edge, "edge", false, "create an edge collection")
	cmd.Flags().BoolVar(&waitForSync, "wait-for-sync", false, "wait for writes to be synced to disk")

	return cmd
}

func newCollectionsDropCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "drop COLLECTION_NAME",
		Short: "Drop a collection",
		Long:  "Drop a collection and all documents in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			if !force {
				_, _ = fmt.Fprintf(os.Stdout, "Really drop collection '%s'? This cannot be undone. (y/N): ", name)

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

			err = arangoClient.Collections().Drop(cmd.Context(), name)
			if err != nil {
				return fmt.Errorf("failed to drop collection: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Dropped collection: %s\n", name)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")

	return cmd
}

func newCollectionsTruncateCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "truncate COLLECTION_NAME",
		Short: "Truncate a collection",
		Long:  "Remove all documents from a collection, keeping the collection itself",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			if !force {
				_, _ = fmt.Fprintf(os.Stdout, "Really truncate collection '%s'? (y/N): ", name)

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

			_, err = arangoClient.Collections().Truncate(cmd.Context(), name)
			if err != nil {
				return fmt.Errorf("failed to truncate collection: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Truncated collection: %s\n", name)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")

	return cmd
}

func newCollectionsRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename OLD_NAME NEW_NAME",
		Short: "Rename a collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			arangoClient, _, err := CreateClientWithServer(cmd)
			if err != nil {
				return err
			}

			collection, err := arangoClient.Collections().Rename(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to rename collection: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Renamed collection %s to %s\n", args[0], collection.Name)

			return nil
		},
	}
}

func newCollectionsCountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "count COLLECTION_NAME",
		Short: "Count documents in a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arangoClient, _, err := CreateClientWithServer(cmd)
			if err != nil {
				return err
			}

			count, err := arangoClient.Collections().Count(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to count documents: %w", err)
			}

			rendered, err := renderStructured(map[string]int64{"count": count})
			if rendered || err != nil {
				return err
			}

			_, _ = fmt.Fprintf(os.Stdout, "%d\n", count)

			return nil
		},
	}
}

func newCollectionsFiguresCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "figures COLLECTION_NAME",
		Short: "Show collection statistics",
		Long:  "Display the detailed statistics of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arangoClient, _, err := CreateClientWithServer(cmd)
			if err != nil {
				return err
			}

			figures, err := arangoClient.Collections().Figures(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get collection figures: %w", err)
			}

			rendered, err := renderStructured(figures)
			if rendered || err != nil {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Property", "Value")
			_ = table.Append("Name", figures.Name)
			_ = table.Append("Count", strconv.FormatInt(figures.Count, 10))

			for name, value := range figures.Figures {
				_ = table.Append(name, fmt.Sprintf("%v", value))
			}

			err = table.Render()
			if err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}
}
