package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/arango/pkg/arango"
)

// NewIndexesCommand creates the indexes command group.
func NewIndexesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "indexes",
		Aliases: []string{"index", "idx"},
		Short:   "Manage indexes",
		Long:    "List and manage collection indexes",
	}

	cmd.AddCommand(newIndexesListCommand())
	cmd.AddCommand(newIndexesGetCommand())
	cmd.AddCommand(newIndexesCreateCommand())
	cmd.AddCommand(newIndexesDeleteCommand())

	return cmd
}

func newIndexesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list COLLECTION_NAME",
		Short: "List indexes of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arangoClient, _, err := CreateClientWithServer(cmd)
			if err != nil {
				return err
			}

			indexes, err := arangoClient.Indexes().List(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to list indexes: %w", err)
			}

			rendered, err := renderStructured(indexes)
			if rendered || err != nil {
				return err
			}

			if len(indexes) == 0 {
				_, _ = os.Stdout.WriteString("No indexes found\n")

				return nil
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Handle", "Type", "Fields", "Unique", "Sparse")

			for _, index := range indexes {
				_ = table.Append(
					index.ID,
					index.Type,
					strings.Join(index.Fields, ", "),
					boolWord(index.Unique),
					boolWord(index.Sparse),
				)
			}

			err = table.Render()
			if err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}
}

func newIndexesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get COLLECTION/INDEX_ID",
		Short: "Show an index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !strings.Contains(args[0], "/") {
				return fmt.Errorf("%w: %q", ErrIndexHandleRequired, args[0])
			}

			arangoClient, _, err := CreateClientWithServer(cmd)
			if err != nil {
				return err
			}

			index, err := arangoClient.Indexes().Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get index: %w", err)
			}

			rendered, err := renderStructured(index)
			if rendered || err != nil {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Property", "Value")
			_ = table.Append("Handle", index.ID)
			_ = table.Append("Name", index.Name)
			_ = table.Append("Type", index.Type)
			_ = table.Append("Fields", strings.Join(index.Fields, ", "))
			_ = table.Append("Unique", boolWord(index.Unique))
			_ = table.Append("Sparse", boolWord(index.Sparse))

			err = table.Render()
			if err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}
}

func newIndexesCreateCommand() *cobra.Command {
	var (
		indexType string
		name      string
		fields    []string
		unique    bool
		sparse    bool
		ttl       int
	)

	cmd := &cobra.Command{
		Use:   "create COLLECTION_NAME",
		Short: "Create an index",
		Long:  "Create an index on the given fields of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(fields) == 0 {
				return ErrIndexFieldsRequired
			}

			request := &arango.IndexCreateRequest{
				Type:   indexType,
				Fields: fields,
				Name:   name,
				Unique: unique,
				Sparse: sparse,
			}
			if cmd.Flags().Changed("expire-after") {
				request.ExpireAfter = &ttl
			}

			arangoClient, _, err := CreateClientWithServer(cmd)
			if err != nil {
				return err
			}

			index, err := arangoClient.Indexes().Create(cmd.Context(), args[0], request)
			if err != nil {
				return fmt.Errorf("failed to create index: %w", err)
			}

			verb := "Reused existing"
			if index.IsNewlyCreated {
				verb = "Created"
			}

			_, _ = fmt.Fprintf(os.Stdout, "%s %s index: %s\n", verb, index.Type, index.ID)

			return nil
		},
	}

	cmd.Flags().StringVar(&indexType, "type", "persistent", "index type (persistent, ttl, geo, fulltext)")
	cmd.Flags().StringVar(&name, "name", "", "index name")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "indexed fields (comma separated or repeatable)")
	cmd.Flags().BoolVar(&unique, "unique", false, "enforce uniqueness")
	cmd.Flags().BoolVar(&sparse, "sparse", false, "skip documents missing the indexed fields")
	cmd.Flags().IntVar(&ttl, "expire-after", 0, "TTL in seconds (ttl indexes)")

	return cmd
}

func newIndexesDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete COLLECTION/INDEX_ID",
		Short: "Delete an index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !strings.Contains(args[0], "/") {
				return fmt.Errorf("%w: %q", ErrIndexHandleRequired, args[0])
			}

			if !force {
				_, _ = fmt.Fprintf(os.Stdout, "Really delete index '%s'? (y/N): ", args[0])

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

			err = arangoClient.Indexes().Delete(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to delete index: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Deleted index: %s\n", args[0])

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")

	return cmd
}
