package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/arango/pkg/arango"
)

// NewDocumentsCommand creates the documents command group.
func NewDocumentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"document", "doc"},
		Short:   "Manage documents",
		Long:    "Create, read, update and delete documents in the targeted database",
	}

	cmd.AddCommand(newDocumentsGetCommand())
	cmd.AddCommand(newDocumentsCreateCommand())
	cmd.AddCommand(newDocumentsUpdateCommand())
	cmd.AddCommand(newDocumentsReplaceCommand())
	cmd.AddCommand(newDocumentsDeleteCommand())

	return cmd
}

// splitDocumentHandle splits "collection/key" into its parts.
func splitDocumentHandle(handle string) (string, string, error) {
	collection, key, found := strings.Cut(handle, "/")
	if !found || collection == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q", ErrDocumentHandleRequired, handle)
	}

	return collection, key, nil
}

// readDocumentBody reads the document body from --data or --file.
func readDocumentBody(data, file string) (interface{}, error) {
	var raw []byte

	switch {
	case data != "":
		raw = []byte(data)
	case file != "":
		var err error

		raw, err = os.ReadFile(file) // #nosec G304 -- the user names their own input file
		if err != nil {
			return nil, fmt.Errorf("failed to read document file: %w", err)
		}
	default:
		return nil, ErrDocumentBodyRequired
	}

	var document interface{}

	err := json.Unmarshal(raw, &document)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocumentJSON, err)
	}

	return document, nil
}

func newDocumentsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get COLLECTION/KEY",
		Short: "Read a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, key, err := splitDocumentHandle(args[0])
			if err != nil {
				return err
			}

			arangoClient, _, err := CreateClientWithServer(cmd)
			if err != nil {
				return err
			}

			var document map[string]interface{}

			_, err = arangoClient.Documents().Read(cmd.Context(), collection, key, &document, nil)
			if err != nil {
				return fmt.Errorf("failed to read document: %w", err)
			}

			if viper.GetString("output") == OutputFormatYAML {
				return StandardYAMLRenderer(document)
			}

			return StandardJSONRenderer(document)
		},
	}
}

func newDocumentsCreateCommand() *cobra.Command {
	var (
		data      string
		file      string
		returnNew bool
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "create COLLECTION",
		Short: "Create a document",
		Long:  "Create a document from inline JSON (--data) or a file (--file)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			document, err := readDocumentBody(data, file)
			if err != nil {
				return err
			}

			arangoClient, _, err := CreateClientWithServer(cmd)
			if err != nil {
				return err
			}

			opts := &arango.DocumentOptions{ReturnNew: returnNew, Overwrite: overwrite}

			meta, err := arangoClient.Documents().Create(cmd.Context(), args[0], document, opts)
			if err != nil {
				return fmt.Errorf("failed to create document: %w", err)
			}

			if returnNew && len(meta.New) > 0 {
				var created map[string]interface{}
				if err := json.Unmarshal(meta.New, &created); err == nil {
					return StandardJSONRenderer(created)
				}
			}

			_, _ = fmt.Fprintf(os.Stdout, "Created document: %s (rev %s)\n", meta.ID, meta.Rev)

			return nil
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "document body as JSON")
	cmd.Flags().StringVar(&file, "file", "", "path to a JSON file with the document body")
	cmd.Flags().BoolVar(&returnNew, "return-new", false, "print the stored document")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing document with the same key")

	return cmd
}

func newDocumentsUpdateCommand() *cobra.Command {
	var (
		data     string
		file     string
		ifMatch  string
		keepNull bool
	)

	cmd := &cobra.Command{
		Use:   "update COLLECTION/KEY",
		Short: "Partially update a document",
		Long:  "Patch a document with the given JSON fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, key, err := splitDocumentHandle(args[0])
			if err != nil {
				return err
			}

			patch, err := readDocumentBody(data, file)
			if err != nil {
				return err
			}

			arangoClient, _, err := CreateClientWithServer(cmd)
			if err != nil {
				return err
			}

			opts := &arango.DocumentOptions{IfMatch: ifMatch}
			if cmd.Flags().Changed("keep-null") {
				opts.KeepNull = &keepNull
			}

			meta, err := arangoClient.Documents().Update(cmd.Context(), collection, key, patch, opts)
			if err != nil {
				return fmt.Errorf("failed to update document: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Updated document: %s (rev %s)\n", meta.ID, meta.Rev)

			return nil
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "patch body as JSON")
	cmd.Flags().StringVar(&file, "file", "", "path to a JSON file with the patch body")
	cmd.Flags().StringVar(&ifMatch, "if-match", "", "only update when the revision matches")
	cmd.Flags().BoolVar(&keepNull, "keep-null", true, "keep attributes set to null instead of removing them")

	return cmd
}

func newDocumentsReplaceCommand() *cobra.Command {
	var (
		data    string
		file    string
		ifMatch string
	)

	cmd := &cobra.Command{
		Use:   "replace COLLECTION/KEY",
		Short: "Replace a document",
		Long:  "Replace a document's body entirely",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, key, err := splitDocumentHandle(args[0])
			if err != nil {
				return err
			}

			document, err := readDocumentBody(data, file)
			if err != nil {
				return err
			}

			arangoClient, _, err := CreateClientWithServer(cmd)
			if err != nil {
				return err
			}

			opts := &arango.DocumentOptions{IfMatch: ifMatch}

			meta, err := arangoClient.Documents().Replace(cmd.Context(), collection, key, document, opts)
			if err != nil {
				return fmt.Errorf("failed to replace document: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Replaced document: %s (rev %s)\n", meta.ID, meta.Rev)

			return nil
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "document body as JSON")
	cmd.Flags().StringVar(&file, "file", "", "path to a JSON file with the document body")
	cmd.Flags().StringVar(&ifMatch, "if-match", "", "only replace when the revision matches")

	return cmd
}

func newDocumentsDeleteCommand() *cobra.Command {
	var (
		ifMatch string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "delete COLLECTION/KEY",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, key, err := splitDocumentHandle(args[0])
			if err != nil {
				return err
			}

			if !force {
				_, _ = fmt.Fprintf(os.Stdout, "Really delete document '%s'? (y/N): ", args[0])

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

			opts := &arango.DocumentOptions{IfMatch: ifMatch}

			meta, err := arangoClient.Documents().Delete(cmd.Context(), collection, key, opts)
			if err != nil {
				return fmt.Errorf("failed to delete document: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Deleted document: %s\n", meta.ID)

			return nil
		},
	}

	cmd.Flags().StringVar(&ifMatch, "if-match", "", "only delete when the revision matches")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")

	return cmd
}
