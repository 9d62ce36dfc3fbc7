package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/arango/pkg/arango"
)

// NewGraphsCommand creates the graphs command group.
func NewGraphsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "graphs",
		Aliases: []string{"graph"},
		Short:   "Manage named graphs",
		Long:    "List and manage named graphs in the targeted database",
	}

	cmd.AddCommand(newGraphsListCommand())
	cmd.AddCommand(newGraphsGetCommand())
	cmd.AddCommand(newGraphsCreateCommand())
	cmd.AddCommand(newGraphsDropCommand())

	return cmd
}

func formatEdgeDefinitions(definitions []arango.EdgeDefinition) string {
	parts := make([]string, 0, len(definitions))
	for _, definition := range definitions {
		parts = append(parts, fmt.Sprintf("%s (%s -> %s)",
			definition.Collection,
			strings.Join(definition.From, ","),
			strings.Join(definition.To, ",")))
	}

	return strings.Join(parts, "; ")
}

func newGraphsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List named graphs",
		RunE: func(cmd *cobra.Command, args []string) error {
			arangoClient, _, err := CreateClientWithServer(cmd)
			if err != nil {
				return err
			}

			graphs, err := arangoClient.Graphs().List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list graphs: %w", err)
			}

			rendered, err := renderStructured(graphs)
			if rendered || err != nil {
				return err
			}

			if len(graphs) == 0 {
				_, _ = os.Stdout.WriteString("No graphs found\n")

				return nil
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Name", "Edge Definitions", "Orphan Collections")

			for _, graph := range graphs {
				_ = table.Append(
					graph.Name,
					formatEdgeDefinitions(graph.EdgeDefinitions),
					strings.Join(graph.OrphanCollections, ", "),
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

func newGraphsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get GRAPH_NAME",
		Short: "Show a named graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arangoClient, _, err := CreateClientWithServer(cmd)
			if err != nil {
				return err
			}

			graph, err := arangoClient.Graphs().Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get graph: %w", err)
			}

			rendered, err := renderStructured(graph)
			if rendered || err != nil {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Property", "Value")
			_ = table.Append("Name", graph.Name)
			_ = table.Append("Edge Definitions", formatEdgeDefinitions(graph.EdgeDefinitions))
			_ = table.Append("Orphan Collections", strings.Join(graph.OrphanCollections, ", "))

			err = table.Render()
			if err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}
}

// parseEdgeDefinition parses edge:from1,from2:to1,to2 into an EdgeDefinition.
func parseEdgeDefinition(spec string) (arango.EdgeDefinition, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return arango.EdgeDefinition{}, fmt.Errorf("%w: %q", ErrInvalidEdgeDefinition, spec)
	}

	return arango.EdgeDefinition{
		Collection: parts[0],
		From:       strings.Split(parts[1], ","),
		To:         strings.Split(parts[2], ","),
	}, nil
}

func newGraphsCreateCommand() *cobra.Command {
	var (
		edgeSpecs []string
		orphans   []string
	)

	cmd := &cobra.Command{
		Use:   "create GRAPH_NAME",
		Short: "Create a named graph",
		Long: `Create a named graph from edge definitions.

Each --edge-definition has the form EDGE_COLLECTION:FROM,...:TO,... e.g.

  arango graphs create social --edge-definition knows:persons:persons`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request := &arango.GraphCreateRequest{
				Name:              args[0],
				OrphanCollections: orphans,
			}

			for _, spec := range edgeSpecs {
				definition, err := parseEdgeDefinition(spec)
				if err != nil {
					return err
				}

				request.EdgeDefinitions = append(request.EdgeDefinitions, definition)
			}

			arangoClient, _, err := CreateClientWithServer(cmd)
			if err != nil {
				return err
			}

			graph, err := arangoClient.Graphs().Create(cmd.Context(), request)
			if err != nil {
				return fmt.Errorf("failed to create graph: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Created graph: %s\n", graph.Name)

			return nil
		},
	}

	cmd.Flags().StringArrayVar(&edgeSpecs, "edge-definition", nil, "edge definition as edge:from1,from2:to1,to2 (repeatable)")
	cmd.Flags().StringSliceVar(&orphans, "orphan", nil, "orphan vertex collection (repeatable)")

	return cmd
}

func newGraphsDropCommand() *cobra.Command {
	var (
		dropCollections bool
		force           bool
	)

	cmd := &cobra.Command{
		Use:   "drop GRAPH_NAME",
		Short: "Drop a named graph",
		Long:  "Drop a named graph, optionally together with its collections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			if !force {
				_, _ = fmt.Fprintf(os.Stdout, "Really drop graph '%s'? (y/N): ", name)

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

			err = arangoClient.Graphs().Drop(cmd.Context(), name, dropCollections)
			if err != nil {
				return fmt.Errorf("failed to drop graph: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Dropped graph: %s\n", name)

			return nil
		},
	}

	cmd.Flags().BoolVar(&dropCollections, "drop-collections", false, "also drop the graph's collections")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")

	return cmd
}
