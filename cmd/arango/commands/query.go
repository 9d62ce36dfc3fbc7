package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/arango/pkg/arango"
)

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	var (
		bindPairs []string
		batchSize int
		count     bool
		async     bool
		ttl       int
		profile   int
	)

	cmd := &cobra.Command{
		Use:   "query AQL",
		Short: "Execute an AQL query",
		Long: `Execute an AQL query and stream the results.

Bind variables are passed with repeated --bind flags, for example:

  arango query 'FOR d IN @@col FILTER d.total > @min RETURN d' \
      --bind @col=orders --bind min=100

Values that parse as JSON are passed through typed; anything else is sent
as a string. With --async the query is submitted as a stored job and the
job ID is printed; fetch the result later with 'arango jobs result'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0]
			if query == "" {
				return ErrQueryRequired
			}

			bindVars, err := ParseBindVars(bindPairs)
			if err != nil {
				return err
			}

			request := arango.NewQueryRequest(query)
			for name, value := range bindVars {
				request.WithBindVar(name, value)
			}

			if batchSize > 0 {
				request.WithBatchSize(batchSize)
			}

			if count {
				request.WithCount()
			}

			if ttl > 0 {
				request.WithTTL(ttl)
			}

			switch profile {
			case 0:
			case 1:
				request.WithProfile(arango.ProfileBasic)
			case 2:
				request.WithProfile(arango.ProfileWithPlan)
			default:
				return fmt.Errorf("profile level %d: %w", profile, ErrInvalidProfileLevel)
			}

			arangoClient, _, err := CreateClientWithServer(cmd)
			if err != nil {
				return err
			}

			if async {
				jobID, err := arangoClient.Query().ExecuteAsync(cmd.Context(), request)
				if err != nil {
					return fmt.Errorf("failed to submit query: %w", err)
				}

				_, _ = fmt.Fprintf(os.Stdout, "Submitted async query job: %s\n", jobID)

				return nil
			}

			cursor, err := arangoClient.Query().Execute(cmd.Context(), request)
			if err != nil {
				return fmt.Errorf("failed to execute query: %w", err)
			}
			defer func() { _ = cursor.Close(cmd.Context()) }()

			return renderCursor(cmd, cursor, count)
		},
	}

	cmd.Flags().StringArrayVar(&bindPairs, "bind", nil, "bind variable as name=value (repeatable)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "documents per cursor batch")
	cmd.Flags().BoolVar(&count, "count", false, "report the total result count")
	cmd.Flags().BoolVar(&async, "async", false, "submit as a stored async job")
	cmd.Flags().IntVar(&ttl, "ttl", 0, "server-side cursor lifetime in seconds")
	cmd.Flags().IntVar(&profile, "profile", 0, "profiling level: 1 timings, 2 timings and plan")

	return cmd
}

// renderCursor drains a cursor and renders the documents in the configured
// output format.
func renderCursor(cmd *cobra.Command, cursor *arango.Cursor, withCount bool) error {
	var results []json.RawMessage

	err := cursor.All(cmd.Context(), &results)
	if err != nil {
		return fmt.Errorf("failed to fetch results: %w", err)
	}

	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(results)
	case OutputFormatYAML:
		var generic []interface{}
		for _, raw := range results {
			var value interface{}
			if err := json.Unmarshal(raw, &value); err != nil {
				return fmt.Errorf("decoding result: %w", err)
			}

			generic = append(generic, value)
		}

		return StandardYAMLRenderer(generic)
	default:
		err := renderCursorTable(results)
		if err != nil {
			return err
		}

		if withCount {
			if total, ok := cursor.Count(); ok {
				_, _ = fmt.Fprintf(os.Stdout, "\nTotal: %d\n", total)
			}
		}

		return nil
	}
}

// renderCursorTable renders object results as a table keyed by the union of
// their attribute names. Non-object results fall back to JSON lines.
func renderCursorTable(results []json.RawMessage) error {
	if len(results) == 0 {
		_, _ = os.Stdout.WriteString("No results\n")

		return nil
	}

	rows := make([]map[string]interface{}, 0, len(results))
	columnSet := make(map[string]bool)

	for _, raw := range results {
		var row map[string]interface{}

		err := json.Unmarshal(raw, &row)
		if err != nil {
			// Scalar or array results: print one JSON document per line
			for _, item := range results {
				_, _ = fmt.Fprintf(os.Stdout, "%s\n", item)
			}

			return nil
		}

		rows = append(rows, row)

		for column := range row {
			columnSet[column] = true
		}
	}

	columns := make([]string, 0, len(columnSet))
	for column := range columnSet {
		columns = append(columns, column)
	}

	sort.Strings(columns)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header(columns)

	for _, row := range rows {
		cells := make([]string, len(columns))

		for i, column := range columns {
			value, ok := row[column]
			if !ok {
				cells[i] = ""

				continue
			}

			switch typed := value.(type) {
			case string:
				cells[i] = typed
			default:
				encoded, err := json.Marshal(typed)
				if err != nil {
					cells[i] = fmt.Sprintf("%v", typed)
				} else {
					cells[i] = string(encoded)
				}
			}
		}

		_ = table.Append(cells)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
