package commands

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/arango/pkg/arango"
)

// NewJobsCommand creates the jobs command group.
func NewJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "jobs",
		Aliases: []string{"job"},
		Short:   "Manage async jobs",
		Long:    "Inspect, await and clean up asynchronous server jobs",
	}

	cmd.AddCommand(newJobsListCommand())
	cmd.AddCommand(newJobsStatusCommand())
	cmd.AddCommand(newJobsWaitCommand())
	cmd.AddCommand(newJobsResultCommand())
	cmd.AddCommand(newJobsCancelCommand())
	cmd.AddCommand(newJobsDeleteCommand())

	return cmd
}

func newJobsListCommand() *cobra.Command {
	var pending bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List async jobs",
		Long:  "List completed async jobs, or pending ones with --pending",
		RunE: func(cmd *cobra.Command, args []string) error {
			arangoClient, _, err := CreateClientWithServer(cmd)
			if err != nil {
				return err
			}

			kind := arango.JobsDone
			if pending {
				kind = arango.JobsPending
			}

			ids, err := arangoClient.Jobs().List(cmd.Context(), kind)
			if err != nil {
				return fmt.Errorf("failed to list jobs: %w", err)
			}

			rendered, err := renderStructured(ids)
			if rendered || err != nil {
				return err
			}

			if len(ids) == 0 {
				_, _ = os.Stdout.WriteString("No jobs found\n")

				return nil
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Job ID", "State")

			state := "done"
			if pending {
				state = "pending"
			}

			for _, id := range ids {
				_ = table.Append(id, state)
			}

			err = table.Render()
			if err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&pending, "pending", false, "list pending jobs instead of completed ones")

	return cmd
}

func newJobsStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status JOB_ID",
		Short: "Show the status of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arangoClient, _, err := CreateClientWithServer(cmd)
			if err != nil {
				return err
			}

			status, err := arangoClient.Jobs().Status(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get job status: %w", err)
			}

			rendered, err := renderStructured(map[string]string{"id": args[0], "status": string(status)})
			if rendered || err != nil {
				return err
			}

			_, _ = fmt.Fprintf(os.Stdout, "%s\n", status)

			return nil
		},
	}
}

func newJobsWaitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "wait JOB_ID",
		Short: "Wait for a job to complete",
		Long:  "Poll with exponential backoff until the job completes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arangoClient, _, err := CreateClientWithServer(cmd)
			if err != nil {
				return err
			}

			err = arangoClient.Jobs().Wait(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed waiting for job: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Job %s completed\n", args[0])

			return nil
		},
	}
}

func newJobsResultCommand() *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "result JOB_ID",
		Short: "Fetch the result of an async query job",
		Long:  "Fetch the stored result of an async query submitted with 'arango query --async'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arangoClient, _, err := CreateClientWithServer(cmd)
			if err != nil {
				return err
			}

			if wait {
				err = arangoClient.Jobs().Wait(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("failed waiting for job: %w", err)
				}
			}

			cursor, err := arangoClient.Query().AsyncResult(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to fetch job result: %w", err)
			}
			defer func() { _ = cursor.Close(cmd.Context()) }()

			return renderCursor(cmd, cursor, false)
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the job to complete first")

	return cmd
}

func newJobsCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel JOB_ID",
		Short: "Cancel a running job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arangoClient, _, err := CreateClientWithServer(cmd)
			if err != nil {
				return err
			}

			err = arangoClient.Jobs().Cancel(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to cancel job: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Cancelled job: %s\n", args[0])

			return nil
		},
	}
}

func newJobsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete JOB_ID|all|expired",
		Short: "Delete job results",
		Long:  "Delete a single job's stored result, or 'all'/'expired' results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arangoClient, _, err := CreateClientWithServer(cmd)
			if err != nil {
				return err
			}

			err = arangoClient.Jobs().Delete(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to delete job: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Deleted: %s\n", args[0])

			return nil
		},
	}
}
