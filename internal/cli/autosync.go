package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/sheetsync/pkg/model"
)

func newStartCmd() *cobra.Command {
	var (
		jobPath  string
		interval int
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the recurring auto-sync job",
		Long:  "Start runs one sync immediately and then repeats it every interval until stopped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := loadJob(jobPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("interval") {
				job.IntervalMinutes = &interval
			}

			resp, err := client.Post("/api/v1/start-auto-sync", job)
			if err != nil {
				return fmt.Errorf("start auto-sync: %w", err)
			}
			var data model.AutoSyncResponse
			if err := decode(resp, &data); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, data.Message)
			if fs := data.FirstSync; fs != nil {
				switch fs.Phase {
				case model.SyncPhaseCompleted:
					rows := 0
					if fs.RowsSynced != nil {
						rows = *fs.RowsSynced
					}
					fmt.Fprintf(out, "First sync: completed, %s rows\n", humanize.Comma(int64(rows)))
				default:
					fmt.Fprintf(out, "First sync: %s: %s\n", fs.Phase, fs.Error)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&jobPath, "file", "f", "", "Job file (YAML)")
	cmd.Flags().IntVar(&interval, "interval", 0, "Minutes between syncs (overrides interval_minutes in the job file)")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the recurring auto-sync job",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Post("/api/v1/stop-auto-sync", nil)
			if err != nil {
				return fmt.Errorf("stop auto-sync: %w", err)
			}
			var data model.StopResponse
			if err := decode(resp, &data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", data.Status, data.Message)
			return nil
		},
	}
}
