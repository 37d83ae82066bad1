package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/sheetsync/pkg/model"
)

func newSyncCmd() *cobra.Command {
	var jobPath string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one fetch-then-write cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := loadJob(jobPath)
			if err != nil {
				return err
			}
			if job.DBConfig == nil {
				return fmt.Errorf("job file %s: db_config is required", jobPath)
			}

			resp, err := client.Post("/api/v1/sync-db", model.SyncRequest{
				SpreadsheetID: job.SpreadsheetID,
				Credentials:   job.Credentials,
				DBConfig:      job.DBConfig,
				SheetName:     job.SheetName,
			})
			if err != nil {
				return fmt.Errorf("sync: %w", err)
			}
			var data model.SyncResponse
			if err := decode(resp, &data); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s rows)\n", data.Message, humanize.Comma(int64(data.RowsSynced)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&jobPath, "file", "f", "", "Job file (YAML)")
	cmd.MarkFlagRequired("file")
	return cmd
}
