package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/sheetsync/pkg/model"
)

func newConnectCmd() *cobra.Command {
	var (
		jobPath string
		preview int
	)

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Read a sheet and preview its rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := loadJob(jobPath)
			if err != nil {
				return err
			}

			resp, err := client.Post("/api/v1/connect-gsheets", model.ConnectRequest{
				SpreadsheetID: job.SpreadsheetID,
				Credentials:   job.Credentials,
				SheetName:     job.SheetName,
			})
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			var data model.ConnectResponse
			if err := decode(resp, &data); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Connected: %s rows, %d columns\n", humanize.Comma(int64(data.Rows)), len(data.Columns))
			if len(data.Columns) == 0 {
				return nil
			}
			fmt.Fprintln(out, strings.Join(data.Columns, "\t"))
			for i, rec := range data.Data {
				if i >= preview {
					fmt.Fprintf(out, "... %d more\n", len(data.Data)-preview)
					break
				}
				cells := make([]string, len(data.Columns))
				for j, c := range data.Columns {
					cells[j] = rec[c]
				}
				fmt.Fprintln(out, strings.Join(cells, "\t"))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&jobPath, "file", "f", "", "Job file (YAML)")
	cmd.Flags().IntVar(&preview, "preview", 10, "Number of rows to print")
	cmd.MarkFlagRequired("file")
	return cmd
}
