package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/sheetsync/pkg/model"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the auto-sync state and the latest sync outcome",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/sync-status")
			if err != nil {
				return fmt.Errorf("get sync status: %w", err)
			}
			var st model.StatusResponse
			if err := decode(resp, &st); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Auto-sync: %s\n", st.SchedulerPhase)
			fmt.Fprintf(out, "Last sync: %s\n", st.Sync.Phase)
			if st.Sync.LastRunAt != nil {
				fmt.Fprintf(out, "  Ran:     %s\n", humanize.Time(*st.Sync.LastRunAt))
			}
			if st.Sync.RowsSynced != nil {
				fmt.Fprintf(out, "  Rows:    %s\n", humanize.Comma(int64(*st.Sync.RowsSynced)))
			}
			if st.Sync.Error != "" {
				fmt.Fprintf(out, "  Error:   %s\n", st.Sync.Error)
			}
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent sync cycles",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/sync-history?limit=" + strconv.Itoa(limit))
			if err != nil {
				return fmt.Errorf("get sync history: %w", err)
			}
			var runs []model.RunRecord
			if err := decode(resp, &runs); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No sync cycles recorded.")
				return nil
			}

			fmt.Fprintf(out, "%-14s  %-7s  %-10s  %8s  %-10s  %s\n", "ID", "TRIGGER", "PHASE", "ROWS", "DURATION", "STARTED")
			fmt.Fprintf(out, "%-14s  %-7s  %-10s  %8s  %-10s  %s\n", "--", "-------", "-----", "----", "--------", "-------")
			for _, r := range runs {
				fmt.Fprintf(out, "%-14s  %-7s  %-10s  %8s  %-10s  %s\n",
					r.ID, r.Trigger, r.Phase, humanize.Comma(int64(r.Rows)),
					r.Duration().Round(time.Millisecond), humanize.Time(r.StartedAt))
				if r.Error != "" {
					fmt.Fprintf(out, "    error: %s\n", r.Error)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of cycles to list")
	return cmd
}
