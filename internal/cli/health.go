package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/sheetsync/pkg/model"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is up",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/health")
			if err != nil {
				return fmt.Errorf("health check: %w", err)
			}
			var h model.HealthResponse
			if err := decode(resp, &h); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Server:    %s (version %s, %s)\n", h.Status, h.Version, h.GoVersion)
			fmt.Fprintf(out, "Uptime:    %s\n", h.Uptime)
			fmt.Fprintf(out, "Auto-sync: %s\n", h.Scheduler)
			if h.LastSync != nil {
				fmt.Fprintf(out, "Last sync: %s\n", humanize.Time(*h.LastSync))
			} else {
				fmt.Fprintln(out, "Last sync: never")
			}
			return nil
		},
	}
}
