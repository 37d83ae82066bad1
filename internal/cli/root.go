package cli

import (
	"log/slog"
	"os"

	"github.com/me/sheetsync/internal/logging"
	"github.com/spf13/cobra"
)

var (
	flagServer    string
	flagAPIKey    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
	client *Client
)

// defaultServer returns the default server URL, checking SHEETSYNC_SERVER env var first.
func defaultServer() string {
	if s := os.Getenv("SHEETSYNC_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8000"
}

// resolveAPIKey prefers the flag, then SHEETSYNC_API_KEY, then the key saved by login.
func resolveAPIKey() string {
	if flagAPIKey != "" {
		return flagAPIKey
	}
	if k := os.Getenv("SHEETSYNC_API_KEY"); k != "" {
		return k
	}
	return LoadAPIKey()
}

// NewRootCmd creates the root cobra command for the sheetsync CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sheetsync",
		Short: "sheetsync: Google Sheets to database sync",
		Long:  "sheetsync previews sheets, runs one-shot syncs, and controls the recurring auto-sync job on a sheetsync server.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLoggerWithWriter(logging.ParseLevel(flagLogLevel), flagLogFormat, cmd.ErrOrStderr())
			client = NewClient(flagServer, resolveAPIKey(), logger)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "sheetsync server URL (or SHEETSYNC_SERVER env)")
	root.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "API key (or SHEETSYNC_API_KEY env, or the key saved by login)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newLoginCmd(),
		newHealthCmd(),
		newStatusCmd(),
		newHistoryCmd(),
		newConnectCmd(),
		newSyncCmd(),
		newStartCmd(),
		newStopCmd(),
	)

	return root
}
