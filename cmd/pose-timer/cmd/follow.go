package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/pose-timer/internal/service/console"
	"github.com/oshokin/pose-timer/internal/service/follower"
)

var (
	// tolerance is the drift accepted before the follower resynchronizes.
	tolerance time.Duration
	// historyFile keeps the console history.
	historyFile string

	followCmd = &cobra.Command{
		Use:   "follow",
		Short: "Keep a local timer in step with the server.",
		Long: `Subscribes to the server event stream and mirrors it on a local timer,
logging alerts, pose changes and the alarm. Reconnects until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return follower.Run(ctx, &follower.Options{
				ConfigPath:    configPath,
				ServerAddress: serverAddress,
				Tolerance:     tolerance,
			})
		},
	}

	consoleCmd = &cobra.Command{
		Use:   "console",
		Short: "Open an interactive prompt.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return console.Run(ctx, &console.Options{
				ConfigPath:    configPath,
				ServerAddress: serverAddress,
				HistoryFile:   historyFile,
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	followCmd.Flags().DurationVar(&tolerance, "tolerance", follower.DefaultTolerance,
		"drift accepted before resynchronizing")
	consoleCmd.Flags().StringVar(&historyFile, "history", "", "file that keeps the command history")
}
