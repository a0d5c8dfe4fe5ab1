package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/pose-timer/internal/config"
	"github.com/oshokin/pose-timer/internal/service/control"
	"github.com/oshokin/pose-timer/internal/version"
)

var (
	// configPath stores the configuration file path.
	configPath string
	// serverAddress overrides the server address from the configuration file.
	serverAddress string

	// rootCmd represents the base command for controlling the shared timer.
	rootCmd = &cobra.Command{
		Use:   "pose-timer",
		Short: "Control the shared pose timer.",
		Long: `Sends commands to a running pose-timer-server and prints the resulting state.

Without a subcommand the current state is shown. The follow subcommand keeps
a local timer in step with the server, the console subcommand opens an
interactive prompt. Server address can be provided by flag or loaded from
configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return control.Run(ctx, &control.Options{
				ConfigPath:    configPath,
				ServerAddress: serverAddress,
			})
		},
	}
)

// Execute runs the pose-timer CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename,
		"path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&serverAddress, "server", "s", "",
		"server address, overrides the configuration file")

	for _, c := range timerCommands {
		rootCmd.AddCommand(c.build())
	}

	rootCmd.AddCommand(statusCmd, followCmd, consoleCmd)
}
