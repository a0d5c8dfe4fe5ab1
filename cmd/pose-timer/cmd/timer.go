package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/pose-timer/internal/service/control"
)

// timerCommand describes a subcommand that sends one timer command.
type timerCommand struct {
	use     string
	aliases []string
	short   string
	args    cobra.PositionalArgs
}

//nolint:gochecknoglobals // Command table read once by init.
var timerCommands = []timerCommand{
	{use: "start [on|off]", short: "Start the countdown, optionally forcing the alerts.", args: cobra.MaximumNArgs(1)},
	{use: "stop", aliases: []string{"pause"}, short: "Pause the countdown.", args: cobra.NoArgs},
	{use: "reset", short: "Go back to the start of the current segment.", args: cobra.NoArgs},
	{use: "next", short: "Switch between pose and break.", args: cobra.NoArgs},
	{use: "stop-alarm", aliases: []string{"silence"}, short: "Silence the alarm.", args: cobra.NoArgs},
	{use: "add", short: "Add one minute.", args: cobra.NoArgs},
	{use: "subtract", aliases: []string{"sub"}, short: "Take one minute away.", args: cobra.NoArgs},
	{use: "duration <length>", short: "Set the segment length.", args: cobra.ExactArgs(1)},
	{use: "poses <length>...", short: "Set the pose-change schedule.", args: cobra.ArbitraryArgs},
	{
		use:   "sync <running|stopped> <duration> <remaining> [alarm]",
		short: "Overwrite the server timer with a known state.",
		args:  cobra.RangeArgs(3, 4),
	},
}

func (c timerCommand) build() *cobra.Command {
	return &cobra.Command{
		Use:     c.use,
		Aliases: c.aliases,
		Short:   c.short,
		Args:    c.args,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := control.ParseCommand(cmd.Name(), args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return control.Run(ctx, &control.Options{
				ConfigPath:    configPath,
				ServerAddress: serverAddress,
				Command:       &parsed,
				Out:           cmd.OutOrStdout(),
			})
		},
	}
}

// statusCmd prints the server state without changing it.
//
//nolint:gochecknoglobals // Cobra command tree.
var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"s"},
	Short:   "Show the timer state.",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		return control.Run(ctx, &control.Options{
			ConfigPath:    configPath,
			ServerAddress: serverAddress,
			Out:           cmd.OutOrStdout(),
		})
	},
}
