package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mindstash/mindstash/pkg/log"
	"github.com/mindstash/mindstash/pkg/srv"
)

var serveCmd = &cobra.Command{
	Use:           "serve",
	Short:         "Serve the memory engine over MCP stdio",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting mindstash")

		services, err := NewServices(ctx)
		if err != nil {
			return err
		}

		errs := srv.StartServices(ctx, services)
		if err := srv.ShutdownServices(ctx, services, errs); err != nil {
			return err
		}

		logger.Info().Msg("mindstash has been shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
