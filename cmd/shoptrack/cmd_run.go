package main

import (
	"github.com/spf13/cobra"

	"github.com/GoArmGo/ShopTrack/internal/app"
	"github.com/GoArmGo/ShopTrack/internal/di"
)

// runMode собирает приложение и запускает его в указанном режиме.
func runMode(cmd *cobra.Command, mode string) error {
	bootstrapLogger.Info("starting application", "mode", mode)

	application, err := di.BuildApp(cmd.Context())
	if err != nil {
		return err
	}
	return application.Run(cmd.Context(), mode)
}

// shoptrack serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMode(cmd, app.ModeServer)
	},
}

// shoptrack worker
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume stock movement events from RabbitMQ",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMode(cmd, app.ModeWorker)
	},
}
