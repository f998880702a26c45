package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// bootstrap-логгер (используется только на этапе инициализации, пока нет основного)
var bootstrapLogger = slog.New(
	slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		bootstrapLogger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "shoptrack",
	Short:         "ShopTrack: inventory tracking API",
	Long:          "ShopTrack keeps per-user product stock and an append-only history of stock movements.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(migrateCmd)
}
