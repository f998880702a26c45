package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GoArmGo/ShopTrack/internal/database/client"
	"github.com/GoArmGo/ShopTrack/internal/di"
)

// shoptrack migrate [up|down]
var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply (up, default) or roll back (down) database migrations",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		direction := "up"
		if len(args) == 1 {
			direction = args[0]
		}

		cfg, logger, err := di.LoadRuntime()
		if err != nil {
			return err
		}

		db, err := client.NewClient(cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		switch direction {
		case "up":
			return db.Migrate()
		case "down":
			return db.MigrateDown()
		default:
			return fmt.Errorf("unknown direction %q", direction)
		}
	},
}
