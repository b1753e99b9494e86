package main

import (
	"os"

	"notekeeper-be/internal/config"
	"notekeeper-be/internal/model"
	"notekeeper-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	// 1. Load Environment Variables
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.PoolConfig{MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	color.Cyan("Starting GORM migration...")

	step := 0
	err = model.Migrate(db, func(name string) {
		step++
		color.Yellow("Step %d: %s", step, name)
	})
	if err != nil {
		color.Red("Error: migration failed: %v", err)
		os.Exit(1)
	}

	color.Green("Success: database migration completed (%d steps).", step)
}
