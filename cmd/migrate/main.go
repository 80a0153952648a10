package main

import (
	"context"
	"flag"
	"log"
	"time"

	"quiz-sitting/internal/config"
	"quiz-sitting/internal/database"
	"quiz-sitting/internal/logger"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

func main() {
	down := flag.Bool("down", false, "roll back every applied migration instead of applying new ones")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	l := logger.Get()
	defer logger.Sync()

	db, err := database.NewDB(cfg)
	if err != nil {
		l.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	dir := database.Up
	if *down {
		dir = database.Down
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	applied, err := database.RunMigrations(ctx, db, dir)
	if err != nil {
		l.Fatal("Failed to run migrations", zap.Error(err), zap.String("direction", string(dir)))
	}

	if len(applied) == 0 {
		color.Yellow("No migrations to run (%s)", dir)
		return
	}
	for _, name := range applied {
		color.Green("  %s %s", dir, name)
	}
	color.Cyan("Ran %d migration(s) on %s", len(applied), cfg.DB.Driver)
}
