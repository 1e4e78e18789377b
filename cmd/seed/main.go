// Loads demo users and tasks: go run ./cmd/seed [-reset] [-seed=false]
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"taskmanager/internal/app"
	"taskmanager/internal/config"
	"taskmanager/internal/logging"
	"taskmanager/internal/seed"
)

func main() {
	reset := flag.Bool("reset", false, "truncate users and tasks and drop sessions first")
	load := flag.Bool("seed", true, "create demo users and tasks")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.App.Env)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	res, err := app.Seed(ctx, cfg, logger, *reset, *load)
	if err != nil {
		logger.Error("seed", "err", err)
		os.Exit(1)
	}
	if res.Users > 0 {
		for _, u := range seed.DemoUsers {
			logger.Info("demo account", "email", u.Email, "password", u.Password)
		}
	}
}
