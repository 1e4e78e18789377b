package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"taskmanager/internal/cache"
	"taskmanager/internal/config"
	"taskmanager/internal/repo"
	"taskmanager/internal/seed"
)

// Seed connects to storage, optionally wipes it, and loads demo data.
func Seed(ctx context.Context, cfg config.Config, log *slog.Logger, reset, load bool) (seed.Result, error) {
	db, err := newPostgres(cfg.PG.DSN)
	if err != nil {
		return seed.Result{}, err
	}
	defer db.Close()

	rdb, err := newRedis(cfg.Redis)
	if err != nil {
		return seed.Result{}, err
	}
	defer rdb.Close()

	if err := runMigrations(cfg.PG.DSN, cfg.PG.MigrationsDir); err != nil {
		return seed.Result{}, err
	}
	sessions := cache.NewRedisCache(rdb, sessionPrefix)

	if reset {
		if _, err := db.Exec(ctx, `TRUNCATE tasks, users RESTART IDENTITY CASCADE`); err != nil {
			return seed.Result{}, fmt.Errorf("truncate: %w", err)
		}
		if err := sessions.Purge(ctx); err != nil {
			return seed.Result{}, fmt.Errorf("purge sessions: %w", err)
		}
		log.Info("database reset")
	}
	if !load {
		return seed.Result{}, nil
	}

	tasks := repo.NewPGTaskRepo(db)
	svc := NewServices(tasks, repo.NewPGUserRepo(db), sessions, cfg.Auth, log)
	return seed.New(svc.Auth, svc.Tasks, tasks, time.Now().UnixNano(), log).Run(ctx)
}
