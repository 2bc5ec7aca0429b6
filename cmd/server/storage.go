package main

import (
	"context"
	"fmt"

	"github.com/taskhub/backend/pkg/auth"
	"github.com/taskhub/backend/pkg/config"
	"github.com/taskhub/backend/pkg/health"
	"github.com/taskhub/backend/pkg/health/checkers"
	pgrepo "github.com/taskhub/backend/pkg/repository/postgres"
	sqliterepo "github.com/taskhub/backend/pkg/repository/sqlite"
	"github.com/taskhub/backend/pkg/storage/postgres"
	"github.com/taskhub/backend/pkg/storage/sqlite"
	"github.com/taskhub/backend/pkg/task"
)

// stores bundles the repositories for the configured driver.
type stores struct {
	users   auth.UserRepository
	tasks   task.Repository
	checker health.Checker
	close   func() error
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath, true)
		if err != nil {
			return stores{}, err
		}
		if err := sqliterepo.Migrate(db); err != nil {
			return stores{}, fmt.Errorf("migrate sqlite: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return stores{}, err
		}
		return stores{
			users:   sqliterepo.NewUserRepository(db),
			tasks:   sqliterepo.NewTaskRepository(db),
			checker: checkers.NewGormChecker(db),
			close:   sqlDB.Close,
		}, nil
	default:
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			return stores{}, fmt.Errorf("postgres connect: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return stores{}, err
		}
		return stores{
			users:   pgrepo.NewUserRepository(pool),
			tasks:   pgrepo.NewTaskRepository(pool),
			checker: checkers.NewPostgresChecker(pool),
			close: func() error {
				pool.Close()
				return nil
			},
		}, nil
	}
}
