package cmd

import (
	"context"
	"fmt"

	"identity-reconciler/core/config"
	"identity-reconciler/core/contact"
	"identity-reconciler/core/database"
	"identity-reconciler/core/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// cliEnv bundles what every command needs.
type cliEnv struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

// bootstrap loads configuration, builds the logger and connects to the database.
func bootstrap(ctx context.Context) (*cliEnv, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logg = logg.With(zap.String("driver", cfg.Database.Driver))

	if err := contact.EnsureSchema(ctx, db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return &cliEnv{cfg: cfg, logger: logg, db: db}, nil
}

func (r *cliEnv) close() {
	_ = r.logger.Sync()
	if err := database.Close(r.db); err != nil {
		r.logger.Warn("Failed to close database", zap.Error(err))
	}
}
