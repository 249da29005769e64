package config

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/resumeai/internal/models"
)

func InitDatabase(cfg *Config) (*gorm.DB, error) {
	var dia gorm.Dialector
	if cfg.Database.Driver == "postgres" {
		dia = postgres.Open(cfg.GetDatabaseDSN())
	} else {
		if err := ensureParentDir(cfg.Database.Path); err != nil {
			return nil, err
		}
		dia = sqlite.Open(cfg.Database.Path)
	}

	logLevel := logger.Silent
	if cfg.Server.Env == "development" {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(dia, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	zap.S().Named("database").Infow("Database connected", "driver", cfg.Database.Driver)

	if err := db.AutoMigrate(&models.DemoRun{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate database")
	}

	zap.S().Named("database").Info("Database migration completed")

	return db, nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", dir)
	}
	return nil
}
