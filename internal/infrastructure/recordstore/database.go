package recordstore

import (
	"fmt"
	"time"

	"github.com/letterdesk/backend/internal/infrastructure/config"
	"github.com/letterdesk/backend/internal/infrastructure/logger"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenPostgres connects to the production Postgres database with the
// configured pool settings. When tracing is requested the otelgorm
// plugin instruments every query.
func OpenPostgres(cfg *config.Config, zapLogger *zap.Logger) (*gorm.DB, error) {
	gormLogger := logger.NewGormLogger(zapLogger, logger.MapGormLogLevel(cfg.Log.Level))

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.Database.ConnMaxIdleTime) * time.Minute)

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := db.Use(otelgorm.NewPlugin(otelgorm.WithDBName(cfg.Database.DBName))); err != nil {
			return nil, fmt.Errorf("enable database tracing: %w", err)
		}
	}

	return db, nil
}

// OpenSQLite opens a sqlite database, ":memory:" included. Used by
// tests and local development without Postgres.
func OpenSQLite(path string, zapLogger *zap.Logger) (*gorm.DB, error) {
	gormLogger := logger.NewGormLogger(zapLogger, logger.MapGormLogLevel("warn"))
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	return db, nil
}
