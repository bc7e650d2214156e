package config

import (
	"fmt"

	"github.com/campus-lostfound/api-go/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InitDB connects to PostgreSQL and migrates the schema, including the unique
// (lost_report_id, found_report_id) index on matches.
func InitDB(cfg DatabaseConfig, debug bool, logger *zap.Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Report{}, &models.Match{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	logger.Info("Database ready", zap.String("host", cfg.Host), zap.String("name", cfg.Name))
	return db, nil
}
