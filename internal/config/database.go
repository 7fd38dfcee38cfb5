package config

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/intelliapply/internal/models"
)

// InitDatabase opens the Postgres pool and migrates the jobs, profiles and
// searches tables.
func InitDatabase(cfg *Config) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.Server.Env == "development" {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseDSN()), &gorm.Config{
		Logger:      logger.Default.LogMode(level),
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	log.Printf("✅ Database connected (pool: %d open, %d idle)", cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)

	if err := db.AutoMigrate(&models.Profile{}, &models.Search{}, &models.Job{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	log.Println("✅ Schema migrated: profiles, searches, jobs")

	return db, nil
}
