package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"juicebar-system/internal/database/models"
)

func NewConnection(dsn string, log *logrus.Logger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DSN is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	log.WithFields(logrus.Fields{
		"max_open_conns": 20,
		"max_idle_conns": 5,
	}).Info("database connection established")

	return db, nil
}

// MigrateMenuDB creates or updates every table the menu engine reads or writes.
// Order matters: referenced tables first.
func MigrateMenuDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.CustomIngredient{},
		&models.IngredientGroup{},
		&models.IngredientGroupItem{},
		&models.MenuCategory{},
		&models.CategoryVolume{},
		&models.MenuItem{},
		&models.MenuItemVolume{},
		&models.AdditionalItem{},
		&models.CategoryIngredientConfig{},
		&models.MenuItemIngredientConfig{},
	)
}
