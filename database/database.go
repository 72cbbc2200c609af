package database

import (
	"fmt"

	"fieldops-app/internal/domain/employees"
	"fieldops-app/internal/domain/havs"
	"fieldops-app/internal/domain/users"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB connects to Postgres and stores the handle in DB.
func InitDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), Config())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	DB = db
	zap.L().Info("connected to database")
	return db, nil
}

// Config is shared by every dialect so uniqueness errors translate the same way.
func Config() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		// identity
		&users.User{},
		&employees.Vehicle{},
		&employees.Employee{},

		// havs
		&havs.Week{},
		&havs.Member{},
		&havs.Entry{},
		&havs.Revision{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	zap.L().Info("schema migrated")
	return nil
}
