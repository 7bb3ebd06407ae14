package repository

import (
	"github.com/AnemiB/SipStop/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB connects to Postgres and migrates the schema.
func InitDB(dsn string, debug bool) (*gorm.DB, error) {
	level := logger.Warn
	if debug {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Drink{},
		&models.Note{},
		&models.Comment{},
		&models.NoteLastViewed{},
		&models.OnboardingState{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
