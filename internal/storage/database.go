package storage

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	log.Info().Str("module", "storage").Msg("database connected")
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&User{},
		&Conference{},
		&Participant{},
		&SeenConference{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	log.Info().Str("module", "storage").Msg("database migrated")
	return nil
}
