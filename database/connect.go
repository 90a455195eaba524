package database

import (
	"fmt"
	"strconv"

	"vbtix/config"
	"vbtix/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the store and migrates the schema. The returned handle is
// injected into the services; nothing holds it as a package global, so tests
// can substitute their own database.
func Connect() (*gorm.DB, error) {
	p := config.Config("DB_PORT")
	port, err := strconv.ParseUint(p, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("parse database port %q: %w", p, err)
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		config.Config("DB_HOST"), port, config.Config("DB_USER"),
		config.Config("DB_PASSWORD"), config.Config("DB_NAME"))
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate is shared with tests, which run it against an in-memory database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Organizer{},
		&model.Event{},
		&model.TicketType{},
		&model.Order{},
		&model.OrderItem{},
		&model.Ticket{},
		&model.Wristband{},
		&model.ScanLog{},
	)
}
