package database

import (
	"fmt"

	"github.com/senpow/italy-restaurant-booking/models"
	"github.com/senpow/italy-restaurant-booking/utils"
	"gorm.io/gorm"
)

func migrationModels() []interface{} {
	return []interface{}{
		&models.Reservation{},
		&models.ReservationDay{},
	}
}

// Migrate creates or updates the reservation tables and checks they exist
// afterwards.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(migrationModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, m := range migrationModels() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return fmt.Errorf("parse model: %w", err)
		}
		if !db.Migrator().HasTable(m) {
			return fmt.Errorf("table %s missing after migration", stmt.Schema.Table)
		}
		utils.InfoLogger.Printf("Table verified: %s", stmt.Schema.Table)
	}
	return nil
}
