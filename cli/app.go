package cli

import (
	"fmt"

	"github.com/senpow/italy-restaurant-booking/booking"
	"github.com/senpow/italy-restaurant-booking/config"
	"github.com/senpow/italy-restaurant-booking/database"
	"github.com/senpow/italy-restaurant-booking/events"
	"github.com/senpow/italy-restaurant-booking/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// app is the wiring shared by the commands that touch the database.
type app struct {
	Config  *config.Config
	DB      *gorm.DB
	Catalog *booking.Catalog
}

func enableDebugLogging() {
	utils.InfoLogger.SetLevel(logrus.DebugLevel)
}

// openApp loads the configuration, connects and migrates the database and
// reads the table catalog.
func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("migrate: %w", err)
	}

	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		closeDB(db)
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	utils.InfoLogger.Debugf("Catalog: %d tables, %d seats, %d slots",
		len(catalog.Tables()), catalog.TotalSeats(), len(catalog.Slots()))

	return &app{Config: cfg, DB: db, Catalog: catalog}, nil
}

func (a *app) service(publisher events.Publisher) *booking.Service {
	opts := []booking.Option{booking.WithLocation(a.Config.Location)}
	if publisher != nil {
		opts = append(opts, booking.WithPublisher(publisher))
	}
	return booking.NewService(database.NewReservationStore(a.DB), a.Catalog, opts...)
}

func (a *app) Close() {
	closeDB(a.DB)
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		utils.ErrorLogger.Printf("Error closing database: %v", err)
	}
}
