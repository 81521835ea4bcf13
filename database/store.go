package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/senpow/italy-restaurant-booking/booking"
	"github.com/senpow/italy-restaurant-booking/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReservationStore keeps reservations in a gorm database. Every transaction of
// a date first locks that date's row in reservation_days.
type ReservationStore struct {
	DB       *gorm.DB
	Attempts int
}

var _ booking.Store = (*ReservationStore)(nil)

func NewReservationStore(db *gorm.DB) *ReservationStore {
	return &ReservationStore{DB: db, Attempts: defaultAttempts}
}

func (s *ReservationStore) ListConfirmedByDate(ctx context.Context, date string) ([]models.Reservation, error) {
	return confirmedByDate(s.DB.WithContext(ctx), date)
}

func (s *ReservationStore) ListByDate(ctx context.Context, date string) ([]models.Reservation, error) {
	var reservations []models.Reservation
	if err := s.DB.WithContext(ctx).
		Where("date = ?", date).
		Order("time_slot ASC, table_number ASC").
		Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("list reservations of %s: %w", date, err)
	}
	return reservations, nil
}

func (s *ReservationStore) ListByUser(ctx context.Context, userID string) ([]models.Reservation, error) {
	var reservations []models.Reservation
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC, time_slot DESC").
		Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("list reservations of user %s: %w", userID, err)
	}
	return reservations, nil
}

func (s *ReservationStore) Get(ctx context.Context, id string) (*models.Reservation, error) {
	return getReservation(s.DB.WithContext(ctx), id)
}

func (s *ReservationStore) Delete(ctx context.Context, id string) error {
	result := s.DB.WithContext(ctx).Delete(&models.Reservation{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete reservation %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return booking.ErrReservationNotFound
	}
	return nil
}

// WithinDateTx creates the lock row of date if needed, locks it with
// SELECT ... FOR UPDATE and runs fn. SQLite has no row locks, there the single
// writer connection serialises the transactions instead. Deadlocks and busy
// errors are retried.
func (s *ReservationStore) WithinDateTx(ctx context.Context, date string, fn func(booking.Tx) error) error {
	return withRetry(ctx, s.Attempts, func() error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			day := models.ReservationDay{Date: date, CreatedAt: time.Now().UTC()}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&day).Error; err != nil {
				return fmt.Errorf("create day %s: %w", date, err)
			}
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&day, "date = ?", date).Error; err != nil {
				return fmt.Errorf("lock day %s: %w", date, err)
			}
			return fn(&gormTx{db: tx})
		})
	})
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) ConfirmedByDate(date string) ([]models.Reservation, error) {
	return confirmedByDate(t.db, date)
}

func (t *gormTx) Get(id string) (*models.Reservation, error) {
	return getReservation(t.db, id)
}

func (t *gormTx) Create(r *models.Reservation) error {
	if err := t.db.Create(r).Error; err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

func (t *gormTx) Save(r *models.Reservation) error {
	if err := t.db.Save(r).Error; err != nil {
		return fmt.Errorf("save reservation %s: %w", r.ID, err)
	}
	return nil
}

func confirmedByDate(db *gorm.DB, date string) ([]models.Reservation, error) {
	var reservations []models.Reservation
	if err := db.
		Where("date = ? AND status = ?", date, models.ReservationStatusConfirmed).
		Order("time_slot ASC, table_number ASC").
		Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("list confirmed reservations of %s: %w", date, err)
	}
	return reservations, nil
}

func getReservation(db *gorm.DB, id string) (*models.Reservation, error) {
	var r models.Reservation
	if err := db.First(&r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, booking.ErrReservationNotFound
		}
		return nil, fmt.Errorf("get reservation %s: %w", id, err)
	}
	return &r, nil
}
