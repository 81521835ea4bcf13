package models

import "time"

const (
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusCancelled = "cancelled"
)

const (
	SourceWeb     = "web"
	SourceVoiceAI = "voice-ai"
	SourceAdmin   = "admin"
)

type Reservation struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID      string    `gorm:"type:varchar(128);not null;index" json:"user_id"`
	UserName    string    `gorm:"type:varchar(255);not null" json:"user_name"`
	UserEmail   string    `gorm:"type:varchar(255)" json:"user_email"`
	PhoneNumber string    `gorm:"type:varchar(50)" json:"phone_number,omitempty"`
	TableNumber int       `gorm:"not null" json:"table_number"`
	Date        string    `gorm:"type:varchar(10);not null;index:idx_reservations_date_status" json:"date"`
	TimeSlot    string    `gorm:"type:varchar(5);not null" json:"time_slot"`
	Duration    int       `gorm:"not null;default:120" json:"duration"`
	PartySize   int       `gorm:"not null" json:"party_size"`
	Status      string    `gorm:"type:varchar(20);not null;default:'confirmed';index:idx_reservations_date_status" json:"status"`
	Source      string    `gorm:"type:varchar(20);not null;default:'web'" json:"source"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (r *Reservation) IsConfirmed() bool {
	return r.Status == ReservationStatusConfirmed
}

// ReservationDay is the lock row of a date partition. Booking transactions
// lock it before reading the day's reservations so that concurrent bookings of
// the same date run one after the other.
type ReservationDay struct {
	Date      string    `gorm:"primaryKey;type:varchar(10)"`
	CreatedAt time.Time `gorm:"not null"`
}
