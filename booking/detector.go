package booking

import (
	"fmt"

	"github.com/senpow/italy-restaurant-booking/models"
)

// OccupiedTables returns the tables held by confirmed reservations whose window
// overlaps [start, start+duration). Each reservation is measured with its own
// duration, or DefaultDuration when it has none.
func OccupiedTables(reservations []models.Reservation, start string, duration int) (TableSet, error) {
	return OccupiedTablesExcluding(reservations, start, duration, "")
}

// OccupiedTablesExcluding works like OccupiedTables but skips the reservation
// with id excludeID, so an edited reservation does not collide with itself.
func OccupiedTablesExcluding(reservations []models.Reservation, start string, duration int, excludeID string) (TableSet, error) {
	requested, err := WindowFor(start, duration)
	if err != nil {
		return nil, err
	}

	occupied := make(TableSet)
	for _, r := range reservations {
		if !r.IsConfirmed() || (excludeID != "" && r.ID == excludeID) {
			continue
		}
		held, err := WindowFor(r.TimeSlot, r.Duration)
		if err != nil {
			return nil, fmt.Errorf("reservation %s: %w", r.ID, err)
		}
		if requested.Overlaps(held) {
			occupied.Add(r.TableNumber)
		}
	}
	return occupied, nil
}
