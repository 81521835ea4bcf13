package events

import (
	"context"
	"errors"
	"time"
)

const EntityReservation = "reservation"

// Reservation lifecycle actions.
const (
	ActionCreated   = "created"
	ActionCancelled = "cancelled"
	ActionUpdated   = "updated"
	ActionDeleted   = "deleted"
)

// Event is one change of a reservation, delivered to staff screens and the
// message broker after the change has been committed.
type Event struct {
	Entity     string      `json:"entity"`
	Action     string      `json:"action"`
	ResourceID string      `json:"resourceId"`
	Date       string      `json:"date"`
	Data       interface{} `json:"data,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

// Topic is "<entity>.<action>", e.g. reservation.created.
func (e Event) Topic() string {
	return e.Entity + "." + e.Action
}

// NewReservationEvent stamps a reservation event with the current UTC time.
func NewReservationEvent(action, id, date string, data interface{}) Event {
	return Event{
		Entity:     EntityReservation,
		Action:     action,
		ResourceID: id,
		Date:       date,
		Data:       data,
		Timestamp:  time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Multi delivers an event to every publisher, one failing sink does not stop
// the others.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
