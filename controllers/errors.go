package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/senpow/italy-restaurant-booking/booking"
)

const genericApology = "Sorry, we cannot process your request right now. Please try again later."

// ErrNoPermission is returned when a guest touches someone else's data.
var ErrNoPermission = &CustomError{"You do not have permission"}

type CustomError struct {
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

// ErrorMapping maps one domain error to a status. An empty Message means the
// error text itself is safe to show.
type ErrorMapping struct {
	Error   error
	Status  int
	Message string
}

type ErrorMapper struct {
	mappings       []ErrorMapping
	defaultStatus  int
	defaultMessage string
}

func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{
		defaultStatus:  http.StatusInternalServerError,
		defaultMessage: genericApology,
	}
}

func (m *ErrorMapper) WithMapping(err error, status int, message string) *ErrorMapper {
	m.mappings = append(m.mappings, ErrorMapping{Error: err, Status: status, Message: message})
	return m
}

// Map returns the status and the message for err. Errors without a mapping
// get the default status and a message without internal detail. A store
// fault stays a server error even when the store timed out.
func (m *ErrorMapper) Map(err error) (int, string) {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, booking.ErrStoreFault) {
		return http.StatusGatewayTimeout, "The request timed out. Please try again."
	}
	for _, mapping := range m.mappings {
		if errors.Is(err, mapping.Error) {
			if mapping.Message == "" {
				return mapping.Status, err.Error()
			}
			return mapping.Status, mapping.Message
		}
	}
	return m.defaultStatus, m.defaultMessage
}

var reservationErrors = NewErrorMapper().
	WithMapping(booking.ErrInvalidInput, http.StatusBadRequest, "").
	WithMapping(booking.ErrReservationNotFound, http.StatusNotFound, "Reservation not found.").
	WithMapping(booking.ErrTableUnavailable, http.StatusConflict, "Sorry, this time slot is fully booked. Please choose another time.").
	WithMapping(booking.ErrAlreadyCancelled, http.StatusConflict, "This reservation has already been cancelled.").
	WithMapping(booking.ErrCancellationWindowClosed, http.StatusUnprocessableEntity,
		"Reservations can only be cancelled online more than 24 hours in advance. Please call the restaurant.")
