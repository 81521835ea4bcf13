package booking

import (
	"fmt"
	"time"
)

// DefaultDuration is how long a table is held for a reservation, in minutes.
const DefaultDuration = 120

// Window is the half-open interval [Start, End) in minutes since midnight.
type Window struct {
	Start int
	End   int
}

// ToMinutes converts a wall clock "HH:mm" into minutes since midnight.
func ToMinutes(hhmm string) (int, error) {
	if len(hhmm) != 5 || hhmm[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, hhmm)
	}
	for i, c := range hhmm {
		if i == 2 {
			continue
		}
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, hhmm)
		}
	}

	hours := int(hhmm[0]-'0')*10 + int(hhmm[1]-'0')
	minutes := int(hhmm[3]-'0')*10 + int(hhmm[4]-'0')
	if hours > 23 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, hhmm)
	}
	return hours*60 + minutes, nil
}

// Overlaps reports whether [startA, endA) and [startB, endB) share an instant.
// Windows that only touch at a boundary do not overlap.
func Overlaps(startA, endA, startB, endB int) bool {
	return startA < endB && startB < endA
}

// WindowFor builds the window of a booking starting at start. A non-positive
// duration falls back to DefaultDuration.
func WindowFor(start string, duration int) (Window, error) {
	begin, err := ToMinutes(start)
	if err != nil {
		return Window{}, err
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	return Window{Start: begin, End: begin + duration}, nil
}

func (w Window) Overlaps(other Window) bool {
	return Overlaps(w.Start, w.End, other.Start, other.End)
}

// StartTime resolves date + slot to an instant in the restaurant's timezone.
func StartTime(date, slot string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	minutes, err := ToMinutes(slot)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, loc), nil
}
