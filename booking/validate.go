package booking

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	MinPartySize  = 1
	MaxPartySize  = 6
	minNameLength = 2
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidateDate accepts YYYY-MM-DD strings that name a real calendar day.
func ValidateDate(date string) error {
	if !datePattern.MatchString(date) {
		return invalid("date", "Invalid date format. Use YYYY-MM-DD.")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return invalid("date", fmt.Sprintf("%s is not a valid calendar date.", date))
	}
	return nil
}

// ValidateSlot accepts only the start times offered by the catalog.
func ValidateSlot(catalog *Catalog, slot string) error {
	if catalog.HasSlot(slot) {
		return nil
	}
	return invalid("time", fmt.Sprintf("Invalid time. Available times: %s", strings.Join(catalog.SlotTimes(), ", ")))
}

func ValidatePartySize(size int) error {
	if size < MinPartySize || size > MaxPartySize {
		return partySizeError()
	}
	return nil
}

// ParsePartySize reads a party size sent as text, e.g. "4".
func ParsePartySize(raw string) (int, error) {
	size, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, partySizeError()
	}
	return size, nil
}

func partySizeError() error {
	return invalid("partySize", fmt.Sprintf("Party size must be between %d and %d.", MinPartySize, MaxPartySize))
}

// ValidateName checks the guest name after trimming and returns the trimmed form.
func ValidateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if len([]rune(trimmed)) < minNameLength {
		return "", invalid("name", "Please provide a valid name (at least 2 characters).")
	}
	return trimmed, nil
}

// ValidateEmail accepts the empty string, the address is optional.
func ValidateEmail(email string) error {
	if email == "" || strings.Contains(email, "@") {
		return nil
	}
	return invalid("email", "Please provide a valid email address.")
}

// ValidateSlotQuery runs the checks shared by availability and booking.
func ValidateSlotQuery(catalog *Catalog, date, slot string, partySize int) error {
	if err := ValidateDate(date); err != nil {
		return err
	}
	if err := ValidateSlot(catalog, slot); err != nil {
		return err
	}
	return ValidatePartySize(partySize)
}
