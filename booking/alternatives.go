package booking

import "github.com/senpow/italy-restaurant-booking/models"

// SlotAvailability is the availability of a single slot for one party.
type SlotAvailability struct {
	Time      string `json:"time"`
	Period    Period `json:"period"`
	Available bool   `json:"available"`
	Table     int    `json:"table,omitempty"`
}

// AlternativeSlots lists, in catalog order, every slot other than requested
// that still has a table for partySize.
func AlternativeSlots(catalog *Catalog, reservations []models.Reservation, partySize int, requested string) ([]string, error) {
	overview, err := SlotOverview(catalog, reservations, partySize)
	if err != nil {
		return nil, err
	}

	alternatives := make([]string, 0, len(overview))
	for _, slot := range overview {
		if slot.Time == requested || !slot.Available {
			continue
		}
		alternatives = append(alternatives, slot.Time)
	}
	return alternatives, nil
}

// SlotOverview runs detector and resolver for every slot of the catalog.
func SlotOverview(catalog *Catalog, reservations []models.Reservation, partySize int) ([]SlotAvailability, error) {
	tables := catalog.Tables()
	slots := catalog.Slots()

	out := make([]SlotAvailability, 0, len(slots))
	for _, slot := range slots {
		occupied, err := OccupiedTables(reservations, slot.Time, DefaultDuration)
		if err != nil {
			return nil, err
		}
		res := Resolve(tables, partySize, occupied)
		out = append(out, SlotAvailability{
			Time:      slot.Time,
			Period:    slot.Period,
			Available: res.Available,
			Table:     res.Table,
		})
	}
	return out, nil
}
