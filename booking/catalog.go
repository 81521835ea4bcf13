package booking

import (
	"fmt"
)

type Shape string

const (
	ShapeRound       Shape = "round"
	ShapeRectangular Shape = "rectangular"
)

type Period string

const (
	PeriodLunch  Period = "lunch"
	PeriodDinner Period = "dinner"
)

// Table is a physical table of the dining room. Shape is cosmetic.
type Table struct {
	Number   int    `json:"tableNumber" yaml:"number"`
	Capacity int    `json:"capacity" yaml:"capacity"`
	Location string `json:"location" yaml:"location"`
	Shape    Shape  `json:"shape" yaml:"shape"`
}

// TimeSlot is one of the offered start times of the service day.
type TimeSlot struct {
	Time   string `json:"time" yaml:"time"`
	Period Period `json:"period" yaml:"period"`
}

// Catalog holds the tables and slots of the restaurant. It is built once at
// startup and never changes afterwards, accessors hand out copies.
type Catalog struct {
	tables  []Table
	slots   []TimeSlot
	byTable map[int]int
	bySlot  map[string]int
}

// NewCatalog validates tables and slots and freezes them in the given order.
func NewCatalog(tables []Table, slots []TimeSlot) (*Catalog, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("catalog needs at least one table")
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("catalog needs at least one time slot")
	}

	c := &Catalog{
		tables:  make([]Table, len(tables)),
		slots:   make([]TimeSlot, len(slots)),
		byTable: make(map[int]int, len(tables)),
		bySlot:  make(map[string]int, len(slots)),
	}

	for i, t := range tables {
		if t.Number <= 0 {
			return nil, fmt.Errorf("table #%d: number must be positive", i+1)
		}
		if t.Capacity <= 0 {
			return nil, fmt.Errorf("table %d: capacity must be positive", t.Number)
		}
		if _, dup := c.byTable[t.Number]; dup {
			return nil, fmt.Errorf("table %d defined twice", t.Number)
		}
		switch t.Shape {
		case ShapeRound, ShapeRectangular:
		case "":
			t.Shape = ShapeRectangular
		default:
			return nil, fmt.Errorf("table %d: unknown shape %q", t.Number, t.Shape)
		}
		c.tables[i] = t
		c.byTable[t.Number] = i
	}

	for i, s := range slots {
		if _, err := ToMinutes(s.Time); err != nil {
			return nil, fmt.Errorf("slot #%d: %w", i+1, err)
		}
		if s.Period != PeriodLunch && s.Period != PeriodDinner {
			return nil, fmt.Errorf("slot %s: unknown period %q", s.Time, s.Period)
		}
		if _, dup := c.bySlot[s.Time]; dup {
			return nil, fmt.Errorf("slot %s defined twice", s.Time)
		}
		c.slots[i] = s
		c.bySlot[s.Time] = i
	}

	return c, nil
}

// DefaultCatalog is the dining room of Trattoria Bella Vista.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultTables(), DefaultSlots())
	if err != nil {
		panic(err)
	}
	return c
}

func DefaultTables() []Table {
	return []Table{
		{Number: 1, Capacity: 3, Location: "Fenster (Links)", Shape: ShapeRound},
		{Number: 2, Capacity: 3, Location: "Fenster (Rechts)", Shape: ShapeRound},
		{Number: 3, Capacity: 2, Location: "Intim / Ecke", Shape: ShapeRectangular},
		{Number: 4, Capacity: 4, Location: "Zentral", Shape: ShapeRectangular},
		{Number: 5, Capacity: 6, Location: "Familienbereich", Shape: ShapeRectangular},
		{Number: 6, Capacity: 6, Location: "Familienbereich", Shape: ShapeRectangular},
	}
}

// DefaultSlots: lunch 12:00-14:00, dinner 18:00-20:30, every half hour.
func DefaultSlots() []TimeSlot {
	return []TimeSlot{
		{Time: "12:00", Period: PeriodLunch},
		{Time: "12:30", Period: PeriodLunch},
		{Time: "13:00", Period: PeriodLunch},
		{Time: "13:30", Period: PeriodLunch},
		{Time: "14:00", Period: PeriodLunch},
		{Time: "18:00", Period: PeriodDinner},
		{Time: "18:30", Period: PeriodDinner},
		{Time: "19:00", Period: PeriodDinner},
		{Time: "19:30", Period: PeriodDinner},
		{Time: "20:00", Period: PeriodDinner},
		{Time: "20:30", Period: PeriodDinner},
	}
}

func (c *Catalog) Tables() []Table {
	out := make([]Table, len(c.tables))
	copy(out, c.tables)
	return out
}

func (c *Catalog) Slots() []TimeSlot {
	out := make([]TimeSlot, len(c.slots))
	copy(out, c.slots)
	return out
}

func (c *Catalog) SlotTimes() []string {
	out := make([]string, len(c.slots))
	for i, s := range c.slots {
		out[i] = s.Time
	}
	return out
}

// SlotsFor returns the slots of one service period in catalog order.
func (c *Catalog) SlotsFor(period Period) []TimeSlot {
	var out []TimeSlot
	for _, s := range c.slots {
		if s.Period == period {
			out = append(out, s)
		}
	}
	return out
}

func (c *Catalog) Table(number int) (Table, bool) {
	idx, ok := c.byTable[number]
	if !ok {
		return Table{}, false
	}
	return c.tables[idx], true
}

func (c *Catalog) HasSlot(hhmm string) bool {
	_, ok := c.bySlot[hhmm]
	return ok
}

func (c *Catalog) Slot(hhmm string) (TimeSlot, bool) {
	idx, ok := c.bySlot[hhmm]
	if !ok {
		return TimeSlot{}, false
	}
	return c.slots[idx], true
}

func (c *Catalog) TotalSeats() int {
	total := 0
	for _, t := range c.tables {
		total += t.Capacity
	}
	return total
}

// MaxCapacity is the size of the largest table.
func (c *Catalog) MaxCapacity() int {
	max := 0
	for _, t := range c.tables {
		if t.Capacity > max {
			max = t.Capacity
		}
	}
	return max
}
