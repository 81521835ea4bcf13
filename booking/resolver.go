package booking

import "sort"

// TableSet is a set of table numbers.
type TableSet map[int]struct{}

func NewTableSet(numbers ...int) TableSet {
	s := make(TableSet, len(numbers))
	for _, n := range numbers {
		s.Add(n)
	}
	return s
}

func (s TableSet) Add(number int) {
	s[number] = struct{}{}
}

func (s TableSet) Has(number int) bool {
	_, ok := s[number]
	return ok
}

// Sorted returns the members in ascending order.
func (s TableSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Resolution is the outcome of a table lookup. Table is zero when nothing is
// available.
type Resolution struct {
	Available bool `json:"available"`
	Table     int  `json:"table,omitempty"`
}

// Resolve picks the smallest free table that seats capacity guests. Tables of
// equal size keep their catalog order.
func Resolve(tables []Table, capacity int, occupied TableSet) Resolution {
	candidates := make([]Table, 0, len(tables))
	for _, t := range tables {
		if t.Capacity >= capacity {
			candidates = append(candidates, t)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Capacity < candidates[j].Capacity
	})

	for _, t := range candidates {
		if !occupied.Has(t.Number) {
			return Resolution{Available: true, Table: t.Number}
		}
	}
	return Resolution{Available: false}
}

// ResolvePreferred checks one specific table instead of searching for the best
// fit. ErrUnknownTable is returned when the number is not in tables.
func ResolvePreferred(tables []Table, capacity int, occupied TableSet, number int) (Resolution, error) {
	for _, t := range tables {
		if t.Number != number {
			continue
		}
		if t.Capacity < capacity || occupied.Has(t.Number) {
			return Resolution{Available: false}, nil
		}
		return Resolution{Available: true, Table: t.Number}, nil
	}
	return Resolution{}, ErrUnknownTable
}
