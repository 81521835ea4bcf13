package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/senpow/italy-restaurant-booking/events"
	"github.com/senpow/italy-restaurant-booking/models"
	"github.com/senpow/italy-restaurant-booking/utils"
	"github.com/sirupsen/logrus"
)

// Store is the transactional reservation store. Plain reads are snapshots,
// only WithinDateTx gives a consistent read-check-write on one date.
type Store interface {
	ListConfirmedByDate(ctx context.Context, date string) ([]models.Reservation, error)
	ListByDate(ctx context.Context, date string) ([]models.Reservation, error)
	ListByUser(ctx context.Context, userID string) ([]models.Reservation, error)
	Get(ctx context.Context, id string) (*models.Reservation, error)
	Delete(ctx context.Context, id string) error

	// WithinDateTx runs fn in a transaction that is serialised with every
	// other transaction of the same date. An error from fn rolls back.
	WithinDateTx(ctx context.Context, date string, fn func(Tx) error) error
}

// Tx is the view of the store inside WithinDateTx.
type Tx interface {
	ConfirmedByDate(date string) ([]models.Reservation, error)
	Get(id string) (*models.Reservation, error)
	Create(r *models.Reservation) error
	Save(r *models.Reservation) error
}

// BookingRequest is a confirmed booking intent from any entry point.
type BookingRequest struct {
	Date      string
	Time      string
	PartySize int
	Name      string
	Phone     string
	Email     string
	UserID    string
	Source    string

	// PreferredTable is the table picked on the floor plan, 0 lets the
	// resolver choose.
	PreferredTable int
}

type AvailabilityQuery struct {
	Date      string
	Time      string
	PartySize int
}

// Availability answers a query for one slot. Alternatives are only filled when
// the slot is full.
type Availability struct {
	Available    bool     `json:"available"`
	Table        int      `json:"table,omitempty"`
	Alternatives []string `json:"alternatives,omitempty"`
}

// AdminEdit changes a reservation on behalf of staff. Nil fields stay as they
// are.
type AdminEdit struct {
	TableNumber *int
	Time        *string
	PartySize   *int
}

const (
	TableBooked    = "booked"
	TableTooSmall  = "too_small"
	TableAvailable = "available"
)

type TableStatus struct {
	Table
	Status string `json:"status"`
}

// TableMap is the floor plan of one slot for one party.
type TableMap struct {
	Tables    []TableStatus `json:"tables"`
	Suggested int           `json:"suggested,omitempty"`
}

// DaySheet lists the reservations of a day sorted by time. Bookings and Guests
// count confirmed reservations only.
type DaySheet struct {
	Date         string               `json:"date"`
	Reservations []models.Reservation `json:"reservations"`
	Bookings     int                  `json:"bookings"`
	Guests       int                  `json:"guests"`
}

// SlotOccupancy is how much of the dining room is held at a slot.
type SlotOccupancy struct {
	Time         string `json:"time"`
	Period       Period `json:"period"`
	TablesBooked int    `json:"tables_booked"`
	SeatsBooked  int    `json:"seats_booked"`
	TotalSeats   int    `json:"total_seats"`
}

type Option func(*Service)

func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// Service is the single booking module shared by every transport.
type Service struct {
	store     Store
	catalog   *Catalog
	clock     Clock
	loc       *time.Location
	publisher events.Publisher
	dispatch  *events.Async
}

func NewService(store Store, catalog *Catalog, opts ...Option) *Service {
	s := &Service{
		store:     store,
		catalog:   catalog,
		clock:     RealClock{},
		loc:       time.UTC,
		publisher: events.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dispatch = events.NewAsync(s.publisher, events.DefaultQueueSize, events.DefaultPublishTimeout)
	return s
}

// Flush waits until every event published so far has reached the publisher.
func (s *Service) Flush() {
	s.dispatch.Flush()
}

// Close delivers the queued events and stops the event worker.
func (s *Service) Close() error {
	return s.dispatch.Close()
}

func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// Today is the current date in the restaurant's timezone.
func (s *Service) Today() string {
	return s.clock.Now().In(s.loc).Format("2006-01-02")
}

// CheckAvailability is a snapshot read, the answer may be stale by the time
// the guest confirms.
func (s *Service) CheckAvailability(ctx context.Context, q AvailabilityQuery) (Availability, error) {
	if err := ValidateSlotQuery(s.catalog, q.Date, q.Time, q.PartySize); err != nil {
		return Availability{}, err
	}

	reservations, err := s.store.ListConfirmedByDate(ctx, q.Date)
	if err != nil {
		return Availability{}, s.fault("availability", err)
	}

	occupied, err := OccupiedTables(reservations, q.Time, DefaultDuration)
	if err != nil {
		return Availability{}, s.fault("availability", err)
	}
	res := Resolve(s.catalog.Tables(), q.PartySize, occupied)
	if res.Available {
		return Availability{Available: true, Table: res.Table}, nil
	}

	alternatives, err := AlternativeSlots(s.catalog, reservations, q.PartySize, q.Time)
	if err != nil {
		return Availability{}, s.fault("availability", err)
	}
	return Availability{Available: false, Alternatives: alternatives}, nil
}

// Book re-reads the date inside its transaction and writes the reservation
// only if a table is still free, otherwise it returns ErrTableUnavailable.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*models.Reservation, error) {
	if err := ValidateSlotQuery(s.catalog, req.Date, req.Time, req.PartySize); err != nil {
		return nil, err
	}
	name, err := ValidateName(req.Name)
	if err != nil {
		return nil, err
	}
	if err := ValidateEmail(req.Email); err != nil {
		return nil, err
	}
	if req.UserID == "" {
		return nil, invalid("userId", "A user is required to book a table.")
	}
	if req.PreferredTable != 0 {
		if _, ok := s.catalog.Table(req.PreferredTable); !ok {
			return nil, invalid("tableNumber", fmt.Sprintf("Table %d does not exist.", req.PreferredTable))
		}
	}
	source := req.Source
	if source == "" {
		source = models.SourceWeb
	}

	var created *models.Reservation
	err = s.store.WithinDateTx(ctx, req.Date, func(tx Tx) error {
		existing, err := tx.ConfirmedByDate(req.Date)
		if err != nil {
			return err
		}
		occupied, err := OccupiedTables(existing, req.Time, DefaultDuration)
		if err != nil {
			return err
		}

		res, err := s.resolve(req.PartySize, occupied, req.PreferredTable)
		if err != nil {
			return err
		}
		if !res.Available {
			return ErrTableUnavailable
		}

		now := s.clock.Now().UTC()
		r := &models.Reservation{
			ID:          uuid.NewString(),
			UserID:      req.UserID,
			UserName:    name,
			UserEmail:   req.Email,
			PhoneNumber: req.Phone,
			TableNumber: res.Table,
			Date:        req.Date,
			TimeSlot:    req.Time,
			Duration:    DefaultDuration,
			PartySize:   req.PartySize,
			Status:      models.ReservationStatusConfirmed,
			Source:      source,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Create(r); err != nil {
			return err
		}
		created = r
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTableUnavailable) {
			utils.InfoLogger.WithFields(logrus.Fields{
				"date": req.Date, "slot": req.Time, "party_size": req.PartySize, "source": source,
			}).Info("No table available")
			return nil, ErrTableUnavailable
		}
		return nil, s.fault("book", err)
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"reservation_id": created.ID, "date": created.Date, "slot": created.TimeSlot,
		"party_size": created.PartySize, "table": created.TableNumber, "source": created.Source,
	}).Info("Reservation confirmed")
	s.publish(ctx, events.ActionCreated, created)
	return created, nil
}

// CancelOwn lets a guest cancel their own reservation while more than
// SelfCancellationNotice is left before it starts.
func (s *Service) CancelOwn(ctx context.Context, userID, id string) (*models.Reservation, error) {
	return s.cancel(ctx, id, func(r *models.Reservation) error {
		if r.UserID != userID {
			return ErrReservationNotFound
		}
		if !r.IsConfirmed() {
			return ErrAlreadyCancelled
		}
		start, err := StartTime(r.Date, r.TimeSlot, s.loc)
		if err != nil {
			return err
		}
		return CheckSelfCancellation(start, s.clock.Now())
	})
}

// AdminCancel frees the table regardless of how close the reservation is.
func (s *Service) AdminCancel(ctx context.Context, id string) (*models.Reservation, error) {
	return s.cancel(ctx, id, func(r *models.Reservation) error {
		if !r.IsConfirmed() {
			return ErrAlreadyCancelled
		}
		return nil
	})
}

func (s *Service) cancel(ctx context.Context, id string, check func(*models.Reservation) error) (*models.Reservation, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.fault("cancel", err)
	}

	var cancelled *models.Reservation
	err = s.store.WithinDateTx(ctx, current.Date, func(tx Tx) error {
		r, err := tx.Get(id)
		if err != nil {
			return err
		}
		if err := check(r); err != nil {
			return err
		}
		r.Status = models.ReservationStatusCancelled
		r.UpdatedAt = s.clock.Now().UTC()
		if err := tx.Save(r); err != nil {
			return err
		}
		cancelled = r
		return nil
	})
	if err != nil {
		return nil, s.fault("cancel", err)
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"reservation_id": cancelled.ID, "date": cancelled.Date, "slot": cancelled.TimeSlot, "table": cancelled.TableNumber,
	}).Info("Reservation cancelled")
	s.publish(ctx, events.ActionCancelled, cancelled)
	return cancelled, nil
}

// AdminDelete removes the reservation for good.
func (s *Service) AdminDelete(ctx context.Context, id string) error {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return s.fault("delete", err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return s.fault("delete", err)
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"reservation_id": r.ID, "date": r.Date, "slot": r.TimeSlot, "table": r.TableNumber,
	}).Info("Reservation deleted")
	s.publish(ctx, events.ActionDeleted, r)
	return nil
}

// AdminUpdate changes table, time or party size of a confirmed reservation.
// The change runs through the date transaction like a booking, without the
// cancellation window, and fails with ErrTableUnavailable instead of
// overbooking a table.
func (s *Service) AdminUpdate(ctx context.Context, id string, edit AdminEdit) (*models.Reservation, error) {
	if edit.Time != nil {
		if err := ValidateSlot(s.catalog, *edit.Time); err != nil {
			return nil, err
		}
	}
	if edit.PartySize != nil {
		if err := ValidatePartySize(*edit.PartySize); err != nil {
			return nil, err
		}
	}
	if edit.TableNumber != nil {
		if _, ok := s.catalog.Table(*edit.TableNumber); !ok {
			return nil, invalid("tableNumber", fmt.Sprintf("Table %d does not exist.", *edit.TableNumber))
		}
	}

	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.fault("update", err)
	}

	var updated *models.Reservation
	err = s.store.WithinDateTx(ctx, current.Date, func(tx Tx) error {
		r, err := tx.Get(id)
		if err != nil {
			return err
		}
		if !r.IsConfirmed() {
			return ErrAlreadyCancelled
		}

		slot, size := r.TimeSlot, r.PartySize
		if edit.Time != nil {
			slot = *edit.Time
		}
		if edit.PartySize != nil {
			size = *edit.PartySize
		}

		existing, err := tx.ConfirmedByDate(r.Date)
		if err != nil {
			return err
		}
		occupied, err := OccupiedTablesExcluding(existing, slot, r.Duration, r.ID)
		if err != nil {
			return err
		}

		preferred := 0
		switch {
		case edit.TableNumber != nil:
			preferred = *edit.TableNumber
		case s.fits(r.TableNumber, size) && !occupied.Has(r.TableNumber):
			preferred = r.TableNumber
		}
		res, err := s.resolve(size, occupied, preferred)
		if err != nil {
			return err
		}
		if !res.Available {
			return ErrTableUnavailable
		}

		r.TimeSlot = slot
		r.PartySize = size
		r.TableNumber = res.Table
		r.UpdatedAt = s.clock.Now().UTC()
		if err := tx.Save(r); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTableUnavailable) {
			return nil, ErrTableUnavailable
		}
		return nil, s.fault("update", err)
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"reservation_id": updated.ID, "date": updated.Date, "slot": updated.TimeSlot,
		"party_size": updated.PartySize, "table": updated.TableNumber,
	}).Info("Reservation updated by staff")
	s.publish(ctx, events.ActionUpdated, updated)
	return updated, nil
}

// DaySheet returns every reservation of date, cancelled ones included.
func (s *Service) DaySheet(ctx context.Context, date string) (DaySheet, error) {
	if err := ValidateDate(date); err != nil {
		return DaySheet{}, err
	}
	reservations, err := s.store.ListByDate(ctx, date)
	if err != nil {
		return DaySheet{}, s.fault("list", err)
	}

	sort.SliceStable(reservations, func(i, j int) bool {
		if reservations[i].TimeSlot != reservations[j].TimeSlot {
			return reservations[i].TimeSlot < reservations[j].TimeSlot
		}
		return reservations[i].TableNumber < reservations[j].TableNumber
	})

	sheet := DaySheet{Date: date, Reservations: reservations}
	for _, r := range reservations {
		if r.IsConfirmed() {
			sheet.Bookings++
			sheet.Guests += r.PartySize
		}
	}
	return sheet, nil
}

// ListForUser returns the reservations of one guest, newest date first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]models.Reservation, error) {
	reservations, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, s.fault("list", err)
	}
	sort.SliceStable(reservations, func(i, j int) bool {
		if reservations[i].Date != reservations[j].Date {
			return reservations[i].Date > reservations[j].Date
		}
		return reservations[i].TimeSlot > reservations[j].TimeSlot
	})
	return reservations, nil
}

// SlotOverview reports every slot of date for a party of partySize.
func (s *Service) SlotOverview(ctx context.Context, date string, partySize int) ([]SlotAvailability, error) {
	if err := ValidateDate(date); err != nil {
		return nil, err
	}
	if err := ValidatePartySize(partySize); err != nil {
		return nil, err
	}
	reservations, err := s.store.ListConfirmedByDate(ctx, date)
	if err != nil {
		return nil, s.fault("overview", err)
	}
	overview, err := SlotOverview(s.catalog, reservations, partySize)
	if err != nil {
		return nil, s.fault("overview", err)
	}
	return overview, nil
}

// TableMap marks every table as booked, too small or available for one slot
// and suggests the best fit.
func (s *Service) TableMap(ctx context.Context, date, slot string, partySize int) (TableMap, error) {
	if err := ValidateSlotQuery(s.catalog, date, slot, partySize); err != nil {
		return TableMap{}, err
	}
	reservations, err := s.store.ListConfirmedByDate(ctx, date)
	if err != nil {
		return TableMap{}, s.fault("table map", err)
	}
	occupied, err := OccupiedTables(reservations, slot, DefaultDuration)
	if err != nil {
		return TableMap{}, s.fault("table map", err)
	}

	tables := s.catalog.Tables()
	out := TableMap{Tables: make([]TableStatus, 0, len(tables))}
	for _, t := range tables {
		status := TableAvailable
		switch {
		case occupied.Has(t.Number):
			status = TableBooked
		case t.Capacity < partySize:
			status = TableTooSmall
		}
		out.Tables = append(out.Tables, TableStatus{Table: t, Status: status})
	}
	if res := Resolve(tables, partySize, occupied); res.Available {
		out.Suggested = res.Table
	}
	return out, nil
}

// Occupancy reports the seats held at every slot of date.
func (s *Service) Occupancy(ctx context.Context, date string) ([]SlotOccupancy, error) {
	if err := ValidateDate(date); err != nil {
		return nil, err
	}
	reservations, err := s.store.ListConfirmedByDate(ctx, date)
	if err != nil {
		return nil, s.fault("occupancy", err)
	}

	total := s.catalog.TotalSeats()
	slots := s.catalog.Slots()
	out := make([]SlotOccupancy, 0, len(slots))
	for _, slot := range slots {
		occupied, err := OccupiedTables(reservations, slot.Time, DefaultDuration)
		if err != nil {
			return nil, s.fault("occupancy", err)
		}
		seats := 0
		for _, n := range occupied.Sorted() {
			if t, ok := s.catalog.Table(n); ok {
				seats += t.Capacity
			}
		}
		out = append(out, SlotOccupancy{
			Time:         slot.Time,
			Period:       slot.Period,
			TablesBooked: len(occupied),
			SeatsBooked:  seats,
			TotalSeats:   total,
		})
	}
	return out, nil
}

func (s *Service) resolve(size int, occupied TableSet, preferred int) (Resolution, error) {
	if preferred == 0 {
		return Resolve(s.catalog.Tables(), size, occupied), nil
	}
	return ResolvePreferred(s.catalog.Tables(), size, occupied, preferred)
}

func (s *Service) fits(number, size int) bool {
	t, ok := s.catalog.Table(number)
	return ok && t.Capacity >= size
}

// fault passes domain errors through and logs everything else as a store fault.
func (s *Service) fault(op string, err error) error {
	if isDomainError(err) {
		return err
	}
	utils.ErrorLogger.Printf("Reservation store fault during %s: %v", op, err)
	return storeFault(err)
}

// publish queues the event for the background worker. It never waits on the
// sinks, a full queue only logs.
func (s *Service) publish(ctx context.Context, action string, r *models.Reservation) {
	event := events.NewReservationEvent(action, r.ID, r.Date, r)
	if err := s.dispatch.Publish(ctx, event); err != nil {
		utils.ErrorLogger.Printf("Error queueing %s: %v", event.Topic(), err)
	}
}

func isDomainError(err error) bool {
	for _, target := range []error{
		ErrInvalidInput, ErrTableUnavailable, ErrCancellationWindowClosed,
		ErrReservationNotFound, ErrAlreadyCancelled, ErrUnknownTable, ErrStoreFault,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func storeFault(err error) error {
	if errors.Is(err, ErrStoreFault) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreFault, err)
}
