package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/senpow/italy-restaurant-booking/events"
	"github.com/senpow/italy-restaurant-booking/models"
	"github.com/senpow/italy-restaurant-booking/utils"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)

func newTestService(store Store, opts ...Option) (*Service, *recordingPublisher) {
	pub := &recordingPublisher{}
	opts = append([]Option{WithClock(fixedClock{now: testNow}), WithPublisher(pub)}, opts...)
	return NewService(store, DefaultCatalog(), opts...), pub
}

func request(date, slot string, size int) BookingRequest {
	return BookingRequest{Date: date, Time: slot, PartySize: size, Name: "Giulia Bianchi", UserID: "user-1"}
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestBookSmallestTableOnEmptyDay(t *testing.T) {
	svc, pub := newTestService(newMemStore())

	r, err := svc.Book(context.Background(), request("2025-11-20", "18:00", 2))
	require.NoError(t, err)

	assert.Equal(t, 3, r.TableNumber)
	assert.Equal(t, models.ReservationStatusConfirmed, r.Status)
	assert.Equal(t, DefaultDuration, r.Duration)
	assert.Equal(t, models.SourceWeb, r.Source)
	assert.Equal(t, testNow, r.CreatedAt)
	assert.Equal(t, "Giulia Bianchi", r.UserName)
	assert.Len(t, r.ID, 36)
	svc.Flush()
	assert.Equal(t, []string{events.ActionCreated}, pub.actions())
}

func TestBookLogsSlotField(t *testing.T) {
	hook := logtest.NewLocal(utils.InfoLogger)
	t.Cleanup(func() { utils.InfoLogger.ReplaceHooks(make(logrus.LevelHooks)) })
	svc, _ := newTestService(newMemStore())

	_, err := svc.Book(context.Background(), request("2025-11-20", "19:30", 2))
	require.NoError(t, err)

	var confirmed *logrus.Entry
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Reservation confirmed" {
			confirmed = entry
		}
	}
	require.NotNil(t, confirmed)
	assert.Equal(t, "19:30", confirmed.Data["slot"])
	assert.NotContains(t, confirmed.Data, "time")
}

func TestBookTrimsName(t *testing.T) {
	svc, _ := newTestService(newMemStore())
	req := request("2025-11-20", "18:00", 2)
	req.Name = "  Marco  "

	r, err := svc.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Marco", r.UserName)
}

func TestBookFillsTablesUntilFull(t *testing.T) {
	svc, _ := newTestService(newMemStore())
	ctx := context.Background()

	var tables []int
	for i := 0; i < 6; i++ {
		r, err := svc.Book(ctx, request("2025-11-20", "19:00", 2))
		require.NoError(t, err)
		tables = append(tables, r.TableNumber)
	}
	assert.Equal(t, []int{3, 1, 2, 4, 5, 6}, tables)

	_, err := svc.Book(ctx, request("2025-11-20", "19:00", 2))
	assert.ErrorIs(t, err, ErrTableUnavailable)

	// Lunch is unaffected.
	r, err := svc.Book(ctx, request("2025-11-20", "12:00", 2))
	require.NoError(t, err)
	assert.Equal(t, 3, r.TableNumber)
}

func TestBookPreferredTable(t *testing.T) {
	svc, _ := newTestService(newMemStore())
	ctx := context.Background()

	req := request("2025-11-20", "18:00", 2)
	req.PreferredTable = 5
	r, err := svc.Book(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 5, r.TableNumber)

	_, err = svc.Book(ctx, req)
	assert.ErrorIs(t, err, ErrTableUnavailable, "already taken")

	req.PreferredTable = 3
	req.PartySize = 4
	_, err = svc.Book(ctx, req)
	assert.ErrorIs(t, err, ErrTableUnavailable, "too small")

	req.PreferredTable = 42
	_, err = svc.Book(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBookRejectsInvalidInputBeforeTheStore(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("store must not be touched")
	svc, _ := newTestService(store)
	ctx := context.Background()

	bad := []BookingRequest{
		request("20-11-2025", "18:00", 2),
		request("2025-11-20", "17:15", 2),
		request("2025-11-20", "18:00", 0),
		request("2025-11-20", "18:00", 7),
		{Date: "2025-11-20", Time: "18:00", PartySize: 2, Name: " x ", UserID: "u"},
		{Date: "2025-11-20", Time: "18:00", PartySize: 2, Name: "Anna", UserID: "u", Email: "anna"},
		{Date: "2025-11-20", Time: "18:00", PartySize: 2, Name: "Anna"},
	}
	for _, req := range bad {
		_, err := svc.Book(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidInput, "%+v", req)
		assert.NotErrorIs(t, err, ErrStoreFault)
	}
}

func TestBookStoreFault(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("connection reset")
	svc, pub := newTestService(store)

	_, err := svc.Book(context.Background(), request("2025-11-20", "18:00", 2))
	assert.ErrorIs(t, err, ErrStoreFault)
	assert.NotErrorIs(t, err, ErrTableUnavailable)
	svc.Flush()
	assert.Empty(t, pub.actions())
}

func TestBookIgnoresPublisherErrors(t *testing.T) {
	store := newMemStore()
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewService(store, DefaultCatalog(), WithPublisher(pub))

	_, err := svc.Book(context.Background(), request("2025-11-20", "18:00", 2))
	assert.NoError(t, err)
	svc.Flush()
	assert.Len(t, pub.actions(), 1)
}

// blockingPublisher holds every event until release is closed.
type blockingPublisher struct {
	release chan struct{}
	recordingPublisher
}

func (p *blockingPublisher) Publish(ctx context.Context, e events.Event) error {
	<-p.release
	return p.recordingPublisher.Publish(ctx, e)
}

func TestBookDoesNotWaitForPublisher(t *testing.T) {
	pub := &blockingPublisher{release: make(chan struct{})}
	svc := NewService(newMemStore(), DefaultCatalog(), WithPublisher(pub))
	defer svc.Close()

	start := time.Now()
	r, err := svc.Book(context.Background(), request("2025-11-20", "18:00", 2))
	require.NoError(t, err)
	_, err = svc.AdminCancel(context.Background(), r.ID)
	require.NoError(t, err)

	assert.Less(t, time.Since(start), time.Second)
	assert.Empty(t, pub.actions())

	close(pub.release)
	svc.Flush()
	assert.Equal(t, []string{events.ActionCreated, events.ActionCancelled}, pub.actions())
}

func TestConcurrentBookingsOneTable(t *testing.T) {
	catalog, err := NewCatalog([]Table{{Number: 1, Capacity: 2}, {Number: 2, Capacity: 4}}, DefaultSlots())
	require.NoError(t, err)
	svc := NewService(newMemStore(), catalog)

	const callers = 2
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Book(context.Background(), request("2025-11-20", "18:00", 4))
		}(i)
	}
	wg.Wait()

	successes, unavailable := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrTableUnavailable):
			unavailable++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, unavailable)
}

func TestCheckAvailability(t *testing.T) {
	store := newMemStore(confirmed("a", 5, "18:00"), confirmed("b", 6, "18:00"))
	svc, _ := newTestService(store)
	ctx := context.Background()

	got, err := svc.CheckAvailability(ctx, AvailabilityQuery{Date: "2025-11-20", Time: "18:00", PartySize: 6})
	require.NoError(t, err)
	assert.False(t, got.Available)
	assert.Equal(t, []string{"12:00", "12:30", "13:00", "13:30", "14:00", "20:00", "20:30"}, got.Alternatives)

	got, err = svc.CheckAvailability(ctx, AvailabilityQuery{Date: "2025-11-20", Time: "18:00", PartySize: 4})
	require.NoError(t, err)
	assert.Equal(t, Availability{Available: true, Table: 4}, got)

	_, err = svc.CheckAvailability(ctx, AvailabilityQuery{Date: "2025-11-20", Time: "18:15", PartySize: 4})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func reservationAt(id, user, date, slot string, table int) models.Reservation {
	r := confirmed(id, table, slot)
	r.UserID = user
	r.Date = date
	return r
}

func TestCancelOwnWindow(t *testing.T) {
	start := time.Date(2025, 11, 20, 18, 0, 0, 0, time.UTC)

	t.Run("23 hours before", func(t *testing.T) {
		store := newMemStore(reservationAt("r1", "user-1", "2025-11-20", "18:00", 4))
		svc := NewService(store, DefaultCatalog(), WithClock(fixedClock{now: start.Add(-23 * time.Hour)}))

		_, err := svc.CancelOwn(context.Background(), "user-1", "r1")
		assert.ErrorIs(t, err, ErrCancellationWindowClosed)

		r, _ := store.Get(context.Background(), "r1")
		assert.True(t, r.IsConfirmed())
	})

	t.Run("25 hours before", func(t *testing.T) {
		store := newMemStore(reservationAt("r1", "user-1", "2025-11-20", "18:00", 4))
		svc := NewService(store, DefaultCatalog(), WithClock(fixedClock{now: start.Add(-25 * time.Hour)}))

		r, err := svc.CancelOwn(context.Background(), "user-1", "r1")
		require.NoError(t, err)
		assert.Equal(t, models.ReservationStatusCancelled, r.Status)

		_, err = svc.CancelOwn(context.Background(), "user-1", "r1")
		assert.ErrorIs(t, err, ErrAlreadyCancelled)
	})

	t.Run("restaurant timezone", func(t *testing.T) {
		berlin, err := time.LoadLocation("Europe/Berlin")
		require.NoError(t, err)
		store := newMemStore(reservationAt("r1", "user-1", "2025-11-20", "18:00", 4))
		// 18:00 in Berlin is 17:00 UTC, so 16:30 UTC the day before is 24.5h ahead.
		svc := NewService(store, DefaultCatalog(),
			WithLocation(berlin),
			WithClock(fixedClock{now: time.Date(2025, 11, 19, 16, 30, 0, 0, time.UTC)}))

		_, err = svc.CancelOwn(context.Background(), "user-1", "r1")
		assert.NoError(t, err)
	})

	t.Run("someone else's reservation", func(t *testing.T) {
		store := newMemStore(reservationAt("r1", "user-1", "2025-11-20", "18:00", 4))
		svc, _ := newTestService(store)

		_, err := svc.CancelOwn(context.Background(), "user-2", "r1")
		assert.ErrorIs(t, err, ErrReservationNotFound)
	})

	t.Run("unknown reservation", func(t *testing.T) {
		svc, _ := newTestService(newMemStore())
		_, err := svc.CancelOwn(context.Background(), "user-1", "nope")
		assert.ErrorIs(t, err, ErrReservationNotFound)
	})
}

func TestCancelFreesTheTable(t *testing.T) {
	svc, pub := newTestService(newMemStore())
	ctx := context.Background()

	r, err := svc.Book(ctx, request("2025-11-20", "18:00", 2))
	require.NoError(t, err)

	_, err = svc.AdminCancel(ctx, r.ID)
	require.NoError(t, err)

	again, err := svc.Book(ctx, request("2025-11-20", "18:00", 2))
	require.NoError(t, err)
	assert.Equal(t, r.TableNumber, again.TableNumber)
	svc.Flush()
	assert.Equal(t, []string{events.ActionCreated, events.ActionCancelled, events.ActionCreated}, pub.actions())
}

func TestAdminCancelIgnoresWindow(t *testing.T) {
	store := newMemStore(reservationAt("r1", "user-1", "2025-11-01", "12:00", 4))
	svc, _ := newTestService(store)

	r, err := svc.AdminCancel(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, models.ReservationStatusCancelled, r.Status)

	_, err = svc.AdminCancel(context.Background(), "r1")
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestAdminDelete(t *testing.T) {
	store := newMemStore(reservationAt("r1", "user-1", "2025-11-20", "18:00", 4))
	svc, pub := newTestService(store)

	require.NoError(t, svc.AdminDelete(context.Background(), "r1"))
	assert.ErrorIs(t, svc.AdminDelete(context.Background(), "r1"), ErrReservationNotFound)
	svc.Flush()
	assert.Equal(t, []string{events.ActionDeleted}, pub.actions())
}

func TestAdminUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps the current table when it still fits", func(t *testing.T) {
		store := newMemStore(reservationAt("r1", "u", "2025-11-20", "18:00", 4))
		svc, pub := newTestService(store)

		r, err := svc.AdminUpdate(ctx, "r1", AdminEdit{Time: strPtr("19:00"), PartySize: intPtr(3)})
		require.NoError(t, err)
		assert.Equal(t, 4, r.TableNumber)
		assert.Equal(t, "19:00", r.TimeSlot)
		assert.Equal(t, 3, r.PartySize)
		svc.Flush()
		assert.Equal(t, []string{events.ActionUpdated}, pub.actions())
	})

	t.Run("moves to the best fit when the party grows", func(t *testing.T) {
		store := newMemStore(reservationAt("r1", "u", "2025-11-20", "18:00", 3))
		svc, _ := newTestService(store)

		r, err := svc.AdminUpdate(ctx, "r1", AdminEdit{PartySize: intPtr(5)})
		require.NoError(t, err)
		assert.Equal(t, 5, r.TableNumber)
	})

	t.Run("explicit table", func(t *testing.T) {
		store := newMemStore(reservationAt("r1", "u", "2025-11-20", "18:00", 3))
		svc, _ := newTestService(store)

		r, err := svc.AdminUpdate(ctx, "r1", AdminEdit{TableNumber: intPtr(6)})
		require.NoError(t, err)
		assert.Equal(t, 6, r.TableNumber)
	})

	t.Run("refuses to double book", func(t *testing.T) {
		store := newMemStore(
			reservationAt("r1", "u", "2025-11-20", "18:00", 3),
			reservationAt("r2", "v", "2025-11-20", "19:00", 6),
		)
		svc, pub := newTestService(store)

		_, err := svc.AdminUpdate(ctx, "r1", AdminEdit{TableNumber: intPtr(6)})
		assert.ErrorIs(t, err, ErrTableUnavailable)

		r, _ := store.Get(ctx, "r1")
		assert.Equal(t, 3, r.TableNumber)
		svc.Flush()
		assert.Empty(t, pub.actions())
	})

	t.Run("own slot does not conflict", func(t *testing.T) {
		store := newMemStore(reservationAt("r1", "u", "2025-11-20", "18:00", 3))
		svc, _ := newTestService(store)

		r, err := svc.AdminUpdate(ctx, "r1", AdminEdit{Time: strPtr("18:30")})
		require.NoError(t, err)
		assert.Equal(t, 3, r.TableNumber)
	})

	t.Run("ignores the cancellation window", func(t *testing.T) {
		store := newMemStore(reservationAt("r1", "u", "2025-11-01", "12:00", 3))
		svc, _ := newTestService(store)

		_, err := svc.AdminUpdate(ctx, "r1", AdminEdit{Time: strPtr("12:30")})
		assert.NoError(t, err)
	})

	t.Run("validates the edit", func(t *testing.T) {
		store := newMemStore(reservationAt("r1", "u", "2025-11-20", "18:00", 3))
		svc, _ := newTestService(store)

		for _, edit := range []AdminEdit{
			{Time: strPtr("17:00")},
			{PartySize: intPtr(9)},
			{TableNumber: intPtr(99)},
		} {
			_, err := svc.AdminUpdate(ctx, "r1", edit)
			assert.ErrorIs(t, err, ErrInvalidInput)
		}

		_, err := svc.AdminUpdate(ctx, "missing", AdminEdit{PartySize: intPtr(2)})
		assert.ErrorIs(t, err, ErrReservationNotFound)
	})
}

func TestDaySheet(t *testing.T) {
	cancelled := reservationAt("r3", "u", "2025-11-20", "12:00", 1)
	cancelled.Status = models.ReservationStatusCancelled
	cancelled.PartySize = 3
	store := newMemStore(
		reservationAt("r1", "u", "2025-11-20", "19:00", 4),
		reservationAt("r2", "u", "2025-11-20", "12:00", 3),
		cancelled,
		reservationAt("r4", "u", "2025-11-21", "12:00", 3),
	)
	svc, _ := newTestService(store)

	sheet, err := svc.DaySheet(context.Background(), "2025-11-20")
	require.NoError(t, err)
	assert.Equal(t, 2, sheet.Bookings)
	assert.Equal(t, 4, sheet.Guests)
	require.Len(t, sheet.Reservations, 3)
	assert.Equal(t, "r3", sheet.Reservations[0].ID)
	assert.Equal(t, "r2", sheet.Reservations[1].ID)
	assert.Equal(t, "r1", sheet.Reservations[2].ID)

	_, err = svc.DaySheet(context.Background(), "tomorrow")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListForUserNewestFirst(t *testing.T) {
	store := newMemStore(
		reservationAt("a", "u", "2025-11-20", "12:00", 1),
		reservationAt("b", "u", "2025-12-01", "18:00", 1),
		reservationAt("c", "u", "2025-11-20", "19:00", 1),
		reservationAt("d", "other", "2025-12-24", "19:00", 1),
	)
	svc, _ := newTestService(store)

	list, err := svc.ListForUser(context.Background(), "u")
	require.NoError(t, err)
	var ids []string
	for _, r := range list {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"b", "c", "a"}, ids)
}

func TestTableMap(t *testing.T) {
	store := newMemStore(reservationAt("r1", "u", "2025-11-20", "18:00", 4))
	svc, _ := newTestService(store)

	m, err := svc.TableMap(context.Background(), "2025-11-20", "19:00", 3)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Suggested)

	statuses := map[int]string{}
	for _, ts := range m.Tables {
		statuses[ts.Number] = ts.Status
	}
	assert.Equal(t, map[int]string{
		1: TableAvailable,
		2: TableAvailable,
		3: TableTooSmall,
		4: TableBooked,
		5: TableAvailable,
		6: TableAvailable,
	}, statuses)
}

func TestOccupancy(t *testing.T) {
	store := newMemStore(
		reservationAt("r1", "u", "2025-11-20", "18:00", 5),
		reservationAt("r2", "u", "2025-11-20", "19:00", 3),
	)
	svc, _ := newTestService(store)

	occ, err := svc.Occupancy(context.Background(), "2025-11-20")
	require.NoError(t, err)
	require.Len(t, occ, 11)

	byTime := map[string]SlotOccupancy{}
	for _, o := range occ {
		byTime[o.Time] = o
		assert.Equal(t, 24, o.TotalSeats)
	}
	assert.Equal(t, 0, byTime["12:00"].SeatsBooked)
	assert.Equal(t, 8, byTime["18:00"].SeatsBooked)
	assert.Equal(t, 2, byTime["20:00"].SeatsBooked)
	assert.Equal(t, 8, byTime["19:00"].SeatsBooked)
	assert.Equal(t, 2, byTime["19:00"].TablesBooked)
	assert.Equal(t, 2, byTime["20:30"].SeatsBooked)
}
