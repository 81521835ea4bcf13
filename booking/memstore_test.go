package booking

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/senpow/italy-restaurant-booking/events"
	"github.com/senpow/italy-restaurant-booking/models"
)

// memStore keeps reservations in a map. WithinDateTx holds the store lock for
// the whole transaction and commits a copy when fn succeeds.
type memStore struct {
	mu   sync.Mutex
	rows map[string]models.Reservation
	err  error
}

func newMemStore(rows ...models.Reservation) *memStore {
	s := &memStore{rows: make(map[string]models.Reservation)}
	for _, r := range rows {
		s.rows[r.ID] = r
	}
	return s
}

func (s *memStore) filter(keep func(models.Reservation) bool) ([]models.Reservation, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Reservation
	for _, r := range s.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) ListConfirmedByDate(_ context.Context, date string) ([]models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(r models.Reservation) bool { return r.Date == date && r.IsConfirmed() })
}

func (s *memStore) ListByDate(_ context.Context, date string) ([]models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(r models.Reservation) bool { return r.Date == date })
}

func (s *memStore) ListByUser(_ context.Context, userID string) ([]models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(r models.Reservation) bool { return r.UserID == userID })
}

func (s *memStore) Get(_ context.Context, id string) (*models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&memTx{rows: s.rows}).Get(id)
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return ErrReservationNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *memStore) WithinDateTx(_ context.Context, _ string, fn func(Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	work := make(map[string]models.Reservation, len(s.rows))
	for id, r := range s.rows {
		work[id] = r
	}
	if err := fn(&memTx{rows: work}); err != nil {
		return err
	}
	s.rows = work
	return nil
}

type memTx struct {
	rows map[string]models.Reservation
}

func (t *memTx) ConfirmedByDate(date string) ([]models.Reservation, error) {
	var out []models.Reservation
	for _, r := range t.rows {
		if r.Date == date && r.IsConfirmed() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (t *memTx) Get(id string) (*models.Reservation, error) {
	r, ok := t.rows[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	return &r, nil
}

func (t *memTx) Create(r *models.Reservation) error {
	if _, ok := t.rows[r.ID]; ok {
		return errors.New("duplicate id")
	}
	t.rows[r.ID] = *r
	return nil
}

func (t *memTx) Save(r *models.Reservation) error {
	t.rows[r.ID] = *r
	return nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Action
	}
	return out
}
