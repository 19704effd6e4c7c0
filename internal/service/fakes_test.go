package service

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/iliyamo/spacelink/internal/model"
	"github.com/iliyamo/spacelink/internal/repository"
)

type memStore struct {
	mu       sync.Mutex
	bookings map[string]model.Booking
	props    map[string]*model.Property
}

func newMemStore() *memStore {
	return &memStore{bookings: map[string]model.Booking{}, props: map[string]*model.Property{}}
}

func (m *memStore) Create(_ context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.bookings {
		if o.PropertyID == b.PropertyID && o.Status.IsOccupying() && !o.ToDate.Before(b.CreatedAt) && Overlaps(b.FromDate, b.ToDate, o.FromDate, o.ToDate) {
			return repository.ErrConflict
		}
	}
	m.bookings[b.ID] = *b
	return nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (m *memStore) UpdateStatus(_ context.Context, id string, from, to model.BookingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	if b.Status != from {
		return repository.ErrConflict
	}
	b.Status = to
	m.bookings[id] = b
	return nil
}

func (m *memStore) list(keep func(model.Booking) bool) []model.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Booking
	for _, b := range m.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memStore) ListOccupyingByProperty(_ context.Context, propertyID string) ([]model.Booking, error) {
	return m.list(func(b model.Booking) bool {
		return b.PropertyID == propertyID && slices.Contains(model.OccupyingStatuses, b.Status)
	}), nil
}

func (m *memStore) ListByUser(_ context.Context, userID string) ([]model.Booking, error) {
	return m.list(func(b model.Booking) bool { return b.UserID == userID }), nil
}

func (m *memStore) ListByOwner(_ context.Context, ownerID string) ([]model.Booking, error) {
	return m.list(func(b model.Booking) bool {
		p := m.props[b.PropertyID]
		return p != nil && p.OwnerID == ownerID
	}), nil
}

func (m *memStore) GetProperty(id string) *model.Property { return m.props[id] }

type propertyLookup struct{ store *memStore }

func (p propertyLookup) GetByID(_ context.Context, id string) (*model.Property, error) {
	prop := p.store.GetProperty(id)
	if prop == nil {
		return nil, repository.ErrNotFound
	}
	cp := *prop
	return &cp, nil
}

type profiles map[string]bool

func (p profiles) IsProfileComplete(_ context.Context, userID string) (bool, error) {
	return p[userID], nil
}

type sent struct {
	userID, kind, message string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, userID, kind, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{userID, kind, message})
	return r.err
}

func (r *recordingNotifier) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.sent))
	for i, s := range r.sent {
		out[i] = s.kind
	}
	return out
}
