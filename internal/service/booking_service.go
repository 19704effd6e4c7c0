package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/spacelink/internal/model"
	"github.com/iliyamo/spacelink/internal/repository"
)

// CancelWindow is how long before a booking starts the requester may still
// cancel it.
const CancelWindow = 24 * time.Hour

// Notification types emitted by the booking lifecycle.
const (
	NotifyBookingRequest   = "booking_request"
	NotifyBookingApproved  = "booking_approved"
	NotifyBookingRejected  = "booking_rejected"
	NotifyBookingActive    = "booking_active"
	NotifyBookingEnded     = "booking_ended"
	NotifyBookingCancelled = "booking_cancelled"
)

// BookingStore persists bookings.  Create must insert only if no
// occupying booking for the same property overlaps the new one, returning
// repository.ErrConflict otherwise.  UpdateStatus is compare-and-set on
// from and returns repository.ErrConflict when the stored status differs.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus) error
	ListOccupyingByProperty(ctx context.Context, propertyID string) ([]model.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]model.Booking, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Booking, error)
}

// PropertyLookup resolves a property by id; repository.ErrNotFound when missing.
type PropertyLookup interface {
	GetByID(ctx context.Context, id string) (*model.Property, error)
}

// ProfileChecker reports whether a user has filled in their profile.
type ProfileChecker interface {
	IsProfileComplete(ctx context.Context, userID string) (bool, error)
}

// Notifier delivers a message to a user.  Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, userID, kind, message string) error
}

// Locker serializes work on a key across processes.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// CreateBookingInput carries the requester-supplied fields of a booking.
type CreateBookingInput struct {
	PropertyID  string
	FromDate    time.Time
	ToDate      time.Time
	BookingType model.BookingType
	Notes       string
}

// BookingService owns booking admission, state transitions and lazy expiry.
type BookingService struct {
	store      BookingStore
	properties PropertyLookup
	profiles   ProfileChecker
	notifier   Notifier
	locker     Locker
	log        *zap.Logger
	now        func() time.Time
}

// NewBookingService wires a BookingService.  store, properties and profiles
// are required; a nil notifier or locker disables that concern.
func NewBookingService(store BookingStore, properties PropertyLookup, profiles ProfileChecker, notifier Notifier, locker Locker, log *zap.Logger) *BookingService {
	if store == nil || properties == nil || profiles == nil {
		panic("nil dependency passed to NewBookingService")
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if locker == nil {
		locker = nopLocker{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BookingService{
		store:      store,
		properties: properties,
		profiles:   profiles,
		notifier:   notifier,
		locker:     locker,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source.  Used by tests.
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// CreateBooking admits a new pending booking after the admission checks
// pass, in order: required fields, profile completeness, property
// availability, rent type support, and date conflicts.
func (s *BookingService) CreateBooking(ctx context.Context, requesterID string, in CreateBookingInput) (*model.Booking, error) {
	if strings.TrimSpace(in.PropertyID) == "" || in.FromDate.IsZero() || in.ToDate.IsZero() || in.BookingType == "" {
		return nil, newError(ErrValidation, "propertyId, fromDate, toDate and bookingType are required")
	}
	from, to := normalizeRange(in.FromDate, in.ToDate)
	if !from.Before(to) {
		return nil, newError(ErrValidation, "fromDate must be before toDate")
	}

	complete, err := s.profiles.IsProfileComplete(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("check profile: %w", err)
	}
	if !complete {
		return nil, &Error{
			Kind:     ErrProfileIncomplete,
			Message:  "please complete your profile before booking",
			Redirect: ProfileRedirect,
		}
	}

	prop, err := s.properties.GetByID(ctx, in.PropertyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrPropertyUnavailable, "property not found")
		}
		return nil, fmt.Errorf("load property: %w", err)
	}
	if prop.IsDisabled {
		return nil, newError(ErrPropertyUnavailable, "property is not available for booking")
	}
	if !prop.Supports(in.BookingType) {
		return nil, newError(ErrUnsupportedBookingType, fmt.Sprintf("property does not support %s bookings", in.BookingType))
	}

	unlock, err := s.locker.Lock(ctx, "booking:property:"+prop.ID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("lock property: %w", err)
		}
		// The insert transaction still holds the property row lock.
		s.log.Warn("property lock unavailable, relying on row lock",
			zap.String("property_id", prop.ID), zap.Error(err))
		unlock = func() {}
	}
	defer unlock()

	existing, err := s.store.ListOccupyingByProperty(ctx, prop.ID)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	if HasConflict(existing, from, to, s.now()) {
		return nil, newError(ErrDateConflict, "property is already booked for the selected dates")
	}

	now := s.now()
	b := &model.Booking{
		ID:            uuid.NewString(),
		UserID:        requesterID,
		PropertyID:    prop.ID,
		FromDate:      from,
		ToDate:        to,
		BookingType:   in.BookingType,
		TotalPrice:    ComputeTotalPrice(from, to, in.BookingType, prop.Price),
		Status:        model.StatusPending,
		Notes:         strings.TrimSpace(in.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
		PropertyTitle: prop.Title,
		OwnerID:       prop.OwnerID,
	}
	if err := s.store.Create(ctx, b); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, newError(ErrDateConflict, "property is already booked for the selected dates")
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.notify(ctx, prop.OwnerID, NotifyBookingRequest,
		fmt.Sprintf("New %s booking request for %q from %s to %s", b.BookingType, prop.Title, formatDate(from), formatDate(to)))
	return b, nil
}

// ApproveBooking moves a pending booking to approved.  Owner only.
func (s *BookingService) ApproveBooking(ctx context.Context, actorID, bookingID string) (*model.Booking, error) {
	return s.ownerAction(ctx, actorID, bookingID, ActionApprove, NotifyBookingApproved, "approved")
}

// RejectBooking moves a pending booking to rejected, freeing its dates.  Owner only.
func (s *BookingService) RejectBooking(ctx context.Context, actorID, bookingID string) (*model.Booking, error) {
	return s.ownerAction(ctx, actorID, bookingID, ActionReject, NotifyBookingRejected, "rejected")
}

// ActivateBooking moves an approved booking to active.  Owner only.
func (s *BookingService) ActivateBooking(ctx context.Context, actorID, bookingID string) (*model.Booking, error) {
	return s.ownerAction(ctx, actorID, bookingID, ActionActivate, NotifyBookingActive, "marked active")
}

// EndBooking moves an approved or active booking to ended.  Owner only.
func (s *BookingService) EndBooking(ctx context.Context, actorID, bookingID string) (*model.Booking, error) {
	return s.ownerAction(ctx, actorID, bookingID, ActionEnd, NotifyBookingEnded, "ended")
}

// CancelBooking lets the requester cancel an active booking up to
// CancelWindow before it starts.
func (s *BookingService) CancelBooking(ctx context.Context, actorID, bookingID string) (*model.Booking, error) {
	b, err := s.fetch(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != actorID {
		return nil, newError(ErrForbidden, "only the guest who made the booking can cancel it")
	}
	if b, err = s.refresh(ctx, b); err != nil {
		return nil, err
	}
	next, err := Transition(b.Status, ActionCancel)
	if err != nil {
		return nil, err
	}
	if b.FromDate.Sub(s.now()) < CancelWindow {
		return nil, newError(ErrTooLateToCancel, "bookings can only be cancelled at least 24 hours before they start")
	}
	if err := s.apply(ctx, b, next); err != nil {
		return nil, err
	}

	ownerID := b.OwnerID
	if prop, err := s.properties.GetByID(ctx, b.PropertyID); err == nil {
		ownerID = prop.OwnerID
	}
	if ownerID != "" {
		s.notify(ctx, ownerID, NotifyBookingCancelled,
			fmt.Sprintf("Booking for %q from %s to %s was cancelled by the guest", b.PropertyTitle, formatDate(b.FromDate), formatDate(b.ToDate)))
	}
	return b, nil
}

// GetBooking returns a booking to its requester or the property owner,
// persisting the expired status when the booking has lapsed.
func (s *BookingService) GetBooking(ctx context.Context, actorID, bookingID string) (*model.Booking, error) {
	b, err := s.fetch(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != actorID {
		prop, err := s.property(ctx, b.PropertyID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, newError(ErrForbidden, "you are not a party to this booking")
			}
			return nil, err
		}
		if prop.OwnerID != actorID {
			return nil, newError(ErrForbidden, "you are not a party to this booking")
		}
	}
	return s.refresh(ctx, b)
}

// GetBookingAsAdmin returns any booking, applying lazy expiry.
func (s *BookingService) GetBookingAsAdmin(ctx context.Context, bookingID string) (*model.Booking, error) {
	b, err := s.fetch(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return s.refresh(ctx, b)
}

// CheckAvailability reports whether [from, to] is free on a property.  It
// performs no writes and needs no caller identity.
func (s *BookingService) CheckAvailability(ctx context.Context, propertyID string, from, to time.Time) (bool, error) {
	if strings.TrimSpace(propertyID) == "" || from.IsZero() || to.IsZero() {
		return false, newError(ErrValidation, "propertyId, fromDate and toDate are required")
	}
	from, to = normalizeRange(from, to)
	if !from.Before(to) {
		return false, newError(ErrValidation, "fromDate must be before toDate")
	}
	existing, err := s.store.ListOccupyingByProperty(ctx, propertyID)
	if err != nil {
		return false, fmt.Errorf("load bookings: %w", err)
	}
	return !HasConflict(existing, from, to, s.now()), nil
}

// ListMyBookings returns the requester's bookings, newest first.
func (s *BookingService) ListMyBookings(ctx context.Context, userID string) ([]model.Booking, error) {
	items, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	s.refreshAll(ctx, items)
	return items, nil
}

// ListOwnerBookings returns bookings on the owner's properties, newest first.
func (s *BookingService) ListOwnerBookings(ctx context.Context, ownerID string) ([]model.Booking, error) {
	items, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	s.refreshAll(ctx, items)
	return items, nil
}

func (s *BookingService) ownerAction(ctx context.Context, actorID, bookingID string, action Action, kind, verb string) (*model.Booking, error) {
	b, err := s.fetch(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	prop, err := s.property(ctx, b.PropertyID)
	if err != nil {
		return nil, err
	}
	if prop.OwnerID != actorID {
		return nil, newError(ErrForbidden, "only the property owner can "+string(action)+" this booking")
	}
	if b, err = s.refresh(ctx, b); err != nil {
		return nil, err
	}
	next, err := Transition(b.Status, action)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, b, next); err != nil {
		return nil, err
	}
	s.notify(ctx, b.UserID, kind,
		fmt.Sprintf("Your booking for %q from %s to %s was %s", prop.Title, formatDate(b.FromDate), formatDate(b.ToDate), verb))
	return b, nil
}

func (s *BookingService) fetch(ctx context.Context, bookingID string) (*model.Booking, error) {
	if strings.TrimSpace(bookingID) == "" {
		return nil, newError(ErrValidation, "booking id is required")
	}
	b, err := s.store.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "booking not found")
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}
	return b, nil
}

func (s *BookingService) property(ctx context.Context, propertyID string) (*model.Property, error) {
	prop, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "property not found")
		}
		return nil, fmt.Errorf("load property: %w", err)
	}
	return prop, nil
}

// refresh persists the derived status when it differs from the stored one.
// A concurrent writer winning the compare-and-set means the stored row is
// newer than ours, so it is reloaded instead.
func (s *BookingService) refresh(ctx context.Context, b *model.Booking) (*model.Booking, error) {
	derived := DeriveStatus(b, s.now())
	if derived == b.Status {
		return b, nil
	}
	err := s.store.UpdateStatus(ctx, b.ID, b.Status, derived)
	switch {
	case err == nil:
		b.Status = derived
		b.UpdatedAt = s.now()
		return b, nil
	case errors.Is(err, repository.ErrConflict):
		return s.fetch(ctx, b.ID)
	default:
		return nil, fmt.Errorf("expire booking: %w", err)
	}
}

func (s *BookingService) refreshAll(ctx context.Context, items []model.Booking) {
	now := s.now()
	for i := range items {
		b := &items[i]
		derived := DeriveStatus(b, now)
		if derived == b.Status {
			continue
		}
		if err := s.store.UpdateStatus(ctx, b.ID, b.Status, derived); err != nil {
			s.log.Warn("expire booking failed", zap.String("booking_id", b.ID), zap.Error(err))
			continue
		}
		b.Status = derived
		b.UpdatedAt = now
	}
}

func (s *BookingService) apply(ctx context.Context, b *model.Booking, next model.BookingStatus) error {
	if err := s.store.UpdateStatus(ctx, b.ID, b.Status, next); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return newError(ErrInvalidTransition, "booking status changed, reload and try again")
		case errors.Is(err, repository.ErrNotFound):
			return newError(ErrNotFound, "booking not found")
		}
		return fmt.Errorf("update booking: %w", err)
	}
	s.log.Info("booking status changed",
		zap.String("booking_id", b.ID),
		zap.String("from", string(b.Status)),
		zap.String("to", string(next)))
	b.Status = next
	b.UpdatedAt = s.now()
	return nil
}

func (s *BookingService) notify(ctx context.Context, userID, kind, message string) {
	if err := s.notifier.Notify(ctx, userID, kind, message); err != nil {
		s.log.Warn("notification failed",
			zap.String("user_id", userID),
			zap.String("type", kind),
			zap.Error(err))
	}
}

func formatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04")
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, string, string, string) error { return nil }

type nopLocker struct{}

func (nopLocker) Lock(context.Context, string) (func(), error) { return func() {}, nil }
