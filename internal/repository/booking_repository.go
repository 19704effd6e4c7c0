package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/spacelink/internal/model"
)

// BookingRepo persists bookings.  Reads join properties so every returned
// booking carries its property title and owner.
type BookingRepo struct {
	db *sqlx.DB
}

// NewBookingRepo returns a BookingRepo bound to db.
func NewBookingRepo(db *sqlx.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingSelect = `SELECT b.id, b.user_id, b.property_id, b.from_date, b.to_date, b.booking_type,
       b.total_price, b.status, b.notes, b.created_at, b.updated_at,
       p.title AS property_title, p.owner_id AS owner_id
FROM bookings b
JOIN properties p ON p.id = b.property_id`

// Create inserts b after re-checking, under a row lock on the property, that
// no occupying booking overlaps [b.FromDate, b.ToDate].  Bookings whose
// to_date is already behind b.CreatedAt count as expired and do not block.  Concurrent creates
// for the same property serialize on that lock, so the check and the insert
// are atomic.  Returns ErrNotFound when the property row is missing and
// ErrConflict on overlap.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var locked string
	if err = tx.GetContext(ctx, &locked, `SELECT id FROM properties WHERE id = ? FOR UPDATE`, b.PropertyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	asOf := b.CreatedAt
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	q, args, err := sqlx.In(
		`SELECT COUNT(*) FROM bookings
		 WHERE property_id = ? AND status IN (?) AND from_date <= ? AND to_date >= ? AND to_date >= ?`,
		b.PropertyID, model.OccupyingStatuses, b.ToDate, b.FromDate, asOf)
	if err != nil {
		return err
	}
	var overlapping int
	if err = tx.GetContext(ctx, &overlapping, tx.Rebind(q), args...); err != nil {
		return err
	}
	if overlapping > 0 {
		return ErrConflict
	}

	_, err = tx.NamedExecContext(ctx,
		`INSERT INTO bookings (id, user_id, property_id, from_date, to_date, booking_type, total_price, status, notes, created_at, updated_at)
		 VALUES (:id, :user_id, :property_id, :from_date, :to_date, :booking_type, :total_price, :status, :notes, :created_at, :updated_at)`,
		b)
	return err
}

// GetByID fetches one booking.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	var b model.Booking
	if err := r.db.GetContext(ctx, &b, bookingSelect+` WHERE b.id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// UpdateStatus moves a booking from one status to another only if it is
// still in from.  ErrConflict means another writer got there first.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, time.Now().UTC(), id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, `SELECT COUNT(*) FROM bookings WHERE id = ?`, id); err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

// ListOccupyingByProperty returns the bookings holding the property's
// calendar, ordered by start date.
func (r *BookingRepo) ListOccupyingByProperty(ctx context.Context, propertyID string) ([]model.Booking, error) {
	q, args, err := sqlx.In(bookingSelect+` WHERE b.property_id = ? AND b.status IN (?) ORDER BY b.from_date`,
		propertyID, model.OccupyingStatuses)
	if err != nil {
		return nil, err
	}
	out := []model.Booking{}
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByUser returns the user's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	out := []model.Booking{}
	err := r.db.SelectContext(ctx, &out, bookingSelect+` WHERE b.user_id = ? ORDER BY b.created_at DESC`, userID)
	return out, err
}

// ListByOwner returns bookings on any property the owner lists, newest first.
func (r *BookingRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Booking, error) {
	out := []model.Booking{}
	err := r.db.SelectContext(ctx, &out, bookingSelect+` WHERE p.owner_id = ? ORDER BY b.created_at DESC`, ownerID)
	return out, err
}
