package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/spacelink/internal/model"
)

var bookingCols = []string{
	"id", "user_id", "property_id", "from_date", "to_date", "booking_type",
	"total_price", "status", "notes", "created_at", "updated_at", "property_title", "owner_id",
}

func sampleBooking() *model.Booking {
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return &model.Booking{
		ID:          "b1",
		UserID:      "u1",
		PropertyID:  "p1",
		FromDate:    from,
		ToDate:      from.AddDate(0, 0, 9),
		BookingType: model.BookingMonthly,
		TotalPrice:  1000,
		Status:      model.StatusPending,
		CreatedAt:   from.AddDate(0, -1, 0),
		UpdatedAt:   from.AddDate(0, -1, 0),
	}
}

func expectPropertyLock(mock sqlmock.Sqlmock, id string) *sqlmock.ExpectedQuery {
	return mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM properties WHERE id = ? FOR UPDATE")).WithArgs(id)
}

func TestBookingRepoCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepo(db)
	b := sampleBooking()

	mock.ExpectBegin()
	expectPropertyLock(mock, "p1").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("p1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM bookings")).
		WithArgs("p1", "pending", "approved", "active", b.ToDate, b.FromDate, b.CreatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), b))
}

func TestBookingRepoCreateOverlap(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepo(db)

	mock.ExpectBegin()
	expectPropertyLock(mock, "p1").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("p1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM bookings")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), sampleBooking())
	assert.ErrorIs(t, err, ErrConflict)
}

func TestBookingRepoCreateMissingProperty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepo(db)

	mock.ExpectBegin()
	expectPropertyLock(mock, "p1").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), sampleBooking())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookingRepoGetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepo(db)
	b := sampleBooking()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.id = ?")).WithArgs("b1").
		WillReturnRows(sqlmock.NewRows(bookingCols).AddRow(
			b.ID, b.UserID, b.PropertyID, b.FromDate, b.ToDate, "monthly",
			1000.0, "approved", "", b.CreatedAt, b.UpdatedAt, "Loft", "o1"))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.id = ?")).WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(bookingCols))

	got, err := repo.GetByID(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, got.Status)
	assert.Equal(t, "Loft", got.PropertyTitle)
	assert.Equal(t, "o1", got.OwnerID)
	assert.True(t, b.ToDate.Equal(got.ToDate))

	_, err = repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookingRepoUpdateStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepo(db)
	ctx := context.Background()
	update := regexp.QuoteMeta("UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = ?")
	exists := regexp.QuoteMeta("SELECT COUNT(*) FROM bookings WHERE id = ?")

	mock.ExpectExec(update).WithArgs("approved", sqlmock.AnyArg(), "b1", "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStatus(ctx, "b1", model.StatusPending, model.StatusApproved))

	mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(exists).WithArgs("b1").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, "b1", model.StatusPending, model.StatusRejected), ErrConflict)

	mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(exists).WithArgs("nope").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, "nope", model.StatusPending, model.StatusRejected), ErrNotFound)
}

func TestBookingRepoListOccupying(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepo(db)
	b := sampleBooking()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.property_id = ? AND b.status IN (?, ?, ?) ORDER BY b.from_date")).
		WithArgs("p1", "pending", "approved", "active").
		WillReturnRows(sqlmock.NewRows(bookingCols).AddRow(
			b.ID, b.UserID, b.PropertyID, b.FromDate, b.ToDate, "monthly",
			1000.0, "pending", "", b.CreatedAt, b.UpdatedAt, "Loft", "o1"))

	got, err := repo.ListOccupyingByProperty(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b1", got[0].ID)
}

func TestBookingRepoListByOwnerEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.owner_id = ? ORDER BY b.created_at DESC")).
		WithArgs("o1").WillReturnRows(sqlmock.NewRows(bookingCols))

	got, err := repo.ListByOwner(context.Background(), "o1")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
