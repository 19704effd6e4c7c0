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

var propertyCols = []string{"id", "owner_id", "title", "description", "location", "price", "rent_types", "is_disabled", "created_at", "updated_at"}

func TestPropertyRepoCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPropertyRepo(db)
	p := &model.Property{OwnerID: "o1", Title: "Loft", Price: 1000, RentTypes: []model.BookingType{model.BookingHourly, model.BookingMonthly}}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO properties")).
		WithArgs(sqlmock.AnyArg(), "o1", "Loft", "", "", 1000.0, "hourly,monthly", false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), p))
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestPropertyRepoGetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPropertyRepo(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM properties WHERE id = ?")).WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(propertyCols).AddRow("p1", "o1", "Loft", "", "Tehran", 1000.0, "hourly, yearly", true, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM properties WHERE id = ?")).WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(propertyCols))

	p, err := repo.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []model.BookingType{model.BookingHourly, model.BookingYearly}, p.RentTypes)
	assert.True(t, p.IsDisabled)

	_, err = repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPropertyRepoList(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPropertyRepo(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE is_disabled = FALSE ORDER BY created_at DESC LIMIT ? OFFSET ?")).
		WithArgs(20, 40).
		WillReturnRows(sqlmock.NewRows(propertyCols).
			AddRow("p1", "o1", "Loft", "", "", 1000.0, "monthly", false, now, now).
			AddRow("p2", "o2", "Desk", "", "", 50.0, "", false, now, now))

	got, err := repo.List(context.Background(), 20, 40)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Empty(t, got[1].RentTypes)
}

func TestPropertyRepoSetDisabled(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPropertyRepo(db)
	ctx := context.Background()
	update := regexp.QuoteMeta("UPDATE properties SET is_disabled = ?")

	mock.ExpectExec(update).WithArgs(true, sqlmock.AnyArg(), "p1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetDisabled(ctx, "p1", true))

	mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM properties")).WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	require.NoError(t, repo.SetDisabled(ctx, "p1", true))

	mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM properties")).WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	assert.ErrorIs(t, repo.SetDisabled(ctx, "nope", false), ErrNotFound)
}
