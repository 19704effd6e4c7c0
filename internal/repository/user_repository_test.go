package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCols = []string{"id", "email", "password_hash", "role", "name", "phone", "address", "is_active", "created_at", "updated_at"}

func TestUserRepoCreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(sqlmock.AnyArg(), "a@b.io", sqlmock.AnyArg(), "USER", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := repo.Create(context.Background(), "  A@B.io ", "secret", "USER", 4)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUserRepoIsProfileComplete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)
	now := time.Now().UTC()
	q := regexp.QuoteMeta("FROM users WHERE id=?")

	mock.ExpectQuery(q).WithArgs("u1").WillReturnRows(sqlmock.NewRows(userCols).
		AddRow("u1", "a@b.io", "h", "USER", "Ana", "0912", "Somewhere 1", true, now, now))
	mock.ExpectQuery(q).WithArgs("u2").WillReturnRows(sqlmock.NewRows(userCols).
		AddRow("u2", "c@d.io", "h", "USER", "Bo", " ", "", true, now, now))
	mock.ExpectQuery(q).WithArgs("u3").WillReturnRows(sqlmock.NewRows(userCols))

	ok, err := repo.IsProfileComplete(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IsProfileComplete(context.Background(), "u2")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.IsProfileComplete(context.Background(), "u3")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserRepoUpdateProfile(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET name=?, phone=?, address=?")).
		WithArgs("Ana", "0912", "Somewhere 1", sqlmock.AnyArg(), "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateProfile(context.Background(), "u1", " Ana ", "0912", "Somewhere 1"))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET name=?")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE id=?")).WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	assert.ErrorIs(t, repo.UpdateProfile(context.Background(), "ghost", "a", "b", "c"), ErrNotFound)
}
