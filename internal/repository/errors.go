// Package repository holds the MySQL data access layer.  Methods translate
// driver errors into the sentinels below so callers never inspect SQL
// errors directly.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write loses against existing state: an
// overlapping booking on insert, or a status that moved since it was read.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned when registering an email that is taken.
var ErrEmailExists = errors.New("email already exists")

const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
