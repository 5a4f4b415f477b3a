// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver errors themselves.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// ErrPostNotFound is returned when no post matches the lookup.
// Handlers should translate this into an HTTP 404 response.
var ErrPostNotFound = errors.New("post not found")

// ErrUsernameTaken and ErrEmailTaken report unique-key violations on
// registration.  Handlers should translate them into an HTTP 400 response.
var (
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email already exists")
)

// MySQL server error numbers.
const (
	mysqlDuplicateEntry = 1062 // ER_DUP_ENTRY
	mysqlDataTooLong    = 1406 // ER_DATA_TOO_LONG
)

// IsDataTooLong reports whether err is a strict-mode rejection of a value
// that exceeds its column.
func IsDataTooLong(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDataTooLong
}

// duplicateKey reports whether err is a unique-key violation and, if so,
// the text of the offending key.
func duplicateKey(err error) (string, bool) {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return strings.ToLower(me.Message), true
	}
	return "", false
}
