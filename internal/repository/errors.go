// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without inspecting driver errors.  Lookups that find no row
// return the entity specific NotFound error instead of sql.ErrNoRows.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrSectionNotFound = errors.New("seat section not found")
	ErrPriceNotFound   = errors.New("price not found")
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrTokenInvalid    = errors.New("refresh token invalid")

	// ErrInsufficientCapacity is returned by TryReserve when the section
	// has fewer available seats than requested.  Nothing was changed.
	ErrInsufficientCapacity = errors.New("insufficient capacity")

	// ErrInvalidQuantity rejects non-positive seat deltas before any SQL runs.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrRepairApplied signals that a repair task id was already applied;
	// the release it carries must not run again.
	ErrRepairApplied = errors.New("repair already applied")

	// ErrDuplicate is returned when an insert or update hits a unique key,
	// e.g. a second section with the same label in one event.
	ErrDuplicate = errors.New("duplicate key")

	// ErrEmailExists is the user specific flavour of ErrDuplicate.
	ErrEmailExists = errors.New("email already exists")
)

// isDuplicate reports whether err is a unique-key violation from either
// supported driver.
func isDuplicate(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch code := liteErr.Code(); {
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case code&0xff == sqlite3.SQLITE_CONSTRAINT:
			// extended codes disabled on this connection
			return strings.Contains(liteErr.Error(), "UNIQUE")
		}
	}
	return false
}
