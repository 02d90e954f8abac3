package db

import (
	"strings"

	"github.com/teranos/corrfill/errors"
)

// ErrDatabaseClosed marks ledger writes that arrive after the connection
// was closed, e.g. a watched fill finishing while the command shuts down.
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed reports whether err is ErrDatabaseClosed or the
// database/sql error for a closed pool, which is unexported and can only
// be recognised by its message.
func IsDatabaseClosed(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrDatabaseClosed):
		return true
	}
	return strings.Contains(err.Error(), "database is closed")
}
