package db

import (
	"strings"

	"github.com/sbvh/collegematch/internal/matcherr"
)

// ErrClosed is returned when operations are attempted on a closed database,
// which typically happens during shutdown while a worker is mid-group.
var ErrClosed = matcherr.New("database is closed")

// IsClosed reports whether err indicates the connection was closed,
// covering both our wrapped sentinel and raw driver error strings (the sql
// package returns its own error values we cannot wrap at the source).
func IsClosed(err error) bool {
	if err == nil {
		return false
	}
	if matcherr.Is(err, ErrClosed) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "database is closed") ||
		strings.Contains(msg, "sql: database is closed")
}
