package db

import (
	"strings"
	"time"
)

const busyRetries = 5

// retryOnBusy runs fn, retrying with linear backoff while the error is a
// SQLite busy/locked condition. With WAL and busy_timeout set collisions
// are rare, but concurrent backfills against one file can still hit them.
func retryOnBusy(fn func() error) error {
	var err error
	for attempt := 0; attempt < busyRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * 50 * time.Millisecond)
		}
		if err = fn(); err == nil || !isBusy(err) {
			return err
		}
	}
	return err
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_BUSY")
}
