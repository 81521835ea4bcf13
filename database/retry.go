package database

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"github.com/senpow/italy-restaurant-booking/utils"
)

const (
	defaultAttempts = 3
	retryBackoff    = 25 * time.Millisecond

	mysqlDeadlock     = 1213
	mysqlLockWaitTime = 1205
)

// isTransient reports whether err is a lock conflict the database expects the
// client to retry.
func isTransient(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDeadlock || myErr.Number == mysqlLockWaitTime
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}
	return false
}

// withRetry runs fn up to attempts times while it fails with a transient error.
func withRetry(ctx context.Context, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil || !isTransient(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		utils.InfoLogger.Printf("Transient database error, retrying (%d/%d): %v", attempt, attempts, err)
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
	return err
}
