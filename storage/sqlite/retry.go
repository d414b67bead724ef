package sqlite

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// backoff retries operations that fail because another connection
// holds the database.
type backoff struct {
	tries int
	base  time.Duration
	max   time.Duration
}

var contention = backoff{
	tries: 4,
	base:  50 * time.Millisecond,
	max:   500 * time.Millisecond,
}

// isTransient reports whether err is a SQLite error that can go away
// on its own: BUSY, LOCKED (and their extended codes), or
// IOERR_SHORT_READ.
func isTransient(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return se.Code() == sqlite3.SQLITE_IOERR_SHORT_READ
}

// do calls op until it succeeds, fails permanently, runs out of
// tries, or the context is done.
func (b backoff) do(ctx context.Context, op func() error) error {
	var err error
	for try := 0; try < b.tries; try++ {
		if 0 < try {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.delay(try - 1)):
			}
		}
		if err = op(); err == nil || !isTransient(err) {
			return err
		}
	}
	return err
}

// delay doubles from base up to max and adds up to base of jitter.
func (b backoff) delay(n int) time.Duration {
	d := b.base << uint(n)
	if d > b.max || d <= 0 {
		d = b.max
	}
	return d + time.Duration(rand.Int63n(int64(b.base)+1))
}
