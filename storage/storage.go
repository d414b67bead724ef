package storage

import (
	"context"
	"errors"

	"github.com/streamblocks/cal2am/core"
)

// NotFound is returned by Get when there is no snapshot for the key.
var NotFound = errors.New("not found")

// Storage is a persistence interface for compiled actor machines.
//
// Keys are actor fingerprints (see core.Fingerprint), so a stored
// snapshot is valid for exactly the actor and options that produced
// it.
type Storage interface {
	Open(ctx context.Context) error

	Close(ctx context.Context) error

	Get(ctx context.Context, key string) (*core.Snapshot, error)

	Put(ctx context.Context, key string, snap *core.Snapshot) error

	Remove(ctx context.Context, key string) error

	Keys(ctx context.Context) ([]string, error)
}
