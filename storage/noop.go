package storage

import (
	"context"

	"github.com/streamblocks/cal2am/core"
)

// NoopStorage remembers nothing.
type NoopStorage struct {
}

func (s *NoopStorage) Open(ctx context.Context) error {
	return nil
}

func (s *NoopStorage) Close(ctx context.Context) error {
	return nil
}

func (s *NoopStorage) Get(ctx context.Context, key string) (*core.Snapshot, error) {
	return nil, NotFound
}

func (s *NoopStorage) Put(ctx context.Context, key string, snap *core.Snapshot) error {
	return nil
}

func (s *NoopStorage) Remove(ctx context.Context, key string) error {
	return nil
}

func (s *NoopStorage) Keys(ctx context.Context) ([]string, error) {
	return nil, nil
}
